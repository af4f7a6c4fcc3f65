// SPDX-License-Identifier: MPL-2.0

package mod

import (
	"cmp"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/modweave/modweave/pkg/cueutil"
	"github.com/modweave/modweave/pkg/modgroup"
)

const (
	// MetaFile holds the mod's descriptive metadata.
	MetaFile = "meta.json"
	// DefaultFile holds the mod's unconditional payload.
	DefaultFile = "default_mod.json"
	// MetaFileVersion is written into every meta.json.
	MetaFileVersion = 3

	groupFilePrefix = "group_"
	groupFileSuffix = ".json"
)

// Persisted parts of a mod.
const (
	TargetGroup TargetKind = iota
	TargetAllGroups
	TargetDefault
	TargetMeta
)

var (
	//go:embed mod_schema.cue
	modSchemaBytes []byte

	metaSchema = cueutil.NewSchema(modSchemaBytes, "#Meta")

	// ErrModNotFound is returned when a directory does not contain a mod.
	ErrModNotFound = errors.New("mod not found")
)

type (
	// NameSanitizer maps display names to file-name segments.
	NameSanitizer interface {
		Sanitize(name string) string
	}

	// TargetKind selects which part of a mod a save writes.
	TargetKind int

	// Target identifies one persisted part of a mod.
	Target struct {
		Kind TargetKind
		// Group is the group index for TargetGroup.
		Group int
	}

	// Store loads and saves mods below the root of a billy filesystem.
	Store struct {
		fs        billy.Filesystem
		sanitizer NameSanitizer
		logger    *log.Logger
	}

	// ModNotFoundError reports a directory without a readable meta.json.
	ModNotFoundError struct {
		Directory string
		Err       error
	}
)

// GroupTarget returns the target for the group at index.
func GroupTarget(index int) Target { return Target{Kind: TargetGroup, Group: index} }

// AllGroupsTarget rewrites every group file and prunes stale ones.
func AllGroupsTarget() Target { return Target{Kind: TargetAllGroups} }

// DefaultTarget returns the target for the default container.
func DefaultTarget() Target { return Target{Kind: TargetDefault} }

// MetaTarget returns the target for meta.json.
func MetaTarget() Target { return Target{Kind: TargetMeta} }

// String renders the target for logs and as a debounce key.
func (t Target) String() string {
	switch t.Kind {
	case TargetGroup:
		return fmt.Sprintf("group[%d]", t.Group)
	case TargetAllGroups:
		return "groups"
	case TargetDefault:
		return "default"
	case TargetMeta:
		return "meta"
	default:
		return fmt.Sprintf("TargetKind(%d)", int(t.Kind))
	}
}

// Error implements the error interface.
func (e *ModNotFoundError) Error() string {
	return fmt.Sprintf("no mod in %q: %v", e.Directory, e.Err)
}

// Unwrap returns ErrModNotFound and the underlying cause.
func (e *ModNotFoundError) Unwrap() []error { return []error{ErrModNotFound, e.Err} }

// NewStore returns a store rooted at fs. A nil logger discards output.
func NewStore(fs billy.Filesystem, sanitizer NameSanitizer, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Store{fs: fs, sanitizer: sanitizer, logger: logger}
}

// Filesystem returns the filesystem the store writes to.
func (s *Store) Filesystem() billy.Filesystem { return s.fs }

// Sanitizer returns the name sanitizer used for group file names.
func (s *Store) Sanitizer() NameSanitizer { return s.sanitizer }

// GroupFileName returns the file name of the group at index: a one-based,
// zero-padded position followed by the sanitized lower-case group name.
func (s *Store) GroupFileName(index int, g modgroup.Group) string {
	name := strings.ToLower(s.sanitizer.Sanitize(g.Base().Name))
	return fmt.Sprintf("%s%03d_%s%s", groupFilePrefix, index+1, name, groupFileSuffix)
}

// List returns the directories directly below the root that contain a meta.json.
func (s *Store) List() ([]string, error) {
	entries, err := s.fs.ReadDir("/")
	if err != nil {
		return nil, fmt.Errorf("list mods: %w", err)
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := s.fs.Stat(s.fs.Join(e.Name(), MetaFile)); err == nil {
			dirs = append(dirs, e.Name())
		}
	}
	slices.Sort(dirs)
	return dirs, nil
}

// Create writes a new empty mod into directory.
func (s *Store) Create(directory, name string) (*Mod, error) {
	if err := s.fs.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("create mod directory %s: %w", directory, err)
	}
	m := New(directory, name)
	if err := s.Save(m, MetaTarget()); err != nil {
		return nil, err
	}
	if err := s.Save(m, DefaultTarget()); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads the mod in directory. A missing or invalid meta.json fails the
// load; a malformed group document drops only that group, and a malformed
// default document leaves the default container empty.
func (s *Store) Load(directory string) (*Mod, error) {
	m := New(directory, "")

	data, err := util.ReadFile(s.fs, s.fs.Join(directory, MetaFile))
	if err != nil {
		return nil, &ModNotFoundError{Directory: directory, Err: err}
	}
	metaResult, err := cueutil.Decode[Meta](metaSchema, data, cueutil.WithFilename(path.Join(directory, MetaFile)))
	if err != nil {
		return nil, &ModNotFoundError{Directory: directory, Err: err}
	}
	m.Meta = *metaResult.Value

	if data, err := util.ReadFile(s.fs, s.fs.Join(directory, DefaultFile)); err == nil {
		if c, err := modgroup.DecodeDefault(data, path.Join(directory, DefaultFile)); err != nil {
			s.logger.Warn("ignoring malformed default container", "mod", m.Name(), "err", err)
		} else {
			m.Default = c
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", DefaultFile, err)
	}

	files, err := s.groupFiles(directory)
	if err != nil {
		return nil, err
	}
	for _, name := range files {
		file := s.fs.Join(directory, name)
		data, err := util.ReadFile(s.fs, file)
		if err != nil {
			s.logger.Warn("skipping unreadable group", "mod", m.Name(), "file", name, "err", err)
			continue
		}
		g, err := modgroup.Decode(data, path.Join(directory, name))
		if err != nil {
			s.logger.Warn("skipping malformed group", "mod", m.Name(), "file", name, "err", err)
			continue
		}
		m.Groups = append(m.Groups, g)
	}
	s.logger.Debug("loaded mod", "mod", m.Name(), "groups", len(m.Groups))
	return m, nil
}

// Save writes one persisted part of m.
func (s *Store) Save(m *Mod, target Target) error {
	switch target.Kind {
	case TargetGroup:
		if target.Group < 0 || target.Group >= len(m.Groups) {
			return fmt.Errorf("save %s of %q: %w", target, m.Name(), modgroup.ErrIndexOutOfRange)
		}
		return s.saveGroup(m, target.Group)
	case TargetAllGroups:
		return s.saveAllGroups(m)
	case TargetDefault:
		data, err := modgroup.EncodeDefault(m.Default)
		if err != nil {
			return fmt.Errorf("encode default container of %q: %w", m.Name(), err)
		}
		return s.writeFile(s.fs.Join(m.Directory, DefaultFile), data)
	case TargetMeta:
		m.Meta.FileVersion = MetaFileVersion
		if m.Meta.ModTags == nil {
			m.Meta.ModTags = []string{}
		}
		data, err := json.MarshalIndent(m.Meta, "", "  ")
		if err != nil {
			return fmt.Errorf("encode meta of %q: %w", m.Name(), err)
		}
		return s.writeFile(s.fs.Join(m.Directory, MetaFile), data)
	default:
		return fmt.Errorf("save %q: unknown target %s", m.Name(), target)
	}
}

// saveGroup writes the group at index and removes files left behind for the
// same position under a previous name.
func (s *Store) saveGroup(m *Mod, index int) error {
	g := m.Groups[index]
	name := s.GroupFileName(index, g)
	data, err := modgroup.Encode(g)
	if err != nil {
		return fmt.Errorf("encode group %q: %w", g.Base().Name, err)
	}
	if err := s.writeFile(s.fs.Join(m.Directory, name), data); err != nil {
		return err
	}

	files, err := s.groupFiles(m.Directory)
	if err != nil {
		return err
	}
	prefix := fmt.Sprintf("%s%03d_", groupFilePrefix, index+1)
	for _, f := range files {
		if f != name && strings.HasPrefix(f, prefix) {
			s.remove(m, f)
		}
	}
	return nil
}

func (s *Store) saveAllGroups(m *Mod) error {
	written := make(map[string]bool, len(m.Groups))
	for i, g := range m.Groups {
		name := s.GroupFileName(i, g)
		data, err := modgroup.Encode(g)
		if err != nil {
			return fmt.Errorf("encode group %q: %w", g.Base().Name, err)
		}
		if err := s.writeFile(s.fs.Join(m.Directory, name), data); err != nil {
			return err
		}
		written[name] = true
	}

	files, err := s.groupFiles(m.Directory)
	if err != nil {
		return err
	}
	for _, f := range files {
		if !written[f] {
			s.remove(m, f)
		}
	}
	return nil
}

func (s *Store) remove(m *Mod, name string) {
	if err := s.fs.Remove(s.fs.Join(m.Directory, name)); err != nil {
		s.logger.Warn("could not remove stale group file", "mod", m.Name(), "file", name, "err", err)
	}
}

// groupFiles lists the group documents of directory in load order.
func (s *Store) groupFiles(directory string) ([]string, error) {
	entries, err := s.fs.ReadDir(directory)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list groups in %s: %w", directory, err)
	}
	var names []string
	for _, e := range entries {
		n := e.Name()
		if !e.IsDir() && strings.HasPrefix(n, groupFilePrefix) && strings.HasSuffix(n, groupFileSuffix) {
			names = append(names, n)
		}
	}
	// Positions past 999 widen the number, so order numerically.
	slices.SortFunc(names, func(a, b string) int {
		return cmp.Or(cmp.Compare(groupFileNumber(a), groupFileNumber(b)), strings.Compare(a, b))
	})
	return names, nil
}

// groupFileNumber returns the position encoded in a group file name, or
// math.MaxInt when it has none.
func groupFileNumber(name string) int {
	digits, _, _ := strings.Cut(strings.TrimPrefix(name, groupFilePrefix), "_")
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return math.MaxInt
	}
	return n
}

// writeFile writes data through a temporary file and a rename so readers
// never observe a partially written document.
func (s *Store) writeFile(name string, data []byte) error {
	tmp := name + ".tmp"
	if err := util.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, name); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
