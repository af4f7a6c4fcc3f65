// SPDX-License-Identifier: MPL-2.0

package modedit

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/modweave/modweave/pkg/meta"
	"github.com/modweave/modweave/pkg/mod"
	"github.com/modweave/modweave/pkg/modgroup"
	"github.com/modweave/modweave/pkg/types"
)

// Save modes requested by callers of editor operations.
const (
	// SaveNone mutates in memory only.
	SaveNone SaveType = iota
	// SaveQueued hands the write to the saver's debounce queue.
	SaveQueued
	// SaveImmediate writes before the operation returns.
	SaveImmediate
)

var (
	// ErrDuplicateGroupName is returned when a group name collides with
	// another group of the same mod after sanitization.
	ErrDuplicateGroupName = errors.New("duplicate group name")
	// ErrInvalidGroupName is returned when a group name sanitizes to nothing.
	ErrInvalidGroupName = errors.New("invalid group name")
	// ErrGroupNotFound is returned when a group, option or container does
	// not belong to the mod passed to an operation.
	ErrGroupNotFound = errors.New("group not found in mod")
)

type (
	// SaveType selects how an edit is persisted.
	SaveType int

	// Notifier receives prepare and change events.
	Notifier interface {
		Notify(change mod.OptionChange)
	}

	// Saver persists one part of a mod.
	Saver interface {
		Save(m *mod.Mod, target mod.Target, saveType SaveType) error
	}

	// NameSanitizer maps group names to the file-name segment they are stored under.
	NameSanitizer interface {
		Sanitize(name string) string
	}

	// Option configures an Editor.
	Option func(*Editor)

	// Editor mutates mods and their groups. Every mutating operation runs
	// the same protocol: announce the change when its kind is prepared,
	// mutate, persist through the Saver, then emit the change event.
	// Editors are not safe for concurrent use.
	Editor struct {
		notifier  Notifier
		saver     Saver
		sanitizer NameSanitizer
		logger    *log.Logger

		Single    *SingleEditor
		Multi     *MultiEditor
		Imc       *ImcEditor
		Combining *CombiningEditor
		Complex   *ComplexEditor
	}

	// DuplicateGroupNameError reports a rejected group name.
	DuplicateGroupNameError struct {
		Mod      string
		Name     string
		Existing string
	}

	// InvalidGroupNameError reports a group name without usable characters.
	InvalidGroupNameError struct {
		Name string
	}

	nopNotifier struct{}
	nopSaver    struct{}
	keepName    struct{}
)

func (nopNotifier) Notify(mod.OptionChange) {}

func (nopSaver) Save(*mod.Mod, mod.Target, SaveType) error { return nil }

func (keepName) Sanitize(name string) string { return strings.TrimSpace(name) }

// String returns the save type name.
func (t SaveType) String() string {
	switch t {
	case SaveNone:
		return "none"
	case SaveQueued:
		return "queued"
	case SaveImmediate:
		return "immediate"
	default:
		return fmt.Sprintf("SaveType(%d)", int(t))
	}
}

// Error implements the error interface.
func (e *DuplicateGroupNameError) Error() string {
	return fmt.Sprintf("group name %q in mod %q collides with existing group %q", e.Name, e.Mod, e.Existing)
}

// Unwrap returns ErrDuplicateGroupName.
func (e *DuplicateGroupNameError) Unwrap() error { return ErrDuplicateGroupName }

// Error implements the error interface.
func (e *InvalidGroupNameError) Error() string {
	return fmt.Sprintf("group name %q has no usable characters", e.Name)
}

// Unwrap returns ErrInvalidGroupName.
func (e *InvalidGroupNameError) Unwrap() error { return ErrInvalidGroupName }

// WithNotifier sets the event receiver.
func WithNotifier(n Notifier) Option {
	return func(e *Editor) { e.notifier = n }
}

// WithSaver sets the persistence sink.
func WithSaver(s Saver) Option {
	return func(e *Editor) { e.saver = s }
}

// WithSanitizer sets the sanitizer used to compare group names.
func WithSanitizer(s NameSanitizer) Option {
	return func(e *Editor) { e.sanitizer = s }
}

// WithLogger sets the logger soft errors are reported to.
func WithLogger(l *log.Logger) Option {
	return func(e *Editor) { e.logger = l }
}

// New returns an editor. Unset collaborators default to no-ops and a
// discarding logger.
func New(opts ...Option) *Editor {
	e := &Editor{}
	for _, opt := range opts {
		opt(e)
	}
	if e.notifier == nil {
		e.notifier = nopNotifier{}
	}
	if e.saver == nil {
		e.saver = nopSaver{}
	}
	if e.sanitizer == nil {
		e.sanitizer = keepName{}
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}

	e.Single = &SingleEditor{groupEditor[*modgroup.SingleGroup, *modgroup.SingleOption]{editor: e, create: modgroup.NewSingleGroup}}
	e.Multi = &MultiEditor{groupEditor[*modgroup.MultiGroup, *modgroup.MultiOption]{editor: e, create: modgroup.NewMultiGroup}}
	e.Imc = &ImcEditor{groupEditor[*modgroup.ImcGroup, *modgroup.ImcOption]{editor: e, create: newDefaultImcGroup}}
	e.Combining = &CombiningEditor{groupEditor[*modgroup.CombiningGroup, *modgroup.CombiningOption]{editor: e, create: modgroup.NewCombiningGroup}}
	e.Complex = &ComplexEditor{groupEditor[*modgroup.ComplexGroup, *modgroup.ComplexOption]{editor: e, create: modgroup.NewComplexGroup}}
	return e
}

// AddGroup creates an empty group of kind t at the end of m.
func (e *Editor) AddGroup(m *mod.Mod, t modgroup.GroupType, name string, saveType SaveType) (modgroup.Group, error) {
	switch t {
	case modgroup.TypeSingle:
		return asGroup(e.Single.AddGroup(m, name, saveType))
	case modgroup.TypeMulti:
		return asGroup(e.Multi.AddGroup(m, name, saveType))
	case modgroup.TypeImc:
		return asGroup(e.Imc.AddGroup(m, name, saveType))
	case modgroup.TypeCombining:
		return asGroup(e.Combining.AddGroup(m, name, saveType))
	case modgroup.TypeComplex:
		return asGroup(e.Complex.AddGroup(m, name, saveType))
	default:
		return nil, e.reject("add group", fmt.Errorf("group %q of type %s: %w", name, t, modgroup.ErrUnknownGroupType))
	}
}

// CheckGroupName reports whether name can be used for a group of m. The
// group being renamed, if any, is excluded from the duplicate check.
func (e *Editor) CheckGroupName(m *mod.Mod, name string, renamed modgroup.Group) error {
	key := strings.ToLower(e.sanitizer.Sanitize(name))
	if key == "" {
		return &InvalidGroupNameError{Name: name}
	}
	for _, g := range m.Groups {
		if g == renamed {
			continue
		}
		if strings.ToLower(e.sanitizer.Sanitize(g.Base().Name)) == key {
			return &DuplicateGroupNameError{Mod: m.Name(), Name: name, Existing: g.Base().Name}
		}
	}
	return nil
}

// RenameGroup renames g. The new name must be unique within m after sanitization.
func (e *Editor) RenameGroup(m *mod.Mod, g modgroup.Group, name string, saveType SaveType) error {
	idx, err := e.groupIndex(m, g)
	if err != nil {
		return err
	}
	if g.Base().Name == name {
		return nil
	}
	if err := e.CheckGroupName(m, name, g); err != nil {
		return e.reject("rename group", err)
	}
	return e.commit(m, saveType, mod.GroupTarget(idx), groupChange(mod.GroupRenamed, g, idx), func() {
		g.Base().Name = name
	})
}

// DeleteGroup removes g from m. Dependents are asked to evict state for the
// group before it disappears.
func (e *Editor) DeleteGroup(m *mod.Mod, g modgroup.Group, saveType SaveType) error {
	idx, err := e.groupIndex(m, g)
	if err != nil {
		return err
	}
	e.prepare(m, groupChange(mod.GroupDeleted, g, idx))
	m.Groups = slices.Delete(m.Groups, idx, idx+1)
	err = e.save(m, mod.AllGroupsTarget(), saveType)
	e.notify(m, groupChange(mod.GroupDeleted, nil, idx))
	return err
}

// MoveGroup moves g to position to. Out-of-range targets are clamped.
func (e *Editor) MoveGroup(m *mod.Mod, g modgroup.Group, to int, saveType SaveType) error {
	from, err := e.groupIndex(m, g)
	if err != nil {
		return err
	}
	to = max(0, min(to, len(m.Groups)-1))
	if from == to {
		return nil
	}
	change := groupChange(mod.GroupMoved, g, to)
	change.MovedFrom = from
	return e.commit(m, saveType, mod.AllGroupsTarget(), change, func() {
		m.Groups = slices.Insert(slices.Delete(m.Groups, from, from+1), to, g)
	})
}

// ChangeGroupType replaces g by an equivalent group of kind to and returns
// the replacement. Only single and multi groups convert into each other.
func (e *Editor) ChangeGroupType(m *mod.Mod, g modgroup.Group, to modgroup.GroupType, saveType SaveType) (modgroup.Group, error) {
	idx, err := e.groupIndex(m, g)
	if err != nil {
		return nil, err
	}
	if g.Type() == to {
		return g, nil
	}
	converted, err := modgroup.Convert(g, to)
	if err != nil {
		return nil, e.reject("change group type", err)
	}
	change := groupChange(mod.GroupTypeChanged, converted, idx)
	change.MovedFrom = int(g.Type())
	err = e.commit(m, saveType, mod.GroupTarget(idx), change, func() {
		m.Groups[idx] = converted
	})
	return converted, err
}

// ChangeGroupDescription sets the description of g.
func (e *Editor) ChangeGroupDescription(m *mod.Mod, g modgroup.Group, description string, saveType SaveType) error {
	idx, err := e.groupIndex(m, g)
	if err != nil {
		return err
	}
	if string(g.Base().Description) == description {
		return nil
	}
	return e.commit(m, saveType, mod.GroupTarget(idx), groupChange(mod.DisplayChange, g, idx), func() {
		g.Base().Description = types.DescriptionText(description)
	})
}

// ChangeGroupPriority sets the priority g is applied with inside its mod.
func (e *Editor) ChangeGroupPriority(m *mod.Mod, g modgroup.Group, priority types.ModPriority, saveType SaveType) error {
	idx, err := e.groupIndex(m, g)
	if err != nil {
		return err
	}
	if g.Base().Priority == priority {
		return nil
	}
	return e.commit(m, saveType, mod.GroupTarget(idx), groupChange(mod.PriorityChanged, g, idx), func() {
		g.Base().Priority = priority
	})
}

// ChangeDefaultSettings sets the setting new collections start from. The
// value is normalized for the group's current shape.
func (e *Editor) ChangeDefaultSettings(m *mod.Mod, g modgroup.Group, setting types.Setting, saveType SaveType) error {
	idx, err := e.groupIndex(m, g)
	if err != nil {
		return err
	}
	setting = g.FixSetting(setting)
	if g.Base().DefaultSettings == setting {
		return nil
	}
	return e.commit(m, saveType, mod.GroupTarget(idx), groupChange(mod.DefaultOptionChanged, g, idx), func() {
		g.Base().DefaultSettings = setting
	})
}

// RenameOption renames o. Option names need not be unique.
func (e *Editor) RenameOption(m *mod.Mod, o modgroup.Option, name string, saveType SaveType) error {
	if o.Base().Name == name {
		return nil
	}
	return e.commitOption(m, o, mod.DisplayChange, saveType, func() {
		o.Base().Name = name
	})
}

// ChangeOptionDescription sets the description of o.
func (e *Editor) ChangeOptionDescription(m *mod.Mod, o modgroup.Option, description string, saveType SaveType) error {
	if string(o.Base().Description) == description {
		return nil
	}
	return e.commitOption(m, o, mod.DisplayChange, saveType, func() {
		o.Base().Description = types.DescriptionText(description)
	})
}

// ChangeOptionPriority sets the order a multi option is merged in.
func (e *Editor) ChangeOptionPriority(m *mod.Mod, o *modgroup.MultiOption, priority types.ModPriority, saveType SaveType) error {
	if o.Priority == priority {
		return nil
	}
	return e.commitOption(m, o, mod.OptionMetaChanged, saveType, func() {
		o.Priority = priority
	})
}

// SetFiles replaces the file redirections of c.
func (e *Editor) SetFiles(m *mod.Mod, c *modgroup.DataContainer, files map[types.GamePath]types.FullPath, saveType SaveType) error {
	if maps.Equal(c.Files, files) {
		return nil
	}
	return e.commitContainer(m, c, mod.OptionFilesChanged, saveType, func() {
		c.Files = maps.Clone(files)
		if c.Files == nil {
			c.Files = make(map[types.GamePath]types.FullPath)
		}
	})
}

// AddFiles adds redirections for paths c does not redirect yet. Existing
// redirections are kept.
func (e *Editor) AddFiles(m *mod.Mod, c *modgroup.DataContainer, files map[types.GamePath]types.FullPath, saveType SaveType) error {
	added := make(map[types.GamePath]types.FullPath)
	for path, file := range files {
		if _, ok := c.Files[path]; !ok {
			added[path] = file
		}
	}
	if len(added) == 0 {
		return nil
	}
	return e.commitContainer(m, c, mod.OptionFilesAdded, saveType, func() {
		maps.Copy(c.Files, added)
	})
}

// SetFileSwaps replaces the path aliases of c.
func (e *Editor) SetFileSwaps(m *mod.Mod, c *modgroup.DataContainer, swaps map[types.GamePath]types.GamePath, saveType SaveType) error {
	if maps.Equal(c.FileSwaps, swaps) {
		return nil
	}
	return e.commitContainer(m, c, mod.OptionSwapsChanged, saveType, func() {
		c.FileSwaps = maps.Clone(swaps)
		if c.FileSwaps == nil {
			c.FileSwaps = make(map[types.GamePath]types.GamePath)
		}
	})
}

// SetManipulations replaces the metadata patches of c.
func (e *Editor) SetManipulations(m *mod.Mod, c *modgroup.DataContainer, manipulations meta.Manipulations, saveType SaveType) error {
	if maps.Equal(c.Manipulations, manipulations) {
		return nil
	}
	return e.commitContainer(m, c, mod.OptionMetaChanged, saveType, func() {
		c.Manipulations = manipulations.Clone()
		if c.Manipulations == nil {
			c.Manipulations = make(meta.Manipulations)
		}
	})
}

// commit runs the edit protocol for a change whose indices are already known.
func (e *Editor) commit(m *mod.Mod, saveType SaveType, target mod.Target, change mod.OptionChange, mutate func()) error {
	if change.Kind.Handling().WasPrepared {
		e.prepare(m, change)
	}
	mutate()
	err := e.save(m, target, saveType)
	e.notify(m, change)
	return err
}

func (e *Editor) commitOption(m *mod.Mod, o modgroup.Option, kind mod.ChangeKind, saveType SaveType, mutate func()) error {
	g := o.Group()
	idx, err := e.groupIndex(m, g)
	if err != nil {
		return err
	}
	change := groupChange(kind, g, idx)
	change.Option = o
	change.OptionIndex = o.Index()
	change.Container = containerOf(o)
	return e.commit(m, saveType, mod.GroupTarget(idx), change, mutate)
}

func (e *Editor) commitContainer(m *mod.Mod, c *modgroup.DataContainer, kind mod.ChangeKind, saveType SaveType, mutate func()) error {
	if c == m.Default {
		change := groupChange(kind, nil, -1)
		change.Container = c
		return e.commit(m, saveType, mod.DefaultTarget(), change, mutate)
	}
	g := c.Group()
	if g == nil {
		return e.reject("edit container", fmt.Errorf("container %q: %w", c.Name, ErrGroupNotFound))
	}
	idx, err := e.groupIndex(m, g)
	if err != nil {
		return err
	}
	change := groupChange(kind, g, idx)
	change.Container = c
	if o := optionOf(g, c); o != nil {
		change.Option = o
		change.OptionIndex = o.Index()
	}
	return e.commit(m, saveType, mod.GroupTarget(idx), change, mutate)
}

func (e *Editor) groupIndex(m *mod.Mod, g modgroup.Group) (int, error) {
	idx := m.GroupIndex(g)
	if idx < 0 {
		name := "<nil>"
		if g != nil {
			name = g.Base().Name
		}
		return -1, e.reject("edit group", fmt.Errorf("group %q of mod %q: %w", name, m.Name(), ErrGroupNotFound))
	}
	return idx, nil
}

func (e *Editor) prepare(m *mod.Mod, change mod.OptionChange) {
	change.Mod = m
	change.Pending = change.Kind
	change.Kind = mod.PrepareChange
	e.notifier.Notify(change)
}

func (e *Editor) notify(m *mod.Mod, change mod.OptionChange) {
	change.Mod = m
	e.logger.Debug("mod changed", "change", change)
	e.notifier.Notify(change)
}

func (e *Editor) save(m *mod.Mod, target mod.Target, saveType SaveType) error {
	if saveType == SaveNone {
		return nil
	}
	if err := e.saver.Save(m, target, saveType); err != nil {
		e.logger.Error("could not save mod", "mod", m.Name(), "target", target, "err", err)
		return fmt.Errorf("save %s of %q: %w", target, m.Name(), err)
	}
	return nil
}

// reject logs a soft error and returns it unchanged.
func (e *Editor) reject(operation string, err error) error {
	e.logger.Warn(operation+" rejected", "err", err)
	return err
}

func asGroup[G modgroup.Group](g G, err error) (modgroup.Group, error) {
	if err != nil {
		return nil, err
	}
	return g, nil
}

// groupChange returns a change event without option or move information.
func groupChange(kind mod.ChangeKind, g modgroup.Group, idx int) mod.OptionChange {
	return mod.OptionChange{Kind: kind, Group: g, GroupIndex: idx, OptionIndex: -1, MovedFrom: -1}
}

// containerOf returns the payload of options that carry their own.
func containerOf(o modgroup.Option) *modgroup.DataContainer {
	switch o := o.(type) {
	case *modgroup.SingleOption:
		return o.Container()
	case *modgroup.MultiOption:
		return o.Container()
	default:
		return nil
	}
}

// optionOf returns the option that owns c, or nil for group-level containers.
func optionOf(g modgroup.Group, c *modgroup.DataContainer) modgroup.Option {
	for _, o := range g.Options() {
		if containerOf(o) == c {
			return o
		}
	}
	return nil
}
