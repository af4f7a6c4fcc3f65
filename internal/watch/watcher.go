// SPDX-License-Identifier: MPL-2.0

// Package watch reports edits made to mod documents outside the process.
//
// A Watcher monitors a mod root (one directory per mod) and calls back once
// per mod after a quiet period, with every document of that mod that changed
// in the meantime. Mods debounce independently, so a burst of writes to one
// mod does not delay the report for another.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/modweave/modweave/pkg/mod"
)

// defaultDebounce matches the save queue delay so one queued save produces
// one report.
const defaultDebounce = 500 * time.Millisecond

var (
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("watch: Run called more than once")

	// documentPatterns select the files that make up a mod, relative to the root.
	documentPatterns = []string{
		"*/" + mod.MetaFile,
		"*/" + mod.DefaultFile,
		"*/group_*.json",
	}

	// defaultIgnores cover the store's own temp files and editor noise.
	defaultIgnores = []string{
		"**/*.tmp",
		"**/.git/**",
		"**/*.swp",
		"**/*~",
		"**/.DS_Store",
	}
)

type (
	// Change lists the documents of one mod that changed during a debounce window.
	Change struct {
		// Directory is the mod directory relative to the root.
		Directory string
		// Files are the changed document names, sorted.
		Files []string
	}

	// Config holds the parameters for a Watcher.
	Config struct {
		// Root is the directory holding one directory per mod.
		Root string

		// Ignore are extra doublestar patterns, relative to Root, that never
		// trigger a report.
		Ignore []string

		// Debounce is the quiet period per mod. Zero or negative values fall
		// back to 500ms.
		Debounce time.Duration

		// OnChange is called once per mod and window. Calls for the same mod
		// never overlap; a nil callback is a no-op.
		OnChange func(ctx context.Context, change Change) error

		// Logger receives watcher diagnostics. nil discards them.
		Logger *log.Logger
	}

	// Watcher monitors a mod root. Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		ignores  []string
		logger   *log.Logger
		debounce time.Duration
		root     string
		started  atomic.Bool

		mu      sync.Mutex
		pending map[string]*pendingMod
	}

	pendingMod struct {
		files   map[string]struct{}
		timer   *time.Timer
		running bool
	}
)

// New creates a Watcher for cfg.Root and registers the root and every mod
// directory below it.
func New(cfg Config) (*Watcher, error) {
	if cfg.Root == "" {
		return nil, errors.New("watch: mod root is required")
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve mod root: %w", err)
	}
	if info, statErr := os.Stat(root); statErr != nil || !info.IsDir() {
		return nil, fmt.Errorf("watch: mod root %q is not a directory", root)
	}

	for _, pat := range cfg.Ignore {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("watch: invalid ignore pattern %q: %w", pat, doublestar.ErrBadPattern)
		}
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		ignores:  append(slices.Clone(defaultIgnores), cfg.Ignore...),
		logger:   logger,
		debounce: debounce,
		root:     root,
		pending:  make(map[string]*pendingMod),
	}

	if err := w.addModDirectories(); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("close after init failure", "err", closeErr)
		}
		return nil, err
	}

	return w, nil
}

// Run blocks until ctx is cancelled, dispatching debounced reports. It
// returns nil on cancellation and an error when the watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	defer func() {
		w.mu.Lock()
		for _, p := range w.pending {
			if p.timer != nil {
				p.timer.Stop()
			}
		}
		w.mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close fsnotify", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			w.handle(ctx, evt)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, evt fsnotify.Event) {
	rel, err := filepath.Rel(w.root, evt.Name)
	if err != nil || w.isIgnored(rel) {
		return
	}

	// A new mod directory may already hold documents written before the
	// watch was registered.
	if evt.Has(fsnotify.Create) && !strings.ContainsRune(filepath.ToSlash(rel), '/') {
		if w.maybeAddModDir(evt.Name) {
			w.enqueueExisting(ctx, rel)
		}
		return
	}

	if !isDocument(rel) {
		return
	}
	dir, file := filepath.Split(rel)
	w.enqueue(ctx, filepath.Clean(dir), file)
}

func (w *Watcher) enqueue(ctx context.Context, dir, file string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.pending[dir]
	if !ok {
		p = &pendingMod{files: make(map[string]struct{})}
		w.pending[dir] = p
	}
	p.files[file] = struct{}{}
	if p.timer == nil {
		p.timer = time.AfterFunc(w.debounce, func() { w.fire(ctx, dir) })
	} else {
		p.timer.Reset(w.debounce)
	}
}

func (w *Watcher) enqueueExisting(ctx context.Context, dir string) {
	entries, err := os.ReadDir(filepath.Join(w.root, dir))
	if err != nil {
		return
	}
	for _, e := range entries {
		rel := filepath.Join(dir, e.Name())
		if !e.IsDir() && isDocument(rel) && !w.isIgnored(rel) {
			w.enqueue(ctx, dir, e.Name())
		}
	}
}

// fire reports the pending files of dir. A report still running for the
// same mod postpones this one by another debounce period.
func (w *Watcher) fire(ctx context.Context, dir string) {
	if ctx.Err() != nil {
		return
	}

	w.mu.Lock()
	p := w.pending[dir]
	if p == nil || len(p.files) == 0 {
		w.mu.Unlock()
		return
	}
	if p.running {
		p.timer.Reset(w.debounce)
		w.mu.Unlock()
		w.logger.Debug("postponing report, previous one still running", "mod", dir)
		return
	}
	change := Change{Directory: filepath.ToSlash(dir), Files: slices.Sorted(maps.Keys(p.files))}
	clear(p.files)
	p.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		p.running = false
		w.mu.Unlock()
	}()

	w.logger.Debug("mod changed", "mod", change.Directory, "files", change.Files)
	if w.cfg.OnChange != nil {
		if err := w.cfg.OnChange(ctx, change); err != nil {
			w.logger.Error("change callback failed", "mod", change.Directory, "err", err)
		}
	}
}

// addModDirectories registers the root and each non-ignored directory
// directly below it. Mods are flat, so deeper directories are not watched.
func (w *Watcher) addModDirectories() error {
	if err := w.fsw.Add(w.root); err != nil {
		return fmt.Errorf("watch: add mod root %q: %w", w.root, err)
	}
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return fmt.Errorf("watch: list mod root: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() || w.isIgnored(e.Name()) || w.isIgnored(e.Name()+"/") {
			continue
		}
		path := filepath.Join(w.root, e.Name())
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add mod directory %q: %w", path, err)
		}
	}
	return nil
}

// maybeAddModDir registers path when it is a new, non-ignored directory.
func (w *Watcher) maybeAddModDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	if err := w.fsw.Add(path); err != nil {
		w.logger.Warn("add new mod directory", "path", path, "err", err)
		return false
	}
	return true
}

func (w *Watcher) isIgnored(rel string) bool {
	return matchAny(w.ignores, rel)
}

// isDocument reports whether rel, relative to the root, names a mod document.
func isDocument(rel string) bool {
	return matchAny(documentPatterns, rel)
}

func matchAny(patterns []string, rel string) bool {
	normalized := filepath.ToSlash(rel)
	for _, pat := range patterns {
		if matched, err := doublestar.Match(pat, normalized); err == nil && matched {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}
