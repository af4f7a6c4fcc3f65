// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/modweave/modweave/internal/config"
	"github.com/modweave/modweave/internal/issue"
	"github.com/modweave/modweave/internal/notify"
	"github.com/modweave/modweave/internal/sanitize"
	"github.com/modweave/modweave/internal/savequeue"
	"github.com/modweave/modweave/pkg/mod"
	"github.com/modweave/modweave/pkg/modedit"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: every Cobra handler receives an App and opens a session through it.
	App struct {
		Config     ConfigProvider
		Filesystem FilesystemFactory
		stdout     io.Writer
		stderr     io.Writer
		flags      globalFlags
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config     ConfigProvider
		Filesystem FilesystemFactory
		Stdout     io.Writer
		Stderr     io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// FilesystemFactory opens the filesystem rooted at the mod directory.
	FilesystemFactory func(root string) (billy.Filesystem, error)

	// globalFlags holds the persistent root flags.
	globalFlags struct {
		configPath string
		modDir     string
		verbose    bool
	}

	// session is the per-invocation editing stack: one store, one editor and
	// the queue and bus it reports to. Close must run before the process exits
	// so queued writes reach disk.
	session struct {
		cfg      *config.Config
		modDir   string
		verbose  bool
		logger   *log.Logger
		store    *mod.Store
		bus      *notify.Bus
		queue    *savequeue.Queue
		editor   *modedit.Editor
		saveType modedit.SaveType
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Filesystem == nil {
		deps.Filesystem = osFilesystem
	}

	return &App{
		Config:     deps.Config,
		Filesystem: deps.Filesystem,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
	}, nil
}

// osFilesystem roots an OS filesystem at root, creating the directory first.
func osFilesystem(root string) (billy.Filesystem, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create mod directory: %w", err)
	}
	return osfs.New(root), nil
}

// loadConfig loads the configuration honoring --config.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}
	return a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: a.flags.configPath,
		WorkDir:        wd,
	})
}

// openSession builds the editing stack for one command invocation.
func (a *App) openSession(ctx context.Context) (*session, error) {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	modDir := a.flags.modDir
	if modDir == "" {
		if modDir, err = cfg.ResolveModDirectory(); err != nil {
			return nil, err
		}
	}

	logger := log.NewWithOptions(a.stderr, log.Options{
		Prefix: config.AppName,
		Level:  cfg.Log.Level.Level(),
	})

	fs, err := a.Filesystem(modDir)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("open mod directory").
			WithResource(modDir).
			WithSuggestion("Pass --mods to point at an existing directory").
			WithSuggestion("Set mod_directory in the configuration file").
			Wrap(err).
			BuildError()
	}

	sanitizer := sanitize.New(cfg.ReplaceNonASCIIOnImport)
	store := mod.NewStore(fs, sanitizer, logger)
	bus := notify.New()
	queue := savequeue.New(store, cfg.Save.Delay, logger)

	s := &session{
		cfg:     cfg,
		modDir:  modDir,
		verbose: a.flags.verbose || cfg.UI.Verbose,
		logger:  logger,
		store:   store,
		bus:     bus,
		queue:   queue,
		editor: modedit.New(
			modedit.WithNotifier(bus),
			modedit.WithSaver(queue),
			modedit.WithSanitizer(sanitizer),
			modedit.WithLogger(logger),
		),
		saveType: cfg.Save.Mode.SaveType(),
	}

	if s.verbose {
		bus.Subscribe(func(change mod.OptionChange) {
			if change.Kind == mod.PrepareChange {
				return
			}
			fmt.Fprintln(a.stderr, VerboseStyle.Render("  • "+change.String()))
		})
	}

	return s, nil
}

// Close writes queued edits and stops event delivery.
func (s *session) Close() error {
	err := s.queue.Close()
	s.bus.Close()
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("write queued edits").
			WithIssue(issue.SaveFailedId).
			WithResource(s.modDir).
			Wrap(err).
			BuildError()
	}
	return nil
}

// loadMod reads the mod stored in directory.
func (s *session) loadMod(directory string) (*mod.Mod, error) {
	m, err := s.store.Load(directory)
	if err != nil {
		ctx := issue.NewErrorContext().
			WithOperation("load mod").
			WithResource(directory).
			Wrap(err)
		if errors.Is(err, mod.ErrModNotFound) {
			ctx = ctx.WithIssue(issue.ModNotFoundId).
				WithSuggestion("Run 'modweave mods list' to see the mods in " + s.modDir)
		}
		return nil, ctx.BuildError()
	}
	return m, nil
}

// withSession opens a session, runs fn and closes the session, joining a
// failed close into the result.
func (a *App) withSession(ctx context.Context, fn func(s *session) error) (err error) {
	s, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()
	return fn(s)
}
