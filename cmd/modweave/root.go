// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the modweave command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "modweave",
		Short: "Edit the option groups of game mods",
		Long: TitleStyle.Render("modweave") + SubtitleStyle.Render(" - Edit the option groups of game mods") + `

modweave manages mods stored as one directory each: a meta.json, a
default_mod.json holding the unconditional payload, and one group_NNN_name.json
per option group. Groups come in five kinds (single, multi, imc, combining,
complex) and decide which files a selection of options applies.

` + SubtitleStyle.Render("Examples:") + `
  modweave mods create body-pack         Create an empty mod
  modweave group add body-pack Size      Add a single-selection group
  modweave option add body-pack Size Big Add an option to the group
  modweave resolve body-pack --set Size=Big
  modweave conflicts body-pack --cross-group`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.flags.verbose, "verbose", "v", false, "print editor events and issue pages")
	rootCmd.PersistentFlags().StringVar(&app.flags.configPath, "config", "", "config file (default is $HOME/.config/modweave/config.cue)")
	rootCmd.PersistentFlags().StringVar(&app.flags.modDir, "mods", "", "mod directory (overrides mod_directory)")

	rootCmd.AddCommand(newModsCommand(app))
	rootCmd.AddCommand(newGroupCommand(app))
	rootCmd.AddCommand(newOptionCommand(app))
	rootCmd.AddCommand(newResolveCommand(app))
	rootCmd.AddCommand(newConflictsCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))
	rootCmd.AddCommand(newWatchCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the status of the executed command.
// This is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		os.Exit(1)
	}

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}
