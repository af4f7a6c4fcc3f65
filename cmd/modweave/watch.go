// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/modweave/modweave/internal/watch"
)

// newWatchCommand creates the `modweave watch` command.
func newWatchCommand(app *App) *cobra.Command {
	var (
		debounce   time.Duration
		ignore     []string
		crossGroup bool
	)
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload mods whose documents change and report their conflicts",
		Long: `Reload mods whose documents change and report their conflicts.

Edits made by other tools to meta.json, default_mod.json or group_*.json are
collected per mod until the mod has been quiet for --debounce, then the mod is
reloaded and checked. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: runE(app, func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(s *session) error {
				w, err := watch.New(watch.Config{
					Root:     s.modDir,
					Ignore:   ignore,
					Debounce: debounce,
					Logger:   s.logger,
					OnChange: func(_ context.Context, change watch.Change) error {
						reportChange(app.stdout, s, change, crossGroup)
						return nil
					},
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(app.stdout, "%s %s\n", TitleStyle.Render("Watching"), s.modDir)
				return w.Run(cmd.Context())
			})
		}),
	}
	watchCmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "quiet period per mod before reporting")
	watchCmd.Flags().StringArrayVar(&ignore, "ignore", nil, "extra doublestar patterns to ignore (repeatable)")
	watchCmd.Flags().BoolVar(&crossGroup, "cross-group", true, "only report keys written from different groups")
	return watchCmd
}

// reportChange reloads the changed mod and prints its conflicts. A mod that
// no longer loads is reported rather than stopping the watch.
func reportChange(w io.Writer, s *session, change watch.Change, crossGroupOnly bool) {
	fmt.Fprintf(w, "%s %s\n", SubtitleStyle.Render(time.Now().Format(time.TimeOnly)),
		CmdStyle.Render(change.Directory+": "+strings.Join(change.Files, ", ")))
	m, err := s.loadMod(change.Directory)
	if err != nil {
		fmt.Fprintf(w, "  %s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, s.verbose))
		return
	}
	reportConflicts(w, m, crossGroupOnly)
}
