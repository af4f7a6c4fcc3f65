// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modweave/modweave/internal/conflict"
	"github.com/modweave/modweave/pkg/mod"
	"github.com/modweave/modweave/pkg/types"
)

// newConflictsCommand creates the `modweave conflicts` command.
func newConflictsCommand(app *App) *cobra.Command {
	var (
		crossGroup bool
		fail       bool
	)
	conflictsCmd := &cobra.Command{
		Use:   "conflicts <mod>",
		Short: "Report paths and records written by more than one container",
		Long: `Report paths and records written by more than one container.

Containers inside one group are often mutually exclusive options, so
--cross-group limits the report to keys written from different groups.`,
		Args: cobra.ExactArgs(1),
		RunE: runE(app, func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(s *session) error {
				m, err := s.loadMod(args[0])
				if err != nil {
					return err
				}
				conflicts := reportConflicts(app.stdout, m, crossGroup)
				if fail && conflicts > 0 {
					return &ExitError{Code: types.ExitConflicts}
				}
				return nil
			})
		}),
	}
	conflictsCmd.Flags().BoolVar(&crossGroup, "cross-group", false, "only report keys written from different groups")
	conflictsCmd.Flags().BoolVar(&fail, "fail", false, "exit with status 3 when conflicts are found")
	return conflictsCmd
}

// reportConflicts prints the conflicts of m and returns how many were found.
func reportConflicts(w io.Writer, m *mod.Mod, crossGroupOnly bool) int {
	ix := conflict.Build(m)
	conflicts := ix.Conflicts(crossGroupOnly)

	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render(m.Name()),
		SubtitleStyle.Render(fmt.Sprintf("(%d container(s))", ix.ContainerCount())))
	if len(conflicts) == 0 {
		fmt.Fprintf(w, "  %s\n", SuccessStyle.Render("no conflicts"))
		return 0
	}
	for _, c := range conflicts {
		scope := "in-group"
		if c.CrossGroup {
			scope = "cross-group"
		}
		fmt.Fprintf(w, "  %s %s %s\n", WarningStyle.Render(c.Kind.String()), c.Key, SubtitleStyle.Render("("+scope+")"))
		writers := make([]string, 0, len(c.Containers))
		for _, ref := range c.Containers {
			label := describeRef(ref)
			if slices.Contains(c.Swaps, ref) {
				label += SubtitleStyle.Render(" (swap)")
			}
			writers = append(writers, label)
		}
		fmt.Fprintf(w, "      %s\n", strings.Join(writers, ", "))
	}
	return len(conflicts)
}

func describeRef(ref conflict.ContainerRef) string {
	if ref.Group == conflict.DefaultGroup {
		return CmdStyle.Render("default")
	}
	name := ref.Name
	if name == "" {
		name = fmt.Sprintf("#%d", ref.Container+1)
	}
	return CmdStyle.Render(ref.GroupName) + "/" + name
}
