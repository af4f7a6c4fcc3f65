// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modweave/modweave/pkg/meta"
	"github.com/modweave/modweave/pkg/mod"
	"github.com/modweave/modweave/pkg/modgroup"
	"github.com/modweave/modweave/pkg/types"
)

// newResolveCommand creates the `modweave resolve` command.
func newResolveCommand(app *App) *cobra.Command {
	var selections []string
	resolveCmd := &cobra.Command{
		Use:   "resolve <mod>",
		Short: "Print the files a selection of options applies",
		Long: `Print the files a selection of options applies.

Groups start at their default options; each --set replaces the selection of one
group. Groups are applied by descending priority and the default container
last, so later contributions win conflicting paths.`,
		Example: `  modweave resolve body-pack --set Size=Big --set Extras=Tattoos,Scars`,
		Args:    cobra.ExactArgs(1),
		RunE: runE(app, func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(s *session) error {
				m, err := s.loadMod(args[0])
				if err != nil {
					return err
				}
				settings, err := parseSelections(m, selections)
				if err != nil {
					return err
				}
				redirections, manipulations := m.AppliedData(settings)
				printResolution(app.stdout, m, settings, redirections, manipulations)
				return nil
			})
		}),
	}
	resolveCmd.Flags().StringArrayVar(&selections, "set", nil, "select options as group=option[,option...] (repeatable)")
	return resolveCmd
}

func printResolution(w io.Writer, m *mod.Mod, settings *mod.Settings, redirections modgroup.Redirections, manipulations meta.Manipulations) {
	fmt.Fprintln(w, TitleStyle.Render(m.Name()))
	for i, g := range m.Groups {
		fmt.Fprintf(w, "  %s %s\n", CmdStyle.Render(g.Base().Name+":"), selectedNames(g, settings.Values[i]))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, SubtitleStyle.Render(fmt.Sprintf("%d redirection(s)", len(redirections))))
	for _, path := range slices.Sorted(maps.Keys(redirections)) {
		fmt.Fprintf(w, "  %s -> %s\n", path, SuccessStyle.Render(string(redirections[path])))
	}
	if len(manipulations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, SubtitleStyle.Render(fmt.Sprintf("%d manipulation(s)", len(manipulations))))
		for _, manip := range manipulations.Sorted() {
			fmt.Fprintf(w, "  %s\n", manip.Identity())
		}
	}
}

// selectedNames lists the options setting selects in g.
func selectedNames(g modgroup.Group, setting types.Setting) string {
	if imc, ok := g.(*modgroup.ImcGroup); ok && imc.IsDisabled(setting) {
		return WarningStyle.Render(disabledOption)
	}
	var names []string
	for i, o := range g.Options() {
		if isSelected(g, setting, i) {
			names = append(names, o.Base().Name)
		}
	}
	if len(names) == 0 {
		return SubtitleStyle.Render("(none)")
	}
	return strings.Join(names, ", ")
}
