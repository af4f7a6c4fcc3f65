// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modweave/modweave/internal/issue"
	"github.com/modweave/modweave/pkg/mod"
	"github.com/modweave/modweave/pkg/modgroup"
	"github.com/modweave/modweave/pkg/types"
)

// newModsCommand creates the `modweave mods` command tree.
func newModsCommand(app *App) *cobra.Command {
	modsCmd := &cobra.Command{
		Use:   "mods",
		Short: "List, create and inspect mods",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	modsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the mods in the mod directory",
		Args:  cobra.NoArgs,
		RunE: runE(app, func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(s *session) error {
				return listMods(app.stdout, s)
			})
		}),
	})

	var name string
	createCmd := &cobra.Command{
		Use:   "create <directory>",
		Short: "Create an empty mod",
		Args:  cobra.ExactArgs(1),
		RunE: runE(app, func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(s *session) error {
				return createMod(app.stdout, s, args[0], name)
			})
		}),
	}
	createCmd.Flags().StringVar(&name, "name", "", "display name (defaults to the directory)")
	modsCmd.AddCommand(createCmd)

	modsCmd.AddCommand(&cobra.Command{
		Use:   "show <mod>",
		Short: "Show the groups and options of a mod",
		Args:  cobra.ExactArgs(1),
		RunE: runE(app, func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(s *session) error {
				m, err := s.loadMod(args[0])
				if err != nil {
					return err
				}
				showMod(app.stdout, m)
				return nil
			})
		}),
	})

	modsCmd.AddCommand(&cobra.Command{
		Use:   "files <mod> <game/path=file>...",
		Short: "Add redirections to the default container of a mod",
		Args:  cobra.MinimumNArgs(2),
		RunE: runE(app, func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(s *session) error {
				m, err := s.loadMod(args[0])
				if err != nil {
					return err
				}
				files, err := parseFiles(args[1:])
				if err != nil {
					return err
				}
				if err := s.editor.AddFiles(m, m.Default, files, s.saveType); err != nil {
					return err
				}
				fmt.Fprintf(app.stdout, "%s %d redirection(s) in the default container of %s\n",
					SuccessStyle.Render("✓"), len(m.Default.Files), TitleStyle.Render(m.Name()))
				return nil
			})
		}),
	})

	return modsCmd
}

func listMods(w io.Writer, s *session) error {
	dirs, err := s.store.List()
	if err != nil {
		return err
	}

	fmt.Fprintln(w, TitleStyle.Render("Mods in "+s.modDir))
	if len(dirs) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none)"))
		return nil
	}
	for _, dir := range dirs {
		m, err := s.store.Load(dir)
		if err != nil {
			fmt.Fprintf(w, "  %s %s\n", dir, WarningStyle.Render("(unreadable: "+err.Error()+")"))
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", dir, SubtitleStyle.Render(fmt.Sprintf("%q, %d group(s)", m.Name(), len(m.Groups))))
	}
	return nil
}

func createMod(w io.Writer, s *session, dir, name string) error {
	if name == "" {
		name = dir
	}
	if _, err := s.store.Filesystem().Stat(s.store.Filesystem().Join(dir, mod.MetaFile)); err == nil {
		return issue.NewErrorContext().
			WithOperation("create mod").
			WithResource(dir).
			WithSuggestion("Choose another directory name").
			Wrap(fmt.Errorf("mod %q already exists", dir)).
			BuildError()
	}
	m, err := s.store.Create(dir, name)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("create mod").
			WithResource(dir).
			WithIssue(issue.SaveFailedId).
			Wrap(err).
			BuildError()
	}
	fmt.Fprintf(w, "%s Created mod %s in %s\n", SuccessStyle.Render("✓"), TitleStyle.Render(m.Name()), dir)
	return nil
}

func showMod(w io.Writer, m *mod.Mod) {
	fmt.Fprintln(w, TitleStyle.Render(m.Name()))
	if m.Meta.Author != "" {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("author"), m.Meta.Author)
	}
	if m.Meta.Version != "" {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("version"), m.Meta.Version)
	}
	counts := m.Default.Counts()
	fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("default"), describeCounts(counts))
	fmt.Fprintln(w)

	if len(m.Groups) == 0 {
		fmt.Fprintf(w, "%s\n", SubtitleStyle.Render("(no groups)"))
		return
	}
	for i, g := range m.Groups {
		showGroup(w, i, g)
	}
}

func showGroup(w io.Writer, index int, g modgroup.Group) {
	b := g.Base()
	fmt.Fprintf(w, "%s %s %s %s\n",
		indexStyle.Render(fmt.Sprintf("%d.", index+1)),
		TitleStyle.Render(b.Name),
		CmdStyle.Render("["+g.Type().String()+"]"),
		SubtitleStyle.Render(fmt.Sprintf("priority %s, %d/%s option(s)", b.Priority, g.OptionCount(), maxOptions(g))))

	defaults := g.FixSetting(b.DefaultSettings)
	for j, o := range g.Options() {
		marker := " "
		if isSelected(g, defaults, j) {
			marker = SuccessStyle.Render("*")
		}
		fmt.Fprintf(w, "     %s %s %s\n", marker, indexStyle.Render(fmt.Sprintf("%d.", j+1)), o.Base().Name)
	}
	if imc, ok := g.(*modgroup.ImcGroup); ok && imc.IsDisabled(defaults) {
		fmt.Fprintf(w, "     %s\n", WarningStyle.Render("disabled by default"))
	}
}

// isSelected reports whether setting selects the option at index of g.
func isSelected(g modgroup.Group, setting types.Setting, index int) bool {
	if g.Behaviour() == modgroup.SingleSelection {
		return setting.AsIndex() == index
	}
	return setting.HasFlag(index)
}

func maxOptions(g modgroup.Group) string {
	if g.Behaviour() == modgroup.SingleSelection {
		return "∞"
	}
	return fmt.Sprint(g.MaxOptions())
}

func describeCounts(c modgroup.Counts) string {
	if c.Total() == 0 {
		return SubtitleStyle.Render("empty")
	}
	parts := make([]string, 0, 3)
	if c.Files > 0 {
		parts = append(parts, fmt.Sprintf("%d file(s)", c.Files))
	}
	if c.Swaps > 0 {
		parts = append(parts, fmt.Sprintf("%d swap(s)", c.Swaps))
	}
	if c.Manipulations > 0 {
		parts = append(parts, fmt.Sprintf("%d manipulation(s)", c.Manipulations))
	}
	return strings.Join(parts, ", ")
}
