// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modweave/modweave/pkg/mod"
	"github.com/modweave/modweave/pkg/modedit"
	"github.com/modweave/modweave/pkg/modgroup"
)

// newOptionCommand creates the `modweave option` command tree. Options are
// addressed by one-based number or by name inside their group.
func newOptionCommand(app *App) *cobra.Command {
	optionCmd := &cobra.Command{
		Use:   "option",
		Short: "Add, remove and fill options",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	optionCmd.AddCommand(&cobra.Command{
		Use:   "add <mod> <group> <name>",
		Short: "Append an option to a group",
		Args:  cobra.ExactArgs(3),
		RunE: groupEdit(app, func(s *session, m *mod.Mod, g modgroup.Group, args []string) error {
			o, err := addOption(s.editor, m, g, args[0], s.saveType)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s Added option %s to %s as #%d\n",
				SuccessStyle.Render("✓"), TitleStyle.Render(o.Base().Name), g.Base().Name, o.Index()+1)
			return nil
		}),
	})

	optionCmd.AddCommand(&cobra.Command{
		Use:   "delete <mod> <group> <option>",
		Short: "Remove an option",
		Args:  cobra.ExactArgs(3),
		RunE: groupEdit(app, func(s *session, m *mod.Mod, g modgroup.Group, args []string) error {
			o, err := findOption(g, args[0])
			if err != nil {
				return err
			}
			if err := deleteOption(s.editor, m, o, s.saveType); err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s Deleted option %s from %s\n", SuccessStyle.Render("✓"), TitleStyle.Render(o.Base().Name), g.Base().Name)
			return nil
		}),
	})

	optionCmd.AddCommand(&cobra.Command{
		Use:   "move <mod> <group> <option> <position>",
		Short: "Move an option to another position",
		Args:  cobra.ExactArgs(4),
		RunE: groupEdit(app, func(s *session, m *mod.Mod, g modgroup.Group, args []string) error {
			o, err := findOption(g, args[0])
			if err != nil {
				return err
			}
			to, err := parsePosition(args[1])
			if err != nil {
				return err
			}
			if err := moveOption(s.editor, m, o, to, s.saveType); err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s %s is now #%d\n", SuccessStyle.Render("✓"), TitleStyle.Render(o.Base().Name), o.Index()+1)
			return nil
		}),
	})

	optionCmd.AddCommand(&cobra.Command{
		Use:   "rename <mod> <group> <option> <name>",
		Short: "Rename an option",
		Args:  cobra.ExactArgs(4),
		RunE: groupEdit(app, func(s *session, m *mod.Mod, g modgroup.Group, args []string) error {
			o, err := findOption(g, args[0])
			if err != nil {
				return err
			}
			return s.editor.RenameOption(m, o, args[1], s.saveType)
		}),
	})

	optionCmd.AddCommand(&cobra.Command{
		Use:   "files <mod> <group> <option> <game/path=file>...",
		Short: "Add redirections to the container of an option",
		Long: `Add redirections to the container of an option.

Single and multi options carry their own container. Combining groups keep one
container per combination of options, so for them <option> names a container
by one-based number instead.`,
		Args: cobra.MinimumNArgs(4),
		RunE: groupEdit(app, func(s *session, m *mod.Mod, g modgroup.Group, args []string) error {
			c, err := optionContainer(g, args[0])
			if err != nil {
				return err
			}
			files, err := parseFiles(args[1:])
			if err != nil {
				return err
			}
			if err := s.editor.AddFiles(m, c, files, s.saveType); err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s %d redirection(s) in %s\n", SuccessStyle.Render("✓"), len(c.Files), TitleStyle.Render(containerLabel(g, c)))
			return nil
		}),
	})

	return optionCmd
}

// addOption appends an option through the editor of g's kind.
func addOption(e *modedit.Editor, m *mod.Mod, g modgroup.Group, name string, saveType modedit.SaveType) (modgroup.Option, error) {
	switch g := g.(type) {
	case *modgroup.SingleGroup:
		return asOption(e.Single.AddOption(m, g, name, saveType))
	case *modgroup.MultiGroup:
		return asOption(e.Multi.AddOption(m, g, name, saveType))
	case *modgroup.ImcGroup:
		return asOption(e.Imc.AddOption(m, g, name, saveType))
	case *modgroup.CombiningGroup:
		return asOption(e.Combining.AddOption(m, g, name, saveType))
	case *modgroup.ComplexGroup:
		return asOption(e.Complex.AddOption(m, g, name, saveType))
	default:
		return nil, fmt.Errorf("group %q: %w", g.Base().Name, modgroup.ErrUnknownGroupType)
	}
}

// deleteOption removes o through the editor of its kind.
func deleteOption(e *modedit.Editor, m *mod.Mod, o modgroup.Option, saveType modedit.SaveType) error {
	switch o := o.(type) {
	case *modgroup.SingleOption:
		return e.Single.DeleteOption(m, o, saveType)
	case *modgroup.MultiOption:
		return e.Multi.DeleteOption(m, o, saveType)
	case *modgroup.ImcOption:
		return e.Imc.DeleteOption(m, o, saveType)
	case *modgroup.CombiningOption:
		return e.Combining.DeleteOption(m, o, saveType)
	case *modgroup.ComplexOption:
		return e.Complex.DeleteOption(m, o, saveType)
	default:
		return fmt.Errorf("option %q: %w", o.Base().Name, modgroup.ErrUnknownGroupType)
	}
}

// moveOption reorders o through the editor of its kind.
func moveOption(e *modedit.Editor, m *mod.Mod, o modgroup.Option, to int, saveType modedit.SaveType) error {
	switch o := o.(type) {
	case *modgroup.SingleOption:
		return e.Single.MoveOption(m, o, to, saveType)
	case *modgroup.MultiOption:
		return e.Multi.MoveOption(m, o, to, saveType)
	case *modgroup.ImcOption:
		return e.Imc.MoveOption(m, o, to, saveType)
	case *modgroup.CombiningOption:
		return e.Combining.MoveOption(m, o, to, saveType)
	case *modgroup.ComplexOption:
		return e.Complex.MoveOption(m, o, to, saveType)
	default:
		return fmt.Errorf("option %q: %w", o.Base().Name, modgroup.ErrUnknownGroupType)
	}
}

// optionContainer returns the payload addressed by ref inside g.
func optionContainer(g modgroup.Group, ref string) (*modgroup.DataContainer, error) {
	switch g := g.(type) {
	case *modgroup.SingleGroup, *modgroup.MultiGroup:
		o, err := findOption(g, ref)
		if err != nil {
			return nil, err
		}
		switch o := o.(type) {
		case *modgroup.SingleOption:
			return o.Container(), nil
		case *modgroup.MultiOption:
			return o.Container(), nil
		}
	case *modgroup.CombiningGroup, *modgroup.ComplexGroup:
		index, err := parsePosition(ref)
		if err != nil {
			return nil, err
		}
		containers := g.Containers()
		if index >= len(containers) {
			return nil, &modgroup.IndexOutOfRangeError{Group: g.Base().Name, What: "container", Index: index, Count: len(containers)}
		}
		return containers[index], nil
	}
	return nil, fmt.Errorf("%s group %q has no file containers", g.Type(), g.Base().Name)
}

// containerLabel names c for output.
func containerLabel(g modgroup.Group, c *modgroup.DataContainer) string {
	if c.Name != "" {
		return g.Base().Name + "/" + c.Name
	}
	return fmt.Sprintf("%s/#%d", g.Base().Name, c.Index()+1)
}

func asOption[O modgroup.Option](o O, err error) (modgroup.Option, error) {
	if err != nil {
		return nil, err
	}
	return o, nil
}
