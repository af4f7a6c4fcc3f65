// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/modweave/modweave/pkg/mod"
	"github.com/modweave/modweave/pkg/modgroup"
	"github.com/modweave/modweave/pkg/types"
)

// groupEdit loads the mod named by args[0] and the group named by args[1]
// and hands both to fn.
func groupEdit(app *App, fn func(s *session, m *mod.Mod, g modgroup.Group, args []string) error) func(*cobra.Command, []string) error {
	return runE(app, func(cmd *cobra.Command, args []string) error {
		return app.withSession(cmd.Context(), func(s *session) error {
			m, err := s.loadMod(args[0])
			if err != nil {
				return err
			}
			g, err := findGroup(m, args[1])
			if err != nil {
				return err
			}
			return fn(s, m, g, args[2:])
		})
	})
}

// newGroupCommand creates the `modweave group` command tree. Groups are
// addressed by one-based number or by name.
func newGroupCommand(app *App) *cobra.Command {
	groupCmd := &cobra.Command{
		Use:   "group",
		Short: "Add, remove and reshape option groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var kind string
	addCmd := &cobra.Command{
		Use:   "add <mod> <name>",
		Short: "Append an empty group",
		Args:  cobra.ExactArgs(2),
		RunE: runE(app, func(cmd *cobra.Command, args []string) error {
			t, err := parseGroupType(kind)
			if err != nil {
				return err
			}
			return app.withSession(cmd.Context(), func(s *session) error {
				m, err := s.loadMod(args[0])
				if err != nil {
					return err
				}
				g, err := s.editor.AddGroup(m, t, args[1], s.saveType)
				if err != nil {
					return err
				}
				fmt.Fprintf(app.stdout, "%s Added %s group %s as #%d\n",
					SuccessStyle.Render("✓"), CmdStyle.Render(t.String()), TitleStyle.Render(g.Base().Name), m.GroupIndex(g)+1)
				return nil
			})
		}),
	}
	addCmd.Flags().StringVarP(&kind, "type", "t", "single", "group kind: single, multi, imc, combining or complex")
	groupCmd.AddCommand(addCmd)

	groupCmd.AddCommand(&cobra.Command{
		Use:   "delete <mod> <group>",
		Short: "Remove a group",
		Args:  cobra.ExactArgs(2),
		RunE: groupEdit(app, func(s *session, m *mod.Mod, g modgroup.Group, _ []string) error {
			if err := s.editor.DeleteGroup(m, g, s.saveType); err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s Deleted group %s\n", SuccessStyle.Render("✓"), TitleStyle.Render(g.Base().Name))
			return nil
		}),
	})

	groupCmd.AddCommand(&cobra.Command{
		Use:   "rename <mod> <group> <name>",
		Short: "Rename a group",
		Args:  cobra.ExactArgs(3),
		RunE: groupEdit(app, func(s *session, m *mod.Mod, g modgroup.Group, args []string) error {
			old := g.Base().Name
			if err := s.editor.RenameGroup(m, g, args[0], s.saveType); err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s Renamed %s to %s\n", SuccessStyle.Render("✓"), old, TitleStyle.Render(g.Base().Name))
			return nil
		}),
	})

	groupCmd.AddCommand(&cobra.Command{
		Use:   "move <mod> <group> <position>",
		Short: "Move a group to another position",
		Args:  cobra.ExactArgs(3),
		RunE: groupEdit(app, func(s *session, m *mod.Mod, g modgroup.Group, args []string) error {
			to, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			if err := s.editor.MoveGroup(m, g, to, s.saveType); err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s %s is now #%d\n", SuccessStyle.Render("✓"), TitleStyle.Render(g.Base().Name), m.GroupIndex(g)+1)
			return nil
		}),
	})

	groupCmd.AddCommand(&cobra.Command{
		Use:   "type <mod> <group> <kind>",
		Short: "Convert a group between single and multi",
		Args:  cobra.ExactArgs(3),
		RunE: groupEdit(app, func(s *session, m *mod.Mod, g modgroup.Group, args []string) error {
			t, err := parseGroupType(args[0])
			if err != nil {
				return err
			}
			converted, err := s.editor.ChangeGroupType(m, g, t, s.saveType)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s %s is now a %s group\n",
				SuccessStyle.Render("✓"), TitleStyle.Render(converted.Base().Name), CmdStyle.Render(converted.Type().String()))
			return nil
		}),
	})

	groupCmd.AddCommand(&cobra.Command{
		Use:   "priority <mod> <group> <priority>",
		Short: "Set the priority of a group",
		Args:  cobra.ExactArgs(3),
		RunE: groupEdit(app, func(s *session, m *mod.Mod, g modgroup.Group, args []string) error {
			p, err := strconv.ParseInt(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("priority %q: %w", args[0], err)
			}
			if err := s.editor.ChangeGroupPriority(m, g, types.ModPriority(p), s.saveType); err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s %s has priority %s\n", SuccessStyle.Render("✓"), TitleStyle.Render(g.Base().Name), g.Base().Priority)
			return nil
		}),
	})

	groupCmd.AddCommand(&cobra.Command{
		Use:   "describe <mod> <group> <description>",
		Short: "Set the description of a group",
		Args:  cobra.ExactArgs(3),
		RunE: groupEdit(app, func(s *session, m *mod.Mod, g modgroup.Group, args []string) error {
			return s.editor.ChangeGroupDescription(m, g, args[0], s.saveType)
		}),
	})

	groupCmd.AddCommand(&cobra.Command{
		Use:   "defaults <mod> <group> [option...]",
		Short: "Choose the options a new collection starts with",
		Long: `Choose the options a new collection starts with.

Single groups take exactly one option; other kinds take any number, and an
image-change group that can be disabled also accepts "disabled".`,
		Args: cobra.MinimumNArgs(2),
		RunE: groupEdit(app, func(s *session, m *mod.Mod, g modgroup.Group, args []string) error {
			setting, err := selectionSetting(g, args)
			if err != nil {
				return err
			}
			if err := s.editor.ChangeDefaultSettings(m, g, setting, s.saveType); err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s Defaults of %s set to %s\n",
				SuccessStyle.Render("✓"), TitleStyle.Render(g.Base().Name), g.Base().DefaultSettings)
			return nil
		}),
	})

	groupCmd.AddCommand(&cobra.Command{
		Use:   "container <mod> <group> <name>",
		Short: "Append an always-applied container to a complex group",
		Args:  cobra.ExactArgs(3),
		RunE: groupEdit(app, func(s *session, m *mod.Mod, g modgroup.Group, args []string) error {
			cg, ok := g.(*modgroup.ComplexGroup)
			if !ok {
				return fmt.Errorf("%s group %q has a fixed container layout", g.Type(), g.Base().Name)
			}
			c, err := s.editor.Complex.AddContainer(m, cg, args[0], s.saveType)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s Added container %s as #%d\n", SuccessStyle.Render("✓"), TitleStyle.Render(c.Name), c.Index()+1)
			return nil
		}),
	})

	return groupCmd
}
