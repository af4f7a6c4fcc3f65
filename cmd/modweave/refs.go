// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/modweave/modweave/pkg/mod"
	"github.com/modweave/modweave/pkg/modedit"
	"github.com/modweave/modweave/pkg/modgroup"
	"github.com/modweave/modweave/pkg/types"
)

// disabledOption selects the disable bit of an image-change group in --set
// and --defaults lists.
const disabledOption = "disabled"

var groupTypes = []modgroup.GroupType{
	modgroup.TypeSingle,
	modgroup.TypeMulti,
	modgroup.TypeImc,
	modgroup.TypeCombining,
	modgroup.TypeComplex,
}

// parseGroupType accepts a group kind name in any case.
func parseGroupType(name string) (modgroup.GroupType, error) {
	for _, t := range groupTypes {
		if strings.EqualFold(t.String(), name) {
			return t, nil
		}
	}
	return modgroup.ParseGroupType(name)
}

// findGroup resolves ref as a one-based group number or a group name.
func findGroup(m *mod.Mod, ref string) (modgroup.Group, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(m.Groups) {
			return nil, &modgroup.IndexOutOfRangeError{Group: m.Name(), What: "group", Index: n - 1, Count: len(m.Groups)}
		}
		return m.Groups[n-1], nil
	}
	if g := m.FindGroup(ref); g != nil {
		return g, nil
	}
	return nil, fmt.Errorf("group %q of mod %q: %w", ref, m.Name(), modedit.ErrGroupNotFound)
}

// findOption resolves ref as a one-based option number or an option name.
func findOption(g modgroup.Group, ref string) (modgroup.Option, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > g.OptionCount() {
			return nil, &modgroup.IndexOutOfRangeError{Group: g.Base().Name, What: "option", Index: n - 1, Count: g.OptionCount()}
		}
		return g.Options()[n-1], nil
	}
	if o := modgroup.FindOption(g, ref); o != nil {
		return o, nil
	}
	return nil, fmt.Errorf("option %q of group %q: %w", ref, g.Base().Name, modgroup.ErrIndexOutOfRange)
}

// parsePosition turns a one-based position argument into an index.
func parsePosition(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("position %q: expected a number from 1", arg)
	}
	return n - 1, nil
}

// selectionSetting builds the setting that selects the named options of g.
// Single-selection groups take exactly one option.
func selectionSetting(g modgroup.Group, refs []string) (types.Setting, error) {
	if g.Behaviour() == modgroup.SingleSelection {
		if len(refs) != 1 {
			return 0, fmt.Errorf("group %q selects exactly one option, got %d", g.Base().Name, len(refs))
		}
		o, err := findOption(g, refs[0])
		if err != nil {
			return 0, err
		}
		return types.Setting(o.Index()), nil
	}

	var setting types.Setting
	for _, ref := range refs {
		if imc, ok := g.(*modgroup.ImcGroup); ok && strings.EqualFold(ref, disabledOption) {
			if !imc.CanBeDisabled {
				return 0, fmt.Errorf("group %q cannot be disabled", g.Base().Name)
			}
			setting |= modgroup.DisableSetting
			continue
		}
		o, err := findOption(g, ref)
		if err != nil {
			return 0, err
		}
		setting |= types.OneHot(o.Index())
	}
	return setting, nil
}

// parseSelections parses repeated group=opt1,opt2 arguments into per-group
// settings on top of the mod's defaults.
func parseSelections(m *mod.Mod, args []string) (*mod.Settings, error) {
	settings := mod.DefaultSettings(m)
	settings.Enabled = true
	for _, arg := range args {
		groupRef, optionRefs, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("selection %q: expected group=option[,option...]", arg)
		}
		g, err := findGroup(m, groupRef)
		if err != nil {
			return nil, err
		}
		var refs []string
		if optionRefs != "" {
			refs = strings.Split(optionRefs, ",")
		}
		setting, err := selectionSetting(g, refs)
		if err != nil {
			return nil, err
		}
		settings.Values[m.GroupIndex(g)] = g.FixSetting(setting)
	}
	return settings, nil
}

// parseFiles parses game=file pairs into validated redirections.
func parseFiles(args []string) (map[types.GamePath]types.FullPath, error) {
	files := make(map[types.GamePath]types.FullPath, len(args))
	for _, arg := range args {
		game, file, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("redirection %q: expected game/path=file", arg)
		}
		path, err := types.NewGamePath(game)
		if err != nil {
			return nil, err
		}
		full := types.FullPath(file)
		if err := full.Validate(); err != nil {
			return nil, err
		}
		files[path] = full
	}
	return files, nil
}
