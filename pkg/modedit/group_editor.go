// SPDX-License-Identifier: MPL-2.0

package modedit

import (
	"fmt"

	"github.com/modweave/modweave/pkg/mod"
	"github.com/modweave/modweave/pkg/modgroup"
)

type (
	// optionGroup is a group kind whose options can be added, removed and
	// reordered.
	optionGroup[O modgroup.Option] interface {
		modgroup.Group
		AddOption(name string) (O, error)
		RemoveOption(index int) error
		MoveOption(from, to int) error
	}

	// groupEditor implements the operations every group kind shares. The
	// kind-specific bit-layout migration lives in the groups themselves and
	// in mod.MigrateSetting.
	groupEditor[G optionGroup[O], O modgroup.Option] struct {
		editor *Editor
		create func(name string) G
	}
)

// AddGroup appends an empty group named name to m. Duplicate and empty
// names are rejected without touching m.
func (e *groupEditor[G, O]) AddGroup(m *mod.Mod, name string, saveType SaveType) (G, error) {
	var zero G
	if err := e.editor.CheckGroupName(m, name, nil); err != nil {
		return zero, e.editor.reject("add group", err)
	}
	g := e.create(name)
	modgroup.Normalize(g)
	idx := len(m.Groups)
	err := e.editor.commit(m, saveType, mod.GroupTarget(idx), groupChange(mod.GroupAdded, g, idx), func() {
		m.Groups = append(m.Groups, g)
	})
	return g, err
}

// AddOption appends an option named name to g. A full group is left untouched.
func (e *groupEditor[G, O]) AddOption(m *mod.Mod, g G, name string, saveType SaveType) (O, error) {
	var zero O
	idx, err := e.editor.groupIndex(m, g)
	if err != nil {
		return zero, err
	}
	if g.OptionCount() >= g.MaxOptions() {
		return zero, e.editor.reject("add option", &modgroup.CapacityExceededError{Group: g.Base().Name, Type: g.Type(), Max: g.MaxOptions()})
	}

	change := groupChange(mod.OptionAdded, g, idx)
	change.OptionIndex = g.OptionCount()
	o, err := g.AddOption(name)
	if err != nil {
		return zero, e.editor.reject("add option", err)
	}
	// Announced only once the kind accepted the option, so every prepare
	// is followed by its change.
	e.editor.prepare(m, change)
	g.Base().DefaultSettings = g.FixSetting(g.Base().DefaultSettings)

	change.Option = o
	change.Container = containerOf(o)
	err = e.editor.save(m, mod.GroupTarget(idx), saveType)
	e.editor.notify(m, change)
	return o, err
}

// FindOrAddOption returns the first option of g named name, adding it when
// missing. The boolean reports whether the option was added.
func (e *groupEditor[G, O]) FindOrAddOption(m *mod.Mod, g G, name string, saveType SaveType) (O, bool, error) {
	if o, ok := modgroup.FindOption(g, name).(O); ok {
		return o, false, nil
	}
	o, err := e.AddOption(m, g, name, saveType)
	if err != nil {
		return o, false, err
	}
	return o, true, nil
}

// DeleteOption removes o from its group and shifts the group's default
// settings so they keep selecting the same remaining options.
func (e *groupEditor[G, O]) DeleteOption(m *mod.Mod, o O, saveType SaveType) error {
	g, idx, err := e.owner(m, o)
	if err != nil {
		return err
	}
	optionIdx := o.Index()
	if optionIdx < 0 {
		return e.editor.reject("delete option", fmt.Errorf("option %q: %w", o.Base().Name, modgroup.ErrIndexOutOfRange))
	}
	change := groupChange(mod.OptionDeleted, g, idx)
	change.OptionIndex = optionIdx
	return e.editor.commit(m, saveType, mod.GroupTarget(idx), change, func() {
		_ = g.RemoveOption(optionIdx)
		g.Base().DefaultSettings = mod.MigrateSetting(change, g.Base().DefaultSettings)
	})
}

// MoveOption moves o to position to and permutes the group's default
// settings with it. Out-of-range targets are clamped.
func (e *groupEditor[G, O]) MoveOption(m *mod.Mod, o O, to int, saveType SaveType) error {
	g, idx, err := e.owner(m, o)
	if err != nil {
		return err
	}
	from := o.Index()
	if from < 0 {
		return e.editor.reject("move option", fmt.Errorf("option %q: %w", o.Base().Name, modgroup.ErrIndexOutOfRange))
	}
	to = max(0, min(to, g.OptionCount()-1))
	if from == to {
		return nil
	}
	change := groupChange(mod.OptionMoved, g, idx)
	change.Option = o
	change.OptionIndex = to
	change.MovedFrom = from
	change.Container = containerOf(o)
	return e.editor.commit(m, saveType, mod.GroupTarget(idx), change, func() {
		_ = g.MoveOption(from, to)
		g.Base().DefaultSettings = mod.MigrateSetting(change, g.Base().DefaultSettings)
	})
}

// owner returns the group of o and its position in m.
func (e *groupEditor[G, O]) owner(m *mod.Mod, o O) (G, int, error) {
	g, ok := o.Group().(G)
	if !ok {
		var zero G
		return zero, -1, e.editor.reject("edit option", fmt.Errorf("option %q: %w", o.Base().Name, ErrGroupNotFound))
	}
	idx, err := e.editor.groupIndex(m, g)
	return g, idx, err
}
