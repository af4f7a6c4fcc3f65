// SPDX-License-Identifier: MPL-2.0

package modedit

import (
	"fmt"

	"github.com/modweave/modweave/pkg/meta"
	"github.com/modweave/modweave/pkg/mod"
	"github.com/modweave/modweave/pkg/modgroup"
	"github.com/modweave/modweave/pkg/types"
)

type (
	// SingleEditor edits single-selection groups.
	SingleEditor struct {
		groupEditor[*modgroup.SingleGroup, *modgroup.SingleOption]
	}

	// MultiEditor edits multi-selection groups.
	MultiEditor struct {
		groupEditor[*modgroup.MultiGroup, *modgroup.MultiOption]
	}

	// ImcEditor edits image-change groups.
	ImcEditor struct {
		groupEditor[*modgroup.ImcGroup, *modgroup.ImcOption]
	}

	// CombiningEditor edits combining groups.
	CombiningEditor struct {
		groupEditor[*modgroup.CombiningGroup, *modgroup.CombiningOption]
	}

	// ComplexEditor edits complex groups.
	ComplexEditor struct {
		groupEditor[*modgroup.ComplexGroup, *modgroup.ComplexOption]
	}
)

func newDefaultImcGroup(name string) *modgroup.ImcGroup {
	return modgroup.NewImcGroup(name, modgroup.DefaultImcIdentifier, meta.ImcEntry{})
}

// AddImcGroup appends an image-change group for identifier.
func (e *ImcEditor) AddImcGroup(m *mod.Mod, name string, identifier meta.ImcIdentifier, entry meta.ImcEntry, saveType SaveType) (*modgroup.ImcGroup, error) {
	if err := identifier.Validate(); err != nil {
		return nil, e.editor.reject("add imc group", err)
	}
	sub := groupEditor[*modgroup.ImcGroup, *modgroup.ImcOption]{
		editor: e.editor,
		create: func(name string) *modgroup.ImcGroup { return modgroup.NewImcGroup(name, identifier, entry) },
	}
	return sub.AddGroup(m, name, saveType)
}

// ChangeDefaultEntry sets the record options toggle attribute bits of.
func (e *ImcEditor) ChangeDefaultEntry(m *mod.Mod, g *modgroup.ImcGroup, entry meta.ImcEntry, saveType SaveType) error {
	idx, err := e.editor.groupIndex(m, g)
	if err != nil {
		return err
	}
	if g.DefaultEntry == entry {
		return nil
	}
	return e.editor.commit(m, saveType, mod.GroupTarget(idx), groupChange(mod.OptionMetaChanged, g, idx), func() {
		g.DefaultEntry = entry
	})
}

// ChangeCanBeDisabled allows or forbids switching g off. Forbidding it also
// drops the disable bit from the defaults.
func (e *ImcEditor) ChangeCanBeDisabled(m *mod.Mod, g *modgroup.ImcGroup, canBeDisabled bool, saveType SaveType) error {
	idx, err := e.editor.groupIndex(m, g)
	if err != nil {
		return err
	}
	if g.CanBeDisabled == canBeDisabled {
		return nil
	}
	return e.editor.commit(m, saveType, mod.GroupTarget(idx), groupChange(mod.OptionMetaChanged, g, idx), func() {
		g.CanBeDisabled = canBeDisabled
		modgroup.Normalize(g)
	})
}

// ChangeDefaultDisabled sets whether new collections start with g switched off.
func (e *ImcEditor) ChangeDefaultDisabled(m *mod.Mod, g *modgroup.ImcGroup, defaultDisabled bool, saveType SaveType) error {
	idx, err := e.editor.groupIndex(m, g)
	if err != nil {
		return err
	}
	if g.DefaultDisabled == defaultDisabled {
		return nil
	}
	return e.editor.commit(m, saveType, mod.GroupTarget(idx), groupChange(mod.OptionMetaChanged, g, idx), func() {
		g.DefaultDisabled = defaultDisabled
		if !defaultDisabled {
			g.DefaultSettings &^= modgroup.DisableSetting
		}
		modgroup.Normalize(g)
	})
}

// SetContainerName names the power-set container at index.
func (e *CombiningEditor) SetContainerName(m *mod.Mod, g *modgroup.CombiningGroup, index int, name string, saveType SaveType) error {
	idx, err := e.editor.groupIndex(m, g)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(g.Data) {
		return e.editor.reject("rename container", &modgroup.IndexOutOfRangeError{Group: g.Name, What: "container", Index: index, Count: len(g.Data)})
	}
	c := g.Data[index]
	if c.Name == name {
		return nil
	}
	change := groupChange(mod.DisplayChange, g, idx)
	change.Container = c
	return e.editor.commit(m, saveType, mod.GroupTarget(idx), change, func() {
		c.Name = name
	})
}

// ChangeConditions sets the prerequisite of o. Bits beyond the option count
// and the option's own bit are dropped.
func (e *ComplexEditor) ChangeConditions(m *mod.Mod, o *modgroup.ComplexOption, conditions types.MaskedSetting, saveType SaveType) error {
	g, idx, err := e.owner(m, o)
	if err != nil {
		return err
	}
	conditions = conditions.Limit(g.OptionCount()).WithoutBit(o.Index())
	if o.Conditions == conditions {
		return nil
	}
	change := groupChange(mod.OptionMetaChanged, g, idx)
	change.Option = o
	change.OptionIndex = o.Index()
	return e.editor.commit(m, saveType, mod.GroupTarget(idx), change, func() {
		o.Conditions = conditions
	})
}

// ChangeAssociation sets which settings apply the container at index.
func (e *ComplexEditor) ChangeAssociation(m *mod.Mod, g *modgroup.ComplexGroup, index int, association types.MaskedSetting, saveType SaveType) error {
	c, idx, err := e.container(m, g, index)
	if err != nil {
		return err
	}
	association = association.Limit(g.OptionCount())
	if c.Association == association {
		return nil
	}
	change := groupChange(mod.OptionMetaChanged, g, idx)
	change.Container = &c.DataContainer
	return e.editor.commit(m, saveType, mod.GroupTarget(idx), change, func() {
		c.Association = association
	})
}

// AddContainer appends an always-applied container named name.
func (e *ComplexEditor) AddContainer(m *mod.Mod, g *modgroup.ComplexGroup, name string, saveType SaveType) (*modgroup.ComplexContainer, error) {
	idx, err := e.editor.groupIndex(m, g)
	if err != nil {
		return nil, err
	}
	var c *modgroup.ComplexContainer
	err = e.editor.commit(m, saveType, mod.GroupTarget(idx), groupChange(mod.OptionFilesAdded, g, idx), func() {
		c = g.AddContainer(name)
	})
	return c, err
}

// DeleteContainer removes the container at index.
func (e *ComplexEditor) DeleteContainer(m *mod.Mod, g *modgroup.ComplexGroup, index int, saveType SaveType) error {
	_, idx, err := e.container(m, g, index)
	if err != nil {
		return err
	}
	return e.editor.commit(m, saveType, mod.GroupTarget(idx), groupChange(mod.OptionFilesChanged, g, idx), func() {
		_ = g.RemoveContainer(index)
	})
}

// MoveContainer moves the container at from to position to. Later
// containers win conflicting paths, so the order is observable.
func (e *ComplexEditor) MoveContainer(m *mod.Mod, g *modgroup.ComplexGroup, from, to int, saveType SaveType) error {
	_, idx, err := e.container(m, g, from)
	if err != nil {
		return err
	}
	to = max(0, min(to, len(g.Data)-1))
	if from == to {
		return nil
	}
	return e.editor.commit(m, saveType, mod.GroupTarget(idx), groupChange(mod.OptionFilesChanged, g, idx), func() {
		_ = g.MoveContainer(from, to)
	})
}

func (e *ComplexEditor) container(m *mod.Mod, g *modgroup.ComplexGroup, index int) (*modgroup.ComplexContainer, int, error) {
	idx, err := e.editor.groupIndex(m, g)
	if err != nil {
		return nil, -1, err
	}
	if index < 0 || index >= len(g.Data) {
		err := &modgroup.IndexOutOfRangeError{Group: g.Name, What: "container", Index: index, Count: len(g.Data)}
		return nil, -1, e.editor.reject("edit container", fmt.Errorf("complex group: %w", err))
	}
	return g.Data[index], idx, nil
}
