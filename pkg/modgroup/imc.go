// SPDX-License-Identifier: MPL-2.0

package modgroup

import (
	"slices"

	"github.com/modweave/modweave/pkg/meta"
	"github.com/modweave/modweave/pkg/types"
)

type (
	// ImcGroup describes one image-change record. Its options toggle attribute
	// bits of that record; an optional disable bit suppresses the record.
	ImcGroup struct {
		GroupBase
		Identifier      meta.ImcIdentifier
		DefaultEntry    meta.ImcEntry
		CanBeDisabled   bool
		DefaultDisabled bool
		OptionData      []*ImcOption
	}

	// ImcOption owns exactly one attribute bit of the record.
	ImcOption struct {
		OptionBase
		AttributeIndex int
		group          *ImcGroup
	}
)

// DisableSetting is the setting bit that switches an image-change group off.
var DisableSetting = types.OneHot(ImcDisableBit)

// NewImcGroup returns an image-change group for identifier with no options.
func NewImcGroup(name string, identifier meta.ImcIdentifier, entry meta.ImcEntry) *ImcGroup {
	return &ImcGroup{
		GroupBase:    GroupBase{Name: name, Priority: types.DefaultPriority},
		Identifier:   identifier,
		DefaultEntry: entry.WithAttributes(entry.AttributeMask),
	}
}

func (g *ImcGroup) Type() GroupType { return TypeImc }
func (g *ImcGroup) Options() []Option { return optionsOf(g.OptionData) }
func (g *ImcGroup) OptionCount() int { return len(g.OptionData) }
func (g *ImcGroup) MaxOptions() int { return MaxImcOptions }
func (g *ImcGroup) Behaviour() Behaviour { return MultiSelection }
func (g *ImcGroup) Containers() []*DataContainer { return nil }
func (g *ImcGroup) IsOption() bool { return g.CanBeDisabled || len(g.OptionData) > 0 }
func (g *ImcGroup) sealed() {}
func (o *ImcOption) Group() Group { return o.group }
func (o *ImcOption) Index() int { return slices.Index(o.group.OptionData, o) }
func (o *ImcOption) sealed() {}

// AttributeMask returns the record attribute bit owned by the option.
func (o *ImcOption) AttributeMask() uint16 {
	if o.AttributeIndex < 0 || o.AttributeIndex >= meta.ImcAttributeCount {
		return 0
	}
	return 1 << uint(o.AttributeIndex)
}

// IsDisabled reports whether setting switches the group off.
func (g *ImcGroup) IsDisabled(setting types.Setting) bool {
	return g.CanBeDisabled && setting.HasFlag(ImcDisableBit)
}

// FixSetting keeps the option bits and, when disabling is allowed, the disable bit.
func (g *ImcGroup) FixSetting(setting types.Setting) types.Setting {
	fixed := setting.Mask(len(g.OptionData))
	if g.IsDisabled(setting) {
		fixed |= DisableSetting
	}
	return fixed
}

// CurrentMask returns the attribute mask setting selects.
func (g *ImcGroup) CurrentMask(setting types.Setting) uint16 {
	mask := g.DefaultEntry.AttributeMask
	for i, o := range g.OptionData {
		if setting.HasFlag(i) {
			mask |= o.AttributeMask()
		}
	}
	return mask & meta.ImcAttributeMask
}

// Entry returns the record g contributes for setting and whether it contributes one.
func (g *ImcGroup) Entry(setting types.Setting) (meta.ImcManipulation, bool) {
	if g.IsDisabled(setting) {
		return meta.ImcManipulation{}, false
	}
	return meta.ImcManipulation{
		ImcIdentifier: g.Identifier,
		Entry:         g.DefaultEntry.WithAttributes(g.CurrentMask(setting)),
	}, true
}

// AddData contributes exactly one image-change record unless the group is disabled.
func (g *ImcGroup) AddData(setting types.Setting, _ Redirections, manipulations meta.Manipulations) {
	if m, ok := g.Entry(setting); ok {
		manipulations.Add(m)
	}
}

// Counts reports the single record the group contributes.
func (g *ImcGroup) Counts() Counts { return Counts{Manipulations: 1} }

// AddOption claims the lowest free attribute bit for a new option. It fails
// once every attribute bit is claimed.
func (g *ImcGroup) AddOption(name string) (*ImcOption, error) {
	var claimed uint16
	for _, o := range g.OptionData {
		claimed |= o.AttributeMask()
	}
	for idx := range meta.ImcAttributeCount {
		if claimed&(1<<uint(idx)) != 0 {
			continue
		}
		o := &ImcOption{OptionBase: OptionBase{Name: name}, AttributeIndex: idx, group: g}
		g.OptionData = append(g.OptionData, o)
		return o, nil
	}
	return nil, &CapacityExceededError{Group: g.Name, Type: TypeImc, Max: MaxImcOptions}
}

// RemoveOption deletes the option at index, freeing its attribute bit.
func (g *ImcGroup) RemoveOption(index int) error {
	if err := checkIndex(g, "option", index, len(g.OptionData)); err != nil {
		return err
	}
	g.OptionData = slices.Delete(g.OptionData, index, index+1)
	return nil
}

// MoveOption moves the option at from to position to; attribute bits stay with their options.
func (g *ImcGroup) MoveOption(from, to int) error {
	if err := checkIndex(g, "option", from, len(g.OptionData)); err != nil {
		return err
	}
	if err := checkIndex(g, "option", to, len(g.OptionData)); err != nil {
		return err
	}
	moveElement(g.OptionData, from, to)
	return nil
}
