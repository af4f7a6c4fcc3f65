// SPDX-License-Identifier: MPL-2.0

package modgroup

import (
	"slices"

	"github.com/modweave/modweave/pkg/meta"
	"github.com/modweave/modweave/pkg/types"
)

type (
	// CombiningGroup stores a pre-authored container for every subset of its
	// options. The setting indexes Data directly, so len(Data) is always
	// 1 << len(OptionData).
	CombiningGroup struct {
		GroupBase
		OptionData []*CombiningOption
		Data       []*DataContainer
	}

	// CombiningOption only names a bit of the setting; payload lives in the
	// group's power-set table.
	CombiningOption struct {
		OptionBase
		group *CombiningGroup
	}
)

// NewCombiningGroup returns a group with no options and the single container
// for the empty subset.
func NewCombiningGroup(name string) *CombiningGroup {
	g := &CombiningGroup{GroupBase: GroupBase{Name: name, Priority: types.DefaultPriority}}
	g.Data = []*DataContainer{NewDataContainer(g)}
	return g
}

func (g *CombiningGroup) Type() GroupType { return TypeCombining }
func (g *CombiningGroup) Options() []Option { return optionsOf(g.OptionData) }
func (g *CombiningGroup) OptionCount() int { return len(g.OptionData) }
func (g *CombiningGroup) MaxOptions() int { return MaxCombiningOptions }
func (g *CombiningGroup) Behaviour() Behaviour { return MultiSelection }
func (g *CombiningGroup) Containers() []*DataContainer { return g.Data }
func (g *CombiningGroup) IsOption() bool { return len(g.OptionData) > 0 }
func (g *CombiningGroup) sealed() {}
func (o *CombiningOption) Group() Group { return o.group }
func (o *CombiningOption) Index() int { return slices.Index(o.group.OptionData, o) }
func (o *CombiningOption) sealed() {}

// FixSetting drops bits that do not belong to an option.
func (g *CombiningGroup) FixSetting(setting types.Setting) types.Setting {
	return setting.Mask(len(g.OptionData))
}

// AddData contributes the container authored for exactly the enabled subset.
func (g *CombiningGroup) AddData(setting types.Setting, redirections Redirections, manipulations meta.Manipulations) {
	g.Data[g.FixSetting(setting)].AddDataTo(redirections, manipulations)
}

// Counts sums the payload of every subset container.
func (g *CombiningGroup) Counts() Counts {
	var c Counts
	for _, d := range g.Data {
		c = c.Add(d.Counts())
	}
	return c
}

// AddOption appends an option and doubles the power-set table: every existing
// container is copied into the half where the new option is enabled, so the
// content authored for each subset survives. Fails once the group is full.
func (g *CombiningGroup) AddOption(name string) (*CombiningOption, error) {
	if len(g.OptionData) >= MaxCombiningOptions {
		return nil, &CapacityExceededError{Group: g.Name, Type: TypeCombining, Max: MaxCombiningOptions}
	}
	doubled := make([]*DataContainer, 0, 2*len(g.Data))
	doubled = append(doubled, g.Data...)
	for _, d := range g.Data {
		doubled = append(doubled, d.CloneFor(g))
	}
	g.Data = doubled
	o := &CombiningOption{OptionBase: OptionBase{Name: name}, group: g}
	g.OptionData = append(g.OptionData, o)
	return o, nil
}

// RemoveOption deletes the option at index. Of each pair of containers that
// differ only in that option's bit, the one with the bit unset survives; the
// containers authored for subsets including the removed option are dropped.
func (g *CombiningGroup) RemoveOption(index int) error {
	if err := checkIndex(g, "option", index, len(g.OptionData)); err != nil {
		return err
	}
	kept := make([]*DataContainer, 0, len(g.Data)/2)
	for subset, d := range g.Data {
		if !types.Setting(subset).HasFlag(index) {
			kept = append(kept, d)
		}
	}
	g.Data = kept
	g.OptionData = slices.Delete(g.OptionData, index, index+1)
	return nil
}

// MoveOption moves the option at from to position to and permutes the
// power-set table so every container stays attached to the same subset.
func (g *CombiningGroup) MoveOption(from, to int) error {
	if err := checkIndex(g, "option", from, len(g.OptionData)); err != nil {
		return err
	}
	if err := checkIndex(g, "option", to, len(g.OptionData)); err != nil {
		return err
	}
	permuted := make([]*DataContainer, len(g.Data))
	for subset, d := range g.Data {
		permuted[types.Setting(subset).MoveBit(from, to)] = d
	}
	g.Data = permuted
	moveElement(g.OptionData, from, to)
	return nil
}

// ensureTable pads or truncates Data to match the option count.
func (g *CombiningGroup) ensureTable() {
	want := 1 << len(g.OptionData)
	if len(g.Data) > want {
		g.Data = g.Data[:want]
	}
	for len(g.Data) < want {
		g.Data = append(g.Data, NewDataContainer(g))
	}
}
