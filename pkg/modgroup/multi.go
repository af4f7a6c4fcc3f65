// SPDX-License-Identifier: MPL-2.0

package modgroup

import (
	"slices"

	"github.com/modweave/modweave/pkg/meta"
	"github.com/modweave/modweave/pkg/types"
)

type (
	// MultiGroup toggles every option independently; bit i enables option i.
	MultiGroup struct {
		GroupBase
		OptionData []*MultiOption
	}

	// MultiOption is a toggle carrying its own payload and an ordering priority.
	MultiOption struct {
		OptionBase
		Priority types.ModPriority
		Data     DataContainer
		group    *MultiGroup
	}
)

// NewMultiGroup returns an empty multi-selection group.
func NewMultiGroup(name string) *MultiGroup {
	return &MultiGroup{GroupBase: GroupBase{Name: name, Priority: types.DefaultPriority}}
}

func (g *MultiGroup) Type() GroupType { return TypeMulti }
func (g *MultiGroup) Options() []Option { return optionsOf(g.OptionData) }
func (g *MultiGroup) OptionCount() int { return len(g.OptionData) }
func (g *MultiGroup) MaxOptions() int { return MaxMultiOptions }
func (g *MultiGroup) Behaviour() Behaviour { return MultiSelection }
func (g *MultiGroup) IsOption() bool { return len(g.OptionData) > 0 }
func (g *MultiGroup) sealed() {}
func (o *MultiOption) Group() Group { return o.group }
func (o *MultiOption) Index() int { return slices.Index(o.group.OptionData, o) }
func (o *MultiOption) Container() *DataContainer { return &o.Data }
func (o *MultiOption) sealed() {}

// Containers returns each option's payload in option order.
func (g *MultiGroup) Containers() []*DataContainer {
	out := make([]*DataContainer, len(g.OptionData))
	for i, o := range g.OptionData {
		out[i] = &o.Data
	}
	return out
}

// FixSetting drops bits that do not belong to an option.
func (g *MultiGroup) FixSetting(setting types.Setting) types.Setting {
	return setting.Mask(len(g.OptionData))
}

// AddData merges every enabled option, visiting options by descending
// priority (ties in option order). Merges overwrite, so when two enabled
// options redirect the same path the one with the lower priority value wins.
func (g *MultiGroup) AddData(setting types.Setting, redirections Redirections, manipulations meta.Manipulations) {
	for _, o := range g.byDescendingPriority() {
		if setting.HasFlag(o.Index()) {
			o.Data.AddDataTo(redirections, manipulations)
		}
	}
}

func (g *MultiGroup) byDescendingPriority() []*MultiOption {
	ordered := slices.Clone(g.OptionData)
	slices.SortStableFunc(ordered, func(a, b *MultiOption) int {
		return b.Priority.Compare(a.Priority)
	})
	return ordered
}

// Counts sums the payload of every option.
func (g *MultiGroup) Counts() Counts {
	var c Counts
	for _, o := range g.OptionData {
		c = c.Add(o.Data.Counts())
	}
	return c
}

// AddOption appends an empty option unless the group is full.
func (g *MultiGroup) AddOption(name string) (*MultiOption, error) {
	if len(g.OptionData) >= MaxMultiOptions {
		return nil, &CapacityExceededError{Group: g.Name, Type: TypeMulti, Max: MaxMultiOptions}
	}
	o := &MultiOption{OptionBase: OptionBase{Name: name}, Priority: types.DefaultPriority, group: g}
	o.Data.init(g)
	g.OptionData = append(g.OptionData, o)
	return o, nil
}

// RemoveOption deletes the option at index.
func (g *MultiGroup) RemoveOption(index int) error {
	if err := checkIndex(g, "option", index, len(g.OptionData)); err != nil {
		return err
	}
	g.OptionData = slices.Delete(g.OptionData, index, index+1)
	return nil
}

// MoveOption moves the option at from to position to.
func (g *MultiGroup) MoveOption(from, to int) error {
	if err := checkIndex(g, "option", from, len(g.OptionData)); err != nil {
		return err
	}
	if err := checkIndex(g, "option", to, len(g.OptionData)); err != nil {
		return err
	}
	moveElement(g.OptionData, from, to)
	return nil
}
