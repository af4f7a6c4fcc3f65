// SPDX-License-Identifier: MPL-2.0

package modgroup

import (
	"math"
	"slices"

	"github.com/modweave/modweave/pkg/meta"
	"github.com/modweave/modweave/pkg/types"
)

type (
	// SingleGroup selects exactly one of its options; the setting is the
	// option index.
	SingleGroup struct {
		GroupBase
		OptionData []*SingleOption
	}

	// SingleOption is both an option and its own payload container.
	SingleOption struct {
		OptionBase
		Data  DataContainer
		group *SingleGroup
	}
)

// NewSingleGroup returns an empty single-selection group.
func NewSingleGroup(name string) *SingleGroup {
	return &SingleGroup{GroupBase: GroupBase{Name: name, Priority: types.DefaultPriority}}
}

func (g *SingleGroup) Type() GroupType { return TypeSingle }
func (g *SingleGroup) Options() []Option { return optionsOf(g.OptionData) }
func (g *SingleGroup) OptionCount() int { return len(g.OptionData) }
func (g *SingleGroup) MaxOptions() int { return math.MaxInt32 }
func (g *SingleGroup) Behaviour() Behaviour { return SingleSelection }
func (g *SingleGroup) IsOption() bool { return len(g.OptionData) > 1 }
func (g *SingleGroup) sealed() {}
func (o *SingleOption) Group() Group { return o.group }
func (o *SingleOption) Index() int { return slices.Index(o.group.OptionData, o) }
func (o *SingleOption) Container() *DataContainer { return &o.Data }
func (o *SingleOption) sealed() {}

// Containers returns each option's payload in option order.
func (g *SingleGroup) Containers() []*DataContainer {
	out := make([]*DataContainer, len(g.OptionData))
	for i, o := range g.OptionData {
		out[i] = &o.Data
	}
	return out
}

// FixSetting clamps the index to the last option, or 0 for an empty group.
func (g *SingleGroup) FixSetting(setting types.Setting) types.Setting {
	if len(g.OptionData) == 0 {
		return 0
	}
	return types.Setting(min(setting.AsIndex(), len(g.OptionData)-1))
}

// AddData contributes the payload of the selected option. Out-of-range
// settings select the option FixSetting would select.
func (g *SingleGroup) AddData(setting types.Setting, redirections Redirections, manipulations meta.Manipulations) {
	if len(g.OptionData) == 0 {
		return
	}
	g.OptionData[g.FixSetting(setting).AsIndex()].Data.AddDataTo(redirections, manipulations)
}

// Counts sums the payload of every option.
func (g *SingleGroup) Counts() Counts {
	var c Counts
	for _, o := range g.OptionData {
		c = c.Add(o.Data.Counts())
	}
	return c
}

// AddOption appends an empty option.
func (g *SingleGroup) AddOption(name string) (*SingleOption, error) {
	o := &SingleOption{OptionBase: OptionBase{Name: name}, group: g}
	o.Data.init(g)
	g.OptionData = append(g.OptionData, o)
	return o, nil
}

// RemoveOption deletes the option at index.
func (g *SingleGroup) RemoveOption(index int) error {
	if err := checkIndex(g, "option", index, len(g.OptionData)); err != nil {
		return err
	}
	g.OptionData = slices.Delete(g.OptionData, index, index+1)
	return nil
}

// MoveOption moves the option at from to position to.
func (g *SingleGroup) MoveOption(from, to int) error {
	if err := checkIndex(g, "option", from, len(g.OptionData)); err != nil {
		return err
	}
	if err := checkIndex(g, "option", to, len(g.OptionData)); err != nil {
		return err
	}
	moveElement(g.OptionData, from, to)
	return nil
}
