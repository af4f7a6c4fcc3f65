// SPDX-License-Identifier: MPL-2.0

package modgroup

import (
	"slices"

	"github.com/modweave/modweave/pkg/meta"
	"github.com/modweave/modweave/pkg/types"
)

type (
	// ComplexGroup activates independent containers by masked equality over
	// the setting. Options only name bits; they carry no payload.
	ComplexGroup struct {
		GroupBase
		OptionData []*ComplexOption
		Data       []*ComplexContainer
	}

	// ComplexOption is a setting bit with a prerequisite over the other bits.
	ComplexOption struct {
		OptionBase
		// Conditions gates selectability. It never references the option's own bit.
		Conditions types.MaskedSetting
		// Indentation and SubGroup are display hints.
		Indentation int
		SubGroup    string
		group       *ComplexGroup
	}

	// ComplexContainer is a payload applied whenever Association matches.
	ComplexContainer struct {
		DataContainer
		Association types.MaskedSetting
	}
)

// NewComplexGroup returns an empty complex group.
func NewComplexGroup(name string) *ComplexGroup {
	return &ComplexGroup{GroupBase: GroupBase{Name: name, Priority: types.DefaultPriority}}
}

func (g *ComplexGroup) Type() GroupType { return TypeComplex }
func (g *ComplexGroup) Options() []Option { return optionsOf(g.OptionData) }
func (g *ComplexGroup) OptionCount() int { return len(g.OptionData) }
func (g *ComplexGroup) MaxOptions() int { return MaxComplexOptions }
func (g *ComplexGroup) Behaviour() Behaviour { return MultiSelection }
func (g *ComplexGroup) IsOption() bool { return len(g.OptionData) > 0 }
func (g *ComplexGroup) sealed() {}
func (o *ComplexOption) Group() Group { return o.group }
func (o *ComplexOption) Index() int { return slices.Index(o.group.OptionData, o) }
func (o *ComplexOption) sealed() {}

// Containers returns the embedded payload of every container in list order.
func (g *ComplexGroup) Containers() []*DataContainer {
	out := make([]*DataContainer, len(g.Data))
	for i, c := range g.Data {
		out[i] = &c.DataContainer
	}
	return out
}

// FixSetting drops bits that do not belong to an option.
func (g *ComplexGroup) FixSetting(setting types.Setting) types.Setting {
	return setting.Mask(len(g.OptionData))
}

// AddData applies every container whose association matches, in list order.
// Later containers win on conflicting keys.
func (g *ComplexGroup) AddData(setting types.Setting, redirections Redirections, manipulations meta.Manipulations) {
	for _, c := range g.Data {
		if c.Association.IsSatisfiedBy(setting) {
			c.AddDataTo(redirections, manipulations)
		}
	}
}

// Counts sums the payload of every container.
func (g *ComplexGroup) Counts() Counts {
	var c Counts
	for _, d := range g.Data {
		c = c.Add(d.DataContainer.Counts())
	}
	return c
}

// IsSelectable reports whether option index may be toggled under setting.
func (g *ComplexGroup) IsSelectable(index int, setting types.Setting) bool {
	if index < 0 || index >= len(g.OptionData) {
		return false
	}
	return g.OptionData[index].Conditions.IsSatisfiedBy(setting)
}

// AddOption appends an unconditional option unless the group is full.
func (g *ComplexGroup) AddOption(name string) (*ComplexOption, error) {
	if len(g.OptionData) >= MaxComplexOptions {
		return nil, &CapacityExceededError{Group: g.Name, Type: TypeComplex, Max: MaxComplexOptions}
	}
	o := &ComplexOption{OptionBase: OptionBase{Name: name}, group: g}
	g.OptionData = append(g.OptionData, o)
	return o, nil
}

// RemoveOption deletes the option at index and shifts the higher bits of
// every condition and association down by one.
func (g *ComplexGroup) RemoveOption(index int) error {
	if err := checkIndex(g, "option", index, len(g.OptionData)); err != nil {
		return err
	}
	g.OptionData = slices.Delete(g.OptionData, index, index+1)
	for _, o := range g.OptionData {
		o.Conditions = o.Conditions.RemoveBit(index)
	}
	for _, c := range g.Data {
		c.Association = c.Association.RemoveBit(index)
	}
	return nil
}

// MoveOption moves the option at from to position to and permutes the bits
// of every condition and association accordingly.
func (g *ComplexGroup) MoveOption(from, to int) error {
	if err := checkIndex(g, "option", from, len(g.OptionData)); err != nil {
		return err
	}
	if err := checkIndex(g, "option", to, len(g.OptionData)); err != nil {
		return err
	}
	moveElement(g.OptionData, from, to)
	for _, o := range g.OptionData {
		o.Conditions = o.Conditions.MoveBit(from, to)
	}
	for _, c := range g.Data {
		c.Association = c.Association.MoveBit(from, to)
	}
	return nil
}

// AddContainer appends an always-applied container.
func (g *ComplexGroup) AddContainer(name string) *ComplexContainer {
	c := &ComplexContainer{}
	c.init(g)
	c.Name = name
	g.Data = append(g.Data, c)
	return c
}

// RemoveContainer deletes the container at index.
func (g *ComplexGroup) RemoveContainer(index int) error {
	if err := checkIndex(g, "container", index, len(g.Data)); err != nil {
		return err
	}
	g.Data = slices.Delete(g.Data, index, index+1)
	return nil
}

// MoveContainer moves the container at from to position to, changing which
// container wins on conflicting keys.
func (g *ComplexGroup) MoveContainer(from, to int) error {
	if err := checkIndex(g, "container", from, len(g.Data)); err != nil {
		return err
	}
	if err := checkIndex(g, "container", to, len(g.Data)); err != nil {
		return err
	}
	moveElement(g.Data, from, to)
	return nil
}

// Normalize clips every condition and association to the current option
// count and clears self-references from option conditions.
func (g *ComplexGroup) Normalize() {
	count := len(g.OptionData)
	for i, o := range g.OptionData {
		o.Conditions = o.Conditions.Limit(count).WithoutBit(i)
	}
	for _, c := range g.Data {
		c.Association = c.Association.Limit(count)
	}
}
