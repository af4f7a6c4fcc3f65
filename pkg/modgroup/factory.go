// SPDX-License-Identifier: MPL-2.0

package modgroup

import (
	"errors"
	"fmt"

	"github.com/modweave/modweave/pkg/meta"
	"github.com/modweave/modweave/pkg/types"
)

// ErrUnsupportedTypeChange is returned when a group cannot be converted to the requested kind.
var ErrUnsupportedTypeChange = errors.New("unsupported group type change")

// DefaultImcIdentifier is the record a freshly created image-change group targets.
var DefaultImcIdentifier = meta.ImcIdentifier{
	ObjectType: meta.ObjectEquipment,
	PrimaryID:  1,
	Variant:    1,
	EquipSlot:  "Head",
}

// UnsupportedTypeChangeError reports a conversion between incompatible group kinds.
type UnsupportedTypeChangeError struct {
	Group string
	From  GroupType
	To    GroupType
}

// Error implements the error interface.
func (e *UnsupportedTypeChangeError) Error() string {
	return fmt.Sprintf("group %q cannot be converted from %s to %s", e.Group, e.From, e.To)
}

// Unwrap returns ErrUnsupportedTypeChange for errors.Is() compatibility.
func (e *UnsupportedTypeChangeError) Unwrap() error { return ErrUnsupportedTypeChange }

// New returns an empty group of the given kind.
func New(t GroupType, name string) (Group, error) {
	switch t {
	case TypeSingle:
		return NewSingleGroup(name), nil
	case TypeMulti:
		return NewMultiGroup(name), nil
	case TypeImc:
		return NewImcGroup(name, DefaultImcIdentifier, meta.ImcEntry{}), nil
	case TypeCombining:
		return NewCombiningGroup(name), nil
	case TypeComplex:
		return NewComplexGroup(name), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownGroupType, int(t))
	}
}

// FindOption returns the first option of g named name, or nil.
func FindOption(g Group, name string) Option {
	for _, o := range g.Options() {
		if o.Base().Name == name {
			return o
		}
	}
	return nil
}

// TotalCounts sums the payload counts of groups.
func TotalCounts(groups []Group) Counts {
	var c Counts
	for _, g := range groups {
		c = c.Add(g.Counts())
	}
	return c
}

// ConvertSetting reinterprets a setting stored for a group of kind from as one
// for kind to, given the group's option count. Single indices become the
// matching one-hot bit and multi masks become their lowest enabled index.
func ConvertSetting(setting types.Setting, from, to GroupType, count int) types.Setting {
	switch {
	case from == to:
		return setting
	case from == TypeSingle:
		return setting.BroadcastIndexToOneHot(count)
	case to == TypeSingle:
		return setting.FirstSetIndex(count)
	default:
		return setting.Mask(count)
	}
}

// Convert returns a copy of g as a group of kind to. Only single and multi
// groups convert into each other; options keep their payload and order.
func Convert(g Group, to GroupType) (Group, error) {
	if g.Type() == to {
		return g, nil
	}
	switch src := g.(type) {
	case *SingleGroup:
		if to != TypeMulti {
			break
		}
		if len(src.OptionData) > MaxMultiOptions {
			return nil, &CapacityExceededError{Group: src.Name, Type: TypeMulti, Max: MaxMultiOptions}
		}
		dst := &MultiGroup{GroupBase: src.GroupBase}
		dst.DefaultSettings = ConvertSetting(src.DefaultSettings, TypeSingle, TypeMulti, len(src.OptionData))
		for _, o := range src.OptionData {
			opt := &MultiOption{OptionBase: o.OptionBase, Priority: types.DefaultPriority, group: dst}
			opt.Data = *o.Data.CloneFor(dst)
			dst.OptionData = append(dst.OptionData, opt)
		}
		return dst, nil
	case *MultiGroup:
		if to != TypeSingle {
			break
		}
		dst := &SingleGroup{GroupBase: src.GroupBase}
		dst.DefaultSettings = ConvertSetting(src.DefaultSettings, TypeMulti, TypeSingle, len(src.OptionData))
		for _, o := range src.OptionData {
			opt := &SingleOption{OptionBase: o.OptionBase, group: dst}
			opt.Data = *o.Data.CloneFor(dst)
			dst.OptionData = append(dst.OptionData, opt)
		}
		return dst, nil
	}
	return nil, &UnsupportedTypeChangeError{Group: g.Base().Name, From: g.Type(), To: to}
}

// Normalize repairs a group after loading or a structural edit: the
// power-set table of a combining group is resized to its option count,
// complex conditions and associations are clipped, and DefaultSettings is
// passed through FixSetting.
func Normalize(g Group) {
	switch g := g.(type) {
	case *CombiningGroup:
		g.ensureTable()
	case *ComplexGroup:
		g.Normalize()
	case *ImcGroup:
		if g.CanBeDisabled && g.DefaultDisabled {
			g.DefaultSettings |= DisableSetting
		}
	case *SingleGroup, *MultiGroup:
	}
	g.Base().DefaultSettings = g.FixSetting(g.Base().DefaultSettings)
}
