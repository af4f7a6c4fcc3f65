// SPDX-License-Identifier: MPL-2.0

package modgroup

import (
	"errors"
	"fmt"
	"slices"

	"github.com/modweave/modweave/pkg/meta"
	"github.com/modweave/modweave/pkg/types"
)

const (
	// TypeSingle selects exactly one option.
	TypeSingle GroupType = iota
	// TypeMulti toggles every option independently.
	TypeMulti
	// TypeImc toggles attribute bits of one image-change record.
	TypeImc
	// TypeCombining stores one payload per subset of its options.
	TypeCombining
	// TypeComplex applies every container whose association matches.
	TypeComplex
)

const (
	// SingleSelection groups present as a radio choice.
	SingleSelection Behaviour = iota
	// MultiSelection groups present as independent toggles.
	MultiSelection
)

const (
	// MaxMultiOptions bounds multi groups; the top bit stays reserved.
	MaxMultiOptions = 63
	// MaxImcOptions is the number of attribute bits an image-change entry has.
	MaxImcOptions = meta.ImcAttributeCount
	// MaxCombiningOptions bounds the power-set table to 256 containers.
	MaxCombiningOptions = 8
	// MaxComplexOptions bounds complex groups to the same width as multi groups.
	MaxComplexOptions = MaxMultiOptions
	// ImcDisableBit is the setting bit that switches an image-change group off.
	ImcDisableBit = 60
)

var (
	// ErrCapacityExceeded is returned when an option would exceed a group's maximum.
	ErrCapacityExceeded = errors.New("group option capacity exceeded")
	// ErrIndexOutOfRange is returned for option or container indices outside the group.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrUnknownGroupType is returned when a group type name is not recognized.
	ErrUnknownGroupType = errors.New("unknown group type")
)

var groupTypeNames = [...]string{
	TypeSingle:    "Single",
	TypeMulti:     "Multi",
	TypeImc:       "Imc",
	TypeCombining: "Combining",
	TypeComplex:   "Complex",
}

type (
	// GroupType discriminates the closed set of group kinds.
	GroupType int

	// Behaviour hints how a group is presented; it does not affect resolution.
	Behaviour int

	// Redirections maps virtual game paths to the file they resolve to.
	Redirections map[types.GamePath]types.FullPath

	// Counts summarizes the payload of a container or group.
	Counts struct {
		Files         int
		Swaps         int
		Manipulations int
	}

	// GroupBase holds the fields every group kind shares.
	GroupBase struct {
		Name            string
		Description     types.DescriptionText
		Image           string
		Page            int
		Priority        types.ModPriority
		DefaultSettings types.Setting
	}

	// OptionBase holds the fields every option kind shares.
	OptionBase struct {
		Name        string
		Description types.DescriptionText
	}

	// Group is implemented by exactly the five group kinds of this package.
	// Consumers switch exhaustively over the concrete types.
	Group interface {
		// Base exposes the shared group fields.
		Base() *GroupBase
		// Type returns the group's kind.
		Type() GroupType
		// Options returns the group's options in order.
		Options() []Option
		// OptionCount returns the number of options.
		OptionCount() int
		// Containers returns the payload containers in order. Single and multi
		// groups return one container per option; image-change groups none.
		Containers() []*DataContainer
		// MaxOptions returns the largest option count the kind supports.
		MaxOptions() int
		// AddData merges what setting contributes into the output maps.
		AddData(setting types.Setting, redirections Redirections, manipulations meta.Manipulations)
		// FixSetting normalizes a raw setting for the group's current shape.
		FixSetting(setting types.Setting) types.Setting
		// Counts sums the payload of every container.
		Counts() Counts
		// IsOption reports whether the group offers the user a meaningful choice.
		IsOption() bool
		// Behaviour returns the presentation hint.
		Behaviour() Behaviour

		sealed()
	}

	// Option is implemented by the option kinds of this package.
	Option interface {
		// Base exposes the shared option fields.
		Base() *OptionBase
		// Group returns the owning group.
		Group() Group
		// Index returns the option's current position inside its group.
		Index() int

		sealed()
	}

	// CapacityExceededError reports an option add beyond a group's maximum.
	CapacityExceededError struct {
		Group string
		Type  GroupType
		Max   int
	}

	// IndexOutOfRangeError reports an index outside a group's options or containers.
	IndexOutOfRangeError struct {
		Group string
		What  string
		Index int
		Count int
	}
)

// String returns the persisted name of the group type.
func (t GroupType) String() string {
	if t < 0 || int(t) >= len(groupTypeNames) {
		return fmt.Sprintf("GroupType(%d)", int(t))
	}
	return groupTypeNames[t]
}

// ParseGroupType resolves a persisted group type name.
func ParseGroupType(name string) (GroupType, error) {
	if i := slices.Index(groupTypeNames[:], name); i >= 0 {
		return GroupType(i), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownGroupType, name)
}

// MarshalText implements encoding.TextMarshaler.
func (t GroupType) MarshalText() ([]byte, error) {
	if t < 0 || int(t) >= len(groupTypeNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownGroupType, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *GroupType) UnmarshalText(text []byte) error {
	parsed, err := ParseGroupType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// String returns the behaviour name.
func (b Behaviour) String() string {
	if b == SingleSelection {
		return "single"
	}
	return "multi"
}

// Add returns the element-wise sum of two counts.
func (c Counts) Add(other Counts) Counts {
	return Counts{
		Files:         c.Files + other.Files,
		Swaps:         c.Swaps + other.Swaps,
		Manipulations: c.Manipulations + other.Manipulations,
	}
}

// Total returns the number of payload entries.
func (c Counts) Total() int { return c.Files + c.Swaps + c.Manipulations }

// Base returns the receiver; promoted to every group kind.
func (b *GroupBase) Base() *GroupBase { return b }

// Base returns the receiver; promoted to every option kind.
func (b *OptionBase) Base() *OptionBase { return b }

// Error implements the error interface.
func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("%s group %q already has the maximum of %d options", e.Type, e.Group, e.Max)
}

// Unwrap returns ErrCapacityExceeded for errors.Is() compatibility.
func (e *CapacityExceededError) Unwrap() error { return ErrCapacityExceeded }

// Error implements the error interface.
func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("group %q: %s index %d out of range [0, %d)", e.Group, e.What, e.Index, e.Count)
}

// Unwrap returns ErrIndexOutOfRange for errors.Is() compatibility.
func (e *IndexOutOfRangeError) Unwrap() error { return ErrIndexOutOfRange }

func checkIndex(g Group, what string, index, count int) error {
	if index < 0 || index >= count {
		return &IndexOutOfRangeError{Group: g.Base().Name, What: what, Index: index, Count: count}
	}
	return nil
}

// moveElement moves s[from] to position to, shifting the elements in between.
func moveElement[T any](s []T, from, to int) {
	if from == to {
		return
	}
	v := s[from]
	if from < to {
		copy(s[from:to], s[from+1:to+1])
	} else {
		copy(s[to+1:from+1], s[to:from])
	}
	s[to] = v
}

func optionsOf[O Option](opts []O) []Option {
	out := make([]Option, len(opts))
	for i, o := range opts {
		out[i] = o
	}
	return out
}
