// SPDX-License-Identifier: MPL-2.0

package types

import (
	"math"
	"math/bits"
	"strconv"
)

// SettingBits is the number of option bits a Setting can address.
const SettingBits = 64

type (
	// Setting is the compact per-group choice a collection stores for a mod.
	// Its interpretation depends on the group kind: single-selection groups read
	// it as an option index, every other kind reads it as one bit per option.
	// Any raw value is structurally legal; groups normalize it with FixSetting.
	Setting uint64
)

// OneHot returns a Setting with only bit i set.
// Indices outside [0, SettingBits) yield the zero Setting.
func OneHot(i int) Setting {
	if i < 0 || i >= SettingBits {
		return 0
	}
	return Setting(1) << uint(i)
}

// AllBits returns a Setting with the lowest count bits set.
func AllBits(count int) Setting {
	switch {
	case count <= 0:
		return 0
	case count >= SettingBits:
		return Setting(math.MaxUint64)
	default:
		return OneHot(count) - 1
	}
}

// AsIndex interprets the Setting as an option index.
func (s Setting) AsIndex() int {
	if s > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(s)
}

// HasFlag reports whether bit i is set.
func (s Setting) HasFlag(i int) bool {
	if i < 0 || i >= SettingBits {
		return false
	}
	return s&OneHot(i) != 0
}

// SetFlag returns a copy of s with bit i set to value.
func (s Setting) SetFlag(i int, value bool) Setting {
	if value {
		return s | OneHot(i)
	}
	return s &^ OneHot(i)
}

// Mask keeps only the bits below count.
func (s Setting) Mask(count int) Setting {
	return s & AllBits(count)
}

// RemoveBit drops bit i and shifts every higher bit down by one.
func (s Setting) RemoveBit(i int) Setting {
	if i < 0 || i >= SettingBits {
		return s
	}
	low := s & AllBits(i)
	high := (s >> uint(i+1)) << uint(i)
	return low | high
}

// InsertBit inserts an unset bit at i, shifting bit i and above up by one.
// The highest bit falls off.
func (s Setting) InsertBit(i int) Setting {
	return s.insertBit(i, false)
}

func (s Setting) insertBit(i int, value bool) Setting {
	if i < 0 || i >= SettingBits {
		return s
	}
	low := s & AllBits(i)
	high := (s &^ AllBits(i)) << 1
	return (low | high).SetFlag(i, value)
}

// MoveBit moves bit from to position to, shifting the bits in between so that
// the result matches moving an element inside an ordered option list.
func (s Setting) MoveBit(from, to int) Setting {
	if from == to || from < 0 || to < 0 || from >= SettingBits || to >= SettingBits {
		return s
	}
	value := s.HasFlag(from)
	return s.RemoveBit(from).insertBit(to, value)
}

// BroadcastIndexToOneHot converts a single-selection index into the equivalent
// multi-selection Setting for a group with count options. The index is clamped
// to the last option; an empty group yields the zero Setting.
func (s Setting) BroadcastIndexToOneHot(count int) Setting {
	if count <= 0 {
		return 0
	}
	return OneHot(min(s.AsIndex(), count-1, SettingBits-1))
}

// FirstSetIndex converts a multi-selection Setting into a single-selection
// index: the lowest set bit, clamped to the last option. No set bit selects 0.
func (s Setting) FirstSetIndex(count int) Setting {
	if s == 0 || count <= 0 {
		return 0
	}
	return Setting(min(bits.TrailingZeros64(uint64(s)), count-1))
}

// EnabledIndices lists the set bits below count in ascending order.
func (s Setting) EnabledIndices(count int) []int {
	var out []int
	for i := range min(count, SettingBits) {
		if s.HasFlag(i) {
			out = append(out, i)
		}
	}
	return out
}

// String returns the Setting as a binary literal.
func (s Setting) String() string {
	return "0b" + strconv.FormatUint(uint64(s), 2)
}

// MoveIndex remaps a single-selection index after the option at from moved to to.
func (s Setting) MoveIndex(from, to int) Setting {
	idx := s.AsIndex()
	switch {
	case idx == from:
		return Setting(to)
	case from < to && idx > from && idx <= to:
		return Setting(idx - 1)
	case to < from && idx >= to && idx < from:
		return Setting(idx + 1)
	default:
		return s
	}
}

// RemoveIndex remaps a single-selection index after the option at index was
// removed. A selection at or after the removed option moves one step down.
func (s Setting) RemoveIndex(index int) Setting {
	if idx := s.AsIndex(); idx >= index && idx > 0 {
		return Setting(idx - 1)
	}
	return s
}
