// SPDX-License-Identifier: MPL-2.0

package types

import "fmt"

// MaskedSetting is a bitmask-equality predicate over a Setting: it holds when
// every bit selected by Mask has the same state in the Setting as in Value.
// A zero Mask is satisfied by every Setting.
type MaskedSetting struct {
	Mask  Setting
	Value Setting
}

// NewMaskedSetting builds a MaskedSetting, dropping Value bits not covered by mask.
func NewMaskedSetting(mask, value Setting) MaskedSetting {
	return MaskedSetting{Mask: mask, Value: value & mask}
}

// IsSatisfiedBy reports whether s matches the predicate.
func (m MaskedSetting) IsSatisfiedBy(s Setting) bool {
	return s&m.Mask == m.Value&m.Mask
}

// Limit clips the predicate to the lowest count bits.
func (m MaskedSetting) Limit(count int) MaskedSetting {
	return NewMaskedSetting(m.Mask.Mask(count), m.Value)
}

// WithoutBit clears bit i from both mask and value.
func (m MaskedSetting) WithoutBit(i int) MaskedSetting {
	return NewMaskedSetting(m.Mask.SetFlag(i, false), m.Value)
}

// RemoveBit drops bit i from the predicate, shifting higher bits down.
func (m MaskedSetting) RemoveBit(i int) MaskedSetting {
	return NewMaskedSetting(m.Mask.RemoveBit(i), m.Value.RemoveBit(i))
}

// MoveBit moves bit from to position to in both mask and value.
func (m MaskedSetting) MoveBit(from, to int) MaskedSetting {
	return NewMaskedSetting(m.Mask.MoveBit(from, to), m.Value.MoveBit(from, to))
}

// IsEmpty reports whether the predicate constrains no bit.
func (m MaskedSetting) IsEmpty() bool { return m.Mask == 0 }

// String renders the predicate as mask/value binary literals.
func (m MaskedSetting) String() string {
	return fmt.Sprintf("%s/%s", m.Mask, m.Value&m.Mask)
}
