// SPDX-License-Identifier: MPL-2.0

package types

import "testing"

func TestMaskedSetting_IsSatisfiedBy(t *testing.T) {
	t.Parallel()

	m := NewMaskedSetting(0b11, 0b01)
	for s := Setting(0); s < 16; s++ {
		want := s&0b11 == 0b01
		if got := m.IsSatisfiedBy(s); got != want {
			t.Errorf("%s.IsSatisfiedBy(%s) = %v, want %v", m, s, got, want)
		}
	}

	var empty MaskedSetting
	if !empty.IsSatisfiedBy(0xFFFF) || !empty.IsEmpty() {
		t.Error("zero MaskedSetting should be satisfied by everything")
	}
}

func TestMaskedSetting_ValueOutsideMaskIgnored(t *testing.T) {
	t.Parallel()

	m := MaskedSetting{Mask: 0b01, Value: 0b11}
	if !m.IsSatisfiedBy(0b01) {
		t.Error("value bits outside the mask must not participate")
	}
	if got := NewMaskedSetting(0b01, 0b11).Value; got != 0b01 {
		t.Errorf("NewMaskedSetting value = %s, want 0b1", got)
	}
}

func TestMaskedSetting_LayoutEdits(t *testing.T) {
	t.Parallel()

	m := NewMaskedSetting(0b1110, 0b1010)
	if got := m.Limit(2); got != NewMaskedSetting(0b10, 0b10) {
		t.Errorf("Limit(2) = %s", got)
	}
	if got := m.WithoutBit(1); got != NewMaskedSetting(0b1100, 0b1000) {
		t.Errorf("WithoutBit(1) = %s", got)
	}
	if got := m.RemoveBit(0); got != NewMaskedSetting(0b111, 0b101) {
		t.Errorf("RemoveBit(0) = %s", got)
	}
	if got := m.MoveBit(3, 0); got != NewMaskedSetting(0b1101, 0b0101) {
		t.Errorf("MoveBit(3, 0) = %s", got)
	}
}
