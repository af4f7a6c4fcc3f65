// SPDX-License-Identifier: MPL-2.0

package meta

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImc(mask uint16) ImcManipulation {
	return ImcManipulation{
		ImcIdentifier: ImcIdentifier{ObjectType: ObjectEquipment, PrimaryID: 1, Variant: 1, EquipSlot: "Body"},
		Entry:         ImcEntry{MaterialID: 1, AttributeMask: mask},
	}
}

func TestManipulations_AddReplacesSameIdentity(t *testing.T) {
	t.Parallel()

	set := NewManipulations(testImc(0b1), GmpManipulation{SetID: 3, Entry: 7})
	set.Add(testImc(0b10))

	require.Len(t, set, 2)
	got := set[testImc(0).Identity()].(ImcManipulation)
	assert.Equal(t, uint16(0b10), got.Entry.AttributeMask)
}

func TestManipulations_UnionWithOverwrites(t *testing.T) {
	t.Parallel()

	a := NewManipulations(GmpManipulation{SetID: 1, Entry: 1}, GmpManipulation{SetID: 2, Entry: 2})
	b := NewManipulations(GmpManipulation{SetID: 2, Entry: 20}, RspManipulation{SubRace: "Midlander", Attribute: "Height", Entry: 1.1})
	a.UnionWith(b)

	require.Len(t, a, 3)
	assert.Equal(t, uint64(20), a[GmpManipulation{SetID: 2}.Identity()].(GmpManipulation).Entry)
}

func TestManipulations_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	set := NewManipulations(
		testImc(0b101),
		EqdpManipulation{SetID: 5, Slot: "Head", Gender: "Female", Race: "Hyur", Entry: 3},
		GlobalEqpManipulation{Type: "DoNotHideEarrings"},
	)
	data, err := json.Marshal(set)
	require.NoError(t, err)

	var back Manipulations
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, set, back)
}

func TestManipulations_UnmarshalRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	var set Manipulations
	err := json.Unmarshal([]byte(`[{"Type":"Atch","Manipulation":{}}]`), &set)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestImcManipulation_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, testImc(ImcAttributeMask).Validate())
	assert.Error(t, testImc(1<<ImcAttributeCount).Validate())

	noSlot := testImc(0)
	noSlot.EquipSlot = ""
	assert.ErrorIs(t, noSlot.Validate(), ErrInvalidImcIdentifier)
}
