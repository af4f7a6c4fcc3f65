// SPDX-License-Identifier: MPL-2.0

package modgroup

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modweave/modweave/pkg/cueutil"
	"github.com/modweave/modweave/pkg/meta"
	"github.com/modweave/modweave/pkg/types"
)

func roundTrip(t *testing.T, g Group) Group {
	t.Helper()

	data, err := Encode(g)
	require.NoError(t, err)
	decoded, err := Decode(data, "group.json")
	require.NoError(t, err, "document:\n%s", data)
	assert.Equal(t, g.Type(), decoded.Type())
	assert.Equal(t, *g.Base(), *decoded.Base())
	assert.Equal(t, optionNames(g), optionNames(decoded))
	return decoded
}

func TestDocument_SingleAndMulti(t *testing.T) {
	t.Parallel()

	multi := NewMultiGroup("Extras")
	multi.Description = "Optional extras"
	multi.Priority = 4
	multi.Page = 1
	a, _ := multi.AddOption("A")
	b, _ := multi.AddOption("B")
	a.Priority = -3
	withFile(&a.Data, "chara/a.tex", "files/a.tex")
	b.Data.FileSwaps["chara/b.tex"] = "chara/c.tex"
	b.Data.Manipulations.Add(meta.EqpManipulation{SetID: 12, Slot: "Body", Entry: 0x3FF})
	multi.DefaultSettings = 0b10

	decoded := roundTrip(t, multi).(*MultiGroup)
	assert.Equal(t, types.ModPriority(-3), decoded.OptionData[0].Priority)
	assert.Equal(t, a.Data.Files, decoded.OptionData[0].Data.Files)
	assert.Equal(t, b.Data.FileSwaps, decoded.OptionData[1].Data.FileSwaps)
	assert.Equal(t, b.Data.Manipulations, decoded.OptionData[1].Data.Manipulations)
	assert.Same(t, decoded, decoded.OptionData[1].Group())

	single := NewSingleGroup("Body")
	o, _ := single.AddOption("Only")
	withFile(&o.Data, "a", "b")
	decodedSingle := roundTrip(t, single).(*SingleGroup)
	assert.Equal(t, o.Data.Files, decodedSingle.OptionData[0].Data.Files)
}

func TestDocument_Imc(t *testing.T) {
	t.Parallel()

	g := NewImcGroup("Attributes", meta.ImcIdentifier{
		ObjectType: meta.ObjectAccessory, PrimaryID: 52, Variant: 3, EquipSlot: "Ears",
	}, meta.ImcEntry{MaterialID: 1, AttributeMask: 0b1})
	g.CanBeDisabled = true
	g.DefaultDisabled = true
	_, _ = g.AddOption("A")
	_, _ = g.AddOption("B")
	require.NoError(t, g.RemoveOption(0))
	Normalize(g)

	decoded := roundTrip(t, g).(*ImcGroup)
	assert.Equal(t, g.Identifier, decoded.Identifier)
	assert.Equal(t, g.DefaultEntry, decoded.DefaultEntry)
	assert.True(t, decoded.CanBeDisabled)
	assert.Equal(t, 1, decoded.OptionData[0].AttributeIndex)
}

func TestDocument_ImcMissingAttributeIndex(t *testing.T) {
	t.Parallel()

	data := []byte(`{
  "Name": "Attributes",
  "Type": "Imc",
  "Identifier": {"ObjectType": "Weapon", "PrimaryId": 201, "SecondaryId": 1, "Variant": 1},
  "Options": [{"Name": "A"}, {"Name": "B", "AttributeIndex": 0}, {"Name": "C"}]
}`)
	g, err := Decode(data, "group_000_attributes.json")
	require.NoError(t, err)
	imc := g.(*ImcGroup)
	assert.Equal(t, []int{1, 0, 2}, []int{
		imc.OptionData[0].AttributeIndex, imc.OptionData[1].AttributeIndex, imc.OptionData[2].AttributeIndex,
	})

	dup := []byte(`{"Name": "Attributes", "Type": "Imc",
  "Identifier": {"ObjectType": "Weapon", "PrimaryId": 201},
  "Options": [{"Name": "A", "AttributeIndex": 4}, {"Name": "B", "AttributeIndex": 4}]}`)
	_, err = Decode(dup, "group_000_attributes.json")
	require.ErrorIs(t, err, ErrMalformedDocument)
}

func TestDocument_Combining(t *testing.T) {
	t.Parallel()

	g := NewCombiningGroup("Colors")
	_, _ = g.AddOption("A")
	_, _ = g.AddOption("B")
	labelSubsets(g)

	decoded := roundTrip(t, g).(*CombiningGroup)
	require.Len(t, decoded.Data, 4)
	for i := range decoded.Data {
		assert.Equal(t, g.Data[i].Name, decoded.Data[i].Name)
		assert.Equal(t, g.Data[i].Files, decoded.Data[i].Files)
		assert.Same(t, decoded, decoded.Data[i].Group())
	}
}

func TestDocument_CombiningShortTableIsPadded(t *testing.T) {
	t.Parallel()

	data := []byte(`{"Name": "Colors", "Type": "Combining",
  "Options": [{"Name": "A"}, {"Name": "B"}],
  "Containers": [{"Files": {"x": "y"}}]}`)
	g, err := Decode(data, "group_001_colors.json")
	require.NoError(t, err)
	assert.Len(t, g.Containers(), 4)
	assert.Equal(t, types.FullPath("y"), g.Containers()[0].Files["x"])
}

func TestDocument_ComplexIsNormalizedOnLoad(t *testing.T) {
	t.Parallel()

	data := []byte(`{"Name": "Layers", "Type": "Complex", "DefaultSettings": 255,
  "Options": [
    {"Name": "A", "ConditionMask": 3, "ConditionValue": 2},
    {"Name": "B", "ConditionMask": 2, "ConditionValue": 2, "Indentation": 1, "SubGroup": "Extra"}
  ],
  "Containers": [{"Name": "both", "AssociationMask": 7, "AssociationValue": 7, "Files": {"p": "f"}}]}`)
	g, err := Decode(data, "group_002_layers.json")
	require.NoError(t, err)

	c := g.(*ComplexGroup)
	assert.Equal(t, types.NewMaskedSetting(0b10, 0b10), c.OptionData[0].Conditions)
	assert.Equal(t, types.MaskedSetting{}, c.OptionData[1].Conditions)
	assert.Equal(t, "Extra", c.OptionData[1].SubGroup)
	assert.Equal(t, 1, c.OptionData[1].Indentation)
	assert.Equal(t, types.NewMaskedSetting(0b11, 0b11), c.Data[0].Association)
	assert.Equal(t, types.Setting(0b11), c.DefaultSettings)

	roundTrip(t, c)
}

func TestDocument_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		data  string
		check func(t *testing.T, err error)
	}{
		{
			name: "missing name",
			data: `{"Type": "Single"}`,
			check: func(t *testing.T, err error) {
				t.Helper()
				var verrs *cueutil.ValidationErrors
				require.True(t, errors.As(err, &verrs), "got %v", err)
			},
		},
		{
			name: "unknown type",
			data: `{"Name": "G", "Type": "Radio"}`,
			check: func(t *testing.T, err error) {
				t.Helper()
				require.Error(t, err)
			},
		},
		{
			name: "unknown manipulation",
			data: `{"Name": "G", "Type": "Single", "Options": [{"Name": "A", "Manipulations": [{"Type": "Atr", "Manipulation": {}}]}]}`,
			check: func(t *testing.T, err error) {
				t.Helper()
				require.Error(t, err)
			},
		},
		{
			name: "too many combining options",
			data: `{"Name": "G", "Type": "Combining", "Options": [
  {"Name": "1"}, {"Name": "2"}, {"Name": "3"}, {"Name": "4"}, {"Name": "5"},
  {"Name": "6"}, {"Name": "7"}, {"Name": "8"}, {"Name": "9"}]}`,
			check: func(t *testing.T, err error) {
				t.Helper()
				require.ErrorIs(t, err, ErrMalformedDocument)
				require.ErrorIs(t, err, ErrCapacityExceeded)
			},
		},
		{
			name: "invalid imc identifier",
			data: `{"Name": "G", "Type": "Imc", "Identifier": {"ObjectType": "Equipment", "PrimaryId": 1}}`,
			check: func(t *testing.T, err error) {
				t.Helper()
				require.ErrorIs(t, err, meta.ErrInvalidImcIdentifier)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decode([]byte(tt.data), "group.json")
			tt.check(t, err)
		})
	}
}

func TestDocument_Default(t *testing.T) {
	t.Parallel()

	c := NewDataContainer(nil)
	withFile(c, "ui/icon.tex", "files/icon.tex")
	c.Manipulations.Add(meta.RspManipulation{SubRace: "Midlander", Attribute: "BustMaxZ", Entry: 1.25})

	data, err := EncodeDefault(c)
	require.NoError(t, err)
	decoded, err := DecodeDefault(data, "default_mod.json")
	require.NoError(t, err)
	assert.Equal(t, c.Files, decoded.Files)
	assert.Equal(t, c.Manipulations, decoded.Manipulations)
	assert.Nil(t, decoded.Group())
}
