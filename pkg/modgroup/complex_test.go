// SPDX-License-Identifier: MPL-2.0

package modgroup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modweave/modweave/pkg/types"
)

func TestComplexGroup_Association(t *testing.T) {
	t.Parallel()

	g := NewComplexGroup("Layers")
	for _, n := range []string{"A", "B", "C"} {
		_, err := g.AddOption(n)
		require.NoError(t, err)
	}
	c := g.AddContainer("only A")
	c.Association = types.NewMaskedSetting(0b11, 0b01)
	withFile(&c.DataContainer, "p", "fileA")

	for s := range types.Setting(8) {
		redirections, _ := resolve(g, s)
		applies := s&0b11 == 0b01
		assert.Equal(t, applies, len(redirections) == 1, "setting %03b", s)
	}
}

func TestComplexGroup_ListOrderWins(t *testing.T) {
	t.Parallel()

	g := NewComplexGroup("Layers")
	_, _ = g.AddOption("A")
	first := g.AddContainer("first")
	second := g.AddContainer("second")
	withFile(&first.DataContainer, "p", "first")
	withFile(&second.DataContainer, "p", "second")

	redirections, _ := resolve(g, 0)
	assert.Equal(t, types.FullPath("second"), redirections["p"])

	require.NoError(t, g.MoveContainer(1, 0))
	redirections, _ = resolve(g, 0)
	assert.Equal(t, types.FullPath("first"), redirections["p"])
	assert.Equal(t, 1, first.Index())

	require.NoError(t, g.RemoveContainer(0))
	assert.Len(t, g.Containers(), 1)
	require.ErrorIs(t, g.RemoveContainer(5), ErrIndexOutOfRange)
}

func TestComplexGroup_NormalizeClearsSelfReference(t *testing.T) {
	t.Parallel()

	g := NewComplexGroup("Layers")
	for _, n := range []string{"A", "B", "C"} {
		_, _ = g.AddOption(n)
	}
	g.OptionData[1].Conditions = types.NewMaskedSetting(0b1111_0111, 0b0000_0011)
	c := g.AddContainer("wide")
	c.Association = types.NewMaskedSetting(0b1111, 0b1001)

	Normalize(g)

	for i, o := range g.OptionData {
		assert.False(t, o.Conditions.Mask.HasFlag(i), "option %d conditions on itself", i)
		assert.Equal(t, types.Setting(0), o.Conditions.Mask>>3)
	}
	assert.Equal(t, types.NewMaskedSetting(0b101, 0b001), g.OptionData[1].Conditions)
	assert.Equal(t, types.NewMaskedSetting(0b111, 0b001), c.Association)
}

func TestComplexGroup_RemoveAndMoveMigrateMasks(t *testing.T) {
	t.Parallel()

	g := NewComplexGroup("Layers")
	for _, n := range []string{"A", "B", "C"} {
		_, _ = g.AddOption(n)
	}
	g.OptionData[2].Conditions = types.NewMaskedSetting(0b001, 0b001)
	c := g.AddContainer("A and C")
	c.Association = types.NewMaskedSetting(0b101, 0b101)

	require.NoError(t, g.MoveOption(0, 2))
	assert.Equal(t, []string{"B", "C", "A"}, optionNames(g))
	assert.Equal(t, types.NewMaskedSetting(0b100, 0b100), g.OptionData[1].Conditions)
	assert.Equal(t, types.NewMaskedSetting(0b110, 0b110), c.Association)

	require.NoError(t, g.RemoveOption(0))
	assert.Equal(t, []string{"C", "A"}, optionNames(g))
	assert.Equal(t, types.NewMaskedSetting(0b11, 0b11), c.Association)
	assert.True(t, g.IsSelectable(0, 0b10))
	assert.False(t, g.IsSelectable(0, 0b00))
	assert.False(t, g.IsSelectable(5, 0))
}

func TestComplexGroup_Capacity(t *testing.T) {
	t.Parallel()

	g := NewComplexGroup("Layers")
	for range MaxComplexOptions {
		_, err := g.AddOption("o")
		require.NoError(t, err)
	}
	_, err := g.AddOption("overflow")
	require.ErrorIs(t, err, ErrCapacityExceeded)
}
