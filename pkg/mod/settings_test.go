// SPDX-License-Identifier: MPL-2.0

package mod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modweave/modweave/pkg/meta"
	"github.com/modweave/modweave/pkg/modgroup"
	"github.com/modweave/modweave/pkg/types"
)

func threeOptionMod(t *testing.T) (*Mod, *modgroup.SingleGroup, *modgroup.MultiGroup, *modgroup.ImcGroup) {
	t.Helper()

	single := modgroup.NewSingleGroup("Body")
	multi := modgroup.NewMultiGroup("Extras")
	imc := modgroup.NewImcGroup("Attributes", modgroup.DefaultImcIdentifier, meta.ImcEntry{})
	imc.CanBeDisabled = true
	for _, n := range []string{"A", "B", "C"} {
		_, err := single.AddOption(n)
		require.NoError(t, err)
		_, err = multi.AddOption(n)
		require.NoError(t, err)
		_, err = imc.AddOption(n)
		require.NoError(t, err)
	}
	m := New("demo", "Demo")
	m.Groups = []modgroup.Group{single, multi, imc}
	return m, single, multi, imc
}

func TestSettings_Fix(t *testing.T) {
	t.Parallel()

	m, _, multi, _ := threeOptionMod(t)
	multi.DefaultSettings = 0b101

	s := &Settings{Values: []types.Setting{7}}
	assert.True(t, s.Fix(m))
	assert.Equal(t, []types.Setting{2, 0b101, 0}, s.Values)
	assert.False(t, s.Fix(m))

	m.Groups = m.Groups[:1]
	assert.True(t, s.Fix(m))
	assert.Len(t, s.Values, 1)
}

func TestSettings_OptionDeleted(t *testing.T) {
	t.Parallel()

	m, single, multi, imc := threeOptionMod(t)
	s := &Settings{Values: []types.Setting{2, 0b101, modgroup.DisableSetting | 0b110}}

	require.NoError(t, single.RemoveOption(1))
	s.HandleChange(OptionChange{Kind: OptionDeleted, Mod: m, Group: single, GroupIndex: 0, OptionIndex: 1})
	require.NoError(t, multi.RemoveOption(1))
	s.HandleChange(OptionChange{Kind: OptionDeleted, Mod: m, Group: multi, GroupIndex: 1, OptionIndex: 1})
	require.NoError(t, imc.RemoveOption(0))
	s.HandleChange(OptionChange{Kind: OptionDeleted, Mod: m, Group: imc, GroupIndex: 2, OptionIndex: 0})

	assert.Equal(t, types.Setting(1), s.Values[0], "selection follows option C")
	assert.Equal(t, types.Setting(0b11), s.Values[1], "A and C stay enabled")
	assert.Equal(t, modgroup.DisableSetting|0b11, s.Values[2], "disable bit is preserved")
}

func TestSettings_OptionDeletedSelectedSingle(t *testing.T) {
	t.Parallel()

	m, single, _, _ := threeOptionMod(t)
	s := DefaultSettings(m)
	s.Values[0] = 0

	require.NoError(t, single.RemoveOption(0))
	s.HandleChange(OptionChange{Kind: OptionDeleted, Mod: m, Group: single, GroupIndex: 0, OptionIndex: 0})
	assert.Equal(t, types.Setting(0), s.Values[0])
}

func TestSettings_OptionMoved(t *testing.T) {
	t.Parallel()

	m, single, multi, _ := threeOptionMod(t)
	s := &Settings{Values: []types.Setting{0, 0b001, 0}}

	require.NoError(t, single.MoveOption(0, 2))
	assert.True(t, s.HandleChange(OptionChange{Kind: OptionMoved, Mod: m, Group: single, GroupIndex: 0, OptionIndex: 2, MovedFrom: 0}))
	require.NoError(t, multi.MoveOption(0, 2))
	assert.True(t, s.HandleChange(OptionChange{Kind: OptionMoved, Mod: m, Group: multi, GroupIndex: 1, OptionIndex: 2, MovedFrom: 0}))

	assert.Equal(t, types.Setting(2), s.Values[0])
	assert.Equal(t, types.Setting(0b100), s.Values[1])
}

func TestSettings_GroupChanges(t *testing.T) {
	t.Parallel()

	m, _, _, _ := threeOptionMod(t)
	s := &Settings{Values: []types.Setting{1, 2, 3}}

	added := modgroup.NewMultiGroup("New")
	_, _ = added.AddOption("X")
	added.DefaultSettings = 0b11
	m.Groups = append(m.Groups[:1], append([]modgroup.Group{added}, m.Groups[1:]...)...)
	assert.True(t, s.HandleChange(OptionChange{Kind: GroupAdded, Mod: m, Group: added, GroupIndex: 1}))
	assert.Equal(t, []types.Setting{1, 0b1, 2, 3}, s.Values)

	assert.True(t, s.HandleChange(OptionChange{Kind: GroupMoved, Mod: m, GroupIndex: 3, MovedFrom: 0}))
	assert.Equal(t, []types.Setting{0b1, 2, 3, 1}, s.Values)

	assert.True(t, s.HandleChange(OptionChange{Kind: GroupDeleted, Mod: m, GroupIndex: 0}))
	assert.Equal(t, []types.Setting{2, 3, 1}, s.Values)

	assert.False(t, s.HandleChange(OptionChange{Kind: GroupDeleted, Mod: m, GroupIndex: 7}))
	assert.False(t, s.HandleChange(OptionChange{Kind: DisplayChange, Mod: m, GroupIndex: 0}))
}

func TestSettings_GroupTypeChanged(t *testing.T) {
	t.Parallel()

	m, single, _, _ := threeOptionMod(t)
	s := &Settings{Values: []types.Setting{2, 0, 0}}

	converted, err := modgroup.Convert(single, modgroup.TypeMulti)
	require.NoError(t, err)
	m.Groups[0] = converted
	s.HandleChange(OptionChange{Kind: GroupTypeChanged, Mod: m, Group: converted, GroupIndex: 0, MovedFrom: int(modgroup.TypeSingle)})
	assert.Equal(t, types.OneHot(2), s.Values[0])

	back, err := modgroup.Convert(converted, modgroup.TypeSingle)
	require.NoError(t, err)
	m.Groups[0] = back
	s.HandleChange(OptionChange{Kind: GroupTypeChanged, Mod: m, Group: back, GroupIndex: 0, MovedFrom: int(modgroup.TypeMulti)})
	assert.Equal(t, types.Setting(2), s.Values[0])
}
