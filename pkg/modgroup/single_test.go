// SPDX-License-Identifier: MPL-2.0

package modgroup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modweave/modweave/pkg/types"
)

func TestSingleGroup_FixSetting(t *testing.T) {
	t.Parallel()

	empty := NewSingleGroup("Empty")
	for _, raw := range rawSettings {
		assert.Equal(t, types.Setting(0), empty.FixSetting(raw))
	}

	g := NewSingleGroup("Body")
	for _, name := range []string{"A", "B", "C"} {
		_, err := g.AddOption(name)
		require.NoError(t, err)
	}
	for _, raw := range rawSettings {
		idx := g.FixSetting(raw).AsIndex()
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, len(g.OptionData))
	}
	assert.Equal(t, types.Setting(1), g.FixSetting(1))
	assert.Equal(t, types.Setting(2), g.FixSetting(7))
}

func TestSingleGroup_AddDataSelectsOption(t *testing.T) {
	t.Parallel()

	g := NewSingleGroup("Body")
	for i, name := range []string{"A", "B", "C"} {
		o, err := g.AddOption(name)
		require.NoError(t, err)
		withFile(&o.Data, "body.mdl", "files/"+name+".mdl")
		if i == 1 {
			withFile(&o.Data, "extra.tex", "files/extra.tex")
		}
	}

	for i := range g.OptionData {
		redirections, _ := resolve(g, types.Setting(i))
		want := Redirections{}
		g.OptionData[i].Data.AddDataTo(want, nil)
		assert.Equal(t, want, redirections, "option %d", i)
	}

	redirections, _ := resolve(g, 99)
	assert.Equal(t, types.FullPath("files/C.mdl"), redirections["body.mdl"])
}

func TestSingleGroup_IsOption(t *testing.T) {
	t.Parallel()

	g := NewSingleGroup("Body")
	assert.False(t, g.IsOption())
	_, _ = g.AddOption("A")
	assert.False(t, g.IsOption())
	_, _ = g.AddOption("B")
	assert.True(t, g.IsOption())
	assert.Equal(t, SingleSelection, g.Behaviour())
}

func TestSingleGroup_EmptyAddData(t *testing.T) {
	t.Parallel()

	redirections, manipulations := resolve(NewSingleGroup("Empty"), 3)
	assert.Empty(t, redirections)
	assert.Empty(t, manipulations)
}
