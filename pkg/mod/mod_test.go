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

func singleWithFile(t *testing.T, name string, priority types.ModPriority, path, file string) *modgroup.SingleGroup {
	t.Helper()

	g := modgroup.NewSingleGroup(name)
	g.Priority = priority
	o, err := g.AddOption("On")
	require.NoError(t, err)
	o.Data.Files[types.GamePath(path)] = types.FullPath(file)
	return g
}

func TestAppliedData_GroupPriorityOrder(t *testing.T) {
	t.Parallel()

	m := New("demo", "Demo")
	m.Groups = []modgroup.Group{
		singleWithFile(t, "High", 10, "p", "high"),
		singleWithFile(t, "Low", 1, "p", "low"),
		singleWithFile(t, "AlsoLow", 1, "p", "alsolow"),
	}

	redirections, _ := m.AppliedData(DefaultSettings(m))
	// Lower group priority is applied later and wins; equal priorities keep list order.
	assert.Equal(t, types.FullPath("alsolow"), redirections["p"])
}

func TestAppliedData_DefaultContainerLast(t *testing.T) {
	t.Parallel()

	m := New("demo", "Demo")
	m.Groups = []modgroup.Group{singleWithFile(t, "Body", 0, "p", "group")}
	m.Default.Files["p"] = "default"
	m.Default.Files["q"] = "default-only"
	m.Default.Manipulations.Add(meta.GmpManipulation{SetID: 3, Entry: 1})

	redirections, manipulations := m.AppliedData(nil)
	assert.Equal(t, modgroup.Redirections{"p": "default", "q": "default-only"}, redirections)
	assert.Len(t, manipulations, 1)
}

func TestAppliedData_UsesSettings(t *testing.T) {
	t.Parallel()

	g := modgroup.NewMultiGroup("Extras")
	a, _ := g.AddOption("A")
	b, _ := g.AddOption("B")
	a.Data.Files["a"] = "fa"
	b.Data.Files["b"] = "fb"
	g.DefaultSettings = 0b01

	m := New("demo", "Demo")
	m.Groups = []modgroup.Group{g}

	redirections, _ := m.AppliedData(nil)
	assert.Equal(t, modgroup.Redirections{"a": "fa"}, redirections)

	redirections, _ = m.AppliedData(&Settings{Values: []types.Setting{0b110}})
	assert.Equal(t, modgroup.Redirections{"b": "fb"}, redirections)
}

func TestMod_Lookup(t *testing.T) {
	t.Parallel()

	m := New("demo", "")
	assert.Equal(t, "demo", m.Name())
	m.Meta.Name = "Demo"
	assert.Equal(t, "Demo", m.Name())

	body := singleWithFile(t, "Body", 0, "p", "f")
	m.Groups = []modgroup.Group{body}
	assert.Equal(t, modgroup.Group(body), m.FindGroup("BODY"))
	assert.Nil(t, m.FindGroup("Legs"))
	assert.Equal(t, 0, m.GroupIndex(body))
	assert.Equal(t, -1, m.GroupIndex(modgroup.NewSingleGroup("Other")))

	m.Default.Files["q"] = "g"
	assert.Equal(t, modgroup.Counts{Files: 2}, m.Counts())
}

func TestChangeKind_Handling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind ChangeKind
		want Handling
	}{
		{GroupRenamed, Handling{NeedsSave: true}},
		{GroupAdded, Handling{NeedsSave: true}},
		{GroupMoved, Handling{NeedsSave: true}},
		{GroupDeleted, Handling{NeedsSave: true, NeedsReload: true}},
		{GroupTypeChanged, Handling{NeedsSave: true, NeedsReload: true, WasPrepared: true}},
		{PriorityChanged, Handling{NeedsSave: true, NeedsReload: true, WasPrepared: true}},
		{OptionAdded, Handling{NeedsSave: true, NeedsReload: true, WasPrepared: true}},
		{OptionDeleted, Handling{NeedsSave: true, NeedsReload: true}},
		{OptionMoved, Handling{NeedsSave: true}},
		{OptionFilesChanged, Handling{NeedsReload: true}},
		{OptionFilesAdded, Handling{NeedsReload: true, WasPrepared: true}},
		{OptionSwapsChanged, Handling{NeedsReload: true}},
		{OptionMetaChanged, Handling{NeedsReload: true}},
		{DisplayChange, Handling{}},
		{DefaultOptionChanged, Handling{NeedsSave: true}},
		{PrepareChange, Handling{}},
		{ChangeKind(99), Handling{}},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.kind.Handling())
		})
	}
}

func TestOptionChange_String(t *testing.T) {
	t.Parallel()

	c := OptionChange{Kind: OptionMoved, Mod: New("demo", "Demo"), GroupIndex: 1, OptionIndex: 2, MovedFrom: 0}
	assert.Equal(t, `OptionMoved mod="Demo" group=1 option=2 from=0`, c.String())
}
