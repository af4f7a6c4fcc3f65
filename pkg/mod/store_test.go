// SPDX-License-Identifier: MPL-2.0

package mod

import (
	"errors"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modweave/modweave/internal/sanitize"
	"github.com/modweave/modweave/pkg/meta"
	"github.com/modweave/modweave/pkg/modgroup"
)

func newTestStore() *Store {
	return NewStore(memfs.New(), sanitize.New(false), nil)
}

func fileNames(t *testing.T, s *Store, dir string) []string {
	t.Helper()

	entries, err := s.Filesystem().ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestStore_CreateAndLoad(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	created, err := s.Create("demo", "Demo Mod")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{MetaFile, DefaultFile}, fileNames(t, s, "demo"))

	loaded, err := s.Load("demo")
	require.NoError(t, err)
	assert.Equal(t, created.Meta.Name, loaded.Meta.Name)
	assert.Equal(t, MetaFileVersion, loaded.Meta.FileVersion)
	assert.Empty(t, loaded.Groups)
	assert.True(t, loaded.Default.IsEmpty())

	dirs, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"demo"}, dirs)
}

func TestStore_RoundTripGroups(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	m, err := s.Create("demo", "Demo")
	require.NoError(t, err)

	body := modgroup.NewSingleGroup("Body Type")
	o, err := body.AddOption("Slim")
	require.NoError(t, err)
	o.Data.Files["chara/body.mdl"] = "files/slim.mdl"
	extras := modgroup.NewMultiGroup("Extras")
	_, err = extras.AddOption("Tattoo")
	require.NoError(t, err)
	extras.DefaultSettings = 1
	m.Groups = []modgroup.Group{body, extras}
	m.Default.Manipulations.Add(meta.GmpManipulation{SetID: 1, Entry: 7})

	require.NoError(t, s.Save(m, AllGroupsTarget()))
	require.NoError(t, s.Save(m, DefaultTarget()))
	assert.ElementsMatch(t,
		[]string{MetaFile, DefaultFile, "group_001_body type.json", "group_002_extras.json"},
		fileNames(t, s, "demo"))

	loaded, err := s.Load("demo")
	require.NoError(t, err)
	require.Len(t, loaded.Groups, 2)
	assert.Equal(t, "Body Type", loaded.Groups[0].Base().Name)
	assert.Equal(t, modgroup.TypeMulti, loaded.Groups[1].Type())
	assert.Equal(t, m.Counts(), loaded.Counts())

	want, _ := m.AppliedData(nil)
	got, _ := loaded.AppliedData(nil)
	assert.Equal(t, want, got)
}

func TestStore_SaveGroupRemovesRenamedFile(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	m, err := s.Create("demo", "Demo")
	require.NoError(t, err)
	g := modgroup.NewSingleGroup("Old")
	m.Groups = []modgroup.Group{g}
	require.NoError(t, s.Save(m, GroupTarget(0)))

	g.Name = "New"
	require.NoError(t, s.Save(m, GroupTarget(0)))
	assert.ElementsMatch(t, []string{MetaFile, DefaultFile, "group_001_new.json"}, fileNames(t, s, "demo"))

	err = s.Save(m, GroupTarget(3))
	require.ErrorIs(t, err, modgroup.ErrIndexOutOfRange)
}

func TestStore_SaveAllGroupsPrunes(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	m, err := s.Create("demo", "Demo")
	require.NoError(t, err)
	m.Groups = []modgroup.Group{modgroup.NewSingleGroup("A"), modgroup.NewSingleGroup("B")}
	require.NoError(t, s.Save(m, AllGroupsTarget()))

	m.Groups = m.Groups[1:]
	require.NoError(t, s.Save(m, AllGroupsTarget()))
	assert.ElementsMatch(t, []string{MetaFile, DefaultFile, "group_001_b.json"}, fileNames(t, s, "demo"))
}

func TestStore_GroupFilesOrderNumerically(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	for _, name := range []string{"group_1000_z.json", "group_002_b.json", "group_999_a.json", "group_1001_a.json", "group_001_c.json", "notes.json"} {
		require.NoError(t, util.WriteFile(s.Filesystem(), s.Filesystem().Join("demo", name), []byte("{}"), 0o644))
	}

	names, err := s.groupFiles("demo")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"group_001_c.json",
		"group_002_b.json",
		"group_999_a.json",
		"group_1000_z.json",
		"group_1001_a.json",
	}, names)
	assert.Equal(t, "group_1000_body.json", s.GroupFileName(999, modgroup.NewSingleGroup("Body")))
}

func TestStore_LoadSkipsMalformedGroup(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	m, err := s.Create("demo", "Demo")
	require.NoError(t, err)
	m.Groups = []modgroup.Group{modgroup.NewSingleGroup("Good")}
	require.NoError(t, s.Save(m, AllGroupsTarget()))
	require.NoError(t, util.WriteFile(s.Filesystem(), "demo/group_002_bad.json", []byte(`{"Name": "", "Type": "Single"}`), 0o644))
	require.NoError(t, util.WriteFile(s.Filesystem(), "demo/"+DefaultFile, []byte(`not json`), 0o644))

	loaded, err := s.Load("demo")
	require.NoError(t, err)
	require.Len(t, loaded.Groups, 1)
	assert.Equal(t, "Good", loaded.Groups[0].Base().Name)
	assert.True(t, loaded.Default.IsEmpty())
}

func TestStore_LoadMissingMod(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	_, err := s.Load("nowhere")
	require.ErrorIs(t, err, ErrModNotFound)

	var notFound *ModNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "nowhere", notFound.Directory)

	require.NoError(t, util.WriteFile(s.Filesystem(), "broken/"+MetaFile, []byte(`{"Name": ""}`), 0o644))
	_, err = s.Load("broken")
	require.ErrorIs(t, err, ErrModNotFound)
}

func TestStore_MetaTags(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	m, err := s.Create("demo", "Demo")
	require.NoError(t, err)
	assert.Equal(t, []string{}, m.Meta.ModTags)

	m.Meta.ModTags = []string{"body", "nsfw"}
	m.Meta.Author = "someone"
	require.NoError(t, s.Save(m, MetaTarget()))

	loaded, err := s.Load("demo")
	require.NoError(t, err)
	assert.Equal(t, m.Meta, loaded.Meta)
}

func TestTarget_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "group[2]", GroupTarget(2).String())
	assert.Equal(t, "groups", AllGroupsTarget().String())
	assert.Equal(t, "default", DefaultTarget().String())
	assert.Equal(t, "meta", MetaTarget().String())
}
