// SPDX-License-Identifier: MPL-2.0

package mod

import (
	"cmp"
	"slices"
	"strings"

	"github.com/modweave/modweave/pkg/meta"
	"github.com/modweave/modweave/pkg/modgroup"
)

type (
	// Meta is the descriptive metadata of a mod.
	Meta struct {
		FileVersion int      `json:"FileVersion"`
		Name        string   `json:"Name"`
		Author      string   `json:"Author"`
		Description string   `json:"Description"`
		Version     string   `json:"Version"`
		Website     string   `json:"Website"`
		ModTags     []string `json:"ModTags"`
	}

	// Mod owns an ordered list of option groups and an unconditional default
	// payload. Directory is the mod's location inside its store's filesystem.
	Mod struct {
		Directory string
		Meta      Meta
		Default   *modgroup.DataContainer
		Groups    []modgroup.Group
	}
)

// New returns an empty mod stored at directory.
func New(directory, name string) *Mod {
	return &Mod{
		Directory: directory,
		Meta:      Meta{FileVersion: MetaFileVersion, Name: name},
		Default:   modgroup.NewDataContainer(nil),
	}
}

// Name returns the display name of the mod, falling back to its directory.
func (m *Mod) Name() string {
	if m.Meta.Name != "" {
		return m.Meta.Name
	}
	return m.Directory
}

// GroupIndex returns the position of g in the mod, or -1.
func (m *Mod) GroupIndex(g modgroup.Group) int {
	return slices.Index(m.Groups, g)
}

// FindGroup returns the group with the given name, compared case-insensitively, or nil.
func (m *Mod) FindGroup(name string) modgroup.Group {
	for _, g := range m.Groups {
		if strings.EqualFold(g.Base().Name, name) {
			return g
		}
	}
	return nil
}

// Counts sums the payload of the default container and every group.
func (m *Mod) Counts() modgroup.Counts {
	return m.Default.Counts().Add(modgroup.TotalCounts(m.Groups))
}

// AppliedData resolves the mod under settings. Groups are applied by
// descending group priority, ties in list order; the default container is
// applied last and therefore wins every conflict. Missing settings fall back
// to each group's DefaultSettings.
func (m *Mod) AppliedData(settings *Settings) (modgroup.Redirections, meta.Manipulations) {
	redirections := make(modgroup.Redirections)
	manipulations := make(meta.Manipulations)

	order := make([]int, len(m.Groups))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(m.Groups[b].Base().Priority, m.Groups[a].Base().Priority)
	})

	for _, idx := range order {
		g := m.Groups[idx]
		setting := g.Base().DefaultSettings
		if settings != nil && idx < len(settings.Values) {
			setting = settings.Values[idx]
		}
		g.AddData(g.FixSetting(setting), redirections, manipulations)
	}
	m.Default.AddDataTo(redirections, manipulations)
	return redirections, manipulations
}
