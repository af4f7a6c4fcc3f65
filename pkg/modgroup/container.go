// SPDX-License-Identifier: MPL-2.0

package modgroup

import (
	"maps"
	"slices"

	"github.com/modweave/modweave/pkg/meta"
	"github.com/modweave/modweave/pkg/types"
)

// DataContainer is the payload unit of a mod: file redirections, file swaps
// and metadata patches. It is created and destroyed by the group holding it;
// the owner reference is used only to compute the container's position.
type DataContainer struct {
	// Name is an optional display label. Containers backing single or multi
	// options leave it empty and display the option name instead.
	Name          string
	Files         map[types.GamePath]types.FullPath
	FileSwaps     map[types.GamePath]types.GamePath
	Manipulations meta.Manipulations

	owner Group
}

// NewDataContainer returns an empty container owned by owner (nil for a mod's
// default container).
func NewDataContainer(owner Group) *DataContainer {
	c := &DataContainer{}
	c.init(owner)
	return c
}

func (c *DataContainer) init(owner Group) {
	c.owner = owner
	if c.Files == nil {
		c.Files = make(map[types.GamePath]types.FullPath)
	}
	if c.FileSwaps == nil {
		c.FileSwaps = make(map[types.GamePath]types.GamePath)
	}
	if c.Manipulations == nil {
		c.Manipulations = make(meta.Manipulations)
	}
}

// Group returns the owning group, or nil for a mod's default container.
func (c *DataContainer) Group() Group { return c.owner }

// Index returns the container's position in its owner, or -1 when unowned.
func (c *DataContainer) Index() int {
	if c.owner == nil {
		return -1
	}
	return slices.Index(c.owner.Containers(), c)
}

// AddDataTo merges the container into the output: files and then swaps are
// assigned into redirections, manipulations replace same-record entries.
// Later calls therefore win on conflicting keys.
func (c *DataContainer) AddDataTo(redirections Redirections, manipulations meta.Manipulations) {
	for path, file := range c.Files {
		redirections[path] = file
	}
	for path, alias := range c.FileSwaps {
		redirections[path] = types.FullPath(alias)
	}
	manipulations.UnionWith(c.Manipulations)
}

// Counts returns the payload sizes of the container.
func (c *DataContainer) Counts() Counts {
	return Counts{Files: len(c.Files), Swaps: len(c.FileSwaps), Manipulations: len(c.Manipulations)}
}

// IsEmpty reports whether the container contributes nothing.
func (c *DataContainer) IsEmpty() bool { return c.Counts().Total() == 0 }

// CloneFor returns a deep copy of the payload owned by owner.
func (c *DataContainer) CloneFor(owner Group) *DataContainer {
	clone := &DataContainer{
		Name:          c.Name,
		Files:         maps.Clone(c.Files),
		FileSwaps:     maps.Clone(c.FileSwaps),
		Manipulations: c.Manipulations.Clone(),
	}
	clone.init(owner)
	return clone
}
