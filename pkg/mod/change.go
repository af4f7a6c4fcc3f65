// SPDX-License-Identifier: MPL-2.0

package mod

import (
	"fmt"

	"github.com/modweave/modweave/pkg/modgroup"
)

// Change kinds emitted by editors.
const (
	GroupRenamed ChangeKind = iota
	GroupAdded
	GroupDeleted
	GroupMoved
	GroupTypeChanged
	PriorityChanged
	OptionAdded
	OptionDeleted
	OptionMoved
	OptionFilesChanged
	OptionFilesAdded
	OptionSwapsChanged
	OptionMetaChanged
	DisplayChange
	DefaultOptionChanged
	PrepareChange
)

type (
	// ChangeKind classifies a structural or content change to a mod.
	ChangeKind int

	// Handling says what a change kind requires of persistence and dependents.
	Handling struct {
		// NeedsSave is set when the change must be written to disk.
		NeedsSave bool
		// NeedsReload is set when dependents must rebuild cached resolution state.
		NeedsReload bool
		// WasPrepared is set when a PrepareChange event precedes the change.
		WasPrepared bool
	}

	// OptionChange describes one change. Indices are captured at emission
	// time because the referenced group or option may no longer exist.
	OptionChange struct {
		Kind ChangeKind
		Mod  *Mod
		// Group is the affected group, nil for deleted groups.
		Group modgroup.Group
		// GroupIndex is the affected group's position, or -1.
		GroupIndex int
		// Option is the affected option, nil for deleted options.
		Option modgroup.Option
		// OptionIndex is the affected option's position, or -1.
		OptionIndex int
		// Container is the affected container, if any.
		Container *modgroup.DataContainer
		// MovedFrom is the previous position for moves, the previous group
		// type for type changes, and -1 otherwise.
		MovedFrom int
		// Pending is the kind announced by a PrepareChange event.
		Pending ChangeKind
	}
)

var changeKindNames = [...]string{
	GroupRenamed:         "GroupRenamed",
	GroupAdded:           "GroupAdded",
	GroupDeleted:         "GroupDeleted",
	GroupMoved:           "GroupMoved",
	GroupTypeChanged:     "GroupTypeChanged",
	PriorityChanged:      "PriorityChanged",
	OptionAdded:          "OptionAdded",
	OptionDeleted:        "OptionDeleted",
	OptionMoved:          "OptionMoved",
	OptionFilesChanged:   "OptionFilesChanged",
	OptionFilesAdded:     "OptionFilesAdded",
	OptionSwapsChanged:   "OptionSwapsChanged",
	OptionMetaChanged:    "OptionMetaChanged",
	DisplayChange:        "DisplayChange",
	DefaultOptionChanged: "DefaultOptionChanged",
	PrepareChange:        "PrepareChange",
}

var handlingTable = [...]Handling{
	GroupRenamed:         {NeedsSave: true},
	GroupAdded:           {NeedsSave: true},
	GroupDeleted:         {NeedsSave: true, NeedsReload: true},
	GroupMoved:           {NeedsSave: true},
	GroupTypeChanged:     {NeedsSave: true, NeedsReload: true, WasPrepared: true},
	PriorityChanged:      {NeedsSave: true, NeedsReload: true, WasPrepared: true},
	OptionAdded:          {NeedsSave: true, NeedsReload: true, WasPrepared: true},
	OptionDeleted:        {NeedsSave: true, NeedsReload: true},
	OptionMoved:          {NeedsSave: true},
	OptionFilesChanged:   {NeedsReload: true},
	OptionFilesAdded:     {NeedsReload: true, WasPrepared: true},
	OptionSwapsChanged:   {NeedsReload: true},
	OptionMetaChanged:    {NeedsReload: true},
	DisplayChange:        {},
	DefaultOptionChanged: {NeedsSave: true},
	PrepareChange:        {},
}

// Handling returns the fixed handling of the change kind.
func (k ChangeKind) Handling() Handling {
	if k < 0 || int(k) >= len(handlingTable) {
		return Handling{}
	}
	return handlingTable[k]
}

// String returns the change kind name.
func (k ChangeKind) String() string {
	if k < 0 || int(k) >= len(changeKindNames) {
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
	return changeKindNames[k]
}

// String renders the change for logs.
func (c OptionChange) String() string {
	name := "<nil>"
	if c.Mod != nil {
		name = c.Mod.Name()
	}
	return fmt.Sprintf("%s mod=%q group=%d option=%d from=%d", c.Kind, name, c.GroupIndex, c.OptionIndex, c.MovedFrom)
}
