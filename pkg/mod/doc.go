// SPDX-License-Identifier: MPL-2.0

// Package mod ties option groups into mods and persists them.
//
// A Mod owns its groups in order and a default container that always
// applies. Settings holds one collection's per-group choices and migrates
// them when editors restructure a group, driven by OptionChange events.
//
// # On-disk layout
//
//	<mod>/meta.json                  name, author, version, tags
//	<mod>/default_mod.json           unconditional payload
//	<mod>/group_001_<name>.json      one document per group, in order
//
// Store reads and writes this layout through a billy.Filesystem, so the same
// code serves the OS filesystem and in-memory filesystems in tests. Group
// documents are validated against an embedded CUE schema; a malformed group
// is skipped with a warning rather than failing the whole mod.
package mod
