// SPDX-License-Identifier: MPL-2.0

// Package modgroup implements the option groups of a mod and how a group's
// Setting resolves into file redirections and metadata patches.
//
// A group is one of five kinds, a closed set modelled by the sealed Group
// interface:
//
//   - SingleGroup: the setting is an option index; the option is its payload.
//   - MultiGroup: bit i enables option i; enabled payloads merge by descending
//     option priority, so the lower priority value wins on conflicting keys.
//   - ImcGroup: option bits toggle attribute bits of one image-change record;
//     bit ImcDisableBit suppresses the record entirely.
//   - CombiningGroup: one pre-authored container per subset of options,
//     indexed directly by the setting.
//   - ComplexGroup: every container whose association matches the setting
//     applies, in list order.
//
// Settings are never rejected. FixSetting normalizes any raw value to one
// that is valid for the group's current shape and is idempotent.
//
// Options and containers do not store their position; Index scans the
// owner's list, so reordering never leaves a stale index behind.
package modgroup
