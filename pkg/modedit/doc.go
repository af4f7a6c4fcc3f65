// SPDX-License-Identifier: MPL-2.0

// Package modedit mutates mods while keeping every dependent consistent.
//
// Editor is the entry point. It offers the operations shared by every group
// kind and exposes one sub-editor per kind (Single, Multi, Imc, Combining,
// Complex) for the kind-specific ones. Each mutation follows a fixed order:
//
//  1. a PrepareChange event when the change kind is announced in advance,
//  2. the mutation itself, including default-setting migration,
//  3. persistence through the Saver, honoring the caller's SaveType,
//  4. the typed mod.OptionChange event.
//
// Soft failures (duplicate or empty group names, full groups, unsupported
// type changes, foreign groups) are logged as warnings and returned without
// any mutation having happened.
package modedit
