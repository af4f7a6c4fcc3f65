// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. The catalog holds one Markdown page per known failure
// (duplicate group names, full groups, malformed group documents...), rendered
// for the terminal with glamour.
package issue
