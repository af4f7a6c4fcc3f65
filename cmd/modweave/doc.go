// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the modweave command line: listing and creating mods,
// editing their option groups, resolving the files a selection applies,
// reporting conflicting containers and watching mod directories.
package cmd
