// SPDX-License-Identifier: MPL-2.0

package types

import (
	"cmp"
	"strconv"
)

// DefaultPriority is the baseline priority of new groups and options.
const DefaultPriority ModPriority = 0

// ModPriority orders simultaneously enabled contributions.
type ModPriority int32

// Compare returns -1, 0 or +1 depending on whether p sorts before, equal to or after other.
func (p ModPriority) Compare(other ModPriority) int { return cmp.Compare(p, other) }

// String returns the decimal representation of the priority.
func (p ModPriority) String() string { return strconv.Itoa(int(p)) }
