// SPDX-License-Identifier: MPL-2.0

package mod

import (
	"slices"

	"github.com/modweave/modweave/pkg/modgroup"
	"github.com/modweave/modweave/pkg/types"
)

// Settings holds one collection's choices for one mod: a setting per group,
// in group order. The groups themselves only store the default template.
type Settings struct {
	Enabled  bool
	Priority types.ModPriority
	Values   []types.Setting
}

// DefaultSettings returns disabled settings carrying every group's default.
func DefaultSettings(m *Mod) *Settings {
	s := &Settings{Values: make([]types.Setting, len(m.Groups))}
	for i, g := range m.Groups {
		s.Values[i] = g.FixSetting(g.Base().DefaultSettings)
	}
	return s
}

// Fix pads or truncates Values to the mod's group count and normalizes every
// value through its group. It reports whether anything changed.
func (s *Settings) Fix(m *Mod) bool {
	changed := false
	if len(s.Values) > len(m.Groups) {
		s.Values = s.Values[:len(m.Groups)]
		changed = true
	}
	for i, g := range m.Groups {
		if i >= len(s.Values) {
			s.Values = append(s.Values, g.FixSetting(g.Base().DefaultSettings))
			changed = true
			continue
		}
		if fixed := g.FixSetting(s.Values[i]); fixed != s.Values[i] {
			s.Values[i] = fixed
			changed = true
		}
	}
	return changed
}

// HandleChange migrates the stored values so they keep selecting the same
// options after a structural edit. Values must match the mod's layout from
// before the change. It reports whether any value changed. Collection
// owners keep their settings current by subscribing it to the editor's
// notifier, e.g. notify.Bus.Subscribe.
func (s *Settings) HandleChange(c OptionChange) bool {
	idx := c.GroupIndex
	switch c.Kind {
	case GroupAdded:
		if idx < 0 || idx > len(s.Values) || c.Group == nil {
			return false
		}
		s.Values = slices.Insert(s.Values, idx, c.Group.FixSetting(c.Group.Base().DefaultSettings))
		return true
	case GroupDeleted:
		if idx < 0 || idx >= len(s.Values) {
			return false
		}
		s.Values = slices.Delete(s.Values, idx, idx+1)
		return true
	case GroupMoved:
		from := c.MovedFrom
		if from < 0 || from >= len(s.Values) || idx < 0 || idx >= len(s.Values) || from == idx {
			return false
		}
		v := s.Values[from]
		s.Values = slices.Insert(slices.Delete(s.Values, from, from+1), idx, v)
		return true
	}

	switch c.Kind {
	case GroupTypeChanged, OptionDeleted, OptionMoved:
	default:
		return false
	}
	if idx < 0 || idx >= len(s.Values) || c.Group == nil {
		return false
	}
	old := s.Values[idx]
	s.Values[idx] = MigrateSetting(c, old)
	return s.Values[idx] != old
}

// MigrateSetting maps a setting of c.Group from its layout before the change
// to the layout after it, normalized through FixSetting. Editors use it for
// a group's DefaultSettings; kinds that do not touch the bit layout only
// normalize.
func MigrateSetting(c OptionChange, v types.Setting) types.Setting {
	if c.Group == nil {
		return v
	}
	switch c.Kind {
	case GroupTypeChanged:
		v = modgroup.ConvertSetting(v, modgroup.GroupType(c.MovedFrom), c.Group.Type(), c.Group.OptionCount())
	case OptionDeleted:
		v = removeOption(c.Group, v, c.OptionIndex)
	case OptionMoved:
		v = moveOption(c.Group, v, c.MovedFrom, c.OptionIndex)
	}
	return c.Group.FixSetting(v)
}

func removeOption(g modgroup.Group, v types.Setting, index int) types.Setting {
	if index < 0 {
		return v
	}
	switch g.Type() {
	case modgroup.TypeSingle:
		return v.RemoveIndex(index)
	case modgroup.TypeImc:
		disabled := v & modgroup.DisableSetting
		return (v &^ modgroup.DisableSetting).RemoveBit(index) | disabled
	default:
		return v.RemoveBit(index)
	}
}

func moveOption(g modgroup.Group, v types.Setting, from, to int) types.Setting {
	if from < 0 || to < 0 || from == to {
		return v
	}
	switch g.Type() {
	case modgroup.TypeSingle:
		return v.MoveIndex(from, to)
	case modgroup.TypeImc:
		disabled := v & modgroup.DisableSetting
		return (v &^ modgroup.DisableSetting).MoveBit(from, to) | disabled
	default:
		return v.MoveBit(from, to)
	}
}
