// SPDX-License-Identifier: MPL-2.0

// Package sanitize turns user-chosen names into portable file-name segments.
//
// Characters that are invalid in file names on any supported platform become
// '_'. With ASCII-only mode enabled, accented letters are folded to their
// base letter first and whatever is still outside ASCII becomes '_'.
package sanitize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const replacement = '_'

// Sanitizer rewrites names into file-name segments. The zero value keeps
// non-ASCII characters.
type Sanitizer struct {
	asciiOnly bool
}

// New returns a Sanitizer; asciiOnly mirrors the replace_non_ascii_on_import setting.
func New(asciiOnly bool) *Sanitizer {
	return &Sanitizer{asciiOnly: asciiOnly}
}

// ASCIIOnly reports whether non-ASCII characters are replaced.
func (s *Sanitizer) ASCIIOnly() bool { return s.asciiOnly }

// Sanitize returns name as a single file-name segment. Leading and trailing
// spaces and trailing dots are removed; the result may be empty.
func (s *Sanitizer) Sanitize(name string) string {
	if s.asciiOnly {
		name = FoldASCII(name)
	}
	mapped := strings.Map(func(r rune) rune {
		switch {
		case isInvalidPathRune(r):
			return replacement
		case s.asciiOnly && r > unicode.MaxASCII:
			return replacement
		default:
			return r
		}
	}, name)
	return strings.TrimRight(strings.TrimSpace(mapped), ". ")
}

// Key returns the case-insensitive identity of name after sanitization; two
// names with the same key would map to the same file.
func (s *Sanitizer) Key(name string) string {
	return strings.ToLower(s.Sanitize(name))
}

// FoldASCII strips combining marks after canonical decomposition, so "é"
// becomes "e". Characters without an ASCII base are returned unchanged.
func FoldASCII(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		return name
	}
	return folded
}

func isInvalidPathRune(r rune) bool {
	if r < 0x20 || r == 0x7F {
		return true
	}
	return strings.ContainsRune(`<>:"/\|?*`, r)
}
