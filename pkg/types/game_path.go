// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// MaxGamePathLength is the longest virtual game path the game resolves.
const MaxGamePathLength = 260

var (
	// ErrInvalidGamePath is the sentinel error wrapped by InvalidGamePathError.
	ErrInvalidGamePath = errors.New("invalid game path")
	// ErrInvalidFullPath is the sentinel error wrapped by InvalidFullPathError.
	ErrInvalidFullPath = errors.New("invalid file path")
)

type (
	// GamePath is a virtual path inside the game's file system, e.g.
	// "chara/equipment/e0001/texture/v01_c0101e0001_top_n.tex". Normalized game
	// paths are lower-case, use forward slashes and have no leading slash.
	GamePath string

	// FullPath is a real file path a redirection points at, usually relative
	// to the mod directory.
	FullPath string

	// InvalidGamePathError is returned when a GamePath is empty, too long,
	// non-ASCII or escapes its root.
	InvalidGamePathError struct {
		Value  GamePath
		Reason string
	}

	// InvalidFullPathError is returned when a FullPath is empty or whitespace-only.
	InvalidFullPathError struct {
		Value FullPath
	}
)

// NewGamePath normalizes raw into a GamePath and validates the result.
func NewGamePath(raw string) (GamePath, error) {
	p := GamePath(strings.TrimLeft(strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), `\`, "/")), "/"))
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// String returns the string representation of the GamePath.
func (p GamePath) String() string { return string(p) }

// Validate checks that the path is a usable normalized game path.
func (p GamePath) Validate() error {
	switch {
	case p == "":
		return &InvalidGamePathError{Value: p, Reason: "must be non-empty"}
	case len(p) > MaxGamePathLength:
		return &InvalidGamePathError{Value: p, Reason: fmt.Sprintf("longer than %d bytes", MaxGamePathLength)}
	}
	for i := 0; i < len(p); i++ {
		if p[i] >= 0x80 {
			return &InvalidGamePathError{Value: p, Reason: "must be ASCII"}
		}
	}
	for _, segment := range strings.Split(string(p), "/") {
		if segment == ".." {
			return &InvalidGamePathError{Value: p, Reason: "must not contain '..' segments"}
		}
	}
	return nil
}

// Error implements the error interface for InvalidGamePathError.
func (e *InvalidGamePathError) Error() string {
	return fmt.Sprintf("invalid game path %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidGamePath for errors.Is() compatibility.
func (e *InvalidGamePathError) Unwrap() error { return ErrInvalidGamePath }

// String returns the string representation of the FullPath.
func (p FullPath) String() string { return string(p) }

// Validate returns an error if the FullPath is empty or whitespace-only.
func (p FullPath) Validate() error {
	if strings.TrimSpace(string(p)) == "" {
		return &InvalidFullPathError{Value: p}
	}
	return nil
}

// Error implements the error interface for InvalidFullPathError.
func (e *InvalidFullPathError) Error() string {
	return fmt.Sprintf("invalid file path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidFullPath for errors.Is() compatibility.
func (e *InvalidFullPathError) Unwrap() error { return ErrInvalidFullPath }
