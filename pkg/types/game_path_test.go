// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"strings"
	"testing"
)

func TestNewGamePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    GamePath
		wantErr bool
	}{
		{"already normalized", "chara/human/c0101/obj/body/b0001/texture/c0101b0001_n.tex", "chara/human/c0101/obj/body/b0001/texture/c0101b0001_n.tex", false},
		{"upper case and backslashes", `Chara\Weapon\W0101.mdl`, "chara/weapon/w0101.mdl", false},
		{"leading slash", "/ui/icon/000000.tex", "ui/icon/000000.tex", false},
		{"empty is invalid", "  ", "", true},
		{"non ascii is invalid", "chara/é.tex", "", true},
		{"parent segment is invalid", "chara/../secret.tex", "", true},
		{"too long is invalid", strings.Repeat("a", MaxGamePathLength+1), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := NewGamePath(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidGamePath) {
					t.Fatalf("NewGamePath(%q) error = %v, want ErrInvalidGamePath", tt.raw, err)
				}
				var gpErr *InvalidGamePathError
				if !errors.As(err, &gpErr) {
					t.Errorf("error should be *InvalidGamePathError, got: %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewGamePath(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("NewGamePath(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFullPath_Validate(t *testing.T) {
	t.Parallel()

	if err := FullPath("files/body.tex").Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := FullPath(" ").Validate(); !errors.Is(err, ErrInvalidFullPath) {
		t.Errorf("whitespace path error = %v, want ErrInvalidFullPath", err)
	}
}
