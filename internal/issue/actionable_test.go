// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "load mod"},
			expected: "failed to load mod",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "load mod", Resource: "mods/body"},
			expected: "failed to load mod: mods/body",
		},
		{
			name:     "operation with cause",
			err:      &ActionableError{Operation: "add option", Cause: errors.New("group full")},
			expected: "failed to add option: group full",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "load mod",
				Resource:  "mods/body",
				Cause:     fs.ErrNotExist,
			},
			expected: "failed to load mod: mods/body: file does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_UnwrapAndIs(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("duplicate group name")
	err := NewErrorContext().WithOperation("add group").Wrap(sentinel).BuildError()
	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should find the wrapped cause")
	}

	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Fatal("errors.As should find *ActionableError")
	}
	if ae.Unwrap() != sentinel {
		t.Errorf("Unwrap() = %v, want sentinel", ae.Unwrap())
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	inner := errors.New("disk full")
	err := &ActionableError{
		Operation:   "save group",
		Resource:    "group_001_body.json",
		Suggestions: []string{"Free some space", "Retry the edit"},
		Cause:       errors.Join(inner),
	}

	short := err.Format(false)
	if !strings.HasPrefix(short, "failed to save group: group_001_body.json: disk full") {
		t.Errorf("Format(false) should start with the message, got %q", short)
	}
	for _, s := range err.Suggestions {
		if !strings.Contains(short, "• "+s) {
			t.Errorf("Format(false) should list suggestion %q", s)
		}
	}
	if strings.Contains(short, "Error chain") {
		t.Error("Format(false) should not include the error chain")
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "Error chain:") || !strings.Contains(verbose, "1. disk full") {
		t.Errorf("Format(true) should include the error chain, got %q", verbose)
	}

	bare := (&ActionableError{Operation: "list mods"}).Format(true)
	if bare != "failed to list mods" {
		t.Errorf("Format(true) without cause = %q", bare)
	}
}

func TestActionableError_HasSuggestions(t *testing.T) {
	t.Parallel()

	if (&ActionableError{Operation: "x"}).HasSuggestions() {
		t.Error("HasSuggestions() should be false without suggestions")
	}
	if !(&ActionableError{Operation: "x", Suggestions: []string{"y"}}).HasSuggestions() {
		t.Error("HasSuggestions() should be true with suggestions")
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	ae := NewErrorContext().
		WithOperation("move option").
		WithResource("Body Type").
		WithSuggestion("first").
		WithSuggestions("second", "third").
		WithIssue(IndexOutOfRangeId).
		Wrap(cause).
		Build()

	if ae == nil {
		t.Fatal("Build() returned nil")
	}
	if ae.Operation != "move option" || ae.Resource != "Body Type" {
		t.Errorf("unexpected context: %+v", ae)
	}
	if len(ae.Suggestions) != 3 || ae.Suggestions[2] != "third" {
		t.Errorf("Suggestions = %v", ae.Suggestions)
	}
	if ae.Issue != IndexOutOfRangeId {
		t.Errorf("Issue = %d, want %d", ae.Issue, IndexOutOfRangeId)
	}
	if ae.Cause != cause {
		t.Errorf("Cause = %v, want %v", ae.Cause, cause)
	}
}

func TestErrorContext_BuildWithoutOperation(t *testing.T) {
	t.Parallel()

	ctx := NewErrorContext().WithResource("mods/body").Wrap(errors.New("x"))
	if ctx.Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if err := ctx.BuildError(); err != nil {
		t.Errorf("BuildError() without operation should return nil, got %v", err)
	}
}

func TestWrapHelpers(t *testing.T) {
	t.Parallel()

	if WrapWithOperation(nil, "x") != nil {
		t.Error("WrapWithOperation(nil) should return nil")
	}
	if WrapWithContext(nil, "x", "y") != nil {
		t.Error("WrapWithContext(nil) should return nil")
	}

	cause := fs.ErrPermission
	got := WrapWithContext(cause, "create mod", "mods/new")
	if got.Error() != "failed to create mod: mods/new: permission denied" {
		t.Errorf("WrapWithContext().Error() = %q", got.Error())
	}
	if !errors.Is(WrapWithOperation(cause, "list mods"), fs.ErrPermission) {
		t.Error("WrapWithOperation should keep the cause")
	}
}
