// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

var allIds = []Id{
	FileNotFoundId,
	ModNotFoundId,
	ConfigLoadFailedId,
	DuplicateGroupNameId,
	InvalidGroupNameId,
	CapacityExceededId,
	MalformedGroupDocumentId,
	UnsupportedTypeChangeId,
	IndexOutOfRangeId,
	SaveFailedId,
	PermissionDeniedId,
}

func passthroughRender(t *testing.T) {
	t.Helper()

	originalRender := render
	t.Cleanup(func() { render = originalRender })
	render = func(in string, _ string) (string, error) {
		return in, nil
	}
}

func TestId_Constants(t *testing.T) {
	t.Parallel()

	seen := make(map[Id]bool)
	for _, id := range allIds {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
	}

	if FileNotFoundId != 1 {
		t.Errorf("FileNotFoundId = %d, want 1", FileNotFoundId)
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id       Id
		wantNil  bool
		contains string
	}{
		{FileNotFoundId, false, "File not found"},
		{ModNotFoundId, false, "Mod not found"},
		{ConfigLoadFailedId, false, "Failed to load configuration"},
		{DuplicateGroupNameId, false, "Duplicate group name"},
		{InvalidGroupNameId, false, "Invalid group name"},
		{CapacityExceededId, false, "Group is full"},
		{MalformedGroupDocumentId, false, "Malformed group document"},
		{UnsupportedTypeChangeId, false, "Unsupported group type change"},
		{IndexOutOfRangeId, false, "Index out of range"},
		{SaveFailedId, false, "Failed to save"},
		{PermissionDeniedId, false, "Permission denied"},
		{Id(9999), true, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			t.Parallel()

			issue := Get(tt.id)
			if tt.wantNil {
				if issue != nil {
					t.Errorf("Get(%d) should return nil", tt.id)
				}
				return
			}
			if issue == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}
			if issue.Id() != tt.id {
				t.Errorf("issue.Id() = %d, want %d", issue.Id(), tt.id)
			}
			if !strings.Contains(string(issue.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain %q", tt.id, tt.contains)
			}
		})
	}
}

func TestValues(t *testing.T) {
	t.Parallel()

	issues := Values()
	if len(issues) != len(allIds) {
		t.Fatalf("Values() returned %d issues, want %d", len(issues), len(allIds))
	}
	for i, issue := range issues {
		if issue.Id() != allIds[i] {
			t.Errorf("Values()[%d].Id() = %d, want %d (ordered by id)", i, issue.Id(), allIds[i])
		}
		if issue.MarkdownMsg() == "" {
			t.Errorf("issue %d has empty MarkdownMsg", issue.Id())
		}
	}
}

func TestIssue_LinksAreCloned(t *testing.T) {
	t.Parallel()

	issue := &Issue{
		id:       Id(9999),
		mdMsg:    "# Test",
		docLinks: []HttpLink{"https://docs.example.com"},
		extLinks: []HttpLink{"https://external.example.com"},
	}

	links := issue.DocLinks()
	links[0] = "modified"
	if issue.DocLinks()[0] != "https://docs.example.com" {
		t.Error("DocLinks() should return a clone")
	}

	ext := issue.ExtLinks()
	ext[0] = "modified"
	if issue.ExtLinks()[0] != "https://external.example.com" {
		t.Error("ExtLinks() should return a clone")
	}
}

//nolint:paralleltest // swaps the package-level renderer
func TestIssue_Render(t *testing.T) {
	passthroughRender(t)

	rendered, err := Get(CapacityExceededId).Render("")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(rendered, "Combining | 8") {
		t.Errorf("Render() output should contain the capacity table, got:\n%s", rendered)
	}
	if strings.Contains(rendered, "See also") {
		t.Error("Render() without links should not contain 'See also'")
	}

	withLinks := &Issue{
		id:       Id(9998),
		mdMsg:    "# Test Issue",
		docLinks: []HttpLink{"https://docs.example.com"},
	}
	rendered, err = withLinks.Render("")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(rendered, "See also") || !strings.Contains(rendered, "https://docs.example.com") {
		t.Errorf("Render() with links should list them, got:\n%s", rendered)
	}
}

//nolint:paralleltest // swaps the package-level renderer
func TestAllIssuesAreRenderable(t *testing.T) {
	passthroughRender(t)

	for _, issue := range Values() {
		rendered, err := issue.Render("")
		if err != nil {
			t.Errorf("issue %d failed to render: %v", issue.Id(), err)
		}
		if rendered == "" {
			t.Errorf("issue %d rendered to empty string", issue.Id())
		}
	}
}
