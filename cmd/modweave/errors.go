// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/modweave/modweave/internal/issue"
	"github.com/modweave/modweave/internal/savequeue"
	"github.com/modweave/modweave/pkg/mod"
	"github.com/modweave/modweave/pkg/modedit"
	"github.com/modweave/modweave/pkg/modgroup"
)

// classifyError maps a failure to the issue catalog page explaining it. An
// explicit issue on an ActionableError wins over sentinel matching.
func classifyError(err error) (issue.Id, bool) {
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.Issue != 0 {
		return ae.Issue, true
	}

	switch {
	case errors.Is(err, mod.ErrModNotFound):
		return issue.ModNotFoundId, true
	case errors.Is(err, modedit.ErrDuplicateGroupName):
		return issue.DuplicateGroupNameId, true
	case errors.Is(err, modedit.ErrInvalidGroupName):
		return issue.InvalidGroupNameId, true
	case errors.Is(err, modgroup.ErrCapacityExceeded):
		return issue.CapacityExceededId, true
	case errors.Is(err, modgroup.ErrMalformedDocument):
		return issue.MalformedGroupDocumentId, true
	case errors.Is(err, modgroup.ErrUnsupportedTypeChange):
		return issue.UnsupportedTypeChangeId, true
	case errors.Is(err, modgroup.ErrIndexOutOfRange):
		return issue.IndexOutOfRangeId, true
	case errors.Is(err, savequeue.ErrClosed):
		return issue.SaveFailedId, true
	case errors.Is(err, os.ErrPermission):
		return issue.PermissionDeniedId, true
	case errors.Is(err, os.ErrNotExist):
		return issue.FileNotFoundId, true
	default:
		return 0, false
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// renderIssue writes the catalog page for err to w. Errors without a page
// are skipped.
func renderIssue(w io.Writer, err error) {
	id, ok := classifyError(err)
	if !ok {
		return
	}
	page := issue.Get(id)
	if page == nil {
		return
	}
	rendered, renderErr := page.Render("dark")
	if renderErr != nil {
		return
	}
	fmt.Fprint(w, rendered)
}

// runE adapts a handler so failures print their catalog page in verbose
// mode. The error itself is still returned for fang to display.
func runE(app *App, fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err == nil {
			return nil
		}
		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.Err == nil {
			return err
		}
		if app.flags.verbose {
			renderIssue(app.stderr, err)
		}
		return err
	}
}
