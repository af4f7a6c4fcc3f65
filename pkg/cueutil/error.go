// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// ErrDocumentTooLarge is returned when a document exceeds the size limit.
var ErrDocumentTooLarge = errors.New("document exceeds maximum size")

type (
	// ValidationError is one schema violation inside a document.
	ValidationError struct {
		// FilePath is the document being validated.
		FilePath string
		// CUEPath is the JSON path to the invalid value (e.g. "Options[0].Name").
		CUEPath string
		// Message is the violation reported by CUE.
		Message string
	}

	// ValidationErrors collects every violation reported for one document.
	ValidationErrors struct {
		FilePath string
		Errors   []*ValidationError
	}
)

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.CUEPath != "" {
		return fmt.Sprintf("%s: %s: %s", e.FilePath, e.CUEPath, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// Error implements the error interface.
func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	lines := make([]string, len(e.Errors))
	for i, v := range e.Errors {
		lines[i] = v.Error()
	}
	return fmt.Sprintf("%s: validation failed:\n  %s", e.FilePath, strings.Join(lines, "\n  "))
}

// Unwrap exposes the individual violations to errors.As.
func (e *ValidationErrors) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i, v := range e.Errors {
		out[i] = v
	}
	return out
}

// HasPath reports whether any violation is located at path.
func (e *ValidationErrors) HasPath(path string) bool {
	for _, v := range e.Errors {
		if v.CUEPath == path {
			return true
		}
	}
	return false
}

// FormatError converts a CUE error into ValidationErrors whose entries carry
// JSON-path locations, e.g. "Containers[2].Files". Non-CUE errors are wrapped
// with the file path.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	cueErrs := cueerrors.Errors(err)
	if len(cueErrs) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	out := &ValidationErrors{FilePath: filePath}
	for _, e := range cueErrs {
		pathStr := formatPath(cueerrors.Path(e))
		msg := e.Error()
		// CUE sometimes repeats the path at the start of the message.
		if pathStr != "" && strings.HasPrefix(msg, pathStr) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, pathStr), ":"))
		}
		out.Errors = append(out.Errors, &ValidationError{FilePath: filePath, CUEPath: pathStr, Message: msg})
	}
	return out
}

// formatPath renders a CUE selector path in JSON-path notation: numeric
// elements become indices of the preceding element.
func formatPath(path []string) string {
	var b strings.Builder
	for i, part := range path {
		if i > 0 && isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(part string) bool {
	if part == "" {
		return false
	}
	for _, c := range part {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize returns ErrDocumentTooLarge when data is longer than maxSize.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: %w: %d bytes exceeds maximum %d bytes", filename, ErrDocumentTooLarge, len(data), maxSize)
	}
	return nil
}
