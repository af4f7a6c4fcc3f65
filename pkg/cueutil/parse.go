// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

type (
	// ParseResult contains the result of a successful CUE parse operation.
	ParseResult[T any] struct {
		// Value is the decoded Go struct.
		Value *T

		// Unified is the unified CUE value, available for callers that need
		// to inspect fields the Go struct does not carry.
		Unified cue.Value
	}

	// Schema is a compiled CUE definition that many documents are decoded
	// against. Compilation happens once, on first use. A CUE context is not
	// safe for concurrent use, so decoding through one Schema is serialized.
	Schema struct {
		source []byte
		path   string

		once sync.Once
		mu   sync.Mutex
		ctx  *cue.Context
		root cue.Value
		err  error
	}
)

// NewSchema returns a lazily compiled schema rooted at definition (e.g. "#Group").
func NewSchema(source []byte, definition string) *Schema {
	return &Schema{source: source, path: definition}
}

// Definition returns the root definition path of the schema.
func (s *Schema) Definition() string { return s.path }

func (s *Schema) compile() error {
	s.once.Do(func() {
		s.ctx = cuecontext.New()
		compiled := s.ctx.CompileBytes(s.source)
		if compiled.Err() != nil {
			s.err = fmt.Errorf("internal error: failed to compile schema: %w", compiled.Err())
			return
		}
		s.root = compiled.LookupPath(cue.ParsePath(s.path))
		if s.root.Err() != nil {
			s.err = fmt.Errorf("internal error: schema definition %s not found: %w", s.path, s.root.Err())
		}
	})
	return s.err
}

// Decode unifies data with the schema, validates it and decodes it into T.
// Errors carry the CUE path of the offending field.
func Decode[T any](s *Schema, data []byte, opts ...Option) (*ParseResult[T], error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	filename := options.filename
	if filename == "" {
		filename = "<input>"
	}

	// Size check runs before compilation so oversized input never reaches CUE.
	if err := CheckFileSize(data, options.maxFileSize, filename); err != nil {
		return nil, err
	}

	if err := s.compile(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userValue := s.ctx.CompileBytes(data, cue.Filename(filename))
	if userValue.Err() != nil {
		return nil, FormatError(userValue.Err(), filename)
	}

	unified := s.root.Unify(userValue)

	var validateOpts []cue.Option
	if options.concrete {
		validateOpts = append(validateOpts, cue.Concrete(true))
	}
	if err := unified.Validate(validateOpts...); err != nil {
		return nil, FormatError(err, filename)
	}

	var result T
	if err := unified.Decode(&result); err != nil {
		return nil, FormatError(err, filename)
	}

	return &ParseResult[T]{Value: &result, Unified: unified}, nil
}

// ParseAndDecode compiles schema, then unifies, validates and decodes data
// against the definition at schemaPath. Use a shared Schema with Decode when
// the same schema serves many documents.
func ParseAndDecode[T any](schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	return Decode[T](NewSchema(schema, schemaPath), data, opts...)
}

// ParseAndDecodeString is ParseAndDecode for a schema held as a string constant.
func ParseAndDecodeString[T any](schema string, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	return ParseAndDecode[T]([]byte(schema), data, schemaPath, opts...)
}
