// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates and decodes documents against embedded CUE schemas.
//
// Mod group documents, the default-container document, mod metadata and the
// application configuration all follow the same flow:
//
//  1. Compile the embedded schema (once per Schema)
//  2. Compile the document and unify it with the schema's root definition
//  3. Validate and decode into a Go struct
//
// JSON is valid CUE, so the JSON documents written by the mod store are
// checked by the same schemas that describe them.
//
// # Usage
//
//	//go:embed group_schema.cue
//	var schemaBytes []byte
//
//	var groupSchema = cueutil.NewSchema(schemaBytes, "#Group")
//
//	result, err := cueutil.Decode[Document](groupSchema, data,
//	    cueutil.WithFilename("group_001_colors.json"),
//	)
//	if err != nil {
//	    return nil, err // error names the offending field path
//	}
//	return result.Value, nil
package cueutil
