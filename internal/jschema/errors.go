// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package jschema

import "fmt"

// SchemaParseError reports malformed schema text or an invalid keyword value.
type SchemaParseError struct {
	// Pointer locates the offending schema value.
	Pointer string
	Reason  string
	Err     error
}

func (e *SchemaParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schema %s: %s: %v", e.Pointer, e.Reason, e.Err)
	}
	return fmt.Sprintf("schema %s: %s", e.Pointer, e.Reason)
}

func (e *SchemaParseError) Unwrap() error {
	return e.Err
}

// UnsupportedReferenceError reports a $ref that does not point inside the
// schema document.
type UnsupportedReferenceError struct {
	Pointer string
	Ref     string
}

func (e *UnsupportedReferenceError) Error() string {
	return fmt.Sprintf("schema %s: unsupported reference %q: only local references (\"#/...\") are supported", e.Pointer, e.Ref)
}

func parseErrorf(pointer, format string, args ...any) error {
	return &SchemaParseError{Pointer: pointer, Reason: fmt.Sprintf(format, args...)}
}
