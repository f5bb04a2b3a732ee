// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package validator

// Violation codes.
const (
	CodeInvalidType       = "invalid_type"
	CodeRequired          = "required"
	CodeUnknownKey        = "unknown_key"
	CodeTooSmall          = "too_small"
	CodeTooBig            = "too_big"
	CodeTooShort          = "too_short"
	CodeTooLong           = "too_long"
	CodePattern           = "pattern"
	CodeInvalidEnum       = "invalid_enum"
	CodeNotMultiple       = "not_multiple"
	CodeNotUnique         = "not_unique"
	CodeUnionNone         = "union_none"
	CodeUnionAmbiguous    = "union_ambiguous"
	CodeNot               = "not"
	CodeMalformedDocument = "malformed_document"
	CodeIOError           = "io_error"
	CodeUnresolvedRef     = "unresolved_ref"
	CodeEngine            = "engine"
)

// Violation is one failure of a document against a schema rule.
type Violation struct {
	DocumentPath    string
	SchemaPointer   string
	InstancePointer string
	Code            string
	Message         string
	// Children holds the branch failures of a composite violation.
	Children []Violation
}

// WithDocument returns a copy of vs with DocumentPath set on every violation
// and child.
func WithDocument(path string, vs []Violation) []Violation {
	if vs == nil {
		return nil
	}
	out := make([]Violation, len(vs))
	for i, v := range vs {
		v.DocumentPath = path
		v.Children = WithDocument(path, v.Children)
		out[i] = v
	}
	return out
}

// Count returns the number of violations in vs, children included.
func Count(vs []Violation) int {
	n := len(vs)
	for _, v := range vs {
		n += Count(v.Children)
	}
	return n
}
