// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package report aggregates per-document violations and writes the JSON
// report and the human-readable summary.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/dacolabs/jsonschema-validate/internal/validator"
)

// Document is one failing document and its violations in validation order.
type Document struct {
	Path       string
	Violations []validator.Violation
}

// Report is the aggregate result of one batch run.
type Report struct {
	// Schema is the schema file the documents were validated against.
	Schema string

	TotalDocuments  int
	FailedDocuments int
	// Documents holds the failing documents in scan order.
	Documents []Document
}

// New creates an empty report for schema.
func New(schema string) *Report {
	return &Report{Schema: schema}
}

// Add records the result of one document. Passing documents are counted
// but not listed.
func (r *Report) Add(path string, vs []validator.Violation) {
	r.TotalDocuments++
	if len(vs) == 0 {
		return
	}
	r.FailedDocuments++
	r.Documents = append(r.Documents, Document{Path: path, Violations: vs})
}

// Failed reports whether any document failed.
func (r *Report) Failed() bool {
	return r.FailedDocuments > 0
}

// TotalViolations counts all violations, children included.
func (r *Report) TotalViolations() int {
	n := 0
	for _, d := range r.Documents {
		n += validator.Count(d.Violations)
	}
	return n
}

// ViolationsByDocument returns the violations keyed by document path.
func (r *Report) ViolationsByDocument() map[string][]validator.Violation {
	m := make(map[string][]validator.Violation, len(r.Documents))
	for _, d := range r.Documents {
		m[d.Path] = d.Violations
	}
	return m
}

// Entry is the serialized form of a violation.
type Entry struct {
	SchemaPointer   string  `json:"schemaPointer"`
	InstancePointer string  `json:"instancePointer"`
	Message         string  `json:"message"`
	Children        []Entry `json:"children"`
}

func entries(vs []validator.Violation) []Entry {
	out := make([]Entry, 0, len(vs))
	for _, v := range vs {
		out = append(out, Entry{
			SchemaPointer:   v.SchemaPointer,
			InstancePointer: v.InstancePointer,
			Message:         v.Message,
			Children:        entries(v.Children),
		})
	}
	return out
}

// Marshal renders the report as indented JSON. A report without failures is
// the empty object. Documents keep scan order.
func Marshal(r *Report) ([]byte, error) {
	if len(r.Documents) == 0 {
		return []byte("{}\n"), nil
	}
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, d := range r.Documents {
		key, err := encode(d.Path, "")
		if err != nil {
			return nil, err
		}
		value, err := encode(entries(d.Violations), "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode violations for %s: %w", d.Path, err)
		}
		buf.WriteString("  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(value)
		if i < len(r.Documents)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func encode(v any, prefix string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(prefix, "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Write encodes the report to w.
func Write(w io.Writer, r *Report) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteFile writes the report to path. The file is replaced atomically so a
// reader never observes a partial report.
func WriteFile(path string, r *Report) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
