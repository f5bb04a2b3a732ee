// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package validator

import (
	"encoding/json"
	"fmt"

	gojson "github.com/goccy/go-json"
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/dacolabs/jsonschema-validate/internal/jschema"
)

// Reference delegates validation to github.com/google/jsonschema-go, which
// covers the full draft. Its failure is reported as one violation.
type Reference struct {
	resolved *jsonschema.Resolved
}

// NewReference resolves schemaJSON with the reference implementation.
func NewReference(schemaJSON []byte) (*Reference, error) {
	var schema jsonschema.Schema
	if err := gojson.Unmarshal(schemaJSON, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve schema: %w", err)
	}
	return &Reference{resolved: resolved}, nil
}

// Name returns "reference".
func (*Reference) Name() string { return "reference" }

// Check validates doc. Numbers are converted to float64 first, the
// shape encoding/json decodes into.
func (r *Reference) Check(doc any) Result {
	if err := r.resolved.Validate(native(doc)); err != nil {
		return Result{Violations: []Violation{{
			SchemaPointer:   jschema.Root,
			InstancePointer: jschema.Root,
			Code:            CodeEngine,
			Message:         err.Error(),
		}}}
	}
	return Result{}
}

func native(v any) any {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = native(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = native(e)
		}
		return out
	}
	return v
}
