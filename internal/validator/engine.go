// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package validator

import (
	"fmt"
	"slices"

	"github.com/dacolabs/jsonschema-validate/internal/jschema"
)

// Engine validates decoded documents against one loaded schema. Engines are
// safe for concurrent use.
type Engine interface {
	// Name returns the engine's identifier (e.g., "builtin", "reference").
	Name() string

	// Check validates a decoded document.
	Check(doc any) Result
}

// Factory builds an engine from the compiled schema and its JSON text.
type Factory func(schema *jschema.Node, schemaJSON []byte) (Engine, error)

var engines = make(map[string]Factory)

// Register adds an engine factory to the registry.
func Register(name string, f Factory) {
	engines[name] = f
}

// New builds the named engine.
func New(name string, schema *jschema.Node, schemaJSON []byte) (Engine, error) {
	f, ok := engines[name]
	if !ok {
		return nil, fmt.Errorf("unknown engine: %s", name)
	}
	return f(schema, schemaJSON)
}

// Available returns all registered engine names, sorted.
func Available() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DefaultEngine is the engine used when none is configured.
const DefaultEngine = "builtin"

func init() {
	Register(DefaultEngine, func(schema *jschema.Node, _ []byte) (Engine, error) {
		return Builtin{Schema: schema}, nil
	})
	Register("reference", func(_ *jschema.Node, schemaJSON []byte) (Engine, error) {
		return NewReference(schemaJSON)
	})
}

// Builtin is the engine implemented by this package.
type Builtin struct {
	Schema *jschema.Node
}

// Name returns "builtin".
func (Builtin) Name() string { return DefaultEngine }

// Check validates doc with Check.
func (b Builtin) Check(doc any) Result {
	return Check(doc, b.Schema)
}
