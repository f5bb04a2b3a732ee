// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package jschema provides the compiled JSON Schema model, the schema loader,
// and traversal utilities.
package jschema

import (
	"math/big"
	"regexp"
	"sync"
)

// Kind identifies which variant of the schema union a Node holds.
type Kind int

// Schema node kinds.
const (
	KindAny Kind = iota
	KindObject
	KindArray
	KindString
	KindNumber
	KindInteger
	KindBoolean
	KindNull
	KindEnum
	KindComposite
	KindRef
)

var kindNames = [...]string{
	KindAny:       "any",
	KindObject:    "object",
	KindArray:     "array",
	KindString:    "string",
	KindNumber:    "number",
	KindInteger:   "integer",
	KindBoolean:   "boolean",
	KindNull:      "null",
	KindEnum:      "enum",
	KindComposite: "composite",
	KindRef:       "ref",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Node is one compiled schema node. Exactly one of the payload fields matching
// Kind is set; Boolean, Null and Any nodes carry no payload.
//
// Nodes are built by the loader and must be treated as read-only afterwards.
type Node struct {
	kind     Kind
	asserted bool

	// Pointer locates the schema object this node was compiled from.
	Pointer string

	Object    *Object
	Array     *Array
	String    *String
	Number    *Number
	Enum      *Enum
	Composite *Composite
	Ref       *Ref
}

func newNode(kind Kind, pointer string) *Node {
	return &Node{kind: kind, Pointer: pointer}
}

// Kind returns the node's kind. It never changes after construction.
func (n *Node) Kind() Kind {
	return n.kind
}

// Asserted reports whether the node came from a "type" keyword. Nodes
// inferred from keywords alone accept values of other JSON types.
func (n *Node) Asserted() bool {
	return n.asserted
}

// AdditionalPolicy controls properties not named by "properties" or matched
// by "patternProperties".
type AdditionalPolicy int

// Additional properties policies.
const (
	AdditionalAllow AdditionalPolicy = iota
	AdditionalForbid
	AdditionalSchema
)

// Property is a named child schema of an object node.
type Property struct {
	Name   string
	Schema *Node
}

// PatternProperty applies Schema to every property whose name matches Pattern.
type PatternProperty struct {
	Pattern *regexp.Regexp
	Schema  *Node
}

// Object holds object keywords.
type Object struct {
	// Keywords lists the object keywords in declaration order.
	Keywords []string

	Properties       []Property
	Required         []string
	Patterns         []PatternProperty
	Additional       AdditionalPolicy
	AdditionalSchema *Node
	MinProperties    *int
	MaxProperties    *int

	index map[string]*Node
}

// Property returns the child schema declared for name.
func (o *Object) Property(name string) (*Node, bool) {
	n, ok := o.index[name]
	return n, ok
}

// Matches reports whether name is covered by "properties" or "patternProperties".
func (o *Object) Matches(name string) bool {
	if _, ok := o.index[name]; ok {
		return true
	}
	for _, p := range o.Patterns {
		if p.Pattern.MatchString(name) {
			return true
		}
	}
	return false
}

// Array item roles recorded in Array.Keywords.
const (
	RoleItems = "items"
	RoleTuple = "tuple"
	RoleRest  = "rest"
)

// Array holds array keywords.
type Array struct {
	// Keywords lists array checks in declaration order. Item keywords are
	// recorded by role (RoleItems, RoleTuple, RoleRest).
	Keywords []string

	// Items applies to every element when the schema is not tuple-style.
	Items *Node

	// Tuple holds positional schemas and TupleKeyword the keyword they came from.
	Tuple        []*Node
	TupleKeyword string

	// Rest applies to elements past the tuple. RestForbidden rejects them.
	Rest          *Node
	RestForbidden bool
	RestKeyword   string

	MinItems    *int
	MaxItems    *int
	UniqueItems bool
}

// String holds string keywords.
type String struct {
	Keywords []string

	MinLength *int
	MaxLength *int
	Pattern   *regexp.Regexp
	// Format is recorded for tooling and never asserted.
	Format string
}

// Bound is one numeric limit.
type Bound struct {
	Value     *big.Rat
	Text      string
	Exclusive bool
}

// Number holds numeric keywords for number and integer nodes.
type Number struct {
	Keywords []string

	Minimum          *Bound
	Maximum          *Bound
	ExclusiveMinimum *Bound
	ExclusiveMaximum *Bound
	MultipleOf       *Bound
}

// Enum holds the allowed literal values. Keyword is "enum" or "const".
type Enum struct {
	Keyword string
	Values  []any
}

// Combinator is the composition rule of a Composite node.
type Combinator int

// Composite combinators.
const (
	AllOf Combinator = iota
	AnyOf
	OneOf
	Not
)

func (c Combinator) String() string {
	switch c {
	case AllOf:
		return "allOf"
	case AnyOf:
		return "anyOf"
	case OneOf:
		return "oneOf"
	case Not:
		return "not"
	}
	return "unknown"
}

// Composite combines branch schemas.
//
// Keyword is the keyword the node was compiled from: "allOf", "anyOf",
// "oneOf", "not", "type" for a type list, "false" for the false schema, or
// empty for the implicit conjunction of several keywords in one schema object.
type Composite struct {
	Combinator Combinator
	Keyword    string
	Branches   []*Node
}

// Ref is a placeholder for a local reference, resolved on first use.
type Ref struct {
	// Target is the reference as written, for example "#/$defs/node".
	Target string
	// Pointer is the decoded target location.
	Pointer string

	once    sync.Once
	node    *Node
	err     error
	resolve func() (*Node, error)
}

// Resolve returns the referenced node, compiling it on the first call.
func (r *Ref) Resolve() (*Node, error) {
	r.once.Do(func() {
		r.node, r.err = r.resolve()
	})
	return r.node, r.err
}
