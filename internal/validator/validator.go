// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package validator checks decoded JSON documents against a compiled schema.
package validator

import (
	"encoding/json"
	"fmt"
	"math/big"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	gojson "github.com/goccy/go-json"

	"github.com/dacolabs/jsonschema-validate/internal/jschema"
)

// Result is the outcome of one validation call.
type Result struct {
	Violations []Violation
	// CycleHits counts re-entries of a (schema node, instance pointer) pair
	// that were assumed to pass.
	CycleHits int
}

// Valid reports whether the document produced no violations.
func (r Result) Valid() bool {
	return len(r.Violations) == 0
}

// Validate checks doc against schema and returns the violations in schema
// traversal order. doc is never modified.
func Validate(doc any, schema *jschema.Node) []Violation {
	return Check(doc, schema).Violations
}

// Check is Validate with diagnostics.
func Check(doc any, schema *jschema.Node) Result {
	s := &state{visiting: map[visit]struct{}{{node: schema, instance: jschema.Root}: {}}}
	vs := s.validate(doc, schema, jschema.Root)
	return Result{Violations: vs, CycleHits: s.cycleHits}
}

type visit struct {
	node     *jschema.Node
	instance string
}

// state is owned by a single Check call.
type state struct {
	visiting  map[visit]struct{}
	cycleHits int
}

func (s *state) validate(v any, n *jschema.Node, ptr string) []Violation {
	switch n.Kind() {
	case jschema.KindAny:
		return nil
	case jschema.KindObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return mismatch(v, n, ptr)
		}
		return s.object(obj, n, ptr)
	case jschema.KindArray:
		arr, ok := v.([]any)
		if !ok {
			return mismatch(v, n, ptr)
		}
		return s.array(arr, n, ptr)
	case jschema.KindString:
		str, ok := v.(string)
		if !ok {
			return mismatch(v, n, ptr)
		}
		return stringChecks(str, n, ptr)
	case jschema.KindNumber, jschema.KindInteger:
		r, ok := toRat(v)
		if !ok || (n.Kind() == jschema.KindInteger && !r.IsInt()) {
			return mismatch(v, n, ptr)
		}
		return numberChecks(v, r, n, ptr)
	case jschema.KindBoolean:
		if _, ok := v.(bool); !ok {
			return mismatch(v, n, ptr)
		}
		return nil
	case jschema.KindNull:
		if v != nil {
			return mismatch(v, n, ptr)
		}
		return nil
	case jschema.KindEnum:
		return enumCheck(v, n, ptr)
	case jschema.KindComposite:
		return s.composite(v, n, ptr)
	case jschema.KindRef:
		return s.ref(v, n, ptr)
	}
	return nil
}

// mismatch reports a type mismatch. Nodes inferred from keywords without a
// "type" only constrain values of their own type.
func mismatch(v any, n *jschema.Node, ptr string) []Violation {
	if !n.Asserted() {
		return nil
	}
	return []Violation{{
		SchemaPointer:   jschema.Join(n.Pointer, "type"),
		InstancePointer: ptr,
		Code:            CodeInvalidType,
		Message:         fmt.Sprintf("expected %s, got %s", n.Kind(), typeOf(v)),
	}}
}

func (s *state) object(obj map[string]any, n *jschema.Node, ptr string) []Violation {
	o := n.Object
	var vs []Violation
	for _, kw := range o.Keywords {
		switch kw {
		case "required":
			for _, name := range o.Required {
				if _, ok := obj[name]; ok {
					continue
				}
				vs = append(vs, Violation{
					SchemaPointer:   jschema.Join(n.Pointer, kw),
					InstancePointer: ptr,
					Code:            CodeRequired,
					Message:         fmt.Sprintf("missing required property %q", name),
				})
			}
		case "properties":
			for _, p := range o.Properties {
				if val, ok := obj[p.Name]; ok {
					vs = append(vs, s.validate(val, p.Schema, jschema.Join(ptr, p.Name))...)
				}
			}
		case "patternProperties":
			for _, key := range sortedKeys(obj) {
				for _, p := range o.Patterns {
					if p.Pattern.MatchString(key) {
						vs = append(vs, s.validate(obj[key], p.Schema, jschema.Join(ptr, key))...)
					}
				}
			}
		case "additionalProperties":
			for _, key := range sortedKeys(obj) {
				if o.Matches(key) {
					continue
				}
				switch o.Additional {
				case jschema.AdditionalForbid:
					vs = append(vs, Violation{
						SchemaPointer:   jschema.Join(n.Pointer, kw),
						InstancePointer: jschema.Join(ptr, key),
						Code:            CodeUnknownKey,
						Message:         fmt.Sprintf("property %q is not allowed", key),
					})
				case jschema.AdditionalSchema:
					vs = append(vs, s.validate(obj[key], o.AdditionalSchema, jschema.Join(ptr, key))...)
				}
			}
		case "minProperties":
			if len(obj) < *o.MinProperties {
				vs = append(vs, countViolation(n, kw, ptr, CodeTooSmall, "at least", *o.MinProperties, len(obj), "properties"))
			}
		case "maxProperties":
			if len(obj) > *o.MaxProperties {
				vs = append(vs, countViolation(n, kw, ptr, CodeTooBig, "at most", *o.MaxProperties, len(obj), "properties"))
			}
		}
	}
	return vs
}

func (s *state) array(arr []any, n *jschema.Node, ptr string) []Violation {
	a := n.Array
	var vs []Violation
	for _, kw := range a.Keywords {
		switch kw {
		case jschema.RoleItems:
			for i, elem := range arr {
				vs = append(vs, s.validate(elem, a.Items, jschema.Join(ptr, strconv.Itoa(i)))...)
			}
		case jschema.RoleTuple:
			for i, sch := range a.Tuple {
				if i >= len(arr) {
					break
				}
				vs = append(vs, s.validate(arr[i], sch, jschema.Join(ptr, strconv.Itoa(i)))...)
			}
		case jschema.RoleRest:
			if len(arr) <= len(a.Tuple) {
				continue
			}
			if a.RestForbidden {
				vs = append(vs, countViolation(n, a.RestKeyword, ptr, CodeTooBig, "at most", len(a.Tuple), len(arr), "items"))
				continue
			}
			for i := len(a.Tuple); i < len(arr); i++ {
				vs = append(vs, s.validate(arr[i], a.Rest, jschema.Join(ptr, strconv.Itoa(i)))...)
			}
		case "minItems":
			if len(arr) < *a.MinItems {
				vs = append(vs, countViolation(n, kw, ptr, CodeTooSmall, "at least", *a.MinItems, len(arr), "items"))
			}
		case "maxItems":
			if len(arr) > *a.MaxItems {
				vs = append(vs, countViolation(n, kw, ptr, CodeTooBig, "at most", *a.MaxItems, len(arr), "items"))
			}
		case "uniqueItems":
			if !a.UniqueItems {
				continue
			}
			if i, j, dup := firstDuplicate(arr); dup {
				vs = append(vs, Violation{
					SchemaPointer:   jschema.Join(n.Pointer, kw),
					InstancePointer: ptr,
					Code:            CodeNotUnique,
					Message:         fmt.Sprintf("items at index %d and %d are equal", i, j),
				})
			}
		}
	}
	return vs
}

func firstDuplicate(arr []any) (int, int, bool) {
	for j := 1; j < len(arr); j++ {
		for i := 0; i < j; i++ {
			if equal(arr[i], arr[j]) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

func countViolation(n *jschema.Node, kw, ptr, code, relation string, limit, got int, noun string) Violation {
	return Violation{
		SchemaPointer:   jschema.Join(n.Pointer, kw),
		InstancePointer: ptr,
		Code:            code,
		Message:         fmt.Sprintf("expected %s %d %s, got %d", relation, limit, noun, got),
	}
}

func stringChecks(str string, n *jschema.Node, ptr string) []Violation {
	st := n.String
	length := utf8.RuneCountInString(str)
	var vs []Violation
	for _, kw := range st.Keywords {
		at := jschema.Join(n.Pointer, kw)
		switch kw {
		case "minLength":
			if length < *st.MinLength {
				vs = append(vs, Violation{
					SchemaPointer:   at,
					InstancePointer: ptr,
					Code:            CodeTooShort,
					Message:         fmt.Sprintf("expected at least %d characters, got %d", *st.MinLength, length),
				})
			}
		case "maxLength":
			if length > *st.MaxLength {
				vs = append(vs, Violation{
					SchemaPointer:   at,
					InstancePointer: ptr,
					Code:            CodeTooLong,
					Message:         fmt.Sprintf("expected at most %d characters, got %d", *st.MaxLength, length),
				})
			}
		case "pattern":
			if !st.Pattern.MatchString(str) {
				vs = append(vs, Violation{
					SchemaPointer:   at,
					InstancePointer: ptr,
					Code:            CodePattern,
					Message:         fmt.Sprintf("%s does not match pattern %q", render(str), st.Pattern.String()),
				})
			}
		}
	}
	return vs
}

func numberChecks(v any, r *big.Rat, n *jschema.Node, ptr string) []Violation {
	num := n.Number
	var vs []Violation
	add := func(kw, code, format string, b *jschema.Bound) {
		vs = append(vs, Violation{
			SchemaPointer:   jschema.Join(n.Pointer, kw),
			InstancePointer: ptr,
			Code:            code,
			Message:         fmt.Sprintf(format, b.Text, render(v)),
		})
	}
	for _, kw := range num.Keywords {
		switch kw {
		case "minimum":
			if c := r.Cmp(num.Minimum.Value); c < 0 || (c == 0 && num.Minimum.Exclusive) {
				add(kw, CodeTooSmall, lowerFormat(num.Minimum), num.Minimum)
			}
		case "maximum":
			if c := r.Cmp(num.Maximum.Value); c > 0 || (c == 0 && num.Maximum.Exclusive) {
				add(kw, CodeTooBig, upperFormat(num.Maximum), num.Maximum)
			}
		case "exclusiveMinimum":
			if r.Cmp(num.ExclusiveMinimum.Value) <= 0 {
				add(kw, CodeTooSmall, lowerFormat(num.ExclusiveMinimum), num.ExclusiveMinimum)
			}
		case "exclusiveMaximum":
			if r.Cmp(num.ExclusiveMaximum.Value) >= 0 {
				add(kw, CodeTooBig, upperFormat(num.ExclusiveMaximum), num.ExclusiveMaximum)
			}
		case "multipleOf":
			if !new(big.Rat).Quo(r, num.MultipleOf.Value).IsInt() {
				add(kw, CodeNotMultiple, "expected a multiple of %s, got %s", num.MultipleOf)
			}
		}
	}
	return vs
}

func lowerFormat(b *jschema.Bound) string {
	if b.Exclusive {
		return "expected a value greater than %s, got %s"
	}
	return "expected a value greater than or equal to %s, got %s"
}

func upperFormat(b *jschema.Bound) string {
	if b.Exclusive {
		return "expected a value less than %s, got %s"
	}
	return "expected a value less than or equal to %s, got %s"
}

func enumCheck(v any, n *jschema.Node, ptr string) []Violation {
	e := n.Enum
	for _, allowed := range e.Values {
		if equal(v, allowed) {
			return nil
		}
	}
	msg := fmt.Sprintf("expected one of %s, got %s", render(e.Values), render(v))
	if e.Keyword == "const" {
		msg = fmt.Sprintf("expected %s, got %s", render(e.Values[0]), render(v))
	}
	return []Violation{{
		SchemaPointer:   jschema.Join(n.Pointer, e.Keyword),
		InstancePointer: ptr,
		Code:            CodeInvalidEnum,
		Message:         msg,
	}}
}

func (s *state) composite(v any, n *jschema.Node, ptr string) []Violation {
	c := n.Composite
	switch c.Combinator {
	case jschema.AllOf:
		var vs []Violation
		for _, b := range c.Branches {
			vs = append(vs, s.validate(v, b, ptr)...)
		}
		return vs
	case jschema.AnyOf:
		if c.Keyword == "type" {
			return s.typeUnion(v, n, ptr)
		}
		var children []Violation
		for _, b := range c.Branches {
			vs := s.validate(v, b, ptr)
			if len(vs) == 0 {
				return nil
			}
			children = append(children, vs...)
		}
		return []Violation{unionNone(n, ptr, children)}
	case jschema.OneOf:
		var (
			children []Violation
			matched  []string
		)
		for i, b := range c.Branches {
			vs := s.validate(v, b, ptr)
			if len(vs) == 0 {
				matched = append(matched, strconv.Itoa(i))
			}
			children = append(children, vs...)
		}
		switch len(matched) {
		case 0:
			return []Violation{unionNone(n, ptr, children)}
		case 1:
			return nil
		}
		return []Violation{{
			SchemaPointer:   jschema.Join(n.Pointer, c.Keyword),
			InstancePointer: ptr,
			Code:            CodeUnionAmbiguous,
			Message:         fmt.Sprintf("value matches %d schemas in oneOf (%s), expected exactly one", len(matched), strings.Join(matched, ", ")),
		}}
	case jschema.Not:
		if len(s.validate(v, c.Branches[0], ptr)) > 0 {
			return nil
		}
		if c.Keyword == "false" {
			return []Violation{{
				SchemaPointer:   n.Pointer,
				InstancePointer: ptr,
				Code:            CodeNot,
				Message:         "no value is allowed here",
			}}
		}
		return []Violation{{
			SchemaPointer:   jschema.Join(n.Pointer, c.Keyword),
			InstancePointer: ptr,
			Code:            CodeNot,
			Message:         "value must not match the schema in not",
		}}
	}
	return nil
}

func unionNone(n *jschema.Node, ptr string, children []Violation) Violation {
	return Violation{
		SchemaPointer:   jschema.Join(n.Pointer, n.Composite.Keyword),
		InstancePointer: ptr,
		Code:            CodeUnionNone,
		Message:         fmt.Sprintf("value does not match any schema in %s", n.Composite.Keyword),
		Children:        children,
	}
}

// typeUnion validates against the branch whose type matches the instance.
func (s *state) typeUnion(v any, n *jschema.Node, ptr string) []Violation {
	names := make([]string, 0, len(n.Composite.Branches))
	for _, b := range n.Composite.Branches {
		if hasType(b.Kind(), v) {
			return s.validate(v, b, ptr)
		}
		names = append(names, b.Kind().String())
	}
	return []Violation{{
		SchemaPointer:   jschema.Join(n.Pointer, "type"),
		InstancePointer: ptr,
		Code:            CodeInvalidType,
		Message:         fmt.Sprintf("expected %s, got %s", strings.Join(names, " or "), typeOf(v)),
	}}
}

func (s *state) ref(v any, n *jschema.Node, ptr string) []Violation {
	target, err := n.Ref.Resolve()
	if err != nil {
		return []Violation{{
			SchemaPointer:   jschema.Join(n.Pointer, "$ref"),
			InstancePointer: ptr,
			Code:            CodeUnresolvedRef,
			Message:         fmt.Sprintf("reference %q cannot be resolved: %v", n.Ref.Target, err),
		}}
	}
	key := visit{node: target, instance: ptr}
	if _, ok := s.visiting[key]; ok {
		s.cycleHits++
		return nil
	}
	s.visiting[key] = struct{}{}
	defer delete(s.visiting, key)
	return s.validate(v, target, ptr)
}

func hasType(k jschema.Kind, v any) bool {
	switch k {
	case jschema.KindObject:
		_, ok := v.(map[string]any)
		return ok
	case jschema.KindArray:
		_, ok := v.([]any)
		return ok
	case jschema.KindString:
		_, ok := v.(string)
		return ok
	case jschema.KindNumber:
		_, ok := toRat(v)
		return ok
	case jschema.KindInteger:
		r, ok := toRat(v)
		return ok && r.IsInt()
	case jschema.KindBoolean:
		_, ok := v.(bool)
		return ok
	case jschema.KindNull:
		return v == nil
	}
	return true
}

func typeOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	if _, ok := toRat(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

func toRat(v any) (*big.Rat, bool) {
	switch t := v.(type) {
	case json.Number:
		return new(big.Rat).SetString(t.String())
	case float64:
		r := new(big.Rat).SetFloat64(t)
		return r, r != nil
	case int:
		return new(big.Rat).SetInt64(int64(t)), true
	case int64:
		return new(big.Rat).SetInt64(t), true
	}
	return nil, false
}

// equal compares JSON values structurally. Numbers compare by value.
func equal(a, b any) bool {
	if ra, ok := toRat(a); ok {
		rb, ok := toRat(b)
		return ok && ra.Cmp(rb) == 0
	}
	switch x := a.(type) {
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !equal(xv, yv) {
				return false
			}
		}
		return true
	}
	return false
}

func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// render formats a value as compact JSON for messages.
func render(v any) string {
	data, err := gojson.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
