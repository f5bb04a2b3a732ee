// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package jschema

import (
	"encoding/json"
	"fmt"
	"math/big"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// compiler turns a raw schema tree into Nodes. It is retained by Ref
// placeholders so that reference targets can be compiled on first use.
type compiler struct {
	root any

	mu      sync.Mutex
	targets map[string]*refTarget
}

type refTarget struct {
	once sync.Once
	node *Node
	err  error
}

func newCompiler(root any) *compiler {
	return &compiler{root: root, targets: make(map[string]*refTarget)}
}

// seed registers an already compiled node for pointer so references to it
// share the node's identity.
func (c *compiler) seed(pointer string, n *Node) {
	t := &refTarget{node: n}
	t.once.Do(func() {})
	c.mu.Lock()
	c.targets[pointer] = t
	c.mu.Unlock()
}

var typeKinds = map[string]Kind{
	"object":  KindObject,
	"array":   KindArray,
	"string":  KindString,
	"number":  KindNumber,
	"integer": KindInteger,
	"boolean": KindBoolean,
	"null":    KindNull,
}

// part is one independent aspect of a schema object, ordered by the
// position of the keyword that introduced it.
type part struct {
	at   int
	node *Node
}

func (c *compiler) compile(raw any, ptr string) (*Node, error) {
	switch v := raw.(type) {
	case bool:
		if v {
			return newNode(KindAny, ptr), nil
		}
		return falseNode(ptr), nil
	case *object:
		return c.compileObject(v, ptr)
	}
	return nil, parseErrorf(ptr, "schema must be an object or a boolean, got %s", jsonType(raw))
}

func falseNode(ptr string) *Node {
	n := newNode(KindComposite, ptr)
	n.Composite = &Composite{Combinator: Not, Keyword: "false", Branches: []*Node{newNode(KindAny, ptr)}}
	return n
}

func (c *compiler) compileObject(o *object, ptr string) (*Node, error) {
	for _, kw := range []string{"$defs", "definitions"} {
		if raw, ok := o.get(kw); ok {
			if _, ok := raw.(*object); !ok {
				return nil, parseErrorf(Join(ptr, kw), "must be an object, got %s", jsonType(raw))
			}
		}
	}

	obj, objAt, err := c.objectKeywords(o, ptr)
	if err != nil {
		return nil, err
	}
	arr, arrAt, err := c.arrayKeywords(o, ptr)
	if err != nil {
		return nil, err
	}
	str, strAt, err := stringKeywords(o, ptr)
	if err != nil {
		return nil, err
	}
	num, numAt, err := numberKeywords(o, ptr)
	if err != nil {
		return nil, err
	}

	var parts []part
	if raw, ok := o.get("type"); ok {
		names, err := typeNames(raw, Join(ptr, "type"))
		if err != nil {
			return nil, err
		}
		nodes := make([]*Node, 0, len(names))
		for _, name := range names {
			n := newNode(typeKinds[name], ptr)
			n.asserted = true
			switch n.kind {
			case KindObject:
				n.Object = obj
				if n.Object == nil {
					n.Object = &Object{index: map[string]*Node{}}
				}
			case KindArray:
				n.Array = arr
				if n.Array == nil {
					n.Array = &Array{}
				}
			case KindString:
				n.String = str
				if n.String == nil {
					n.String = &String{}
				}
			case KindNumber, KindInteger:
				n.Number = num
				if n.Number == nil {
					n.Number = &Number{}
				}
			}
			nodes = append(nodes, n)
		}
		at := keyIndex(o, "type")
		if len(nodes) == 1 {
			parts = append(parts, part{at, nodes[0]})
		} else {
			u := newNode(KindComposite, ptr)
			u.Composite = &Composite{Combinator: AnyOf, Keyword: "type", Branches: nodes}
			parts = append(parts, part{at, u})
		}
	} else {
		if obj != nil {
			n := newNode(KindObject, ptr)
			n.Object = obj
			parts = append(parts, part{objAt, n})
		}
		if arr != nil {
			n := newNode(KindArray, ptr)
			n.Array = arr
			parts = append(parts, part{arrAt, n})
		}
		if str != nil {
			n := newNode(KindString, ptr)
			n.String = str
			parts = append(parts, part{strAt, n})
		}
		if num != nil {
			n := newNode(KindNumber, ptr)
			n.Number = num
			parts = append(parts, part{numAt, n})
		}
	}

	for i, kw := range o.keys {
		raw := o.values[kw]
		at := Join(ptr, kw)
		switch kw {
		case "enum":
			values, ok := raw.([]any)
			if !ok {
				return nil, parseErrorf(at, "must be an array, got %s", jsonType(raw))
			}
			n := newNode(KindEnum, ptr)
			n.Enum = &Enum{Keyword: kw, Values: plain(values).([]any)}
			parts = append(parts, part{i, n})
		case "const":
			n := newNode(KindEnum, ptr)
			n.Enum = &Enum{Keyword: kw, Values: []any{plain(raw)}}
			parts = append(parts, part{i, n})
		case "allOf", "anyOf", "oneOf":
			branches, err := c.schemaList(raw, at)
			if err != nil {
				return nil, err
			}
			n := newNode(KindComposite, ptr)
			n.Composite = &Composite{Combinator: combinators[kw], Keyword: kw, Branches: branches}
			parts = append(parts, part{i, n})
		case "not":
			branch, err := c.compile(raw, at)
			if err != nil {
				return nil, err
			}
			n := newNode(KindComposite, ptr)
			n.Composite = &Composite{Combinator: Not, Keyword: kw, Branches: []*Node{branch}}
			parts = append(parts, part{i, n})
		case "$ref":
			n, err := c.compileRef(raw, ptr)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part{i, n})
		}
	}

	sort.SliceStable(parts, func(i, j int) bool { return parts[i].at < parts[j].at })
	switch len(parts) {
	case 0:
		return newNode(KindAny, ptr), nil
	case 1:
		return parts[0].node, nil
	}
	n := newNode(KindComposite, ptr)
	n.Composite = &Composite{Combinator: AllOf}
	for _, p := range parts {
		n.Composite.Branches = append(n.Composite.Branches, p.node)
	}
	return n, nil
}

var combinators = map[string]Combinator{
	"allOf": AllOf,
	"anyOf": AnyOf,
	"oneOf": OneOf,
}

func (c *compiler) schemaList(raw any, ptr string) ([]*Node, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, parseErrorf(ptr, "must be an array of schemas, got %s", jsonType(raw))
	}
	if len(list) == 0 {
		return nil, parseErrorf(ptr, "must not be empty")
	}
	nodes := make([]*Node, 0, len(list))
	for i, item := range list {
		n, err := c.compile(item, Join(ptr, fmt.Sprint(i)))
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (c *compiler) compileRef(raw any, ptr string) (*Node, error) {
	at := Join(ptr, "$ref")
	ref, ok := raw.(string)
	if !ok {
		return nil, parseErrorf(at, "must be a string, got %s", jsonType(raw))
	}
	fragment, local := strings.CutPrefix(ref, "#")
	if !local || (fragment != "" && !strings.HasPrefix(fragment, "/")) {
		return nil, &UnsupportedReferenceError{Pointer: at, Ref: ref}
	}
	tokens, err := splitFragment(fragment)
	if err != nil {
		return nil, &SchemaParseError{Pointer: at, Reason: fmt.Sprintf("invalid reference %q", ref), Err: err}
	}
	if _, ok := lookup(c.root, tokens); !ok {
		return nil, parseErrorf(at, "reference %q does not resolve", ref)
	}
	target := Join(Root, tokens...)
	n := newNode(KindRef, ptr)
	n.Ref = &Ref{
		Target:  ref,
		Pointer: target,
		resolve: func() (*Node, error) { return c.resolve(target, tokens) },
	}
	return n, nil
}

// resolve compiles the schema at pointer once and returns the same node for
// every reference to it.
func (c *compiler) resolve(pointer string, tokens []string) (*Node, error) {
	c.mu.Lock()
	t, ok := c.targets[pointer]
	if !ok {
		t = &refTarget{}
		c.targets[pointer] = t
	}
	c.mu.Unlock()

	t.once.Do(func() {
		raw, _ := lookup(c.root, tokens)
		t.node, t.err = c.compile(raw, pointer)
	})
	return t.node, t.err
}

func (c *compiler) objectKeywords(o *object, ptr string) (*Object, int, error) {
	obj := &Object{index: make(map[string]*Node)}
	first := -1
	for i, kw := range o.keys {
		raw := o.values[kw]
		at := Join(ptr, kw)
		switch kw {
		case "properties":
			props, ok := raw.(*object)
			if !ok {
				return nil, 0, parseErrorf(at, "must be an object, got %s", jsonType(raw))
			}
			for _, name := range props.keys {
				child, err := c.compile(props.values[name], Join(at, name))
				if err != nil {
					return nil, 0, err
				}
				obj.Properties = append(obj.Properties, Property{Name: name, Schema: child})
				obj.index[name] = child
			}
		case "required":
			names, err := stringList(raw, at)
			if err != nil {
				return nil, 0, err
			}
			obj.Required = names
		case "patternProperties":
			pats, ok := raw.(*object)
			if !ok {
				return nil, 0, parseErrorf(at, "must be an object, got %s", jsonType(raw))
			}
			for _, expr := range pats.keys {
				re, err := regexp.Compile(expr)
				if err != nil {
					return nil, 0, &SchemaParseError{Pointer: Join(at, expr), Reason: "invalid pattern", Err: err}
				}
				child, err := c.compile(pats.values[expr], Join(at, expr))
				if err != nil {
					return nil, 0, err
				}
				obj.Patterns = append(obj.Patterns, PatternProperty{Pattern: re, Schema: child})
			}
		case "additionalProperties":
			switch v := raw.(type) {
			case bool:
				if !v {
					obj.Additional = AdditionalForbid
				}
			case *object:
				child, err := c.compile(v, at)
				if err != nil {
					return nil, 0, err
				}
				obj.Additional = AdditionalSchema
				obj.AdditionalSchema = child
			default:
				return nil, 0, parseErrorf(at, "must be a schema, got %s", jsonType(raw))
			}
		case "minProperties", "maxProperties":
			n, err := nonNegative(raw, at)
			if err != nil {
				return nil, 0, err
			}
			if kw == "minProperties" {
				obj.MinProperties = n
			} else {
				obj.MaxProperties = n
			}
		default:
			continue
		}
		obj.Keywords = append(obj.Keywords, kw)
		if first < 0 {
			first = i
		}
	}
	if first < 0 {
		return nil, -1, nil
	}
	return obj, first, nil
}

func (c *compiler) arrayKeywords(o *object, ptr string) (*Array, int, error) {
	_, hasPrefix := o.get("prefixItems")
	itemsRaw, _ := o.get("items")
	_, itemsTuple := itemsRaw.([]any)

	arr := &Array{}
	first := -1
	for i, kw := range o.keys {
		raw := o.values[kw]
		at := Join(ptr, kw)
		var role string
		switch kw {
		case "prefixItems":
			nodes, err := c.schemaList(raw, at)
			if err != nil {
				return nil, 0, err
			}
			arr.Tuple, arr.TupleKeyword, role = nodes, kw, RoleTuple
		case "items":
			switch {
			case itemsTuple && hasPrefix:
				return nil, 0, parseErrorf(at, "must be a schema when prefixItems is present")
			case itemsTuple:
				nodes, err := c.schemaList(raw, at)
				if err != nil {
					return nil, 0, err
				}
				arr.Tuple, arr.TupleKeyword, role = nodes, kw, RoleTuple
			case hasPrefix:
				r, err := c.rest(arr, raw, at, kw)
				if err != nil {
					return nil, 0, err
				}
				role = r
			default:
				n, err := c.compile(raw, at)
				if err != nil {
					return nil, 0, err
				}
				arr.Items, role = n, RoleItems
			}
		case "additionalItems":
			if !itemsTuple {
				continue
			}
			r, err := c.rest(arr, raw, at, kw)
			if err != nil {
				return nil, 0, err
			}
			role = r
		case "minItems", "maxItems":
			n, err := nonNegative(raw, at)
			if err != nil {
				return nil, 0, err
			}
			if kw == "minItems" {
				arr.MinItems = n
			} else {
				arr.MaxItems = n
			}
			role = kw
		case "uniqueItems":
			b, ok := raw.(bool)
			if !ok {
				return nil, 0, parseErrorf(at, "must be a boolean, got %s", jsonType(raw))
			}
			arr.UniqueItems = b
			role = kw
		default:
			continue
		}
		if first < 0 {
			first = i
		}
		if role != "" {
			arr.Keywords = append(arr.Keywords, role)
		}
	}
	if first < 0 {
		return nil, -1, nil
	}
	return arr, first, nil
}

// rest compiles the schema for elements past a tuple. It returns the role to
// record, or "" when every extra element is allowed.
func (c *compiler) rest(arr *Array, raw any, at, kw string) (string, error) {
	arr.RestKeyword = kw
	if b, ok := raw.(bool); ok {
		if b {
			return "", nil
		}
		arr.RestForbidden = true
		return RoleRest, nil
	}
	n, err := c.compile(raw, at)
	if err != nil {
		return "", err
	}
	arr.Rest = n
	return RoleRest, nil
}

func stringKeywords(o *object, ptr string) (*String, int, error) {
	str := &String{}
	first := -1
	for i, kw := range o.keys {
		raw := o.values[kw]
		at := Join(ptr, kw)
		switch kw {
		case "minLength", "maxLength":
			n, err := nonNegative(raw, at)
			if err != nil {
				return nil, 0, err
			}
			if kw == "minLength" {
				str.MinLength = n
			} else {
				str.MaxLength = n
			}
		case "pattern":
			expr, ok := raw.(string)
			if !ok {
				return nil, 0, parseErrorf(at, "must be a string, got %s", jsonType(raw))
			}
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, 0, &SchemaParseError{Pointer: at, Reason: "invalid pattern", Err: err}
			}
			str.Pattern = re
		case "format":
			f, ok := raw.(string)
			if !ok {
				return nil, 0, parseErrorf(at, "must be a string, got %s", jsonType(raw))
			}
			str.Format = f
		default:
			continue
		}
		str.Keywords = append(str.Keywords, kw)
		if first < 0 {
			first = i
		}
	}
	if first < 0 {
		return nil, -1, nil
	}
	return str, first, nil
}

func numberKeywords(o *object, ptr string) (*Number, int, error) {
	num := &Number{}
	first := -1
	var exclusiveMin, exclusiveMax bool
	for i, kw := range o.keys {
		raw := o.values[kw]
		at := Join(ptr, kw)
		switch kw {
		case "minimum", "maximum", "multipleOf":
			b, err := bound(raw, at)
			if err != nil {
				return nil, 0, err
			}
			switch kw {
			case "minimum":
				num.Minimum = b
			case "maximum":
				num.Maximum = b
			default:
				if b.Value.Sign() <= 0 {
					return nil, 0, parseErrorf(at, "must be greater than 0")
				}
				num.MultipleOf = b
			}
		case "exclusiveMinimum", "exclusiveMaximum":
			// Draft 4 spells these as booleans modifying minimum/maximum.
			if flag, ok := raw.(bool); ok {
				if kw == "exclusiveMinimum" {
					exclusiveMin = flag
				} else {
					exclusiveMax = flag
				}
				if first < 0 {
					first = i
				}
				continue
			}
			b, err := bound(raw, at)
			if err != nil {
				return nil, 0, err
			}
			b.Exclusive = true
			if kw == "exclusiveMinimum" {
				num.ExclusiveMinimum = b
			} else {
				num.ExclusiveMaximum = b
			}
		default:
			continue
		}
		num.Keywords = append(num.Keywords, kw)
		if first < 0 {
			first = i
		}
	}
	if exclusiveMin && num.Minimum != nil {
		num.Minimum.Exclusive = true
	}
	if exclusiveMax && num.Maximum != nil {
		num.Maximum.Exclusive = true
	}
	if first < 0 {
		return nil, -1, nil
	}
	return num, first, nil
}

func typeNames(raw any, at string) ([]string, error) {
	var names []string
	switch v := raw.(type) {
	case string:
		names = []string{v}
	case []any:
		if len(v) == 0 {
			return nil, parseErrorf(at, "must not be empty")
		}
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, parseErrorf(Join(at, fmt.Sprint(i)), "must be a string, got %s", jsonType(item))
			}
			names = append(names, s)
		}
	default:
		return nil, parseErrorf(at, "must be a string or an array of strings, got %s", jsonType(raw))
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := typeKinds[name]; !ok {
			return nil, parseErrorf(at, "unknown type %q", name)
		}
		if seen[name] {
			return nil, parseErrorf(at, "type %q listed twice", name)
		}
		seen[name] = true
	}
	return names, nil
}

func stringList(raw any, at string) ([]string, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, parseErrorf(at, "must be an array of strings, got %s", jsonType(raw))
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, parseErrorf(Join(at, fmt.Sprint(i)), "must be a string, got %s", jsonType(item))
		}
		out = append(out, s)
	}
	return out, nil
}

func bound(raw any, at string) (*Bound, error) {
	num, ok := raw.(json.Number)
	if !ok {
		return nil, parseErrorf(at, "must be a number, got %s", jsonType(raw))
	}
	r, ok := new(big.Rat).SetString(num.String())
	if !ok {
		return nil, parseErrorf(at, "invalid number %s", num)
	}
	return &Bound{Value: r, Text: num.String()}, nil
}

func nonNegative(raw any, at string) (*int, error) {
	b, err := bound(raw, at)
	if err != nil {
		return nil, parseErrorf(at, "must be a non-negative integer, got %s", jsonType(raw))
	}
	if !b.Value.IsInt() || b.Value.Sign() < 0 || !b.Value.Num().IsInt64() {
		return nil, parseErrorf(at, "must be a non-negative integer, got %s", b.Text)
	}
	n := int(b.Value.Num().Int64())
	return &n, nil
}

func keyIndex(o *object, key string) int {
	for i, k := range o.keys {
		if k == key {
			return i
		}
	}
	return -1
}
