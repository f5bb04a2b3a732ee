// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package jschema

import (
	"fmt"
	"iter"
	"strings"
)

// Traverse returns an iterator over all nodes reachable from root, each
// visited once. References are followed to their targets.
func Traverse(root *Node) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		visited := make(map[*Node]struct{})
		traverseWithVisited(root, yield, visited)
	}
}

func traverseWithVisited(n *Node, yield func(*Node) bool, visited map[*Node]struct{}) bool {
	if n == nil {
		return true
	}
	if _, ok := visited[n]; ok {
		return true
	}
	visited[n] = struct{}{}

	if !yield(n) {
		return false
	}
	for _, child := range children(n) {
		if !traverseWithVisited(child, yield, visited) {
			return false
		}
	}
	return true
}

func children(n *Node) []*Node {
	var out []*Node
	switch n.kind {
	case KindObject:
		for _, p := range n.Object.Properties {
			out = append(out, p.Schema)
		}
		for _, p := range n.Object.Patterns {
			out = append(out, p.Schema)
		}
		if n.Object.AdditionalSchema != nil {
			out = append(out, n.Object.AdditionalSchema)
		}
	case KindArray:
		if n.Array.Items != nil {
			out = append(out, n.Array.Items)
		}
		out = append(out, n.Array.Tuple...)
		if n.Array.Rest != nil {
			out = append(out, n.Array.Rest)
		}
	case KindComposite:
		out = append(out, n.Composite.Branches...)
	case KindRef:
		if target, err := n.Ref.Resolve(); err == nil {
			out = append(out, target)
		}
	}
	return out
}

// Dump renders the node tree as indented text. Each node is expanded once;
// later visits print a back-reference to its pointer.
func Dump(root *Node) string {
	var b strings.Builder
	dump(&b, root, 0, make(map[*Node]struct{}))
	return b.String()
}

func dump(b *strings.Builder, n *Node, depth int, seen map[*Node]struct{}) {
	indent := strings.Repeat("  ", depth)
	if _, ok := seen[n]; ok {
		fmt.Fprintf(b, "%s^%s %s\n", indent, n.kind, n.Pointer)
		return
	}
	seen[n] = struct{}{}

	fmt.Fprintf(b, "%s%s %s", indent, n.kind, n.Pointer)
	if n.asserted {
		b.WriteString(" asserted")
	}
	switch n.kind {
	case KindObject:
		o := n.Object
		fmt.Fprintf(b, " keywords=%v required=%v additional=%d", o.Keywords, o.Required, o.Additional)
		writeInt(b, "minProperties", o.MinProperties)
		writeInt(b, "maxProperties", o.MaxProperties)
		for _, p := range o.Patterns {
			fmt.Fprintf(b, " pattern=%q", p.Pattern.String())
		}
	case KindArray:
		a := n.Array
		fmt.Fprintf(b, " keywords=%v tuple=%d restForbidden=%t unique=%t", a.Keywords, len(a.Tuple), a.RestForbidden, a.UniqueItems)
		writeInt(b, "minItems", a.MinItems)
		writeInt(b, "maxItems", a.MaxItems)
	case KindString:
		s := n.String
		fmt.Fprintf(b, " keywords=%v", s.Keywords)
		writeInt(b, "minLength", s.MinLength)
		writeInt(b, "maxLength", s.MaxLength)
		if s.Pattern != nil {
			fmt.Fprintf(b, " pattern=%q", s.Pattern.String())
		}
		if s.Format != "" {
			fmt.Fprintf(b, " format=%s", s.Format)
		}
	case KindNumber, KindInteger:
		num := n.Number
		fmt.Fprintf(b, " keywords=%v", num.Keywords)
		writeBound(b, "minimum", num.Minimum)
		writeBound(b, "maximum", num.Maximum)
		writeBound(b, "exclusiveMinimum", num.ExclusiveMinimum)
		writeBound(b, "exclusiveMaximum", num.ExclusiveMaximum)
		writeBound(b, "multipleOf", num.MultipleOf)
	case KindEnum:
		fmt.Fprintf(b, " %s=%v", n.Enum.Keyword, n.Enum.Values)
	case KindComposite:
		fmt.Fprintf(b, " %s keyword=%q", n.Composite.Combinator, n.Composite.Keyword)
	case KindRef:
		fmt.Fprintf(b, " -> %s", n.Ref.Pointer)
	}
	b.WriteByte('\n')

	if n.kind == KindObject {
		for _, p := range n.Object.Properties {
			fmt.Fprintf(b, "%s  .%s\n", indent, p.Name)
			dump(b, p.Schema, depth+2, seen)
		}
		for _, p := range n.Object.Patterns {
			dump(b, p.Schema, depth+1, seen)
		}
		if n.Object.AdditionalSchema != nil {
			dump(b, n.Object.AdditionalSchema, depth+1, seen)
		}
		return
	}
	for _, child := range children(n) {
		dump(b, child, depth+1, seen)
	}
}

func writeInt(b *strings.Builder, name string, v *int) {
	if v != nil {
		fmt.Fprintf(b, " %s=%d", name, *v)
	}
}

func writeBound(b *strings.Builder, name string, v *Bound) {
	if v != nil {
		fmt.Fprintf(b, " %s=%s exclusive=%t", name, v.Text, v.Exclusive)
	}
}
