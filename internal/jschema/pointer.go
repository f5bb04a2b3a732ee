// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package jschema

import (
	"net/url"
	"strings"
)

// Root is the pointer of a schema or document root.
const Root = "/"

var (
	tokenEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	tokenUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

// Join appends reference tokens to pointer, escaping "~" and "/".
func Join(pointer string, tokens ...string) string {
	var b strings.Builder
	if pointer != Root {
		b.WriteString(pointer)
	}
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(tokenEscaper.Replace(t))
	}
	if b.Len() == 0 {
		return Root
	}
	return b.String()
}

// splitFragment decodes the fragment of a local reference ("#/a/b") into
// unescaped reference tokens.
func splitFragment(fragment string) ([]string, error) {
	decoded, err := url.PathUnescape(fragment)
	if err != nil {
		return nil, err
	}
	if decoded == "" || decoded == "/" {
		return nil, nil
	}
	parts := strings.Split(strings.TrimPrefix(decoded, "/"), "/")
	for i, p := range parts {
		parts[i] = tokenUnescaper.Replace(p)
	}
	return parts, nil
}

// lookup walks a raw schema tree along tokens.
func lookup(root any, tokens []string) (any, bool) {
	cur := root
	for _, tok := range tokens {
		switch v := cur.(type) {
		case *object:
			next, ok := v.values[tok]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, ok := arrayIndex(tok)
			if !ok || i >= len(v) {
				return nil, false
			}
			cur = v[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

func arrayIndex(tok string) (int, bool) {
	if tok == "" || (len(tok) > 1 && tok[0] == '0') {
		return 0, false
	}
	n := 0
	for _, r := range tok {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
