// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package jschema

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTree(t *testing.T) *Node {
	t.Helper()
	root, err := NewLoader(os.DirFS("testdata")).LoadFile("tree.json")
	require.NoError(t, err)
	return root
}

func TestTraverse_CircularRefs(t *testing.T) {
	root := loadTree(t)

	var kinds []Kind
	for n := range Traverse(root) {
		kinds = append(kinds, n.Kind())
	}
	assert.Equal(t, []Kind{KindRef, KindObject, KindInteger, KindArray, KindRef}, kinds)
}

func TestTraverse_EarlyTermination(t *testing.T) {
	root := loadTree(t)

	count := 0
	for range Traverse(root) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestTraverse_CompositeAndObjectChildren(t *testing.T) {
	root, err := Load([]byte(`{
		"anyOf": [{"type": "string"}, {"type": "null"}],
		"patternProperties": {"^x-": {"type": "string"}},
		"additionalProperties": {"type": "integer"}
	}`))
	require.NoError(t, err)

	var pointers []string
	for n := range Traverse(root) {
		pointers = append(pointers, n.Pointer)
	}
	assert.Equal(t, []string{
		"/",
		"/",
		"/anyOf/0",
		"/anyOf/1",
		"/",
		"/patternProperties/^x-",
		"/additionalProperties",
	}, pointers)
}

func TestDump_Deterministic(t *testing.T) {
	root := loadTree(t)

	first := Dump(root)
	assert.Equal(t, first, Dump(root))
	assert.Contains(t, first, "ref / -> /$defs/treeNode")
	assert.Contains(t, first, "^object /$defs/treeNode")
}
