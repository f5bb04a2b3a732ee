// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package jschema

import (
	"encoding/json"
	"io"
	"io/fs"
	"strings"
)

// Format is the encoding of a schema file.
type Format int

// Supported schema encodings.
const (
	JSON Format = iota
	YAML
)

// FormatFromPath determines the schema encoding from the file extension.
// Anything that is not .yaml or .yml is read as JSON.
func FormatFromPath(filePath string) Format {
	if strings.HasSuffix(filePath, ".yaml") || strings.HasSuffix(filePath, ".yml") {
		return YAML
	}
	return JSON
}

// Load parses JSON schema text and compiles it into a Node tree.
func Load(schemaText []byte) (*Node, error) {
	return load(schemaText, JSON)
}

func load(data []byte, format Format) (*Node, error) {
	raw, err := decode(data, format)
	if err != nil {
		return nil, err
	}
	return compileRoot(raw)
}

func decode(data []byte, format Format) (any, error) {
	var (
		raw any
		err error
	)
	switch format {
	case YAML:
		raw, err = decodeYAML(data)
		if err != nil {
			return nil, &SchemaParseError{Pointer: Root, Reason: "malformed YAML", Err: err}
		}
	default:
		raw, err = decodeJSON(data)
		if err != nil {
			return nil, &SchemaParseError{Pointer: Root, Reason: "malformed JSON", Err: err}
		}
	}
	return raw, nil
}

// compileRoot compiles the root schema and then forces every reachable
// reference, so that unresolvable targets fail here rather than during
// validation.
func compileRoot(raw any) (*Node, error) {
	c := newCompiler(raw)
	root, err := c.compile(raw, Root)
	if err != nil {
		return nil, err
	}
	c.seed(Root, root)

	for n := range Traverse(root) {
		if n.Kind() != KindRef {
			continue
		}
		if _, err := n.Ref.Resolve(); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// Loader loads schemas from a filesystem.
type Loader struct {
	fsys fs.FS
}

// NewLoader creates a Loader that reads from the given filesystem.
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// LoadFile loads and compiles a schema file.
// The format is determined from the file extension.
func (l *Loader) LoadFile(filePath string) (*Node, error) {
	data, err := l.read(filePath)
	if err != nil {
		return nil, err
	}
	return load(data, FormatFromPath(filePath))
}

// ReadJSON returns the schema file as JSON text, converting YAML schemas.
func (l *Loader) ReadJSON(filePath string) ([]byte, error) {
	data, err := l.read(filePath)
	if err != nil {
		return nil, err
	}
	if FormatFromPath(filePath) == JSON {
		return data, nil
	}
	raw, err := decode(data, YAML)
	if err != nil {
		return nil, err
	}
	return json.Marshal(plain(raw))
}

func (l *Loader) read(filePath string) ([]byte, error) {
	f, err := l.fsys.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	return io.ReadAll(f)
}
