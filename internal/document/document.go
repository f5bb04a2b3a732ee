// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package document decodes input documents for validation.
package document

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ParseError reports an input file that is not a single JSON value.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: malformed JSON document: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse decodes data into map[string]any, []any, string, json.Number, bool
// and nil values. Numbers keep their literal text.
func Parse(path string, data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{Path: path, Err: errors.New("empty document")}
	}
	if !json.Valid(data) {
		return nil, &ParseError{Path: path, Err: syntaxError(data)}
	}
	v, err := decode(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return v, nil
}

// decode walks a valid JSON value one level at a time. Numbers are kept as
// their literal text, so values outside the float64 range still decode.
func decode(raw []byte) (any, error) {
	raw = bytes.TrimSpace(raw)
	switch raw[0] {
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
		obj := make(map[string]any, len(fields))
		for k, f := range fields {
			v, err := decode(f)
			if err != nil {
				return nil, err
			}
			obj[k] = v
		}
		return obj, nil
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, err
		}
		arr := make([]any, len(elems))
		for i, e := range elems {
			v, err := decode(e)
			if err != nil {
				return nil, err
			}
			arr[i] = v
		}
		return arr, nil
	case '"':
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil, err
		}
		return str, nil
	case 't':
		return true, nil
	case 'f':
		return false, nil
	case 'n':
		return nil, nil
	}
	return json.Number(raw), nil
}

// syntaxError recovers a descriptive error for invalid input.
func syntaxError(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	return errors.New("unexpected data after top-level value")
}
