// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package prompts

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExistingValidator(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(file, []byte(`{}`), 0o600))

	tests := []struct {
		name    string
		dir     bool
		value   string
		wantErr string
	}{
		{"empty", false, "", "schema is required"},
		{"missing", false, filepath.Join(dir, "nope.json"), "schema not found"},
		{"file", false, file, ""},
		{"directory for file", false, dir, "must be a file"},
		{"directory", true, dir, ""},
		{"file for directory", true, file, "must be a directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := existingValidator("schema", tt.dir)(tt.value)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestRunPathsForm_NothingMissing(t *testing.T) {
	schema, input, report := "s.json", "data", "r.json"
	require.NoError(t, RunPathsForm(&schema, &input, &report))
	assert.Equal(t, "s.json", schema)
}

func TestInteractive(t *testing.T) {
	assert.False(t, Interactive(nil))

	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck
	assert.False(t, Interactive(f))
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	PrintResult(&buf, []ResultField{{"Config", "validate.yaml"}}, "Initialization completed")

	assert.Contains(t, buf.String(), "Config: validate.yaml")
	assert.Contains(t, buf.String(), "Initialization completed")
}

func TestTheme(t *testing.T) {
	theme := Theme()
	assert.Equal(t, colorAccent, theme.Focused.Title.GetForeground())
	assert.Equal(t, colorMuted, theme.Blurred.Title.GetForeground())
	assert.Equal(t, colorFailure, theme.Focused.ErrorMessage.GetForeground())
}
