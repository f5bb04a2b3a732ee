// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dacolabs/jsonschema-validate/internal/batch"
	"github.com/dacolabs/jsonschema-validate/internal/config"
)

const personSchema = `{"type":"object","required":["name"],"properties":{"name":{"type":"string"}}}`

type project struct {
	dir    string
	schema string
	input  string
	report string
}

func newProject(t *testing.T, docs map[string]string) project {
	t.Helper()
	dir := t.TempDir()
	p := project{
		dir:    dir,
		schema: filepath.Join(dir, "schema.json"),
		input:  filepath.Join(dir, "data"),
		report: filepath.Join(dir, "build", "report.json"),
	}
	require.NoError(t, os.WriteFile(p.schema, []byte(personSchema), 0o600))
	require.NoError(t, os.MkdirAll(p.input, 0o750))
	for name, content := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(p.input, name), []byte(content), 0o600))
	}
	return p
}

func execute(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd(func(k string) string { return env[k] })
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRoot_ValidationFailure(t *testing.T) {
	p := newProject(t, map[string]string{
		"a.json": `{"name":"a"}`,
		"b.json": `{"name":42}`,
		"c.json": `{}`,
	})

	out, err := execute(t, nil, "--schema", p.schema, "--input", p.input, "--report", p.report, "--no-color")
	require.ErrorIs(t, err, batch.ErrValidationFailed)
	assert.Equal(t, 1, ExitCode(err))

	assert.Contains(t, out, "✓ a.json")
	assert.Contains(t, out, "✗ b.json /name: expected string, got number (invalid_type at /properties/name/type)")
	assert.Contains(t, out, `✗ c.json /: missing required property "name" (required at /required)`)
	assert.Contains(t, out, "2 of 3 documents failed validation.")

	data, err := os.ReadFile(p.report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"b.json"`)
	assert.Contains(t, string(data), `"c.json"`)
}

func TestRoot_AllValid(t *testing.T) {
	p := newProject(t, map[string]string{"a.json": `{"name":"a"}`})

	out, err := execute(t, nil, "-s", p.schema, "-i", p.input, "-r", p.report, "--no-color")
	require.NoError(t, err)
	assert.Equal(t, 0, ExitCode(err))
	assert.Contains(t, out, "All documents are valid.")

	data, err := os.ReadFile(p.report)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}

func TestRoot_PathsFromEnvironment(t *testing.T) {
	p := newProject(t, map[string]string{"a.json": `{"name":"a"}`})
	env := map[string]string{
		config.EnvSchema: p.schema,
		config.EnvInput:  p.input,
		config.EnvReport: p.report,
	}

	_, err := execute(t, env, "--no-input")
	require.NoError(t, err)
	assert.FileExists(t, p.report)
}

func TestRoot_ConfigFileAndFlagOverride(t *testing.T) {
	p := newProject(t, map[string]string{"a.json": `{}`, "notes.txt": "x"})
	cfg := config.Config{Version: 1, Schema: "schema.json", Input: "data", Report: "build/report.json", NonJSON: "skip"}
	cfgPath := filepath.Join(p.dir, config.FileName)
	require.NoError(t, cfg.Save(cfgPath))

	other := filepath.Join(p.dir, "other.json")
	_, err := execute(t, nil, "--config", cfgPath, "--report", other, "--no-input")
	require.ErrorIs(t, err, batch.ErrValidationFailed)

	data, err := os.ReadFile(other)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"a.json"`)
	assert.NotContains(t, string(data), "notes.txt")
	assert.NoFileExists(t, p.report)
}

func TestRoot_UsageErrors(t *testing.T) {
	p := newProject(t, nil)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing paths", []string{"--no-input", "--schema", p.schema}, "--schema, --input and --report are required"},
		{"bad log level", []string{"-s", p.schema, "-i", p.input, "-r", p.report, "--log-level", "loud"}, "invalid --log-level"},
		{"bad non-json policy", []string{"-s", p.schema, "-i", p.input, "-r", p.report, "--non-json", "maybe"}, "nonJson must be"},
		{"missing config file", []string{"--config", filepath.Join(p.dir, "nope.yaml")}, "config file not found"},
		{"unknown flag", []string{"--bogus"}, "unknown flag"},
		{"positional argument", []string{"extra"}, "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, nil, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, 2, ExitCode(err))
		})
	}
}

func TestRoot_SchemaError(t *testing.T) {
	p := newProject(t, map[string]string{"a.json": `{}`})
	require.NoError(t, os.WriteFile(p.schema, []byte(`{"$ref":"other.json#/x"}`), 0o600))

	_, err := execute(t, nil, "-s", p.schema, "-i", p.input, "-r", p.report)
	require.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))
	assert.NoFileExists(t, p.report)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "validate version")

	out, err = execute(t, nil, "version", "--short")
	require.NoError(t, err)
	assert.NotContains(t, out, "validate version")
	assert.NotEmpty(t, out)
}

func TestInitCmd(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	args := []string{"init", "--schema", "schema.json", "--input", "data", "--report", "report.json", "--non-interactive"}
	out, err := execute(t, nil, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Initialization completed")

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "schema.json", cfg.Schema)
	assert.Equal(t, "validate", cfg.NonJSON)

	_, err = execute(t, nil, args...)
	assert.ErrorContains(t, err, "validate.yaml already exists")
}

func TestInitCmd_NonInteractiveRequiresPaths(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, nil, "init", "--non-interactive", "--schema", "schema.json")
	require.ErrorIs(t, err, ErrUsage)
}
