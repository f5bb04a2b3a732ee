// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dacolabs/jsonschema-validate/internal/jschema"
	"github.com/dacolabs/jsonschema-validate/internal/validator"
)

const personSchema = `{"type":"object","required":["name"],"properties":{"name":{"type":"string"}}}`

type fixture struct {
	dir    string
	schema string
	input  string
	report string
}

func newFixture(t *testing.T, schema string, docs map[string]string) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:    dir,
		schema: filepath.Join(dir, "schema.json"),
		input:  filepath.Join(dir, "docs"),
		report: filepath.Join(dir, "out", "report.json"),
	}
	require.NoError(t, os.WriteFile(f.schema, []byte(schema), 0o600))
	require.NoError(t, os.MkdirAll(f.input, 0o750))
	for name, content := range docs {
		p := filepath.Join(f.input, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	return f
}

func (f fixture) options() Options {
	return Options{SchemaPath: f.schema, InputDir: f.input, ReportPath: f.report}
}

// recorder is a Sink that keeps every call.
type recorder struct {
	mu    sync.Mutex
	paths []string
	vs    map[string][]validator.Violation
}

func (r *recorder) Document(path string, vs []validator.Violation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.vs == nil {
		r.vs = make(map[string][]validator.Violation)
	}
	r.paths = append(r.paths, path)
	r.vs[path] = vs
}

func readReport(t *testing.T, path string) map[string][]map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string][]map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestRun_OneInvalidDocument(t *testing.T) {
	f := newFixture(t, personSchema, map[string]string{
		"a.json": `{"name":"a"}`,
		"b.json": `{"name":42}`,
		"c.json": `{"name":"c"}`,
	})
	sink := &recorder{}

	rep, err := Run(context.Background(), f.options(), sink)
	require.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, 1, ExitCode(err))
	assert.Equal(t, 3, rep.TotalDocuments)
	assert.Equal(t, 1, rep.FailedDocuments)

	out := readReport(t, f.report)
	require.Len(t, out, 1)
	require.Len(t, out["b.json"], 1)
	assert.Equal(t, "/name", out["b.json"][0]["instancePointer"])
	assert.Equal(t, "/properties/name/type", out["b.json"][0]["schemaPointer"])

	assert.Equal(t, []string{"a.json", "b.json", "c.json"}, sink.paths)
	assert.Empty(t, sink.vs["a.json"])
	require.Len(t, sink.vs["b.json"], 1)
	assert.Equal(t, "b.json", sink.vs["b.json"][0].DocumentPath)
	assert.Equal(t, out["b.json"][0]["message"], sink.vs["b.json"][0].Message)
}

func TestRun_AllValid(t *testing.T) {
	f := newFixture(t, personSchema, map[string]string{
		"a.json": `{"name":"a"}`,
		"b.json": `{"name":"b"}`,
		"c.json": `{"name":"c"}`,
	})

	rep, err := Run(context.Background(), f.options(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ExitCode(err))
	assert.False(t, rep.Failed())

	data, err := os.ReadFile(f.report)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}

func TestRun_EmptyInputDirectory(t *testing.T) {
	f := newFixture(t, personSchema, nil)

	rep, err := Run(context.Background(), f.options(), nil)
	require.NoError(t, err)
	assert.Zero(t, rep.TotalDocuments)
	assert.FileExists(t, f.report)
}

func TestRun_SchemaErrorsAbort(t *testing.T) {
	tests := []struct {
		name    string
		schema  string
		wantErr any
	}{
		{"malformed schema", `{"type":`, new(*jschema.SchemaParseError)},
		{"wrong keyword type", `{"required":"name"}`, new(*jschema.SchemaParseError)},
		{"remote reference", `{"$ref":"https://example.com/s.json"}`, new(*jschema.UnsupportedReferenceError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.schema, map[string]string{"a.json": `{}`})
			sink := &recorder{}

			rep, err := Run(context.Background(), f.options(), sink)
			require.Error(t, err)
			assert.Nil(t, rep)
			assert.Equal(t, 2, ExitCode(err))

			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.ErrorAs(t, err, tt.wantErr)

			assert.NoFileExists(t, f.report)
			assert.Empty(t, sink.paths)
		})
	}
}

func TestRun_MissingSchemaFile(t *testing.T) {
	f := newFixture(t, personSchema, nil)
	opts := f.options()
	opts.SchemaPath = filepath.Join(f.dir, "missing.json")

	_, err := Run(context.Background(), opts, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, 2, ExitCode(err))
}

func TestRun_MissingInputDirectory(t *testing.T) {
	f := newFixture(t, personSchema, nil)
	opts := f.options()
	opts.InputDir = filepath.Join(f.dir, "nope")

	_, err := Run(context.Background(), opts, nil)
	require.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))
	assert.NoFileExists(t, f.report)
}

func TestRun_InvalidOptions(t *testing.T) {
	f := newFixture(t, personSchema, nil)

	opts := f.options()
	opts.ReportPath = ""
	_, err := Run(context.Background(), opts, nil)
	assert.ErrorContains(t, err, "report path is required")

	opts = f.options()
	opts.NonJSON = "maybe"
	_, err = Run(context.Background(), opts, nil)
	assert.ErrorContains(t, err, "invalid non-JSON policy")
}

func TestRun_NonJSONPolicy(t *testing.T) {
	docs := map[string]string{
		"a.json":      `{"name":"a"}`,
		"notes.txt":   "not json",
		"b.JSON":      `{"name":"b"}`,
		"broken.json": `{"name":`,
	}

	t.Run("validate", func(t *testing.T) {
		f := newFixture(t, personSchema, docs)

		_, err := Run(context.Background(), f.options(), nil)
		require.ErrorIs(t, err, ErrValidationFailed)

		out := readReport(t, f.report)
		assert.Len(t, out, 2)
		require.Contains(t, out, "notes.txt")
		assert.Contains(t, out["notes.txt"][0]["message"], "malformed JSON document")
		assert.Equal(t, "/", out["broken.json"][0]["instancePointer"])
	})

	t.Run("skip", func(t *testing.T) {
		f := newFixture(t, personSchema, docs)
		opts := f.options()
		opts.NonJSON = NonJSONSkip
		sink := &recorder{}

		rep, err := Run(context.Background(), opts, sink)
		require.ErrorIs(t, err, ErrValidationFailed)
		assert.Equal(t, 3, rep.TotalDocuments)
		assert.Equal(t, []string{"a.json", "b.JSON", "broken.json"}, sink.paths)
		assert.NotContains(t, readReport(t, f.report), "notes.txt")
	})
}

func TestValidateAll_ReadErrorDoesNotStopBatch(t *testing.T) {
	schema, err := jschema.Load([]byte(personSchema))
	require.NoError(t, err)
	fsys := fstest.MapFS{
		"a.json": {Data: []byte(`{"name":"a"}`)},
		"c.json": {Data: []byte(`{"name":3}`)},
	}
	files := []file{{rel: "a.json"}, {rel: "b.json"}, {rel: "c.json"}}
	opts := Options{SchemaPath: "schema.json", InputDir: "docs", ReportPath: "report.json", Workers: 2}.withDefaults()

	var order []string
	results := make(map[string]validator.Result)
	err = validateAll(context.Background(), opts, fsys, validator.Builtin{Schema: schema}, files, func(p string, r validator.Result) {
		order = append(order, p)
		results[p] = r
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.json", "b.json", "c.json"}, order)
	assert.True(t, results["a.json"].Valid())

	readErr := results["b.json"].Violations
	require.Len(t, readErr, 1)
	assert.Equal(t, validator.CodeIOError, readErr[0].Code)
	assert.Equal(t, "b.json", readErr[0].DocumentPath)
	assert.Equal(t, jschema.Root, readErr[0].InstancePointer)
	assert.Contains(t, readErr[0].Message, "failed to read document")

	invalid := results["c.json"].Violations
	require.Len(t, invalid, 1)
	assert.Equal(t, validator.CodeInvalidType, invalid[0].Code)
	assert.Equal(t, "/name", invalid[0].InstancePointer)
}

func TestRun_DeterministicAcrossWorkerCounts(t *testing.T) {
	docs := map[string]string{
		"a.json":       `{"name":1}`,
		"a/b.json":     `{"name":2}`,
		"a/c/d.json":   `{}`,
		"z.json":       `{"name":"ok"}`,
		"m/n/o/p.json": `[]`,
	}
	for i := range 20 {
		docs[fmt.Sprintf("bulk/%02d.json", i)] = fmt.Sprintf(`{"name":%d}`, i)
	}

	var reports [][]byte
	var orders [][]string
	for _, workers := range []int{1, 3, 16} {
		f := newFixture(t, personSchema, docs)
		opts := f.options()
		opts.Workers = workers
		sink := &recorder{}

		_, err := Run(context.Background(), opts, sink)
		require.ErrorIs(t, err, ErrValidationFailed)

		data, err := os.ReadFile(f.report)
		require.NoError(t, err)
		reports = append(reports, data)
		orders = append(orders, sink.paths)
	}

	assert.Equal(t, reports[0], reports[1])
	assert.Equal(t, reports[0], reports[2])
	assert.Equal(t, orders[0], orders[2])
	assert.Equal(t, "a.json", orders[0][0])
	assert.Equal(t, "a/b.json", orders[0][1])
	assert.Equal(t, "a/c/d.json", orders[0][2])
}

func TestRun_SummaryAndMetrics(t *testing.T) {
	f := newFixture(t, personSchema, map[string]string{
		"a.json": `{"name":"a"}`,
		"b.json": `{}`,
	})
	opts := f.options()
	opts.SummaryPath = filepath.Join(f.dir, "out", "summary.md")
	opts.MetricsPath = filepath.Join(f.dir, "out", "validate.prom")

	_, err := Run(context.Background(), opts, nil)
	require.ErrorIs(t, err, ErrValidationFailed)

	summary, err := os.ReadFile(opts.SummaryPath)
	require.NoError(t, err)
	assert.Contains(t, string(summary), "### `b.json`")

	prom, err := os.ReadFile(opts.MetricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `validate_documents_total{result="invalid"} 1`)
	assert.Contains(t, string(prom), `validate_documents_total{result="valid"} 1`)
}

func TestRun_ReferenceEngine(t *testing.T) {
	f := newFixture(t, personSchema, map[string]string{
		"a.json": `{"name":"a"}`,
		"b.json": `{"name":42}`,
	})
	opts := f.options()
	opts.Engine = "reference"

	_, err := Run(context.Background(), opts, nil)
	require.ErrorIs(t, err, ErrValidationFailed)

	out := readReport(t, f.report)
	assert.Len(t, out, 1)
	assert.Contains(t, out, "b.json")
}

func TestRun_UnknownEngine(t *testing.T) {
	f := newFixture(t, personSchema, nil)
	opts := f.options()
	opts.Engine = "nope"

	_, err := Run(context.Background(), opts, nil)
	assert.ErrorContains(t, err, "unknown engine")
	assert.Equal(t, 2, ExitCode(err))
}

func TestRun_Cancelled(t *testing.T) {
	f := newFixture(t, personSchema, map[string]string{"a.json": `{}`})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, f.options(), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, f.report)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(fmt.Errorf("run: %w", ErrValidationFailed)))
	assert.Equal(t, 2, ExitCode(errors.New("boom")))
}
