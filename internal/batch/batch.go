// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package batch validates every document under an input directory against
// one schema and writes the aggregate report.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dacolabs/jsonschema-validate/internal/document"
	"github.com/dacolabs/jsonschema-validate/internal/jschema"
	"github.com/dacolabs/jsonschema-validate/internal/metrics"
	"github.com/dacolabs/jsonschema-validate/internal/report"
	"github.com/dacolabs/jsonschema-validate/internal/validator"
)

// NonJSONPolicy decides what happens to files whose extension is not listed
// in Options.Extensions.
type NonJSONPolicy string

// Non-JSON file policies.
const (
	// NonJSONValidate treats every file as a document.
	NonJSONValidate NonJSONPolicy = "validate"
	// NonJSONSkip ignores files with other extensions.
	NonJSONSkip NonJSONPolicy = "skip"
)

// ErrValidationFailed is returned by Run when at least one document has
// violations. The report has been written.
var ErrValidationFailed = errors.New("validation failed")

// SchemaError reports a schema that could not be loaded. No document is
// read and no report is written.
type SchemaError struct {
	Path string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("failed to load schema %s: %v", e.Path, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// Options configures a run.
type Options struct {
	SchemaPath string
	InputDir   string
	ReportPath string

	// SummaryPath and MetricsPath are optional outputs.
	SummaryPath string
	MetricsPath string

	// Workers bounds concurrent validations. Zero means GOMAXPROCS.
	Workers    int
	NonJSON    NonJSONPolicy
	Extensions []string
	Engine     string

	Logger *slog.Logger
}

// DefaultExtensions are the document extensions used when none are configured.
var DefaultExtensions = []string{".json"}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.NonJSON == "" {
		o.NonJSON = NonJSONValidate
	}
	if len(o.Extensions) == 0 {
		o.Extensions = DefaultExtensions
	}
	if o.Engine == "" {
		o.Engine = validator.DefaultEngine
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

func (o Options) validate() error {
	switch {
	case o.SchemaPath == "":
		return errors.New("schema path is required")
	case o.InputDir == "":
		return errors.New("input directory is required")
	case o.ReportPath == "":
		return errors.New("report path is required")
	}
	switch o.NonJSON {
	case NonJSONValidate, NonJSONSkip:
	default:
		return fmt.Errorf("invalid non-JSON policy %q (must be %q or %q)", o.NonJSON, NonJSONValidate, NonJSONSkip)
	}
	return nil
}

// Sink receives each document's violations in scan order, as soon as the
// document and all documents before it are validated.
type Sink interface {
	Document(path string, violations []validator.Violation)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(path string, violations []validator.Violation)

// Document calls f.
func (f SinkFunc) Document(path string, violations []validator.Violation) {
	f(path, violations)
}

// Run loads the schema, validates every document under opts.InputDir and
// writes the report. It returns ErrValidationFailed when any document has
// violations; any other error is fatal.
func Run(ctx context.Context, opts Options, sink Sink) (*report.Report, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	start := time.Now()

	engine, err := loadEngine(opts)
	if err != nil {
		return nil, err
	}
	log.Debug("schema loaded", "schema", opts.SchemaPath, "engine", engine.Name())

	rec := metrics.NewRecorder()
	files, err := scan(opts, rec, log)
	if err != nil {
		return nil, err
	}
	log.Info("validating documents", "input", opts.InputDir, "documents", len(files), "workers", opts.Workers)

	rep := report.New(opts.SchemaPath)
	emit := func(path string, r validator.Result) {
		rep.Add(path, r.Violations)
		rec.ObserveDocument(validator.Count(r.Violations), r.CycleHits)
		if sink != nil {
			sink.Document(path, r.Violations)
		}
	}
	if err := validateAll(ctx, opts, os.DirFS(opts.InputDir), engine, files, emit); err != nil {
		return nil, err
	}

	if err := report.WriteFile(opts.ReportPath, rep); err != nil {
		return nil, err
	}
	log.Debug("report written", "path", opts.ReportPath)

	if opts.SummaryPath != "" {
		if err := report.WriteSummaryFile(opts.SummaryPath, rep); err != nil {
			return nil, err
		}
		log.Debug("summary written", "path", opts.SummaryPath)
	}

	rec.ObserveRun(time.Since(start))
	if opts.MetricsPath != "" {
		if err := rec.WriteTextfile(opts.MetricsPath); err != nil {
			return nil, fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	log.Info("validation finished",
		"documents", rep.TotalDocuments,
		"failed", rep.FailedDocuments,
		"violations", rep.TotalViolations(),
		"duration", time.Since(start))
	if rep.Failed() {
		return rep, ErrValidationFailed
	}
	return rep, nil
}

func loadEngine(opts Options) (validator.Engine, error) {
	loader := jschema.NewLoader(os.DirFS(filepath.Dir(opts.SchemaPath)))
	name := filepath.Base(opts.SchemaPath)

	schema, err := loader.LoadFile(name)
	if err != nil {
		return nil, &SchemaError{Path: opts.SchemaPath, Err: err}
	}
	var schemaJSON []byte
	if opts.Engine != validator.DefaultEngine {
		if schemaJSON, err = loader.ReadJSON(name); err != nil {
			return nil, &SchemaError{Path: opts.SchemaPath, Err: err}
		}
	}
	engine, err := validator.New(opts.Engine, schema, schemaJSON)
	if err != nil {
		return nil, &SchemaError{Path: opts.SchemaPath, Err: err}
	}
	return engine, nil
}

type file struct {
	// rel is the slash-separated path relative to the input directory and
	// the key used in the report.
	rel string
}

// scan lists the regular files under the input directory sorted by relative
// path.
func scan(opts Options, rec *metrics.Recorder, log *slog.Logger) ([]file, error) {
	info, err := os.Stat(opts.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input %s is not a directory", opts.InputDir)
	}

	var files []file
	err = fs.WalkDir(os.DirFS(opts.InputDir), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if opts.NonJSON == NonJSONSkip && !hasExtension(p, opts.Extensions) {
			log.Debug("skipping file", "path", p)
			rec.ObserveSkipped()
			return nil
		}
		files = append(files, file{rel: p})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}
	slices.SortFunc(files, func(a, b file) int { return strings.Compare(a.rel, b.rel) })
	return files, nil
}

func hasExtension(p string, extensions []string) bool {
	ext := path.Ext(p)
	for _, e := range extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

type slot struct {
	done   chan struct{}
	result validator.Result
	err    error
}

// validateAll checks files read from fsys on a bounded worker pool. Each worker fills its
// own slot; results are emitted in file order as slots complete.
func validateAll(ctx context.Context, opts Options, fsys fs.FS, engine validator.Engine, files []file, emit func(string, validator.Result)) error {
	slots := make([]slot, len(files))
	for i := range slots {
		slots[i].done = make(chan struct{})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	go func() {
		for i, f := range files {
			g.Go(func() error {
				defer close(slots[i].done)
				if err := gctx.Err(); err != nil {
					slots[i].err = err
					return err
				}
				slots[i].result = check(fsys, f, engine)
				return nil
			})
		}
	}()

	for i, f := range files {
		<-slots[i].done
		if slots[i].err != nil {
			continue
		}
		opts.Logger.Debug("document validated", "path", f.rel, "violations", len(slots[i].result.Violations))
		emit(f.rel, slots[i].result)
	}
	return g.Wait()
}

// check validates one file. Read and parse failures become violations.
func check(fsys fs.FS, f file, engine validator.Engine) validator.Result {
	data, err := fs.ReadFile(fsys, f.rel)
	if err != nil {
		return failure(f.rel, validator.CodeIOError, fmt.Sprintf("failed to read document: %v", err))
	}
	doc, err := document.Parse(f.rel, data)
	if err != nil {
		msg := err.Error()
		var parseErr *document.ParseError
		if errors.As(err, &parseErr) {
			msg = fmt.Sprintf("malformed JSON document: %v", parseErr.Err)
		}
		return failure(f.rel, validator.CodeMalformedDocument, msg)
	}
	res := engine.Check(doc)
	res.Violations = validator.WithDocument(f.rel, res.Violations)
	return res
}

func failure(rel, code, msg string) validator.Result {
	return validator.Result{Violations: []validator.Violation{{
		DocumentPath:    rel,
		SchemaPointer:   jschema.Root,
		InstancePointer: jschema.Root,
		Code:            code,
		Message:         msg,
	}}}
}

// ExitCode maps the outcome of Run to a process exit status: 0 when every
// document is valid, 1 when any has violations, 2 for fatal errors.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrValidationFailed):
		return 1
	}
	return 2
}
