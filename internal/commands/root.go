// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package commands contains all CLI command definitions.
package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dacolabs/jsonschema-validate/internal/batch"
	"github.com/dacolabs/jsonschema-validate/internal/console"
	"github.com/dacolabs/jsonschema-validate/internal/prompts"
	"github.com/dacolabs/jsonschema-validate/internal/session"
	"github.com/dacolabs/jsonschema-validate/internal/validator"
)

// ErrUsage marks invalid invocations. It maps to exit code 2.
var ErrUsage = errors.New("usage error")

type rootOptions struct {
	configPath string
	schema     string
	input      string
	report     string
	summary    string
	metrics    string
	workers    int
	nonJSON    string
	extensions []string
	engine     string
	logLevel   string
	noColor    bool
	noInput    bool
}

// NewRootCmd creates and returns the root command for the CLI. getenv
// supplies environment lookups and may be nil.
func NewRootCmd(getenv func(string) string) *cobra.Command {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a directory of JSON documents against a JSON Schema",
		Long: fmt.Sprintf(`Validate every document under an input directory against one JSON Schema.

A report is written on every completed run: {} when all documents pass,
otherwise the violations of each failing document. One line per violation is
printed as documents finish.

Paths not given as flags are read from the VALIDATE_SCHEMA, VALIDATE_INPUT and
VALIDATE_REPORT environment variables, then from validate.yaml, then asked for
interactively when stdin is a terminal.

Exit codes: 0 all valid, 1 violations found, 2 schema or fatal error.
Available engines: %s`, strings.Join(validator.Available(), ", ")),
		Example: `  # Validate with explicit paths
  validate --schema schema.json --input data --report build/report.json

  # Use validate.yaml and write an HTML summary
  validate --summary build/summary.html

  # Only .json and .geojson files, eight workers
  validate --non-json skip --ext .json,.geojson --workers 8`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := session.Load(cmd.Context(), opts.configPath, getenv)
			if err != nil {
				return err
			}
			cmd.SetContext(ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, getenv)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "Path to config file (default ./validate.yaml when present)")
	f.StringVarP(&opts.schema, "schema", "s", "", "Schema file (.json, .yaml or .yml)")
	f.StringVarP(&opts.input, "input", "i", "", "Directory of documents to validate")
	f.StringVarP(&opts.report, "report", "r", "", "Report file to write")
	f.StringVar(&opts.summary, "summary", "", "Optional summary file (.md or .html)")
	f.StringVar(&opts.metrics, "metrics", "", "Optional Prometheus textfile to write")
	f.IntVarP(&opts.workers, "workers", "w", 0, "Concurrent validations (default: number of CPUs)")
	f.StringVar(&opts.nonJSON, "non-json", "", `Files without a listed extension: "validate" or "skip" (default "validate")`)
	f.StringSliceVar(&opts.extensions, "ext", nil, "Document extensions used with --non-json skip (default .json)")
	f.StringVar(&opts.engine, "engine", "", fmt.Sprintf("Validation engine (%s) (default %q)", strings.Join(validator.Available(), ", "), validator.DefaultEngine))
	f.StringVar(&opts.logLevel, "log-level", "warn", "Diagnostic log level (debug, info, warn, error)")
	f.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	f.BoolVar(&opts.noInput, "no-input", false, "Never prompt for missing paths")

	registerInitCmd(cmd)
	registerVersionCmd(cmd)

	return cmd
}

func runValidate(cmd *cobra.Command, opts *rootOptions, getenv func(string) string) error {
	sess, err := session.RequireFromCommand(cmd)
	if err != nil {
		return err
	}
	cfg := *sess.Config

	flags := cmd.Flags()
	for name, dst := range map[string]*string{
		"schema":   &cfg.Schema,
		"input":    &cfg.Input,
		"report":   &cfg.Report,
		"summary":  &cfg.Summary,
		"metrics":  &cfg.Metrics,
		"non-json": &cfg.NonJSON,
		"engine":   &cfg.Engine,
	} {
		if flags.Changed(name) {
			*dst = flags.Lookup(name).Value.String()
		}
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("ext") {
		cfg.Extensions = opts.extensions
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if missing(cfg.Schema, cfg.Input, cfg.Report) && !opts.noInput && prompts.Interactive(os.Stdin) {
		if err := prompts.RunPathsForm(&cfg.Schema, &cfg.Input, &cfg.Report); err != nil {
			return err
		}
	}
	if missing(cfg.Schema, cfg.Input, cfg.Report) {
		return fmt.Errorf("%w: --schema, --input and --report are required", ErrUsage)
	}

	logger, err := newLogger(cmd.ErrOrStderr(), opts.logLevel)
	if err != nil {
		return err
	}
	if sess.Path != "" {
		logger.Debug("config loaded", "path", sess.Path)
	}

	printer := console.New(cmd.OutOrStdout(), !opts.noColor && getenv("NO_COLOR") == "")
	rep, err := batch.Run(cmd.Context(), batch.Options{
		SchemaPath:  cfg.Schema,
		InputDir:    cfg.Input,
		ReportPath:  cfg.Report,
		SummaryPath: cfg.Summary,
		MetricsPath: cfg.Metrics,
		Workers:     cfg.Workers,
		NonJSON:     batch.NonJSONPolicy(cfg.NonJSON),
		Extensions:  cfg.Extensions,
		Engine:      cfg.Engine,
		Logger:      logger,
	}, printer)
	if rep != nil {
		printer.Summary(rep, console.Field{Label: "Report", Value: cfg.Report})
	}
	return err
}

func missing(values ...string) bool {
	for _, v := range values {
		if v == "" {
			return true
		}
	}
	return false
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("%w: invalid --log-level %q", ErrUsage, level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// ExitCode maps an error returned by the root command to a process exit
// status: 0 on success, 1 when documents failed validation, 2 otherwise.
func ExitCode(err error) int {
	return batch.ExitCode(err)
}
