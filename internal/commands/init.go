// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dacolabs/jsonschema-validate/internal/config"
	"github.com/dacolabs/jsonschema-validate/internal/prompts"
)

type initOptions struct {
	schema         string
	input          string
	report         string
	nonJSON        string
	nonInteractive bool
}

func registerInitCmd(parent *cobra.Command) {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a validate.yaml configuration file",
		Long: `Create a validate.yaml configuration file in the current directory.
Paths in the file are relative to the file's directory.`,
		Example: `  # Interactive mode
  validate init

  # Non-interactive
  validate init --schema schema.json --input data --report build/report.json --non-interactive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.schema, "schema", "s", "", "Schema file")
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Directory of documents")
	cmd.Flags().StringVarP(&opts.report, "report", "r", "", "Report file")
	cmd.Flags().StringVar(&opts.nonJSON, "non-json", "validate", `Files without a .json extension: "validate" or "skip"`)
	cmd.Flags().BoolVar(&opts.nonInteractive, "non-interactive", false, "Run without prompts (requires --schema, --input and --report)")

	parent.AddCommand(cmd)
}

func runInit(cmd *cobra.Command, opts *initOptions) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	cfgPath := filepath.Join(cwd, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return errors.New("validate.yaml already exists")
	}

	if !opts.nonInteractive {
		if err := prompts.RunInitForm(&opts.schema, &opts.input, &opts.report, &opts.nonJSON); err != nil {
			return err
		}
	}
	if missing(opts.schema, opts.input, opts.report) {
		return fmt.Errorf("%w: --schema, --input and --report are required", ErrUsage)
	}

	cfg := config.Config{
		Version: config.CurrentConfigVersion,
		Schema:  opts.schema,
		Input:   opts.input,
		Report:  opts.report,
		NonJSON: opts.nonJSON,
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Save(cfgPath); err != nil {
		return fmt.Errorf("config file couldn't be saved: %w", err)
	}

	prompts.PrintResult(cmd.OutOrStdout(), []prompts.ResultField{
		{Label: "Config", Value: cfgPath},
		{Label: "Schema", Value: cfg.Schema},
		{Label: "Input", Value: cfg.Input},
		{Label: "Report", Value: cfg.Report},
	}, "Initialization completed")
	return nil
}
