// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package prompts

import "github.com/charmbracelet/huh"

// RunInitForm runs the interactive form for the init command.
// It fills the provided pointers with user input.
func RunInitForm(schema, input, report, nonJSON *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Schema file").
				Placeholder("schema.json").
				Validate(requiredValidator("schema file")).
				Value(schema),
			huh.NewInput().
				Title("Input directory").
				Placeholder("data").
				Validate(requiredValidator("input directory")).
				Value(input),
			huh.NewInput().
				Title("Report file").
				Placeholder("build/validation-report.json").
				Validate(requiredValidator("report file")).
				Value(report),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Files without a .json extension").
				Options(
					huh.NewOption("Validate as JSON documents", "validate"),
					huh.NewOption("Skip", "skip"),
				).
				Value(nonJSON),
		),
	).WithTheme(Theme()).Run()
}
