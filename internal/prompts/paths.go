// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package prompts

import "github.com/charmbracelet/huh"

// RunPathsForm asks for the run paths that are still empty. Fields already
// set are not shown.
func RunPathsForm(schema, input, report *string) error {
	var fields []huh.Field
	if *schema == "" {
		fields = append(fields, huh.NewInput().
			Title("Schema file").
			Placeholder("schema.json").
			Validate(existingValidator("schema file", false)).
			Value(schema))
	}
	if *input == "" {
		fields = append(fields, huh.NewInput().
			Title("Input directory").
			Placeholder("data").
			Validate(existingValidator("input directory", true)).
			Value(input))
	}
	if *report == "" {
		fields = append(fields, huh.NewInput().
			Title("Report file").
			Placeholder("report.json").
			Validate(requiredValidator("report file")).
			Value(report))
	}
	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(Theme()).Run()
}
