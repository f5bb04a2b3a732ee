// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package prompts provides interactive terminal prompts for CLI commands.
package prompts

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Palette shared by forms and result output.
const (
	colorAccent  = lipgloss.Color("#f9ca24")
	colorMuted   = lipgloss.Color("#bababa")
	colorSuccess = lipgloss.Color("#27ca3f")
	colorFailure = lipgloss.Color("#ff5f56")
)

// Theme returns the huh theme of the path forms. Validation errors, such as
// a schema file that does not exist, are shown in the failure color.
func Theme() *huh.Theme {
	t := huh.ThemeBase16()
	t.FieldSeparator = lipgloss.NewStyle().SetString("\n").MarginBottom(1)
	t.Form.Base = t.Form.Base.MarginTop(1)
	t.Group.Base = t.Group.Base.MarginTop(1)
	t.Focused.Title = t.Focused.Title.Foreground(colorAccent)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(colorFailure)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(colorFailure)
	t.Blurred.Title = t.Blurred.Title.Foreground(colorMuted)
	return t
}

// Interactive reports whether f is a terminal a form can run on.
func Interactive(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}

// ResultField is a label-value pair for PrintResult.
type ResultField struct {
	Label string
	Value string
}

// PrintResult prints a styled summary with green checkmarks and gray labels.
func PrintResult(w io.Writer, fields []ResultField, successMsg string) {
	success := lipgloss.NewStyle().Foreground(colorSuccess)
	label := lipgloss.NewStyle().Foreground(colorMuted)
	check := success.Render("✓")

	fmt.Fprintln(w)
	for _, f := range fields {
		fmt.Fprintf(w, "%s %s %s\n", check, label.Render(f.Label+":"), f.Value)
	}

	if successMsg != "" {
		fmt.Fprintln(w, success.Render("\n"+successMsg))
	}
}

func requiredValidator(field string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// existingValidator requires s to name an existing file, or a directory
// when dir is true.
func existingValidator(field string, dir bool) func(string) error {
	required := requiredValidator(field)
	return func(s string) error {
		if err := required(s); err != nil {
			return err
		}
		info, err := os.Stat(s)
		if err != nil {
			return fmt.Errorf("%s not found: %s", field, s)
		}
		if dir && !info.IsDir() {
			return fmt.Errorf("%s must be a directory", field)
		}
		if !dir && info.IsDir() {
			return fmt.Errorf("%s must be a file", field)
		}
		return nil
	}
}
