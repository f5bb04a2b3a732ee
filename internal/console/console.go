// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package console prints validation results for humans: one line per
// violation as documents finish, then a run summary.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dacolabs/jsonschema-validate/internal/report"
	"github.com/dacolabs/jsonschema-validate/internal/validator"
)

// Printer writes styled results to an output stream.
type Printer struct {
	out io.Writer

	success lipgloss.Style
	failure lipgloss.Style
	label   lipgloss.Style
	pointer lipgloss.Style
}

// New creates a Printer for out. Colors follow the terminal's capabilities
// unless color is false.
func New(out io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(out)
	p := &Printer{
		out:     out,
		success: r.NewStyle(),
		failure: r.NewStyle(),
		label:   r.NewStyle(),
		pointer: r.NewStyle(),
	}
	if color {
		p.success = p.success.Foreground(lipgloss.Color("#27ca3f"))
		p.failure = p.failure.Foreground(lipgloss.Color("#ff5f56"))
		p.label = p.label.Foreground(lipgloss.Color("#bababa"))
		p.pointer = p.pointer.Foreground(lipgloss.Color("#f9ca24"))
	}
	return p
}

// Document prints the outcome of one document: a check mark when it passed,
// otherwise one line per violation with children indented below their parent.
func (p *Printer) Document(path string, violations []validator.Violation) {
	if len(violations) == 0 {
		fmt.Fprintf(p.out, "%s %s\n", p.success.Render("✓"), path)
		return
	}
	p.violations(path, violations, 0)
}

func (p *Printer) violations(path string, vs []validator.Violation, depth int) {
	for _, v := range vs {
		mark := p.failure.Render("✗")
		if depth > 0 {
			mark = strings.Repeat("  ", depth) + p.label.Render("↳")
		}
		fmt.Fprintf(p.out, "%s %s %s: %s %s\n",
			mark, path, p.pointer.Render(v.InstancePointer), v.Message,
			p.label.Render(fmt.Sprintf("(%s at %s)", v.Code, v.SchemaPointer)))
		p.violations(path, v.Children, depth+1)
	}
}

// Field is a label-value pair for Summary.
type Field struct {
	Label string
	Value string
}

// Summary prints the run totals followed by a pass or fail message.
func (p *Printer) Summary(rep *report.Report, extra ...Field) {
	fields := []Field{
		{"Documents", fmt.Sprint(rep.TotalDocuments)},
		{"Passed", fmt.Sprint(rep.TotalDocuments - rep.FailedDocuments)},
		{"Failed", fmt.Sprint(rep.FailedDocuments)},
		{"Violations", fmt.Sprint(rep.TotalViolations())},
	}
	fields = append(fields, extra...)

	style, mark := p.success, "✓"
	msg := "All documents are valid."
	if rep.Failed() {
		style, mark = p.failure, "✗"
		msg = fmt.Sprintf("%d of %d documents failed validation.", rep.FailedDocuments, rep.TotalDocuments)
	}

	fmt.Fprintln(p.out)
	for _, f := range fields {
		fmt.Fprintf(p.out, "%s %s %s\n", style.Render(mark), p.label.Render(f.Label+":"), f.Value)
	}
	fmt.Fprintln(p.out, style.Render("\n"+msg))
}
