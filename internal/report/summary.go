// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package report

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dacolabs/jsonschema-validate/internal/validator"
)

//go:embed summary.md.tmpl
var tmplFS embed.FS

var funcMap = template.FuncMap{
	"passed": func(r *Report) int { return r.TotalDocuments - r.FailedDocuments },
	"rows":   rows,
	"indent": func(depth int) string { return strings.Repeat("↳ ", depth) },
	"cell":   cell,
}

var tmpl = template.Must(template.New("summary.md.tmpl").Funcs(funcMap).ParseFS(tmplFS, "summary.md.tmpl"))

// SummaryFormat selects the summary rendering.
type SummaryFormat int

// Summary formats.
const (
	Markdown SummaryFormat = iota
	HTML
)

// SummaryFormatFromPath picks HTML for .html/.htm paths and markdown otherwise.
func SummaryFormatFromPath(path string) SummaryFormat {
	if strings.HasSuffix(path, ".html") || strings.HasSuffix(path, ".htm") {
		return HTML
	}
	return Markdown
}

type row struct {
	Depth int
	validator.Violation
}

// rows flattens violations depth-first so children follow their parent.
func rows(vs []validator.Violation) []row {
	var out []row
	var walk func([]validator.Violation, int)
	walk = func(vs []validator.Violation, depth int) {
		for _, v := range vs {
			out = append(out, row{Depth: depth, Violation: v})
			walk(v.Children, depth+1)
		}
	}
	walk(vs, 0)
	return out
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", "")

func cell(s string) string {
	return cellEscaper.Replace(s)
}

// WriteSummary renders the summary of r to w.
func WriteSummary(w io.Writer, r *Report, format SummaryFormat) error {
	var md bytes.Buffer
	if err := tmpl.ExecuteTemplate(&md, "summary.md.tmpl", r); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	if format == Markdown {
		_, err := w.Write(md.Bytes())
		return err
	}
	gm := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := gm.Convert(md.Bytes(), w); err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}
	return nil
}

// WriteSummaryFile writes the summary to path in the format its extension
// selects.
func WriteSummaryFile(path string, r *Report) error {
	var buf bytes.Buffer
	if err := WriteSummary(&buf, r, SummaryFormatFromPath(path)); err != nil {
		return err
	}
	return writeAtomic(path, buf.Bytes())
}
