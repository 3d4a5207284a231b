// Package tmpl provides template rendering utilities for Markdown documents.
package tmpl

import (
	"bytes"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"text/template"
)

// mdEscape escapes characters that Markdown would otherwise treat as
// emphasis or table syntax.
func mdEscape(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		"*", `\*`,
		"_", `\_`,
		"|", `\|`,
		"`", "\\`",
	)
	return r.Replace(s)
}

// number formats an optional measurement. Missing values render as "n/a" and
// whole numbers drop their fraction.
func number(v any) string {
	switch n := v.(type) {
	case nil:
		return "n/a"
	case *float64:
		if n == nil {
			return "n/a"
		}
		return strconv.FormatFloat(*n, 'f', -1, 64)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case int:
		return strconv.Itoa(n)
	default:
		return fmt.Sprint(v)
	}
}

var funcs = template.FuncMap{
	"md":   mdEscape,
	"join": strings.Join,
	"num":  number,
	"inc":  func(i int) int { return i + 1 },
}

// Render executes a Go template string with the given data.
// Returns an error if the template is invalid or references undefined keys.
//
// Available template functions:
//   - md: Escape Markdown emphasis and table characters
//   - join: Join string slice with separator (e.g., join .Pairings ", ")
//   - num: Format an optional number, "n/a" when missing
//   - inc: Add one, for 1-based numbering inside range
func Render(tmpl string, data any) (string, error) {
	return RenderWith(tmpl, data, nil)
}

// RenderWith is Render with additional template functions. Entries in extra
// override the built-in functions of the same name.
func RenderWith(tmpl string, data any, extra template.FuncMap) (string, error) {
	fm := maps.Clone(funcs)
	maps.Copy(fm, extra)

	t, err := template.New("").Funcs(fm).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
