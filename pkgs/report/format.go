package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shellpure/shellpure/pkgs/errors"
)

// Format names an output renderer
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formats lists the supported format names
func Formats() []string {
	return []string{string(FormatText), string(FormatJSON), string(FormatMarkdown)}
}

// Render produces the report in the requested format
func (r *Report) Render(f Format) (string, error) {
	switch f {
	case FormatText:
		return r.Text(), nil
	case FormatJSON:
		return r.JSON()
	case FormatMarkdown:
		return r.Markdown(), nil
	}
	return "", errors.Newf(errors.ErrReportEncoding, "unknown report format %q", f)
}

// Text renders a compiler-style listing, one finding per line
func (r *Report) Text() string {
	var sb strings.Builder
	for _, rec := range r.Records {
		fmt.Fprintf(&sb, "%s:%d:%d: %s [%s] %s",
			rec.File, rec.Line, rec.Column, rec.Severity, rec.Rule, rec.Message)
		if rec.Fixed {
			sb.WriteString(" (fixed)")
		} else if rec.Suggestion != "" {
			sb.WriteString(" (suggestion: " + rec.Suggestion + ")")
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "%s: %d finding(s), %d fixed, %d manual\n",
		r.File, len(r.Records), r.Applied, r.Manual)
	return sb.String()
}

// JSON renders the report with indentation. Key order follows the
// struct definition, so output is stable.
func (r *Report) JSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrReportEncoding, "encoding report as JSON", err)
	}
	return string(data) + "\n", nil
}

// Markdown renders a summary table
func (r *Report) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", r.File)
	fmt.Fprintf(&sb, "%d finding(s), %d fixed automatically, %d left for review.\n\n",
		len(r.Records), r.Applied, r.Manual)
	if len(r.Records) == 0 {
		return sb.String()
	}
	sb.WriteString("| Location | Rule | Severity | Status | Message |\n")
	sb.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, rec := range r.Records {
		status := "manual"
		if rec.Fixed {
			status = "fixed"
		}
		fmt.Fprintf(&sb, "| %s:%d | %s | %s | %s | %s |\n",
			rec.File, rec.Line, rec.Rule, rec.Severity, status,
			strings.ReplaceAll(rec.Message, "|", "\\|"))
	}
	return sb.String()
}
