// Package report turns purification results into human and machine
// readable summaries. Reports carry no timestamps, so the same input
// always produces byte-identical output.
package report

import (
	"sort"

	"github.com/shellpure/shellpure/pkgs/purifier"
)

// Record is one reportable finding
type Record struct {
	Rule       string `json:"rule" cbor:"1,keyasint"`
	Category   string `json:"category" cbor:"2,keyasint"`
	Severity   string `json:"severity" cbor:"3,keyasint"`
	File       string `json:"file" cbor:"4,keyasint"`
	Line       int    `json:"line" cbor:"5,keyasint"`
	Column     int    `json:"column" cbor:"6,keyasint"`
	Message    string `json:"message" cbor:"7,keyasint"`
	Suggestion string `json:"suggestion,omitempty" cbor:"8,keyasint,omitempty"`
	Fixed      bool   `json:"fixed" cbor:"9,keyasint"`
}

// Report is the full outcome for one input file
type Report struct {
	File    string   `json:"file" cbor:"1,keyasint"`
	Dialect string   `json:"dialect" cbor:"2,keyasint"`
	Records []Record `json:"records" cbor:"3,keyasint"`

	Applied int `json:"applied" cbor:"4,keyasint"`
	Manual  int `json:"manual" cbor:"5,keyasint"`
}

// IssueRecord is the view other tools implement to merge their own
// findings into a report.
type IssueRecord interface {
	RuleID() string
	Location() (file string, line, column int)
	Describe() string
}

// FromResult builds the report for one purification run. Records keep
// the analyzer's ordering; plans and issues correspond by index.
func FromResult(res *purifier.Result) *Report {
	r := &Report{
		File:    res.Name,
		Dialect: res.Dialect.String(),
		Applied: res.Applied,
		Manual:  res.Manual,
	}
	for i, issue := range res.Issues {
		rec := Record{
			Rule:       issue.Rule,
			Category:   issue.Category.String(),
			Severity:   issue.Severity.String(),
			File:       res.Name,
			Line:       issue.Span.StartLine,
			Column:     issue.Span.StartCol,
			Message:    issue.Message,
			Suggestion: issue.Suggestion,
		}
		if i < len(res.Plans) {
			rec.Fixed = res.Plans[i].Applied
		}
		r.Records = append(r.Records, rec)
	}
	return r
}

// Merge folds externally produced findings into the report and
// restores the position ordering.
func (r *Report) Merge(batch []IssueRecord) {
	for _, ir := range batch {
		file, line, col := ir.Location()
		r.Records = append(r.Records, Record{
			Rule:     ir.RuleID(),
			Category: "external",
			Severity: "info",
			File:     file,
			Line:     line,
			Column:   col,
			Message:  ir.Describe(),
		})
	}
	sort.SliceStable(r.Records, func(i, j int) bool {
		a, b := r.Records[i], r.Records[j]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Rule < b.Rule
	})
}

// Clean reports whether nothing was found at all
func (r *Report) Clean() bool { return len(r.Records) == 0 }
