package purifier

import (
	"github.com/shellpure/shellpure/pkgs/analyzer"
	"github.com/shellpure/shellpure/pkgs/ast"
)

// Options steers planning and rewriting. The zero value applies only
// the always-safe edits.
type Options struct {
	// EmitGuards inserts set -euo pipefail when error handling is
	// missing. Off by default: it changes failure-path behavior.
	EmitGuards bool

	// RemoveNonDeterministic treats determinism findings that have a
	// textual replacement as safe instead of manual.
	RemoveNonDeterministic bool
}

// templates maps rule IDs to edit shapes. Rules absent here produce
// AnnotateOnly transformations.
func template(issue analyzer.Issue, opts Options) Transformation {
	t := Transformation{
		Rule:        issue.Rule,
		Span:        issue.Span,
		Kind:        AnnotateOnly,
		Description: issue.Message,
	}

	switch issue.Rule {
	case "IDEM001", "PAR003":
		t.Kind = InsertFlag
		t.Flag = "-p"
		t.Safe = true
		t.Description = "add -p so mkdir tolerates an existing directory"
	case "IDEM002":
		t.Kind = InsertFlag
		t.Flag = "-f"
		t.Safe = true
		t.Description = "add -f so rm tolerates a missing file"
	case "IDEM003":
		t.Kind = InsertFlag
		t.Flag = "-f"
		t.Safe = true
		t.Description = "add -f so ln replaces an existing link"
	case "DET101":
		t.Kind = WrapFunction
		t.Target = "wildcard"
		t.Wrapper = "sort"
		t.Safe = true
		t.Description = "wrap $(wildcard) in $(sort) for a stable file order"
	case "PAR004":
		t.Kind = ReplaceWord
		t.Target = "make"
		t.NewWord = "$(MAKE)"
		t.Safe = true
		t.Description = "use $(MAKE) so sub-makes share the job server"
	case "PORT001":
		t.Kind = ReplaceWord
		t.Target = "echo"
		t.NewWord = "printf"
		// changes output formatting; printf needs an explicit format
		t.Safe = false
	case "ERR001":
		if opts.EmitGuards {
			t.Kind = InsertStatement
			t.Text = "set -euo pipefail"
			t.Safe = true
			t.Description = "stop on the first failing command"
		}
	case "DET002":
		if opts.RemoveNonDeterministic {
			t.Kind = ReplaceWord
			t.Target = "date"
			t.NewWord = `date -d "@${SOURCE_DATE_EPOCH:-0}"`
			t.Safe = true
			t.Description = "pin the timestamp to SOURCE_DATE_EPOCH"
		}
	}
	return t
}

// Plan converts findings into ordered transformations. When two safe
// edits land on the same span the second is downgraded to an
// annotation, so edits never stack on one node.
func Plan(issues []analyzer.Issue, opts Options) []Transformation {
	plans := make([]Transformation, 0, len(issues))
	claimed := make(map[ast.Span]bool)

	for _, issue := range issues {
		t := template(issue, opts)
		if t.Safe && t.Kind != AnnotateOnly {
			if claimed[t.Span] {
				t.Kind = AnnotateOnly
				t.Safe = false
			} else {
				claimed[t.Span] = true
			}
		}
		plans = append(plans, t)
	}
	return plans
}
