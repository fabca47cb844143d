// Package analyzer inspects parsed scripts for constructs that break
// determinism, idempotency, security, portability, parallel safety,
// performance, error handling, or reproducibility. It never mutates
// the tree; it only reports issues with source spans.
package analyzer

import (
	"sort"

	"github.com/shellpure/shellpure/pkgs/ast"
)

// rule is one detection. Checks append findings to the sink; the
// engine handles category gating and final ordering.
type rule struct {
	ID       string
	Category Category
	Dialects []ast.Dialect // nil means all dialects
	Check    func(w *walkInfo, cfg Config, s *sink)
}

type sink struct {
	rule   string
	cat    Category
	issues []Issue
}

func (s *sink) add(sev Severity, span ast.Span, msg, suggestion string) {
	s.issues = append(s.issues, Issue{
		Rule:       s.rule,
		Category:   s.cat,
		Severity:   sev,
		Span:       span,
		Message:    msg,
		Suggestion: suggestion,
	})
}

// catalog lists every rule in ID order. Keep it sorted when adding
// entries; tests assert the ordering.
var catalog = []rule{
	{ID: "DET001", Category: Determinism, Dialects: shellLike, Check: checkRandom},
	{ID: "DET002", Category: Determinism, Dialects: shellLike, Check: checkDateSub},
	{ID: "DET003", Category: Determinism, Dialects: shellLike, Check: checkProcessID},
	{ID: "DET004", Category: Determinism, Dialects: shellLike, Check: checkHostname},
	{ID: "DET005", Category: Determinism, Dialects: shellLike, Check: checkMktemp},
	{ID: "DET101", Category: Determinism, Dialects: makeOnly, Check: checkUnsortedWildcard},
	{ID: "ERR001", Category: ErrorHandling, Dialects: shellOnly, Check: checkMissingErrexit},
	{ID: "ERR002", Category: ErrorHandling, Dialects: shellLike, Check: checkSilencedErrors},
	{ID: "ERR101", Category: ErrorHandling, Dialects: makeOnly, Check: checkRecipeShellFlags},
	{ID: "ERR102", Category: ErrorHandling, Dialects: makeOnly, Check: checkIgnoredRecipeErrors},
	{ID: "IDEM001", Category: Idempotency, Dialects: nil, Check: checkMkdirNoP},
	{ID: "IDEM002", Category: Idempotency, Dialects: nil, Check: checkRmNoF},
	{ID: "IDEM003", Category: Idempotency, Dialects: nil, Check: checkLnNoF},
	{ID: "IDEM004", Category: Idempotency, Dialects: shellLike, Check: checkAppendRedirect},
	{ID: "IDEM005", Category: Idempotency, Dialects: shellLike, Check: checkCopyOverwrite},
	{ID: "PAR001", Category: ParallelSafety, Dialects: makeOnly, Check: checkDuplicateTargets},
	{ID: "PAR002", Category: ParallelSafety, Dialects: makeOnly, Check: checkSharedOutputs},
	{ID: "PAR003", Category: ParallelSafety, Dialects: makeOnly, Check: checkRecipeMkdirRace},
	{ID: "PAR004", Category: ParallelSafety, Dialects: makeOnly, Check: checkBareRecursiveMake},
	{ID: "PERF001", Category: Performance, Dialects: dockerOnly, Check: checkRunConsolidation},
	{ID: "PORT001", Category: Portability, Dialects: shellLike, Check: checkEchoFlags},
	{ID: "PORT002", Category: Portability, Dialects: shellOnly, Check: checkExtendedTest},
	{ID: "PORT003", Category: Portability, Dialects: shellOnly, Check: checkLocalMisuse},
	{ID: "REP001", Category: Reproducibility, Dialects: makeOnly, Check: checkShellDate},
	{ID: "REP002", Category: Reproducibility, Dialects: shellLike, Check: checkUnpinnedInstalls},
	{ID: "REP003", Category: Reproducibility, Dialects: makeOnly, Check: checkTimestampMacros},
	{ID: "REP101", Category: Reproducibility, Dialects: dockerOnly, Check: checkUnpinnedBaseImage},
	{ID: "SEC001", Category: Security, Dialects: shellLike, Check: checkEval},
	{ID: "SEC002", Category: Security, Dialects: shellOnly, Check: checkUnquotedExpansion},
	{ID: "SEC003", Category: Security, Dialects: shellLike, Check: checkWorldWritable},
	{ID: "SEC004", Category: Security, Dialects: shellLike, Check: checkPipeToShell},
	{ID: "SEC101", Category: Security, Dialects: dockerOnly, Check: checkRemoteAdd},
	{ID: "TYPE001", Category: ErrorHandling, Dialects: shellLike, Check: checkTestOperandTypes},
}

var (
	shellOnly  = []ast.Dialect{ast.Shell}
	makeOnly   = []ast.Dialect{ast.Makefile}
	dockerOnly = []ast.Dialect{ast.Dockerfile}

	// shell rules also apply to recipe and RUN command text reached
	// through the embedded shell parser
	shellLike = []ast.Dialect{ast.Shell, ast.Makefile, ast.Dockerfile}
)

// RuleIDs returns the catalog's rule identifiers in order
func RuleIDs() []string {
	ids := make([]string, len(catalog))
	for i, r := range catalog {
		ids[i] = r.ID
	}
	return ids
}

// Analyze runs every enabled rule over the script and returns the
// findings ordered by source position, then rule ID. The ordering is
// total, so repeated runs over the same tree produce identical output.
func Analyze(script *ast.Script, cfg Config) []Issue {
	w := collect(script)

	var issues []Issue
	for _, r := range catalog {
		if !cfg.enabled(r.Category) {
			continue
		}
		if !dialectMatches(r.Dialects, script.Dialect) {
			continue
		}
		s := sink{rule: r.ID, cat: r.Category}
		r.Check(w, cfg, &s)
		issues = append(issues, s.issues...)
	}

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Span != issues[j].Span {
			return issues[i].Span.Before(issues[j].Span)
		}
		return issues[i].Rule < issues[j].Rule
	})
	return issues
}

func dialectMatches(ds []ast.Dialect, d ast.Dialect) bool {
	if ds == nil {
		return true
	}
	for _, x := range ds {
		if x == d {
			return true
		}
	}
	return false
}
