package analyzer

import (
	"strings"
)

// ---------------------------------------------------------------------------
// Determinism / reproducibility
// ---------------------------------------------------------------------------

func checkUnsortedWildcard(w *walkInfo, _ Config, s *sink) {
	for _, a := range w.makeAssigns {
		if hasUnsortedWildcard(a.Value) {
			s.add(Warning, a.Span,
				"$(wildcard) returns files in directory order, which varies between filesystems",
				"wrap it: $(sort $(wildcard ...))")
		}
	}
	for _, r := range w.makeRules {
		for _, p := range r.Prereqs {
			if hasUnsortedWildcard(p) {
				s.add(Warning, r.Span,
					"$(wildcard) returns files in directory order, which varies between filesystems",
					"wrap it: $(sort $(wildcard ...))")
			}
		}
	}
}

func checkShellDate(w *walkInfo, _ Config, s *sink) {
	for _, a := range w.makeAssigns {
		v := a.Value
		if strings.Contains(v, "$(shell date") || strings.Contains(v, "${shell date") {
			s.add(Warning, a.Span,
				a.Name+" captures the current time, so every build differs",
				"take the timestamp from SOURCE_DATE_EPOCH or drop it")
		}
	}
}

// timestampMacros are compiler macros that expand to the build time
var timestampMacros = []string{"__DATE__", "__TIME__", "__TIMESTAMP__"}

func checkTimestampMacros(w *walkInfo, _ Config, s *sink) {
	flag := func(text string) (string, bool) {
		for _, m := range timestampMacros {
			if strings.Contains(text, m) {
				return m, true
			}
		}
		return "", false
	}
	for _, a := range w.makeAssigns {
		if m, ok := flag(a.Value); ok {
			s.add(Warning, a.Span,
				m+" stamps the compile time into the output",
				"derive the stamp from SOURCE_DATE_EPOCH or drop it")
		}
	}
	for _, r := range w.makeRules {
		for _, line := range r.Recipe {
			if m, ok := flag(line.Text); ok {
				s.add(Warning, line.Span,
					m+" stamps the compile time into the output",
					"derive the stamp from SOURCE_DATE_EPOCH or drop it")
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Parallel safety (make -j)
// ---------------------------------------------------------------------------

func checkDuplicateTargets(w *walkInfo, _ Config, s *sink) {
	seen := make(map[string]bool)
	for _, r := range w.makeRules {
		if r.DoubleColon || r.IsPhony() {
			continue
		}
		for _, t := range r.Targets {
			if strings.ContainsRune(t, '%') {
				continue
			}
			if seen[t] {
				s.add(Error, r.Span,
					t+" is built by more than one rule; under -j both can run at once",
					"merge the rules or make one depend on the other")
				continue
			}
			seen[t] = true
		}
	}
}

func checkSharedOutputs(w *walkInfo, _ Config, s *sink) {
	writers := make(map[string]int) // output path -> rule count
	type hit struct {
		path string
		rule int
	}
	var hits []hit
	for i, r := range w.makeRules {
		for _, line := range r.Recipe {
			for _, out := range redirectTargets(line.Text) {
				writers[out]++
				hits = append(hits, hit{path: out, rule: i})
			}
		}
	}
	reported := make(map[int]bool)
	for _, h := range hits {
		if writers[h.path] < 2 || reported[h.rule] {
			continue
		}
		reported[h.rule] = true
		s.add(Warning, w.makeRules[h.rule].Span,
			"several recipes write "+h.path+"; parallel runs interleave their output",
			"give each rule its own output file")
	}
}

func checkRecipeMkdirRace(w *walkInfo, _ Config, s *sink) {
	for _, r := range w.makeRules {
		for _, line := range r.Recipe {
			fields := strings.Fields(line.Text)
			if len(fields) == 0 || fields[0] != "mkdir" {
				continue
			}
			if shortFlagPresent(fields[1:], 'p') {
				continue
			}
			s.add(Warning, line.Span,
				"mkdir without -p races when parallel jobs create the same directory",
				"mkdir -p")
		}
	}
}

// checkRecipeShellFlags wants recipes to run under a shell that stops
// on failure. Without -e in .SHELLFLAGS, only the last command of each
// recipe line decides its exit status.
func checkRecipeShellFlags(w *walkInfo, _ Config, s *sink) {
	hasRecipe := false
	for _, r := range w.makeRules {
		if len(r.Recipe) > 0 {
			hasRecipe = true
			break
		}
	}
	if !hasRecipe {
		return
	}
	for _, a := range w.makeAssigns {
		if a.Name != ".SHELLFLAGS" {
			continue
		}
		if shortFlagPresent(strings.Fields(a.Value), 'e') {
			return
		}
	}
	s.add(Info, w.makeRules[0].Span,
		"recipes run without errexit; mid-pipeline failures go unnoticed",
		".SHELLFLAGS := -ec")
}

func checkIgnoredRecipeErrors(w *walkInfo, _ Config, s *sink) {
	for _, r := range w.makeRules {
		for _, line := range r.Recipe {
			if line.IgnoreError {
				s.add(Info, line.Span,
					"the - prefix discards this line's exit status",
					"")
			}
		}
	}
}

func checkBareRecursiveMake(w *walkInfo, _ Config, s *sink) {
	for _, r := range w.makeRules {
		for _, line := range r.Recipe {
			fields := strings.Fields(line.Text)
			if len(fields) == 0 || fields[0] != "make" {
				continue
			}
			s.add(Warning, line.Span,
				"a literal make ignores the parent's job server and flags",
				"$(MAKE)")
		}
	}
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// hasUnsortedWildcard reports a $(wildcard ...) call with no enclosing
// $(sort ...) in the given Makefile text
func hasUnsortedWildcard(text string) bool {
	var stack []string
	i := 0
	for i < len(text) {
		if text[i] == '$' && i+1 < len(text) && (text[i+1] == '(' || text[i+1] == '{') {
			j := i + 2
			for j < len(text) && (isMakeFuncChar(text[j])) {
				j++
			}
			name := text[i+2 : j]
			if name == "wildcard" && !contains(stack, "sort") {
				return true
			}
			stack = append(stack, name)
			i = j
			continue
		}
		if (text[i] == ')' || text[i] == '}') && len(stack) > 0 {
			stack = stack[:len(stack)-1]
		}
		i++
	}
	return false
}

func isMakeFuncChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '-' || c == '_'
}

func contains(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}

// redirectTargets extracts concrete file paths a recipe line writes
// with > or >>. Targets containing make or shell expansions are
// skipped; they cannot be compared textually.
func redirectTargets(text string) []string {
	fields := strings.Fields(text)
	var out []string
	for i, f := range fields {
		var target string
		switch {
		case f == ">" || f == ">>":
			if i+1 < len(fields) {
				target = fields[i+1]
			}
		case strings.HasPrefix(f, ">>"):
			target = f[2:]
		case strings.HasPrefix(f, ">") && !strings.HasPrefix(f, ">&"):
			target = f[1:]
		}
		if target == "" || target == "/dev/null" {
			continue
		}
		if strings.ContainsAny(target, "$`") {
			continue
		}
		out = append(out, target)
	}
	return out
}

func shortFlagPresent(args []string, letter byte) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if len(a) > 1 && a[0] == '-' && a[1] != '-' && strings.IndexByte(a[1:], letter) >= 0 {
			return true
		}
	}
	return false
}
