package analyzer

import (
	"strings"

	"golang.org/x/mod/semver"

	"github.com/shellpure/shellpure/pkgs/ast"
)

// ---------------------------------------------------------------------------
// Determinism
// ---------------------------------------------------------------------------

func checkRandom(w *walkInfo, _ Config, s *sink) {
	for _, u := range w.varRefs {
		if u.ref.Name == "RANDOM" || u.ref.Name == "SRANDOM" {
			s.add(Warning, u.ref.Span,
				"$"+u.ref.Name+" produces a different value on every run",
				"derive the value from the input instead, e.g. a checksum of a source file")
		}
	}
	// double-quoted literals keep their expansions inline
	for _, c := range w.commands {
		for _, a := range c.cmd.Args {
			if lit, ok := a.(*ast.Literal); ok && lit.HasExpansion && containsExpansion(lit.Raw, "RANDOM") {
				s.add(Warning, lit.Span,
					"$RANDOM produces a different value on every run",
					"derive the value from the input instead, e.g. a checksum of a source file")
			}
		}
	}
}

func checkDateSub(w *walkInfo, _ Config, s *sink) {
	for _, c := range w.commands {
		if !c.inSubst || c.cmd.NameText() != "date" {
			continue
		}
		// a call that already reads SOURCE_DATE_EPOCH is pinned
		if argMentions(c.cmd, "SOURCE_DATE_EPOCH") {
			continue
		}
		s.add(Warning, c.cmd.Span,
			"embedding the current time makes the output differ between runs",
			"use SOURCE_DATE_EPOCH: date -d \"@${SOURCE_DATE_EPOCH:-0}\"")
	}
}

func checkProcessID(w *walkInfo, _ Config, s *sink) {
	const suggestion = "use mktemp for temporary paths or a name derived from the input"
	for _, u := range w.varRefs {
		if u.ref.Name == "$" || u.ref.Name == "BASHPID" || u.ref.Name == "PPID" {
			s.add(Warning, u.ref.Span,
				u.ref.Raw+" expands to a process ID that changes on every run", suggestion)
		}
	}
	// $$ embedded in a larger word stays a literal
	for _, a := range w.assignments {
		if lit, ok := a.Value.(*ast.Literal); ok && containsExpansion(lit.Raw, "$") {
			s.add(Warning, lit.Span,
				"$$ expands to a process ID that changes on every run", suggestion)
		}
	}
	for _, c := range w.commands {
		for _, arg := range c.cmd.Args {
			if lit, ok := arg.(*ast.Literal); ok && lit.Quote != ast.SingleQuoted && containsExpansion(lit.Raw, "$") {
				s.add(Warning, lit.Span,
					"$$ expands to a process ID that changes on every run", suggestion)
			}
		}
	}
}

func checkHostname(w *walkInfo, _ Config, s *sink) {
	for _, c := range w.commands {
		if c.cmd.NameText() == "hostname" && c.inSubst {
			s.add(Info, c.cmd.Span,
				"the host name ties the output to the machine it was built on", "")
		}
	}
	for _, u := range w.varRefs {
		if u.ref.Name == "HOSTNAME" {
			s.add(Info, u.ref.Span,
				"$HOSTNAME ties the output to the machine it was built on", "")
		}
	}
}

func checkMktemp(w *walkInfo, _ Config, s *sink) {
	for _, c := range w.commands {
		if c.cmd.NameText() != "mktemp" || !c.inSubst {
			continue
		}
		s.add(Info, c.cmd.Span,
			"mktemp returns a fresh path on every run; fine for scratch space, a problem if the path reaches the output", "")
	}
}

// ---------------------------------------------------------------------------
// Idempotency
// ---------------------------------------------------------------------------

func checkMkdirNoP(w *walkInfo, _ Config, s *sink) {
	for _, c := range w.commands {
		if c.cmd.NameText() != "mkdir" || hasFlag(c.cmd, "p") {
			continue
		}
		if c.fallback {
			continue // mkdir dir || true handles the rerun already
		}
		s.add(Warning, c.cmd.Span,
			"mkdir fails when the directory already exists",
			"mkdir -p")
	}
}

func checkRmNoF(w *walkInfo, _ Config, s *sink) {
	for _, c := range w.commands {
		if c.cmd.NameText() != "rm" || hasFlag(c.cmd, "f") {
			continue
		}
		if c.fallback {
			continue
		}
		s.add(Warning, c.cmd.Span,
			"rm fails when the file is already gone",
			"rm -f")
	}
}

func checkLnNoF(w *walkInfo, _ Config, s *sink) {
	for _, c := range w.commands {
		if c.cmd.NameText() != "ln" || !hasFlag(c.cmd, "s") || hasFlag(c.cmd, "f") {
			continue
		}
		s.add(Warning, c.cmd.Span,
			"ln -s fails when the link already exists",
			"ln -sf")
	}
}

func checkCopyOverwrite(w *walkInfo, _ Config, s *sink) {
	for _, c := range w.commands {
		name := c.cmd.NameText()
		if name != "cp" && name != "mv" {
			continue
		}
		if hasFlag(c.cmd, "f") || hasFlag(c.cmd, "n") || c.fallback {
			continue
		}
		s.add(Info, c.cmd.Span,
			name+" behaves differently when the destination already exists",
			name+" -f")
	}
}

// checkAppendRedirect flags >> under strict mode: appending grows the
// file on every rerun instead of converging.
func checkAppendRedirect(w *walkInfo, cfg Config, s *sink) {
	if !cfg.StrictIdempotency {
		return
	}
	for _, c := range w.commands {
		for _, r := range c.cmd.Redirects {
			if r.Op != ast.RedirAppend {
				continue
			}
			s.add(Info, r.Span,
				"appending with >> accumulates content across reruns",
				"write with > and build the full content in one pass, or guard the append")
		}
	}
}

// ---------------------------------------------------------------------------
// Security
// ---------------------------------------------------------------------------

func checkEval(w *walkInfo, _ Config, s *sink) {
	for _, c := range w.commands {
		if c.cmd.NameText() != "eval" {
			continue
		}
		s.add(Error, c.cmd.Span,
			"eval executes its arguments as code; any expansion inside becomes an injection point",
			"restructure to call the command directly, or use an array for argument lists")
	}
}

func checkUnquotedExpansion(w *walkInfo, _ Config, s *sink) {
	for _, u := range w.varRefs {
		if !u.bareArg || specialVar(u.ref.Name) {
			continue
		}
		s.add(Warning, u.ref.Span,
			u.ref.Raw+" is unquoted and will word-split and glob-expand",
			"\""+u.ref.Raw+"\"")
	}
}

func checkWorldWritable(w *walkInfo, _ Config, s *sink) {
	for _, c := range w.commands {
		if c.cmd.NameText() != "chmod" {
			continue
		}
		for _, a := range c.cmd.Args {
			raw := exprText(a)
			if raw == "777" || raw == "a+rwx" || raw == "a=rwx" {
				s.add(Error, c.cmd.Span,
					"chmod "+raw+" makes the target writable by every user",
					"grant the narrowest mode that works, e.g. 755 for executables")
			}
		}
	}
}

func checkPipeToShell(w *walkInfo, _ Config, s *sink) {
	for _, p := range w.pipelines {
		if len(p.Commands) < 2 {
			continue
		}
		first, ok1 := firstSimple(p.Commands[0])
		last, ok2 := firstSimple(p.Commands[len(p.Commands)-1])
		if !ok1 || !ok2 {
			continue
		}
		fn, ln := first.NameText(), last.NameText()
		if (fn == "curl" || fn == "wget") && (ln == "sh" || ln == "bash" || ln == "zsh") {
			s.add(Error, p.Span,
				"piping a download straight into a shell executes unverified remote code",
				"download to a file, verify its checksum, then run it")
		}
	}
}

// ---------------------------------------------------------------------------
// Portability
// ---------------------------------------------------------------------------

func checkEchoFlags(w *walkInfo, _ Config, s *sink) {
	for _, c := range w.commands {
		if c.cmd.NameText() != "echo" || len(c.cmd.Args) == 0 {
			continue
		}
		first := exprText(c.cmd.Args[0])
		if first == "-e" || first == "-n" || first == "-en" || first == "-ne" {
			s.add(Warning, c.cmd.Span,
				"echo "+first+" is not portable; some shells print the flag literally",
				"printf")
		}
	}
}

func checkExtendedTest(w *walkInfo, _ Config, s *sink) {
	for _, c := range w.commands {
		for _, a := range c.cmd.Args {
			t, ok := a.(*ast.TestExpr)
			if !ok || !t.Extended {
				continue
			}
			s.add(Info, t.Span,
				"[[ ]] is a bash extension; POSIX sh only has [ ]",
				"use [ ] if the script must run under /bin/sh")
		}
	}
}

func checkLocalMisuse(w *walkInfo, _ Config, s *sink) {
	for _, c := range w.commands {
		if c.cmd.NameText() != "local" {
			continue
		}
		if !c.inFunc {
			s.add(Warning, c.cmd.Span,
				"local outside a function is an error in most shells",
				"use a plain assignment at the top level")
			continue
		}
		// local v=$(cmd) returns local's status, not cmd's
		for _, a := range argTexts(c.cmd) {
			if strings.Contains(a, "=$(") || strings.Contains(a, "=`") {
				s.add(Info, c.cmd.Span,
					"the substitution's exit status is masked by local",
					"declare first, assign on the next line")
				break
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Error handling
// ---------------------------------------------------------------------------

func checkMissingErrexit(w *walkInfo, _ Config, s *sink) {
	if len(w.commands) == 0 {
		return
	}
	for _, c := range w.commands {
		if c.cmd.NameText() != "set" {
			continue
		}
		for _, a := range c.cmd.Args {
			raw := exprText(a)
			if raw == "errexit" {
				return
			}
			if len(raw) > 1 && raw[0] == '-' && raw[1] != '-' && strings.ContainsRune(raw, 'e') {
				return
			}
		}
	}
	top := w.script.Statements
	span := ast.Span{StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1}
	if len(top) > 0 {
		span = top[0].GetSpan()
	}
	s.add(Warning, span,
		"the script keeps running after a command fails",
		"set -euo pipefail near the top")
}

func checkSilencedErrors(w *walkInfo, _ Config, s *sink) {
	for _, c := range w.commands {
		if c.fallback {
			continue // an || branch handles the failure
		}
		for _, r := range c.cmd.Redirects {
			if r.FD != "2" || exprText(r.Target) != "/dev/null" {
				continue
			}
			s.add(Info, r.Span,
				"stderr is discarded, so failures of this command leave no trace",
				"drop the redirect, or handle the failure with an explicit || branch")
		}
	}
}

// ---------------------------------------------------------------------------
// Reproducibility
// ---------------------------------------------------------------------------

func checkUnpinnedInstalls(w *walkInfo, _ Config, s *sink) {
	for _, c := range w.commands {
		name := c.cmd.NameText()
		args := argTexts(c.cmd)
		switch name {
		case "go":
			if len(args) < 2 || (args[0] != "install" && args[0] != "get") {
				continue
			}
			for _, a := range args[1:] {
				if strings.HasPrefix(a, "-") {
					continue
				}
				at := strings.LastIndexByte(a, '@')
				if at < 0 {
					s.add(Warning, c.cmd.Span,
						a+" has no version; the build floats with upstream",
						a+"@<version>")
					continue
				}
				v := a[at+1:]
				if v == "latest" || v == "master" || v == "main" {
					s.add(Warning, c.cmd.Span,
						a+" resolves to a moving target",
						a[:at]+"@<version>")
				} else if strings.HasPrefix(v, "v") && !semver.IsValid(v) {
					s.add(Info, c.cmd.Span,
						v+" is not a valid semantic version", "")
				}
			}
		case "pip", "pip3":
			if len(args) < 2 || args[0] != "install" {
				continue
			}
			for _, a := range args[1:] {
				if strings.HasPrefix(a, "-") || strings.Contains(a, "==") {
					continue
				}
				s.add(Warning, c.cmd.Span,
					a+" has no pinned version",
					a+"==<version>")
			}
		case "apt-get", "apt":
			if len(args) < 2 || args[0] != "install" {
				continue
			}
			for _, a := range args[1:] {
				if strings.HasPrefix(a, "-") || strings.Contains(a, "=") {
					continue
				}
				s.add(Warning, c.cmd.Span,
					a+" has no pinned version",
					a+"=<version>")
			}
		case "npm":
			if len(args) < 2 || args[0] != "install" {
				continue
			}
			for _, a := range args[1:] {
				if strings.HasPrefix(a, "-") || strings.Contains(a, "@") {
					continue
				}
				s.add(Warning, c.cmd.Span,
					a+" has no pinned version",
					a+"@<version>")
			}
		}
	}
}

// checkTestOperandTypes verifies that numeric comparison operators get
// numeric operands. Words containing expansions are unknowable
// statically and pass.
func checkTestOperandTypes(w *walkInfo, cfg Config, s *sink) {
	if !cfg.TypeCheck {
		return
	}
	for _, c := range w.commands {
		for _, a := range c.cmd.Args {
			t, ok := a.(*ast.TestExpr)
			if !ok || t.Expr == nil {
				continue
			}
			walkTestNode(t.Expr, func(n *ast.TestNode) {
				if n.Kind != ast.TestBinary || !numericTestOp(n.Op) {
					return
				}
				for _, side := range []*ast.TestNode{n.Left, n.Right} {
					if side == nil || side.Kind != ast.TestWord {
						continue
					}
					if word := side.Word; !numericWord(word) {
						s.add(Error, t.Span,
							n.Op+" compares numbers, but "+word+" is not numeric",
							"use = for string comparison or make the operand a number")
					}
				}
			})
		}
	}
}

func walkTestNode(n *ast.TestNode, visit func(*ast.TestNode)) {
	if n == nil {
		return
	}
	visit(n)
	walkTestNode(n.Left, visit)
	walkTestNode(n.Right, visit)
}

func numericTestOp(op string) bool {
	switch op {
	case "-eq", "-ne", "-lt", "-le", "-gt", "-ge":
		return true
	}
	return false
}

func numericWord(word string) bool {
	word = strings.Trim(word, `"'`)
	if word == "" || strings.ContainsAny(word, "$`") {
		return true // expansions resolve at runtime
	}
	if word[0] == '-' || word[0] == '+' {
		word = word[1:]
	}
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		if word[i] < '0' || word[i] > '9' {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func exprText(e ast.Expression) string {
	if e == nil {
		return ""
	}
	if lit, ok := e.(*ast.Literal); ok {
		return lit.Raw
	}
	return e.String()
}

func argTexts(c *ast.SimpleCommand) []string {
	out := make([]string, len(c.Args))
	for i, a := range c.Args {
		out[i] = exprText(a)
	}
	return out
}

func argMentions(c *ast.SimpleCommand, text string) bool {
	for _, a := range argTexts(c) {
		if strings.Contains(a, text) {
			return true
		}
	}
	return false
}

// hasFlag reports whether any short-option cluster contains the letter
func hasFlag(c *ast.SimpleCommand, letter string) bool {
	for _, a := range c.Args {
		raw := exprText(a)
		if raw == "--" {
			break
		}
		if len(raw) > 1 && raw[0] == '-' && raw[1] != '-' && strings.Contains(raw[1:], letter) {
			return true
		}
	}
	return false
}

func firstSimple(s ast.Statement) (*ast.SimpleCommand, bool) {
	switch n := s.(type) {
	case *ast.SimpleCommand:
		return n, true
	case *ast.Negated:
		return firstSimple(n.Cmd)
	}
	return nil, false
}

// specialVar names expansions that expand to a number or flag string
// and cannot word-split; $@ and $* are not here, they split
func specialVar(name string) bool {
	switch name {
	case "?", "#", "!", "-":
		return true
	}
	return false
}

// containsExpansion reports an active $name inside a double-quoted raw
func containsExpansion(raw, name string) bool {
	for i := 0; i+len(name) < len(raw); i++ {
		if raw[i] != '$' {
			continue
		}
		if i > 0 && raw[i-1] == '\\' {
			continue
		}
		rest := raw[i+1:]
		if strings.HasPrefix(rest, name) || strings.HasPrefix(rest, "{"+name+"}") {
			return true
		}
	}
	return false
}
