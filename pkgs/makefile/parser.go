// Package makefile parses GNU-style Makefiles into the shared
// statement tree. The parser is line oriented: continuations are
// joined, tab-prefixed lines attach to the current rule's recipe, and
// conditional directives nest.
package makefile

import (
	"fmt"
	"strings"
	"time"

	"github.com/shellpure/shellpure/pkgs/ast"
	"github.com/shellpure/shellpure/pkgs/errors"
)

// Parse parses Makefile source text into a Script
func Parse(source, name string) (*ast.Script, error) {
	start := time.Now()
	p := &parser{
		name:  name,
		lines: strings.Split(source, "\n"),
	}

	stmts, err := p.parseBlock(nil)
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.lines) {
		return nil, p.errorAt(p.pos, "unexpected %q outside a conditional block",
			strings.TrimSpace(p.lines[p.pos]))
	}

	return &ast.Script{
		Name:       name,
		Dialect:    ast.Makefile,
		Statements: stmts,
		LineCount:  len(p.lines),
		ParseTime:  time.Since(start),
	}, nil
}

type parser struct {
	name  string
	lines []string
	pos   int // current line index (0-based)
}

func (p *parser) errorAt(line int, format string, args ...interface{}) *errors.ParseError {
	context := ""
	if line >= 0 && line < len(p.lines) {
		context = p.lines[line]
	}
	return &errors.ParseError{
		File:    p.name,
		Line:    line + 1,
		Column:  1,
		Context: context,
		Message: fmt.Sprintf(format, args...),
	}
}

// joinContinuations reads the logical line starting at p.pos, joining
// backslash continuations, and advances past it.
func (p *parser) joinContinuations() (string, int) {
	startLine := p.pos
	var sb strings.Builder
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		p.pos++
		if strings.HasSuffix(line, "\\") && !strings.HasSuffix(line, "\\\\") {
			sb.WriteString(strings.TrimSuffix(line, "\\"))
			sb.WriteString(" ")
			continue
		}
		sb.WriteString(line)
		break
	}
	return sb.String(), startLine
}

// parseBlock parses statements until EOF or one of the stop directives
// (else / endif) appears. The stop line is not consumed.
func (p *parser) parseBlock(stops []string) ([]ast.Statement, error) {
	var stmts []ast.Statement
	var currentRule *ast.Rule
	blanks := 0

	flushBlanks := func(line int) {
		if blanks > 1 {
			stmts = append(stmts, &ast.Blank{Count: blanks - 1, Span: ast.Span{StartLine: line, StartCol: 1, EndLine: line, EndCol: 1}})
		}
		blanks = 0
	}

	for p.pos < len(p.lines) {
		raw := p.lines[p.pos]
		trimmed := strings.TrimSpace(raw)

		// skip a trailing empty element from the final newline
		if p.pos == len(p.lines)-1 && raw == "" {
			p.pos++
			break
		}

		if trimmed == "" {
			blanks++
			currentRule = nil
			p.pos++
			continue
		}

		for _, stop := range stops {
			if directiveWord(trimmed) == stop {
				flushBlanks(p.pos + 1)
				return stmts, nil
			}
		}

		// recipe line: tab prefixed, attached to the current rule
		if strings.HasPrefix(raw, "\t") {
			if currentRule == nil {
				return nil, p.errorAt(p.pos, "recipe commences before first target")
			}
			line, startLine := p.joinContinuations()
			currentRule.Recipe = append(currentRule.Recipe, recipeLine(line, startLine+1))
			continue
		}

		flushBlanks(p.pos + 1)

		if strings.HasPrefix(trimmed, "#") {
			stmts = append(stmts, &ast.Comment{
				Text: strings.TrimPrefix(trimmed, "#"),
				Span: p.lineSpan(p.pos, raw),
			})
			currentRule = nil
			p.pos++
			continue
		}

		switch directiveWord(trimmed) {
		case "ifeq", "ifneq", "ifdef", "ifndef":
			cond, err := p.parseConditional()
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, cond)
			currentRule = nil
			continue
		case "else", "endif":
			return nil, p.errorAt(p.pos, "%q without matching ifeq/ifdef", directiveWord(trimmed))
		case "endef":
			return nil, p.errorAt(p.pos, "endef without matching define")
		case "define":
			def, err := p.parseDefine()
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, def)
			currentRule = nil
			continue
		case "include", "-include", "sinclude":
			line, startLine := p.joinContinuations()
			stmts = append(stmts, p.parseInclude(line, startLine))
			currentRule = nil
			continue
		case "vpath", ".SUFFIXES", ".DEFAULT_GOAL", "unexport":
			line, startLine := p.joinContinuations()
			fields := strings.Fields(line)
			stmts = append(stmts, &ast.Directive{
				Name: fields[0],
				Args: fields[1:],
				Span: p.lineSpan(startLine, line),
			})
			currentRule = nil
			continue
		}

		line, startLine := p.joinContinuations()

		if assign, ok := p.parseAssign(line, startLine); ok {
			stmts = append(stmts, assign)
			currentRule = nil
			continue
		}

		rule, err := p.parseRule(line, startLine)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, rule)
		currentRule = rule
	}

	flushBlanks(len(p.lines))
	return stmts, nil
}

func (p *parser) lineSpan(lineIdx int, text string) ast.Span {
	return ast.Span{
		StartLine: lineIdx + 1,
		StartCol:  1,
		EndLine:   lineIdx + 1,
		EndCol:    len(text) + 1,
	}
}

func directiveWord(trimmed string) string {
	if i := strings.IndexAny(trimmed, " \t"); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

func recipeLine(raw string, line int) *ast.RecipeLine {
	text := strings.TrimPrefix(raw, "\t")
	rl := &ast.RecipeLine{
		Span: ast.Span{StartLine: line, StartCol: 1, EndLine: line, EndCol: len(raw) + 1},
	}
	for len(text) > 0 {
		switch text[0] {
		case '@':
			rl.Silent = true
			text = text[1:]
			continue
		case '-':
			rl.IgnoreError = true
			text = text[1:]
			continue
		case '+':
			text = text[1:]
			continue
		}
		break
	}
	rl.Text = text
	return rl
}

// assignment operators in match order: longest first so := wins over =
var assignOps = []struct {
	text string
	op   ast.MakeAssignOp
}{
	{":=", ast.AssignSimple},
	{"?=", ast.AssignCond},
	{"+=", ast.AssignAppendOp},
	{"!=", ast.AssignShell},
	{"=", ast.AssignRecursive},
}

// parseAssign recognizes NAME op VALUE lines. The operator search skips
// $(...) references so FOO := $(X:%.c=%.o) parses correctly.
func (p *parser) parseAssign(line string, startLine int) (ast.Statement, bool) {
	trimmed := strings.TrimSpace(line)
	export := false
	if strings.HasPrefix(trimmed, "export ") {
		export = true
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "export "))
	}

	depth := 0
	for i := 0; i < len(trimmed); i++ {
		switch trimmed[i] {
		case '$':
			if i+1 < len(trimmed) && (trimmed[i+1] == '(' || trimmed[i+1] == '{') {
				depth++
				i++
			}
		case ')', '}':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 && i+1 < len(trimmed) && trimmed[i+1] != '=' {
				return nil, false // rule separator
			}
		}
		if depth > 0 {
			continue
		}
		for _, cand := range assignOps {
			if !strings.HasPrefix(trimmed[i:], cand.text) {
				continue
			}
			name := strings.TrimSpace(trimmed[:i])
			if name == "" || strings.ContainsAny(name, " \t:#") {
				return nil, false
			}
			return &ast.MakeAssign{
				Name:   name,
				Op:     cand.op,
				Value:  strings.TrimSpace(trimmed[i+len(cand.text):]),
				Export: export,
				Span:   p.lineSpan(startLine, line),
			}, true
		}
	}
	return nil, false
}

func (p *parser) parseRule(line string, startLine int) (*ast.Rule, error) {
	// find the separating colon outside $(...) references
	depth := 0
	colon := -1
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '$':
			if i+1 < len(line) && (line[i+1] == '(' || line[i+1] == '{') {
				depth++
				i++
			}
		case ')', '}':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 {
				colon = i
			}
		}
		if colon >= 0 {
			break
		}
	}
	if colon < 0 {
		return nil, p.errorAt(startLine, "expected rule or assignment, got %q", strings.TrimSpace(line))
	}

	rule := &ast.Rule{
		Targets: strings.Fields(line[:colon]),
		Span:    p.lineSpan(startLine, line),
	}
	if len(rule.Targets) == 0 {
		return nil, p.errorAt(startLine, "rule has no targets")
	}

	rest := line[colon+1:]
	if strings.HasPrefix(rest, ":") {
		rule.DoubleColon = true
		rest = rest[1:]
	}

	// inline recipe after a semicolon
	if semi := strings.IndexByte(rest, ';'); semi >= 0 {
		rule.Recipe = append(rule.Recipe, recipeLine("\t"+strings.TrimSpace(rest[semi+1:]), startLine+1))
		rest = rest[:semi]
	}

	// order-only prerequisites after |
	if pipe := strings.IndexByte(rest, '|'); pipe >= 0 {
		rule.OrderOnly = strings.Fields(rest[pipe+1:])
		rest = rest[:pipe]
	}
	rule.Prereqs = strings.Fields(rest)
	return rule, nil
}

func (p *parser) parseInclude(line string, startLine int) *ast.Include {
	fields := strings.Fields(line)
	return &ast.Include{
		Paths:    fields[1:],
		Optional: fields[0] != "include",
		Span:     p.lineSpan(startLine, line),
	}
}

// parseConditional parses ifeq/ifneq/ifdef/ifndef ... [else ...] endif
func (p *parser) parseConditional() (ast.Statement, error) {
	line, startLine := p.joinContinuations()
	trimmed := strings.TrimSpace(line)
	word := directiveWord(trimmed)

	kinds := map[string]ast.MakeCondKind{
		"ifeq": ast.CondIfeq, "ifneq": ast.CondIfneq,
		"ifdef": ast.CondIfdef, "ifndef": ast.CondIfndef,
	}
	cond := &ast.MakeConditional{
		Kind: kinds[word],
		Span: p.lineSpan(startLine, line),
	}

	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, word))
	switch cond.Kind {
	case ast.CondIfdef, ast.CondIfndef:
		cond.Arg1 = rest
	default:
		arg1, arg2, err := splitCondArgs(rest)
		if err != nil {
			return nil, p.errorAt(startLine, "malformed %s condition: %v", word, err)
		}
		cond.Arg1, cond.Arg2 = arg1, arg2
	}

	then, err := p.parseBlock([]string{"else", "endif"})
	if err != nil {
		return nil, err
	}
	cond.Then = then

	if p.pos < len(p.lines) && directiveWord(strings.TrimSpace(p.lines[p.pos])) == "else" {
		elseLine := strings.TrimSpace(p.lines[p.pos])
		// else ifeq chains become a nested conditional
		if rest := strings.TrimSpace(strings.TrimPrefix(elseLine, "else")); rest != "" {
			p.lines[p.pos] = rest
			nested, err := p.parseConditional()
			if err != nil {
				return nil, err
			}
			cond.Else = []ast.Statement{nested}
			return cond, nil
		}
		p.pos++
		elseBody, err := p.parseBlock([]string{"endif"})
		if err != nil {
			return nil, err
		}
		cond.Else = elseBody
	}

	if p.pos >= len(p.lines) || directiveWord(strings.TrimSpace(p.lines[p.pos])) != "endif" {
		return nil, p.errorAt(startLine, "%s missing closing endif", word)
	}
	p.pos++
	return cond, nil
}

// splitCondArgs splits (a,b) or "a" "b" style condition arguments
func splitCondArgs(rest string) (string, string, error) {
	if strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")") {
		inner := rest[1 : len(rest)-1]
		depth := 0
		for i := 0; i < len(inner); i++ {
			switch inner[i] {
			case '(':
				depth++
			case ')':
				depth--
			case ',':
				if depth == 0 {
					return strings.TrimSpace(inner[:i]), strings.TrimSpace(inner[i+1:]), nil
				}
			}
		}
		return "", "", fmt.Errorf("missing ',' separator")
	}
	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return "", "", fmt.Errorf("expected two quoted arguments")
	}
	return strings.Trim(fields[0], `"'`), strings.Trim(fields[1], `"'`), nil
}

// parseDefine parses define NAME ... endef blocks
func (p *parser) parseDefine() (ast.Statement, error) {
	line, startLine := p.joinContinuations()
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil, p.errorAt(startLine, "define requires a variable name")
	}

	var body []string
	for {
		if p.pos >= len(p.lines) {
			return nil, p.errorAt(startLine, "define %s missing closing endef", fields[1])
		}
		if directiveWord(strings.TrimSpace(p.lines[p.pos])) == "endef" {
			p.pos++
			break
		}
		body = append(body, p.lines[p.pos])
		p.pos++
	}
	return &ast.Directive{
		Name: "define",
		Args: fields[1:],
		Body: body,
		Span: p.lineSpan(startLine, line),
	}, nil
}
