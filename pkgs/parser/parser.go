package parser

import (
	"strings"
	"time"

	"github.com/shellpure/shellpure/pkgs/ast"
	"github.com/shellpure/shellpure/pkgs/lexer"
)

// maxSubstitutionDepth bounds recursive parsing of command
// substitutions so hostile input cannot blow the stack.
const maxSubstitutionDepth = 32

// reserved words that terminate an enclosing statement list
var listTerminators = map[string]bool{
	"then": true, "elif": true, "else": true, "fi": true,
	"do": true, "done": true, "esac": true, "in": true,
}

// Parser consumes the token stream into a typed syntax tree
type Parser struct {
	name    string
	source  string
	lines   []string
	tokens  []lexer.Token
	pos     int
	depth   int // command-substitution nesting depth
	pending []*ast.Redirect
}

// Parse parses shell source text into a Script. The parser is a pure
// function of its input: the same text always yields a structurally
// identical tree.
func Parse(source, name string) (*ast.Script, error) {
	start := time.Now()
	p := newParser(source, name)

	stmts, err := p.parseList(nil)
	if err != nil {
		return nil, err
	}
	if tok := p.cur(); tok.Type != lexer.EOF {
		return nil, p.expectedError("statement", tok)
	}
	if len(p.pending) > 0 {
		return nil, p.newParseError(p.cur(), "unterminated here-document delimited by %s",
			p.pending[0].Target.String())
	}

	return &ast.Script{
		Name:       name,
		Dialect:    ast.Shell,
		Statements: stmts,
		LineCount:  len(p.lines),
		ParseTime:  time.Since(start),
	}, nil
}

func newParser(source, name string) *Parser {
	return &Parser{
		name:   name,
		source: source,
		lines:  strings.Split(source, "\n"),
		tokens: lexer.New(source).TokenizeToSlice(),
	}
}

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek() lexer.Token {
	if p.pos+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) advance() lexer.Token {
	tok := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) atWord(value string) bool {
	tok := p.cur()
	return tok.Type == lexer.WORD && tok.Value == value
}

func (p *Parser) expectWord(value string) (lexer.Token, error) {
	if !p.atWord(value) {
		return p.cur(), p.expectedError("'"+value+"'", p.cur())
	}
	return p.advance(), nil
}

func spanOf(tok lexer.Token) ast.Span {
	return ast.Span{
		StartLine: tok.Pos.Line,
		StartCol:  tok.Pos.Column,
		EndLine:   tok.End.Line,
		EndCol:    tok.End.Column,
	}
}

func spanBetween(start, end ast.Span) ast.Span {
	return ast.Span{
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

// skipSeparators consumes newlines, semicolons and comments between
// statements. Comments become statements; runs of blank lines are
// recorded so formatting options can decide their fate. Here-document
// bodies emitted after a newline are attached to their redirects here.
func (p *Parser) skipSeparators(stmts *[]ast.Statement) {
	newlines := 0
	for {
		tok := p.cur()
		switch tok.Type {
		case lexer.NEWLINE:
			newlines++
			p.advance()
			p.attachHeredocs()
		case lexer.SEMI, lexer.AMP:
			p.advance()
		case lexer.COMMENT:
			if stmts != nil {
				*stmts = append(*stmts, &ast.Comment{
					Text: strings.TrimPrefix(tok.Value, "#"),
					Span: spanOf(tok),
				})
			}
			p.advance()
		default:
			if stmts != nil && newlines > 1 {
				*stmts = append(*stmts, &ast.Blank{Count: newlines - 1, Span: spanOf(tok)})
			}
			return
		}
	}
}

// attachHeredocs fills in bodies for redirects registered before the
// newline, in registration order.
func (p *Parser) attachHeredocs() {
	for p.cur().Type == lexer.HEREDOC_BODY && len(p.pending) > 0 {
		tok := p.advance()
		r := p.pending[0]
		p.pending = p.pending[1:]
		r.HeredocBody = tok.Value
		r.QuotedDelim = tok.QuotedDelim
	}
}

// parseList parses statements until EOF, a closing token, or one of the
// given reserved words appears in command position. The caller verifies
// that the terminator it finds is the one it expected.
func (p *Parser) parseList(stops map[string]bool) ([]ast.Statement, error) {
	var stmts []ast.Statement
	for {
		p.skipSeparators(&stmts)
		tok := p.cur()

		switch tok.Type {
		case lexer.EOF, lexer.RPAREN, lexer.RBRACE, lexer.DSEMI, lexer.SEMI_AMP, lexer.DSEMI_AMP:
			return stmts, nil
		case lexer.ILLEGAL:
			return nil, p.newParseError(tok, "%s", tok.Value)
		}
		if tok.Type == lexer.WORD && (stops[tok.Value] || listTerminators[tok.Value]) {
			return stmts, nil
		}

		stmt, err := p.parseAndOr()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

// parseAndOr parses a pipeline possibly chained with && and ||
func (p *Parser) parseAndOr() (ast.Statement, error) {
	left, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur()
		if tok.Type != lexer.AND_AND && tok.Type != lexer.OR_OR {
			return left, nil
		}
		p.advance()
		p.skipNewlinesOnly()
		right, err := p.parsePipeline()
		if err != nil {
			return nil, err
		}
		op := "&&"
		if tok.Type == lexer.OR_OR {
			op = "||"
		}
		left = &ast.AndOr{
			Op:    op,
			Left:  left,
			Right: right,
			Span:  spanBetween(left.GetSpan(), right.GetSpan()),
		}
	}
}

func (p *Parser) skipNewlinesOnly() {
	for p.cur().Type == lexer.NEWLINE || p.cur().Type == lexer.COMMENT {
		if p.advance().Type == lexer.NEWLINE {
			p.attachHeredocs()
		}
	}
}

// parsePipeline parses an optionally negated sequence of commands
// joined by | or |&
func (p *Parser) parsePipeline() (ast.Statement, error) {
	if p.cur().Type == lexer.BANG {
		bang := p.advance()
		cmd, err := p.parsePipeline()
		if err != nil {
			return nil, err
		}
		return &ast.Negated{Cmd: cmd, Span: spanBetween(spanOf(bang), cmd.GetSpan())}, nil
	}

	first, err := p.parseCommand()
	if err != nil {
		return nil, err
	}

	if p.cur().Type != lexer.PIPE && p.cur().Type != lexer.PIPE_AMP {
		return first, nil
	}

	commands := []ast.Statement{first}
	for p.cur().Type == lexer.PIPE || p.cur().Type == lexer.PIPE_AMP {
		p.advance()
		p.skipNewlinesOnly()
		cmd, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		commands = append(commands, cmd)
	}
	return &ast.Pipeline{
		Commands: commands,
		Span:     spanBetween(first.GetSpan(), commands[len(commands)-1].GetSpan()),
	}, nil
}

// parseCommand dispatches on the statement variant in command position
func (p *Parser) parseCommand() (ast.Statement, error) {
	tok := p.cur()

	switch tok.Type {
	case lexer.LPAREN:
		return p.parseGroup(true)
	case lexer.LBRACE:
		return p.parseGroup(false)
	case lexer.ASSIGNMENT:
		return p.parseAssignmentOrCommand()
	case lexer.ILLEGAL:
		return nil, p.newParseError(tok, "%s", tok.Value)
	case lexer.WORD:
		// fall through to keyword dispatch below
	default:
		return nil, p.expectedError("command", tok)
	}

	switch tok.Value {
	case "if":
		return p.parseIf()
	case "while":
		return p.parseWhile(false)
	case "until":
		return p.parseWhile(true)
	case "for":
		return p.parseFor()
	case "case":
		return p.parseCase()
	case "select":
		return p.parseSelect()
	case "function":
		return p.parseFunctionKeyword()
	case "coproc":
		return p.parseCoproc()
	case "return":
		return p.parseReturnExit(true)
	case "exit":
		return p.parseReturnExit(false)
	case "export":
		if p.peek().Type == lexer.ASSIGNMENT {
			return p.parseExport()
		}
	}

	// name() → function definition
	if p.peek().Type == lexer.LPAREN && p.peek().Pos.Offset == tok.End.Offset {
		return p.parseFunctionParens()
	}

	return p.parseSimpleCommand()
}

func (p *Parser) parseGroup(subshell bool) (ast.Statement, error) {
	open := p.advance()
	body, err := p.parseList(nil)
	if err != nil {
		return nil, err
	}
	closer := lexer.RBRACE
	closerText := "'}'"
	if subshell {
		closer = lexer.RPAREN
		closerText = "')'"
	}
	if p.cur().Type != closer {
		return nil, p.expectedError(closerText, p.cur())
	}
	end := p.advance()
	return &ast.Group{
		Body:     body,
		Subshell: subshell,
		Span:     spanBetween(spanOf(open), spanOf(end)),
	}, nil
}

func (p *Parser) parseIf() (ast.Statement, error) {
	kw := p.advance() // if

	cond, err := p.parseList(map[string]bool{"then": true})
	if err != nil {
		return nil, err
	}
	if _, err := p.expectWord("then"); err != nil {
		return nil, err
	}
	then, err := p.parseList(map[string]bool{"elif": true, "else": true, "fi": true})
	if err != nil {
		return nil, err
	}

	node := &ast.If{Cond: cond, Then: then}

	for p.atWord("elif") {
		elifTok := p.advance()
		econd, err := p.parseList(map[string]bool{"then": true})
		if err != nil {
			return nil, err
		}
		if _, err := p.expectWord("then"); err != nil {
			return nil, err
		}
		ebody, err := p.parseList(map[string]bool{"elif": true, "else": true, "fi": true})
		if err != nil {
			return nil, err
		}
		node.Elifs = append(node.Elifs, ast.ElifClause{
			Cond: econd,
			Body: ebody,
			Span: spanOf(elifTok),
		})
	}

	if p.atWord("else") {
		p.advance()
		elseBody, err := p.parseList(map[string]bool{"fi": true})
		if err != nil {
			return nil, err
		}
		node.Else = elseBody
	}

	fi, err := p.expectWord("fi")
	if err != nil {
		return nil, err
	}
	node.Span = spanBetween(spanOf(kw), spanOf(fi))
	return node, nil
}

func (p *Parser) parseWhile(until bool) (ast.Statement, error) {
	kw := p.advance()

	cond, err := p.parseList(map[string]bool{"do": true})
	if err != nil {
		return nil, err
	}
	body, done, err := p.parseDoDone()
	if err != nil {
		return nil, err
	}
	return &ast.While{
		Until: until,
		Cond:  cond,
		Body:  body,
		Span:  spanBetween(spanOf(kw), spanOf(done)),
	}, nil
}

func (p *Parser) parseDoDone() ([]ast.Statement, lexer.Token, error) {
	if _, err := p.expectWord("do"); err != nil {
		return nil, lexer.Token{}, err
	}
	body, err := p.parseList(map[string]bool{"done": true})
	if err != nil {
		return nil, lexer.Token{}, err
	}
	done, err := p.expectWord("done")
	if err != nil {
		return nil, lexer.Token{}, err
	}
	return body, done, nil
}

func (p *Parser) parseFor() (ast.Statement, error) {
	kw := p.advance() // for

	// C-style: for ((init; cond; incr))
	if p.cur().Type == lexer.LPAREN && p.peek().Type == lexer.LPAREN &&
		p.peek().Pos.Offset == p.cur().End.Offset {
		return p.parseCStyleFor(kw)
	}

	nameTok := p.cur()
	if nameTok.Type != lexer.WORD {
		return nil, p.expectedError("loop variable name", nameTok)
	}
	p.advance()

	var items []ast.Expression
	p.skipSeparatorsNoStmts()
	if p.atWord("in") {
		p.advance()
		for p.cur().Type == lexer.WORD || p.cur().Type == lexer.ASSIGNMENT {
			items = append(items, p.wordExpr(p.advance()))
		}
	}
	p.skipSeparatorsNoStmts()

	body, done, err := p.parseDoDone()
	if err != nil {
		return nil, err
	}
	return &ast.For{
		Var:   nameTok.Value,
		Items: items,
		Body:  body,
		Span:  spanBetween(spanOf(kw), spanOf(done)),
	}, nil
}

func (p *Parser) skipSeparatorsNoStmts() {
	for {
		switch p.cur().Type {
		case lexer.NEWLINE:
			p.advance()
			p.attachHeredocs()
		case lexer.SEMI:
			p.advance()
		default:
			return
		}
	}
}

// parseCStyleFor reads for ((init; cond; incr)) by scanning the raw
// source between the (( and the matching )): the three clauses stay raw
// text because shell arithmetic grammar is dialect-specific.
func (p *Parser) parseCStyleFor(kw lexer.Token) (ast.Statement, error) {
	open := p.cur()
	start := open.Pos.Offset + 2
	end := p.findDoubleParenClose(start)
	if end < 0 {
		return nil, p.newParseError(open, "unterminated C-style for clause")
	}

	inner := p.source[start:end]
	clauses := strings.Split(inner, ";")
	if len(clauses) != 3 {
		return nil, p.newParseError(open,
			"C-style for requires three clauses separated by ';', got %d", len(clauses))
	}

	// resync the token stream past the closing ))
	for p.cur().Type != lexer.EOF && p.cur().Pos.Offset < end+2 {
		p.advance()
	}
	p.skipSeparatorsNoStmts()

	body, done, err := p.parseDoDone()
	if err != nil {
		return nil, err
	}
	return &ast.CStyleFor{
		Init: strings.TrimSpace(clauses[0]),
		Cond: strings.TrimSpace(clauses[1]),
		Incr: strings.TrimSpace(clauses[2]),
		Body: body,
		Span: spanBetween(spanOf(kw), spanOf(done)),
	}, nil
}

// findDoubleParenClose locates the offset of the )) matching a (( by
// depth-tracking, honoring quotes.
func (p *Parser) findDoubleParenClose(start int) int {
	depth := 2
	i := start
	for i < len(p.source) {
		switch p.source[i] {
		case '\\':
			i++
		case '\'':
			for i++; i < len(p.source) && p.source[i] != '\''; i++ {
			}
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i - 1
			}
		}
		i++
	}
	return -1
}

func (p *Parser) parseCase() (ast.Statement, error) {
	kw := p.advance() // case

	wordTok := p.cur()
	if wordTok.Type != lexer.WORD && wordTok.Type != lexer.ASSIGNMENT {
		return nil, p.expectedError("case word", wordTok)
	}
	p.advance()
	word := p.wordExpr(wordTok)

	p.skipSeparatorsNoStmts()
	if _, err := p.expectWord("in"); err != nil {
		return nil, err
	}

	node := &ast.Case{Word: word}
	for {
		p.skipSeparatorsNoStmts()
		tok := p.cur()
		if tok.Type == lexer.EOF {
			// a case block missing its esac is a hard parse error
			return nil, p.newParseError(kw, "case statement missing closing 'esac'")
		}
		if p.atWord("esac") {
			end := p.advance()
			node.Span = spanBetween(spanOf(kw), spanOf(end))
			return node, nil
		}

		arm, err := p.parseCaseArm()
		if err != nil {
			return nil, err
		}
		node.Arms = append(node.Arms, arm)
	}
}

func (p *Parser) parseCaseArm() (ast.CaseArm, error) {
	var arm ast.CaseArm

	if p.cur().Type == lexer.LPAREN {
		p.advance() // optional leading ( before patterns
	}
	armStart := p.cur()

	for {
		tok := p.cur()
		if tok.Type != lexer.WORD && tok.Type != lexer.ASSIGNMENT {
			return arm, p.expectedError("case pattern", tok)
		}
		p.advance()
		arm.Patterns = append(arm.Patterns, p.wordExpr(tok))
		if p.cur().Type != lexer.PIPE {
			break
		}
		p.advance()
	}
	if p.cur().Type != lexer.RPAREN {
		return arm, p.expectedError("')' after case patterns", p.cur())
	}
	p.advance()

	body, err := p.parseList(map[string]bool{"esac": true})
	if err != nil {
		return arm, err
	}
	arm.Body = body

	arm.Terminator = ast.Break
	switch p.cur().Type {
	case lexer.DSEMI:
		p.advance()
	case lexer.SEMI_AMP:
		arm.Terminator = ast.FallThrough
		p.advance()
	case lexer.DSEMI_AMP:
		arm.Terminator = ast.Continue
		p.advance()
	}
	arm.Span = spanOf(armStart)
	return arm, nil
}

func (p *Parser) parseSelect() (ast.Statement, error) {
	kw := p.advance() // select

	nameTok := p.cur()
	if nameTok.Type != lexer.WORD {
		return nil, p.expectedError("select variable name", nameTok)
	}
	p.advance()

	var items []ast.Expression
	p.skipSeparatorsNoStmts()
	if p.atWord("in") {
		p.advance()
		for p.cur().Type == lexer.WORD || p.cur().Type == lexer.ASSIGNMENT {
			items = append(items, p.wordExpr(p.advance()))
		}
	}
	p.skipSeparatorsNoStmts()

	body, done, err := p.parseDoDone()
	if err != nil {
		return nil, err
	}
	return &ast.Select{
		Var:   nameTok.Value,
		Items: items,
		Body:  body,
		Span:  spanBetween(spanOf(kw), spanOf(done)),
	}, nil
}

func (p *Parser) parseFunctionKeyword() (ast.Statement, error) {
	kw := p.advance() // function

	nameTok := p.cur()
	if nameTok.Type != lexer.WORD {
		return nil, p.expectedError("function name", nameTok)
	}
	p.advance()

	// optional () after the name
	if p.cur().Type == lexer.LPAREN && p.peek().Type == lexer.RPAREN {
		p.advance()
		p.advance()
	}
	p.skipNewlinesOnly()

	body, err := p.parseCommand()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDef{
		Name: nameTok.Value,
		Body: body,
		Span: spanBetween(spanOf(kw), body.GetSpan()),
	}, nil
}

func (p *Parser) parseFunctionParens() (ast.Statement, error) {
	nameTok := p.advance() // name
	p.advance()            // (
	if p.cur().Type != lexer.RPAREN {
		return nil, p.expectedError("')' in function definition", p.cur())
	}
	p.advance() // )
	p.skipNewlinesOnly()

	body, err := p.parseCommand()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDef{
		Name: nameTok.Value,
		Body: body,
		Span: spanBetween(spanOf(nameTok), body.GetSpan()),
	}, nil
}

func (p *Parser) parseCoproc() (ast.Statement, error) {
	kw := p.advance() // coproc

	name := ""
	// coproc NAME { ... } names the co-process
	if p.cur().Type == lexer.WORD && p.peek().Type == lexer.LBRACE {
		name = p.advance().Value
	}
	cmd, err := p.parseCommand()
	if err != nil {
		return nil, err
	}
	return &ast.Coproc{
		Name: name,
		Cmd:  cmd,
		Span: spanBetween(spanOf(kw), cmd.GetSpan()),
	}, nil
}

func (p *Parser) parseReturnExit(isReturn bool) (ast.Statement, error) {
	kw := p.advance()

	var code ast.Expression
	span := spanOf(kw)
	if tok := p.cur(); tok.Type == lexer.WORD {
		p.advance()
		code = p.wordExpr(tok)
		span = spanBetween(span, spanOf(tok))
	}
	if isReturn {
		return &ast.Return{Code: code, Span: span}, nil
	}
	return &ast.Exit{Code: code, Span: span}, nil
}

func (p *Parser) parseExport() (ast.Statement, error) {
	p.advance() // export
	tok := p.advance()
	stmt, err := p.assignmentFromToken(tok)
	if err != nil {
		return nil, err
	}
	stmt.Exported = true
	return stmt, nil
}

// parseAssignmentOrCommand handles a leading ASSIGNMENT token: either
// prefix assignments for a command (FOO=bar cmd) or standalone
// variable assignments.
func (p *Parser) parseAssignmentOrCommand() (ast.Statement, error) {
	// look ahead past consecutive assignments for a command word
	i := p.pos
	for i < len(p.tokens) && p.tokens[i].Type == lexer.ASSIGNMENT {
		i++
	}
	if i < len(p.tokens) {
		t := p.tokens[i]
		if t.Type == lexer.WORD || t.Type.IsRedirect() {
			return p.parseSimpleCommand()
		}
	}
	return p.assignmentFromToken(p.advance())
}

// assignmentFromToken splits NAME=value, NAME+=value or
// NAME[index]=value into an Assignment node.
func (p *Parser) assignmentFromToken(tok lexer.Token) (*ast.Assignment, error) {
	raw := tok.Value
	eq := -1
	depth := 0
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '[':
			depth++
		case ']':
			depth--
		case '=':
			if depth == 0 {
				eq = i
			}
		}
		if eq >= 0 {
			break
		}
	}
	if eq <= 0 {
		return nil, p.newParseError(tok, "malformed assignment %q", raw)
	}

	name := raw[:eq]
	appendOp := strings.HasSuffix(name, "+")
	if appendOp {
		name = name[:len(name)-1]
	}
	index := ""
	if br := strings.IndexByte(name, '['); br >= 0 {
		index = strings.TrimSuffix(name[br+1:], "]")
		name = name[:br]
	}

	value := raw[eq+1:]
	node := &ast.Assignment{
		Name:   name,
		Index:  index,
		Append: appendOp,
		Span:   spanOf(tok),
	}
	if value != "" {
		node.Value = p.valueExpr(value, tok)
	}
	return node, nil
}

// valueExpr classifies an assignment's right-hand side
func (p *Parser) valueExpr(value string, tok lexer.Token) ast.Expression {
	span := spanOf(tok)
	if strings.HasPrefix(value, "(") && strings.HasSuffix(value, ")") {
		inner := value[1 : len(value)-1]
		arr := &ast.ArrayLiteral{Span: span}
		sub := lexer.New(inner)
		for _, t := range sub.TokenizeToSlice() {
			if t.Type == lexer.WORD || t.Type == lexer.ASSIGNMENT {
				elem := t
				elem.Pos = tok.Pos
				elem.End = tok.End
				arr.Elements = append(arr.Elements, p.wordExpr(elem))
			}
		}
		return arr
	}
	fake := tok
	fake.Value = value
	return p.wordExpr(fake)
}

// parseSimpleCommand collects assignment prefixes, the command name,
// arguments and redirects up to the next separator.
func (p *Parser) parseSimpleCommand() (ast.Statement, error) {
	var prefix []*ast.Assignment
	var words []lexer.Token
	var redirects []*ast.Redirect
	start := p.cur()

	for p.cur().Type == lexer.ASSIGNMENT && len(words) == 0 {
		a, err := p.assignmentFromToken(p.advance())
		if err != nil {
			return nil, err
		}
		prefix = append(prefix, a)
	}

	for {
		tok := p.cur()
		switch {
		case tok.Type == lexer.WORD || tok.Type == lexer.ASSIGNMENT:
			words = append(words, tok)
			p.advance()
		case tok.Type.IsRedirect():
			// an adjacent numeric word is the file descriptor: 2>err
			fd := ""
			if n := len(words); n > 0 && isAllDigits(words[n-1].Value) &&
				words[n-1].End.Offset == tok.Pos.Offset {
				fd = words[n-1].Value
				words = words[:n-1]
			}
			r, err := p.parseRedirect(fd)
			if err != nil {
				return nil, err
			}
			redirects = append(redirects, r)
		case tok.Type == lexer.ILLEGAL:
			return nil, p.newParseError(tok, "%s", tok.Value)
		default:
			goto done
		}
	}
done:

	if len(words) == 0 && len(prefix) == 0 && len(redirects) == 0 {
		return nil, p.expectedError("command", p.cur())
	}

	cmd := &ast.SimpleCommand{
		Prefix:    prefix,
		Redirects: redirects,
		Span:      spanOf(start),
	}
	if len(words) > 0 {
		cmd.Name = p.wordExpr(words[0])
		last := words[len(words)-1]
		cmd.Span = spanBetween(spanOf(start), spanOf(last))

		// [ ... ] and [[ ... ]] become a test expression argument
		if name := words[0].Value; name == "[" || name == "[[" {
			if test, ok := p.testExprFromWords(name, words); ok {
				cmd.Args = []ast.Expression{test}
				return cmd, nil
			}
		}
		for _, w := range words[1:] {
			cmd.Args = append(cmd.Args, p.wordExpr(w))
		}
	}
	return cmd, nil
}

var redirOps = map[lexer.TokenType]ast.RedirOp{
	lexer.LT:         ast.RedirIn,
	lexer.GT:         ast.RedirOut,
	lexer.DGREAT:     ast.RedirAppend,
	lexer.LESSGREAT:  ast.RedirInOut,
	lexer.DLESS:      ast.RedirHeredoc,
	lexer.DLESS_DASH: ast.RedirHeredocStrip,
	lexer.TLESS:      ast.RedirHerestring,
	lexer.GREAT_AND:  ast.RedirDupOut,
	lexer.LESS_AND:   ast.RedirDupIn,
	lexer.AMP_GREAT:  ast.RedirAll,
	lexer.AMP_DGREAT: ast.RedirAllAppend,
	lexer.CLOBBER:    ast.RedirClobber,
}

func (p *Parser) parseRedirect(fd string) (*ast.Redirect, error) {
	opTok := p.advance()
	op := redirOps[opTok.Type]

	target := p.cur()
	if target.Type != lexer.WORD && target.Type != lexer.ASSIGNMENT {
		return nil, p.expectedError("redirection target", target)
	}
	p.advance()

	r := &ast.Redirect{
		Op:     op,
		FD:     fd,
		Target: p.wordExpr(target),
		Span:   spanBetween(spanOf(opTok), spanOf(target)),
	}
	if op == ast.RedirHeredoc || op == ast.RedirHeredocStrip {
		r.QuotedDelim = target.QuotedDelim
		p.pending = append(p.pending, r)
	}
	return r, nil
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
