package lexer

import (
	"strings"

	"go.uber.org/zap"
)

// ASCII character lookup tables for fast classification
var (
	isMetachar  [128]bool // characters that terminate an unquoted word
	isNameStart [128]bool
	isNamePart  [128]bool
	isGlobChar  [128]bool
)

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)
		isNameStart[i] = ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
		isNamePart[i] = isNameStart[i] || ('0' <= ch && ch <= '9')
		isGlobChar[i] = ch == '*' || ch == '?' || ch == '['
	}
	for _, ch := range []byte{' ', '\t', '\n', ';', '&', '|', '<', '>', '(', ')'} {
		isMetachar[ch] = true
	}
}

// pendingHeredoc records a here-document whose body has not been read yet.
// Bodies are collected when the terminating newline is reached.
type pendingHeredoc struct {
	delim       string
	quoted      bool
	stripTabs   bool // <<- strips leading tabs from body lines
	operatorPos Position
}

// Lexer tokenizes shell source text
type Lexer struct {
	input  string
	pos    int // current byte offset
	line   int
	column int

	// Command-position tracking: `{`, `}` and `!` are reserved words
	// only at the start of a command, and NAME=value is an assignment
	// only there.
	atCommandStart bool

	// set after the `function` keyword so the name that follows puts
	// the lexer back in command position for the body opener
	afterFunction bool

	pending []pendingHeredoc
	queue   []Token // tokens ready to emit before scanning continues

	logger *zap.Logger
}

// Option configures the lexer
type Option func(*Lexer)

// WithLogger attaches a debug logger. The default is a nop logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Lexer) { l.logger = logger }
}

// New creates a Lexer for the given source text
func New(input string, opts ...Option) *Lexer {
	l := &Lexer{
		input:          input,
		line:           1,
		column:         1,
		atCommandStart: true,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// TokenizeToSlice scans the entire input and returns all tokens,
// terminated by an EOF token.
func (l *Lexer) TokenizeToSlice() []Token {
	var tokens []Token
	for {
		tok := l.Next()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}

func (l *Lexer) position() Position {
	return Position{Line: l.line, Column: l.column, Offset: l.pos}
}

func (l *Lexer) ch() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

// advance moves past the current byte, maintaining line/column counters
func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}
	if l.input[l.pos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

// Next returns the next token
func (l *Lexer) Next() Token {
	if len(l.queue) > 0 {
		tok := l.queue[0]
		l.queue = l.queue[1:]
		return tok
	}

	l.skipBlank()

	start := l.position()
	ch := l.ch()

	if ch == 0 {
		return Token{Type: EOF, Pos: start, End: start}
	}

	// Line continuation: backslash-newline is invisible to the grammar
	if ch == '\\' && l.peekAt(1) == '\n' {
		l.advanceN(2)
		return l.Next()
	}

	if ch == '\n' {
		l.advance()
		tok := Token{Type: NEWLINE, Value: "\n", Pos: start, End: l.position()}
		l.atCommandStart = true
		l.afterFunction = false
		// Newline triggers collection of any pending here-document bodies
		l.collectHeredocs()
		return tok
	}

	if ch == '#' {
		return l.scanComment(start)
	}

	if tok, ok := l.scanOperator(start); ok {
		return tok
	}

	return l.scanWord(start)
}

func (l *Lexer) skipBlank() {
	for {
		ch := l.ch()
		if ch == ' ' || ch == '\t' || ch == '\r' {
			l.advance()
			continue
		}
		return
	}
}

func (l *Lexer) scanComment(start Position) Token {
	begin := l.pos
	for l.ch() != 0 && l.ch() != '\n' {
		l.advance()
	}
	return Token{Type: COMMENT, Value: l.input[begin:l.pos], Pos: start, End: l.position()}
}

// operator table ordered for maximal munch: longer operators first
var operators = []struct {
	text string
	typ  TokenType
}{
	{";;&", DSEMI_AMP},
	{"<<<", TLESS},
	{"<<-", DLESS_DASH},
	{"&>>", AMP_DGREAT},
	{";;", DSEMI},
	{";&", SEMI_AMP},
	{"&&", AND_AND},
	{"||", OR_OR},
	{"|&", PIPE_AMP},
	{"<<", DLESS},
	{">>", DGREAT},
	{"<>", LESSGREAT},
	{">&", GREAT_AND},
	{"<&", LESS_AND},
	{"&>", AMP_GREAT},
	{">|", CLOBBER},
	{";", SEMI},
	{"&", AMP},
	{"|", PIPE},
	{"<", LT},
	{">", GT},
	{"(", LPAREN},
	{")", RPAREN},
}

func (l *Lexer) scanOperator(start Position) (Token, bool) {
	rest := l.input[l.pos:]
	for _, op := range operators {
		if !strings.HasPrefix(rest, op.text) {
			continue
		}
		l.advanceN(len(op.text))
		tok := Token{Type: op.typ, Value: op.text, Pos: start, End: l.position()}
		l.afterFunction = false

		switch op.typ {
		case DLESS, DLESS_DASH:
			l.registerHeredoc(tok)
		case SEMI, AMP, AND_AND, OR_OR, PIPE, PIPE_AMP, LPAREN, DSEMI, SEMI_AMP, DSEMI_AMP, RPAREN:
			// RPAREN keeps command position for case-arm bodies: `a) x=1 ;;`
			l.atCommandStart = true
		default:
			l.atCommandStart = false
		}
		return tok, true
	}
	return Token{}, false
}

// registerHeredoc reads the delimiter word following << or <<- and
// queues the body for collection at the next newline.
func (l *Lexer) registerHeredoc(op Token) {
	l.skipBlank()
	delimStart := l.position()
	raw, quoted, _, _ := l.scanWordText()

	delim := stripQuotes(raw)
	l.pending = append(l.pending, pendingHeredoc{
		delim:       delim,
		quoted:      quoted,
		stripTabs:   op.Type == DLESS_DASH,
		operatorPos: op.Pos,
	})
	l.queue = append(l.queue, Token{
		Type:         WORD,
		Value:        raw,
		Pos:          delimStart,
		End:          l.position(),
		HeredocDelim: delim,
		QuotedDelim:  quoted,
	})
}

// collectHeredocs reads the bodies of all pending here-documents,
// queuing one HEREDOC_BODY token per document in registration order.
func (l *Lexer) collectHeredocs() {
	for _, hd := range l.pending {
		bodyStart := l.position()
		var body strings.Builder
		terminated := false

		for l.pos < len(l.input) {
			lineStart := l.pos
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.advance()
			}
			line := l.input[lineStart:l.pos]
			if l.pos < len(l.input) {
				l.advance() // consume newline
			}

			check := line
			if hd.stripTabs {
				check = strings.TrimLeft(line, "\t")
			}
			if check == hd.delim {
				terminated = true
				break
			}
			body.WriteString(line)
			body.WriteByte('\n')
		}

		tok := Token{
			Type:         HEREDOC_BODY,
			Value:        body.String(),
			Pos:          bodyStart,
			End:          l.position(),
			HeredocDelim: hd.delim,
			QuotedDelim:  hd.quoted,
			FullyQuoted:  hd.quoted,
		}
		if !terminated {
			tok.Type = ILLEGAL
			tok.Value = "unterminated here-document delimited by " + hd.delim
			tok.Pos = hd.operatorPos
		}
		l.queue = append(l.queue, tok)
	}
	l.pending = nil
}

// scanWordText consumes one shell word, returning the raw text, whether
// the whole word is quoted, whether it contains an active expansion, and
// an error message ("" when the word is well formed).
func (l *Lexer) scanWordText() (raw string, fullyQuoted, hasExpansion bool, errMsg string) {
	begin := l.pos
	sawUnquoted := false
	sawQuoted := false

	for {
		ch := l.ch()
		if ch == 0 {
			break
		}
		if ch < 128 && isMetachar[ch] {
			break
		}

		switch {
		case ch == '\\':
			if l.peekAt(1) == '\n' {
				l.advanceN(2) // line continuation inside a word
				continue
			}
			l.advanceN(2)
			sawUnquoted = true

		case ch == '\'':
			if msg := l.scanSingleQuoted(); msg != "" {
				return l.input[begin:l.pos], false, hasExpansion, msg
			}
			sawQuoted = true

		case ch == '"':
			exp, msg := l.scanDoubleQuoted()
			if msg != "" {
				return l.input[begin:l.pos], false, hasExpansion, msg
			}
			hasExpansion = hasExpansion || exp
			sawQuoted = true

		case ch == '$' && l.peekAt(1) == '\'':
			l.advanceN(2)
			if msg := l.scanUntilUnescaped('\'', "unterminated $'...' string"); msg != "" {
				return l.input[begin:l.pos], false, hasExpansion, msg
			}
			sawQuoted = true

		case ch == '`':
			l.advance()
			if msg := l.scanUntilUnescaped('`', "unterminated backtick substitution"); msg != "" {
				return l.input[begin:l.pos], false, hasExpansion, msg
			}
			hasExpansion = true
			sawUnquoted = true

		case ch == '$' && l.peekAt(1) == '(':
			if msg := l.scanDollarParen(); msg != "" {
				return l.input[begin:l.pos], false, hasExpansion, msg
			}
			hasExpansion = true
			sawUnquoted = true

		case ch == '$' && l.peekAt(1) == '{':
			if msg := l.scanBraceExpansion(); msg != "" {
				return l.input[begin:l.pos], false, hasExpansion, msg
			}
			hasExpansion = true
			sawUnquoted = true

		case ch == '$':
			l.advance()
			for c := l.ch(); c != 0 && c < 128 && isNamePart[c]; c = l.ch() {
				l.advance()
			}
			// special parameters: $?, $#, $$, $!, $@, $*, $0-$9, $-
			if c := l.ch(); c != 0 && strings.IndexByte("?#$!@*-0123456789", c) >= 0 && l.input[l.pos-1] == '$' {
				l.advance()
			}
			hasExpansion = true
			sawUnquoted = true

		default:
			l.advance()
			sawUnquoted = true
		}
	}

	raw = l.input[begin:l.pos]
	fullyQuoted = sawQuoted && !sawUnquoted && !hasExpansion
	return raw, fullyQuoted, hasExpansion, ""
}

func (l *Lexer) scanSingleQuoted() string {
	l.advance() // opening quote
	for {
		ch := l.ch()
		if ch == 0 {
			return "unterminated single-quoted string"
		}
		if ch == '\'' {
			l.advance()
			return ""
		}
		l.advance()
	}
}

func (l *Lexer) scanDoubleQuoted() (hasExpansion bool, errMsg string) {
	l.advance() // opening quote
	for {
		ch := l.ch()
		switch {
		case ch == 0:
			return hasExpansion, "unterminated double-quoted string"
		case ch == '"':
			l.advance()
			return hasExpansion, ""
		case ch == '\\':
			l.advanceN(2)
		case ch == '$' && l.peekAt(1) == '(':
			if msg := l.scanDollarParen(); msg != "" {
				return hasExpansion, msg
			}
			hasExpansion = true
		case ch == '$' && l.peekAt(1) == '{':
			if msg := l.scanBraceExpansion(); msg != "" {
				return hasExpansion, msg
			}
			hasExpansion = true
		case ch == '$':
			l.advance()
			hasExpansion = true
		case ch == '`':
			l.advance()
			if msg := l.scanUntilUnescaped('`', "unterminated backtick substitution"); msg != "" {
				return hasExpansion, msg
			}
			hasExpansion = true
		default:
			l.advance()
		}
	}
}

func (l *Lexer) scanUntilUnescaped(closer byte, errMsg string) string {
	for {
		ch := l.ch()
		if ch == 0 {
			return errMsg
		}
		if ch == '\\' {
			l.advanceN(2)
			continue
		}
		if ch == closer {
			l.advance()
			return ""
		}
		l.advance()
	}
}

// scanDollarParen consumes $(...) or $((...)), matching delimiters by
// depth so nested substitutions stay intact.
func (l *Lexer) scanDollarParen() string {
	l.advanceN(2) // $(
	arith := false
	if l.ch() == '(' {
		l.advance()
		arith = true
	}
	depth := 1
	for {
		ch := l.ch()
		switch {
		case ch == 0:
			if arith {
				return "unterminated arithmetic expansion"
			}
			return "unterminated command substitution"
		case ch == '\\':
			l.advanceN(2)
		case ch == '\'':
			if msg := l.scanSingleQuoted(); msg != "" {
				return msg
			}
		case ch == '"':
			if _, msg := l.scanDoubleQuoted(); msg != "" {
				return msg
			}
		case ch == '(':
			depth++
			l.advance()
		case ch == ')':
			depth--
			l.advance()
			if depth == 0 {
				if arith && l.ch() == ')' {
					l.advance()
				}
				return ""
			}
		default:
			l.advance()
		}
	}
}

// scanParenGroup consumes a balanced ( ... ) group, quotes honored
func (l *Lexer) scanParenGroup() string {
	l.advance() // (
	depth := 1
	for {
		ch := l.ch()
		switch {
		case ch == 0:
			return "unterminated array initializer"
		case ch == '\\':
			l.advanceN(2)
		case ch == '\'':
			if msg := l.scanSingleQuoted(); msg != "" {
				return msg
			}
		case ch == '"':
			if _, msg := l.scanDoubleQuoted(); msg != "" {
				return msg
			}
		case ch == '(':
			depth++
			l.advance()
		case ch == ')':
			depth--
			l.advance()
			if depth == 0 {
				return ""
			}
		default:
			l.advance()
		}
	}
}

func (l *Lexer) scanBraceExpansion() string {
	l.advanceN(2) // ${
	depth := 1
	for {
		ch := l.ch()
		switch {
		case ch == 0:
			return "unterminated parameter expansion"
		case ch == '\\':
			l.advanceN(2)
		case ch == '{':
			depth++
			l.advance()
		case ch == '}':
			depth--
			l.advance()
			if depth == 0 {
				return ""
			}
		default:
			l.advance()
		}
	}
}

func (l *Lexer) scanWord(start Position) Token {
	// Reserved single-character words in command position
	if l.atCommandStart {
		ch := l.ch()
		if (ch == '{' || ch == '}' || ch == '!') && isWordBoundary(l.peekAt(1)) {
			l.advance()
			typ := LBRACE
			switch ch {
			case '}':
				typ = RBRACE
			case '!':
				typ = BANG
			}
			if typ == BANG || typ == LBRACE {
				l.atCommandStart = true
			}
			return Token{Type: typ, Value: string(ch), Pos: start, End: l.position()}
		}
	}

	raw, fullyQuoted, hasExpansion, errMsg := l.scanWordText()
	end := l.position()

	if errMsg != "" {
		l.logger.Debug("lex error", zap.String("msg", errMsg), zap.Int("line", start.Line))
		return Token{Type: ILLEGAL, Value: errMsg, Pos: start, End: end}
	}

	tok := Token{
		Type:         WORD,
		Value:        raw,
		Pos:          start,
		End:          end,
		HasExpansion: hasExpansion,
		FullyQuoted:  fullyQuoted,
	}
	if l.atCommandStart && isAssignmentWord(raw) {
		// array initializer: A=(a b c) continues the assignment word
		if l.ch() == '(' && strings.HasSuffix(raw, "=") {
			if msg := l.scanParenGroup(); msg != "" {
				return Token{Type: ILLEGAL, Value: msg, Pos: start, End: l.position()}
			}
			tok.Value = l.input[start.Offset:l.pos]
			tok.End = l.position()
		}
		tok.Type = ASSIGNMENT
		// assignments keep command position for the word that follows
		return tok
	}
	if l.atCommandStart && raw == "function" {
		l.afterFunction = true
		l.atCommandStart = false
		return tok
	}
	if l.afterFunction {
		// the function name; `{` after it opens the body
		l.afterFunction = false
		l.atCommandStart = true
		return tok
	}
	if !declarationBuiltins[raw] {
		l.atCommandStart = false
	}
	return tok
}

// declaration builtins take NAME=value arguments, so the words that
// follow them are still lexed in command position
var declarationBuiltins = map[string]bool{
	"export": true, "local": true, "declare": true, "readonly": true, "typeset": true,
}

func isWordBoundary(ch byte) bool {
	return ch == 0 || ch == ' ' || ch == '\t' || ch == '\n' || ch == ';' || ch == '&' || ch == '|' || ch == ')'
}

// isAssignmentWord reports whether raw has the shape NAME=value,
// NAME+=value or NAME[index]=value.
func isAssignmentWord(raw string) bool {
	if len(raw) == 0 || !(raw[0] < 128 && isNameStart[raw[0]]) {
		return false
	}
	i := 1
	for i < len(raw) && raw[i] < 128 && isNamePart[raw[i]] {
		i++
	}
	if i < len(raw) && raw[i] == '[' {
		depth := 1
		i++
		for i < len(raw) && depth > 0 {
			switch raw[i] {
			case '[':
				depth++
			case ']':
				depth--
			}
			i++
		}
		if depth != 0 {
			return false
		}
	}
	if i < len(raw) && raw[i] == '+' {
		i++
	}
	return i < len(raw) && raw[i] == '='
}

// stripQuotes removes one level of surrounding quotes from a word
func stripQuotes(raw string) string {
	if len(raw) >= 2 {
		if (raw[0] == '\'' && raw[len(raw)-1] == '\'') ||
			(raw[0] == '"' && raw[len(raw)-1] == '"') {
			return raw[1 : len(raw)-1]
		}
	}
	return strings.ReplaceAll(raw, "\\", "")
}
