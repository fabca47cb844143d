package lexer

import "fmt"

// TokenType represents the type of token in shell source
type TokenType int

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Words and assignments
	WORD       // any shell word, quoting preserved in Value
	ASSIGNMENT // NAME=value or NAME+=value in command position

	// Statement separators
	NEWLINE   // \n
	SEMI      // ;
	AMP       // & (background)
	DSEMI     // ;; (case arm terminator)
	SEMI_AMP  // ;& (case fall-through)
	DSEMI_AMP // ;;& (case continue matching)

	// Chain operators
	PIPE     // |
	PIPE_AMP // |& (pipe stdout+stderr)
	AND_AND  // &&
	OR_OR    // ||
	BANG     // ! (negation in command position)

	// Grouping
	LPAREN // (
	RPAREN // )
	LBRACE // { (in command position)
	RBRACE // } (in command position)

	// Redirections
	LT           // <
	GT           // >
	DGREAT       // >>
	LESSGREAT    // <>
	DLESS        // <<
	DLESS_DASH   // <<-
	TLESS        // <<< (here-string)
	GREAT_AND    // >&
	LESS_AND     // <&
	AMP_GREAT    // &>
	AMP_DGREAT   // &>>
	CLOBBER      // >|
	HEREDOC_BODY // collected here-document body

	// Comments
	COMMENT // # to end of line
)

// Pre-computed token name lookup for fast debugging
var tokenNames = [...]string{
	EOF:          "EOF",
	ILLEGAL:      "ILLEGAL",
	WORD:         "WORD",
	ASSIGNMENT:   "ASSIGNMENT",
	NEWLINE:      "NEWLINE",
	SEMI:         "SEMI",
	AMP:          "AMP",
	DSEMI:        "DSEMI",
	SEMI_AMP:     "SEMI_AMP",
	DSEMI_AMP:    "DSEMI_AMP",
	PIPE:         "PIPE",
	PIPE_AMP:     "PIPE_AMP",
	AND_AND:      "AND_AND",
	OR_OR:        "OR_OR",
	BANG:         "BANG",
	LPAREN:       "LPAREN",
	RPAREN:       "RPAREN",
	LBRACE:       "LBRACE",
	RBRACE:       "RBRACE",
	LT:           "LT",
	GT:           "GT",
	DGREAT:       "DGREAT",
	LESSGREAT:    "LESSGREAT",
	DLESS:        "DLESS",
	DLESS_DASH:   "DLESS_DASH",
	TLESS:        "TLESS",
	GREAT_AND:    "GREAT_AND",
	LESS_AND:     "LESS_AND",
	AMP_GREAT:    "AMP_GREAT",
	AMP_DGREAT:   "AMP_DGREAT",
	CLOBBER:      "CLOBBER",
	HEREDOC_BODY: "HEREDOC_BODY",
	COMMENT:      "COMMENT",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) && int(t) >= 0 {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// IsCaseTerminator reports whether the token terminates a case arm.
func (t TokenType) IsCaseTerminator() bool {
	return t == DSEMI || t == SEMI_AMP || t == DSEMI_AMP
}

// IsRedirect reports whether the token is a redirection operator.
func (t TokenType) IsRedirect() bool {
	switch t {
	case LT, GT, DGREAT, LESSGREAT, DLESS, DLESS_DASH, TLESS,
		GREAT_AND, LESS_AND, AMP_GREAT, AMP_DGREAT, CLOBBER:
		return true
	}
	return false
}

// Position represents a position in source code
type Position struct {
	Line   int `json:"line"`   // 1-based
	Column int `json:"column"` // 1-based
	Offset int `json:"offset"` // 0-based byte offset
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// QuoteKind classifies how a word (or word segment) was quoted
type QuoteKind int

const (
	Unquoted QuoteKind = iota
	SingleQuoted
	DoubleQuoted
	AnsiQuoted // $'...'
)

// Token represents a lexical token with position information
type Token struct {
	Type  TokenType
	Value string // raw text as written, quotes included for WORD tokens
	Pos   Position
	End   Position

	// Word metadata used by downstream stages.
	// HasExpansion: unquoted or double-quoted $… expansion present.
	// FullyQuoted: entire word covered by single quotes or a quoted
	// heredoc body; expansions inside are literal and never analyzed.
	HasExpansion bool
	FullyQuoted  bool

	// Heredoc metadata (DLESS/DLESS_DASH and HEREDOC_BODY tokens).
	// QuotedDelim means the delimiter was quoted, disabling expansion
	// in the body.
	HeredocDelim string
	QuotedDelim  bool
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Type, t.Value, t.Pos)
}
