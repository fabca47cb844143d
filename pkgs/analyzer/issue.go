package analyzer

import (
	"fmt"

	"github.com/shellpure/shellpure/pkgs/ast"
)

// Category classifies what property of the script a rule protects
type Category int

const (
	Determinism Category = iota
	Idempotency
	Security
	Portability
	ParallelSafety
	Performance
	ErrorHandling
	Reproducibility
)

var categoryNames = [...]string{
	Determinism:     "determinism",
	Idempotency:     "idempotency",
	Security:        "security",
	Portability:     "portability",
	ParallelSafety:  "parallel-safety",
	Performance:     "performance",
	ErrorHandling:   "error-handling",
	Reproducibility: "reproducibility",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) && int(c) >= 0 {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Categories returns all categories in declaration order
func Categories() []Category {
	out := make([]Category, len(categoryNames))
	for i := range categoryNames {
		out[i] = Category(i)
	}
	return out
}

// CategoryFromName resolves a category by its string name
func CategoryFromName(name string) (Category, bool) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), true
		}
	}
	return 0, false
}

// Severity grades how urgent an issue is
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

var severityNames = [...]string{Info: "info", Warning: "warning", Error: "error"}

func (s Severity) String() string {
	if int(s) < len(severityNames) && int(s) >= 0 {
		return severityNames[s]
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Issue is one finding of the semantic analyzer. Issues are
// independent; multiple rules may fire on the same span.
type Issue struct {
	Rule       string   `json:"rule"`
	Category   Category `json:"-"`
	Severity   Severity `json:"-"`
	Span       ast.Span `json:"span"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"` // optional fix text
}

// Config toggles rule categories. The zero value disables everything;
// use DefaultConfig for the documented defaults.
type Config struct {
	Enabled map[Category]bool

	// StrictIdempotency also flags append-style operations that are
	// only conditionally idempotent.
	StrictIdempotency bool

	// TypeCheck verifies test-expression operand types, e.g. numeric
	// comparisons against non-numeric words.
	TypeCheck bool
}

// DefaultConfig enables every detection category
func DefaultConfig() Config {
	enabled := make(map[Category]bool, len(categoryNames))
	for _, c := range Categories() {
		enabled[c] = true
	}
	return Config{Enabled: enabled}
}

func (c Config) enabled(cat Category) bool {
	return c.Enabled[cat]
}
