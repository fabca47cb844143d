// Package config loads and validates purification settings from YAML.
// Settings are validated against an embedded JSON Schema, and unknown
// keys get close-match suggestions instead of silent acceptance.
package config

import (
	"os"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"gopkg.in/yaml.v3"

	"github.com/shellpure/shellpure/pkgs/analyzer"
	"github.com/shellpure/shellpure/pkgs/errors"
	"github.com/shellpure/shellpure/pkgs/purifier"
)

// Config is the on-disk settings shape
type Config struct {
	StrictIdempotency      bool `yaml:"strict_idempotency"`
	RemoveNonDeterministic bool `yaml:"remove_non_deterministic"`
	TrackSideEffects       bool `yaml:"track_side_effects"`
	TypeCheck              bool `yaml:"type_check"`
	EmitGuards             bool `yaml:"emit_guards"`

	PreserveFormatting   bool `yaml:"preserve_formatting"`
	MaxLineLength        int  `yaml:"max_line_length"`
	SkipBlankLineRemoval bool `yaml:"skip_blank_line_removal"`
	SkipConsolidation    bool `yaml:"skip_consolidation"`

	// Categories toggles detection categories by name; absent
	// categories stay enabled.
	Categories map[string]bool `yaml:"categories"`
}

// Default returns the documented defaults: every detection category
// enabled, formatting normalization on, no behavior-changing edits.
func Default() *Config {
	return &Config{
		TrackSideEffects: true,
	}
}

// Load reads and validates a YAML config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigRead, "reading config file "+path, err)
	}
	return Parse(data)
}

// Parse validates and decodes YAML settings
func Parse(data []byte) (*Config, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrConfigRead, "parsing config YAML", err)
	}
	if err := checkKnownKeys(raw); err != nil {
		return nil, err
	}
	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrConfigRead, "decoding config YAML", err)
	}
	if err := cfg.checkCategories(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var knownOptions = []string{
	"strict_idempotency",
	"remove_non_deterministic",
	"track_side_effects",
	"type_check",
	"emit_guards",
	"preserve_formatting",
	"max_line_length",
	"skip_blank_line_removal",
	"skip_consolidation",
	"categories",
}

func checkKnownKeys(raw map[string]interface{}) error {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if contains(knownOptions, key) {
			continue
		}
		if hint := closestMatch(key, knownOptions); hint != "" {
			return errors.Newf(errors.ErrUnknownOption,
				"unknown option %q (did you mean %q?)", key, hint)
		}
		return errors.Newf(errors.ErrUnknownOption, "unknown option %q", key)
	}
	return nil
}

func (c *Config) checkCategories() error {
	names := make([]string, 0, len(c.Categories))
	for name := range c.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	valid := make([]string, 0, 8)
	for _, cat := range analyzer.Categories() {
		valid = append(valid, cat.String())
	}
	for _, name := range names {
		if _, ok := analyzer.CategoryFromName(name); ok {
			continue
		}
		if hint := closestMatch(name, valid); hint != "" {
			return errors.Newf(errors.ErrUnknownOption,
				"unknown category %q (did you mean %q?)", name, hint)
		}
		return errors.Newf(errors.ErrUnknownOption, "unknown category %q", name)
	}
	return nil
}

// closestMatch finds the best fuzzy candidate, or "" when nothing is
// close enough to suggest
func closestMatch(target string, candidates []string) string {
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) > 0 {
		return ranks[0].Target
	}
	// a typo often is not a subsequence; fall back to edit distance
	best, bestDist := "", 4
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(target, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func contains(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}

// Pipeline maps the settings onto the purification pipeline's knobs
func (c *Config) Pipeline() purifier.Config {
	cfg := purifier.DefaultConfig()

	cfg.Analyzer.StrictIdempotency = c.StrictIdempotency
	cfg.Analyzer.TypeCheck = c.TypeCheck
	if !c.TrackSideEffects {
		cfg.Analyzer.Enabled[analyzer.ParallelSafety] = false
	}
	for name, on := range c.Categories {
		if cat, ok := analyzer.CategoryFromName(name); ok {
			cfg.Analyzer.Enabled[cat] = on
		}
	}

	cfg.Plan.EmitGuards = c.EmitGuards
	cfg.Plan.RemoveNonDeterministic = c.RemoveNonDeterministic

	cfg.Generate.PreserveFormatting = c.PreserveFormatting
	cfg.Generate.MaxLineLength = c.MaxLineLength
	cfg.Generate.CollapseBlankLines = !c.SkipBlankLineRemoval
	cfg.Generate.ConsolidateStatements = !c.SkipConsolidation
	return cfg
}
