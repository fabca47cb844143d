package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shellpure/shellpure/pkgs/analyzer"
	"github.com/shellpure/shellpure/pkgs/errors"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.TrackSideEffects)
	assert.False(t, cfg.StrictIdempotency)
	assert.False(t, cfg.EmitGuards)

	p := cfg.Pipeline()
	for _, cat := range analyzer.Categories() {
		assert.True(t, p.Analyzer.Enabled[cat], "category %s must default on", cat)
	}
	assert.True(t, p.Generate.CollapseBlankLines)
	assert.True(t, p.Generate.ConsolidateStatements)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
strict_idempotency: true
emit_guards: true
max_line_length: 100
categories:
  security: false
`))
	require.NoError(t, err)

	assert.True(t, cfg.StrictIdempotency)
	assert.True(t, cfg.EmitGuards)
	assert.Equal(t, 100, cfg.MaxLineLength)

	p := cfg.Pipeline()
	assert.True(t, p.Analyzer.StrictIdempotency)
	assert.True(t, p.Plan.EmitGuards)
	assert.Equal(t, 100, p.Generate.MaxLineLength)
	assert.False(t, p.Analyzer.Enabled[analyzer.Security])
	assert.True(t, p.Analyzer.Enabled[analyzer.Determinism])
}

func TestUnknownOptionSuggestion(t *testing.T) {
	_, err := Parse([]byte("strict_idempotence: true\n"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrUnknownOption))
	assert.Contains(t, err.Error(), "strict_idempotency")
	assert.Contains(t, err.Error(), "did you mean")
}

func TestUnknownCategorySuggestion(t *testing.T) {
	_, err := Parse([]byte("categories:\n  determinsm: false\n"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrUnknownOption))
	assert.Contains(t, err.Error(), "determinism")
}

func TestSchemaRejectsWrongTypes(t *testing.T) {
	_, err := Parse([]byte("max_line_length: wide\n"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrConfigValidation))

	_, err = Parse([]byte("emit_guards: 3\n"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrConfigValidation))

	_, err = Parse([]byte("max_line_length: -5\n"))
	require.Error(t, err)
}

func TestTrackSideEffectsOffDisablesParallelSafety(t *testing.T) {
	cfg, err := Parse([]byte("track_side_effects: false\n"))
	require.NoError(t, err)
	p := cfg.Pipeline()
	assert.False(t, p.Analyzer.Enabled[analyzer.ParallelSafety])
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "purify.yaml")
	require.NoError(t, os.WriteFile(path, []byte("type_check: true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.TypeCheck)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrConfigRead))
}

func TestEmptyConfigIsValid(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.True(t, cfg.TrackSideEffects)
}
