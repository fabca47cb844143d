package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shellpure/shellpure/pkgs/ast"
	"github.com/shellpure/shellpure/pkgs/purifier"
)

func sampleReport(t *testing.T) *Report {
	t.Helper()
	res, err := purifier.Purify(
		"set -e\nmkdir /tmp/dir\nID=$RANDOM\n", "build.sh", ast.Shell, purifier.DefaultConfig())
	require.NoError(t, err)
	return FromResult(res)
}

func TestFromResult(t *testing.T) {
	r := sampleReport(t)

	assert.Equal(t, "build.sh", r.File)
	assert.Equal(t, "shell", r.Dialect)
	require.Len(t, r.Records, 2)

	assert.Equal(t, "IDEM001", r.Records[0].Rule)
	assert.True(t, r.Records[0].Fixed)
	assert.Equal(t, "DET001", r.Records[1].Rule)
	assert.False(t, r.Records[1].Fixed)

	assert.Equal(t, 1, r.Applied)
	assert.Equal(t, 1, r.Manual)
}

func TestTextFormat(t *testing.T) {
	out := sampleReport(t).Text()

	assert.Contains(t, out, "build.sh:2:1: warning [IDEM001]")
	assert.Contains(t, out, "(fixed)")
	assert.Contains(t, out, "[DET001]")
	assert.Contains(t, out, "2 finding(s), 1 fixed, 1 manual")
}

func TestJSONFormatIsValidAndStable(t *testing.T) {
	r := sampleReport(t)
	first, err := r.JSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(first), &decoded))
	assert.Equal(t, "build.sh", decoded["file"])

	second, err := r.JSON()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMarkdownFormat(t *testing.T) {
	out := sampleReport(t).Markdown()

	assert.True(t, strings.HasPrefix(out, "## build.sh\n"))
	assert.Contains(t, out, "| Location | Rule | Severity | Status | Message |")
	assert.Contains(t, out, "| build.sh:2 | IDEM001 | warning | fixed |")
}

func TestUnknownFormat(t *testing.T) {
	_, err := sampleReport(t).Render(Format("yaml"))
	assert.Error(t, err)
}

type externalFinding struct {
	rule, file, msg string
	line, col       int
}

func (e externalFinding) RuleID() string               { return e.rule }
func (e externalFinding) Location() (string, int, int) { return e.file, e.line, e.col }
func (e externalFinding) Describe() string             { return e.msg }

func TestMergeKeepsPositionOrder(t *testing.T) {
	r := sampleReport(t)
	r.Merge([]IssueRecord{
		externalFinding{rule: "EXT001", file: "build.sh", line: 1, col: 1, msg: "shebang missing"},
	})

	require.Len(t, r.Records, 3)
	assert.Equal(t, "EXT001", r.Records[0].Rule, "merged record must sort to its position")
	assert.Equal(t, "external", r.Records[0].Category)
}

func TestFingerprintIsDeterministic(t *testing.T) {
	a, err := sampleReport(t).Fingerprint()
	require.NoError(t, err)
	b, err := sampleReport(t).Fingerprint()
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64) // blake2b-256 in hex

	other, err := purifier.Purify("set -e\nrm x\n", "other.sh", ast.Shell, purifier.DefaultConfig())
	require.NoError(t, err)
	c, err := FromResult(other).Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
