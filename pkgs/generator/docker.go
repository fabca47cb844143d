package generator

import (
	"strings"

	"github.com/shellpure/shellpure/pkgs/ast"
	"github.com/shellpure/shellpure/pkgs/errors"
)

func renderDockerfile(script *ast.Script, opts Options) (string, error) {
	stmts := script.Statements
	if opts.ConsolidateStatements {
		stmts = consolidateRuns(stmts)
	}

	var sb strings.Builder
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.Comment:
			sb.WriteString("#" + n.Text + "\n")
		case *ast.Blank:
			count := n.Count
			if opts.CollapseBlankLines && !opts.PreserveFormatting && count > 1 {
				count = 1
			}
			for i := 0; i < count; i++ {
				sb.WriteByte('\n')
			}
		case *ast.DockerFrom:
			sb.WriteString(n.String() + "\n")
		case *ast.DockerInstruction:
			text, err := instructionText(n, opts)
			if err != nil {
				return "", err
			}
			sb.WriteString(text + "\n")
		default:
			return "", errors.Newf(errors.ErrGeneration, "cannot render %T in a Dockerfile", s)
		}
	}
	return sb.String(), nil
}

func instructionText(n *ast.DockerInstruction, opts Options) (string, error) {
	args := strings.TrimSpace(n.Args)
	if args == "" && n.Shell != nil {
		// the shell body was rewritten; regenerate the argument text
		w := &shellWriter{opts: opts}
		text, err := w.inlineList(n.Shell.Statements)
		if err != nil {
			return "", err
		}
		args = text
	}
	return n.Name + " " + args, nil
}

// consolidateRuns merges consecutive shell-form RUN instructions into
// one layer, joined with && so a failure still stops the build.
func consolidateRuns(stmts []ast.Statement) []ast.Statement {
	out := make([]ast.Statement, 0, len(stmts))
	for _, s := range stmts {
		inst, ok := s.(*ast.DockerInstruction)
		if !ok || inst.Name != "RUN" || inst.JSONForm {
			out = append(out, s)
			continue
		}
		if len(out) > 0 && strings.TrimSpace(inst.Args) != "" {
			if prev, ok := out[len(out)-1].(*ast.DockerInstruction); ok && prev.Name == "RUN" && !prev.JSONForm && strings.TrimSpace(prev.Args) != "" {
				merged := *prev
				merged.Args = strings.TrimSpace(prev.Args) + " && " + strings.TrimSpace(inst.Args)
				merged.Shell = nil
				out[len(out)-1] = &merged
				continue
			}
		}
		out = append(out, s)
	}
	return out
}
