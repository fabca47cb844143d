// Package dockerfile parses Dockerfiles into the shared statement
// tree. Shell-form RUN instructions delegate their bodies to the shell
// parser; a body that fails to parse degrades to a raw instruction so
// one bad RUN never rejects the whole file.
package dockerfile

import (
	"fmt"
	"strings"
	"time"

	"github.com/shellpure/shellpure/pkgs/ast"
	"github.com/shellpure/shellpure/pkgs/errors"
	"github.com/shellpure/shellpure/pkgs/parser"
)

// instructions recognized at line start (uppercase)
var knownInstructions = map[string]bool{
	"FROM": true, "RUN": true, "CMD": true, "LABEL": true, "EXPOSE": true,
	"ENV": true, "ADD": true, "COPY": true, "ENTRYPOINT": true, "VOLUME": true,
	"USER": true, "WORKDIR": true, "ARG": true, "ONBUILD": true,
	"STOPSIGNAL": true, "HEALTHCHECK": true, "SHELL": true, "MAINTAINER": true,
}

// Parse parses Dockerfile source text into a Script
func Parse(source, name string) (*ast.Script, error) {
	start := time.Now()
	lines := strings.Split(source, "\n")

	var stmts []ast.Statement
	blanks := 0
	i := 0
	for i < len(lines) {
		raw := lines[i]
		trimmed := strings.TrimSpace(raw)

		if trimmed == "" {
			if !(i == len(lines)-1 && raw == "") {
				blanks++
			}
			i++
			continue
		}
		if blanks > 1 {
			stmts = append(stmts, &ast.Blank{Count: blanks - 1, Span: lineSpan(i, "")})
		}
		blanks = 0

		if strings.HasPrefix(trimmed, "#") {
			stmts = append(stmts, &ast.Comment{
				Text: strings.TrimPrefix(trimmed, "#"),
				Span: lineSpan(i, raw),
			})
			i++
			continue
		}

		// join continuation lines into one logical instruction
		startLine := i
		var sb strings.Builder
		for i < len(lines) {
			line := strings.TrimRight(lines[i], " \t")
			i++
			if strings.HasSuffix(line, "\\") {
				sb.WriteString(strings.TrimSuffix(line, "\\"))
				sb.WriteString(" ")
				continue
			}
			sb.WriteString(line)
			break
		}
		logical := strings.TrimSpace(sb.String())

		fields := strings.SplitN(logical, " ", 2)
		keyword := strings.ToUpper(fields[0])
		if !knownInstructions[keyword] {
			return nil, &errors.ParseError{
				File:    name,
				Line:    startLine + 1,
				Column:  1,
				Context: lines[startLine],
				Message: fmt.Sprintf("unknown instruction %q", fields[0]),
			}
		}
		args := ""
		if len(fields) == 2 {
			args = strings.TrimSpace(fields[1])
		}

		span := ast.Span{
			StartLine: startLine + 1,
			StartCol:  1,
			EndLine:   i,
			EndCol:    len(lines[i-1]) + 1,
		}

		if keyword == "FROM" {
			from, err := parseFrom(args, name, startLine, lines[startLine])
			if err != nil {
				return nil, err
			}
			from.Span = span
			stmts = append(stmts, from)
			continue
		}

		inst := &ast.DockerInstruction{
			Name:     keyword,
			Args:     args,
			JSONForm: strings.HasPrefix(args, "["),
			Span:     span,
		}
		if keyword == "RUN" && !inst.JSONForm {
			// best effort: analysis wants the shell structure, but a
			// parse failure keeps the raw form
			if script, err := parser.Parse(args, name); err == nil {
				inst.Shell = script
			}
		}
		stmts = append(stmts, inst)
	}

	return &ast.Script{
		Name:       name,
		Dialect:    ast.Dockerfile,
		Statements: stmts,
		LineCount:  len(lines),
		ParseTime:  time.Since(start),
	}, nil
}

func lineSpan(idx int, text string) ast.Span {
	return ast.Span{StartLine: idx + 1, StartCol: 1, EndLine: idx + 1, EndCol: len(text) + 1}
}

// parseFrom splits image[:tag][@digest] [AS alias]
func parseFrom(args, name string, lineIdx int, context string) (*ast.DockerFrom, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return nil, &errors.ParseError{
			File:    name,
			Line:    lineIdx + 1,
			Column:  1,
			Context: context,
			Message: "FROM requires an image reference",
		}
	}

	from := &ast.DockerFrom{}
	ref := fields[0]

	// skip --platform=... flags
	for strings.HasPrefix(ref, "--") && len(fields) > 1 {
		fields = fields[1:]
		ref = fields[0]
	}

	if at := strings.IndexByte(ref, '@'); at >= 0 {
		from.Digest = ref[at+1:]
		ref = ref[:at]
	}
	// tag colon is the last one after any registry port
	if colon := strings.LastIndexByte(ref, ':'); colon > strings.LastIndexByte(ref, '/') {
		from.Tag = ref[colon+1:]
		ref = ref[:colon]
	}
	from.Image = ref

	if len(fields) >= 3 && strings.EqualFold(fields[1], "AS") {
		from.Alias = fields[2]
	}
	return from, nil
}
