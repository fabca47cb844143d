package ast_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/shellpure/shellpure/pkgs/ast"
	"github.com/shellpure/shellpure/pkgs/parser"
)

const cloneSource = `set -e
FILES=(a.c b.c)
for f in "${FILES[@]}"; do
    gcc -c "$f" 2>>build.log || exit 1
done
cat <<EOF
built $(date)
EOF
`

func TestCloneIsStructurallyIdentical(t *testing.T) {
	script, err := parser.Parse(cloneSource, "build.sh")
	if err != nil {
		t.Fatal(err)
	}
	clone := script.Clone()
	if diff := cmp.Diff(script, clone); diff != "" {
		t.Errorf("clone differs (-orig +clone):\n%s", diff)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	script, err := parser.Parse("mkdir /tmp/out\nrm old.log\n", "setup.sh")
	if err != nil {
		t.Fatal(err)
	}
	clone := script.Clone()

	cmd := clone.Statements[0].(*ast.SimpleCommand)
	cmd.Args = append(cmd.Args, &ast.Literal{Raw: "-p"})
	cmd.Name.(*ast.Literal).Raw = "mutated"

	orig := script.Statements[0].(*ast.SimpleCommand)
	if len(orig.Args) != 1 {
		t.Errorf("original args grew: %v", orig.Args)
	}
	if orig.NameText() != "mkdir" {
		t.Errorf("original name = %q", orig.NameText())
	}
}

func TestStringOnNamelessCommand(t *testing.T) {
	// a prefix assignment with only a redirect has no command name
	script, err := parser.Parse("FOO=1 >marker\n", "env.sh")
	if err != nil {
		t.Fatal(err)
	}
	cmd, ok := script.Statements[0].(*ast.SimpleCommand)
	if !ok {
		t.Fatalf("statement is %T, want *ast.SimpleCommand", script.Statements[0])
	}
	if cmd.Name != nil {
		t.Fatalf("unexpected name %q", cmd.NameText())
	}
	if got := cmd.String(); got != "FOO=1 >marker" {
		t.Errorf("String() = %q", got)
	}
}

func TestCloneCopiesRedirectsAndHeredocs(t *testing.T) {
	script, err := parser.Parse("cat <<EOF >out.txt\nbody\nEOF\n", "h.sh")
	if err != nil {
		t.Fatal(err)
	}
	clone := script.Clone()

	cc := clone.Statements[0].(*ast.SimpleCommand)
	oc := script.Statements[0].(*ast.SimpleCommand)
	for i := range cc.Redirects {
		if cc.Redirects[i] == oc.Redirects[i] {
			t.Errorf("redirect %d shared between clone and original", i)
		}
	}
	cc.Redirects[0].HeredocBody = "changed\n"
	if oc.Redirects[0].HeredocBody != "body\n" {
		t.Errorf("original heredoc body = %q", oc.Redirects[0].HeredocBody)
	}
}
