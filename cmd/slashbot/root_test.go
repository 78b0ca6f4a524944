package main

import (
	"bytes"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("slashbot %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestListPrintsLocalTree(t *testing.T) {
	out := execute(t, "list")
	for _, want := range []string{
		"/test  A Test!",
		"/rate  Rate things.",
		"  /user  See how someone rates.",
		"    user: user",
		"    /roll  Roll some dice.",
		"      sides: integer [6|20|100]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestVersion(t *testing.T) {
	if out := execute(t, "version"); !strings.HasPrefix(out, "slashbot dev") {
		t.Errorf("version output = %q", out)
	}
}

func TestDebugFlagIsInherited(t *testing.T) {
	if out := execute(t, "list", "--debug"); !strings.Contains(out, "/test") {
		t.Errorf("list --debug output = %q", out)
	}
}
