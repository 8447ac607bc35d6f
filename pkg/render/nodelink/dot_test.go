package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/archmap/pkg/model"
)

func buildScope(t *testing.T) (*model.Tree, model.ID) {
	t.Helper()
	tree := model.New("project")
	a, _ := tree.AddFile(tree.Root(), "a.go", nil)
	b, _ := tree.AddFile(tree.Root(), "b.go", nil)
	if _, err := tree.AddEdge(tree.Root(), a, b); err != nil {
		t.Fatalf("AddEdge() error: %v", err)
	}
	tree.Artifact(a).Metrics.LinesOfCode = 120
	tree.Artifact(a).Metrics.ComponentRank = 0
	tree.Artifact(a).Metrics.SCCIndexTopologicallySorted = 0
	tree.Artifact(b).Metrics.IsInACycle = true
	return tree, tree.Root()
}

func TestToDOT(t *testing.T) {
	tree, scope := buildScope(t)

	dot := ToDOT(tree, scope, Options{})

	for _, want := range []string{
		"digraph G {",
		`"a.go"`,
		`"b.go"`,
		`"a.go" -> "b.go";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q:\n%s", want, dot)
		}
	}
	// Cyclic artifacts are tinted.
	if !strings.Contains(dot, "fillcolor=lightgrey") {
		t.Error("cyclic artifact should be highlighted")
	}
}

func TestToDOTDetailed(t *testing.T) {
	tree, scope := buildScope(t)

	dot := ToDOT(tree, scope, Options{Detailed: true})
	if !strings.Contains(dot, "loc: 120") {
		t.Errorf("detailed label should include lines of code:\n%s", dot)
	}
}

func TestToDOTDeterministic(t *testing.T) {
	tree, scope := buildScope(t)
	if ToDOT(tree, scope, Options{}) != ToDOT(tree, scope, Options{}) {
		t.Error("DOT output should be deterministic")
	}
}
