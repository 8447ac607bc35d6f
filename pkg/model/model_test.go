package model

import (
	"errors"
	"reflect"
	"testing"

	"github.com/matzehuels/archmap/pkg/source"
)

func buildSmallTree(t *testing.T) (*Tree, ID, ID, ID) {
	t.Helper()
	tree := New("project")
	folder, err := tree.AddFolder(tree.Root(), "pkg")
	if err != nil {
		t.Fatalf("AddFolder() error: %v", err)
	}
	file, err := tree.AddFile(folder, "main.go", []string{"package main", "func main() {}"})
	if err != nil {
		t.Fatalf("AddFile() error: %v", err)
	}
	sym, err := tree.AddSymbol(file, "main", source.SymbolKindFunction,
		source.Range{Start: source.Position{Line: 1}, End: source.Position{Line: 1}},
		source.Range{Start: source.Position{Line: 1, Column: 5}, End: source.Position{Line: 1, Column: 9}},
		"func main() {}")
	if err != nil {
		t.Fatalf("AddSymbol() error: %v", err)
	}
	return tree, folder, file, sym
}

func TestTreeConstruction(t *testing.T) {
	tree, folder, file, sym := buildSmallTree(t)

	if tree.Len() != 4 {
		t.Errorf("Len() = %d, want 4", tree.Len())
	}
	if got := tree.Artifact(folder).Parent(); got != tree.Root() {
		t.Errorf("folder parent = %d, want root", got)
	}
	if got := tree.Artifact(sym).Parent(); got != file {
		t.Errorf("symbol parent = %d, want file", got)
	}
	if got := tree.Path(sym); got != "pkg/main.go/main" {
		t.Errorf("Path() = %q, want %q", got, "pkg/main.go/main")
	}
	if idx := tree.ChildByID(file, sym); idx != 0 {
		t.Errorf("ChildByID() = %d, want 0", idx)
	}
	if id, ok := tree.ChildByName(folder, "main.go"); !ok || id != file {
		t.Errorf("ChildByName() = (%d, %v), want (%d, true)", id, ok, file)
	}
}

func TestDuplicateChildNameFails(t *testing.T) {
	tree := New("project")
	if _, err := tree.AddFolder(tree.Root(), "pkg"); err != nil {
		t.Fatalf("AddFolder() error: %v", err)
	}
	_, err := tree.AddFolder(tree.Root(), "pkg")
	if !errors.Is(err, ErrInvalidGraphMutation) {
		t.Errorf("duplicate child should fail with ErrInvalidGraphMutation, got %v", err)
	}
}

func TestAddEdge(t *testing.T) {
	tree := New("project")
	a, _ := tree.AddFile(tree.Root(), "a.go", nil)
	b, _ := tree.AddFile(tree.Root(), "b.go", nil)

	added, err := tree.AddEdge(tree.Root(), a, b)
	if err != nil || !added {
		t.Fatalf("AddEdge() = (%v, %v), want (true, nil)", added, err)
	}

	// Duplicate insert is a no-op, not an error.
	added, err = tree.AddEdge(tree.Root(), a, b)
	if err != nil {
		t.Errorf("duplicate AddEdge() error: %v", err)
	}
	if added {
		t.Error("duplicate AddEdge() should report no insertion")
	}

	// Self-edges are programmer errors.
	if _, err := tree.AddEdge(tree.Root(), a, a); !errors.Is(err, ErrInvalidGraphMutation) {
		t.Errorf("self-edge should fail with ErrInvalidGraphMutation, got %v", err)
	}

	// Endpoints must be children of the scope.
	sub, _ := tree.AddFolder(tree.Root(), "sub")
	c, _ := tree.AddFile(sub, "c.go", nil)
	if _, err := tree.AddEdge(tree.Root(), a, c); !errors.Is(err, ErrInvalidGraphMutation) {
		t.Errorf("edge to non-sibling should fail, got %v", err)
	}

	g := tree.Artifact(tree.Root()).Graph()
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
	if !g.HasEdge(a, b) || g.HasEdge(b, a) {
		t.Errorf("graph edges wrong: %v", g.Edges())
	}
}

func TestGraphRemoveEdge(t *testing.T) {
	tree := New("project")
	a, _ := tree.AddFile(tree.Root(), "a.go", nil)
	b, _ := tree.AddFile(tree.Root(), "b.go", nil)
	tree.AddEdge(tree.Root(), a, b)

	g := tree.Artifact(tree.Root()).Graph()
	g.RemoveEdge(a, b)
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() after remove = %d, want 0", g.EdgeCount())
	}
	// Removing again is a no-op.
	g.RemoveEdge(a, b)
}

func TestSetChildOrder(t *testing.T) {
	tree := New("project")
	a, _ := tree.AddFile(tree.Root(), "a.go", nil)
	b, _ := tree.AddFile(tree.Root(), "b.go", nil)
	c, _ := tree.AddFile(tree.Root(), "c.go", nil)

	if err := tree.SetChildOrder(tree.Root(), []ID{c, a, b}); err != nil {
		t.Fatalf("SetChildOrder() error: %v", err)
	}
	got := tree.Artifact(tree.Root()).Children()
	if !reflect.DeepEqual(got, []ID{c, a, b}) {
		t.Errorf("Children() = %v, want [%d %d %d]", got, c, a, b)
	}
	// Index lookups must follow the new order.
	if idx := tree.ChildByID(tree.Root(), c); idx != 0 {
		t.Errorf("ChildByID(c) = %d, want 0", idx)
	}

	// Not a permutation: rejected.
	if err := tree.SetChildOrder(tree.Root(), []ID{a, a, b}); !errors.Is(err, ErrInvalidGraphMutation) {
		t.Errorf("non-permutation should fail, got %v", err)
	}
	if err := tree.SetChildOrder(tree.Root(), []ID{a, b}); !errors.Is(err, ErrInvalidGraphMutation) {
		t.Errorf("short order should fail, got %v", err)
	}
}

func TestWalkOrders(t *testing.T) {
	tree, folder, file, sym := buildSmallTree(t)

	var pre []ID
	tree.Walk(tree.Root(), PreOrder, func(a *Artifact) bool {
		pre = append(pre, a.ID())
		return true
	})
	if !reflect.DeepEqual(pre, []ID{tree.Root(), folder, file, sym}) {
		t.Errorf("pre-order = %v", pre)
	}

	var post []ID
	tree.Walk(tree.Root(), PostOrder, func(a *Artifact) bool {
		post = append(post, a.ID())
		return true
	})
	if !reflect.DeepEqual(post, []ID{sym, file, folder, tree.Root()}) {
		t.Errorf("post-order = %v", post)
	}

	// Early stop.
	count := 0
	tree.Walk(tree.Root(), PreOrder, func(a *Artifact) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Errorf("early stop visited %d artifacts, want 2", count)
	}
}

func TestMetricsDefaults(t *testing.T) {
	tree := New("project")
	m := tree.Artifact(tree.Root()).Metrics
	if m.HasComponentRank() || m.HasSCCIndex() {
		t.Error("fresh metrics should be unset")
	}
	if m.IsInACycle {
		t.Error("fresh metrics should not be cyclic")
	}
}
