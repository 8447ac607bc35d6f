package snapshot

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/matzehuels/archmap/pkg/model"
	"github.com/matzehuels/archmap/pkg/source"
)

func buildTree(t *testing.T) *model.Tree {
	t.Helper()
	tree := model.New("project")
	folder, _ := tree.AddFolder(tree.Root(), "pkg")
	a, err := tree.AddFile(folder, "a.go", []string{"package pkg"})
	if err != nil {
		t.Fatalf("AddFile() error: %v", err)
	}
	b, _ := tree.AddFile(folder, "b.go", []string{"package pkg"})
	if _, err := tree.AddSymbol(a, "Do", source.SymbolKindFunction, source.Range{}, source.Range{}, "func Do() {}"); err != nil {
		t.Fatalf("AddSymbol() error: %v", err)
	}
	if _, err := tree.AddEdge(folder, a, b); err != nil {
		t.Fatalf("AddEdge() error: %v", err)
	}
	return tree
}

func TestFromTree(t *testing.T) {
	tree := buildTree(t)
	snap := FromTree(tree, "project")

	if snap.ID == "" {
		t.Error("snapshot should carry a run id")
	}
	if snap.Project != "project" {
		t.Errorf("Project = %q, want %q", snap.Project, "project")
	}

	count := 0
	snap.Walk(func(a *Artifact) { count++ })
	if count != tree.Len() {
		t.Errorf("snapshot has %d artifacts, tree has %d", count, tree.Len())
	}

	// The folder node carries its edge.
	var pkgNode *Artifact
	snap.Walk(func(a *Artifact) {
		if a.Name == "pkg" {
			pkgNode = a
		}
	})
	if pkgNode == nil {
		t.Fatal("pkg folder missing from snapshot")
	}
	if len(pkgNode.Dependencies) != 1 {
		t.Errorf("pkg folder has %d dependencies, want 1", len(pkgNode.Dependencies))
	}
	if len(pkgNode.Children) != 2 {
		t.Errorf("pkg folder has %d children, want 2", len(pkgNode.Children))
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	snap := FromTree(buildTree(t), "project")

	data, err := Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	decoded, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	again, err := Marshal(decoded)
	if err != nil {
		t.Fatalf("second Marshal() error: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Error("marshal → unmarshal → marshal should be byte-identical")
	}
}

func TestWriteAndReadFile(t *testing.T) {
	snap := FromTree(buildTree(t), "project")
	path := filepath.Join(t.TempDir(), "snapshot.json")

	if err := WriteFile(snap, path); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	loaded, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if loaded.ID != snap.ID {
		t.Errorf("loaded ID = %q, want %q", loaded.ID, snap.ID)
	}
	if loaded.Root == nil || loaded.Root.Name != "project" {
		t.Error("loaded snapshot root mismatch")
	}
}
