package local

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	archerrors "github.com/matzehuels/archmap/pkg/errors"
	"github.com/matzehuels/archmap/pkg/source"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestReadFolder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\nfunc main() {}\n")
	writeFile(t, root, "pkg/util/util.go", "package util\n")
	writeFile(t, root, "README.md", "# readme\n")
	writeFile(t, root, ".git/config", "[core]\n")

	r := NewReader()
	folder, err := r.ReadFolder(context.Background(), source.ProjectLocation{
		FolderPath:      root,
		CodeFileEndings: []string{"go"},
	})
	if err != nil {
		t.Fatalf("ReadFolder() error: %v", err)
	}

	if folder.Name != filepath.Base(root) {
		t.Errorf("root name = %q, want %q", folder.Name, filepath.Base(root))
	}
	if len(folder.Files) != 1 || folder.Files[0].Name != "main.go" {
		t.Fatalf("root files = %v, want [main.go]", fileNames(folder))
	}
	if got := folder.Files[0].Lines; !reflect.DeepEqual(got, []string{"package main", "func main() {}"}) {
		t.Errorf("lines = %q", got)
	}
	if len(folder.Subfolders) != 1 || folder.Subfolders[0].Name != "pkg" {
		t.Fatalf("subfolders = %v, want [pkg]", folder.Subfolders)
	}
	util := folder.Subfolders[0].Subfolders[0]
	if util.Name != "util" || len(util.Files) != 1 {
		t.Errorf("nested folder wrong: %+v", util)
	}
	if got := util.Files[0].Path; got != "pkg/util/util.go" {
		t.Errorf("file path = %q, want pkg/util/util.go", got)
	}
}

func fileNames(folder *source.CodeFolder) []string {
	var names []string
	for _, f := range folder.Files {
		names = append(names, f.Name)
	}
	return names
}

func TestReadFolderMissing(t *testing.T) {
	r := NewReader()
	_, err := r.ReadFolder(context.Background(), source.ProjectLocation{
		FolderPath:      filepath.Join(t.TempDir(), "does-not-exist"),
		CodeFileEndings: []string{"go"},
	})
	if !archerrors.Is(err, archerrors.ErrCodeProjectFolderMissing) {
		t.Errorf("error = %v, want PROJECT_FOLDER_MISSING", err)
	}
}

func TestReadFolderNoCodeFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "# readme\n")

	r := NewReader()
	_, err := r.ReadFolder(context.Background(), source.ProjectLocation{
		FolderPath:      root,
		CodeFileEndings: []string{"go"},
	})
	if !archerrors.Is(err, archerrors.ErrCodeNoCodeFilesFound) {
		t.Errorf("error = %v, want NO_CODE_FILES_FOUND", err)
	}
}

func TestMatchesEnding(t *testing.T) {
	tests := []struct {
		name    string
		endings []string
		want    bool
	}{
		{"main.go", []string{"go"}, true},
		{"main.go", []string{".go"}, true},
		{"main.rs", []string{"go"}, false},
		{"go", []string{"go"}, false},
		{"main.swift", []string{"go", "swift"}, true},
	}
	for _, tt := range tests {
		if got := matchesEnding(tt.name, tt.endings); got != tt.want {
			t.Errorf("matchesEnding(%q, %v) = %v, want %v", tt.name, tt.endings, got, tt.want)
		}
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"one", []string{"one"}},
		{"one\n", []string{"one"}},
		{"one\ntwo\n", []string{"one", "two"}},
		{"one\r\ntwo\r\n", []string{"one", "two"}},
	}
	for _, tt := range tests {
		if got := splitLines(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitLines(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
