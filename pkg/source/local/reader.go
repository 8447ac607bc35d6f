// Package local reads a project folder from disk into the parsed
// representation the analyzer consumes.
package local

import (
	"context"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/viant/afs"

	archerrors "github.com/matzehuels/archmap/pkg/errors"
	"github.com/matzehuels/archmap/pkg/source"
)

// Reader walks a project folder and produces its [source.CodeFolder] tree.
// Folders and files are visited in lexicographic order so the resulting
// tree is deterministic regardless of directory iteration order.
type Reader struct {
	fs afs.Service
}

// NewReader creates a folder reader backed by the local file system.
func NewReader() *Reader {
	return &Reader{fs: afs.New()}
}

// skippedDirs are never descended into.
var skippedDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	"node_modules": true,
	".build":       true,
}

// ReadFolder reads the project at location. It returns
// ErrCodeProjectFolderMissing if the folder does not exist and
// ErrCodeNoCodeFilesFound if no file matches the configured endings.
func (r *Reader) ReadFolder(ctx context.Context, location source.ProjectLocation) (*source.CodeFolder, error) {
	ok, err := r.fs.Exists(ctx, location.FolderPath)
	if err != nil {
		return nil, archerrors.Wrap(archerrors.ErrCodeProjectFolderMissing, err, "stat %s", location.FolderPath)
	}
	if !ok {
		return nil, archerrors.New(archerrors.ErrCodeProjectFolderMissing, "project folder %s does not exist", location.FolderPath)
	}

	root := &source.CodeFolder{Name: path.Base(strings.TrimRight(location.FolderPath, "/"))}
	folders := map[string]*source.CodeFolder{"": root}

	type fileItem struct {
		rel   string
		lines []string
	}
	var files []fileItem

	err = r.fs.Walk(ctx, location.FolderPath, func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if info.IsDir() {
			return !skippedDirs[info.Name()], nil
		}
		if !matchesEnding(info.Name(), location.CodeFileEndings) {
			return true, nil
		}
		data, err := io.ReadAll(reader)
		if err != nil {
			return false, err
		}
		rel := path.Join(parent, info.Name())
		files = append(files, fileItem{rel: rel, lines: splitLines(string(data))})
		return true, nil
	})
	if err != nil {
		return nil, archerrors.Wrap(archerrors.ErrCodeProjectFolderMissing, err, "walk %s", location.FolderPath)
	}
	if len(files) == 0 {
		return nil, archerrors.New(archerrors.ErrCodeNoCodeFilesFound, "no files with endings %v under %s", location.CodeFileEndings, location.FolderPath)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].rel < files[j].rel })
	for _, f := range files {
		dir := ensureFolder(folders, path.Dir(f.rel))
		dir.Files = append(dir.Files, &source.CodeFile{
			Name:  path.Base(f.rel),
			Path:  f.rel,
			Lines: f.lines,
		})
	}
	return root, nil
}

// ensureFolder returns the CodeFolder for the given relative directory,
// creating the chain of parents as needed. Lexicographic file order plus
// on-demand creation keeps subfolder order deterministic.
func ensureFolder(folders map[string]*source.CodeFolder, dir string) *source.CodeFolder {
	if dir == "." {
		dir = ""
	}
	if f, ok := folders[dir]; ok {
		return f
	}
	parent := ensureFolder(folders, path.Dir(dir))
	f := &source.CodeFolder{Name: path.Base(dir)}
	parent.Subfolders = append(parent.Subfolders, f)
	folders[dir] = f
	return f
}

func matchesEnding(name string, endings []string) bool {
	for _, ending := range endings {
		if strings.HasSuffix(name, "."+strings.TrimPrefix(ending, ".")) {
			return true
		}
	}
	return false
}

// splitLines splits source text into lines without their terminators.
// A trailing newline does not produce an empty final line.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
