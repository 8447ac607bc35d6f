// Package analyze turns parsed source data into a fully analyzed
// architecture model.
//
// # Architecture
//
// The package implements four passes that run in order:
//
//  1. Build: materialize the artifact tree and the dependency edges that
//     are derivable within a single file ([Builder]).
//  2. Lift: promote cross-file symbol references to sibling-level edges in
//     the lowest common scope ([Architecture.LiftCrossScope]).
//  3. Metrics: compute lines of code, component ranks, SCC indices and
//     cycle flags, and prune redundant cross-SCC edges ([ComputeMetrics]).
//  4. Sort: order every scope's children by their metrics ([SortTree]).
//
// Each pass mutates the tree in place; the pipeline controller sequences
// them and publishes progress between passes.
package analyze

import (
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archmap/pkg/model"
	"github.com/matzehuels/archmap/pkg/source"
)

// Architecture is the output of the build pass: the artifact tree plus the
// side tables the lifter needs to resolve references. The side tables are
// dropped when lifting completes.
type Architecture struct {
	Tree *model.Tree

	// files indexes every built file by its project-relative path.
	files map[string]*fileEntry

	// refs holds each file's outgoing references, keyed by path.
	refs map[string][]source.Reference

	// pending holds references whose target lies in a different file than
	// their source. LiftCrossScope resolves them.
	pending []pendingRef
}

// fileEntry records the artifact ids and ranges of one file's symbols for
// range-based lookup.
type fileEntry struct {
	fileID model.ID

	// symbols in pre-order; containment search walks the list and keeps
	// the deepest match.
	symbols []symbolEntry
}

type symbolEntry struct {
	id        model.ID
	rng       source.Range
	selection source.Range
	depth     int
}

type pendingRef struct {
	sourceFile string
	ref        source.Reference
}

// Builder materializes the artifact tree from a parsed folder.
type Builder struct {
	// Logger receives debug output. Nil disables logging.
	Logger *log.Logger
}

// Build constructs the artifact tree for the given project folder and adds
// every dependency edge that can be derived without cross-file information.
// Cross-file references are retained on the returned Architecture for
// lifting.
func (b *Builder) Build(folder *source.CodeFolder) (*Architecture, error) {
	arch := &Architecture{
		Tree:  model.New(folder.Name),
		files: make(map[string]*fileEntry),
		refs:  make(map[string][]source.Reference),
	}
	if err := b.buildFolder(arch, arch.Tree.Root(), folder); err != nil {
		return nil, err
	}

	// Same-file references can be connected right away; everything else
	// waits for the lifter. Files are processed in path order so the edge
	// insertion sequence is deterministic.
	for _, path := range arch.sortedPaths() {
		for _, ref := range arch.refs[path] {
			if ref.TargetFilePath == path {
				if err := arch.connect(path, ref); err != nil {
					return nil, err
				}
			} else {
				arch.pending = append(arch.pending, pendingRef{sourceFile: path, ref: ref})
			}
		}
	}

	if b.Logger != nil {
		b.Logger.Debug("built architecture",
			"artifacts", arch.Tree.Len(),
			"files", len(arch.files),
			"pending_refs", len(arch.pending))
	}
	return arch, nil
}

// buildFolder adds cf's subfolders and files under parent, preserving the
// reader's order.
func (b *Builder) buildFolder(arch *Architecture, parent model.ID, cf *source.CodeFolder) error {
	for _, sub := range cf.Subfolders {
		id, err := arch.Tree.AddFolder(parent, sub.Name)
		if err != nil {
			return err
		}
		if err := b.buildFolder(arch, id, sub); err != nil {
			return err
		}
	}
	for _, file := range cf.Files {
		if err := b.buildFile(arch, parent, file); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) buildFile(arch *Architecture, parent model.ID, cf *source.CodeFile) error {
	fileID, err := arch.Tree.AddFile(parent, cf.Name, cf.Lines)
	if err != nil {
		return err
	}
	entry := &fileEntry{fileID: fileID}
	arch.files[cf.Path] = entry

	for _, sym := range cf.Symbols {
		if err := b.buildSymbol(arch, entry, fileID, sym, cf.Lines, 1); err != nil {
			return err
		}
	}

	arch.refs[cf.Path] = collectRefs(cf)
	return nil
}

// buildSymbol registers sym and its children depth-first.
func (b *Builder) buildSymbol(arch *Architecture, entry *fileEntry, parent model.ID, sym *source.CodeSymbolData, lines []string, depth int) error {
	code := sliceLines(lines, sym.Range)
	id, err := arch.Tree.AddSymbol(parent, sym.Name, sym.Kind, sym.Range, sym.SelectionRange, code)
	if err != nil {
		return err
	}
	entry.symbols = append(entry.symbols, symbolEntry{
		id:        id,
		rng:       sym.Range,
		selection: sym.SelectionRange,
		depth:     depth,
	})
	for _, child := range sym.Children {
		if err := b.buildSymbol(arch, entry, id, child, lines, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// collectRefs gathers a file's outgoing references: the flat file-level
// list plus the per-symbol lists. A symbol reference without a source range
// inherits the symbol's selection range.
func collectRefs(cf *source.CodeFile) []source.Reference {
	refs := append([]source.Reference(nil), cf.References...)
	var walk func(sym *source.CodeSymbolData)
	walk = func(sym *source.CodeSymbolData) {
		for _, ref := range sym.References {
			if ref.SourceRange == (source.Range{}) {
				ref.SourceRange = sym.SelectionRange
			}
			refs = append(refs, ref)
		}
		for _, child := range sym.Children {
			walk(child)
		}
	}
	for _, sym := range cf.Symbols {
		walk(sym)
	}
	return refs
}

// sliceLines extracts the source text covered by rng.
func sliceLines(lines []string, rng source.Range) string {
	start, end := rng.Start.Line, rng.End.Line
	if start < 0 {
		start = 0
	}
	if end >= len(lines) {
		end = len(lines) - 1
	}
	if start > end {
		return ""
	}
	return strings.Join(lines[start:end+1], "\n")
}

// sortedPaths returns the architecture's file paths in ascending order.
func (arch *Architecture) sortedPaths() []string {
	paths := make([]string, 0, len(arch.files))
	for path := range arch.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
