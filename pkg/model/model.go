// Package model holds the in-memory architecture model: a tree of artifacts
// (folders, files, symbols) where every scope carries a dependency graph over
// its direct children, plus per-artifact metrics and layout frames.
//
// # Architecture
//
// The tree owns all artifacts in a single arena ([Tree.arena]); artifacts
// reference each other exclusively by [ID] (an arena index), so there are no
// ownership cycles between an artifact and its enclosing scope. The tree is
// built once by the architecture builder and then mutated only by the
// analysis passes: the lifter adds edges, the pruner writes metrics and
// removes edges, the sorter reorders children, and the layouter writes
// frames. After the pipeline completes the tree is read-only.
//
// # Determinism
//
// Children are kept in insertion order and all graph traversals iterate
// edges in insertion order, so every downstream pass is a pure function of
// the construction sequence.
package model

import (
	"errors"
	"fmt"

	"github.com/matzehuels/archmap/pkg/source"
)

var (
	// ErrInvalidGraphMutation is returned for graph mutations the model
	// forbids: duplicate child names in a scope, self-edges, and edges
	// whose endpoints are not siblings in the scope.
	ErrInvalidGraphMutation = errors.New("invalid graph mutation")

	// ErrUnknownArtifact is returned when an ID does not name an artifact
	// in the tree.
	ErrUnknownArtifact = errors.New("unknown artifact")
)

// ID identifies an artifact within its tree. IDs are arena indices: stable,
// unique within the tree, and dense starting at 0 (the root).
type ID int

// NoID is the null artifact reference.
const NoID ID = -1

// Kind distinguishes the three artifact variants.
type Kind int

// Artifact kinds.
const (
	KindFolder Kind = iota
	KindFile
	KindSymbol
)

// String returns "folder", "file", or "symbol".
func (k Kind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindFile:
		return "file"
	default:
		return "symbol"
	}
}

// Artifact is one node of the architecture tree. Exactly one of the variant
// field groups is meaningful, selected by Kind:
//
//   - folders have children (subfolders and files) and a part graph
//   - files have Lines, symbol children and a symbol graph
//   - symbols have SymbolKind, Range, SelectionRange, Code, subsymbol
//     children and a subsymbol graph
type Artifact struct {
	id     ID
	name   string
	kind   Kind
	parent ID

	children   []ID
	childIndex map[ID]int
	byName     map[string]ID

	graph Graph

	// Lines holds the file's source text, one entry per line. Only set
	// for files.
	Lines []string

	// SymbolKind, Range, SelectionRange and Code are only set for symbols.
	SymbolKind     source.SymbolKind
	Range          source.Range
	SelectionRange source.Range
	Code           string

	// Metrics is written by the metrics pass.
	Metrics Metrics

	// FrameInScopeContent is the artifact's rectangle in the coordinate
	// space of its parent's content frame. Written by the layouter.
	FrameInScopeContent Rect

	// ContentFrame is the inner rectangle, relative to the artifact's own
	// frame, in which its children are laid out. Written by the layouter.
	ContentFrame Rect

	// ShowsParts reports whether the artifact's children fit inside its
	// content frame. Written by the layouter.
	ShowsParts bool
}

// ID returns the artifact's id.
func (a *Artifact) ID() ID { return a.id }

// Name returns the artifact's name.
func (a *Artifact) Name() string { return a.name }

// Kind returns the artifact's kind.
func (a *Artifact) Kind() Kind { return a.kind }

// Parent returns the id of the enclosing scope, or NoID for the root.
func (a *Artifact) Parent() ID { return a.parent }

// Children returns the artifact's direct children in their current order.
// The returned slice is the tree's backing storage; callers must not
// modify it.
func (a *Artifact) Children() []ID { return a.children }

// Graph returns the dependency graph over the artifact's direct children.
func (a *Artifact) Graph() *Graph { return &a.graph }

// IsLeaf reports whether the artifact has no children.
func (a *Artifact) IsLeaf() bool { return len(a.children) == 0 }

// Tree is the architecture model: an arena of artifacts rooted at a single
// folder. The zero value is not usable; use New.
//
// Tree is not safe for concurrent mutation. The pipeline controller is the
// sole writer; observers only see the tree after analysis completes.
type Tree struct {
	arena []*Artifact
	root  ID
}

// New creates a tree containing a single root folder with the given name.
func New(rootName string) *Tree {
	t := &Tree{root: 0}
	t.alloc(rootName, KindFolder, NoID)
	return t
}

// Root returns the id of the root folder.
func (t *Tree) Root() ID { return t.root }

// Len returns the number of artifacts in the tree.
func (t *Tree) Len() int { return len(t.arena) }

// Artifact returns the artifact with the given id, or nil if the id is out
// of range.
func (t *Tree) Artifact(id ID) *Artifact {
	if id < 0 || int(id) >= len(t.arena) {
		return nil
	}
	return t.arena[id]
}

// alloc creates an artifact in the arena and returns it.
func (t *Tree) alloc(name string, kind Kind, parent ID) *Artifact {
	a := &Artifact{
		id:         ID(len(t.arena)),
		name:       name,
		kind:       kind,
		parent:     parent,
		childIndex: make(map[ID]int),
		byName:     make(map[string]ID),
		Metrics:    newMetrics(),
	}
	a.graph.owner = a
	t.arena = append(t.arena, a)
	return a
}

// attach registers child under parent, preserving insertion order.
// A child whose name is already taken in the scope is rejected.
func (t *Tree) attach(parent ID, child *Artifact) (ID, error) {
	p := t.Artifact(parent)
	if p == nil {
		return NoID, fmt.Errorf("%w: id %d", ErrUnknownArtifact, parent)
	}
	if _, taken := p.byName[child.name]; taken {
		return NoID, fmt.Errorf("%w: duplicate child %q in %q", ErrInvalidGraphMutation, child.name, p.name)
	}
	p.childIndex[child.id] = len(p.children)
	p.children = append(p.children, child.id)
	p.byName[child.name] = child.id
	return child.id, nil
}

// AddFolder creates a folder under parent.
func (t *Tree) AddFolder(parent ID, name string) (ID, error) {
	return t.attach(parent, t.alloc(name, KindFolder, parent))
}

// AddFile creates a file with the given source lines under parent.
func (t *Tree) AddFile(parent ID, name string, lines []string) (ID, error) {
	a := t.alloc(name, KindFile, parent)
	a.Lines = lines
	return t.attach(parent, a)
}

// AddSymbol creates a symbol under parent, which may be a file or another
// symbol. Code is the extracted source slice covered by rng.
func (t *Tree) AddSymbol(parent ID, name string, kind source.SymbolKind, rng, selection source.Range, code string) (ID, error) {
	a := t.alloc(name, KindSymbol, parent)
	a.SymbolKind = kind
	a.Range = rng
	a.SelectionRange = selection
	a.Code = code
	return t.attach(parent, a)
}

// ChildByID returns the position of child within parent's child list,
// or -1 if child is not a direct child of parent. O(1).
func (t *Tree) ChildByID(parent, child ID) int {
	p := t.Artifact(parent)
	if p == nil {
		return -1
	}
	idx, ok := p.childIndex[child]
	if !ok {
		return -1
	}
	return idx
}

// ChildByName returns the direct child of parent with the given name.
func (t *Tree) ChildByName(parent ID, name string) (ID, bool) {
	p := t.Artifact(parent)
	if p == nil {
		return NoID, false
	}
	id, ok := p.byName[name]
	return id, ok
}

// AddEdge inserts a dependency edge from → to in scope's graph. Both
// endpoints must be direct children of scope and distinct; violations
// return ErrInvalidGraphMutation. Inserting an edge that already exists is
// a no-op; the first return reports whether the edge was actually added.
func (t *Tree) AddEdge(scope, from, to ID) (bool, error) {
	s := t.Artifact(scope)
	if s == nil {
		return false, fmt.Errorf("%w: id %d", ErrUnknownArtifact, scope)
	}
	if from == to {
		return false, fmt.Errorf("%w: self-edge on %d", ErrInvalidGraphMutation, from)
	}
	if _, ok := s.childIndex[from]; !ok {
		return false, fmt.Errorf("%w: %d is not a child of %q", ErrInvalidGraphMutation, from, s.name)
	}
	if _, ok := s.childIndex[to]; !ok {
		return false, fmt.Errorf("%w: %d is not a child of %q", ErrInvalidGraphMutation, to, s.name)
	}
	return s.graph.addEdge(from, to), nil
}

// SetChildOrder replaces parent's child order. The new order must be a
// permutation of the current children.
func (t *Tree) SetChildOrder(parent ID, order []ID) error {
	p := t.Artifact(parent)
	if p == nil {
		return fmt.Errorf("%w: id %d", ErrUnknownArtifact, parent)
	}
	if len(order) != len(p.children) {
		return fmt.Errorf("%w: order has %d entries, scope has %d children", ErrInvalidGraphMutation, len(order), len(p.children))
	}
	seen := make(map[ID]bool, len(order))
	for _, id := range order {
		if _, ok := p.childIndex[id]; !ok || seen[id] {
			return fmt.Errorf("%w: order is not a permutation of children", ErrInvalidGraphMutation)
		}
		seen[id] = true
	}
	p.children = append(p.children[:0], order...)
	for i, id := range p.children {
		p.childIndex[id] = i
	}
	return nil
}

// Path returns the slash-separated path of names from the root to the
// artifact, excluding the root's own name.
func (t *Tree) Path(id ID) string {
	a := t.Artifact(id)
	if a == nil || a.parent == NoID {
		return ""
	}
	parent := t.Path(a.parent)
	if parent == "" {
		return a.name
	}
	return parent + "/" + a.name
}
