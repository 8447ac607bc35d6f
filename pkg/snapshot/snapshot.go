// Package snapshot provides the canonical serialization format for a
// completed analysis. Snapshots are human-readable JSON designed for
// round-trip fidelity: export → re-import produces an identical view.
// The same types carry bson tags for document storage.
//
// A snapshot is a pure function of the analyzed tree: artifacts appear in
// their sorted order and dependencies in graph insertion order, so
// identical trees marshal to identical bytes (apart from the generated id
// and timestamp).
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/archmap/pkg/model"
)

// Snapshot is a serialized architecture model.
type Snapshot struct {
	// ID uniquely identifies this analysis run.
	ID string `json:"id" bson:"id"`

	// GeneratedAt is the time the snapshot was produced.
	GeneratedAt time.Time `json:"generated_at" bson:"generated_at"`

	// Project is the analyzed project's root folder name.
	Project string `json:"project" bson:"project"`

	// Root is the laid-out artifact tree.
	Root *Artifact `json:"root" bson:"root"`
}

// Artifact is the serialized form of one artifact with its metrics, layout
// frames, children and scope dependencies.
type Artifact struct {
	ID         int    `json:"id" bson:"id"`
	Name       string `json:"name" bson:"name"`
	Kind       string `json:"kind" bson:"kind"`
	SymbolKind string `json:"symbol_kind,omitempty" bson:"symbol_kind,omitempty"`

	LinesOfCode   int  `json:"lines_of_code" bson:"lines_of_code"`
	ComponentRank int  `json:"component_rank" bson:"component_rank"`
	SCCIndex      int  `json:"scc_index" bson:"scc_index"`
	InCycle       bool `json:"in_cycle,omitempty" bson:"in_cycle,omitempty"`

	Frame        model.Rect `json:"frame" bson:"frame"`
	ContentFrame model.Rect `json:"content_frame" bson:"content_frame"`
	ShowsParts   bool       `json:"shows_parts,omitempty" bson:"shows_parts,omitempty"`

	Children     []*Artifact  `json:"children,omitempty" bson:"children,omitempty"`
	Dependencies []Dependency `json:"dependencies,omitempty" bson:"dependencies,omitempty"`
}

// Dependency is one edge of a scope's graph, endpoints given as artifact
// ids.
type Dependency struct {
	From int `json:"from" bson:"from"`
	To   int `json:"to" bson:"to"`
}

// FromTree converts an analyzed tree into a snapshot.
func FromTree(t *model.Tree, project string) *Snapshot {
	return &Snapshot{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Project:     project,
		Root:        convert(t, t.Root()),
	}
}

func convert(t *model.Tree, id model.ID) *Artifact {
	a := t.Artifact(id)
	out := &Artifact{
		ID:            int(a.ID()),
		Name:          a.Name(),
		Kind:          a.Kind().String(),
		LinesOfCode:   a.Metrics.LinesOfCode,
		ComponentRank: a.Metrics.ComponentRank,
		SCCIndex:      a.Metrics.SCCIndexTopologicallySorted,
		InCycle:       a.Metrics.IsInACycle,
		Frame:         a.FrameInScopeContent,
		ContentFrame:  a.ContentFrame,
		ShowsParts:    a.ShowsParts,
	}
	if a.Kind() == model.KindSymbol {
		out.SymbolKind = a.SymbolKind.String()
	}
	for _, child := range a.Children() {
		out.Children = append(out.Children, convert(t, child))
	}
	for _, e := range a.Graph().Edges() {
		out.Dependencies = append(out.Dependencies, Dependency{From: int(e.From), To: int(e.To)})
	}
	return out
}

// Marshal serializes the snapshot as indented JSON.
func Marshal(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal parses a snapshot from JSON bytes.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &s, nil
}

// WriteFile writes the snapshot to a JSON file with 0644 permissions.
func WriteFile(s *Snapshot, path string) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile reads a snapshot from a JSON file.
func ReadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return read(f)
}

func read(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &s, nil
}

// Walk visits the snapshot's artifacts depth-first, parents before
// children.
func (s *Snapshot) Walk(visit func(*Artifact)) {
	var walk func(a *Artifact)
	walk = func(a *Artifact) {
		visit(a)
		for _, child := range a.Children {
			walk(child)
		}
	}
	if s.Root != nil {
		walk(s.Root)
	}
}
