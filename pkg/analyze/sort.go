package analyze

import (
	"sort"

	"github.com/matzehuels/archmap/pkg/model"
)

// SortTree reorders every scope's children into the canonical display
// order, depth-first:
//
//  1. ascending component rank
//  2. ascending topological SCC index
//  3. descending lines of code
//  4. lexicographic name
//  5. ascending id
//
// The order is a total function of the metrics, so sorting an already
// sorted tree changes nothing.
func SortTree(t *model.Tree) error {
	var failure error
	t.Walk(t.Root(), model.PreOrder, func(a *model.Artifact) bool {
		if len(a.Children()) < 2 {
			return true
		}
		order := append([]model.ID(nil), a.Children()...)
		sort.SliceStable(order, func(x, y int) bool {
			return lessArtifact(t.Artifact(order[x]), t.Artifact(order[y]))
		})
		if err := t.SetChildOrder(a.ID(), order); err != nil {
			failure = err
			return false
		}
		return true
	})
	return failure
}

func lessArtifact(a, b *model.Artifact) bool {
	if a.Metrics.ComponentRank != b.Metrics.ComponentRank {
		return a.Metrics.ComponentRank < b.Metrics.ComponentRank
	}
	if a.Metrics.SCCIndexTopologicallySorted != b.Metrics.SCCIndexTopologicallySorted {
		return a.Metrics.SCCIndexTopologicallySorted < b.Metrics.SCCIndexTopologicallySorted
	}
	if a.Metrics.LinesOfCode != b.Metrics.LinesOfCode {
		return a.Metrics.LinesOfCode > b.Metrics.LinesOfCode
	}
	if a.Name() != b.Name() {
		return a.Name() < b.Name()
	}
	return a.ID() < b.ID()
}
