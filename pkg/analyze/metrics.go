package analyze

import (
	"sort"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archmap/pkg/digraph"
	archerrors "github.com/matzehuels/archmap/pkg/errors"
	"github.com/matzehuels/archmap/pkg/model"
)

// ComputeMetrics runs the metric and pruning pass over the whole tree.
//
// Lines of code are summed bottom-up first. Then, post-order over every
// scope's graph:
//
//  1. Weakly-connected components are ranked by descending total lines of
//     code (rank 0 = largest).
//  2. Per component, the condensation's ancestor counts yield a topological
//     numbering of its SCCs; every member receives that number as its SCC
//     index, and members of SCCs with more than one node are flagged as
//     cyclic.
//  3. Cross-SCC edges absent from the condensation's transitive reduction
//     are removed from the scope's graph. Edges within an SCC are always
//     retained.
//
// The pass is idempotent: pruning removes only edges whose reachability is
// preserved, so a second run finds nothing left to remove.
func ComputeMetrics(t *model.Tree, logger *log.Logger) error {
	computeLinesOfCode(t)

	var failure error
	t.Walk(t.Root(), model.PostOrder, func(a *model.Artifact) bool {
		if a.IsLeaf() {
			return true
		}
		if err := analyzeScope(t, a); err != nil {
			failure = err
			return false
		}
		return true
	})
	if failure != nil {
		return failure
	}
	if logger != nil {
		logger.Debug("computed metrics", "artifacts", t.Len())
	}
	return nil
}

// computeLinesOfCode assigns every artifact its size: leaf symbols span
// their range, files without symbols count their lines, and every non-leaf
// sums its children.
func computeLinesOfCode(t *model.Tree) {
	t.Walk(t.Root(), model.PostOrder, func(a *model.Artifact) bool {
		if a.IsLeaf() {
			switch a.Kind() {
			case model.KindSymbol:
				a.Metrics.LinesOfCode = a.Range.LineCount()
			case model.KindFile:
				a.Metrics.LinesOfCode = len(a.Lines)
			default:
				a.Metrics.LinesOfCode = 0
			}
			return true
		}
		total := 0
		for _, child := range a.Children() {
			total += t.Artifact(child).Metrics.LinesOfCode
		}
		a.Metrics.LinesOfCode = total
		return true
	})
}

// analyzeScope computes component ranks, SCC indices and cycle flags for
// the scope's children and prunes redundant edges from its graph.
func analyzeScope(t *model.Tree, scope *model.Artifact) error {
	g := mirror(t, scope)

	for rank, component := range g.Components() {
		for _, id := range component {
			t.Artifact(model.ID(id)).Metrics.ComponentRank = rank
		}

		sub := g.Subgraph(component)
		cond := sub.Condensation()
		counts := cond.DAG.AncestorCounts()

		// Ancestor counts are a linear extension, not a total order; ties
		// break by smallest original member id.
		order := make([]int, len(cond.Members))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(x, y int) bool {
			cx, cy := counts[order[x]], counts[order[y]]
			if cx != cy {
				return cx < cy
			}
			return cond.Members[order[x]][0] < cond.Members[order[y]][0]
		})

		for position, sccIdx := range order {
			members := cond.Members[sccIdx]
			inCycle := len(members) > 1
			for _, id := range members {
				m := &t.Artifact(model.ID(id)).Metrics
				m.SCCIndexTopologicallySorted = position
				m.IsInACycle = inCycle
			}
		}

		// Prune cross-SCC edges that the transitive reduction of the
		// condensation does not need.
		reduced := cond.DAG.TransitiveReduction()
		for _, e := range sub.Edges() {
			from, to := cond.SCCOf[e.From], cond.SCCOf[e.To]
			if from != to && !reduced.HasEdge(from, to) {
				scope.Graph().RemoveEdge(model.ID(e.From), model.ID(e.To))
			}
		}
	}

	// Every child must have received its SCC index by now.
	for _, child := range scope.Children() {
		if !t.Artifact(child).Metrics.HasSCCIndex() {
			return archerrors.New(archerrors.ErrCodeInternalInvariantViolation,
				"artifact %q has no SCC index after analysis", t.Path(child))
		}
	}
	return nil
}

// mirror copies a scope's graph into the analysis kernel, weighting nodes
// by lines of code.
func mirror(t *model.Tree, scope *model.Artifact) *digraph.Graph {
	g := digraph.New()
	for _, child := range scope.Children() {
		g.AddNode(digraph.Node{ID: int(child), Weight: t.Artifact(child).Metrics.LinesOfCode})
	}
	for _, e := range scope.Graph().Edges() {
		g.AddEdge(int(e.From), int(e.To))
	}
	return g
}
