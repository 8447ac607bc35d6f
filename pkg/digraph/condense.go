package digraph

// Condensed is the condensation of a graph: a DAG whose nodes are the
// graph's strongly-connected components. Condensation node ids are SCC
// indices (0-based, ordered by smallest original member id); each carries
// the summed weight of its members.
type Condensed struct {
	// DAG is the condensation graph. Node ids are indices into Members.
	DAG *Graph

	// Members lists the original node ids of each SCC in ascending order.
	Members [][]int

	// SCCOf maps an original node id to its SCC index.
	SCCOf map[int]int
}

// Condensation builds the condensation DAG of the graph. An edge exists
// between two condensation nodes iff any original edge crosses the SCC
// boundary; duplicate boundary edges are merged.
func (g *Graph) Condensation() *Condensed {
	sccs := g.StronglyConnectedComponents()

	sccOf := make(map[int]int, len(g.nodes))
	for i, scc := range sccs {
		for _, id := range scc {
			sccOf[id] = i
		}
	}

	dag := New()
	for i, scc := range sccs {
		dag.AddNode(Node{ID: i, Weight: g.totalWeight(scc)})
	}
	for _, e := range g.edges {
		from, to := sccOf[e.From], sccOf[e.To]
		if from != to {
			dag.AddEdge(from, to)
		}
	}

	return &Condensed{DAG: dag, Members: sccs, SCCOf: sccOf}
}

// AncestorCounts returns, for every node, the number of distinct nodes that
// can reach it (transitive predecessors, exclusive of the node itself).
//
// On a DAG the counts induce a linear extension of the topological order:
// sorting nodes by ascending ancestor count never places a node before one
// of its ancestors. Counts are not a canonical topological order; callers
// break ties by id.
func (g *Graph) AncestorCounts() map[int]int {
	counts := make(map[int]int, len(g.nodes))
	for _, id := range g.NodeIDs() {
		counts[id] = 0
	}

	// Forward DFS from each node; every reached node gains one ancestor.
	for _, start := range g.NodeIDs() {
		visited := map[int]bool{start: true}
		stack := []int{start}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, succ := range g.Successors(id) {
				if !visited[succ] {
					visited[succ] = true
					counts[succ]++
					stack = append(stack, succ)
				}
			}
		}
	}
	return counts
}
