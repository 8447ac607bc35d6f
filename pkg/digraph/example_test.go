package digraph_test

import (
	"fmt"

	"github.com/matzehuels/archmap/pkg/digraph"
)

// Condense a graph with one cycle and reduce the resulting DAG.
func Example() {
	g := digraph.New()
	for id := 1; id <= 4; id++ {
		g.AddNode(digraph.Node{ID: id, Weight: 10})
	}
	g.AddEdge(1, 2)
	g.AddEdge(2, 1) // cycle 1↔2
	g.AddEdge(2, 3)
	g.AddEdge(3, 4)
	g.AddEdge(2, 4) // redundant shortcut

	cond := g.Condensation()
	fmt.Println("sccs:", cond.Members)

	reduced := cond.DAG.TransitiveReduction()
	fmt.Println("edges after reduction:", reduced.EdgeCount())
	// Output:
	// sccs: [[1 2] [3] [4]]
	// edges after reduction: 2
}

func ExampleGraph_Components() {
	g := digraph.New()
	g.AddNode(digraph.Node{ID: 1, Weight: 400})
	g.AddNode(digraph.Node{ID: 2, Weight: 100})

	for rank, component := range g.Components() {
		fmt.Println(rank, component)
	}
	// Output:
	// 0 [1]
	// 1 [2]
}
