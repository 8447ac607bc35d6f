package digraph

import "slices"

// Components returns the graph's weakly-connected components.
//
// Each component is discovered by an undirected breadth-first search
// starting from the smallest unvisited id; its members are returned in
// ascending id order. Components are sorted by descending total weight,
// ties broken by smallest member id.
func (g *Graph) Components() [][]int {
	visited := make(map[int]bool, len(g.nodes))
	var components [][]int

	for _, start := range g.NodeIDs() {
		if visited[start] {
			continue
		}
		visited[start] = true
		component := []int{start}
		queue := []int{start}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			neighbors := append(g.Successors(id), g.Predecessors(id)...)
			slices.Sort(neighbors)
			for _, n := range neighbors {
				if !visited[n] {
					visited[n] = true
					component = append(component, n)
					queue = append(queue, n)
				}
			}
		}
		slices.Sort(component)
		components = append(components, component)
	}

	slices.SortStableFunc(components, func(a, b []int) int {
		wa, wb := g.totalWeight(a), g.totalWeight(b)
		if wa != wb {
			return wb - wa
		}
		return a[0] - b[0]
	})
	return components
}

func (g *Graph) totalWeight(ids []int) int {
	total := 0
	for _, id := range ids {
		total += g.Weight(id)
	}
	return total
}
