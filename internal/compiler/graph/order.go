package graph

// detectCycles runs a depth-first search from every unvisited node in
// declaration order, following successor edges. A successor that is still on
// the recursion stack closes a cycle, recorded from its first occurrence on
// the path through the current node and back to itself.
func detectCycles(g *Graph) []Cycle {
	visited := make(map[string]bool, len(g.Keys))
	onStack := make(map[string]bool, len(g.Keys))
	var path []string
	cycles := []Cycle{}

	var visit func(key string)
	visit = func(key string) {
		visited[key] = true
		onStack[key] = true
		path = append(path, key)

		for _, next := range g.Nodes[key].Successors {
			if onStack[next] {
				cycles = append(cycles, closeCycle(path, next))
				continue
			}
			if !visited[next] {
				visit(next)
			}
		}

		path = path[:len(path)-1]
		onStack[key] = false
	}

	for _, key := range g.Keys {
		if !visited[key] {
			visit(key)
		}
	}

	return cycles
}

func closeCycle(path []string, repeated string) Cycle {
	start := 0
	for i, k := range path {
		if k == repeated {
			start = i
			break
		}
	}
	cycle := make(Cycle, 0, len(path)-start+1)
	cycle = append(cycle, path[start:]...)
	return append(cycle, repeated)
}

// topologicalOrder implements Kahn's algorithm. The queue is seeded with the
// zero in-degree nodes in declaration order and drained first in, first out.
// Callers must not rely on the tie-breaking between ready nodes.
func topologicalOrder(g *Graph) []string {
	inDegree := make(map[string]int, len(g.Keys))
	queue := make([]string, 0, len(g.Keys))
	for _, key := range g.Keys {
		inDegree[key] = len(g.Nodes[key].Predecessors)
		if inDegree[key] == 0 {
			queue = append(queue, key)
		}
	}

	order := make([]string, 0, len(g.Keys))
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		order = append(order, key)

		for _, next := range g.Nodes[key].Successors {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	return order
}
