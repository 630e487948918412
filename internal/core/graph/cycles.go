package graph

type color int

const (
	white color = iota // unvisited
	grey               // on the DFS stack
	black              // fully explored
)

// DetectCycles runs a three-colour depth-first traversal over nodes using
// edges for adjacency. Every back edge (an edge into a grey node) yields one
// cycle path, which starts and ends with the same node: [a, b, c, a].
// Roots are visited in the given order so results are deterministic.
func DetectCycles(nodes []string, edges func(string) []string) [][]string {
	marks := make(map[string]color, len(nodes))
	var stack []string
	var cycles [][]string

	var visit func(n string)
	visit = func(n string) {
		marks[n] = grey
		stack = append(stack, n)
		for _, next := range edges(n) {
			switch marks[next] {
			case white:
				visit(next)
			case grey:
				cycles = append(cycles, cycleFromStack(stack, next))
			}
		}
		stack = stack[:len(stack)-1]
		marks[n] = black
	}

	for _, n := range nodes {
		if marks[n] == white {
			visit(n)
		}
	}
	return cycles
}

func cycleFromStack(stack []string, start string) []string {
	for i, n := range stack {
		if n == start {
			path := append([]string(nil), stack[i:]...)
			return append(path, start)
		}
	}
	return []string{start, start}
}

// Cycles returns every cycle reachable in the combined vertical and
// horizontal edge set.
func (g *Graph) Cycles() [][]string {
	return DetectCycles(g.ordered, g.edges)
}

// FindCycle returns the first cycle found, or nil when the graph is acyclic.
func (g *Graph) FindCycle() []string {
	cycles := g.Cycles()
	if len(cycles) == 0 {
		return nil
	}
	return cycles[0]
}

// HasCycle reports whether any cycle exists.
func (g *Graph) HasCycle() bool {
	return g.FindCycle() != nil
}

// WouldCycle reports the cycle that giving id the outgoing edges parentID and
// deps would introduce, or nil. Existing outgoing edges of id are replaced,
// so this also answers "what if id's dependencies changed".
func (g *Graph) WouldCycle(id, parentID string, deps []string) []string {
	targets := make([]string, 0, len(deps)+1)
	if parentID != "" {
		targets = append(targets, parentID)
	}
	targets = append(targets, deps...)

	for _, t := range targets {
		if t == id {
			return []string{id, id}
		}
		if !g.Has(t) {
			continue
		}
		if path := g.pathTo(t, id); path != nil {
			return append([]string{id}, path...)
		}
	}
	return nil
}

// pathTo finds a path from -> ... -> to over existing edges, skipping the
// outgoing edges of to itself. Returns nil when unreachable.
func (g *Graph) pathTo(from, to string) []string {
	visited := make(map[string]bool)
	var path []string
	var dfs func(n string) bool
	dfs = func(n string) bool {
		if visited[n] {
			return false
		}
		visited[n] = true
		path = append(path, n)
		if n == to {
			return true
		}
		for _, next := range g.edges(n) {
			if dfs(next) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}
	if dfs(from) {
		return path
	}
	return nil
}
