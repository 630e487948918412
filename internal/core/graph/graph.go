// Package graph builds the traceability graph over a snapshot of artifacts.
//
// Nodes are artifact IDs. Vertical edges run child -> parent (from ParentID)
// and horizontal edges run dependent -> dependency (from Dependencies). The
// graph is a derived view: it holds no state the artifact set cannot rebuild.
package graph

import (
	"sort"

	"github.com/example/blueprint/internal/core/artifact"
	"github.com/example/blueprint/internal/core/violation"
)

// Graph is an immutable index over one artifact snapshot.
type Graph struct {
	nodes      map[string]*artifact.Artifact
	ordered    []string
	children   map[string][]string
	duplicates []string
	generation int64
}

// Build indexes artifacts. When the same ID appears twice the first one wins
// and the repeat is recorded in Duplicates.
func Build(artifacts []*artifact.Artifact) *Graph {
	g := &Graph{
		nodes:    make(map[string]*artifact.Artifact, len(artifacts)),
		ordered:  make([]string, 0, len(artifacts)),
		children: make(map[string][]string),
	}
	for _, a := range artifacts {
		if a == nil {
			continue
		}
		if _, exists := g.nodes[a.ID]; exists {
			g.duplicates = append(g.duplicates, a.ID)
			continue
		}
		g.nodes[a.ID] = a
		g.ordered = append(g.ordered, a.ID)
	}
	sort.SliceStable(g.ordered, func(i, j int) bool {
		return lessID(g.ordered[i], g.ordered[j])
	})
	for _, id := range g.ordered {
		if p := g.nodes[id].ParentID; p != "" {
			g.children[p] = append(g.children[p], id)
		}
	}
	return g
}

// WithGeneration stamps the store generation the snapshot was taken at.
func (g *Graph) WithGeneration(gen int64) *Graph {
	g.generation = gen
	return g
}

// Generation returns the store generation of the snapshot.
func (g *Graph) Generation() int64 {
	return g.generation
}

// lessID orders by type hierarchy, then by sequence number, then lexically.
func lessID(a, b string) bool {
	ta, okA := artifact.TypeFromID(a)
	tb, okB := artifact.TypeFromID(b)
	if okA && okB && ta != tb {
		return typeRank(ta) < typeRank(tb)
	}
	na, nb := artifact.Number(a), artifact.Number(b)
	if na != nb && na > 0 && nb > 0 && ta == tb {
		return na < nb
	}
	return a < b
}

func typeRank(t artifact.Type) int {
	for i, x := range artifact.AllTypes() {
		if x == t {
			return i
		}
	}
	return len(artifact.AllTypes())
}

// Len returns the number of distinct artifacts.
func (g *Graph) Len() int {
	return len(g.ordered)
}

// Get looks up an artifact by ID.
func (g *Graph) Get(id string) (*artifact.Artifact, bool) {
	a, ok := g.nodes[id]
	return a, ok
}

// Has reports whether id resolves.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// All returns every artifact in hierarchy order.
func (g *Graph) All() []*artifact.Artifact {
	out := make([]*artifact.Artifact, 0, len(g.ordered))
	for _, id := range g.ordered {
		out = append(out, g.nodes[id])
	}
	return out
}

// ByType returns the artifacts of one type in ID order.
func (g *Graph) ByType(t artifact.Type) []*artifact.Artifact {
	var out []*artifact.Artifact
	for _, id := range g.ordered {
		if a := g.nodes[id]; a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

// Children returns the direct children of id in ID order.
func (g *Graph) Children(id string) []*artifact.Artifact {
	ids := g.children[id]
	out := make([]*artifact.Artifact, 0, len(ids))
	for _, c := range ids {
		out = append(out, g.nodes[c])
	}
	return out
}

// Duplicates lists IDs that appeared more than once in the input.
func (g *Graph) Duplicates() []string {
	return append([]string(nil), g.duplicates...)
}

// Numbers returns the sorted sequence numbers used under a prefix.
func (g *Graph) Numbers(prefix string) []int {
	var nums []int
	for _, id := range g.ordered {
		p, n, ok := artifact.ParseID(id)
		if ok && p == prefix {
			nums = append(nums, n)
		}
	}
	sort.Ints(nums)
	return nums
}

// MaxNumber returns the highest sequence number under a prefix, or 0.
func (g *Graph) MaxNumber(prefix string) int {
	nums := g.Numbers(prefix)
	if len(nums) == 0 {
		return 0
	}
	return nums[len(nums)-1]
}

// edges returns the resolved outgoing edges of id: parent first, then
// dependencies in declaration order.
func (g *Graph) edges(id string) []string {
	a, ok := g.nodes[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(a.Dependencies)+1)
	if a.ParentID != "" && g.Has(a.ParentID) {
		out = append(out, a.ParentID)
	}
	for _, d := range a.Dependencies {
		if g.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// ReversePath walks vertical edges from id up to a rootless artifact and
// returns the chain [id, parent, ..., root]. It fails with BrokenChain at the
// first parent that does not resolve and never loops.
func (g *Graph) ReversePath(id string) ([]*artifact.Artifact, error) {
	current, ok := g.nodes[id]
	if !ok {
		return nil, violation.NotFound(id)
	}
	var chain []*artifact.Artifact
	seen := make(map[string]bool)
	var path []string
	for {
		if seen[current.ID] {
			path = append(path, current.ID)
			return nil, violation.New(violation.ErrCyclicDependency, violation.GateCycle, id).WithPath(path)
		}
		seen[current.ID] = true
		path = append(path, current.ID)
		chain = append(chain, current)
		if current.ParentID == "" {
			return chain, nil
		}
		parent, ok := g.nodes[current.ParentID]
		if !ok {
			return nil, violation.New(violation.ErrBrokenChain, violation.GateOrphan, current.ID).
				WithRef(current.ParentID).
				Want("existing parent", "missing")
		}
		current = parent
	}
}
