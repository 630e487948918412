package sprint

import (
	"github.com/example/blueprint/internal/core/artifact"
	"github.com/example/blueprint/internal/core/gate"
	"github.com/example/blueprint/internal/core/graph"
	"github.com/example/blueprint/internal/core/violation"
)

// IsReady reports whether a task may be pulled into a new sprint:
// APPROVED, unscheduled, parent use case APPROVED, every dependency DONE.
func IsReady(g *graph.Graph, t *artifact.Artifact) bool {
	if t.Type != artifact.TypeTask || t.Status != artifact.StatusApproved || t.SprintID != "" {
		return false
	}
	parent, ok := g.Get(t.ParentID)
	if !ok || parent.Type != artifact.TypeUseCase || parent.Status != artifact.StatusApproved {
		return false
	}
	return gate.CheckDependencyReadiness(g, t, nil) == nil
}

// ReadyBacklog returns the ready tasks ordered by ID number.
func ReadyBacklog(g *graph.Graph) []*artifact.Artifact {
	var out []*artifact.Artifact
	for _, t := range g.ByType(artifact.TypeTask) {
		if IsReady(g, t) {
			out = append(out, t)
		}
	}
	return out
}

// PlanContext provides context for planning a sprint.
type PlanContext struct {
	Graph   *graph.Graph
	TaskIDs []string
	// Current is the most recent sprint, or nil.
	Current *Sprint
}

// Plan validates a requested batch and returns it in execution order: every
// task appears after the batch members it depends on, and ties keep request
// order. Nothing is scheduled unless the whole batch passes.
func Plan(ctx PlanContext) ([]string, error) {
	g := ctx.Graph
	if ctx.Current.IsOpen() {
		return nil, violation.New(violation.ErrSprintActive, violation.GateSprint, ctx.Current.ID).
			Want("no open sprint", ctx.Current.ID)
	}

	ids := artifact.NormalizeDependencies(ctx.TaskIDs)
	if len(ids) == 0 {
		return nil, violation.New(violation.ErrNotSchedulable, violation.GateSprint, "").
			WithRef("tasks").
			Want("at least one task", "none")
	}

	inBatch := make(map[string]bool, len(ids))
	for _, id := range ids {
		inBatch[id] = true
	}

	for _, id := range ids {
		if err := checkSchedulable(g, id, inBatch); err != nil {
			return nil, err
		}
	}

	if cycles := graph.DetectCycles(ids, batchEdges(g, inBatch)); len(cycles) > 0 {
		return nil, violation.New(violation.ErrCyclicSprintScope, violation.GateSprint, cycles[0][0]).
			WithPath(cycles[0])
	}
	return TopoOrder(ids, batchEdges(g, inBatch)), nil
}

func checkSchedulable(g *graph.Graph, id string, inBatch map[string]bool) error {
	t, ok := g.Get(id)
	if !ok {
		return violation.NotFound(id)
	}
	if t.Type != artifact.TypeTask {
		return violation.New(violation.ErrNotSchedulable, violation.GateSprint, id).
			WithRef("type").
			Want(string(artifact.TypeTask), string(t.Type))
	}
	if t.Status != artifact.StatusApproved {
		return violation.New(violation.ErrNotSchedulable, violation.GateSprint, id).
			WithRef("status").
			Want(string(artifact.StatusApproved), string(t.Status))
	}
	if t.SprintID != "" {
		return violation.New(violation.ErrNotSchedulable, violation.GateSprint, id).
			WithRef("sprint").
			Want("unscheduled", t.SprintID)
	}
	parent, ok := g.Get(t.ParentID)
	if !ok {
		return violation.New(violation.ErrBrokenChain, violation.GateOrphan, id).
			WithRef(t.ParentID).
			Want("existing parent", "missing")
	}
	if parent.Status != artifact.StatusApproved {
		return violation.New(violation.ErrParentNotApproved, violation.GateParentStatus, id).
			WithRef(parent.ID).
			Want(string(artifact.StatusApproved), string(parent.Status))
	}
	if err := gate.CheckDependencyReadiness(g, t, inBatch); err != nil {
		return err
	}
	return nil
}

// batchEdges restricts dependency edges to members of the batch.
func batchEdges(g *graph.Graph, inBatch map[string]bool) func(string) []string {
	return func(id string) []string {
		t, ok := g.Get(id)
		if !ok {
			return nil
		}
		var out []string
		for _, d := range t.Dependencies {
			if inBatch[d] {
				out = append(out, d)
			}
		}
		return out
	}
}

// TopoOrder runs Kahn's algorithm over ids, where deps(id) lists what id must
// follow. Among ready nodes the earliest in ids goes first. Nodes caught in a
// cycle are appended in input order so the result is always a permutation.
func TopoOrder(ids []string, deps func(string) []string) []string {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	indegree := make(map[string]int, len(ids))
	dependents := make(map[string][]string, len(ids))
	for _, id := range ids {
		for _, d := range deps(id) {
			if _, ok := pos[d]; !ok || d == id {
				continue
			}
			indegree[id]++
			dependents[d] = append(dependents[d], id)
		}
	}

	placed := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for len(out) < len(ids) {
		next := ""
		for _, id := range ids {
			if !placed[id] && indegree[id] == 0 {
				next = id
				break
			}
		}
		if next == "" {
			for _, id := range ids {
				if !placed[id] {
					out = append(out, id)
					placed[id] = true
				}
			}
			break
		}
		placed[next] = true
		out = append(out, next)
		for _, dep := range dependents[next] {
			indegree[dep]--
		}
	}
	return out
}
