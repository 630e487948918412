package graph

import (
	"github.com/example/blueprint/internal/core/artifact"
	"github.com/example/blueprint/internal/core/violation"
)

// Orphans returns a BrokenChain violation for every artifact whose parent is
// set but unresolved, whose type mandates a parent that is absent, or whose
// dependencies do not resolve.
func (g *Graph) Orphans() []*violation.Error {
	var out []*violation.Error
	for _, id := range g.ordered {
		out = append(out, g.OrphanViolations(g.nodes[id])...)
	}
	return out
}

// OrphanViolations checks one artifact's references against the graph. The
// artifact itself does not have to be part of the graph, which lets the gate
// validator run this on a candidate before it is stored.
func (g *Graph) OrphanViolations(a *artifact.Artifact) []*violation.Error {
	var out []*violation.Error
	rule := artifact.ParentRuleFor(a.Type)

	switch {
	case a.ParentID == "" && rule.Required:
		out = append(out, violation.New(violation.ErrBrokenChain, violation.GateOrphan, a.ID).
			WithRef("parent_id").
			Want(parentTypesString(rule), "none"))
	case a.ParentID != "" && len(rule.Allowed) == 0:
		out = append(out, violation.New(violation.ErrBrokenChain, violation.GateOrphan, a.ID).
			WithRef(a.ParentID).
			Want("no parent", a.ParentID))
	case a.ParentID != "":
		parent, ok := g.Get(a.ParentID)
		if !ok {
			out = append(out, violation.New(violation.ErrBrokenChain, violation.GateOrphan, a.ID).
				WithRef(a.ParentID).
				Want("existing parent", "missing"))
		} else if !rule.AllowsParentType(parent.Type) {
			out = append(out, violation.New(violation.ErrBrokenChain, violation.GateOrphan, a.ID).
				WithRef(a.ParentID).
				Want(parentTypesString(rule), string(parent.Type)))
		}
	}

	for _, d := range a.Dependencies {
		if d == a.ID {
			continue // reported by the cycle gate
		}
		if !g.Has(d) {
			out = append(out, violation.New(violation.ErrBrokenChain, violation.GateOrphan, a.ID).
				WithRef(d).
				Want("existing dependency", "missing"))
		}
	}
	return out
}

func parentTypesString(rule artifact.ParentRule) string {
	s := ""
	for i, t := range rule.Allowed {
		if i > 0 {
			s += "|"
		}
		s += string(t)
	}
	return s
}
