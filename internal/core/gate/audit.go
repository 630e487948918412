package gate

import (
	"github.com/example/blueprint/internal/core/artifact"
	"github.com/example/blueprint/internal/core/graph"
	"github.com/example/blueprint/internal/core/violation"
)

// ValidateAll runs a full diagnostic pass over a snapshot and reports every
// violation found rather than stopping at the first. Nothing is mutated.
func (v *Validator) ValidateAll(g *graph.Graph) *violation.Report {
	report := &violation.Report{}

	for _, id := range g.Duplicates() {
		report.Add(violation.New(violation.ErrDuplicateID, violation.GateDuplicate, id).WithRef("id"))
	}

	for _, a := range g.All() {
		if err := CheckPrefix(a, ""); err != nil {
			report.Add(err)
		}
		for _, f := range artifact.MissingFields(a) {
			report.Add(violation.New(violation.ErrMissingRequiredField, violation.GateFields, a.ID).
				WithRef(f).
				Want("non-empty", "empty"))
		}
		for _, err := range g.OrphanViolations(a) {
			report.Add(err)
		}
		if err := v.auditParentStatus(g, a); err != nil {
			report.Add(err)
		}
	}

	for _, err := range auditSequences(g) {
		report.Add(err)
	}

	for _, path := range g.Cycles() {
		report.Add(violation.New(violation.ErrCyclicDependency, violation.GateCycle, path[0]).WithPath(path))
	}

	report.Sort()
	return report
}

// auditParentStatus flags live artifacts whose parent has since left the
// APPROVED state (DONE counts as approved-and-closed). ARCHIVED and REJECTED
// children are not held to it.
func (v *Validator) auditParentStatus(g *graph.Graph, a *artifact.Artifact) *violation.Error {
	rule := artifact.ParentRuleFor(a.Type)
	if !rule.MustBeApproved || a.ParentID == "" {
		return nil
	}
	if a.Status == artifact.StatusArchived || a.Status == artifact.StatusRejected {
		return nil
	}
	parent, ok := g.Get(a.ParentID)
	if !ok || !rule.AllowsParentType(parent.Type) {
		return nil
	}
	switch parent.Status {
	case artifact.StatusApproved, artifact.StatusDone:
	default:
		return violation.New(violation.ErrParentNotApproved, violation.GateParentStatus, a.ID).
			WithRef(parent.ID).
			Want(string(artifact.StatusApproved), string(parent.Status))
	}
	if a.Type == artifact.TypeUseCase && parent.ResearchRequired() {
		return v.checkResearch(g, a, parent)
	}
	return nil
}

// auditSequences reports gaps in each prefix's numbering. The first ID after
// a gap carries the violation, naming the number that was skipped.
func auditSequences(g *graph.Graph) []*violation.Error {
	var out []*violation.Error
	for _, t := range artifact.AllTypes() {
		expected := 1
		for _, n := range g.Numbers(artifact.Prefix(t)) {
			if n > expected {
				out = append(out, violation.New(violation.ErrNonSequentialID, violation.GateMonotonic, artifact.FormatID(t, n)).
					WithRef("id").
					Want(artifact.FormatID(t, expected), artifact.FormatID(t, n)))
			}
			expected = n + 1
		}
	}
	return out
}
