// Package gate contains the validation rules that block illegal artifact
// creation and status transitions. Gates are pure functions over a graph
// snapshot: they never perform I/O and never mutate the artifacts they read.
//
// Creation runs, fail-fast and in order: prefix/filename, field completeness,
// orphan, parent status, duplicate, ID monotonicity, cycle. Status updates run
// the forbidden-transition gate first, then the orphan gate, then semantic
// gates specific to the target status. Dependency readiness is only checked
// at sprint-scheduling time.
package gate

import (
	"path/filepath"
	"strings"

	"github.com/example/blueprint/internal/core/artifact"
	"github.com/example/blueprint/internal/core/graph"
	"github.com/example/blueprint/internal/core/lifecycle"
	"github.com/example/blueprint/internal/core/violation"
)

// Options tunes the configurable gate rules.
type Options struct {
	// ResearchPendingSatisfies lets a Research spike with verdict PENDING
	// satisfy the research-required gate (SUCCESS always does).
	ResearchPendingSatisfies bool
}

// DefaultOptions returns the rule set used when nothing is configured.
func DefaultOptions() Options {
	return Options{ResearchPendingSatisfies: true}
}

// Validator evaluates gates with a fixed option set.
type Validator struct {
	opts Options
}

// NewValidator creates a Validator.
func NewValidator(opts Options) *Validator {
	return &Validator{opts: opts}
}

// Options returns the validator's rule options.
func (v *Validator) Options() Options {
	return v.opts
}

// CreateContext provides context for creation gates.
type CreateContext struct {
	Candidate *artifact.Artifact
	// Filename is an optional alternate key (e.g. the markdown file the
	// artifact was read from). When set, its base name must equal the ID.
	Filename string
	Graph    *graph.Graph
}

// CheckCreate runs every creation gate and returns the first failure.
func (v *Validator) CheckCreate(ctx CreateContext) error {
	a, g := ctx.Candidate, ctx.Graph
	checks := []func() *violation.Error{
		func() *violation.Error { return CheckPrefix(a, ctx.Filename) },
		func() *violation.Error { return CheckFields(a) },
		func() *violation.Error { return CheckOrphan(g, a) },
		func() *violation.Error { return v.CheckParentStatus(g, a) },
		func() *violation.Error { return CheckDuplicate(g, a) },
		func() *violation.Error { return CheckMonotonic(g, a) },
		func() *violation.Error { return CheckCycle(g, a) },
	}
	return firstFailure(checks)
}

// TransitionContext provides context for status-update gates.
type TransitionContext struct {
	Artifact *artifact.Artifact
	To       artifact.Status
	Graph    *graph.Graph
}

// CheckTransition validates a status change. Structural legality is checked
// before any gate specific to the target status.
func (v *Validator) CheckTransition(ctx TransitionContext) error {
	a, g := ctx.Artifact, ctx.Graph
	checks := []func() *violation.Error{
		func() *violation.Error { return CheckForbiddenTransition(a, ctx.To) },
		func() *violation.Error { return CheckOrphan(g, a) },
		func() *violation.Error { return checkTargetStatus(g, a, ctx.To) },
	}
	return firstFailure(checks)
}

// UpdateContext provides context for content-mutation gates.
type UpdateContext struct {
	Before *artifact.Artifact
	After  *artifact.Artifact
	Graph  *graph.Graph
}

// CheckUpdate validates an in-place content mutation (title, body,
// dependencies, attributes). The parent link is immutable.
func (v *Validator) CheckUpdate(ctx UpdateContext) error {
	before, after, g := ctx.Before, ctx.After, ctx.Graph
	checks := []func() *violation.Error{
		func() *violation.Error {
			if after.ParentID != before.ParentID {
				return violation.New(violation.ErrBrokenChain, violation.GateOrphan, before.ID).
					WithRef("parent_id").
					Want(orDash(before.ParentID), orDash(after.ParentID))
			}
			return nil
		},
		func() *violation.Error {
			if lifecycle.IsTerminal(before.Status) {
				return violation.New(violation.ErrForbiddenTransition, violation.GateTransition, before.ID).
					WithRef("content").
					Want("non-terminal status", string(before.Status))
			}
			return nil
		},
		func() *violation.Error { return CheckFields(after) },
		func() *violation.Error { return CheckOrphan(g, after) },
		func() *violation.Error { return CheckCycle(g, after) },
	}
	return firstFailure(checks)
}

func firstFailure(checks []func() *violation.Error) error {
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// CheckPrefix verifies that the ID prefix matches the declared type, that the
// ID is in canonical PREFIX-NNN form, and that any alternate key equals the ID.
func CheckPrefix(a *artifact.Artifact, filename string) *violation.Error {
	prefix := artifact.Prefix(a.Type)
	if prefix == "" {
		return violation.New(violation.ErrPrefixMismatch, violation.GatePrefix, a.ID).
			WithRef("type").
			Want("known artifact type", string(a.Type))
	}
	if !artifact.IsCanonicalID(a.Type, a.ID) {
		got, _, _ := artifact.ParseID(a.ID)
		return violation.New(violation.ErrPrefixMismatch, violation.GatePrefix, a.ID).
			WithRef("id").
			Want(prefix+"-NNN", orDash(got))
	}
	if filename != "" {
		base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		if base != a.ID {
			return violation.New(violation.ErrFilenameMismatch, violation.GatePrefix, a.ID).
				WithRef(filename).
				Want(a.ID, base)
		}
	}
	return nil
}

// CheckFields verifies every type-mandated field is non-empty.
func CheckFields(a *artifact.Artifact) *violation.Error {
	if missing := artifact.MissingFields(a); len(missing) > 0 {
		return violation.New(violation.ErrMissingRequiredField, violation.GateFields, a.ID).
			WithRef(missing[0]).
			Want("non-empty", "empty")
	}
	return nil
}

// CheckOrphan verifies the parent and every dependency resolve.
func CheckOrphan(g *graph.Graph, a *artifact.Artifact) *violation.Error {
	if vs := g.OrphanViolations(a); len(vs) > 0 {
		return vs[0]
	}
	return nil
}

// CheckParentStatus verifies that a new artifact's parent is APPROVED where
// its type demands it, including the research-required rule for use cases.
func (v *Validator) CheckParentStatus(g *graph.Graph, a *artifact.Artifact) *violation.Error {
	rule := artifact.ParentRuleFor(a.Type)
	if !rule.MustBeApproved || a.ParentID == "" {
		return nil
	}
	parent, ok := g.Get(a.ParentID)
	if !ok {
		return nil
	}
	if parent.Status != artifact.StatusApproved {
		return violation.New(violation.ErrParentNotApproved, violation.GateParentStatus, a.ID).
			WithRef(parent.ID).
			Want(string(artifact.StatusApproved), string(parent.Status))
	}
	if a.Type == artifact.TypeUseCase && parent.ResearchRequired() {
		return v.checkResearch(g, a, parent)
	}
	return nil
}

func (v *Validator) checkResearch(g *graph.Graph, a, feature *artifact.Artifact) *violation.Error {
	var verdicts []string
	for _, child := range g.Children(feature.ID) {
		if child.Type != artifact.TypeResearch || child.Status == artifact.StatusArchived {
			continue
		}
		verdict := child.Verdict()
		if verdict == artifact.VerdictSuccess {
			return nil
		}
		if verdict == artifact.VerdictPending && v.opts.ResearchPendingSatisfies {
			return nil
		}
		verdicts = append(verdicts, child.ID+"="+orDash(verdict))
	}
	want := artifact.VerdictSuccess
	if v.opts.ResearchPendingSatisfies {
		want += "|" + artifact.VerdictPending
	}
	got := "no research"
	if len(verdicts) > 0 {
		got = strings.Join(verdicts, ",")
	}
	return violation.New(violation.ErrResearchRequiredUnmet, violation.GateParentStatus, a.ID).
		WithRef(feature.ID).
		Want("research verdict "+want, got)
}

// CheckDuplicate verifies the ID is not already present.
func CheckDuplicate(g *graph.Graph, a *artifact.Artifact) *violation.Error {
	if g.Has(a.ID) {
		return violation.New(violation.ErrDuplicateID, violation.GateDuplicate, a.ID).
			WithRef("id")
	}
	return nil
}

// CheckMonotonic verifies the ID is exactly max(existing of its prefix) + 1.
func CheckMonotonic(g *graph.Graph, a *artifact.Artifact) *violation.Error {
	prefix := artifact.Prefix(a.Type)
	want := artifact.NextID(a.Type, g.MaxNumber(prefix))
	if a.ID != want {
		return violation.New(violation.ErrNonSequentialID, violation.GateMonotonic, a.ID).
			WithRef("id").
			Want(want, a.ID)
	}
	return nil
}

// CheckCycle rejects edges that would close a cycle in the combined graph.
func CheckCycle(g *graph.Graph, a *artifact.Artifact) *violation.Error {
	if path := g.WouldCycle(a.ID, a.ParentID, a.Dependencies); path != nil {
		return violation.New(violation.ErrCyclicDependency, violation.GateCycle, a.ID).
			WithPath(path)
	}
	return nil
}

// CheckForbiddenTransition validates a move against the legal-transition table.
func CheckForbiddenTransition(a *artifact.Artifact, to artifact.Status) *violation.Error {
	result := lifecycle.CanTransition(lifecycle.TransitionContext{
		ArtifactID: a.ID,
		From:       a.Status,
		To:         to,
	})
	if !result.Allowed {
		return violation.New(violation.ErrForbiddenTransition, violation.GateTransition, a.ID).
			WithRef(result.Reason).
			Want(string(a.Status)+" -> "+string(to), "illegal")
	}
	return nil
}

// checkTargetStatus holds the semantic gates keyed by target status.
// A Task may only be closed while its use case is APPROVED or DONE.
func checkTargetStatus(g *graph.Graph, a *artifact.Artifact, to artifact.Status) *violation.Error {
	if a.Type == artifact.TypeTask && to == artifact.StatusDone {
		parent, ok := g.Get(a.ParentID)
		if !ok {
			return nil
		}
		if parent.Status != artifact.StatusApproved && parent.Status != artifact.StatusDone {
			return violation.New(violation.ErrParentNotApproved, violation.GateParentStatus, a.ID).
				WithRef(parent.ID).
				Want(string(artifact.StatusApproved), string(parent.Status))
		}
	}
	return nil
}

// CheckDependencyReadiness verifies every dependency of a is DONE, or is
// scheduled in the same batch (inBatch) where it will be ordered first.
func CheckDependencyReadiness(g *graph.Graph, a *artifact.Artifact, inBatch map[string]bool) *violation.Error {
	for _, d := range a.Dependencies {
		if inBatch[d] {
			continue
		}
		dep, ok := g.Get(d)
		if !ok {
			return violation.New(violation.ErrBrokenChain, violation.GateOrphan, a.ID).
				WithRef(d).
				Want("existing dependency", "missing")
		}
		if dep.Status != artifact.StatusDone {
			return violation.New(violation.ErrDependencyNotReady, violation.GateDependencyReadiness, a.ID).
				WithRef(d).
				Want(string(artifact.StatusDone), string(dep.Status))
		}
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
