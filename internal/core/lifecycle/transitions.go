// Package lifecycle contains the artifact status state machine.
// This is part of the Functional Core - no I/O, only pure functions.
package lifecycle

import (
	"fmt"

	"github.com/example/blueprint/internal/core/artifact"
)

var legal = map[artifact.Status][]artifact.Status{
	artifact.StatusDraft:    {artifact.StatusReview},
	artifact.StatusReview:   {artifact.StatusApproved, artifact.StatusNeedsFix, artifact.StatusRejected},
	artifact.StatusNeedsFix: {artifact.StatusReview, artifact.StatusArchived},
	artifact.StatusRejected: {artifact.StatusReview, artifact.StatusArchived},
	artifact.StatusApproved: {artifact.StatusDone, artifact.StatusArchived},
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// TransitionContext provides context for the structural transition guard.
type TransitionContext struct {
	ArtifactID string
	From       artifact.Status
	To         artifact.Status
}

// CanTransition evaluates whether a status move is structurally legal.
// Rules:
// - target must be a known status
// - DONE and ARCHIVED have no outgoing transitions
// - the move must appear in the legal-transition table
func CanTransition(ctx TransitionContext) GuardResult {
	if _, ok := artifact.ParseStatus(string(ctx.To)); !ok {
		return GuardResult{Reason: fmt.Sprintf("unknown status %q", ctx.To)}
	}
	if IsTerminal(ctx.From) {
		return GuardResult{Reason: fmt.Sprintf("%s is %s; terminal states have no outgoing transitions", ctx.ArtifactID, ctx.From)}
	}
	for _, to := range legal[ctx.From] {
		if to == ctx.To {
			return GuardResult{Allowed: true}
		}
	}
	return GuardResult{Reason: fmt.Sprintf("cannot move %s from %s to %s", ctx.ArtifactID, ctx.From, ctx.To)}
}

// IsTerminal reports whether a status has no outgoing transitions.
func IsTerminal(s artifact.Status) bool {
	return s == artifact.StatusDone || s == artifact.StatusArchived
}

// AllowedTargets returns the legal next statuses, in table order.
func AllowedTargets(from artifact.Status) []artifact.Status {
	return append([]artifact.Status(nil), legal[from]...)
}
