package lifecycle

import (
	"testing"

	"github.com/example/blueprint/internal/core/artifact"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name        string
		from        artifact.Status
		to          artifact.Status
		wantAllowed bool
		wantReason  string
	}{
		{name: "draft to review", from: artifact.StatusDraft, to: artifact.StatusReview, wantAllowed: true},
		{name: "review to approved", from: artifact.StatusReview, to: artifact.StatusApproved, wantAllowed: true},
		{name: "review to needs fix", from: artifact.StatusReview, to: artifact.StatusNeedsFix, wantAllowed: true},
		{name: "review to rejected", from: artifact.StatusReview, to: artifact.StatusRejected, wantAllowed: true},
		{name: "needs fix back to review", from: artifact.StatusNeedsFix, to: artifact.StatusReview, wantAllowed: true},
		{name: "needs fix to archived", from: artifact.StatusNeedsFix, to: artifact.StatusArchived, wantAllowed: true},
		{name: "rejected back to review", from: artifact.StatusRejected, to: artifact.StatusReview, wantAllowed: true},
		{name: "rejected to archived", from: artifact.StatusRejected, to: artifact.StatusArchived, wantAllowed: true},
		{name: "approved to done", from: artifact.StatusApproved, to: artifact.StatusDone, wantAllowed: true},
		{name: "approved to archived", from: artifact.StatusApproved, to: artifact.StatusArchived, wantAllowed: true},
		{
			name:       "draft cannot skip review",
			from:       artifact.StatusDraft,
			to:         artifact.StatusApproved,
			wantReason: "cannot move TSK-001 from DRAFT to APPROVED",
		},
		{
			name:       "done is terminal",
			from:       artifact.StatusDone,
			to:         artifact.StatusReview,
			wantReason: "TSK-001 is DONE; terminal states have no outgoing transitions",
		},
		{
			name:       "archived is terminal",
			from:       artifact.StatusArchived,
			to:         artifact.StatusDraft,
			wantReason: "TSK-001 is ARCHIVED; terminal states have no outgoing transitions",
		},
		{
			name:       "self transition is illegal",
			from:       artifact.StatusReview,
			to:         artifact.StatusReview,
			wantReason: "cannot move TSK-001 from REVIEW to REVIEW",
		},
		{
			name:       "unknown target",
			from:       artifact.StatusDraft,
			to:         artifact.Status("IN_PROGRESS"),
			wantReason: `unknown status "IN_PROGRESS"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanTransition(TransitionContext{ArtifactID: "TSK-001", From: tt.from, To: tt.to})

			if result.Allowed != tt.wantAllowed {
				t.Errorf("CanTransition() Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if result.Reason != tt.wantReason {
				t.Errorf("CanTransition() Reason = %q, want %q", result.Reason, tt.wantReason)
			}

			err := result.Error()
			if tt.wantAllowed && err != nil {
				t.Errorf("CanTransition().Error() = %v, want nil", err)
			}
			if !tt.wantAllowed && err == nil {
				t.Error("CanTransition().Error() = nil, want error")
			}
		})
	}
}

func TestTerminalStatesHaveNoTargets(t *testing.T) {
	for _, s := range artifact.AllStatuses() {
		if IsTerminal(s) && len(AllowedTargets(s)) != 0 {
			t.Errorf("terminal status %s has targets %v", s, AllowedTargets(s))
		}
		if !IsTerminal(s) && len(AllowedTargets(s)) == 0 {
			t.Errorf("non-terminal status %s has no targets", s)
		}
	}
}
