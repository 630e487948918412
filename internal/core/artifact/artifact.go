// Package artifact contains the pure domain model for blueprint artifacts.
// This is part of the Functional Core - no I/O, only types and pure functions.
package artifact

import (
	"strings"
	"time"
)

// Type identifies the kind of artifact.
type Type string

const (
	TypeGoal     Type = "Goal"
	TypeFeature  Type = "Feature"
	TypeResearch Type = "Research"
	TypeUseCase  Type = "UseCase"
	TypeTask     Type = "Task"
	TypeUMLModel Type = "UMLModel"
)

// Status is a lifecycle state. See the lifecycle package for legal moves.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusReview   Status = "REVIEW"
	StatusApproved Status = "APPROVED"
	StatusNeedsFix Status = "NEEDS_FIX"
	StatusRejected Status = "REJECTED"
	StatusDone     Status = "DONE"
	StatusArchived Status = "ARCHIVED"
)

// Attribute keys read by specific gates.
const (
	AttrResearchRequired = "research_required"
	AttrVerdict          = "verdict"
	AttrHypothesis       = "hypothesis"
)

// Research verdicts.
const (
	VerdictPending = "PENDING"
	VerdictSuccess = "SUCCESS"
	VerdictFailure = "FAILURE"
)

// Artifact is a typed, versioned record in the traceability graph.
type Artifact struct {
	ID            string
	Type          Type
	Status        Status
	Title         string
	ParentID      string
	Dependencies  []string
	RevisionCount int
	Body          string
	Attributes    map[string]string
	SprintID      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Clone returns a deep copy so callers can mutate without touching snapshots.
func (a *Artifact) Clone() *Artifact {
	if a == nil {
		return nil
	}
	c := *a
	c.Dependencies = append([]string(nil), a.Dependencies...)
	if a.Attributes != nil {
		c.Attributes = make(map[string]string, len(a.Attributes))
		for k, v := range a.Attributes {
			c.Attributes[k] = v
		}
	}
	return &c
}

// Attr returns a trimmed attribute value, or "" when absent.
func (a *Artifact) Attr(key string) string {
	if a == nil || a.Attributes == nil {
		return ""
	}
	return strings.TrimSpace(a.Attributes[key])
}

// ResearchRequired reports whether a Feature demands a research spike
// before use cases may be written against it.
func (a *Artifact) ResearchRequired() bool {
	switch strings.ToLower(a.Attr(AttrResearchRequired)) {
	case "true", "yes", "1":
		return true
	}
	return false
}

// Verdict returns the upper-cased research verdict.
func (a *Artifact) Verdict() string {
	return strings.ToUpper(a.Attr(AttrVerdict))
}

// AllTypes lists the artifact types in hierarchy order.
func AllTypes() []Type {
	return []Type{TypeGoal, TypeFeature, TypeResearch, TypeUseCase, TypeTask, TypeUMLModel}
}

// ParseType resolves a type name case-insensitively.
func ParseType(s string) (Type, bool) {
	for _, t := range AllTypes() {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, true
		}
	}
	return "", false
}

// AllStatuses lists every lifecycle state.
func AllStatuses() []Status {
	return []Status{StatusDraft, StatusReview, StatusApproved, StatusNeedsFix, StatusRejected, StatusDone, StatusArchived}
}

// ParseStatus resolves a status name case-insensitively.
func ParseStatus(s string) (Status, bool) {
	for _, st := range AllStatuses() {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, true
		}
	}
	return "", false
}

// InitialStatus returns the status every new artifact starts in.
func InitialStatus() Status {
	return StatusDraft
}

// NormalizeDependencies trims, drops empties and removes duplicates while
// keeping first-seen order.
func NormalizeDependencies(deps []string) []string {
	if len(deps) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(deps))
	out := make([]string, 0, len(deps))
	for _, d := range deps {
		d = strings.TrimSpace(d)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
