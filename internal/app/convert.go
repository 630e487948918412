package app

import (
	"errors"
	"time"

	"github.com/example/blueprint/internal/core/artifact"
	coresprint "github.com/example/blueprint/internal/core/sprint"
	"github.com/example/blueprint/internal/core/violation"
	"github.com/example/blueprint/internal/ports/primary"
	"github.com/example/blueprint/internal/ports/secondary"
)

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func recordToArtifact(r *secondary.ArtifactRecord) *artifact.Artifact {
	return &artifact.Artifact{
		ID:            r.ID,
		Type:          artifact.Type(r.Type),
		Status:        artifact.Status(r.Status),
		Title:         r.Title,
		ParentID:      r.ParentID,
		Dependencies:  append([]string(nil), r.Dependencies...),
		RevisionCount: r.RevisionCount,
		Body:          r.Body,
		Attributes:    copyAttributes(r.Attributes),
		SprintID:      r.SprintID,
		CreatedAt:     parseTime(r.CreatedAt),
		UpdatedAt:     parseTime(r.UpdatedAt),
	}
}

func recordsToArtifacts(records []*secondary.ArtifactRecord) []*artifact.Artifact {
	out := make([]*artifact.Artifact, len(records))
	for i, r := range records {
		out[i] = recordToArtifact(r)
	}
	return out
}

func artifactToRecord(a *artifact.Artifact) *secondary.ArtifactRecord {
	return &secondary.ArtifactRecord{
		ID:            a.ID,
		Type:          string(a.Type),
		Status:        string(a.Status),
		Title:         a.Title,
		ParentID:      a.ParentID,
		Dependencies:  append([]string(nil), a.Dependencies...),
		RevisionCount: a.RevisionCount,
		Body:          a.Body,
		Attributes:    copyAttributes(a.Attributes),
		SprintID:      a.SprintID,
		CreatedAt:     formatTime(a.CreatedAt),
		UpdatedAt:     formatTime(a.UpdatedAt),
	}
}

func recordToPort(r *secondary.ArtifactRecord) *primary.Artifact {
	return &primary.Artifact{
		ID:            r.ID,
		Type:          r.Type,
		Status:        r.Status,
		Title:         r.Title,
		ParentID:      r.ParentID,
		Dependencies:  append([]string(nil), r.Dependencies...),
		RevisionCount: r.RevisionCount,
		Body:          r.Body,
		Attributes:    copyAttributes(r.Attributes),
		SprintID:      r.SprintID,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func artifactToPort(a *artifact.Artifact) *primary.Artifact {
	return recordToPort(artifactToRecord(a))
}

func artifactsToPort(as []*artifact.Artifact) []*primary.Artifact {
	out := make([]*primary.Artifact, len(as))
	for i, a := range as {
		out[i] = artifactToPort(a)
	}
	return out
}

func copyAttributes(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func historyToPort(r *secondary.HistoryRecord) *primary.HistoryEntry {
	return &primary.HistoryEntry{
		ID:        r.ID,
		Action:    r.Action,
		FieldName: r.FieldName,
		OldValue:  r.OldValue,
		NewValue:  r.NewValue,
		Note:      r.Note,
		ActorID:   r.ActorID,
		Revision:  r.Revision,
		CreatedAt: r.CreatedAt,
	}
}

func violationToPort(v *violation.Error) *primary.Violation {
	return &primary.Violation{
		Code:       violation.CodeName(v),
		Gate:       v.Gate,
		ArtifactID: v.ArtifactID,
		Ref:        v.Ref,
		Expected:   v.Expected,
		Actual:     v.Actual,
		Path:       append([]string(nil), v.Path...),
		Message:    v.Error(),
	}
}

func reportToPort(r *violation.Report, artifactCount int) *primary.ValidationReport {
	out := &primary.ValidationReport{
		ArtifactCount: artifactCount,
		Summary:       r.Summary(),
	}
	for _, v := range r.Violations {
		out.Violations = append(out.Violations, violationToPort(v))
	}
	return out
}

// sprintRecordToCore converts a stored sprint; a nil record stays nil so the
// scheduler sees "no sprint yet".
func sprintRecordToCore(r *secondary.SprintRecord) *coresprint.Sprint {
	if r == nil {
		return nil
	}
	s := &coresprint.Sprint{
		ID:        r.ID,
		Goal:      r.Goal,
		Status:    coresprint.Status(r.Status),
		Checked:   make(map[string]bool, len(r.Tasks)),
		CreatedAt: parseTime(r.CreatedAt),
		ClosedAt:  parseTime(r.ClosedAt),
	}
	for _, t := range r.Tasks {
		s.Tasks = append(s.Tasks, t.TaskID)
		if t.Checked {
			s.Checked[t.TaskID] = true
		}
	}
	return s
}

// sprintToPort renders a sprint; titles come from lookup and may be empty.
func sprintToPort(r *secondary.SprintRecord, title func(id string) string) *primary.Sprint {
	out := &primary.Sprint{
		ID:        r.ID,
		Goal:      r.Goal,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		ClosedAt:  r.ClosedAt,
	}
	for _, t := range r.Tasks {
		out.Tasks = append(out.Tasks, &primary.SprintTask{
			TaskID:    t.TaskID,
			Title:     title(t.TaskID),
			Checked:   t.Checked,
			CheckedAt: t.CheckedAt,
		})
	}
	out.Done, out.Total = sprintRecordToCore(r).Progress()
	return out
}

func knowledgeToPort(r *secondary.KnowledgeRecord) *primary.KnowledgeEntry {
	return &primary.KnowledgeEntry{
		Topic:     r.Topic,
		Content:   r.Content,
		ActorID:   r.ActorID,
		CreatedAt: r.CreatedAt,
	}
}

// asViolation extracts the structured gate failure from err, if any.
func asViolation(err error) (*violation.Error, bool) {
	var verr *violation.Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
