package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/example/blueprint/internal/core/artifact"
	"github.com/example/blueprint/internal/core/violation"
	"github.com/example/blueprint/internal/ports/secondary"
)

// ArtifactRepository implements secondary.ArtifactRepository with SQLite.
type ArtifactRepository struct {
	db DBTX
}

// NewArtifactRepository creates a new SQLite artifact repository.
func NewArtifactRepository(db DBTX) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

const artifactColumns = "id, type, status, title, parent_id, body, attributes, sprint_id, revision_count, created_at, updated_at"

// Create persists a new artifact.
// The record must have ID, Type and Status pre-populated by the service layer.
// The stored revision is always 1.
func (r *ArtifactRepository) Create(ctx context.Context, a *secondary.ArtifactRecord) error {
	if a.ID == "" {
		return fmt.Errorf("artifact ID must be pre-populated by service layer")
	}
	if a.Status == "" {
		return fmt.Errorf("artifact Status must be pre-populated by service layer")
	}

	attrs, err := encodeAttributes(a.Attributes)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO artifacts ("+artifactColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)",
		a.ID, a.Type, a.Status, a.Title, nullString(a.ParentID), a.Body, attrs, nullString(a.SprintID), now, now,
	)
	if isPrimaryKeyViolation(err) {
		return violation.New(violation.ErrDuplicateID, violation.GateDuplicate, a.ID).WithRef("id")
	}
	if err != nil {
		return fmt.Errorf("failed to create artifact: %w", err)
	}

	if err := r.writeDependencies(ctx, a.ID, a.Dependencies); err != nil {
		return err
	}

	a.RevisionCount = 1
	a.CreatedAt = now.Format(time.RFC3339)
	a.UpdatedAt = a.CreatedAt
	return nil
}

// GetByID retrieves an artifact by its ID.
func (r *ArtifactRepository) GetByID(ctx context.Context, id string) (*secondary.ArtifactRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+artifactColumns+" FROM artifacts WHERE id = ?", id)
	record, err := scanArtifact(row)
	if err == sql.ErrNoRows {
		return nil, violation.NotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}

	deps, err := r.loadDependencies(ctx, id)
	if err != nil {
		return nil, err
	}
	record.Dependencies = deps[id]
	return record, nil
}

// Update overwrites status, title, body, attributes, sprint and dependencies,
// and bumps revision_count in the same statement. The row is only touched
// when its revision still equals expectedRevision.
func (r *ArtifactRepository) Update(ctx context.Context, a *secondary.ArtifactRecord, expectedRevision int) error {
	attrs, err := encodeAttributes(a.Attributes)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE artifacts
		SET status = ?, title = ?, body = ?, attributes = ?, sprint_id = ?,
			revision_count = revision_count + 1, updated_at = ?
		WHERE id = ? AND revision_count = ?`,
		a.Status, a.Title, a.Body, attrs, nullString(a.SprintID), now, a.ID, expectedRevision,
	)
	if err != nil {
		return fmt.Errorf("failed to update artifact: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		var current int
		err := r.db.QueryRowContext(ctx, "SELECT revision_count FROM artifacts WHERE id = ?", a.ID).Scan(&current)
		if err == sql.ErrNoRows {
			return violation.NotFound(a.ID)
		}
		if err != nil {
			return fmt.Errorf("failed to read artifact revision: %w", err)
		}
		return violation.New(violation.ErrConflict, violation.GateStore, a.ID).
			WithRef("revision_count").
			Want(fmt.Sprint(expectedRevision), fmt.Sprint(current))
	}

	if _, err := r.db.ExecContext(ctx, "DELETE FROM artifact_dependencies WHERE artifact_id = ?", a.ID); err != nil {
		return fmt.Errorf("failed to clear dependencies: %w", err)
	}
	if err := r.writeDependencies(ctx, a.ID, a.Dependencies); err != nil {
		return err
	}

	a.RevisionCount = expectedRevision + 1
	a.UpdatedAt = now.Format(time.RFC3339)
	return nil
}

// List retrieves artifacts matching the given filters, ordered by type and
// sequence number.
func (r *ArtifactRepository) List(ctx context.Context, filters secondary.ArtifactFilters) ([]*secondary.ArtifactRecord, error) {
	query := "SELECT " + artifactColumns + " FROM artifacts"
	var where []string
	args := []any{}

	if filters.Type != "" {
		where = append(where, "type = ?")
		args = append(args, filters.Type)
	}
	if filters.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filters.Status)
	}
	if filters.ParentID != "" {
		where = append(where, "parent_id = ?")
		args = append(args, filters.ParentID)
	}
	if filters.SprintID != "" {
		where = append(where, "sprint_id = ?")
		args = append(args, filters.SprintID)
	}
	if filters.Query != "" {
		where = append(where, "(id LIKE ? OR title LIKE ? OR body LIKE ?)")
		like := "%" + filters.Query + "%"
		args = append(args, like, like, like)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	query += " ORDER BY type, CAST(SUBSTR(id, INSTR(id, '-') + 1) AS INTEGER), id"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []*secondary.ArtifactRecord
	for rows.Next() {
		record, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		artifacts = append(artifacts, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	deps, err := r.loadDependencies(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, a := range artifacts {
		a.Dependencies = deps[a.ID]
	}
	return artifacts, nil
}

// GetNextID returns the next available ID for an artifact type.
// Uses core function for ID format to keep business logic in the functional core.
func (r *ArtifactRepository) GetNextID(ctx context.Context, artifactType string) (string, error) {
	t, ok := artifact.ParseType(artifactType)
	if !ok {
		return "", fmt.Errorf("unknown artifact type %q", artifactType)
	}
	prefix := artifact.Prefix(t)

	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, ?) AS INTEGER)), 0) FROM artifacts WHERE id LIKE ?",
		len(prefix)+2, prefix+"-%",
	).Scan(&maxID)
	if err != nil {
		return "", wrapDBError("failed to get next artifact ID", err)
	}

	return artifact.NextID(t, maxID), nil
}

func (r *ArtifactRepository) writeDependencies(ctx context.Context, id string, deps []string) error {
	for i, d := range deps {
		if _, err := r.db.ExecContext(ctx,
			"INSERT INTO artifact_dependencies (artifact_id, depends_on, position) VALUES (?, ?, ?)",
			id, d, i,
		); err != nil {
			return fmt.Errorf("failed to write dependency %s -> %s: %w", id, d, err)
		}
	}
	return nil
}

// loadDependencies returns dependency lists keyed by artifact, in declared
// order. An empty id loads every artifact's dependencies.
func (r *ArtifactRepository) loadDependencies(ctx context.Context, id string) (map[string][]string, error) {
	query := "SELECT artifact_id, depends_on FROM artifact_dependencies"
	args := []any{}
	if id != "" {
		query += " WHERE artifact_id = ?"
		args = append(args, id)
	}
	query += " ORDER BY artifact_id, position"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load dependencies: %w", err)
	}
	defer rows.Close()

	deps := make(map[string][]string)
	for rows.Next() {
		var from, to string
		if err := rows.Scan(&from, &to); err != nil {
			return nil, fmt.Errorf("failed to scan dependency: %w", err)
		}
		deps[from] = append(deps[from], to)
	}
	return deps, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArtifact(row rowScanner) (*secondary.ArtifactRecord, error) {
	var (
		parentID  sql.NullString
		attrs     string
		sprintID  sql.NullString
		createdAt time.Time
		updatedAt time.Time
	)

	record := &secondary.ArtifactRecord{}
	err := row.Scan(&record.ID, &record.Type, &record.Status, &record.Title, &parentID,
		&record.Body, &attrs, &sprintID, &record.RevisionCount, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	record.ParentID = parentID.String
	record.SprintID = sprintID.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)
	if record.Attributes, err = decodeAttributes(attrs); err != nil {
		return nil, fmt.Errorf("artifact %s: %w", record.ID, err)
	}
	return record, nil
}

func encodeAttributes(attrs map[string]string) (string, error) {
	if len(attrs) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("failed to encode attributes: %w", err)
	}
	return string(b), nil
}

func decodeAttributes(s string) (map[string]string, error) {
	if s == "" || s == "{}" {
		return nil, nil
	}
	attrs := map[string]string{}
	if err := json.Unmarshal([]byte(s), &attrs); err != nil {
		return nil, fmt.Errorf("failed to decode attributes: %w", err)
	}
	return attrs, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Ensure ArtifactRepository implements the interface
var _ secondary.ArtifactRepository = (*ArtifactRepository)(nil)
