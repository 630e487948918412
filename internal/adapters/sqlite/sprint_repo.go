package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	coresprint "github.com/example/blueprint/internal/core/sprint"
	"github.com/example/blueprint/internal/core/violation"
	"github.com/example/blueprint/internal/ports/secondary"
)

// SprintRepository implements secondary.SprintRepository with SQLite.
type SprintRepository struct {
	db DBTX
}

// NewSprintRepository creates a new SQLite sprint repository.
func NewSprintRepository(db DBTX) *SprintRepository {
	return &SprintRepository{db: db}
}

// Create persists a new sprint and its ordered task list.
func (r *SprintRepository) Create(ctx context.Context, s *secondary.SprintRecord) error {
	if s.ID == "" {
		return fmt.Errorf("sprint ID must be pre-populated by service layer")
	}
	if s.Status == "" {
		s.Status = string(coresprint.StatusActive)
	}

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sprints (id, goal, status, created_at) VALUES (?, ?, ?, ?)",
		s.ID, nullString(s.Goal), s.Status, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create sprint: %w", err)
	}

	for i, t := range s.Tasks {
		if _, err := r.db.ExecContext(ctx,
			"INSERT INTO sprint_tasks (sprint_id, task_id, position, checked) VALUES (?, ?, ?, 0)",
			s.ID, t.TaskID, i,
		); err != nil {
			return fmt.Errorf("failed to add %s to sprint: %w", t.TaskID, err)
		}
		s.Tasks[i].Position = i
	}

	s.CreatedAt = now.Format(time.RFC3339)
	return nil
}

// GetByID retrieves a sprint and its task list.
func (r *SprintRepository) GetByID(ctx context.Context, id string) (*secondary.SprintRecord, error) {
	record, err := r.scanOne(ctx, "SELECT id, goal, status, created_at, closed_at FROM sprints WHERE id = ?", id)
	if err == sql.ErrNoRows {
		return nil, violation.NotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sprint: %w", err)
	}
	return record, r.loadTasks(ctx, record)
}

// GetCurrent retrieves the most recently started sprint.
func (r *SprintRepository) GetCurrent(ctx context.Context) (*secondary.SprintRecord, error) {
	record, err := r.scanOne(ctx,
		"SELECT id, goal, status, created_at, closed_at FROM sprints ORDER BY CAST(SUBSTR(id, 5) AS INTEGER) DESC LIMIT 1")
	if err == sql.ErrNoRows {
		return nil, violation.NotFound("current sprint")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current sprint: %w", err)
	}
	return record, r.loadTasks(ctx, record)
}

// List retrieves every sprint, newest first.
func (r *SprintRepository) List(ctx context.Context) ([]*secondary.SprintRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, goal, status, created_at, closed_at FROM sprints ORDER BY CAST(SUBSTR(id, 5) AS INTEGER) DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list sprints: %w", err)
	}

	var sprints []*secondary.SprintRecord
	for rows.Next() {
		record, err := scanSprint(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan sprint: %w", err)
		}
		sprints = append(sprints, record)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to list sprints: %w", err)
	}

	for _, s := range sprints {
		if err := r.loadTasks(ctx, s); err != nil {
			return nil, err
		}
	}
	return sprints, nil
}

// CheckTask ticks the checkmark of a task in a sprint.
func (r *SprintRepository) CheckTask(ctx context.Context, sprintID, taskID string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE sprint_tasks SET checked = 1, checked_at = ? WHERE sprint_id = ? AND task_id = ?",
		time.Now().UTC(), sprintID, taskID,
	)
	if err != nil {
		return fmt.Errorf("failed to check task: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return violation.NotFound(taskID).WithRef(sprintID)
	}
	return nil
}

// Close marks a sprint closed.
func (r *SprintRepository) Close(ctx context.Context, sprintID string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE sprints SET status = ?, closed_at = ? WHERE id = ?",
		string(coresprint.StatusClosed), time.Now().UTC(), sprintID,
	)
	if err != nil {
		return fmt.Errorf("failed to close sprint: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return violation.NotFound(sprintID)
	}
	return nil
}

// GetNextID returns the next available sprint ID.
func (r *SprintRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 5) AS INTEGER)), 0) FROM sprints",
	).Scan(&maxID)
	if err != nil {
		return "", wrapDBError("failed to get next sprint ID", err)
	}

	return coresprint.FormatID(maxID + 1), nil
}

func (r *SprintRepository) scanOne(ctx context.Context, query string, args ...any) (*secondary.SprintRecord, error) {
	return scanSprint(r.db.QueryRowContext(ctx, query, args...))
}

func (r *SprintRepository) loadTasks(ctx context.Context, s *secondary.SprintRecord) error {
	rows, err := r.db.QueryContext(ctx,
		"SELECT task_id, position, checked, checked_at FROM sprint_tasks WHERE sprint_id = ? ORDER BY position",
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load sprint tasks: %w", err)
	}
	defer rows.Close()

	s.Tasks = nil
	for rows.Next() {
		var (
			t         secondary.SprintTaskRecord
			checkedAt sql.NullTime
		)
		if err := rows.Scan(&t.TaskID, &t.Position, &t.Checked, &checkedAt); err != nil {
			return fmt.Errorf("failed to scan sprint task: %w", err)
		}
		if checkedAt.Valid {
			t.CheckedAt = checkedAt.Time.Format(time.RFC3339)
		}
		s.Tasks = append(s.Tasks, t)
	}
	return rows.Err()
}

func scanSprint(row rowScanner) (*secondary.SprintRecord, error) {
	var (
		goal      sql.NullString
		createdAt time.Time
		closedAt  sql.NullTime
	)
	record := &secondary.SprintRecord{}
	if err := row.Scan(&record.ID, &goal, &record.Status, &createdAt, &closedAt); err != nil {
		return nil, err
	}
	record.Goal = goal.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	if closedAt.Valid {
		record.ClosedAt = closedAt.Time.Format(time.RFC3339)
	}
	return record, nil
}

// Ensure SprintRepository implements the interface
var _ secondary.SprintRepository = (*SprintRepository)(nil)
