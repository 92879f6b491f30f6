package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/vigilo-hq/vigilo/internal/domain/task"
	"github.com/vigilo-hq/vigilo/internal/pkg/errors"
)

type TaskStore struct {
	db     *sql.DB
	driver string
}

func NewTaskStore(db *sql.DB) task.Store {
	return &TaskStore{db: db, driver: driverOf(db)}
}

func (s *TaskStore) CreateTask(ctx context.Context, t *task.Task) error {
	query := `
		INSERT INTO tasks (id, kind, title, description, assignee_id, event_id, due_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, rebind(s.driver, query),
		t.ID, t.Kind, t.Title, t.Description, t.AssigneeID, t.EventID,
		t.DueAt.Format(time.RFC3339), t.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return errors.Storage("Failed to create task", err)
	}

	return nil
}

func (s *TaskStore) CreateReview(ctx context.Context, r *task.Review) error {
	query := `
		INSERT INTO reviews (id, subject, reviewer_id, event_id, requested_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, rebind(s.driver, query),
		r.ID, r.Subject, r.ReviewerID, r.EventID, r.RequestedAt.Format(time.RFC3339),
	)
	if err != nil {
		return errors.Storage("Failed to create review", err)
	}

	return nil
}
