package task

import (
	"context"
	"time"
)

// Kind of follow-up work item
const (
	KindRollback           = "rollback"
	KindReview             = "review"
	KindManualIntervention = "manual_intervention"
)

// Task is a human-in-the-loop follow-up created by the pipeline.
type Task struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AssigneeID  string    `json:"assignee_id"`
	EventID     string    `json:"event_id"`
	DueAt       time.Time `json:"due_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Review is a formal review record for large or risky operations.
type Review struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject"`
	ReviewerID  string    `json:"reviewer_id"`
	EventID     string    `json:"event_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// Store persists follow-up tasks and reviews.
type Store interface {
	CreateTask(ctx context.Context, t *Task) error
	CreateReview(ctx context.Context, r *Review) error
}
