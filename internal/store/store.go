package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Frontier/internal/frontier"
)

type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusRunning   TaskStatus = "running"
	StatusCompleted TaskStatus = "completed"
	StatusFailed    TaskStatus = "failed"
	StatusTimedOut  TaskStatus = "timed_out"
)

// Terminal reports whether the tracker is done with a task in this status.
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusTimedOut
}

// Task is an upstream optimization run being tracked for its frontier.
type Task struct {
	ID         uuid.UUID         `json:"task_id"`
	UpstreamID string            `json:"upstream_id"`
	Name       string            `json:"name"`
	Industry   frontier.Industry `json:"industry"`

	// State
	Status TaskStatus `json:"status"`
	// Progress is a fraction in [0, 1].
	Progress float64 `json:"progress"`
	// SolutionCount is the number of solutions fetched from upstream,
	// before the non-dominated filter.
	SolutionCount int    `json:"solution_count"`
	Error         string `json:"error,omitempty"`

	// Timestamps
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastPolledAt *time.Time `json:"last_polled_at,omitempty"`
}

type TaskFilter struct {
	Status   *TaskStatus
	Industry string
	Limit    int
	Offset   int
}

type TaskEvent struct {
	ID        uuid.UUID              `json:"id"`
	TaskID    uuid.UUID              `json:"task_id"`
	Event     string                 `json:"event"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Store persists tracked tasks, their events and their frontier solutions.
// Getters return nil, nil when the row does not exist.
type Store interface {
	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, id uuid.UUID) (*Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]*Task, error)
	UpdateTask(ctx context.Context, task *Task) error
	// UpdateRunningTask writes task only if the stored row is still running
	// and reports whether it did.
	UpdateRunningTask(ctx context.Context, task *Task) (bool, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
	GetRunningTasks(ctx context.Context) ([]*Task, error)

	// Solutions
	ReplaceSolutions(ctx context.Context, taskID uuid.UUID, points []frontier.Point) error
	GetSolutions(ctx context.Context, taskID uuid.UUID, limit int) ([]frontier.Point, error)
	GetSolution(ctx context.Context, taskID uuid.UUID, solutionID string) (*frontier.Point, error)
	UpdateTopsisScores(ctx context.Context, taskID uuid.UUID, scores map[string]float64, ranks map[string]int) error

	// Events
	CreateTaskEvent(ctx context.Context, event *TaskEvent) error
	GetTaskEvents(ctx context.Context, taskID uuid.UUID) ([]*TaskEvent, error)

	Close() error
}

const defaultListLimit = 100
