package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/Frontier/internal/frontier"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const taskColumns = `task_id, upstream_id, name, industry,
	status, progress, solution_count, error,
	created_at, started_at, completed_at, updated_at, last_polled_at`

func (s *PostgresStore) CreateTask(ctx context.Context, task *Task) error {
	if task.Status == "" {
		task.Status = StatusPending
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO frontier_tasks (upstream_id, name, industry, status, progress, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING task_id, created_at, updated_at`,
		task.UpstreamID, task.Name, task.Industry, task.Status, task.Progress, task.StartedAt,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func (s *PostgresStore) GetTask(ctx context.Context, id uuid.UUID) (*Task, error) {
	t, err := scanTask(s.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM frontier_tasks WHERE task_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *PostgresStore) ListTasks(ctx context.Context, filter TaskFilter) ([]*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM frontier_tasks WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Status != nil {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, string(*filter.Status))
	}
	if filter.Industry != "" {
		n++
		query += fmt.Sprintf(" AND industry = $%d", n)
		args = append(args, filter.Industry)
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	n++
	query += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, limit)

	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (s *PostgresStore) GetRunningTasks(ctx context.Context) ([]*Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM frontier_tasks WHERE status = 'running'
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (s *PostgresStore) UpdateTask(ctx context.Context, task *Task) error {
	_, err := s.updateTask(ctx, task, "")
	return err
}

func (s *PostgresStore) UpdateRunningTask(ctx context.Context, task *Task) (bool, error) {
	return s.updateTask(ctx, task, StatusRunning)
}

// updateTask writes task. A non-empty from restricts the write to rows still
// in that status.
func (s *PostgresStore) updateTask(ctx context.Context, task *Task, from TaskStatus) (bool, error) {
	err := s.pool.QueryRow(ctx, `
		UPDATE frontier_tasks SET
			upstream_id = $2, name = $3, industry = $4,
			status = $5, progress = $6, solution_count = $7, error = $8,
			started_at = $9, completed_at = $10, last_polled_at = $11,
			updated_at = now()
		WHERE task_id = $1 AND ($12::text = '' OR status = $12::text)
		RETURNING updated_at`,
		task.ID, task.UpstreamID, task.Name, task.Industry,
		task.Status, task.Progress, task.SolutionCount, task.Error,
		task.StartedAt, task.CompletedAt, task.LastPolledAt, string(from),
	).Scan(&task.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("update task: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) DeleteTask(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM frontier_tasks WHERE task_id = $1`, id)
	return err
}

var solutionColumns = []string{
	"task_id", "solution_id", "position", "rank", "f1", "f2", "f3",
	"total_cost", "implementation_days", "expected_benefit", "topsis_score",
}

func (s *PostgresStore) ReplaceSolutions(ctx context.Context, taskID uuid.UUID, points []frontier.Point) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM frontier_solutions WHERE task_id = $1`, taskID); err != nil {
		return fmt.Errorf("clear solutions: %w", err)
	}
	_, err = tx.CopyFrom(ctx, pgx.Identifier{"frontier_solutions"}, solutionColumns,
		pgx.CopyFromSlice(len(points), func(i int) ([]interface{}, error) {
			p := points[i]
			return []interface{}{
				taskID, p.ID, i, p.Rank, p.F1, p.F2, p.F3,
				p.TotalCost, p.ImplementationDays, p.ExpectedBenefit, p.TopsisScore,
			}, nil
		}))
	if err != nil {
		return fmt.Errorf("copy solutions: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) GetSolutions(ctx context.Context, taskID uuid.UUID, limit int) ([]frontier.Point, error) {
	query := `
		SELECT solution_id, rank, f1, f2, f3,
			total_cost, implementation_days, expected_benefit, topsis_score
		FROM frontier_solutions WHERE task_id = $1
		ORDER BY position ASC`
	args := []interface{}{taskID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := []frontier.Point{}
	for rows.Next() {
		var p frontier.Point
		if err := rows.Scan(&p.ID, &p.Rank, &p.F1, &p.F2, &p.F3,
			&p.TotalCost, &p.ImplementationDays, &p.ExpectedBenefit, &p.TopsisScore); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *PostgresStore) GetSolution(ctx context.Context, taskID uuid.UUID, solutionID string) (*frontier.Point, error) {
	var p frontier.Point
	err := s.pool.QueryRow(ctx, `
		SELECT solution_id, rank, f1, f2, f3,
			total_cost, implementation_days, expected_benefit, topsis_score
		FROM frontier_solutions WHERE task_id = $1 AND solution_id = $2`,
		taskID, solutionID,
	).Scan(&p.ID, &p.Rank, &p.F1, &p.F2, &p.F3,
		&p.TotalCost, &p.ImplementationDays, &p.ExpectedBenefit, &p.TopsisScore)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) UpdateTopsisScores(ctx context.Context, taskID uuid.UUID, scores map[string]float64, ranks map[string]int) error {
	batch := &pgx.Batch{}
	for id, score := range scores {
		batch.Queue(`
			UPDATE frontier_solutions SET topsis_score = $3, rank = COALESCE($4, rank)
			WHERE task_id = $1 AND solution_id = $2`,
			taskID, id, score, rankArg(ranks, id))
	}
	return s.pool.SendBatch(ctx, batch).Close()
}

func (s *PostgresStore) CreateTaskEvent(ctx context.Context, event *TaskEvent) error {
	payloadJSON, _ := json.Marshal(event.Payload)
	return s.pool.QueryRow(ctx, `
		INSERT INTO frontier_task_events (task_id, event, payload)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		event.TaskID, event.Event, payloadJSON,
	).Scan(&event.ID, &event.CreatedAt)
}

func (s *PostgresStore) GetTaskEvents(ctx context.Context, taskID uuid.UUID) ([]*TaskEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, task_id, event, payload, created_at
		FROM frontier_task_events WHERE task_id = $1
		ORDER BY created_at ASC`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*TaskEvent
	for rows.Next() {
		e := &TaskEvent{}
		var payloadJSON []byte
		if err := rows.Scan(&e.ID, &e.TaskID, &e.Event, &payloadJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		if payloadJSON != nil {
			_ = json.Unmarshal(payloadJSON, &e.Payload)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// rankArg returns the new rank for id, or nil to keep the stored one.
func rankArg(ranks map[string]int, id string) interface{} {
	if r, ok := ranks[id]; ok {
		return r
	}
	return nil
}

func scanTask(row pgx.Row) (*Task, error) {
	t := &Task{}
	var taskError sql.NullString
	err := row.Scan(
		&t.ID, &t.UpstreamID, &t.Name, &t.Industry,
		&t.Status, &t.Progress, &t.SolutionCount, &taskError,
		&t.CreatedAt, &t.StartedAt, &t.CompletedAt, &t.UpdatedAt, &t.LastPolledAt,
	)
	if err != nil {
		return nil, err
	}
	if taskError.Valid {
		t.Error = taskError.String
	}
	return t, nil
}

func scanTasks(rows pgx.Rows) ([]*Task, error) {
	var tasks []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
