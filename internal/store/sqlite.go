package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Frontier/internal/frontier"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on an embedded SQLite database. Timestamps are
// kept as UTC RFC 3339 text.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the database at path and migrates it.
// ":memory:" gives a private in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection: writes serialize and an in-memory database stays shared.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	PRAGMA foreign_keys = ON;
	PRAGMA busy_timeout = 5000;

	CREATE TABLE IF NOT EXISTS frontier_tasks (
		task_id TEXT PRIMARY KEY,
		upstream_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		industry TEXT NOT NULL DEFAULT 'light',
		status TEXT NOT NULL DEFAULT 'pending',
		progress REAL NOT NULL DEFAULT 0,
		solution_count INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		created_at TEXT NOT NULL,
		started_at TEXT,
		completed_at TEXT,
		updated_at TEXT NOT NULL,
		last_polled_at TEXT
	);

	CREATE TABLE IF NOT EXISTS frontier_solutions (
		task_id TEXT NOT NULL,
		solution_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		rank INTEGER NOT NULL DEFAULT 0,
		f1 REAL NOT NULL,
		f2 REAL NOT NULL,
		f3 REAL,
		total_cost REAL NOT NULL DEFAULT 0,
		implementation_days REAL NOT NULL DEFAULT 0,
		expected_benefit REAL NOT NULL DEFAULT 0,
		topsis_score REAL,
		PRIMARY KEY (task_id, solution_id),
		FOREIGN KEY (task_id) REFERENCES frontier_tasks(task_id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS frontier_task_events (
		id TEXT PRIMARY KEY,
		task_id TEXT NOT NULL,
		event TEXT NOT NULL,
		payload TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (task_id) REFERENCES frontier_tasks(task_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_frontier_tasks_status ON frontier_tasks(status);
	CREATE INDEX IF NOT EXISTS idx_frontier_task_events_task ON frontier_task_events(task_id, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteTaskColumns = `task_id, upstream_id, name, industry,
	status, progress, solution_count, error,
	created_at, started_at, completed_at, updated_at, last_polled_at`

func (s *SQLiteStore) CreateTask(ctx context.Context, task *Task) error {
	if task.Status == "" {
		task.Status = StatusPending
	}
	now := s.now().UTC()
	task.ID = uuid.New()
	task.CreatedAt, task.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO frontier_tasks (task_id, upstream_id, name, industry, status, progress,
			solution_count, created_at, started_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID.String(), task.UpstreamID, task.Name, string(task.Industry), string(task.Status), task.Progress,
		task.SolutionCount, formatTime(now), formatTimePtr(task.StartedAt), formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTask(ctx context.Context, id uuid.UUID) (*Task, error) {
	t, err := scanSQLiteTask(s.db.QueryRowContext(ctx, `
		SELECT `+sqliteTaskColumns+`
		FROM frontier_tasks WHERE task_id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *SQLiteStore) ListTasks(ctx context.Context, filter TaskFilter) ([]*Task, error) {
	query := `SELECT ` + sqliteTaskColumns + ` FROM frontier_tasks WHERE 1=1`
	args := []interface{}{}

	if filter.Status != nil {
		query += " AND status = ?"
		args = append(args, string(*filter.Status))
	}
	if filter.Industry != "" {
		query += " AND industry = ?"
		args = append(args, filter.Industry)
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, max(filter.Offset, 0))

	return s.queryTasks(ctx, query, args...)
}

func (s *SQLiteStore) GetRunningTasks(ctx context.Context) ([]*Task, error) {
	return s.queryTasks(ctx, `
		SELECT `+sqliteTaskColumns+`
		FROM frontier_tasks WHERE status = 'running'
		ORDER BY created_at ASC, rowid ASC`)
}

func (s *SQLiteStore) UpdateTask(ctx context.Context, task *Task) error {
	_, err := s.updateTask(ctx, task, "")
	return err
}

func (s *SQLiteStore) UpdateRunningTask(ctx context.Context, task *Task) (bool, error) {
	return s.updateTask(ctx, task, StatusRunning)
}

// updateTask writes task. A non-empty from restricts the write to rows still
// in that status.
func (s *SQLiteStore) updateTask(ctx context.Context, task *Task, from TaskStatus) (bool, error) {
	updatedAt := s.now().UTC()
	var taskError interface{}
	if task.Error != "" {
		taskError = task.Error
	}
	query := `
		UPDATE frontier_tasks SET
			upstream_id = ?, name = ?, industry = ?,
			status = ?, progress = ?, solution_count = ?, error = ?,
			started_at = ?, completed_at = ?, last_polled_at = ?,
			updated_at = ?
		WHERE task_id = ?`
	args := []interface{}{
		task.UpstreamID, task.Name, string(task.Industry),
		string(task.Status), task.Progress, task.SolutionCount, taskError,
		formatTimePtr(task.StartedAt), formatTimePtr(task.CompletedAt), formatTimePtr(task.LastPolledAt),
		formatTime(updatedAt), task.ID.String(),
	}
	if from != "" {
		query += " AND status = ?"
		args = append(args, string(from))
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update task: %w", err)
	}
	if n > 0 {
		task.UpdatedAt = updatedAt
	}
	return n > 0, nil
}

func (s *SQLiteStore) DeleteTask(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM frontier_tasks WHERE task_id = ?`, id.String())
	return err
}

func (s *SQLiteStore) ReplaceSolutions(ctx context.Context, taskID uuid.UUID, points []frontier.Point) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM frontier_solutions WHERE task_id = ?`, taskID.String()); err != nil {
		return fmt.Errorf("clear solutions: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO frontier_solutions (task_id, solution_id, position, rank, f1, f2, f3,
			total_cost, implementation_days, expected_benefit, topsis_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range points {
		if _, err := stmt.ExecContext(ctx, taskID.String(), p.ID, i, p.Rank, p.F1, p.F2, nullFloat(p.F3),
			p.TotalCost, p.ImplementationDays, p.ExpectedBenefit, nullFloat(p.TopsisScore)); err != nil {
			return fmt.Errorf("insert solution %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetSolutions(ctx context.Context, taskID uuid.UUID, limit int) ([]frontier.Point, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT solution_id, rank, f1, f2, f3,
			total_cost, implementation_days, expected_benefit, topsis_score
		FROM frontier_solutions WHERE task_id = ?
		ORDER BY position ASC
		LIMIT ?`, taskID.String(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := []frontier.Point{}
	for rows.Next() {
		var p frontier.Point
		var f3, topsis sql.NullFloat64
		if err := rows.Scan(&p.ID, &p.Rank, &p.F1, &p.F2, &f3,
			&p.TotalCost, &p.ImplementationDays, &p.ExpectedBenefit, &topsis); err != nil {
			return nil, err
		}
		if f3.Valid {
			p.F3 = &f3.Float64
		}
		if topsis.Valid {
			p.TopsisScore = &topsis.Float64
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *SQLiteStore) GetSolution(ctx context.Context, taskID uuid.UUID, solutionID string) (*frontier.Point, error) {
	var p frontier.Point
	var f3, topsis sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT solution_id, rank, f1, f2, f3,
			total_cost, implementation_days, expected_benefit, topsis_score
		FROM frontier_solutions WHERE task_id = ? AND solution_id = ?`,
		taskID.String(), solutionID,
	).Scan(&p.ID, &p.Rank, &p.F1, &p.F2, &f3,
		&p.TotalCost, &p.ImplementationDays, &p.ExpectedBenefit, &topsis)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if f3.Valid {
		p.F3 = &f3.Float64
	}
	if topsis.Valid {
		p.TopsisScore = &topsis.Float64
	}
	return &p, nil
}

func (s *SQLiteStore) UpdateTopsisScores(ctx context.Context, taskID uuid.UUID, scores map[string]float64, ranks map[string]int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for id, score := range scores {
		if _, err := tx.ExecContext(ctx, `
			UPDATE frontier_solutions SET topsis_score = ?, rank = COALESCE(?, rank)
			WHERE task_id = ? AND solution_id = ?`,
			score, rankArg(ranks, id), taskID.String(), id); err != nil {
			return fmt.Errorf("update score %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) CreateTaskEvent(ctx context.Context, event *TaskEvent) error {
	event.ID = uuid.New()
	event.CreatedAt = s.now().UTC()
	var payload interface{}
	if event.Payload != nil {
		data, err := json.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		payload = string(data)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO frontier_task_events (id, task_id, event, payload, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		event.ID.String(), event.TaskID.String(), event.Event, payload, formatTime(event.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTaskEvents(ctx context.Context, taskID uuid.UUID) ([]*TaskEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, event, payload, created_at
		FROM frontier_task_events WHERE task_id = ?
		ORDER BY created_at ASC, rowid ASC`, taskID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*TaskEvent
	for rows.Next() {
		e := &TaskEvent{}
		var payload sql.NullString
		var createdAt string
		if err := rows.Scan(&e.ID, &e.TaskID, &e.Event, &payload, &createdAt); err != nil {
			return nil, err
		}
		if payload.Valid {
			_ = json.Unmarshal([]byte(payload.String), &e.Payload)
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *SQLiteStore) queryTasks(ctx context.Context, query string, args ...interface{}) ([]*Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		t, err := scanSQLiteTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSQLiteTask(row rowScanner) (*Task, error) {
	t := &Task{}
	var taskError, startedAt, completedAt, lastPolledAt sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(
		&t.ID, &t.UpstreamID, &t.Name, &t.Industry,
		&t.Status, &t.Progress, &t.SolutionCount, &taskError,
		&createdAt, &startedAt, &completedAt, &updatedAt, &lastPolledAt,
	)
	if err != nil {
		return nil, err
	}
	if taskError.Valid {
		t.Error = taskError.String
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	for _, f := range []struct {
		src sql.NullString
		dst **time.Time
	}{
		{startedAt, &t.StartedAt},
		{completedAt, &t.CompletedAt},
		{lastPolledAt, &t.LastPolledAt},
	} {
		if !f.src.Valid {
			continue
		}
		ts, err := parseTime(f.src.String)
		if err != nil {
			return nil, err
		}
		*f.dst = &ts
	}
	return t, nil
}

// timeLayout is fixed width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
