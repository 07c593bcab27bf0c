package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Frontier/internal/frontier"
)

func TestTaskStatusValues(t *testing.T) {
	statuses := []TaskStatus{
		StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusTimedOut,
	}
	expected := []string{"pending", "running", "completed", "failed", "timed_out"}
	for i, s := range statuses {
		if string(s) != expected[i] {
			t.Errorf("expected %s, got %s", expected[i], s)
		}
	}
}

func TestTaskStatusTerminal(t *testing.T) {
	if StatusPending.Terminal() || StatusRunning.Terminal() {
		t.Error("pending and running are not terminal")
	}
	for _, s := range []TaskStatus{StatusCompleted, StatusFailed, StatusTimedOut} {
		if !s.Terminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}
}

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func float64Ptr(v float64) *float64 { return &v }

func TestSQLiteTaskRoundTrip(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	task := &Task{
		UpstreamID: "opt-42",
		Name:       "Plant retrofit",
		Industry:   frontier.IndustryHeavy,
		Status:     StatusRunning,
		StartedAt:  &started,
	}
	require.NoError(t, s.CreateTask(ctx, task))
	require.NotEqual(t, uuid.Nil, task.ID)

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "opt-42", got.UpstreamID)
	assert.Equal(t, frontier.IndustryHeavy, got.Industry)
	assert.Equal(t, StatusRunning, got.Status)
	require.NotNil(t, got.StartedAt)
	assert.True(t, started.Equal(*got.StartedAt))
	assert.Nil(t, got.CompletedAt)

	now := time.Now().UTC()
	got.Status = StatusFailed
	got.Progress = 0.5
	got.Error = "solver crashed"
	got.CompletedAt = &now
	got.LastPolledAt = &now
	require.NoError(t, s.UpdateTask(ctx, got))

	again, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, again.Status)
	assert.Equal(t, 0.5, again.Progress)
	assert.Equal(t, "solver crashed", again.Error)
	require.NotNil(t, again.CompletedAt)
	assert.WithinDuration(t, now, *again.CompletedAt, time.Microsecond)
}

func TestSQLiteGetMissingTask(t *testing.T) {
	s := newSQLiteStore(t)
	got, err := s.GetTask(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteListAndRunning(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	for i, st := range []TaskStatus{StatusRunning, StatusCompleted, StatusRunning} {
		industry := frontier.IndustryLight
		if i == 2 {
			industry = frontier.IndustryHeavy
		}
		require.NoError(t, s.CreateTask(ctx, &Task{UpstreamID: "u", Status: st, Industry: industry}))
	}

	all, err := s.ListTasks(ctx, TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	running := StatusRunning
	filtered, err := s.ListTasks(ctx, TaskFilter{Status: &running})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	heavy, err := s.ListTasks(ctx, TaskFilter{Industry: "heavy"})
	require.NoError(t, err)
	assert.Len(t, heavy, 1)

	page, err := s.ListTasks(ctx, TaskFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, page, 1)

	active, err := s.GetRunningTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestSQLiteSolutions(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	task := &Task{UpstreamID: "opt-1", Status: StatusRunning}
	require.NoError(t, s.CreateTask(ctx, task))

	points := []frontier.Point{
		{ID: "p1", Rank: 1, F1: 100, F2: 5, F3: float64Ptr(-2), TotalCost: 100, ImplementationDays: 5, ExpectedBenefit: 2},
		{ID: "p2", Rank: 2, F1: 200, F2: 3, TotalCost: 200, ImplementationDays: 3, ExpectedBenefit: 1},
		{ID: "p3", Rank: 3, F1: 300, F2: 1, TotalCost: 300, ImplementationDays: 1},
	}
	require.NoError(t, s.ReplaceSolutions(ctx, task.ID, points))

	got, err := s.GetSolutions(ctx, task.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, points, got)

	limited, err := s.GetSolutions(ctx, task.ID, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	require.NoError(t, s.UpdateTopsisScores(ctx, task.ID,
		map[string]float64{"p1": 0.9, "p2": 0.4},
		map[string]int{"p1": 1, "p2": 2}))
	scored, err := s.GetSolutions(ctx, task.ID, 0)
	require.NoError(t, err)
	require.NotNil(t, scored[0].TopsisScore)
	assert.Equal(t, 0.9, *scored[0].TopsisScore)
	assert.Nil(t, scored[2].TopsisScore)

	require.NoError(t, s.ReplaceSolutions(ctx, task.ID, points[:1]))
	replaced, err := s.GetSolutions(ctx, task.ID, 0)
	require.NoError(t, err)
	assert.Len(t, replaced, 1)

	empty, err := s.GetSolutions(ctx, uuid.New(), 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)
}

func TestSQLiteGetSolution(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	task := &Task{UpstreamID: "opt-1", Status: StatusCompleted}
	require.NoError(t, s.CreateTask(ctx, task))
	other := &Task{UpstreamID: "opt-2", Status: StatusCompleted}
	require.NoError(t, s.CreateTask(ctx, other))

	p1 := frontier.Point{ID: "p1", Rank: 1, F1: 100, F2: 5, F3: float64Ptr(0.5), TotalCost: 100}
	require.NoError(t, s.ReplaceSolutions(ctx, task.ID, []frontier.Point{p1}))

	got, err := s.GetSolution(ctx, task.ID, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p1, *got)

	missing, err := s.GetSolution(ctx, task.ID, "p9")
	require.NoError(t, err)
	assert.Nil(t, missing)

	foreign, err := s.GetSolution(ctx, other.ID, "p1")
	require.NoError(t, err)
	assert.Nil(t, foreign, "solutions are scoped to their task")
}

func TestSQLiteUpdateRunningTask(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	task := &Task{UpstreamID: "opt-1", Status: StatusRunning}
	require.NoError(t, s.CreateTask(ctx, task))

	stale := *task
	task.Status = StatusTimedOut
	ok, err := s.UpdateRunningTask(ctx, task)
	require.NoError(t, err)
	assert.True(t, ok)

	stale.Status = StatusCompleted
	stale.Progress = 1
	ok, err = s.UpdateRunningTask(ctx, &stale)
	require.NoError(t, err)
	assert.False(t, ok, "settled task is not overwritten")

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusTimedOut, got.Status)
	assert.Equal(t, 0.0, got.Progress)

	require.NoError(t, s.UpdateTask(ctx, &stale))
	got, err = s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status, "unconditional update still writes")
}

func TestSQLiteEventsAndDelete(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	task := &Task{UpstreamID: "opt-1", Status: StatusRunning}
	require.NoError(t, s.CreateTask(ctx, task))

	require.NoError(t, s.CreateTaskEvent(ctx, &TaskEvent{TaskID: task.ID, Event: "registered"}))
	require.NoError(t, s.CreateTaskEvent(ctx, &TaskEvent{
		TaskID:  task.ID,
		Event:   "completed",
		Payload: map[string]interface{}{"solutions": float64(3)},
	}))

	events, err := s.GetTaskEvents(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "registered", events[0].Event)
	assert.Nil(t, events[0].Payload)
	assert.Equal(t, float64(3), events[1].Payload["solutions"])

	require.NoError(t, s.ReplaceSolutions(ctx, task.ID, []frontier.Point{{ID: "p1", F1: 1, F2: 1}}))
	require.NoError(t, s.DeleteTask(ctx, task.ID))

	gone, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	events, err = s.GetTaskEvents(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
	sols, err := s.GetSolutions(ctx, task.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, sols)
}
