// Package tracker follows upstream optimization runs until they finish and
// ingests their Pareto frontiers.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/Frontier/internal/config"
	"github.com/MikeSquared-Agency/Frontier/internal/frontier"
	"github.com/MikeSquared-Agency/Frontier/internal/hermes"
	"github.com/MikeSquared-Agency/Frontier/internal/metrics"
	"github.com/MikeSquared-Agency/Frontier/internal/store"
	"github.com/MikeSquared-Agency/Frontier/internal/upstream"
)

type Tracker struct {
	store    store.Store
	hermes   hermes.Client
	upstream upstream.Client
	cfg      *config.Config
	logger   *slog.Logger
	now      func() time.Time

	// pollMu keeps the ticker and subscription-triggered polls from racing
	// on the same task.
	pollMu sync.Mutex

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// New creates a Tracker. h may be nil when NATS is unavailable.
func New(s store.Store, h hermes.Client, u upstream.Client, cfg *config.Config, logger *slog.Logger) *Tracker {
	return &Tracker{
		store:    s,
		hermes:   h,
		upstream: u,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

func (t *Tracker) Start(ctx context.Context) {
	t.wg.Add(2)
	go t.pollLoop(ctx)
	go t.expiryLoop(ctx)
}

func (t *Tracker) Stop() {
	t.stopOnce.Do(func() { close(t.stopCh) })
	t.wg.Wait()
}

// Register starts tracking an upstream run. The task is stored as running.
func (t *Tracker) Register(ctx context.Context, upstreamID, name string, industry frontier.Industry) (*store.Task, error) {
	now := t.now()
	task := &store.Task{
		UpstreamID: upstreamID,
		Name:       name,
		Industry:   industry,
		Status:     store.StatusRunning,
		StartedAt:  &now,
	}
	if err := t.store.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	t.recordEvent(ctx, task, "registered", map[string]interface{}{"upstream_id": upstreamID})
	t.publish(hermes.SubjectTaskRegistered(task.ID.String()), hermes.TaskRegisteredEvent{
		TaskID:     task.ID.String(),
		UpstreamID: upstreamID,
		Name:       name,
		Industry:   string(industry),
	})
	metrics.TaskTransitions.WithLabelValues(string(store.StatusRunning)).Inc()
	t.logger.Info("task registered", "task_id", task.ID, "upstream_id", upstreamID, "industry", industry)
	return task, nil
}

func (t *Tracker) pollLoop(ctx context.Context) {
	defer t.wg.Done()
	ticker := time.NewTicker(t.cfg.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.PollOnce(ctx)
		}
	}
}

// PollOnce checks every running task against upstream. Failures are logged
// and counted; they never abort the sweep.
func (t *Tracker) PollOnce(ctx context.Context) {
	t.pollMu.Lock()
	defer t.pollMu.Unlock()

	tasks, err := t.store.GetRunningTasks(ctx)
	if err != nil {
		t.logger.Error("failed to get running tasks", "error", err)
		return
	}
	for _, task := range tasks {
		if err := t.pollTask(ctx, task); err != nil {
			metrics.PollErrors.Inc()
			t.logger.Warn("poll failed", "task_id", task.ID, "upstream_id", task.UpstreamID, "error", err)
		}
	}
}

func (t *Tracker) pollTask(ctx context.Context, task *store.Task) error {
	status, err := t.upstream.GetTaskStatus(ctx, task.UpstreamID)
	if err != nil {
		return err
	}
	now := t.now()
	task.LastPolledAt = &now
	task.Progress = progressFraction(status.Progress)

	switch status.Status {
	case upstream.StatusCompleted:
		return t.complete(ctx, task)
	case upstream.StatusFailed:
		return t.fail(ctx, task, status.Error)
	}
	if _, err := t.store.UpdateRunningTask(ctx, task); err != nil {
		return err
	}
	return nil
}

// progressFraction maps upstream's percentage onto [0, 1].
func progressFraction(pct float64) float64 {
	return math.Min(math.Max(pct/100, 0), 1)
}

func (t *Tracker) complete(ctx context.Context, task *store.Task) error {
	solutions, err := t.upstream.GetSolutions(ctx, task.UpstreamID, t.cfg.Tracker.SolutionLimit)
	if err != nil {
		return fmt.Errorf("fetch solutions: %w", err)
	}
	points := upstream.Points(solutions)
	front := frontier.ComputeFrontier(points, task.Industry.Directions())
	if err := t.store.ReplaceSolutions(ctx, task.ID, front); err != nil {
		return fmt.Errorf("store solutions: %w", err)
	}

	now := t.now()
	task.Status = store.StatusCompleted
	task.Progress = 1
	task.SolutionCount = len(points)
	task.CompletedAt = &now
	task.Error = ""
	updated, err := t.store.UpdateRunningTask(ctx, task)
	if err != nil {
		return err
	}
	if !updated {
		// Timed out or deleted while the solutions were being fetched.
		if err := t.store.ReplaceSolutions(ctx, task.ID, nil); err != nil {
			t.logger.Warn("failed to clear solutions of settled task", "task_id", task.ID, "error", err)
		}
		t.logger.Info("task settled before completion was recorded", "task_id", task.ID)
		return nil
	}

	t.recordEvent(ctx, task, "completed", map[string]interface{}{
		"solutions":     len(points),
		"frontier_size": len(front),
	})
	t.publish(hermes.SubjectTaskCompleted(task.ID.String()), hermes.TaskCompletedEvent{
		TaskID:        task.ID.String(),
		UpstreamID:    task.UpstreamID,
		SolutionCount: len(points),
		FrontierSize:  len(front),
	})
	metrics.TaskTransitions.WithLabelValues(string(store.StatusCompleted)).Inc()
	t.logger.Info("task completed", "task_id", task.ID, "solutions", len(points), "frontier_size", len(front))
	return nil
}

func (t *Tracker) fail(ctx context.Context, task *store.Task, reason string) error {
	if reason == "" {
		reason = "upstream reported failure"
	}
	now := t.now()
	task.Status = store.StatusFailed
	task.CompletedAt = &now
	task.Error = reason
	updated, err := t.store.UpdateRunningTask(ctx, task)
	if err != nil || !updated {
		return err
	}

	t.recordEvent(ctx, task, "failed", map[string]interface{}{"error": reason})
	t.publish(hermes.SubjectTaskFailed(task.ID.String()), hermes.TaskFailedEvent{
		TaskID:     task.ID.String(),
		UpstreamID: task.UpstreamID,
		Error:      reason,
	})
	metrics.TaskTransitions.WithLabelValues(string(store.StatusFailed)).Inc()
	t.logger.Warn("task failed upstream", "task_id", task.ID, "error", reason)
	return nil
}

// HandleUpstreamCompleted polls the running task tracking upstreamID right
// away instead of waiting for the next tick.
func (t *Tracker) HandleUpstreamCompleted(ctx context.Context, upstreamID string) {
	t.pollMu.Lock()
	defer t.pollMu.Unlock()

	tasks, err := t.store.GetRunningTasks(ctx)
	if err != nil {
		t.logger.Error("failed to get running tasks", "error", err)
		return
	}
	for _, task := range tasks {
		if task.UpstreamID != upstreamID {
			continue
		}
		if err := t.pollTask(ctx, task); err != nil {
			metrics.PollErrors.Inc()
			t.logger.Warn("poll on completion event failed", "task_id", task.ID, "error", err)
		}
	}
}

// SetupSubscriptions registers NATS subscriptions for upstream events.
func (t *Tracker) SetupSubscriptions() {
	if t.hermes == nil {
		return
	}

	err := t.hermes.Subscribe(hermes.SubjectUpstreamCompleted, func(subject string, data []byte) {
		var evt hermes.UpstreamCompletedEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			t.logger.Warn("invalid upstream completion event", "subject", subject, "error", err)
			return
		}
		if evt.UpstreamID == "" {
			evt.UpstreamID = upstreamIDFromSubject(subject)
		}
		if evt.UpstreamID == "" {
			return
		}
		t.HandleUpstreamCompleted(context.Background(), evt.UpstreamID)
	})
	if err != nil {
		t.logger.Error("failed to subscribe", "subject", hermes.SubjectUpstreamCompleted, "error", err)
	}
}

// upstreamIDFromSubject extracts <id> from optimization.task.<id>.completed.
func upstreamIDFromSubject(subject string) string {
	parts := strings.Split(subject, ".")
	if len(parts) != 4 {
		return ""
	}
	return parts[2]
}

func (t *Tracker) recordEvent(ctx context.Context, task *store.Task, event string, payload map[string]interface{}) {
	if err := t.store.CreateTaskEvent(ctx, &store.TaskEvent{
		TaskID:  task.ID,
		Event:   event,
		Payload: payload,
	}); err != nil {
		t.logger.Warn("failed to record task event", "task_id", task.ID, "event", event, "error", err)
	}
}

func (t *Tracker) publish(subject string, data interface{}) {
	if t.hermes == nil {
		return
	}
	if err := t.hermes.Publish(subject, data); err != nil {
		t.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
