package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/MikeSquared-Agency/Frontier/internal/hermes"
	"github.com/MikeSquared-Agency/Frontier/internal/metrics"
	"github.com/MikeSquared-Agency/Frontier/internal/store"
)

func (t *Tracker) expiryLoop(ctx context.Context) {
	defer t.wg.Done()
	ticker := time.NewTicker(t.cfg.ExpiryInterval())
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.CheckExpired(ctx)
		}
	}
}

// CheckExpired marks running tasks older than the configured maximum as
// timed out. A task a concurrent poll settles first keeps its outcome.
func (t *Tracker) CheckExpired(ctx context.Context) {
	maxRunning := t.cfg.MaxRunning()
	if maxRunning <= 0 {
		return
	}

	tasks, err := t.store.GetRunningTasks(ctx)
	if err != nil {
		t.logger.Error("failed to get running tasks for expiry check", "error", err)
		return
	}

	now := t.now()
	for _, task := range tasks {
		start := task.CreatedAt
		if task.StartedAt != nil {
			start = *task.StartedAt
		}
		runningFor := now.Sub(start)
		if runningFor <= maxRunning {
			continue
		}

		completedAt := now
		task.Status = store.StatusTimedOut
		task.CompletedAt = &completedAt
		task.Error = fmt.Sprintf("no result after %s", maxRunning)
		updated, err := t.store.UpdateRunningTask(ctx, task)
		if err != nil {
			t.logger.Error("failed to mark task as timed out", "task_id", task.ID, "error", err)
			continue
		}
		if !updated {
			t.logger.Debug("task settled before expiry", "task_id", task.ID)
			continue
		}

		t.recordEvent(ctx, task, "timeout", map[string]interface{}{"running_for_ms": runningFor.Milliseconds()})
		t.publish(hermes.SubjectTaskTimeout(task.ID.String()), hermes.TaskTimeoutEvent{
			TaskID:     task.ID.String(),
			UpstreamID: task.UpstreamID,
			RunningFor: runningFor,
		})
		metrics.TaskTransitions.WithLabelValues(string(store.StatusTimedOut)).Inc()
		t.logger.Warn("task timed out", "task_id", task.ID, "upstream_id", task.UpstreamID, "running_for", runningFor)
	}
}
