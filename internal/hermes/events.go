package hermes

import "time"

type TaskRegisteredEvent struct {
	TaskID     string `json:"task_id"`
	UpstreamID string `json:"upstream_id"`
	Name       string `json:"name,omitempty"`
	Industry   string `json:"industry"`
}

type TaskCompletedEvent struct {
	TaskID        string `json:"task_id"`
	UpstreamID    string `json:"upstream_id"`
	SolutionCount int    `json:"solution_count"`
	FrontierSize  int    `json:"frontier_size"`
}

type TaskFailedEvent struct {
	TaskID     string `json:"task_id"`
	UpstreamID string `json:"upstream_id"`
	Error      string `json:"error"`
}

type TaskTimeoutEvent struct {
	TaskID     string        `json:"task_id"`
	UpstreamID string        `json:"upstream_id"`
	RunningFor time.Duration `json:"running_for_ns"`
}

type TaskDeletedEvent struct {
	TaskID string `json:"task_id"`
}

type CloudGeneratedEvent struct {
	TaskID  string `json:"task_id"`
	Shape   string `json:"shape"`
	Seed    uint64 `json:"seed"`
	Points  int    `json:"points"`
	Skipped int    `json:"skipped"`
}

// UpstreamCompletedEvent is the payload of SubjectUpstreamCompleted.
type UpstreamCompletedEvent struct {
	UpstreamID string `json:"upstream_id"`
}
