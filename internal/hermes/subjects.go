package hermes

const (
	// SubjectUpstreamCompleted is published by the optimization service when a
	// run finishes.
	SubjectUpstreamCompleted = "optimization.task.*.completed"

	StreamName     = "FRONTIER_EVENTS"
	StreamSubjects = "frontier.>"
	StreamMaxAge   = "168h" // 7 days
)

func SubjectTaskRegistered(taskID string) string { return "frontier.task." + taskID + ".registered" }
func SubjectTaskCompleted(taskID string) string  { return "frontier.task." + taskID + ".completed" }
func SubjectTaskFailed(taskID string) string     { return "frontier.task." + taskID + ".failed" }
func SubjectTaskTimeout(taskID string) string    { return "frontier.task." + taskID + ".timeout" }
func SubjectTaskDeleted(taskID string) string    { return "frontier.task." + taskID + ".deleted" }

func SubjectCloudGenerated(taskID string) string { return "frontier.cloud." + taskID + ".generated" }
