package hermes

import (
	"strings"
	"testing"
	"time"
)

func TestSubjectsLiveUnderStream(t *testing.T) {
	prefix := strings.TrimSuffix(StreamSubjects, ">")
	for _, subject := range []string{
		SubjectTaskRegistered("t1"),
		SubjectTaskCompleted("t1"),
		SubjectTaskFailed("t1"),
		SubjectTaskTimeout("t1"),
		SubjectTaskDeleted("t1"),
		SubjectCloudGenerated("t1"),
	} {
		if !strings.HasPrefix(subject, prefix) {
			t.Errorf("subject %q is not captured by stream %q", subject, StreamSubjects)
		}
		if !strings.Contains(subject, ".t1.") {
			t.Errorf("subject %q does not carry the task id", subject)
		}
	}
	if strings.HasPrefix(SubjectUpstreamCompleted, prefix) {
		t.Errorf("upstream subject %q must not be captured by our stream", SubjectUpstreamCompleted)
	}
}

func TestStreamMaxAge(t *testing.T) {
	d, err := time.ParseDuration(StreamMaxAge)
	if err != nil {
		t.Fatalf("parse max age: %v", err)
	}
	if d != 7*24*time.Hour {
		t.Errorf("expected 7 days, got %v", d)
	}
}

func TestPersisted(t *testing.T) {
	if !persisted(SubjectCloudGenerated("t1")) {
		t.Error("cloud events should go through the stream")
	}
	if persisted("optimization.task.t1.completed") {
		t.Error("foreign subjects should use core publish")
	}
}
