package domain

import "time"

// JobState enumerates job lifecycle states.
type JobState string

const (
	JobStateQueued     JobState = "queued"
	JobStateProcessing JobState = "processing"
	JobStateCompleted  JobState = "completed"
	JobStateFailed     JobState = "failed"
)

// Terminal reports whether no further transitions can occur from this state.
func (s JobState) Terminal() bool {
	return s == JobStateCompleted || s == JobStateFailed
}

// Job encapsulates the lifecycle of one tracked model generation request. The
// original request is retained so the executor can keep running after the
// submitting call has returned. Exactly one of Result and Error is populated
// once the job reaches a terminal state.
type Job struct {
	ID          string
	State       JobState
	Progress    int
	Message     string
	Input       GenerateRequest
	Result      []byte
	Error       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt time.Time
}
