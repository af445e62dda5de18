package history

import "time"

// Entry is one recorded request.
type Entry struct {
	ID           int64
	RequestID    string
	APIURL       string
	VideoURL     string
	Status       string
	FailureKind  string
	Message      string
	ContentBytes int
	CueCount     int
	OutputPath   string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// Finished reports whether the request reached a terminal status.
func (e Entry) Finished() bool {
	return e.FinishedAt != nil
}

// Duration returns how long the request took, or zero while it is running.
func (e Entry) Duration() time.Duration {
	if e.FinishedAt == nil {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}
