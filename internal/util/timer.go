package util

import "time"

// Timer measures how long a request spends in the verdict pipeline.
type Timer struct {
	start time.Time
}

// StartTimer begins timing at the current instant.
func StartTimer() Timer {
	return Timer{start: time.Now()}
}

// ElapsedMs reports whole milliseconds since StartTimer; it feeds the
// processingTimeMs field on verdict responses. A zero timer reports 0.
func (t Timer) ElapsedMs() int64 {
	if t.start.IsZero() {
		return 0
	}
	return time.Since(t.start).Milliseconds()
}
