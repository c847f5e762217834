package worker

import "time"

// SetClock replaces the clock used to compute the sweep cutoff
func (w *SessionSweepWorker) SetClock(now func() time.Time) {
	w.now = now
}
