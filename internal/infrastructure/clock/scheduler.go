// Package clock provides the wall-clock Scheduler used to suspend flows
// until settlement.
package clock

import "time"

// TimerScheduler implements usecase.Scheduler with time.AfterFunc.
type TimerScheduler struct{}

// NewTimerScheduler creates a new TimerScheduler.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{}
}

// After runs fn once after d on its own goroutine. The returned function
// cancels the pending run; cancelling after fn started is a no-op.
func (s *TimerScheduler) After(d time.Duration, fn func()) func() {
	timer := time.AfterFunc(d, fn)
	return func() {
		timer.Stop()
	}
}
