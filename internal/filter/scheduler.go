package filter

import "time"

// Scheduler is the timing port the debounce logic runs on. Production
// code uses TimerScheduler; tests inject a manual implementation and
// advance it by hand, so no test ever sleeps.
type Scheduler interface {
	// Schedule runs fn once after d. The returned cancel func stops an
	// unfired callback; calling it after the callback ran is a no-op.
	Schedule(d time.Duration, fn func()) (cancel func())
}

// TimerScheduler schedules on real timers. Callbacks fire on the
// timer's goroutine.
type TimerScheduler struct{}

// Schedule implements Scheduler via time.AfterFunc.
func (TimerScheduler) Schedule(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

var _ Scheduler = TimerScheduler{}
