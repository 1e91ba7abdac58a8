package ports

import "time"

// CancelFunc cancels a scheduled timer. Calling it after the timer fired, or
// more than once, is a no-op.
type CancelFunc func()

// Scheduler is the host timer boundary. The session schedules exactly one
// timer at a time (the wait-command pause) and cancels it when the session
// stops or restarts, so a stale resume can never fire into a newer run.
//
// Implementations decide on which goroutine fn runs; hosts that confine the
// session to one goroutine must deliver fn back onto it.
type Scheduler interface {
	After(d time.Duration, fn func()) CancelFunc
}

// TimerScheduler is the default Scheduler backed by time.AfterFunc. The
// callback runs on a timer goroutine; single-goroutine hosts should prefer a
// pump that channels callbacks into their loop.
type TimerScheduler struct{}

func (TimerScheduler) After(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
