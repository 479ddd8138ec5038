// Package clock abstracts the passage of time so that delayed work can be
// driven by a real timer in production and advanced by hand in tests.
package clock

import "time"

// Clock is the subset of the time package that delayed work depends on.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc calls f once, after at least d has elapsed.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a pending call registered with AfterFunc.
type Timer struct {
	stop func() bool
}

// Stop prevents the call from running. It returns false if the call already
// ran or was already stopped.
func (t *Timer) Stop() bool {
	if t == nil || t.stop == nil {
		return false
	}
	return t.stop()
}

type realClock struct{}

// Real returns a Clock backed by the time package.
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) *Timer {
	t := time.AfterFunc(d, f)
	return &Timer{stop: t.Stop}
}
