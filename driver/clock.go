package driver

import "time"

// Clock creates the timers that pace the game. Tests swap in a manual clock.
type Clock interface {
	NewTimer(d time.Duration) Timer
}

// Timer is the subset of *time.Timer the driver relies on.
type Timer interface {
	C() <-chan time.Time
	Reset(d time.Duration) bool
	Stop() bool
}

type realClock struct{}

// RealClock returns a Clock backed by the time package.
func RealClock() Clock {
	return realClock{}
}

func (realClock) NewTimer(d time.Duration) Timer {
	return &realTimer{t: time.NewTimer(d)}
}

type realTimer struct {
	t *time.Timer
}

func (r *realTimer) C() <-chan time.Time {
	return r.t.C
}

func (r *realTimer) Reset(d time.Duration) bool {
	return r.t.Reset(d)
}

func (r *realTimer) Stop() bool {
	return r.t.Stop()
}
