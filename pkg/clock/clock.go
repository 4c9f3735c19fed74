package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns a Clock backed by time.Now.
func System() Clock {
	return systemClock{}
}

// Func adapts an ordinary function to the Clock interface.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// Mock is a manually driven Clock for deterministic tests.
type Mock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewMock returns a Mock frozen at t.
func NewMock(t time.Time) *Mock {
	return &Mock{now: t}
}

func (m *Mock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Set moves the clock to t.
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Advance moves the clock forward by d. Negative durations move it back.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// OrSystem returns c, or the system clock when c is nil.
func OrSystem(c Clock) Clock {
	if c == nil {
		return System()
	}
	return c
}

// UnixSeconds returns the current time of c in whole seconds since the epoch.
func UnixSeconds(c Clock) int64 {
	return OrSystem(c).Now().Unix()
}

// UnixMillis returns the current time of c in milliseconds since the epoch.
func UnixMillis(c Clock) int64 {
	return OrSystem(c).Now().UnixMilli()
}
