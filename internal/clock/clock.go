// Package clock provides time abstraction for testability.
package clock

import "time"

// Clock abstracts time access so business rules that depend on "now"
// can be tested deterministically.
type Clock interface {
	Now() time.Time
	Today() time.Time
}

// RealClock implements Clock using the system time in UTC.
type RealClock struct{}

func NewRealClock() RealClock {
	return RealClock{}
}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// Today returns the current date truncated to midnight UTC.
func (c RealClock) Today() time.Time {
	now := c.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// MockClock implements Clock with a controllable time for tests.
type MockClock struct {
	now time.Time
}

func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

func (m *MockClock) Now() time.Time {
	return m.now
}

func (m *MockClock) Today() time.Time {
	return time.Date(m.now.Year(), m.now.Month(), m.now.Day(), 0, 0, 0, 0, time.UTC)
}

// Set replaces the current mock time.
func (m *MockClock) Set(t time.Time) {
	m.now = t
}

// Add advances the mock time by d.
func (m *MockClock) Add(d time.Duration) {
	m.now = m.now.Add(d)
}
