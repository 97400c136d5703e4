package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/gomoku-go/internal/dependencies/clock"
)

// MockClock is a manually driven Clock, safe for use from several goroutines
type MockClock struct {
	mu      sync.Mutex
	current time.Time
}

var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock frozen at t
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{current: t}
}

// Now returns the frozen time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves the clock forward by d
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Set jumps the clock to t
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}
