package mocks

import (
	"sync"

	"github.com/mcoot/gomoku-go/internal/dependencies/random"
)

// MockRandom returns queued results, falling back to zero values once drained
type MockRandom struct {
	mu    sync.Mutex
	ints  []int
	flips []bool
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates an empty MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn pops the next queued int, or 0
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v
}

// CoinFlip pops the next queued flip, or false
func (r *MockRandom) CoinFlip() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.flips) == 0 {
		return false
	}
	v := r.flips[0]
	r.flips = r.flips[1:]
	return v
}

// QueueIntn appends values returned by subsequent Intn calls
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ints = append(r.ints, values...)
}

// QueueCoinFlip appends values returned by subsequent CoinFlip calls
func (r *MockRandom) QueueCoinFlip(values ...bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flips = append(r.flips, values...)
}
