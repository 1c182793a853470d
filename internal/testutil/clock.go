package testutil

import (
	"sync"

	"github.com/roach88/cinebox/internal/vending"
)

// DeterministicClock is a resettable vending.Sequencer.
//
// Unlike vending.Clock it can be rewound, so one scenario can run several
// times and stamp identical sequence numbers each time.
type DeterministicClock struct {
	mu  sync.Mutex
	seq int64
}

var _ vending.Sequencer = (*DeterministicClock)(nil)

// NewDeterministicClock creates a clock whose first Next returns 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next increments and returns the sequence number.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the last value handed out, or 0.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset rewinds the clock; the next call to Next returns 1.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
