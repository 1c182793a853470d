package testutil

import (
	"fmt"
	"sync"

	"github.com/roach88/cinebox/internal/vending"
)

// SequentialTicketIDs generates "<prefix>-0001", "<prefix>-0002", ...
//
// Unlike vending.FixedGenerator it never runs out, which suits scenarios of
// arbitrary length whose transcripts are compared against golden files.
type SequentialTicketIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

var _ vending.TicketIDGenerator = (*SequentialTicketIDs)(nil)

// NewSequentialTicketIDs creates a generator. An empty prefix means "ticket".
func NewSequentialTicketIDs(prefix string) *SequentialTicketIDs {
	if prefix == "" {
		prefix = "ticket"
	}
	return &SequentialTicketIDs{prefix: prefix}
}

// Generate returns the next ID.
func (g *SequentialTicketIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}

// Reset restarts numbering at 1.
func (g *SequentialTicketIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
