// Package catalog holds the read-only list of movie sessions offered by the
// machine. A Catalog never changes after construction.
package catalog

import (
	"errors"
	"fmt"

	"github.com/roach88/cinebox/internal/canonical"
)

// ErrEmpty is returned when a catalog has no sessions.
var ErrEmpty = errors.New("catalog must contain at least one session")

// MovieSession is one screening on offer.
type MovieSession struct {
	Name     string `json:"name" yaml:"name"`
	Showtime string `json:"showtime" yaml:"showtime"`
	Price    int    `json:"price" yaml:"price"`
}

// Catalog is an immutable ordered list of sessions, indexed from 0.
type Catalog struct {
	sessions []MovieSession
}

// Default returns the reference catalog of five sessions.
func Default() *Catalog {
	return &Catalog{sessions: []MovieSession{
		{Name: "Movie A", Showtime: "19H00", Price: 9},
		{Name: "Movie A", Showtime: "21H00", Price: 11},
		{Name: "Movie A", Showtime: "23H00", Price: 9},
		{Name: "Movie B", Showtime: "19H00", Price: 10},
		{Name: "Movie B", Showtime: "21H00", Price: 12},
	}}
}

// New validates and copies sessions into a Catalog.
func New(sessions []MovieSession) (*Catalog, error) {
	if len(sessions) == 0 {
		return nil, ErrEmpty
	}
	for i, s := range sessions {
		if s.Name == "" {
			return nil, fmt.Errorf("session[%d]: name is required", i)
		}
		if s.Showtime == "" {
			return nil, fmt.Errorf("session[%d]: showtime is required", i)
		}
		if s.Price < 0 {
			return nil, fmt.Errorf("session[%d]: price must be non-negative, got %d", i, s.Price)
		}
	}

	cp := make([]MovieSession, len(sessions))
	copy(cp, sessions)
	return &Catalog{sessions: cp}, nil
}

// Len returns the number of sessions.
func (c *Catalog) Len() int {
	return len(c.sessions)
}

// At returns the session at index i. Panics when i is out of range; callers
// keep their cursor inside [0, Len()).
func (c *Catalog) At(i int) MovieSession {
	return c.sessions[i]
}

// Sessions returns a copy of all sessions in order.
func (c *Catalog) Sessions() []MovieSession {
	cp := make([]MovieSession, len(c.sessions))
	copy(cp, c.sessions)
	return cp
}

// Hash returns the content hash of the catalog. Two catalogs with the same
// sessions in the same order hash identically.
func (c *Catalog) Hash() (string, error) {
	return canonical.Hash(canonical.DomainCatalog, c.toCanonical())
}

func (c *Catalog) toCanonical() []any {
	out := make([]any, len(c.sessions))
	for i, s := range c.sessions {
		out[i] = s.ToMap()
	}
	return out
}

// ToMap converts the session to a canonical-JSON friendly map.
func (s MovieSession) ToMap() map[string]any {
	return map[string]any{
		"name":     s.Name,
		"showtime": s.Showtime,
		"price":    s.Price,
	}
}
