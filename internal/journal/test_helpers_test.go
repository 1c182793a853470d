package journal

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/cinebox/internal/catalog"
	"github.com/roach88/cinebox/internal/vending"
)

var testStart = time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)

// createTestStore opens a fresh journal in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// recordRun drives a journaled engine through events and returns the
// non-idle tick results in order.
func recordRun(t *testing.T, s *Store, runID string, startedAt time.Time, events ...vending.Event) []vending.TickResult {
	t.Helper()
	ctx := context.Background()
	cat := catalog.Default()

	rec, err := s.StartRun(ctx, runID, cat, startedAt)
	require.NoError(t, err)

	e := vending.New(cat,
		vending.WithRecorder(rec),
		vending.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		vending.WithTicketIDs(vending.NewFixedGenerator(runID+"-t1", runID+"-t2", runID+"-t3")),
	)

	var results []vending.TickResult
	for _, ev := range events {
		e.SendEvent(ev)
		for i := 0; i < 3 && e.Pending() != vending.None; i++ {
			res, err := e.Tick(ctx)
			require.NoError(t, err)
			if !res.Idle() {
				results = append(results, res)
			}
		}
	}
	return results
}
