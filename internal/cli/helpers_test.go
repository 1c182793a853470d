package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/cinebox/internal/catalog"
	"github.com/roach88/cinebox/internal/journal"
	"github.com/roach88/cinebox/internal/testutil"
	"github.com/roach88/cinebox/internal/vending"
)

const matineeConfig = `
tick_interval: "25ms"

catalog: [
	{name: "Matinee", showtime: "14H00", price: 4},
	{name: "Late Show", showtime: "22H30", price: 8},
]
`

// writeFile writes content under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// recordJournal creates a journal at path holding one run driven by events
// against the default catalog. Ticket IDs are runID-0001, runID-0002...
func recordJournal(t *testing.T, path, runID string, startedAt time.Time, events ...vending.Event) {
	t.Helper()
	ctx := context.Background()

	st, err := journal.Open(path)
	require.NoError(t, err)
	defer st.Close()

	cat := catalog.Default()
	rec, err := st.StartRun(ctx, runID, cat, startedAt)
	require.NoError(t, err)

	eng := vending.New(cat,
		vending.WithRecorder(rec),
		vending.WithTicketIDs(testutil.NewSequentialTicketIDs(runID)),
		vending.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	for _, ev := range events {
		eng.SendEvent(ev)
		for i := 0; i < 3 && eng.Pending() != vending.None; i++ {
			_, err := eng.Tick(ctx)
			require.NoError(t, err)
		}
	}
}

// buyOneTicket inserts 10, browses to the first session and buys it.
var buyOneTicket = []vending.Event{vending.Coin10, vending.BrowseUp, vending.Select}
