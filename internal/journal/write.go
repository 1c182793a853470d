package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/cinebox/internal/catalog"
	"github.com/roach88/cinebox/internal/vending"
)

// timeLayout is fixed width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one power-up-to-shutdown session of the machine.
type Run struct {
	ID            string
	Catalog       []catalog.MovieSession
	CatalogHash   string
	EngineVersion string
	StartedAt     time.Time
}

// Ticket is a row of the tickets table.
type Ticket struct {
	ID              string
	RunID           string
	Seq             int64
	Session         catalog.MovieSession
	RemainingCredit int
}

// StartRun registers a new run selling from cat and returns a Recorder bound
// to it. startedAt is informational only.
func (s *Store) StartRun(ctx context.Context, runID string, cat *catalog.Catalog, startedAt time.Time) (*Recorder, error) {
	catJSON, err := marshalCatalog(cat)
	if err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}
	hash, err := cat.Hash()
	if err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, catalog, catalog_hash, engine_version, started_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		runID,
		catJSON,
		hash,
		vending.EngineVersion,
		startedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("start run %s: %w", runID, err)
	}

	return &Recorder{store: s, runID: runID}, nil
}

// WriteTick stores tick, its notifications and any issued ticket in one
// transaction. Writing the same tick twice is a no-op.
func (s *Store) WriteTick(ctx context.Context, runID string, tick vending.TickResult) error {
	if tick.Idle() {
		return fmt.Errorf("write tick: idle ticks are not journaled")
	}

	id, err := tickID(runID, tick.Seq, tick.Event)
	if err != nil {
		return fmt.Errorf("write tick: %w", err)
	}
	before, err := marshalState(tick.Before)
	if err != nil {
		return fmt.Errorf("write tick: %w", err)
	}
	after, err := marshalState(tick.After)
	if err != nil {
		return fmt.Errorf("write tick: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op after Commit

	result, err := tx.ExecContext(ctx, `
		INSERT INTO ticks (id, run_id, seq, event, consumed, state_before, state_after)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		runID,
		tick.Seq,
		tick.Event.String(),
		tick.Consumed,
		before,
		after,
	)
	if err != nil {
		return fmt.Errorf("write tick %d: %w", tick.Seq, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil
	}

	for i, n := range tick.Notifications {
		payload, err := marshalNotification(n)
		if err != nil {
			return fmt.Errorf("write tick %d: %w", tick.Seq, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO notifications (tick_id, idx, kind, payload)
			VALUES (?, ?, ?, ?)
		`, id, i, string(n.Kind), payload)
		if err != nil {
			return fmt.Errorf("write notification %d of tick %d: %w", i, tick.Seq, err)
		}

		if n.Kind != vending.KindTicketIssued {
			continue
		}
		if n.TicketID == "" || n.Session == nil {
			return fmt.Errorf("write tick %d: issued ticket without id or session", tick.Seq)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO tickets (id, run_id, seq, name, showtime, price, remaining_credit)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			n.TicketID,
			runID,
			tick.Seq,
			n.Session.Name,
			n.Session.Showtime,
			n.Session.Price,
			n.Credit,
		)
		if err != nil {
			return fmt.Errorf("write ticket %s: %w", n.TicketID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tick %d: %w", tick.Seq, err)
	}
	return nil
}

// Recorder journals the ticks of one run. It implements vending.Recorder.
type Recorder struct {
	store *Store
	runID string
}

// RunID returns the run this recorder writes to.
func (r *Recorder) RunID() string {
	return r.runID
}

// RecordTick implements vending.Recorder.
func (r *Recorder) RecordTick(ctx context.Context, tick vending.TickResult) error {
	return r.store.WriteTick(ctx, r.runID, tick)
}

var _ vending.Recorder = (*Recorder)(nil)
