package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/cinebox/internal/vending"
)

// ErrRunNotFound is returned when a run ID is not in the journal.
var ErrRunNotFound = errors.New("run not found")

// ReadRun returns the run with the given ID.
func (s *Store) ReadRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, catalog, catalog_hash, engine_version, started_at
		FROM runs
		WHERE id = ?
	`, runID)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return run, err
}

// ListRuns returns every run, oldest first.
// Returns an empty slice (not nil) if the journal has no runs.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, catalog, catalog_hash, engine_version, started_at
		FROM runs
		ORDER BY started_at ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LatestRun returns the most recently started run.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, catalog, catalog_hash, engine_version, started_at
		FROM runs
		ORDER BY started_at DESC, id COLLATE BINARY DESC
		LIMIT 1
	`)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: journal is empty", ErrRunNotFound)
	}
	return run, err
}

// ReadTicks returns the journaled ticks of a run ordered by seq, each with its
// notifications in emission order.
// Returns an empty slice (not nil) if the run has no ticks.
func (s *Store) ReadTicks(ctx context.Context, runID string) ([]vending.TickResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, event, consumed, state_before, state_after
		FROM ticks
		WHERE run_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query ticks: %w", err)
	}
	defer rows.Close()

	ticks := []vending.TickResult{}
	index := make(map[string]int)
	for rows.Next() {
		var (
			id, event, before, after string
			tick                     vending.TickResult
		)
		if err := rows.Scan(&id, &tick.Seq, &event, &tick.Consumed, &before, &after); err != nil {
			return nil, fmt.Errorf("scan tick: %w", err)
		}
		if tick.Event, err = vending.ParseEvent(event); err != nil {
			return nil, fmt.Errorf("tick %d: %w", tick.Seq, err)
		}
		if tick.Before, err = unmarshalState(before); err != nil {
			return nil, fmt.Errorf("tick %d: %w", tick.Seq, err)
		}
		if tick.After, err = unmarshalState(after); err != nil {
			return nil, fmt.Errorf("tick %d: %w", tick.Seq, err)
		}
		index[id] = len(ticks)
		ticks = append(ticks, tick)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticks: %w", err)
	}

	if err := s.attachNotifications(ctx, runID, ticks, index); err != nil {
		return nil, err
	}
	return ticks, nil
}

// attachNotifications loads every notification of the run in one query.
func (s *Store) attachNotifications(ctx context.Context, runID string, ticks []vending.TickResult, index map[string]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT n.tick_id, n.payload
		FROM notifications n
		JOIN ticks t ON n.tick_id = t.id
		WHERE t.run_id = ?
		ORDER BY t.seq ASC, n.idx ASC
	`, runID)
	if err != nil {
		return fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tickID, payload string
		if err := rows.Scan(&tickID, &payload); err != nil {
			return fmt.Errorf("scan notification: %w", err)
		}
		i, ok := index[tickID]
		if !ok {
			return fmt.Errorf("notification references unknown tick %s", tickID)
		}
		n, err := unmarshalNotification(payload)
		if err != nil {
			return fmt.Errorf("tick %d: %w", ticks[i].Seq, err)
		}
		ticks[i].Notifications = append(ticks[i].Notifications, n)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate notifications: %w", err)
	}
	return nil
}

// ListTickets returns the tickets issued in a run, or in every run when runID
// is empty, in issue order.
// Returns an empty slice (not nil) if no tickets were issued.
func (s *Store) ListTickets(ctx context.Context, runID string) ([]Ticket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.run_id, t.seq, t.name, t.showtime, t.price, t.remaining_credit
		FROM tickets t
		JOIN runs r ON t.run_id = r.id
		WHERE ? = '' OR t.run_id = ?
		ORDER BY r.started_at ASC, r.id COLLATE BINARY ASC, t.seq ASC
	`, runID, runID)
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()

	tickets := []Ticket{}
	for rows.Next() {
		var tk Ticket
		if err := rows.Scan(
			&tk.ID,
			&tk.RunID,
			&tk.Seq,
			&tk.Session.Name,
			&tk.Session.Showtime,
			&tk.Session.Price,
			&tk.RemainingCredit,
		); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, tk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tickets: %w", err)
	}
	return tickets, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run              Run
		catJSON, started string
	)
	if err := row.Scan(&run.ID, &catJSON, &run.CatalogHash, &run.EngineVersion, &started); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	sessions, err := unmarshalCatalog(catJSON)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: %w", run.ID, err)
	}
	run.Catalog = sessions

	run.StartedAt, err = time.Parse(timeLayout, started)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: parse started_at: %w", run.ID, err)
	}
	return run, nil
}
