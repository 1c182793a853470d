package journal

import (
	"context"
	"fmt"

	"github.com/roach88/cinebox/internal/catalog"
	"github.com/roach88/cinebox/internal/vending"
)

// Mismatch describes one divergence between a journaled tick and its replay.
type Mismatch struct {
	Seq    int64
	Field  string
	Stored string
	Replay string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("seq %d: %s: journal %s, replay %s", m.Seq, m.Field, m.Stored, m.Replay)
}

// MismatchError reports that a run did not replay deterministically.
type MismatchError struct {
	RunID      string
	Mismatches []Mismatch
}

func (e *MismatchError) Error() string {
	if len(e.Mismatches) == 0 {
		return fmt.Sprintf("run %s: replay mismatch", e.RunID)
	}
	return fmt.Sprintf("run %s: %d replay mismatches, first: %s", e.RunID, len(e.Mismatches), e.Mismatches[0])
}

// VerifyResult summarizes a replay.
type VerifyResult struct {
	RunID   string
	Ticks   int
	Tickets int
	Final   vending.MachineState
}

// Verify replays the events of a run through vending.Step starting from the
// power-up state and compares every tick with what was journaled.
//
// Returns *MismatchError (alongside the result) if any tick diverges. Ticket
// IDs are not compared; they are generated outside Step.
func (s *Store) Verify(ctx context.Context, runID string) (VerifyResult, error) {
	res := VerifyResult{RunID: runID}

	run, err := s.ReadRun(ctx, runID)
	if err != nil {
		return res, err
	}
	cat, err := catalog.New(run.Catalog)
	if err != nil {
		return res, fmt.Errorf("run %s: stored catalog: %w", runID, err)
	}
	ticks, err := s.ReadTicks(ctx, runID)
	if err != nil {
		return res, err
	}

	mm := &MismatchError{RunID: runID}
	if hash, err := cat.Hash(); err != nil {
		return res, fmt.Errorf("run %s: %w", runID, err)
	} else if hash != run.CatalogHash {
		mm.add(0, "catalog_hash", run.CatalogHash, hash)
	}

	ms := vending.InitialState()
	for _, tick := range ticks {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if ms != tick.Before {
			mm.add(tick.Seq, "state_before", fmt.Sprintf("%+v", tick.Before), fmt.Sprintf("%+v", ms))
			ms = tick.Before
		}

		out := vending.Step(cat, &ms, tick.Event)
		res.Ticks++

		if out.Consumed != tick.Consumed {
			mm.add(tick.Seq, "consumed", fmt.Sprint(tick.Consumed), fmt.Sprint(out.Consumed))
		}
		if ms != tick.After {
			mm.add(tick.Seq, "state_after", fmt.Sprintf("%+v", tick.After), fmt.Sprintf("%+v", ms))
		}
		compareNotifications(mm, tick, out.Notifications)

		for _, n := range tick.Notifications {
			if n.Kind == vending.KindTicketIssued {
				res.Tickets++
			}
		}
		ms = tick.After
	}
	res.Final = ms

	if len(mm.Mismatches) > 0 {
		return res, mm
	}
	return res, nil
}

func compareNotifications(mm *MismatchError, tick vending.TickResult, replayed []vending.Notification) {
	if len(replayed) != len(tick.Notifications) {
		mm.add(tick.Seq, "notifications", fmt.Sprint(len(tick.Notifications)), fmt.Sprint(len(replayed)))
		return
	}
	for i, n := range tick.Notifications {
		if !n.SameOutcome(replayed[i]) {
			mm.add(tick.Seq, fmt.Sprintf("notification[%d]", i), string(n.Kind), string(replayed[i].Kind))
		}
	}
}

func (e *MismatchError) add(seq int64, field, stored, replay string) {
	e.Mismatches = append(e.Mismatches, Mismatch{Seq: seq, Field: field, Stored: stored, Replay: replay})
}
