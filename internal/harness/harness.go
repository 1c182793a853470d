package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/cinebox/internal/catalog"
	"github.com/roach88/cinebox/internal/display"
	"github.com/roach88/cinebox/internal/input"
	"github.com/roach88/cinebox/internal/journal"
	"github.com/roach88/cinebox/internal/testutil"
	"github.com/roach88/cinebox/internal/vending"
)

// runID is the journal run every scenario records into.
const runID = "scenario"

// maxFeedTicks bounds a feed step: one hand-off tick plus the tick that
// handles the event, with one spare.
const maxFeedTicks = 3

// Harness executes one scenario against a journaled engine.
type Harness struct {
	engine  *vending.Engine
	journal *journal.Store
	buttons *input.ButtonMap
	result  *Result

	// output collects lines rendered since the last expect step.
	output []string
}

// Run executes a scenario and returns the result.
//
// Each run gets a fresh in-memory journal, a fresh deterministic clock and
// fresh ticket IDs. The returned error covers setup failures only; failed
// expectations are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	cat := catalog.Default()
	if len(scenario.Catalog) > 0 {
		var err error
		if cat, err = catalog.New(scenario.Catalog); err != nil {
			return nil, fmt.Errorf("scenario catalog: %w", err)
		}
	}

	st, err := journal.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("create in-memory journal: %w", err)
	}
	defer st.Close()

	rec, err := st.StartRun(ctx, runID, cat, time.Unix(0, 0))
	if err != nil {
		return nil, err
	}

	h := &Harness{
		engine: vending.New(cat,
			vending.WithSequencer(testutil.NewDeterministicClock()),
			vending.WithTicketIDs(testutil.NewSequentialTicketIDs("ticket")),
			vending.WithRecorder(rec),
			vending.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		),
		journal: st,
		buttons: input.DefaultButtonMap(),
		result:  NewResult(),
	}

	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	h.result.Final = h.engine.Snapshot()
	h.result.Pending = h.engine.Pending()

	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions) {
		h.result.AddError(msg)
	}

	if _, err := st.Verify(ctx, runID); err != nil {
		var mm *journal.MismatchError
		if !errors.As(err, &mm) {
			return nil, fmt.Errorf("verify journal: %w", err)
		}
		for _, m := range mm.Mismatches {
			h.result.AddError("replay: " + m.String())
		}
	}

	return h.result, nil
}

func (h *Harness) executeStep(ctx context.Context, index int, step Step) error {
	switch {
	case step.Send != "":
		ev, err := vending.ParseEvent(step.Send)
		if err != nil {
			return err
		}
		h.engine.SendEvent(ev)

	case step.Press != nil:
		if err := h.buttons.Press(h.engine, *step.Press); err != nil {
			return err
		}

	case step.Tick > 0:
		for i := 0; i < step.Tick; i++ {
			if _, err := h.tick(ctx); err != nil {
				return err
			}
		}

	case step.Feed != "":
		ev, err := vending.ParseEvent(step.Feed)
		if err != nil {
			return err
		}
		h.engine.SendEvent(ev)
		for i := 0; i < maxFeedTicks; i++ {
			res, err := h.tick(ctx)
			if err != nil {
				return err
			}
			if res.Idle() || res.Consumed || res.Before.State == res.After.State {
				break
			}
		}

	case step.Expect != nil:
		h.checkExpect(index, step.Expect)
	}
	return nil
}

// tick runs one engine tick and appends it to the trace.
func (h *Harness) tick(ctx context.Context) (vending.TickResult, error) {
	res, err := h.engine.Tick(ctx)
	if err != nil {
		return res, err
	}
	if res.Idle() {
		return res, nil
	}

	ev := TraceEvent{
		Seq:      res.Seq,
		Event:    res.Event.String(),
		From:     res.Before.State.String(),
		To:       res.After.State.String(),
		Consumed: res.Consumed,
		Credit:   res.After.Credit,
		Cursor:   res.After.Cursor,
	}
	for _, n := range res.Notifications {
		line := display.Format(n)
		ev.Kinds = append(ev.Kinds, string(n.Kind))
		ev.Output = append(ev.Output, line)
		h.output = append(h.output, line)
	}
	h.result.Trace = append(h.result.Trace, ev)
	return res, nil
}

func (h *Harness) checkExpect(index int, e *Expect) {
	ms := h.engine.Snapshot()
	fail := func(format string, args ...any) {
		h.result.AddError(fmt.Sprintf("steps[%d]: ", index) + fmt.Sprintf(format, args...))
	}

	if e.State != "" && ms.State.String() != e.State {
		fail("state: expected %s, got %s", e.State, ms.State)
	}
	if e.Credit != nil && ms.Credit != *e.Credit {
		fail("credit: expected %d, got %d", *e.Credit, ms.Credit)
	}
	if e.Cursor != nil && ms.Cursor != *e.Cursor {
		fail("cursor: expected %d, got %d", *e.Cursor, ms.Cursor)
	}
	if e.Pending != "" {
		if pending := h.engine.Pending(); pending.String() != e.Pending {
			fail("pending: expected %s, got %s", e.Pending, pending)
		}
	}
	if e.Output != nil && !slices.Equal(e.Output, h.output) {
		fail("output: expected %q, got %q", e.Output, h.output)
	}
	if e.Silent && len(h.output) > 0 {
		fail("output: expected nothing, got %q", h.output)
	}

	h.output = nil
}
