package vending

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/cinebox/internal/catalog"
)

// DefaultTickInterval is the scheduling period of Run.
const DefaultTickInterval = 10 * time.Millisecond

// Recorder receives every tick that processed an event.
// Implemented by journal.Recorder.
type Recorder interface {
	RecordTick(ctx context.Context, tick TickResult) error
}

// Sink renders notifications. Implemented by the display package.
type Sink interface {
	Render(n Notification) error
}

// TickResult describes one tick that saw a pending event.
// A tick with no pending event returns the zero TickResult (Seq == 0).
type TickResult struct {
	Seq           int64          `json:"seq"`
	Event         Event          `json:"event"`
	Before        MachineState   `json:"before"`
	After         MachineState   `json:"after"`
	Consumed      bool           `json:"consumed"`
	Notifications []Notification `json:"notifications,omitempty"`
}

// Idle reports whether the tick had nothing to do.
func (r TickResult) Idle() bool {
	return r.Seq == 0
}

// Engine drives MachineState from the mailbox.
//
// Thread-safety model:
//   - SendEvent: safe from any goroutine
//   - Tick / Run / Init: single writer; concurrent calls are serialized
//   - CurrentState / Snapshot / Pending: safe from any goroutine
type Engine struct {
	catalog  *catalog.Catalog
	mailbox  Mailbox
	mu       sync.RWMutex
	state    MachineState
	seq      Sequencer
	tickets  TicketIDGenerator
	recorder Recorder
	logger   *slog.Logger
	interval time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithSequencer replaces the default Clock.
func WithSequencer(s Sequencer) Option {
	return func(e *Engine) {
		e.seq = s
	}
}

// WithTicketIDs replaces the default UUIDv7 ticket ID generator.
func WithTicketIDs(g TicketIDGenerator) Option {
	return func(e *Engine) {
		e.tickets = g
	}
}

// WithRecorder journals every non-idle tick.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithTickInterval sets the period of Run.
// Default: 10ms (DefaultTickInterval).
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.interval = d
	}
}

// New creates an Engine over cat and initializes it.
func New(cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:  cat,
		seq:      NewClock(),
		tickets:  UUIDv7Generator{},
		logger:   slog.Default(),
		interval: DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Init()
	return e
}

// Init resets the machine to its power-up state and drops any pending event.
// The sequencer is not reset; sequence numbers stay unique for the process.
func (e *Engine) Init() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = InitialState()
	e.mailbox.Clear()
}

// SendEvent makes ev the pending event, overwriting any event not yet ticked.
func (e *Engine) SendEvent(ev Event) {
	if !ev.Valid() {
		e.logger.Warn("dropping invalid event", "event", int32(ev))
		return
	}
	if prev := e.mailbox.Peek(); prev != None && prev != ev {
		e.logger.Debug("pending event overwritten", "dropped", prev.String(), "event", ev.String())
	}
	e.mailbox.Put(ev)
}

// Catalog returns the catalog the engine sells from.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// CurrentState returns the machine's current state.
func (e *Engine) CurrentState() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.State
}

// Snapshot returns a copy of the machine state.
func (e *Engine) Snapshot() MachineState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Pending returns the pending event, or None.
func (e *Engine) Pending() Event {
	return e.mailbox.Peek()
}

// Tick runs one pass of the state machine.
//
// With no pending event Tick is a no-op and returns the zero TickResult. An
// event the current state ignores is also a no-op: it stays pending, but the
// tick is neither sequenced nor recorded. Otherwise the event is applied,
// consumed when Step says so, stamped with the next sequence number and passed
// to the Recorder. A Recorder failure is returned as a *TickError alongside
// the complete result: the machine has already moved on.
func (e *Engine) Tick(ctx context.Context) (TickResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	press := e.mailbox.Load()
	ev := press.Event()
	if ev == None {
		return TickResult{}, nil
	}

	before := e.state
	out := Step(e.catalog, &e.state, ev)
	if !out.Consumed && before == e.state {
		return TickResult{}, nil
	}
	if out.Consumed {
		if !e.mailbox.Consume(press) {
			e.logger.Debug("press arrived during tick", "event", ev.String(), "pending", e.mailbox.Peek().String())
		}
	}

	res := TickResult{
		Seq:           e.seq.Next(),
		Event:         ev,
		Before:        before,
		After:         e.state,
		Consumed:      out.Consumed,
		Notifications: out.Notifications,
	}
	for i := range res.Notifications {
		if res.Notifications[i].Kind == KindTicketIssued {
			res.Notifications[i].TicketID = e.tickets.Generate()
		}
	}

	if before.State != res.After.State {
		e.logger.Info("state changed",
			"seq", res.Seq,
			"from", before.State.String(),
			"to", res.After.State.String(),
			"event", ev.String(),
		)
	}
	e.logger.Debug("tick",
		"seq", res.Seq,
		"event", ev.String(),
		"consumed", res.Consumed,
		"credit", res.After.Credit,
		"cursor", res.After.Cursor,
		"notifications", len(res.Notifications),
	)

	if e.recorder != nil {
		if err := e.recorder.RecordTick(ctx, res); err != nil {
			return res, &TickError{Code: ErrCodeRecordFailed, Seq: res.Seq, Event: ev, Err: err}
		}
	}

	return res, nil
}

// Run ticks at the configured interval until ctx is cancelled, rendering every
// notification through sink.
//
// Tick and render failures are logged and the loop continues.
func (e *Engine) Run(ctx context.Context, sink Sink) error {
	e.logger.Info("engine starting", "interval", e.interval, "sessions", e.catalog.Len())

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			res, err := e.Tick(ctx)
			if err != nil {
				e.logger.Error("tick failed", "seq", res.Seq, "event", res.Event.String(), "error", err)
			}
			for _, n := range res.Notifications {
				if err := sink.Render(n); err != nil {
					rerr := &TickError{Code: ErrCodeRenderFailed, Seq: res.Seq, Event: res.Event, Err: err}
					e.logger.Error("render failed", "kind", string(n.Kind), "error", rerr)
				}
			}
		}
	}
}
