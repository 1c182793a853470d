// Package display renders machine notifications for people and programs.
package display

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/roach88/cinebox/internal/vending"
)

// ErrUnknownKind is returned by the sinks for a notification kind they cannot
// render.
var ErrUnknownKind = errors.New("unknown notification kind")

// Format returns the one-line text rendering of n. Kinds outside the declared
// set, which only a journal from a newer build can hold, render as a
// placeholder; the sinks reject them instead.
func Format(n vending.Notification) string {
	switch n.Kind {
	case vending.KindCreditUpdate:
		return fmt.Sprintf("current credit = %d", n.Credit)
	case vending.KindReturnConfirmed:
		return fmt.Sprintf("%d returned", n.Amount)
	case vending.KindBrowseDisplay:
		return fmt.Sprintf("Name: %s, schedule: %s, price: %d, available credit: %d",
			sessionName(n), sessionTime(n), sessionPrice(n), n.Credit)
	case vending.KindTicketIssued:
		line := fmt.Sprintf("Ticket for %s, session %s issued. Remaining credit: %d",
			sessionName(n), sessionTime(n), n.Credit)
		if n.TicketID != "" {
			line += fmt.Sprintf(" (ticket %s)", n.TicketID)
		}
		return line
	case vending.KindTicketRefused:
		return "Not enough credit. Ticket not issued"
	default:
		return fmt.Sprintf("unknown notification %q", n.Kind)
	}
}

func sessionName(n vending.Notification) string {
	if n.Session == nil {
		return "?"
	}
	return n.Session.Name
}

func sessionTime(n vending.Notification) string {
	if n.Session == nil {
		return "?"
	}
	return n.Session.Showtime
}

func sessionPrice(n vending.Notification) int {
	if n.Session == nil {
		return 0
	}
	return n.Session.Price
}

// TextSink writes one line per notification.
//
// Thread-safety: Render may be called from multiple goroutines.
type TextSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTextSink creates a TextSink writing to w.
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

// Render implements vending.Sink.
func (s *TextSink) Render(n vending.Notification) error {
	if !n.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, n.Kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintln(s.w, Format(n))
	return err
}

// JSONSink writes one JSON object per notification (JSON Lines).
type JSONSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONSink creates a JSONSink writing to w.
func NewJSONSink(w io.Writer) *JSONSink {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONSink{enc: enc}
}

// Render implements vending.Sink.
func (s *JSONSink) Render(n vending.Notification) error {
	if !n.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, n.Kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(n)
}

// New returns the sink for format ("text" or "json").
func New(format string, w io.Writer) (vending.Sink, error) {
	switch format {
	case "text":
		return NewTextSink(w), nil
	case "json":
		return NewJSONSink(w), nil
	default:
		return nil, fmt.Errorf("unknown display format %q", format)
	}
}
