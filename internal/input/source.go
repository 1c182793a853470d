package input

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/cinebox/internal/vending"
)

// LineSource reads button presses from text.
//
// Tokens are separated by whitespace; "#" starts a comment that runs to the
// end of the line. "quit" or "q" stops the source, as does EOF.
type LineSource struct {
	r       io.Reader
	buttons *ButtonMap
	sender  Sender
	logger  *slog.Logger
	pace    time.Duration
}

// SourceOption configures a LineSource.
type SourceOption func(*LineSource)

// WithPace waits d after each press. Use it when reading from a file so that
// each press is ticked before the next one overwrites it.
func WithPace(d time.Duration) SourceOption {
	return func(s *LineSource) {
		s.pace = d
	}
}

// WithSourceLogger sets the logger. Defaults to slog.Default().
func WithSourceLogger(l *slog.Logger) SourceOption {
	return func(s *LineSource) {
		s.logger = l
	}
}

// NewLineSource creates a source that reads r and presses buttons on sender.
func NewLineSource(r io.Reader, buttons *ButtonMap, sender Sender, opts ...SourceOption) *LineSource {
	s := &LineSource{
		r:       r,
		buttons: buttons,
		sender:  sender,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run reads until EOF, a quit token, or ctx is cancelled.
// Unrecognized tokens are logged and skipped.
func (s *LineSource) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}

		for _, tok := range strings.Fields(text) {
			if err := ctx.Err(); err != nil {
				return err
			}
			if tok == "quit" || tok == "q" {
				s.logger.Debug("input source quit", "line", line)
				return nil
			}

			ev, err := s.resolve(tok)
			if err != nil {
				s.logger.Warn("ignoring input", "line", line, "token", tok, "error", err)
				continue
			}
			s.sender.SendEvent(ev)
			s.logger.Debug("button pressed", "line", line, "token", tok, "event", ev.String())

			if s.pace > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(s.pace):
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

// resolve maps a token to an event: numbers are channels, anything else is an
// event name.
func (s *LineSource) resolve(tok string) (vending.Event, error) {
	if ch, err := strconv.Atoi(tok); err == nil {
		return s.buttons.Event(ch)
	}
	ev, err := vending.ParseEvent(tok)
	if err != nil {
		return vending.None, err
	}
	if ev == vending.None {
		return vending.None, fmt.Errorf("%w: none is not a button", vending.ErrUnknownEvent)
	}
	return ev, nil
}
