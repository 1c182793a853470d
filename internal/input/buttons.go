package input

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/cinebox/internal/vending"
)

// ErrUnknownChannel is returned for a channel with no wired event.
var ErrUnknownChannel = errors.New("unknown input channel")

// Sender accepts events. Implemented by *vending.Engine.
type Sender interface {
	SendEvent(ev vending.Event)
}

// ButtonMap maps input channels to events.
type ButtonMap struct {
	events map[int]vending.Event
}

// DefaultButtonMap is the reference wiring: channels 1-4 are coins of 1, 2, 5
// and 10, 5-6 browse up and down, 7 select, 8 return.
func DefaultButtonMap() *ButtonMap {
	m, err := NewButtonMap(map[int]vending.Event{
		1: vending.Coin1,
		2: vending.Coin2,
		3: vending.Coin5,
		4: vending.Coin10,
		5: vending.BrowseUp,
		6: vending.BrowseDown,
		7: vending.Select,
		8: vending.Return,
	})
	if err != nil {
		panic(err)
	}
	return m
}

// NewButtonMap validates and copies a channel table.
//
// The table must map every event except None exactly once and must not map
// any channel to None or to an undeclared event.
func NewButtonMap(table map[int]vending.Event) (*ButtonMap, error) {
	seen := make(map[vending.Event]int, len(table))
	channels := make([]int, 0, len(table))
	for ch := range table {
		channels = append(channels, ch)
	}
	slices.Sort(channels)

	for _, ch := range channels {
		ev := table[ch]
		if !ev.Valid() || ev == vending.None {
			return nil, fmt.Errorf("channel %d: invalid event %s", ch, ev)
		}
		if prev, dup := seen[ev]; dup {
			return nil, fmt.Errorf("event %s wired to both channel %d and channel %d", ev, prev, ch)
		}
		seen[ev] = ch
	}

	for _, ev := range vending.Events() {
		if _, ok := seen[ev]; !ok {
			return nil, fmt.Errorf("event %s is not wired to any channel", ev)
		}
	}

	cp := make(map[int]vending.Event, len(table))
	for ch, ev := range table {
		cp[ch] = ev
	}
	return &ButtonMap{events: cp}, nil
}

// Event returns the event wired to channel.
func (m *ButtonMap) Event(channel int) (vending.Event, error) {
	ev, ok := m.events[channel]
	if !ok {
		return vending.None, fmt.Errorf("%w: %d", ErrUnknownChannel, channel)
	}
	return ev, nil
}

// Channel returns the channel wired to ev.
func (m *ButtonMap) Channel(ev vending.Event) (int, bool) {
	for ch, e := range m.events {
		if e == ev {
			return ch, true
		}
	}
	return 0, false
}

// Channels returns all wired channels in ascending order.
func (m *ButtonMap) Channels() []int {
	out := make([]int, 0, len(m.events))
	for ch := range m.events {
		out = append(out, ch)
	}
	slices.Sort(out)
	return out
}

// Press delivers the event wired to channel to s.
func (m *ButtonMap) Press(s Sender, channel int) error {
	ev, err := m.Event(channel)
	if err != nil {
		return err
	}
	s.SendEvent(ev)
	return nil
}
