package input

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cinebox/internal/vending"
)

func quietSource(r io.Reader, s Sender, opts ...SourceOption) *LineSource {
	opts = append([]SourceOption{WithSourceLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return NewLineSource(r, DefaultButtonMap(), s, opts...)
}

func TestLineSource_ChannelsAndNames(t *testing.T) {
	s := &recordingSender{}
	src := quietSource(strings.NewReader("3 up\n# browsing\n7 return # give it back\n"), s)

	require.NoError(t, src.Run(context.Background()))
	assert.Equal(t, []vending.Event{vending.Coin5, vending.BrowseUp, vending.Select, vending.Return}, s.events)
}

func TestLineSource_SkipsBadTokens(t *testing.T) {
	s := &recordingSender{}
	src := quietSource(strings.NewReader("9 coin3 none coin10"), s)

	require.NoError(t, src.Run(context.Background()))
	assert.Equal(t, []vending.Event{vending.Coin10}, s.events)
}

func TestLineSource_Quit(t *testing.T) {
	s := &recordingSender{}
	src := quietSource(strings.NewReader("1\nquit\n2\n"), s)

	require.NoError(t, src.Run(context.Background()))
	assert.Equal(t, []vending.Event{vending.Coin1}, s.events)
}

func TestLineSource_Cancelled(t *testing.T) {
	s := &recordingSender{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := quietSource(strings.NewReader("1 2"), s).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.events)
}

func TestLineSource_PaceHonorsCancel(t *testing.T) {
	s := &recordingSender{}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := quietSource(strings.NewReader("1 2 3"), s, WithPace(time.Hour)).Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []vending.Event{vending.Coin1}, s.events)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("device unplugged") }

func TestLineSource_ReadError(t *testing.T) {
	err := quietSource(failingReader{}, &recordingSender{}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device unplugged")
}
