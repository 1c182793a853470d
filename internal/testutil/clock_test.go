package testutil

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cinebox/internal/catalog"
	"github.com/roach88/cinebox/internal/vending"
)

func quietEngine(clock *DeterministicClock) *vending.Engine {
	return vending.New(catalog.Default(),
		vending.WithSequencer(clock),
		vending.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestDeterministicClock_Sequence(t *testing.T) {
	clock := NewDeterministicClock()
	assert.Zero(t, clock.Current())

	for want := int64(1); want <= 4; want++ {
		assert.Equal(t, want, clock.Next())
		assert.Equal(t, want, clock.Current())
	}

	clock.Reset()
	assert.Zero(t, clock.Current())
	assert.Equal(t, int64(1), clock.Next())
}

func TestDeterministicClock_ConcurrentNextIsGapFree(t *testing.T) {
	clock := NewDeterministicClock()
	const workers, perWorker = 50, 200

	var (
		mu   sync.Mutex
		seen = make(map[int64]int, workers*perWorker)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]int64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				local = append(local, clock.Next())
			}
			mu.Lock()
			for _, v := range local {
				seen[v]++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*perWorker)
	for v := int64(1); v <= workers*perWorker; v++ {
		assert.Equal(t, 1, seen[v], "sequence %d", v)
	}
}

func TestDeterministicClock_DrivesEngine(t *testing.T) {
	clock := NewDeterministicClock()
	e := quietEngine(clock)

	e.SendEvent(vending.Coin1)
	first, err := e.Tick(context.Background())
	require.NoError(t, err)
	second, err := e.Tick(context.Background())
	require.NoError(t, err)
	idle, err := e.Tick(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, int64(2), second.Seq)
	assert.True(t, idle.Idle())
	assert.Equal(t, int64(2), clock.Current(), "idle ticks are not sequenced")
}

func TestDeterministicClock_ResetReplaysSameSequence(t *testing.T) {
	clock := NewDeterministicClock()
	presses := []vending.Event{vending.Coin5, vending.BrowseDown, vending.Return}

	drive := func() []int64 {
		e := quietEngine(clock)
		var seqs []int64
		for _, ev := range presses {
			e.SendEvent(ev)
			for e.Pending() != vending.None {
				res, err := e.Tick(context.Background())
				require.NoError(t, err)
				seqs = append(seqs, res.Seq)
			}
		}
		return seqs
	}

	first := drive()
	clock.Reset()
	second := drive()

	assert.Equal(t, []int64{1, 2, 3, 4, 5}, first)
	assert.Equal(t, first, second)
}
