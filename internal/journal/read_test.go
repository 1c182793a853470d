package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cinebox/internal/catalog"
	"github.com/roach88/cinebox/internal/vending"
)

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestLatestRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.LatestRun(ctx)
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = s.StartRun(ctx, "early", catalog.Default(), testStart)
	require.NoError(t, err)
	_, err = s.StartRun(ctx, "late", catalog.Default(), testStart.Add(time.Hour))
	require.NoError(t, err)

	run, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "late", run.ID)
}

func TestListRuns_OrderedByStart(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)

	_, err = s.StartRun(ctx, "b", catalog.Default(), testStart.Add(2*time.Millisecond))
	require.NoError(t, err)
	_, err = s.StartRun(ctx, "a", catalog.Default(), testStart.Add(10*time.Millisecond))
	require.NoError(t, err)
	_, err = s.StartRun(ctx, "c", catalog.Default(), testStart)
	require.NoError(t, err)

	runs, err = s.ListRuns(ctx)
	require.NoError(t, err)

	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"c", "b", "a"}, ids)
}

func TestReadTicks_EmptyRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.StartRun(ctx, "run-1", catalog.Default(), testStart)
	require.NoError(t, err)

	ticks, err := s.ReadTicks(ctx, "run-1")
	require.NoError(t, err)
	assert.NotNil(t, ticks)
	assert.Empty(t, ticks)
}

func TestReadTicks_MultipleNotificationsInOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	recordRun(t, s, "run-1", testStart, vending.Coin5, vending.BrowseDown, vending.Return)

	ticks, err := s.ReadTicks(ctx, "run-1")
	require.NoError(t, err)
	require.NotEmpty(t, ticks)

	last := ticks[len(ticks)-1]
	assert.Equal(t, vending.Return, last.Event)
	require.Len(t, last.Notifications, 2)
	assert.Equal(t, vending.KindReturnConfirmed, last.Notifications[0].Kind)
	assert.Equal(t, 5, last.Notifications[0].Amount)
	assert.Equal(t, vending.KindBrowseDisplay, last.Notifications[1].Kind)
	assert.Equal(t, 0, last.Notifications[1].Credit)
}

func TestListTickets(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	recordRun(t, s, "first", testStart,
		vending.Coin10, vending.Coin10, vending.BrowseUp, vending.Select, vending.Select)
	recordRun(t, s, "second", testStart.Add(time.Minute),
		vending.Coin10, vending.Coin2, vending.BrowseDown, vending.BrowseDown, vending.Select)

	first, err := s.ListTickets(ctx, "first")
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "first-t1", first[0].ID)
	assert.Equal(t, catalog.MovieSession{Name: "Movie A", Showtime: "19H00", Price: 9}, first[0].Session)
	assert.Equal(t, 11, first[0].RemainingCredit)
	assert.Equal(t, 2, first[1].RemainingCredit)
	assert.Less(t, first[0].Seq, first[1].Seq)

	all, err := s.ListTickets(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "second", all[2].RunID)
	assert.Equal(t, catalog.MovieSession{Name: "Movie B", Showtime: "21H00", Price: 12}, all[2].Session)
	assert.Equal(t, 0, all[2].RemainingCredit)

	none, err := s.ListTickets(ctx, "missing")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
