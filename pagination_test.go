package vlist_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-theft-auto/vlist"
)

// waitFor polls cond until it holds or the test deadline expires. Fetches
// run on their own goroutine, so state transitions are awaited, not
// assumed.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func page(n int, hasMore bool) vlist.Page[string] {
	items := make([]vlist.Item[string], n)
	for i := range items {
		items[i] = vlist.Item[string]{ID: string(rune('a' + i)), Data: "row"}
	}
	return vlist.Page[string]{Items: items, HasMore: hasMore}
}

func TestPagerLoadsToExhaustion(t *testing.T) {
	// hasMore=true, onLoadMore resolving {items:[a,b], hasMore:false}
	// must walk idle -> loading -> exhausted with itemsLoaded=2, pagesLoaded=1.
	var mu sync.Mutex
	var transitions []vlist.PagerState
	var sunk []vlist.Item[string]

	p := vlist.NewPager(context.Background(),
		func(ctx context.Context) (vlist.Page[string], error) { return page(2, false), nil },
		func(items []vlist.Item[string]) {
			mu.Lock()
			sunk = append(sunk, items...)
			mu.Unlock()
		},
	)
	p.OnStateChange(func(s vlist.PagerState) {
		mu.Lock()
		transitions = append(transitions, s)
		mu.Unlock()
	})

	require.Equal(t, vlist.StateIdle, p.State())
	require.True(t, p.RequestLoadMore())

	waitFor(t, func() bool { return p.State() == vlist.StateExhausted })

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []vlist.PagerState{vlist.StateLoading, vlist.StateExhausted}, transitions)
	assert.Equal(t, 1, p.PagesLoaded())
	assert.Equal(t, 2, p.ItemsLoaded())
	assert.Len(t, sunk, 2)
	assert.False(t, p.HasMore())
}

func TestPagerDebounceIdempotence(t *testing.T) {
	clock := newTestClock()
	var loads atomic.Int32

	p := vlist.NewPager(context.Background(),
		func(ctx context.Context) (vlist.Page[string], error) {
			loads.Add(1)
			return page(1, true), nil
		},
		nil,
		vlist.WithClock(clock.Now),
		vlist.WithPaginationDebounce(300*time.Millisecond),
	)

	require.True(t, p.RequestLoadMore())
	waitFor(t, func() bool { return p.State() == vlist.StateIdle })

	// Second trigger inside the debounce window: ignored even though the
	// pager is idle again.
	assert.False(t, p.RequestLoadMore())
	assert.Equal(t, int32(1), loads.Load())

	// After the window it is accepted again.
	clock.Advance(300 * time.Millisecond)
	require.True(t, p.RequestLoadMore())
	waitFor(t, func() bool { return loads.Load() == 2 })
}

func TestPagerExhaustedIsTerminal(t *testing.T) {
	clock := newTestClock()
	var loads atomic.Int32

	p := vlist.NewPager(context.Background(),
		func(ctx context.Context) (vlist.Page[string], error) {
			loads.Add(1)
			return page(1, false), nil
		},
		nil,
		vlist.WithClock(clock.Now),
	)

	require.True(t, p.RequestLoadMore())
	waitFor(t, func() bool { return p.State() == vlist.StateExhausted })

	clock.Advance(time.Hour)
	assert.False(t, p.RequestLoadMore(), "no transition out of exhausted")
	assert.False(t, p.LoadMore())
	assert.Equal(t, int32(1), loads.Load())

	// Only an explicit Reset returns to idle with counters zeroed.
	p.Reset()
	assert.Equal(t, vlist.StateIdle, p.State())
	assert.Equal(t, 0, p.PagesLoaded())
	assert.Equal(t, 0, p.ItemsLoaded())
	assert.True(t, p.HasMore())
}

func TestPagerErrorAndRetry(t *testing.T) {
	clock := newTestClock()
	cause := errors.New("backend unavailable")
	var fail atomic.Bool
	fail.Store(true)

	p := vlist.NewPager(context.Background(),
		func(ctx context.Context) (vlist.Page[string], error) {
			if fail.Load() {
				return vlist.Page[string]{}, cause
			}
			return page(3, true), nil
		},
		nil,
		vlist.WithClock(clock.Now),
	)

	require.True(t, p.RequestLoadMore())
	waitFor(t, func() bool { return p.State() == vlist.StateError })
	assert.ErrorIs(t, p.Err(), cause)

	// Errors do not accept further visibility triggers.
	clock.Advance(time.Hour)
	assert.False(t, p.RequestLoadMore())

	// Retry clears the error and re-invokes as a fresh trigger.
	fail.Store(false)
	require.True(t, p.Retry())
	waitFor(t, func() bool { return p.State() == vlist.StateIdle })
	assert.NoError(t, p.Err())
	assert.Equal(t, 1, p.PagesLoaded())
	assert.Equal(t, 3, p.ItemsLoaded())
}

func TestPagerDiscardsStaleGeneration(t *testing.T) {
	release := make(chan struct{})
	var sunk atomic.Int32

	p := vlist.NewPager(context.Background(),
		func(ctx context.Context) (vlist.Page[string], error) {
			<-release
			return page(5, true), nil
		},
		func(items []vlist.Item[string]) { sunk.Add(int32(len(items))) },
	)

	require.True(t, p.RequestLoadMore())
	assert.Equal(t, vlist.StateLoading, p.State())

	// Identity change mid-flight: the in-flight response belongs to a
	// superseded generation and must be dropped.
	p.Reset()
	close(release)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), sunk.Load())
	assert.Equal(t, 0, p.PagesLoaded())
	assert.Equal(t, vlist.StateIdle, p.State())
}

func TestPagerRespectsInitialHasMore(t *testing.T) {
	p := vlist.NewPager(context.Background(),
		func(ctx context.Context) (vlist.Page[string], error) {
			t.Error("load must not be invoked when hasMore is false")
			return vlist.Page[string]{}, nil
		},
		nil,
		vlist.WithHasMore(false),
	)
	assert.False(t, p.RequestLoadMore())
}
