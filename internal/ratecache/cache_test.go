package ratecache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feedFunc func(ctx context.Context, feedIDs []string) (map[string]float64, error)

func (f feedFunc) FetchRates(ctx context.Context, feedIDs []string) (map[string]float64, error) {
	return f(ctx, feedIDs)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestRefresh_ReplacesSnapshot(t *testing.T) {
	feed := feedFunc(func(_ context.Context, _ []string) (map[string]float64, error) {
		return map[string]float64{"bitcoin": 65000}, nil
	})
	cache := New(feed, []string{"bitcoin"}, time.Minute, time.Minute, newNoopLogger())

	snap, err := cache.Refresh(context.Background())
	require.NoError(t, err)
	rate, ok := snap.Rate("bitcoin")
	assert.True(t, ok)
	assert.Equal(t, 65000.0, rate)

	rate, ok = cache.Rate("bitcoin")
	assert.True(t, ok)
	assert.Equal(t, 65000.0, rate)

	_, ok = cache.Rate("ethereum")
	assert.False(t, ok)
}

func TestRefresh_KeepsStaleSnapshotOnFailure(t *testing.T) {
	var failing atomic.Bool
	feed := feedFunc(func(_ context.Context, _ []string) (map[string]float64, error) {
		if failing.Load() {
			return nil, errors.New("feed down")
		}
		return map[string]float64{"bitcoin": 65000}, nil
	})
	cache := New(feed, []string{"bitcoin"}, time.Minute, time.Minute, newNoopLogger())

	_, err := cache.Refresh(context.Background())
	require.NoError(t, err)

	failing.Store(true)
	_, err = cache.Refresh(context.Background())
	assert.Error(t, err)

	// прежний снимок продолжает отдаваться
	rate, ok := cache.Rate("bitcoin")
	assert.True(t, ok)
	assert.Equal(t, 65000.0, rate)
}

func TestRefresh_CollapsesConcurrentCalls(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	feed := feedFunc(func(_ context.Context, _ []string) (map[string]float64, error) {
		calls.Add(1)
		<-release
		return map[string]float64{"bitcoin": 65000}, nil
	})
	cache := New(feed, []string{"bitcoin"}, time.Minute, time.Minute, newNoopLogger())

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = cache.Refresh(context.Background())
		}()
	}

	// даём горутинам встать в singleflight и отпускаем фид
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestRate_NoSnapshotYet(t *testing.T) {
	feed := feedFunc(func(_ context.Context, _ []string) (map[string]float64, error) {
		return nil, errors.New("feed down")
	})
	cache := New(feed, []string{"bitcoin"}, time.Minute, time.Minute, newNoopLogger())

	_, ok := cache.Rate("bitcoin")
	assert.False(t, ok)
	assert.Nil(t, cache.Snapshot())
}
