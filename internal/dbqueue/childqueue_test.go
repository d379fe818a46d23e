package dbqueue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeCache is an in-memory ResultCache double for exercising the
// Cache-tier hit/miss path without a Redis server.
type fakeCache struct {
	mu    sync.Mutex
	store map[string]QueryResult
	gets  int
	puts  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string]QueryResult)}
}

func (c *fakeCache) Get(ctx context.Context, designator, sql string, params ParameterList) (QueryResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	r, ok := c.store[cacheKey(designator, sql, params)]
	return r, ok
}

func (c *fakeCache) Put(ctx context.Context, designator, sql string, params ParameterList, result QueryResult, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	c.store[cacheKey(designator, sql, params)] = result
}

func runChildQueue(t *testing.T, c *ChildQueue) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(ctx, "dsn", StylePostgres) }()
	return cancel, errCh
}

func TestChildQueueExecutesAndDeliversOutcome(t *testing.T) {
	driver := newFakeDriver()
	pending := NewPendingResultRegistry()
	c := NewChildQueue("jobs", Fast, 1, "jobs", driver, pending, nil)
	cancel, errCh := runChildQueue(t, c)
	defer cancel()

	queryID, err := pending.Register("jobs", time.Second)
	require.NoError(t, err)

	c.Submit(Request{SQL: "SELECT 1", Designator: "jobs", QueryID: queryID})

	outcome := pending.Await("jobs", queryID, time.Second)
	require.True(t, outcome.Success)
	require.NoError(t, outcome.Err)

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
}

func TestChildQueuePropagatesDriverFailure(t *testing.T) {
	driver := newFakeDriver()
	driver.executeErr = errors.New("connection reset")
	pending := NewPendingResultRegistry()
	c := NewChildQueue("jobs", Fast, 1, "jobs", driver, pending, nil)
	cancel, _ := runChildQueue(t, c)
	defer cancel()

	queryID, err := pending.Register("jobs", time.Second)
	require.NoError(t, err)
	c.Submit(Request{SQL: "SELECT 1", Designator: "jobs", QueryID: queryID})

	outcome := pending.Await("jobs", queryID, time.Second)
	require.False(t, outcome.Success)
	require.ErrorIs(t, outcome.Err, driver.executeErr)
}

func TestChildQueueCacheTierHitsSkipDriver(t *testing.T) {
	driver := newFakeDriver()
	pending := NewPendingResultRegistry()
	cache := newFakeCache()
	c := NewChildQueue("jobs", Cache, 1, "jobs", driver, pending, cache)
	cancel, _ := runChildQueue(t, c)
	defer cancel()

	run := func() QueryOutcome {
		queryID, err := pending.Register("jobs", time.Second)
		require.NoError(t, err)
		c.Submit(Request{SQL: "SELECT * FROM jobs WHERE id = :id", Params: ParameterList{{Name: "id", Type: "INTEGER", Value: int64(1)}}, Designator: "jobs", QueryID: queryID})
		return pending.Await("jobs", queryID, time.Second)
	}

	first := run()
	require.True(t, first.Success)
	require.Equal(t, 1, driver.executedCount(), "first lookup is a cache miss, must hit the driver")

	second := run()
	require.True(t, second.Success)
	require.Equal(t, 1, driver.executedCount(), "second lookup should be served from cache")
	require.Equal(t, first.Result, second.Result)
}

func TestChildQueueNonCacheTierIgnoresCache(t *testing.T) {
	driver := newFakeDriver()
	pending := NewPendingResultRegistry()
	cache := newFakeCache()
	c := NewChildQueue("jobs", Fast, 1, "jobs", driver, pending, cache)
	cancel, _ := runChildQueue(t, c)
	defer cancel()

	queryID, err := pending.Register("jobs", time.Second)
	require.NoError(t, err)
	c.Submit(Request{SQL: "SELECT 1", Designator: "jobs", QueryID: queryID})
	outcome := pending.Await("jobs", queryID, time.Second)
	require.True(t, outcome.Success)

	require.Equal(t, 0, cache.gets)
	require.Equal(t, 0, cache.puts)
}

func TestChildQueueShutdownDrainsInboxBeforeExit(t *testing.T) {
	driver := newFakeDriver()
	pending := NewPendingResultRegistry()
	c := NewChildQueue("jobs", Fast, 1, "jobs", driver, pending, nil)
	cancel, errCh := runChildQueue(t, c)
	defer cancel()

	queryID, err := pending.Register("jobs", time.Second)
	require.NoError(t, err)
	c.Submit(Request{SQL: "SELECT 1", Designator: "jobs", QueryID: queryID})
	c.RequestShutdown()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("child queue did not shut down after draining")
	}

	outcome := pending.Await("jobs", queryID, time.Second)
	require.True(t, outcome.Success, "queued request must still complete before shutdown takes effect")
}

func TestChildQueueMissingParameterNeverReachesDriver(t *testing.T) {
	driver := newFakeDriver()
	pending := NewPendingResultRegistry()
	c := NewChildQueue("jobs", Fast, 1, "jobs", driver, pending, nil)
	cancel, _ := runChildQueue(t, c)
	defer cancel()

	queryID, err := pending.Register("jobs", time.Second)
	require.NoError(t, err)
	c.Submit(Request{SQL: "SELECT * FROM jobs WHERE id = :id", Designator: "jobs", QueryID: queryID})

	outcome := pending.Await("jobs", queryID, time.Second)
	require.False(t, outcome.Success)
	require.ErrorIs(t, outcome.Err, ErrParameterNotFound)
	require.Equal(t, 0, driver.executedCount())
}
