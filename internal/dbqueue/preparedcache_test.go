package dbqueue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	closed bool
}

func (h *fakeHandle) Close() error {
	h.closed = true
	return nil
}

func TestPreparedStatementCacheDefaultCapacity(t *testing.T) {
	c := NewPreparedStatementCache(0)
	require.Equal(t, 100, c.capacity)
}

func TestPreparedStatementCachePutGet(t *testing.T) {
	c := NewPreparedStatementCache(2)
	h := &fakeHandle{}
	c.Put("select-job", h)

	got, ok := c.Get("select-job")
	require.True(t, ok)
	require.Same(t, h, got)
}

func TestPreparedStatementCacheEvictsLeastRecentlyInserted(t *testing.T) {
	c := NewPreparedStatementCache(2)
	h1, h2, h3 := &fakeHandle{}, &fakeHandle{}, &fakeHandle{}

	c.Put("a", h1)
	c.Put("b", h2)
	c.Put("c", h3)

	require.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	require.False(t, ok, "oldest entry should have been evicted")
	require.True(t, h1.closed)

	_, ok = c.Get("b")
	require.True(t, ok)
	_, ok = c.Get("c")
	require.True(t, ok)
}

func TestPreparedStatementCacheRefreshDoesNotEvict(t *testing.T) {
	c := NewPreparedStatementCache(2)
	h1, h2 := &fakeHandle{}, &fakeHandle{}

	c.Put("a", h1)
	c.Put("b", h2)
	c.Put("a", h1) // refresh, not a new insertion

	require.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	require.True(t, ok)
	_, ok = c.Get("b")
	require.True(t, ok)
}

func TestPreparedStatementCacheRemove(t *testing.T) {
	c := NewPreparedStatementCache(2)
	h := &fakeHandle{}
	c.Put("a", h)
	c.Remove("a")

	require.True(t, h.closed)
	require.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	require.False(t, ok)
}
