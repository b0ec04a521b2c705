package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetGetRoundTrip(t *testing.T) {
	c := New(1024 * 1024)
	require.NoError(t, c.Set("k", "v", 60))

	v, err := c.Get("k")
	require.NoError(t, err)
	require.Equal(t, "v", v)
	require.True(t, c.Exists("k"))
}

func TestGetMissingKey(t *testing.T) {
	c := New(1024 * 1024)
	_, err := c.Get("missing")
	require.True(t, errors.Is(err, ErrNotFound))
	require.False(t, c.Exists("missing"))
}

func TestDelete(t *testing.T) {
	c := New(1024 * 1024)
	require.NoError(t, c.Set("k", "v", 60))
	c.Delete("k")
	require.False(t, c.Exists("k"))
}

func TestGetOrSetComputesOnce(t *testing.T) {
	c := New(1024 * 1024)
	calls := 0
	fn := func() (string, error) {
		calls++
		return "computed", nil
	}

	v1, err := c.GetOrSet("k", 60, fn)
	require.NoError(t, err)
	require.Equal(t, "computed", v1)

	v2, err := c.GetOrSet("k", 60, fn)
	require.NoError(t, err)
	require.Equal(t, "computed", v2)
	require.Equal(t, 1, calls)
}

func TestLockTryAcquireAndRelease(t *testing.T) {
	c := New(1024 * 1024)
	l := NewLock(c)

	require.True(t, l.TryAcquire("lockkey", 60))
	require.False(t, l.TryAcquire("lockkey", 60))

	l.Release("lockkey")
	require.True(t, l.TryAcquire("lockkey", 60))
}

func TestWaitForFindsValueWrittenConcurrently(t *testing.T) {
	c := New(1024 * 1024)
	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = c.Set("ready", "done", 60)
	}()

	v, ok := c.WaitFor("ready", time.Second, 5*time.Millisecond)
	require.True(t, ok)
	require.Equal(t, "done", v)
}

func TestWaitForTimesOut(t *testing.T) {
	c := New(1024 * 1024)
	_, ok := c.WaitFor("never", 20*time.Millisecond, 5*time.Millisecond)
	require.False(t, ok)
}
