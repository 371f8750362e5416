package autosave

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleDebouncesBurst(t *testing.T) {
	c := New(30 * time.Millisecond)
	defer c.CancelAll()

	var calls int32
	var mu sync.Mutex
	var saved string

	// Three rapid edits; only the last snapshot should be saved, once.
	for _, state := range []string{"first", "second", "third"} {
		state := state
		c.Schedule("unit|2024-2026|A", func() error {
			atomic.AddInt32(&calls, 1)
			mu.Lock()
			saved = state
			mu.Unlock()
			return nil
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	mu.Lock()
	assert.Equal(t, "third", saved)
	mu.Unlock()
	assert.False(t, c.Dirty("unit|2024-2026|A"))
}

func TestScheduleKeysAreIndependent(t *testing.T) {
	c := New(20 * time.Millisecond)
	defer c.CancelAll()

	var a, b int32
	c.Schedule("unit|2024-2026|A", func() error { atomic.AddInt32(&a, 1); return nil })
	c.Schedule("unit|2024-2026|B", func() error { atomic.AddInt32(&b, 1); return nil })

	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, int32(1), atomic.LoadInt32(&a))
	assert.Equal(t, int32(1), atomic.LoadInt32(&b))
}

func TestFlushRunsPendingSaveImmediately(t *testing.T) {
	c := New(time.Hour) // timer would never fire on its own
	defer c.CancelAll()

	var calls int32
	c.Schedule("k", func() error { atomic.AddInt32(&calls, 1); return nil })
	require.True(t, c.Dirty("k"))

	require.NoError(t, c.Flush("k"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.False(t, c.Dirty("k"))

	// Flushing a clean key is a no-op.
	require.NoError(t, c.Flush("k"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFlushFailureKeepsKeyDirty(t *testing.T) {
	c := New(time.Hour)
	defer c.CancelAll()

	c.Schedule("k", func() error { return errors.New("store down") })

	err := c.Flush("k")
	require.Error(t, err)
	assert.True(t, c.Dirty("k"))
}

func TestTimerFailureKeepsKeyDirtyAndReportsError(t *testing.T) {
	c := New(10 * time.Millisecond)
	defer c.CancelAll()

	errCh := make(chan error, 1)
	c.OnError = func(key string, err error) { errCh <- err }

	c.Schedule("k", func() error { return errors.New("store down") })

	select {
	case err := <-errCh:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for OnError")
	}
	assert.True(t, c.Dirty("k"))

	// A later flush with a working save clears the key.
	c.Schedule("k", func() error { return nil })
	require.NoError(t, c.Flush("k"))
	assert.False(t, c.Dirty("k"))
}

func TestCancelDropsPendingSave(t *testing.T) {
	c := New(20 * time.Millisecond)
	defer c.CancelAll()

	var calls int32
	c.Schedule("k", func() error { atomic.AddInt32(&calls, 1); return nil })
	c.Cancel("k")

	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	assert.False(t, c.Dirty("k"))
}

func TestStaleTimerDoesNotFireAfterFlush(t *testing.T) {
	c := New(15 * time.Millisecond)
	defer c.CancelAll()

	var calls int32
	c.Schedule("k", func() error { atomic.AddInt32(&calls, 1); return nil })
	require.NoError(t, c.Flush("k"))

	time.Sleep(80 * time.Millisecond)

	// Flush already ran the save; the stopped timer must not double it.
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
