package cache

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestGetOrComputeExpires(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := New(WithClock(clock.Now))

	calls := 0
	compute := func() ([]byte, error) {
		calls++
		return []byte{byte('0' + calls)}, nil
	}

	body, hit, err := c.GetOrCompute("index_page::1", 15*time.Second, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "1", string(body))

	clock.Advance(14 * time.Second)
	body, hit, err = c.GetOrCompute("index_page::1", 15*time.Second, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "1", string(body))

	clock.Advance(time.Second)
	body, hit, err = c.GetOrCompute("index_page::1", 15*time.Second, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "2", string(body))
	assert.Equal(t, 2, calls)
}

func TestGetOrComputeErrorNotCached(t *testing.T) {
	c := New()
	boom := errors.New("boom")

	_, _, err := c.GetOrCompute("k", time.Minute, func() ([]byte, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	body, _, err := c.GetOrCompute("k", time.Minute, func() ([]byte, error) { return []byte("ok"), nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestGetOrComputeSharesConcurrentMisses(t *testing.T) {
	c := New()
	var calls int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body, _, err := c.GetOrCompute("k", time.Minute, func() ([]byte, error) {
				atomic.AddInt32(&calls, 1)
				<-release
				return []byte("page"), nil
			})
			assert.NoError(t, err)
			assert.Equal(t, "page", string(body))
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(8))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))

	_, hit, err := c.GetOrCompute("k", time.Minute, func() ([]byte, error) {
		t.Fatal("compute should not run on a warm key")
		return nil, nil
	})
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestInvalidateAndClear(t *testing.T) {
	c := New()
	c.Set("a", []byte("1"), time.Minute)
	c.Set("b", []byte("2"), time.Minute)
	c.Set("zero", []byte("3"), 0)
	assert.Equal(t, 2, c.Len())

	c.Invalidate("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestSetSweepsExpiredWhenFull(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := New(WithClock(clock.Now), WithMaxEntries(3))

	for _, key := range []string{"a", "b", "c"} {
		c.Set(key, []byte(key), 15*time.Second)
	}
	assert.Equal(t, 3, c.Len())

	clock.Advance(time.Hour)
	c.Set("d", []byte("d"), 15*time.Second)
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("d")
	assert.True(t, ok)
}

func TestSetCullsLiveEntriesWhenFull(t *testing.T) {
	c := New(WithMaxEntries(3))
	for _, key := range []string{"a", "b", "c", "d", "e", "f"} {
		c.Set(key, []byte(key), time.Minute)
		assert.LessOrEqual(t, c.Len(), 3)
	}
	_, ok := c.Get("f")
	assert.True(t, ok)

	c.Set("f", []byte("again"), time.Minute)
	body, ok := c.Get("f")
	require.True(t, ok)
	assert.Equal(t, "again", string(body))
}

func TestManyDistinctKeysStayBounded(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := New(WithClock(clock.Now))

	for i := 0; i < 2*DefaultMaxEntries; i++ {
		_, _, err := c.GetOrCompute(fmt.Sprintf("k%d", i), 15*time.Second, func() ([]byte, error) {
			return []byte("page"), nil
		})
		require.NoError(t, err)
	}
	assert.LessOrEqual(t, c.Len(), DefaultMaxEntries)

	clock.Advance(time.Hour)
	c.Set("late", []byte("page"), 15*time.Second)
	assert.Equal(t, 1, c.Len())
}

func TestClearDiscardsRunningComputation(t *testing.T) {
	c := New()
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan []byte)

	go func() {
		body, _, err := c.GetOrCompute("k", time.Minute, func() ([]byte, error) {
			close(started)
			<-release
			return []byte("stale"), nil
		})
		assert.NoError(t, err)
		done <- body
	}()

	<-started
	c.Clear()

	body, hit, err := c.GetOrCompute("k", time.Minute, func() ([]byte, error) {
		return []byte("fresh"), nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "fresh", string(body))

	close(release)
	assert.Equal(t, "stale", string(<-done))

	body, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "fresh", string(body))
	assert.Equal(t, 1, c.Len())
}
