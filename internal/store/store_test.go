package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memorySource is an in-memory SourceOfTruth for a single int-keyed string
// collection.
type memorySource struct {
	mu     sync.Mutex
	values map[int]string

	notifyMu sync.Mutex
	subs     []chan struct{}
}

func newMemorySource() *memorySource {
	return &memorySource{values: make(map[int]string)}
}

func (m *memorySource) set(key int, value string) {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
}

func (m *memorySource) get(key int) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *memorySource) notify() {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (m *memorySource) source() SourceOfTruth[int, string, string] {
	return SourceOfTruth[int, string, string]{
		Read: func(ctx context.Context, key int) (string, bool, error) {
			v, ok := m.get(key)
			return v, ok, nil
		},
		Write: func(ctx context.Context, key int, value string) error {
			m.set(key, value)
			m.notify()
			return nil
		},
		Delete: func(ctx context.Context, key int) error {
			m.mu.Lock()
			delete(m.values, key)
			m.mu.Unlock()
			return nil
		},
		DeleteAll: func(ctx context.Context) error {
			m.mu.Lock()
			m.values = make(map[int]string)
			m.mu.Unlock()
			return nil
		},
		Subscribe: func() (<-chan struct{}, func()) {
			ch := make(chan struct{}, 1)
			m.notifyMu.Lock()
			m.subs = append(m.subs, ch)
			m.notifyMu.Unlock()
			return ch, func() {}
		},
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestGetFetchesWhenLocalEmpty(t *testing.T) {
	src := newMemorySource()
	var fetchCount int32
	fetcher := func(ctx context.Context, key int) (string, error) {
		atomic.AddInt32(&fetchCount, 1)
		return "remote", nil
	}
	fresh := func(ctx context.Context, key int) (bool, error) { return true, nil }

	s := New("test", fetcher, src.source(), fresh, testLogger())

	value, err := s.Get(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Equal(t, "remote", value)
	assert.EqualValues(t, 1, atomic.LoadInt32(&fetchCount))
}

func TestGetReturnsLocalWhenFresh(t *testing.T) {
	src := newMemorySource()
	src.set(1, "local")
	var fetchCount int32
	fetcher := func(ctx context.Context, key int) (string, error) {
		atomic.AddInt32(&fetchCount, 1)
		return "remote", nil
	}
	fresh := func(ctx context.Context, key int) (bool, error) { return true, nil }

	s := New("test", fetcher, src.source(), fresh, testLogger())

	value, err := s.Get(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Equal(t, "local", value)
	assert.EqualValues(t, 0, atomic.LoadInt32(&fetchCount))
}

func TestGetRefreshesWhenStale(t *testing.T) {
	src := newMemorySource()
	src.set(1, "stale")
	fetcher := func(ctx context.Context, key int) (string, error) {
		return "fresh", nil
	}
	fresh := func(ctx context.Context, key int) (bool, error) { return false, nil }

	s := New("test", fetcher, src.source(), fresh, testLogger())

	value, err := s.Get(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Equal(t, "fresh", value)
}

func TestGetForceRefreshBypassesFreshness(t *testing.T) {
	src := newMemorySource()
	src.set(1, "local")
	fetcher := func(ctx context.Context, key int) (string, error) {
		return "remote", nil
	}
	fresh := func(ctx context.Context, key int) (bool, error) { return true, nil }

	s := New("test", fetcher, src.source(), fresh, testLogger())

	value, err := s.Get(context.Background(), 1, true)
	require.NoError(t, err)
	assert.Equal(t, "remote", value)
}

func TestGetKeepsStoredValueOnFailedRefresh(t *testing.T) {
	src := newMemorySource()
	src.set(1, "stale")
	fetcher := func(ctx context.Context, key int) (string, error) {
		return "", errors.New("network down")
	}
	fresh := func(ctx context.Context, key int) (bool, error) { return false, nil }

	s := New("test", fetcher, src.source(), fresh, testLogger())

	_, err := s.Get(context.Background(), 1, false)
	require.Error(t, err)

	stored, ok := src.get(1)
	assert.True(t, ok)
	assert.Equal(t, "stale", stored)
}

func TestRefreshDeduplicatesConcurrentFetches(t *testing.T) {
	src := newMemorySource()
	release := make(chan struct{})
	var fetchCount int32
	fetcher := func(ctx context.Context, key int) (string, error) {
		atomic.AddInt32(&fetchCount, 1)
		<-release
		return "remote", nil
	}
	fresh := func(ctx context.Context, key int) (bool, error) { return false, nil }

	s := New("test", fetcher, src.source(), fresh, testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Refresh(context.Background(), 1))
		}()
	}

	// Let the goroutines pile up on the in-flight fetch.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&fetchCount))
}

func TestRefreshIndependentKeysDoNotShareFetches(t *testing.T) {
	src := newMemorySource()
	var fetchCount int32
	fetcher := func(ctx context.Context, key int) (string, error) {
		atomic.AddInt32(&fetchCount, 1)
		return "remote", nil
	}
	fresh := func(ctx context.Context, key int) (bool, error) { return false, nil }

	s := New("test", fetcher, src.source(), fresh, testLogger())

	require.NoError(t, s.Refresh(context.Background(), 1))
	require.NoError(t, s.Refresh(context.Background(), 2))

	assert.EqualValues(t, 2, atomic.LoadInt32(&fetchCount))
}

func TestStreamEmitsCurrentAndChanges(t *testing.T) {
	src := newMemorySource()
	src.set(1, "first")
	fetcher := func(ctx context.Context, key int) (string, error) {
		return "first", nil
	}
	fresh := func(ctx context.Context, key int) (bool, error) { return true, nil }

	s := New("test", fetcher, src.source(), fresh, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out := s.Stream(ctx, 1)

	select {
	case value := <-out:
		assert.Equal(t, "first", value)
	case <-ctx.Done():
		t.Fatal("no initial emission")
	}

	src.set(1, "second")
	src.notify()

	select {
	case value := <-out:
		assert.Equal(t, "second", value)
	case <-ctx.Done():
		t.Fatal("no emission after change")
	}
}

func TestStreamServesStaleValueWhenRefreshFails(t *testing.T) {
	src := newMemorySource()
	src.set(1, "stale")
	fetcher := func(ctx context.Context, key int) (string, error) {
		return "", errors.New("network down")
	}
	fresh := func(ctx context.Context, key int) (bool, error) { return false, nil }

	s := New("test", fetcher, src.source(), fresh, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out := s.Stream(ctx, 1)

	select {
	case value := <-out:
		assert.Equal(t, "stale", value)
	case <-ctx.Done():
		t.Fatal("no emission of stale value")
	}
}
