package lazy

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_ConcurrentFirstUseBuildsOnce(t *testing.T) {
	var builds atomic.Int32

	v := New(func() (*int, error) {
		builds.Add(1)
		n := 42
		return &n, nil
	})

	var wg sync.WaitGroup
	results := make([]*int, 32)

	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := v.Get()
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}

	wg.Wait()

	assert.Equal(t, int32(1), builds.Load())
	for _, got := range results {
		assert.Same(t, results[0], got)
	}
}

func TestValue_FailedBuildIsRetried(t *testing.T) {
	calls := 0
	v := New(func() (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("unreachable")
		}
		return "client", nil
	})

	_, err := v.Get()
	require.Error(t, err)

	got, err := v.Get()
	require.NoError(t, err)
	assert.Equal(t, "client", got)
	assert.Equal(t, 2, calls)
}

func TestValue_Close(t *testing.T) {
	v := New(func() (string, error) { return "client", nil })

	_, err := v.Get()
	require.NoError(t, err)

	torn := ""
	require.NoError(t, v.Close(func(s string) error {
		torn = s
		return nil
	}))
	assert.Equal(t, "client", torn)

	_, err = v.Get()
	assert.ErrorIs(t, err, ErrClosed)

	// second close is a no-op
	assert.NoError(t, v.Close(func(string) error { return errors.New("should not run") }))
}

func TestValue_CloseNeverBuilt(t *testing.T) {
	v := New(func() (string, error) { return "client", nil })

	ran := false
	require.NoError(t, v.Close(func(string) error {
		ran = true
		return nil
	}))
	assert.False(t, ran)
}

func TestValue_BuiltGetSharesReadLock(t *testing.T) {
	v := New(func() (string, error) { return "client", nil })

	_, err := v.Get()
	require.NoError(t, err)

	// a concurrent reader holds the lock for the whole test
	v.mtx.RLock()
	defer v.mtx.RUnlock()

	done := make(chan string, 1)
	go func() {
		got, _ := v.Get()
		done <- got
	}()

	select {
	case got := <-done:
		assert.Equal(t, "client", got)
	case <-time.After(time.Second):
		t.Fatal("Get blocked behind a reader after the value was built")
	}
}
