package guard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryAcquire_SecondCallIsBusy(t *testing.T) {
	g := New()

	release, err := g.TryAcquire("request-code")
	require.NoError(t, err)
	assert.True(t, g.Busy("request-code"))

	_, err = g.TryAcquire("request-code")
	require.ErrorIs(t, err, ErrBusy)

	// other actions are independent
	rel2, err := g.TryAcquire("verify-code")
	require.NoError(t, err)
	rel2()

	release()
	assert.False(t, g.Busy("request-code"))

	release, err = g.TryAcquire("request-code")
	require.NoError(t, err)
	release()
}

func TestRelease_Idempotent(t *testing.T) {
	var g Guard

	first, err := g.TryAcquire("a")
	require.NoError(t, err)
	first()

	second, err := g.TryAcquire("a")
	require.NoError(t, err)

	// a stale release must not free the new holder
	first()
	assert.True(t, g.Busy("a"))

	second()
	second()
	assert.False(t, g.Busy("a"))
}

func TestDo_ReleasesOnErrorAndPanic(t *testing.T) {
	g := New()
	boom := errors.New("boom")

	err := g.Do(context.Background(), "x", func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.False(t, g.Busy("x"))

	assert.Panics(t, func() {
		_ = g.Do(context.Background(), "x", func(context.Context) error { panic("bad") })
	})
	assert.False(t, g.Busy("x"))
}

func TestDo_ConcurrentCallersRunOnce(t *testing.T) {
	g := New()
	started := make(chan struct{})
	unblock := make(chan struct{})
	var runs atomic.Int32

	go func() {
		_ = g.Do(context.Background(), "submit", func(context.Context) error {
			runs.Add(1)
			close(started)
			<-unblock
			return nil
		})
	}()
	<-started

	var wg sync.WaitGroup
	var busy atomic.Int32
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := g.Do(context.Background(), "submit", func(context.Context) error {
				runs.Add(1)
				return nil
			})
			if errors.Is(err, ErrBusy) {
				busy.Add(1)
			}
		}()
	}
	wg.Wait()
	close(unblock)

	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, int32(10), busy.Load())
}
