package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/summarist/pkg/async"
)

func TestAsync(t *testing.T) {
	t.Parallel()

	t.Run("returns the function result", func(t *testing.T) {
		t.Parallel()
		f := async.Async(context.Background(), 21, func(_ context.Context, n int) (int, error) {
			return n * 2, nil
		})
		v, err := f.Await()
		require.NoError(t, err)
		assert.Equal(t, 42, v)
		assert.True(t, f.IsComplete())
	})

	t.Run("propagates errors", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		f := async.Go(context.Background(), func(context.Context) (string, error) {
			return "", boom
		})
		_, err := f.Await()
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cancelled context skips the call", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var called atomic.Bool
		f := async.Go(ctx, func(context.Context) (int, error) {
			called.Store(true)
			return 1, nil
		})
		_, err := f.Await()
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called.Load())
	})
}

func TestFuture_AwaitContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	f := async.Go(context.Background(), func(context.Context) (int, error) {
		<-release
		return 7, nil
	})
	assert.False(t, f.IsComplete())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.AwaitContext(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	v, err := f.AwaitContext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestWaitAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	square := func(_ context.Context, n int) (int, error) { return n * n, nil }

	results, err := async.WaitAll(
		async.Async(ctx, 1, square),
		async.Async(ctx, 2, square),
		async.Async(ctx, 3, square),
	)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 9}, results)

	boom := errors.New("boom")
	_, err = async.WaitAll(
		async.Async(ctx, 1, square),
		async.Go(ctx, func(context.Context) (int, error) { return 0, boom }),
	)
	assert.ErrorIs(t, err, boom)
}

func TestSettle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	boom := errors.New("boom")

	results := async.Settle(
		async.Go(ctx, func(context.Context) (string, error) { return "a", nil }),
		async.Go(ctx, func(context.Context) (string, error) { return "", boom }),
		async.Go(ctx, func(context.Context) (string, error) { return "c", nil }),
	)

	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Value)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.Equal(t, "c", results[2].Value)
	assert.NoError(t, results[2].Err)
}
