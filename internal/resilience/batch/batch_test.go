package batch

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_OrderPreservation(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	want := make([]int, len(items))
	for i, v := range items {
		want[i] = v * v
	}

	for _, concurrency := range []int{1, len(items), len(items) + 5} {
		// Act
		got, err := Process(context.Background(), items, func(_ context.Context, v int) (int, error) {
			// random latency so completion order differs from input order
			time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
			return v * v, nil
		}, concurrency)

		// Assert
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("concurrency=%d: result mismatch (-want +got):\n%s", concurrency, diff)
		}
	}
}

func TestProcess_EmptyInput(t *testing.T) {
	called := false
	got, err := Process(context.Background(), []string{}, func(context.Context, string) (int, error) {
		called = true
		return 0, nil
	}, 4)

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.False(t, called)
}

func TestProcess_ClampsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	items := make([]int, 6)

	_, err := Process(context.Background(), items, func(context.Context, int) (int, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		return 0, nil
	}, 0)

	require.NoError(t, err)
	assert.Equal(t, int32(1), peak.Load())
}

func TestProcess_BoundsWorkers(t *testing.T) {
	var inFlight, peak atomic.Int32
	items := make([]int, 20)

	_, err := Process(context.Background(), items, func(context.Context, int) (int, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return 0, nil
	}, 3)

	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestProcess_FirstErrorAborts(t *testing.T) {
	testErr := errors.New("item 2 failed")
	var calls atomic.Int32
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	got, err := Process(context.Background(), items, func(ctx context.Context, v int) (int, error) {
		calls.Add(1)
		if v == 2 {
			return 0, testErr
		}
		return v, nil
	}, 1)

	require.ErrorIs(t, err, testErr)
	assert.Nil(t, got)
	// sequential worker stops claiming after the failure
	assert.Equal(t, int32(3), calls.Load())
}

func TestProcess_ErrorCancelsSiblings(t *testing.T) {
	testErr := errors.New("fail fast")
	sawCancel := make(chan struct{}, 1)

	_, err := Process(context.Background(), []int{0, 1}, func(ctx context.Context, v int) (int, error) {
		if v == 0 {
			return 0, testErr
		}
		select {
		case <-ctx.Done():
			sawCancel <- struct{}{}
			return 0, ctx.Err()
		case <-time.After(time.Second):
			return v, nil
		}
	}, 2)

	require.ErrorIs(t, err, testErr)
	select {
	case <-sawCancel:
	default:
		t.Error("expected sibling worker to observe cancellation")
	}
}
