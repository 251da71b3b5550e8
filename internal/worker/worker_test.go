package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/revplan/internal/testutil/mocks"
)

type countJob struct {
	n   *atomic.Int32
	err error
}

func (j countJob) Name() string { return "count" }

func (j countJob) Run(context.Context) error {
	j.n.Add(1)
	return j.err
}

type blockJob struct {
	release chan struct{}
}

func (j blockJob) Name() string { return "block" }

func (j blockJob) Run(ctx context.Context) error {
	select {
	case <-j.release:
	case <-ctx.Done():
	}
	return nil
}

func TestPool_RunsJobs(t *testing.T) {
	pool := NewPool(2, 8)
	pool.Start(context.Background())

	var n atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, pool.Submit(countJob{n: &n}))
	}
	require.NoError(t, pool.Submit(countJob{n: &n, err: errors.New("failed")}))

	assert.Eventually(t, func() bool { return n.Load() == 6 }, time.Second, 5*time.Millisecond)
	pool.Stop()
}

func TestPool_SubmitQueueFull(t *testing.T) {
	pool := NewPool(1, 1)
	pool.Start(context.Background())
	defer pool.Stop()

	release := make(chan struct{})
	defer close(release)

	require.NoError(t, pool.Submit(blockJob{release: release}))
	// Wait until the worker has taken the blocking job off the queue.
	require.Eventually(t, func() bool { return pool.QueueSize() == 0 }, time.Second, 5*time.Millisecond)

	require.NoError(t, pool.Submit(blockJob{release: release}))
	assert.ErrorIs(t, pool.Submit(blockJob{release: release}), ErrQueueFull)
}

func TestPool_SubmitAfterStop(t *testing.T) {
	pool := NewPool(1, 1)
	pool.Start(context.Background())
	pool.Stop()
	pool.Stop()

	var n atomic.Int32
	assert.ErrorIs(t, pool.Submit(countJob{n: &n}), ErrStopped)
}

func TestRolloverJob(t *testing.T) {
	svc := new(mocks.MockPlannerService)
	svc.On("Rollover", mock.Anything).Return(true, nil).Once()
	svc.On("Rollover", mock.Anything).Return(false, errors.New("store down")).Once()

	job := &RolloverJob{Planner: svc}
	assert.Equal(t, "rollover", job.Name())
	assert.NoError(t, job.Run(context.Background()))
	assert.EqualError(t, job.Run(context.Background()), "store down")
	svc.AssertExpectations(t)
}

func TestEvery_SubmitsUntilCancelled(t *testing.T) {
	pool := NewPool(1, 4)
	pool.Start(context.Background())
	defer pool.Stop()

	var n atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Every(ctx, pool, 10*time.Millisecond, func() Job { return countJob{n: &n} })
	}()

	assert.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		assert.Fail(t, "scheduler did not stop")
	}
}

func TestEvery_RejectsZeroInterval(t *testing.T) {
	pool := NewPool(1, 1)
	assert.Error(t, Every(context.Background(), pool, 0, nil))
}
