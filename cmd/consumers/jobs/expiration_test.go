package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	batches []int
	err     error
	calls   atomic.Int32
	limits  []int
}

func (f *fakeExpirer) ExpireOverdue(_ context.Context, limit int) (int, error) {
	i := int(f.calls.Add(1)) - 1
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return 0, f.err
	}
	if i < len(f.batches) {
		return f.batches[i], nil
	}
	return 0, nil
}

type fakePool struct{ calls atomic.Int32 }

func (p *fakePool) LogPoolPressure() { p.calls.Add(1) }

func TestSweepDrainsFullBatches(t *testing.T) {
	expirer := &fakeExpirer{batches: []int{10, 10, 3}}
	pool := &fakePool{}
	job := NewExpirationJob(expirer, pool, time.Minute, 10)

	total := job.Sweep(context.Background())

	assert.Equal(t, 23, total)
	assert.Equal(t, int32(3), expirer.calls.Load())
	assert.Equal(t, []int{10, 10, 10}, expirer.limits)
	assert.Equal(t, int32(1), pool.calls.Load())
}

func TestSweepStopsOnError(t *testing.T) {
	expirer := &fakeExpirer{err: errors.New("connection refused")}
	job := NewExpirationJob(expirer, nil, time.Minute, 10)

	assert.Equal(t, 0, job.Sweep(context.Background()))
	assert.Equal(t, int32(1), expirer.calls.Load())
}

func TestSweepRespectsCancelledContext(t *testing.T) {
	expirer := &fakeExpirer{batches: []int{10}}
	job := NewExpirationJob(expirer, nil, time.Minute, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, 0, job.Sweep(ctx))
	assert.Equal(t, int32(0), expirer.calls.Load())
}

func TestNewExpirationJobDefaults(t *testing.T) {
	job := NewExpirationJob(&fakeExpirer{}, nil, 0, 0)
	assert.Equal(t, time.Minute, job.interval)
	assert.Equal(t, 100, job.batchSize)
}

func TestStartRunsInitialSweep(t *testing.T) {
	expirer := &fakeExpirer{}
	job := NewExpirationJob(expirer, nil, time.Hour, 5)

	job.Start(context.Background())
	require.Eventually(t, func() bool { return expirer.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	job.Stop()
}
