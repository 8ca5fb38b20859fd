package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTicksKeepFiringAfterErrors(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ran := make(chan struct{}, 8)
	p := New("test", time.Minute, clock, zap.NewNop(), func(context.Context) error {
		ran <- struct{}{}
		return errors.New("external fetch failed")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	clock.BlockUntil(1)
	clock.Advance(time.Minute)
	waitFor(t, ran)

	clock.BlockUntil(1)
	clock.Advance(time.Minute)
	waitFor(t, ran)
}

func TestCancelStopsLoop(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var runs atomic.Int32
	p := New("test", time.Minute, clock, zap.NewNop(), func(context.Context) error {
		runs.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	clock.BlockUntil(1)
	cancel()

	// Give the loop a moment to observe cancellation, then advance; no
	// further ticks may run.
	time.Sleep(10 * time.Millisecond)
	clock.Advance(time.Minute)
	time.Sleep(10 * time.Millisecond)
	require.EqualValues(t, 0, runs.Load())
}

func TestOverlappingTickIsSkipped(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{}, 2)
	var runs atomic.Int32
	p := New("test", time.Minute, clockwork.NewFakeClock(), zap.NewNop(), func(context.Context) error {
		runs.Add(1)
		started <- struct{}{}
		<-block
		return nil
	})

	ctx := context.Background()
	go p.runOnce(ctx)
	waitFor(t, started)

	// Second tick while the first is still executing: guard skips it.
	p.runOnce(ctx)
	require.EqualValues(t, 1, runs.Load())

	close(block)
}

func TestPanickingTickIsContained(t *testing.T) {
	p := New("test", time.Minute, clockwork.NewFakeClock(), zap.NewNop(), func(context.Context) error {
		panic("boom")
	})

	require.NotPanics(t, func() { p.runOnce(context.Background()) })
	require.False(t, p.running.Load(), "guard must be released after a panic")
}

func waitFor(t *testing.T, ch chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tick")
	}
}
