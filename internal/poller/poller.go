// Package poller runs a reconciliation function on a fixed interval. Ticks
// are serialized per poller: a tick that fires while the previous one is
// still executing is skipped rather than queued.
package poller

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

type Poller struct {
	name     string
	interval time.Duration
	clock    clockwork.Clock
	logger   *zap.Logger
	tick     func(context.Context) error
	running  atomic.Bool
}

func New(name string, interval time.Duration, clock clockwork.Clock, logger *zap.Logger, tick func(context.Context) error) *Poller {
	return &Poller{
		name:     name,
		interval: interval,
		clock:    clock,
		logger:   logger,
		tick:     tick,
	}
}

// Start launches the tick loop. It returns immediately; the loop stops when
// ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	go p.loop(ctx)
}

func (p *Poller) loop(ctx context.Context) {
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			p.runOnce(ctx)
		}
	}
}

// runOnce executes a single tick under the non-reentrant guard. A failed or
// panicking tick never takes the poller off its schedule.
func (p *Poller) runOnce(ctx context.Context) {
	if !p.running.CompareAndSwap(false, true) {
		p.logger.Debug("previous tick still running, skipping", zap.String("poller", p.name))
		return
	}
	defer p.running.Store(false)
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("tick panicked", zap.String("poller", p.name), zap.Any("panic", r))
		}
	}()

	if err := p.tick(ctx); err != nil {
		p.logger.Warn("tick failed", zap.String("poller", p.name), zap.Error(err))
	}
}
