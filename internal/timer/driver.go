// Package timer implements the tick driver: a cancellable repeating cycle
// that advances a countdown once per interval and hands off to an expiry
// callback when the countdown is exhausted.
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/deepwork/internal/logger"
)

// Option configures the driver.
type Option func(*Driver)

// WithInterval sets the period between ticks.
func WithInterval(d time.Duration) Option {
	return func(dr *Driver) {
		if d > 0 {
			dr.interval = d
		}
	}
}

// TickFunc advances the countdown by one step and reports whether it is
// now exhausted.
type TickFunc func() (exhausted bool)

// Driver runs at most one tick cycle at a time. Arm starts a cycle,
// Disarm cancels it. A cycle that exhausts its countdown stops on its own
// and calls the expiry callback exactly once.
//
// The driver does not hold its lock while calling tick or expire, so the
// callbacks may call back into Arm or Disarm.
type Driver struct {
	log      *logger.Logger
	interval time.Duration

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// New creates a dormant driver.
func New(log *logger.Logger, opts ...Option) *Driver {
	d := &Driver{
		log:      log,
		interval: time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Arm starts a new tick cycle. Arming an armed driver cancels the old
// cycle first, so there is never more than one cycle ticking.
func (d *Driver) Arm(ctx context.Context, tick TickFunc, expire func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
		d.log.Debug("re-arming, previous cycle cancelled")
	}

	childCtx, cancel := context.WithCancel(ctx)
	d.gen++
	d.cancel = cancel

	go d.loop(childCtx, d.gen, tick, expire)
	d.log.Debug("armed cycle %d (interval=%s)", d.gen, d.interval)
}

// Disarm cancels the active cycle, if any. Always safe to call.
func (d *Driver) Disarm() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel == nil {
		return
	}
	d.cancel()
	d.cancel = nil
	d.gen++
	d.log.Debug("disarmed")
}

// armed reports whether a cycle is currently active.
func (d *Driver) armed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel != nil
}

func (d *Driver) loop(ctx context.Context, gen uint64, tick TickFunc, expire func()) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// select picks randomly when both are ready.
			if ctx.Err() != nil {
				return
			}
			if !tick() {
				continue
			}
			if !d.retire(gen) {
				return
			}
			expire()
			return
		}
	}
}

// retire marks cycle gen as finished. It returns false when the cycle
// was already cancelled or replaced, in which case expiry must not fire.
func (d *Driver) retire(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.gen != gen || d.cancel == nil {
		return false
	}
	d.cancel()
	d.cancel = nil
	d.log.Debug("cycle %d exhausted", gen)
	return true
}
