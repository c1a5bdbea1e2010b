package timer

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hammamikhairi/deepwork/internal/logger"
)

// countdown is a fake tick target that counts down from n.
type countdown struct {
	mu        sync.Mutex
	remaining int
	ticks     int
	expired   int
}

func (c *countdown) tick() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks++
	if c.remaining > 0 {
		c.remaining--
	}
	return c.remaining == 0
}

func (c *countdown) expire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expired++
}

func (c *countdown) snapshot() (ticks, expired int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks, c.expired
}

func newTestDriver() *Driver {
	return New(logger.New(logger.LevelOff, nil), WithInterval(10*time.Millisecond))
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestDriverExpiresExactlyOnce(t *testing.T) {
	d := newTestDriver()
	c := &countdown{remaining: 3}

	d.Arm(context.Background(), c.tick, c.expire)

	waitFor(t, time.Second, func() bool {
		_, expired := c.snapshot()
		return expired == 1
	})

	// Give a stale cycle time to misbehave.
	time.Sleep(60 * time.Millisecond)

	ticks, expired := c.snapshot()
	if ticks != 3 {
		t.Fatalf("expected 3 ticks, got %d", ticks)
	}
	if expired != 1 {
		t.Fatalf("expected exactly one expiry, got %d", expired)
	}
	if d.armed() {
		t.Fatal("driver should be dormant after expiry")
	}
}

func TestDriverDisarmStopsTicks(t *testing.T) {
	d := newTestDriver()
	c := &countdown{remaining: 1000}

	d.Arm(context.Background(), c.tick, c.expire)
	waitFor(t, time.Second, func() bool {
		ticks, _ := c.snapshot()
		return ticks >= 2
	})

	d.Disarm()
	ticks, _ := c.snapshot()
	time.Sleep(60 * time.Millisecond)
	after, expired := c.snapshot()

	// One tick may already have been in flight when Disarm ran.
	if after > ticks+1 {
		t.Fatalf("ticks kept coming after disarm: %d -> %d", ticks, after)
	}
	if expired != 0 {
		t.Fatalf("expected no expiry, got %d", expired)
	}
}

func TestDriverDisarmIdempotent(t *testing.T) {
	d := newTestDriver()
	d.Disarm()
	d.Disarm()
	if d.armed() {
		t.Fatal("never-armed driver reports armed")
	}
}

func TestDriverRearmKeepsSingleCycle(t *testing.T) {
	d := newTestDriver()
	var ticks atomic.Int64
	tick := func() bool {
		ticks.Add(1)
		return false
	}

	for i := 0; i < 5; i++ {
		d.Arm(context.Background(), tick, func() {})
	}
	defer d.Disarm()

	time.Sleep(105 * time.Millisecond)

	// One cycle at 10ms yields about 10 ticks; five concurrent cycles
	// would yield about 50.
	if got := ticks.Load(); got > 15 {
		t.Fatalf("expected a single cycle's worth of ticks, got %d", got)
	}
}

func TestDriverParentCancel(t *testing.T) {
	d := newTestDriver()
	c := &countdown{remaining: 1000}
	ctx, cancel := context.WithCancel(context.Background())

	d.Arm(ctx, c.tick, c.expire)
	cancel()
	time.Sleep(40 * time.Millisecond)
	ticks, _ := c.snapshot()
	time.Sleep(40 * time.Millisecond)
	after, _ := c.snapshot()

	if after != ticks {
		t.Fatalf("ticks continued after parent cancel: %d -> %d", ticks, after)
	}
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	d := New(logger.New(logger.LevelOff, nil), WithInterval(0))
	if d.interval != time.Second {
		t.Fatalf("expected default interval, got %s", d.interval)
	}
}
