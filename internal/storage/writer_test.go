package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/deepwork/internal/domain"
	"github.com/hammamikhairi/deepwork/internal/logger"
)

// gatedStore blocks every Set until release is closed and records calls.
type gatedStore struct {
	*MemoryStore
	release chan struct{}

	mu    sync.Mutex
	calls []string
}

func newGatedStore(log *logger.Logger) *gatedStore {
	return &gatedStore{MemoryStore: NewMemoryStore(log), release: make(chan struct{})}
}

func (g *gatedStore) Set(ctx context.Context, key domain.PrefKey, value string) error {
	select {
	case <-g.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	g.mu.Lock()
	g.calls = append(g.calls, string(key)+"="+value)
	g.mu.Unlock()
	return g.MemoryStore.Set(ctx, key, value)
}

func (g *gatedStore) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func TestWriterDoesNotBlock(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := newGatedStore(log)
	w := NewWriter(store, log)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			w.Set(domain.PrefBackgroundIndex, domain.EncodeInt(i%7))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Set blocked on a stalled store")
	}

	close(store.release)
	if err := w.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestWriterCoalescesLastWriteWins(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := newGatedStore(log)
	w := NewWriter(store, log)
	ctx := context.Background()

	// The first write may be picked up immediately and park on the gate;
	// everything after it coalesces into a single pending write.
	w.Set(domain.PrefLastMode, "0")
	time.Sleep(20 * time.Millisecond)
	for _, v := range []string{"1", "0", "1"} {
		w.Set(domain.PrefLastMode, v)
	}

	close(store.release)
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	if got, _ := store.Get(ctx, domain.PrefLastMode); got != "1" {
		t.Fatalf("expected last write to win, got %q", got)
	}
	if n := store.callCount(); n > 2 {
		t.Fatalf("expected coalesced writes (<=2), got %d", n)
	}
	_ = w.Close(ctx)
}

func TestWriterDeleteAfterSet(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)
	w := NewWriter(store, log)
	ctx := context.Background()

	w.Set(domain.PrefCustomBgURI, "file:///a.png")
	w.Delete(domain.PrefCustomBgURI)
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	if _, err := store.Get(ctx, domain.PrefCustomBgURI); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected key to be gone, got %v", err)
	}
	_ = w.Close(ctx)
}

func TestWriterSwallowsStoreErrors(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	w := NewWriter(brokenStore{}, log)
	ctx := context.Background()

	w.Set(domain.PrefPowerSaveMode, "true")
	w.Delete(domain.PrefCustomBgURI)
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := w.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestWriterCloseDrainsAndDropsLater(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)
	w := NewWriter(store, log)
	ctx := context.Background()

	w.Set(domain.PrefBackgroundIndex, "3")
	if err := w.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got, _ := store.Get(ctx, domain.PrefBackgroundIndex); got != "3" {
		t.Fatalf("expected queued write to be drained on close, got %q", got)
	}

	w.Set(domain.PrefBackgroundIndex, "5")
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("flush after close: %v", err)
	}
	if got, _ := store.Get(ctx, domain.PrefBackgroundIndex); got != "3" {
		t.Fatalf("write after close should be dropped, got %q", got)
	}
	if err := w.Close(ctx); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestWriterFlushHonoursContext(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := newGatedStore(log)
	w := NewWriter(store, log, WithWriteTimeout(time.Minute))

	w.Set(domain.PrefLastMode, "1")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := w.Flush(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	close(store.release)
	_ = w.Close(context.Background())
}
