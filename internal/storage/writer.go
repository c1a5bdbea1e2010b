package storage

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/deepwork/internal/domain"
	"github.com/hammamikhairi/deepwork/internal/logger"
)

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithWriteTimeout bounds each individual store call.
func WithWriteTimeout(d time.Duration) WriterOption {
	return func(w *Writer) {
		if d > 0 {
			w.timeout = d
		}
	}
}

type pendingOp struct {
	value  string
	delete bool
}

// Writer applies preference writes in the background. Set and Delete
// never block on the store: they queue the operation and return. Queued
// operations on the same key are coalesced so only the latest is written.
// Failures are logged and dropped.
type Writer struct {
	store   domain.PreferenceStore
	log     *logger.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending map[domain.PrefKey]pendingOp
	busy    bool
	drained chan struct{} // closed when busy goes false
	closed  bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

// NewWriter starts a background writer in front of store.
func NewWriter(store domain.PreferenceStore, log *logger.Logger, opts ...WriterOption) *Writer {
	w := &Writer{
		store:   store,
		log:     log,
		timeout: 2 * time.Second,
		pending: make(map[domain.PrefKey]pendingOp),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	go w.run()
	return w
}

// Set queues a write of value under key.
func (w *Writer) Set(key domain.PrefKey, value string) {
	w.enqueue(key, pendingOp{value: value})
}

// Delete queues removal of key.
func (w *Writer) Delete(key domain.PrefKey) {
	w.enqueue(key, pendingOp{delete: true})
}

func (w *Writer) enqueue(key domain.PrefKey, op pendingOp) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.log.Warn("dropping write to %s: %v", key, domain.ErrClosed)
		return
	}
	w.pending[key] = op
	if !w.busy {
		w.busy = true
		w.drained = make(chan struct{})
	}
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every queued operation has been attempted or ctx
// is done.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	if !w.busy {
		w.mu.Unlock()
		return nil
	}
	drained := w.drained
	w.mu.Unlock()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains queued operations and stops the writer. Later writes are
// dropped.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.stop)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.stop:
			w.drain()
			return
		}
	}
}

// drain writes batches until the queue is empty.
func (w *Writer) drain() {
	for {
		w.mu.Lock()
		if len(w.pending) == 0 {
			if w.busy {
				w.busy = false
				close(w.drained)
			}
			w.mu.Unlock()
			return
		}
		batch := w.pending
		w.pending = make(map[domain.PrefKey]pendingOp)
		w.mu.Unlock()

		for key, op := range batch {
			w.write(key, op)
		}
	}
}

func (w *Writer) write(key domain.PrefKey, op pendingOp) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	var err error
	if op.delete {
		err = w.store.Delete(ctx, key)
	} else {
		err = w.store.Set(ctx, key, op.value)
	}
	if err != nil {
		w.log.Error("persisting %s: %v", key, err)
		return
	}
	w.log.Debug("persisted %s", key)
}
