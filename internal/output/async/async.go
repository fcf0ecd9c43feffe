package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/crimson-sun/bulletin/internal/model"
	"github.com/crimson-sun/bulletin/internal/output"
)

const (
	defaultBufferSize   = 1024
	defaultDrainTimeout = 5 * time.Second
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("async output: closed")

// Option configures an Async wrapper.
type Option func(*Async)

// WithBufferSize sets the channel buffer capacity. Default: 1024.
func WithBufferSize(n int) Option {
	return func(a *Async) { a.bufSize = n }
}

// WithOnError sets the callback invoked when the inner output's Write fails.
// Default: logs a warning via slog.
func WithOnError(f func(error)) Option {
	return func(a *Async) { a.errFunc = f }
}

// WithDropOnFull makes Write return immediately (dropping the view) when the
// buffer is full, instead of blocking.
func WithDropOnFull() Option {
	return func(a *Async) { a.dropOnFull = true }
}

// WithDrainTimeout bounds how long Close waits for buffered views.
func WithDrainTimeout(d time.Duration) Option {
	return func(a *Async) { a.drainTimeout = d }
}

// Async decouples view production from delivery via a buffered channel.
// A background goroutine drains it to the wrapped output. Errors from the
// inner output go to errFunc rather than back to the caller.
type Async struct {
	inner        output.Output
	ch           chan model.NoticeView
	done         chan struct{}
	errFunc      func(error)
	bufSize      int
	dropOnFull   bool
	drainTimeout time.Duration
	dropped      atomic.Int64

	mu        sync.RWMutex // guards closed against sends on a closed channel
	closed    bool
	closeOnce sync.Once
}

// New wraps an output.Output in an async channel-based writer.
// The background drain goroutine starts immediately.
func New(inner output.Output, opts ...Option) *Async {
	a := &Async{
		inner:        inner,
		bufSize:      defaultBufferSize,
		drainTimeout: defaultDrainTimeout,
		errFunc:      func(err error) { slog.Warn("async output write error", "error", err) },
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ch = make(chan model.NoticeView, a.bufSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

// Write queues the view. By default it blocks while the buffer is full.
// With WithDropOnFull it returns nil immediately and the view is lost.
func (a *Async) Write(ctx context.Context, view model.NoticeView) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}

	if a.dropOnFull {
		select {
		case a.ch <- view:
		default:
			a.dropped.Add(1)
			slog.Warn("async output buffer full, dropping notice",
				"id", view.ID, "category", view.Category)
		}
		return nil
	}
	select {
	case a.ch <- view:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dropped returns how many views were discarded on a full buffer.
func (a *Async) Dropped() int64 {
	return a.dropped.Load()
}

// Close stops accepting views, waits for the drain goroutine (bounded by the
// drain timeout) and closes the inner output.
func (a *Async) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.ch)
		a.mu.Unlock()

		select {
		case <-a.done:
		case <-time.After(a.drainTimeout):
			slog.Warn("async output drain timed out")
		}
		err = a.inner.Close()
	})
	return err
}

func (a *Async) drain() {
	defer close(a.done)
	for view := range a.ch {
		if err := a.inner.Write(context.Background(), view); err != nil {
			a.errFunc(err)
		}
	}
}
