package appender

import (
	"context"
	"sync"
	"time"

	"github.com/danielolaszy/jiralog/internal/logging"
	"github.com/danielolaszy/jiralog/pkg/models"
)

const (
	defaultBufferSize   = 256
	defaultDrainTimeout = 30 * time.Second
)

// AsyncOption configures an Async wrapper.
type AsyncOption func(*Async)

// WithBufferSize sets the queue capacity. Default: 256.
func WithBufferSize(n int) AsyncOption {
	return func(a *Async) { a.bufSize = n }
}

// WithDropOnFull makes Append drop the event instead of blocking when the
// queue is full.
func WithDropOnFull() AsyncOption {
	return func(a *Async) { a.dropOnFull = true }
}

// WithDrainTimeout bounds how long Close waits for queued events.
func WithDrainTimeout(d time.Duration) AsyncOption {
	return func(a *Async) { a.drainTimeout = d }
}

// Async processes events on a background goroutine so a slow tracker never
// stalls the logging call.
type Async struct {
	inner        Sink
	ch           chan models.ErrorEvent
	done         chan struct{}
	bufSize      int
	dropOnFull   bool
	drainTimeout time.Duration

	mu     sync.RWMutex
	closed bool
}

// NewAsync wraps inner. The drain goroutine starts immediately.
func NewAsync(inner Sink, opts ...AsyncOption) *Async {
	a := &Async{
		inner:        inner,
		bufSize:      defaultBufferSize,
		drainTimeout: defaultDrainTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ch = make(chan models.ErrorEvent, a.bufSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

// Append queues the event. Events below ERROR are ignored without queueing.
// After Close, events are dropped.
func (a *Async) Append(ctx context.Context, event models.ErrorEvent) Outcome {
	if event.Level < models.LevelError {
		return OutcomeIgnored
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return OutcomeDropped
	}

	if a.dropOnFull {
		select {
		case a.ch <- event:
			return OutcomeQueued
		default:
			logging.Warn("event queue full, dropping event", "logger", event.LoggerName)
			return OutcomeDropped
		}
	}

	select {
	case a.ch <- event:
		return OutcomeQueued
	case <-ctx.Done():
		return OutcomeDropped
	}
}

// Close stops accepting events, waits for queued ones (bounded by the drain
// timeout) and closes the wrapped sink.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.ch)
	a.mu.Unlock()

	select {
	case <-a.done:
	case <-time.After(a.drainTimeout):
		logging.Warn("event queue drain timed out")
	}
	return a.inner.Close()
}

func (a *Async) drain() {
	defer close(a.done)
	for event := range a.ch {
		a.inner.Append(context.Background(), event)
	}
}
