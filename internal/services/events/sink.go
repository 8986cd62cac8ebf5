package events

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jwebster45206/garden-quest/pkg/sim"
)

// Publisher delivers one event somewhere outside the process.
type Publisher interface {
	Publish(ctx context.Context, e sim.Event) error
}

// Sink is a sim.EventSink that hands events to publishers on its own goroutine.
// Emit never blocks; when the buffer is full the event is dropped with a warning.
type Sink struct {
	targets []Publisher
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
	ch     chan sim.Event
	done   chan struct{}

	started atomic.Bool
	dropped atomic.Int64
}

// NewSink creates a sink with room for buffer pending events.
func NewSink(buffer int, logger *slog.Logger, targets ...Publisher) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{
		targets: targets,
		logger:  logger,
		ch:      make(chan sim.Event, max(buffer, 1)),
		done:    make(chan struct{}),
	}
}

// Start launches the delivery goroutine. It stops when ctx is done or the sink is closed.
func (s *Sink) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.run(ctx)
}

func (s *Sink) run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-s.ch:
			if !ok {
				return
			}
			s.deliver(ctx, e)
		}
	}
}

func (s *Sink) deliver(ctx context.Context, e sim.Event) {
	for _, t := range s.targets {
		if err := t.Publish(ctx, e); err != nil {
			s.logger.Warn("Failed to deliver world event", "error", err, "kind", e.Kind, "session_id", e.Session.String())
		}
	}
}

// Emit queues e for delivery.
func (s *Sink) Emit(e sim.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- e:
	default:
		s.dropped.Add(1)
		s.logger.Warn("Dropping world event, buffer full", "kind", e.Kind, "tick", e.Tick)
	}
}

// Dropped returns how many events were discarded because the buffer was full.
func (s *Sink) Dropped() int64 {
	return s.dropped.Load()
}

// Close stops accepting events and waits for the queued ones to be delivered.
func (s *Sink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()

	if s.started.Load() {
		<-s.done
	}
}
