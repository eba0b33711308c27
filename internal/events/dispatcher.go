package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/iamEzaz/baribhara/internal/observability/metrics"
	"github.com/iamEzaz/baribhara/internal/reliability/circuitbreaker"
	"github.com/iamEzaz/baribhara/internal/reliability/retry"
)

type queuedEvent struct {
	topic   Topic
	payload Payload
}

// Dispatcher makes event emission best-effort: Emit enqueues and always
// succeeds, and a background worker delivers with retry/backoff behind a
// circuit breaker. A persisted write is never failed because the bus is down;
// the cache TTL bounds how long other services can stay stale if an event is
// ultimately lost.
type Dispatcher struct {
	inner    Publisher
	logger   *slog.Logger
	queue    chan queuedEvent
	breaker  *circuitbreaker.CircuitBreaker
	retryCfg *retry.Config
}

// NewDispatcher wraps a publisher with an async bounded queue.
func NewDispatcher(inner Publisher, logger *slog.Logger, queueSize int) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &Dispatcher{
		inner:    inner,
		logger:   logger,
		queue:    make(chan queuedEvent, queueSize),
		breaker:  circuitbreaker.NewCircuitBreaker(5, 2, 30*time.Second),
		retryCfg: retry.DefaultConfig(),
	}
}

// Emit enqueues the event and returns nil. A full queue drops the event with a
// log line and a metric; callers are never blocked or failed.
func (d *Dispatcher) Emit(ctx context.Context, topic Topic, payload Payload) error {
	select {
	case d.queue <- queuedEvent{topic: topic, payload: payload}:
		metrics.SetEventQueueDepth(len(d.queue))
	default:
		metrics.ObserveEventDropped("queue_full")
		d.logger.Error("event queue full, dropping event",
			slog.String("topic", string(topic)),
			slog.String("key", payload.EventKey()),
		)
	}
	return nil
}

// Start runs the delivery loop until the context is cancelled. Events still
// queued at shutdown are drained without blocking on the bus.
func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info("event dispatcher started", slog.Int("queue_capacity", cap(d.queue)))
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("event dispatcher stopped", slog.Int("pending", len(d.queue)))
			return
		case ev := <-d.queue:
			metrics.SetEventQueueDepth(len(d.queue))
			d.deliver(ctx, ev)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev queuedEvent) {
	if !d.breaker.AllowRequest() {
		metrics.ObserveEventDropped("circuit_open")
		d.logger.Warn("event bus circuit open, dropping event",
			slog.String("topic", string(ev.topic)),
			slog.String("key", ev.payload.EventKey()),
		)
		return
	}

	_, err := retry.Do(ctx, d.retryCfg, d.logger, "publish "+string(ev.topic), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, d.inner.Emit(ctx, ev.topic, ev.payload)
	})
	if err != nil {
		d.breaker.RecordFailure()
		metrics.ObserveEventPublish(string(ev.topic), "error")
		d.logger.Error("event publish failed, giving up",
			slog.String("topic", string(ev.topic)),
			slog.String("key", ev.payload.EventKey()),
			slog.String("error", err.Error()),
		)
		return
	}
	d.breaker.RecordSuccess()
	metrics.ObserveEventPublish(string(ev.topic), "success")
}
