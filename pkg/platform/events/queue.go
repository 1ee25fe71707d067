package events

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var ErrQueueFull = errors.New("event queue full")

// Queue decouples request handling from slow sinks such as brokers. Emit
// never blocks; Run forwards queued events to the downstream sink until its
// context ends, then drains what is left with a short grace period.
type Queue struct {
	inbox  chan Event
	next   Sink
	logger *slog.Logger
	grace  time.Duration
}

func NewQueue(next Sink, size int, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		inbox:  make(chan Event, size),
		next:   next,
		logger: logger,
		grace:  5 * time.Second,
	}
}

func (q *Queue) Emit(_ context.Context, ev Event) error {
	select {
	case q.inbox <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			q.drain()
			return ctx.Err()
		case ev := <-q.inbox:
			q.forward(ctx, ev)
		}
	}
}

func (q *Queue) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), q.grace)
	defer cancel()
	for {
		select {
		case ev := <-q.inbox:
			q.forward(ctx, ev)
		default:
			return
		}
	}
}

func (q *Queue) forward(ctx context.Context, ev Event) {
	if err := q.next.Emit(ctx, ev); err != nil {
		q.logger.WarnContext(ctx, "event delivery failed",
			"event_type", ev.Type,
			"vendor_id", ev.VendorID,
			"entity_id", ev.EntityID,
			"error", err,
		)
	}
}
