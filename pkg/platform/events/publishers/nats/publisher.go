// Package nats publishes workflow events on a NATS subject. It is the
// lightweight alternative to the Kafka publisher for single-node deployments.
package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"vendorhub/pkg/platform/circuit"
	"vendorhub/pkg/platform/events"
)

type Publisher struct {
	conn     *nats.Conn
	subject  string
	executor *circuit.Executor
}

type Options struct {
	ConnectTimeout time.Duration
	ReconnectWait  time.Duration
	MaxReconnects  int
	Executor       *circuit.Executor
	Logger         *slog.Logger
}

func New(url, subject string, opts Options) (*Publisher, error) {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 2 * time.Second
	}
	if opts.ReconnectWait <= 0 {
		opts.ReconnectWait = 2 * time.Second
	}
	if opts.MaxReconnects <= 0 {
		opts.MaxReconnects = 60
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(url,
		nats.Name("vendorhub"),
		nats.Timeout(opts.ConnectTimeout),
		nats.ReconnectWait(opts.ReconnectWait),
		nats.MaxReconnects(opts.MaxReconnects),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Publisher{conn: conn, subject: subject, executor: opts.Executor}, nil
}

// Subject returns the per-type subject, e.g. "vendorhub.events.verification.completed".
func (p *Publisher) Subject(t events.Type) string {
	return p.subject + "." + string(t)
}

func (p *Publisher) Emit(ctx context.Context, ev events.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	publish := func(context.Context) error {
		if err := p.conn.Publish(p.Subject(ev.Type), payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}
	if p.executor == nil {
		return publish(ctx)
	}
	return p.executor.Execute(ctx, "nats.publish", publish, classify)
}

func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

func classify(err error) circuit.Classification {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return circuit.Classification{}
	case errors.Is(err, nats.ErrNoServers),
		errors.Is(err, nats.ErrTimeout),
		errors.Is(err, nats.ErrConnectionClosed),
		errors.Is(err, nats.ErrDisconnected),
		errors.Is(err, nats.ErrConnectionReconnecting):
		return circuit.Classification{Retryable: true, RecordFailure: true}
	default:
		return circuit.Classification{Retryable: false, RecordFailure: true}
	}
}
