// Package kafka publishes workflow events to a Kafka (or Redpanda) topic,
// keyed by vendor so one vendor's events stay ordered within a partition.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"vendorhub/pkg/platform/circuit"
	"vendorhub/pkg/platform/events"
)

type Publisher struct {
	client   *kgo.Client
	topic    string
	executor *circuit.Executor
	logger   *slog.Logger
}

type Option func(*Publisher)

func WithExecutor(exec *circuit.Executor) Option {
	return func(p *Publisher) { p.executor = exec }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

// New connects to brokers. The client connects lazily, so an unreachable
// cluster surfaces on the first publish rather than here.
func New(brokers []string, topic string, opts ...Option) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ClientID("vendorhub"),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	p := &Publisher{client: client, topic: topic, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// EnsureTopic creates the events topic if it does not exist yet.
func (p *Publisher) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	admin := kadm.NewClient(p.client)
	resp, err := admin.CreateTopics(ctx, partitions, replicationFactor, nil, p.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", p.topic, err)
	}
	for _, t := range resp.Sorted() {
		if t.Err != nil && !errors.Is(t.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", t.Topic, t.Err)
		}
	}
	return nil
}

func (p *Publisher) Emit(ctx context.Context, ev events.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(ev.VendorID.String()),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	}
	produce := func(ctx context.Context) error {
		return p.client.ProduceSync(ctx, record).FirstErr()
	}
	if p.executor == nil {
		return produce(ctx)
	}
	return p.executor.Execute(ctx, "kafka.produce", produce, classify)
}

func (p *Publisher) Close() {
	p.client.Close()
}

func classify(err error) circuit.Classification {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return circuit.Classification{}
	case errors.Is(err, kerr.MessageTooLarge), errors.Is(err, kerr.TopicAuthorizationFailed):
		return circuit.Classification{Retryable: false, RecordFailure: false}
	case kerr.IsRetriable(err), errors.Is(err, kgo.ErrRecordTimeout):
		return circuit.Classification{Retryable: true, RecordFailure: true}
	default:
		return circuit.Classification{Retryable: false, RecordFailure: true}
	}
}
