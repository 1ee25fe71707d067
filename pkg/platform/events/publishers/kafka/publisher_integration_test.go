//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	id "vendorhub/pkg/domain"
	"vendorhub/pkg/platform/circuit"
	"vendorhub/pkg/platform/events"
	"vendorhub/pkg/platform/events/publishers/kafka"
	"vendorhub/pkg/testutil/containers"
)

type PublisherSuite struct {
	suite.Suite
	brokers []string
}

func TestPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupSuite() {
	s.brokers = containers.GetManager().GetKafka(s.T()).Brokers
}

func (s *PublisherSuite) TestPublishesKeyedByVendor() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	topic := "vendor-events-" + uuid.NewString()
	pub, err := kafka.New(s.brokers, topic, kafka.WithExecutor(circuit.NewExecutor(circuit.DefaultConfig())))
	s.Require().NoError(err)
	defer pub.Close()
	s.Require().NoError(pub.EnsureTopic(ctx, 1, 1))
	s.Require().NoError(pub.EnsureTopic(ctx, 1, 1), "ensure is idempotent")

	vendorID := id.VendorID(uuid.New())
	s.Require().NoError(pub.Emit(ctx, events.Event{
		Type:       events.VendorVerified,
		VendorID:   vendorID,
		EntityKind: id.EntityVendor,
		EntityID:   vendorID.String(),
		Actor:      "agent1",
		OccurredAt: time.Now().UTC(),
	}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())
	records := fetches.Records()
	s.Require().Len(records, 1)
	s.Equal(vendorID.String(), string(records[0].Key))

	var got events.Event
	s.Require().NoError(json.Unmarshal(records[0].Value, &got))
	s.Equal(events.VendorVerified, got.Type)
	s.Equal(vendorID, got.VendorID)
}
