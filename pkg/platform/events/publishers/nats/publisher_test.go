package nats

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"

	"vendorhub/pkg/platform/events"
)

func TestClassify(t *testing.T) {
	assert.True(t, classify(fmt.Errorf("nats publish: %w", nats.ErrConnectionClosed)).Retryable)
	assert.True(t, classify(nats.ErrNoServers).RecordFailure)
	assert.False(t, classify(errors.New("invalid subject")).Retryable)
	assert.Equal(t, false, classify(context.Canceled).RecordFailure)
}

func TestSubjectIsPerEventType(t *testing.T) {
	p := &Publisher{subject: "vendorhub.events"}
	assert.Equal(t, "vendorhub.events.verification.completed", p.Subject(events.CaseCompleted))
}
