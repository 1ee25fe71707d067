package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"vendorhub/internal/notification/models"
	"vendorhub/internal/notification/tracker/mocks"
	id "vendorhub/pkg/domain"
	"vendorhub/pkg/platform/events"
)

func TestDefaultTemplatesParse(t *testing.T) {
	tr, err := New(nil, DefaultTemplates)
	require.NoError(t, err)
	assert.Contains(t, tr.rules, events.DocumentRejected)
	assert.Contains(t, tr.rules, events.CaseCompleted)
	assert.True(t, tr.rules[events.DocumentRejected].action)
	assert.Equal(t, 72*time.Hour, tr.rules[events.DocumentRejected].deadline)
}

func TestNewRejectsBadTables(t *testing.T) {
	cases := map[string]string{
		"empty":            "",
		"missing type":     "vendor.verified:\n  title: x\n  message: y\n",
		"unknown priority": "vendor.verified:\n  type: X\n  title: x\n  message: y\n  priority: SOON\n",
		"bad template":     "vendor.verified:\n  type: X\n  title: '{{.Nope'\n  message: y\n",
	}
	for name, table := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(nil, []byte(table))
			assert.Error(t, err)
		})
	}
}

func TestEmit(t *testing.T) {
	occurred := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	vendorID := id.VendorID(uuid.New())
	docID := uuid.NewString()

	t.Run("renders an action notification", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		notifier := mocks.NewMockNotifier(ctrl)
		tr, err := New(notifier, DefaultTemplates)
		require.NoError(t, err)

		var got models.Draft
		notifier.EXPECT().Record(gomock.Any(), vendorID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ id.VendorID, d models.Draft) (*models.Notification, error) {
				got = d
				return &models.Notification{ID: id.NotificationID(uuid.New())}, nil
			})

		err = tr.Emit(context.Background(), events.Event{
			Type:       events.DocumentRejected,
			VendorID:   vendorID,
			EntityKind: id.EntityDocument,
			EntityID:   docID,
			Actor:      "admin",
			Detail:     "blurry scan",
			OccurredAt: occurred,
		})
		require.NoError(t, err)
		assert.Equal(t, "DOCUMENT", got.Type)
		assert.Equal(t, models.PriorityUrgent, got.Priority)
		assert.Contains(t, got.Message, "blurry scan")
		assert.True(t, got.ActionRequired)
		assert.Equal(t, "/vendor/documents/"+docID, got.ActionURL)
		require.NotNil(t, got.ActionDeadline)
		assert.Equal(t, occurred.Add(72*time.Hour), *got.ActionDeadline)
		assert.Equal(t, models.Related{Kind: id.EntityDocument, ID: docID}, got.Related)
	})

	t.Run("ignores unmapped events", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		notifier := mocks.NewMockNotifier(ctrl)
		tr, err := New(notifier, DefaultTemplates)
		require.NoError(t, err)

		require.NoError(t, tr.Emit(context.Background(), events.Event{Type: events.CaseAssigned, VendorID: vendorID}))
		require.NoError(t, tr.Emit(context.Background(), events.Event{Type: "vendor.unknown", VendorID: vendorID}))
	})

	t.Run("surfaces notifier failures", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		notifier := mocks.NewMockNotifier(ctrl)
		tr, err := New(notifier, DefaultTemplates)
		require.NoError(t, err)

		notifier.EXPECT().Record(gomock.Any(), vendorID, gomock.Any()).Return(nil, errors.New("db down"))
		err = tr.Emit(context.Background(), events.Event{Type: events.VendorVerified, VendorID: vendorID, Actor: "agent1", OccurredAt: occurred})
		assert.Error(t, err)
	})
}
