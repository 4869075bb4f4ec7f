package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rocjay1/ledger-sync/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventPublisher(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	newPublisher := func(sender *MockEventSender) *EventPublisher {
		p := NewEventPublisher(sender)
		p.now = func() time.Time { return fixed }
		return p
	}

	t.Run("PublishesTransitionsOnly", func(t *testing.T) {
		sender := &MockEventSender{}
		p := newPublisher(sender)

		items := []models.QueueItem{{ID: "a", Title: "Food", Status: models.ItemStatusReady}}
		p.QueueChanged(ctx, items, models.QueueStatusReady)
		p.QueueChanged(ctx, items, models.QueueStatusReady)

		items[0].Status = models.ItemStatusError
		items[0].LastError = "boom"
		p.QueueChanged(ctx, items, models.QueueStatusError)

		require.Len(t, sender.Sent, 2)
		last := sender.Sent[1].(LedgerEvent)
		assert.Equal(t, EventQueueChanged, last.Kind)
		assert.Equal(t, models.QueueStatusError, last.Status)
		assert.Equal(t, 1, last.Pending)
		assert.Equal(t, "Food", last.Head)
		assert.Equal(t, "boom", last.HeadError)
		assert.Equal(t, fixed, last.PublishedAt)
	})

	t.Run("FirstEmptyStatusIsPublished", func(t *testing.T) {
		sender := &MockEventSender{}
		p := newPublisher(sender)

		p.QueueChanged(ctx, nil, models.QueueStatusEmpty)
		require.Len(t, sender.Sent, 1)
		assert.Equal(t, 0, sender.Sent[0].(LedgerEvent).Pending)
	})

	t.Run("DocumentSummary", func(t *testing.T) {
		sender := &MockEventSender{}
		p := newPublisher(sender)

		doc := models.NewDocument(fixed)
		doc.Categories = append(doc.Categories, models.Category{ID: "c1", Name: "Food", Type: models.EntryTypeExpense})
		p.DocumentChanged(ctx, doc)

		require.Len(t, sender.Sent, 1)
		event := sender.Sent[0].(LedgerEvent)
		assert.Equal(t, EventDocumentChanged, event.Kind)
		assert.Equal(t, 1, event.Categories)
		require.NotNil(t, event.UpdatedAt)
		assert.True(t, fixed.Equal(*event.UpdatedAt))
	})

	t.Run("SendFailureIsSwallowed", func(t *testing.T) {
		sender := &MockEventSender{
			SendFunc: func(ctx context.Context, message any) error {
				return errors.New("queue unavailable")
			},
		}
		p := newPublisher(sender)

		assert.NotPanics(t, func() {
			p.QueueChanged(ctx, nil, models.QueueStatusEmpty)
		})
		assert.Len(t, sender.Sent, 1)
	})
}
