package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rocjay1/ledger-sync/internal/models"
)

// EventSender is the subset of EventQueue used by EventPublisher.
type EventSender interface {
	Send(ctx context.Context, message any) error
}

const (
	EventQueueChanged    = "queue_changed"
	EventDocumentChanged = "document_changed"
)

// LedgerEvent is the message body written to the events queue.
type LedgerEvent struct {
	Kind        string             `json:"kind"`
	Status      models.QueueStatus `json:"status,omitempty"`
	Pending     int                `json:"pending"`
	Head        string             `json:"head,omitempty"`
	HeadError   string             `json:"headError,omitempty"`
	Categories  int                `json:"categories,omitempty"`
	Tags        int                `json:"tags,omitempty"`
	Actions     int                `json:"actions,omitempty"`
	UpdatedAt   *time.Time         `json:"updatedAt,omitempty"`
	PublishedAt time.Time          `json:"publishedAt"`
}

// EventPublisher forwards queue status transitions and document snapshots
// to an event queue.
type EventPublisher struct {
	sender EventSender
	now    func() time.Time

	mu         sync.Mutex
	lastStatus models.QueueStatus
	lastLen    int
}

// NewEventPublisher creates a publisher writing to sender.
func NewEventPublisher(sender EventSender) *EventPublisher {
	return &EventPublisher{sender: sender, now: time.Now, lastLen: -1}
}

// QueueChanged publishes when the status or the number of pending items
// differs from the last published event.
func (p *EventPublisher) QueueChanged(ctx context.Context, items []models.QueueItem, status models.QueueStatus) {
	p.mu.Lock()
	if status == p.lastStatus && len(items) == p.lastLen {
		p.mu.Unlock()
		return
	}
	p.lastStatus = status
	p.lastLen = len(items)
	p.mu.Unlock()

	event := LedgerEvent{
		Kind:        EventQueueChanged,
		Status:      status,
		Pending:     len(items),
		PublishedAt: p.now().UTC(),
	}
	if len(items) > 0 {
		event.Head = items[0].Title
		event.HeadError = items[0].LastError
	}
	p.send(ctx, event)
}

// DocumentChanged publishes a summary of the new snapshot.
func (p *EventPublisher) DocumentChanged(ctx context.Context, doc models.Document) {
	updated := doc.UpdatedAt
	p.send(ctx, LedgerEvent{
		Kind:        EventDocumentChanged,
		Categories:  len(doc.Categories),
		Tags:        len(doc.Tags),
		Actions:     len(doc.Actions),
		UpdatedAt:   &updated,
		PublishedAt: p.now().UTC(),
	})
}

func (p *EventPublisher) send(ctx context.Context, event LedgerEvent) {
	if err := p.sender.Send(ctx, event); err != nil {
		slog.Warn("failed to publish ledger event", "kind", event.Kind, "error", err)
	}
}
