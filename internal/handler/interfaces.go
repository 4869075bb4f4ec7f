package handler

import (
	"context"

	"github.com/rocjay1/ledger-sync/internal/models"
	"github.com/rocjay1/ledger-sync/internal/remote"
)

// QueueEngine defines the write queue operations used by the handlers.
type QueueEngine interface {
	Items() []models.QueueItem
	Status() models.QueueStatus
	Enqueue(ctx context.Context, itemType models.ItemType, data any) bool
	Process(ctx context.Context)
	Retry(ctx context.Context) bool
	Clear(ctx context.Context)
	Snapshot() (models.Document, bool)
	DocumentID() string
	SetDocumentID(ctx context.Context, documentID string)
	LoadDocument(ctx context.Context) (models.Document, error)
}

// SessionClient defines the credential operations used by the handlers.
type SessionClient interface {
	SetCredential(cred remote.Credential)
	ClearCredential()
	Authorized() bool
}
