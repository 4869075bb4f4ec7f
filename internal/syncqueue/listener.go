package syncqueue

import (
	"context"

	"github.com/rocjay1/ledger-sync/internal/models"
)

// Listener observes the engine. QueueChanged is called after every queue
// mutation with a copy of the queue and its derived status.
// DocumentChanged is called with each new document snapshot.
type Listener interface {
	QueueChanged(ctx context.Context, items []models.QueueItem, status models.QueueStatus)
	DocumentChanged(ctx context.Context, doc models.Document)
}
