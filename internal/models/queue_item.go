package models

import "encoding/json"

// ItemType names the document list a queued mutation targets.
type ItemType string

const (
	ItemTypeCategories ItemType = "categories"
	ItemTypeTags       ItemType = "tags"
	ItemTypeActions    ItemType = "actions"
)

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeCategories, ItemTypeTags, ItemTypeActions:
		return true
	}
	return false
}

// ItemStatus is the lifecycle state of a single queued mutation.
type ItemStatus string

const (
	ItemStatusReady      ItemStatus = "ready"
	ItemStatusProcessing ItemStatus = "processing"
	ItemStatusError      ItemStatus = "error"
)

// APIAction is the kind of change a queued mutation applies.
type APIAction string

const (
	APIActionAdd APIAction = "add"
)

// QueueItem is one pending mutation that has not been committed to the
// remote document yet. Data holds the entity JSON without an id.
type QueueItem struct {
	ID          string          `json:"id"`
	Type        ItemType        `json:"type"`
	Status      ItemStatus      `json:"status"`
	APIAction   APIAction       `json:"apiAction"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Data        json.RawMessage `json:"data"`
	LastError   string          `json:"lastError,omitempty"`
}

// QueueStatus is the queue-level state derived from its items.
type QueueStatus string

const (
	QueueStatusEmpty      QueueStatus = "empty"
	QueueStatusError      QueueStatus = "error"
	QueueStatusProcessing QueueStatus = "processing"
	QueueStatusReady      QueueStatus = "ready"
)

// DeriveStatus computes the queue status from its items. Precedence is
// empty, then error, then processing, then ready.
func DeriveStatus(items []QueueItem) QueueStatus {
	if len(items) == 0 {
		return QueueStatusEmpty
	}
	if hasStatus(items, ItemStatusError) {
		return QueueStatusError
	}
	if hasStatus(items, ItemStatusProcessing) {
		return QueueStatusProcessing
	}
	return QueueStatusReady
}

func hasStatus(items []QueueItem, status ItemStatus) bool {
	for _, item := range items {
		if item.Status == status {
			return true
		}
	}
	return false
}
