// Package syncqueue holds pending ledger mutations and replays them, one at
// a time and in order, against the remote document.
package syncqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rocjay1/ledger-sync/internal/ledger"
	"github.com/rocjay1/ledger-sync/internal/models"
)

// ErrNotConnected is returned when the document cannot be reached because
// no credential or no document id has been supplied.
var ErrNotConnected = errors.New("no credential or document id")

// Remote is the document access the engine needs. Credential refresh is
// handled behind it.
type Remote interface {
	Authorized() bool
	FetchDocument(ctx context.Context, documentID string) (models.Document, error)
	WriteDocument(ctx context.Context, documentID string, doc models.Document) error
}

type drainState int

const (
	stateIdle drainState = iota
	stateDraining
)

// Engine owns the pending queue. At most one drain runs at a time; calls
// to Process made while a drain is running return immediately and the
// running drain picks up their items.
type Engine struct {
	store  QueueStore
	remote Remote
	now    func() time.Time

	mu         sync.Mutex
	items      []models.QueueItem
	state      drainState
	documentID string
	snapshot   *models.Document

	seq       uint64
	pmu       sync.Mutex
	delivered uint64

	lmu       sync.RWMutex
	listeners []Listener
}

// NewEngine loads the persisted queue and returns a ready engine. Items
// left in processing by a previous run, and items that fail validation,
// are dropped.
func NewEngine(ctx context.Context, store QueueStore, remote Remote) (*Engine, error) {
	loaded, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load queue: %w", err)
	}

	e := &Engine{
		store:  store,
		remote: remote,
		now:    time.Now,
		items:  restore(loaded),
	}

	if len(e.items) != len(loaded) {
		if err := store.Save(ctx, slices.Clone(e.items)); err != nil {
			slog.Error("failed to persist restored queue", "error", err)
		}
	}

	slog.Info("queue engine initialized", "queue_length", len(e.items), "dropped", len(loaded)-len(e.items))
	return e, nil
}

func restore(loaded []models.QueueItem) []models.QueueItem {
	items := make([]models.QueueItem, 0, len(loaded))
	for _, item := range loaded {
		if item.Status == models.ItemStatusProcessing {
			slog.Warn("dropping item left in processing", "item_id", item.ID, "item_type", item.Type, "title", item.Title)
			continue
		}
		if err := ledger.ValidateQueueItem(item); err != nil {
			slog.Warn("dropping invalid persisted item", "item_id", item.ID, "error", err)
			continue
		}
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		items = append(items, item)
	}
	return items
}

// Subscribe registers l for queue and document notifications.
func (e *Engine) Subscribe(l Listener) {
	e.lmu.Lock()
	defer e.lmu.Unlock()
	e.listeners = append(e.listeners, l)
}

// Items returns a copy of the queue.
func (e *Engine) Items() []models.QueueItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.items)
}

// Status returns the status derived from the current queue.
func (e *Engine) Status() models.QueueStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return models.DeriveStatus(e.items)
}

// Snapshot returns the last known document, if one was loaded.
func (e *Engine) Snapshot() (models.Document, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snapshot == nil {
		return models.Document{}, false
	}
	return *e.snapshot, true
}

// SetSnapshot replaces the known document.
func (e *Engine) SetSnapshot(ctx context.Context, doc models.Document) {
	e.mu.Lock()
	e.snapshot = &doc
	e.mu.Unlock()
	e.publishDocument(ctx, doc)
}

// DocumentID returns the target document id.
func (e *Engine) DocumentID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.documentID
}

// SetDocumentID sets the target document and starts processing.
func (e *Engine) SetDocumentID(ctx context.Context, documentID string) {
	e.mu.Lock()
	e.documentID = documentID
	e.mu.Unlock()
	e.Process(ctx)
}

// LoadDocument fetches the target document and makes it the snapshot.
func (e *Engine) LoadDocument(ctx context.Context) (models.Document, error) {
	documentID := e.DocumentID()
	if documentID == "" || !e.remote.Authorized() {
		return models.Document{}, ErrNotConnected
	}

	doc, err := e.remote.FetchDocument(ctx, documentID)
	if err != nil {
		return models.Document{}, err
	}

	slog.Info("loaded document", "document_id", documentID, "actions", len(doc.Actions), "categories", len(doc.Categories), "tags", len(doc.Tags))
	e.SetSnapshot(ctx, doc)
	return doc, nil
}

// Enqueue validates data as an entity of itemType, appends it to the queue
// and starts processing. It returns false, leaving the queue untouched, if
// the data is invalid or no document snapshot has been loaded.
func (e *Engine) Enqueue(ctx context.Context, itemType models.ItemType, data any) bool {
	raw, err := toRaw(data)
	if err != nil {
		slog.Warn("rejected mutation", "item_type", itemType, "error", err)
		return false
	}
	entity, err := ledger.DecodeEntity(itemType, raw)
	if err != nil {
		slog.Warn("rejected mutation", "item_type", itemType, "error", err)
		return false
	}
	canonical, err := json.Marshal(entity)
	if err != nil {
		slog.Warn("rejected mutation", "item_type", itemType, "error", err)
		return false
	}

	e.mu.Lock()
	if e.snapshot == nil {
		e.mu.Unlock()
		slog.Warn("rejected mutation, no document loaded", "item_type", itemType)
		return false
	}
	title, description, err := ledger.Describe(*e.snapshot, entity)
	if err != nil {
		e.mu.Unlock()
		slog.Warn("rejected mutation", "item_type", itemType, "error", err)
		return false
	}

	item := models.QueueItem{
		ID:          uuid.NewString(),
		Type:        itemType,
		Status:      models.ItemStatusReady,
		APIAction:   models.APIActionAdd,
		Title:       title,
		Description: description,
		Data:        canonical,
	}
	e.items = append(e.items, item)
	e.persistLocked(ctx)
	view := e.viewLocked()
	e.mu.Unlock()

	slog.Info("enqueued mutation", "item_id", item.ID, "item_type", itemType, "title", title, "queue_length", len(view.items))
	e.publish(ctx, view)
	e.Process(ctx)
	return true
}

func toRaw(data any) (json.RawMessage, error) {
	switch v := data.(type) {
	case json.RawMessage:
		return v, nil
	case []byte:
		return v, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mutation data: %w", err)
	}
	return raw, nil
}

// Process replays queued items against the remote document until the
// queue is empty, an item fails, or the remote is unreachable. Items are
// committed strictly in order and never concurrently.
func (e *Engine) Process(ctx context.Context) {
	e.mu.Lock()
	if e.state == stateDraining {
		e.mu.Unlock()
		return
	}
	e.state = stateDraining
	e.mu.Unlock()

	for {
		item, documentID, ok := e.next(ctx)
		if !ok {
			return
		}
		doc, err := e.commit(ctx, item, documentID)
		if !e.settle(ctx, item, doc, err) {
			return
		}
	}
}

// next marks the head item processing and returns it. When there is
// nothing to do it moves the engine back to idle and returns false.
func (e *Engine) next(ctx context.Context) (models.QueueItem, string, bool) {
	e.mu.Lock()

	if len(e.items) == 0 {
		e.state = stateIdle
		view := e.viewLocked()
		e.mu.Unlock()
		e.publish(ctx, view)
		return models.QueueItem{}, "", false
	}

	head := &e.items[0]
	if head.Status == models.ItemStatusError {
		e.state = stateIdle
		e.mu.Unlock()
		slog.Debug("queue halted on errored item", "item_id", head.ID)
		return models.QueueItem{}, "", false
	}

	if e.documentID == "" || !e.remote.Authorized() {
		e.state = stateIdle
		e.mu.Unlock()
		slog.Debug("queue waiting for credential and document id", "queue_length", len(e.items))
		return models.QueueItem{}, "", false
	}

	if head.Status == models.ItemStatusProcessing {
		slog.Warn("resuming stale processing item", "item_id", head.ID)
	}
	head.Status = models.ItemStatusProcessing
	head.LastError = ""
	e.persistLocked(ctx)

	item := *head
	documentID := e.documentID
	view := e.viewLocked()
	e.mu.Unlock()

	e.publish(ctx, view)
	return item, documentID, true
}

// commit reads the current remote document, applies item and writes the
// merged document back in full.
func (e *Engine) commit(ctx context.Context, item models.QueueItem, documentID string) (models.Document, error) {
	current, err := e.remote.FetchDocument(ctx, documentID)
	if err != nil {
		return models.Document{}, err
	}

	updated, err := ledger.ApplyAdd(current, item.Type, item.Data, e.now().UTC())
	if err != nil {
		return models.Document{}, err
	}

	if err := e.remote.WriteDocument(ctx, documentID, updated); err != nil {
		return models.Document{}, err
	}
	return updated, nil
}

// settle records the outcome of a commit and reports whether draining
// should continue.
func (e *Engine) settle(ctx context.Context, item models.QueueItem, doc models.Document, commitErr error) bool {
	e.mu.Lock()
	idx := slices.IndexFunc(e.items, func(it models.QueueItem) bool { return it.ID == item.ID })

	if commitErr != nil && idx < 0 {
		// Cleared while in flight. Nothing to halt on, so keep draining
		// whatever was queued meanwhile.
		e.mu.Unlock()
		slog.Warn("commit failed for cleared item", "item_id", item.ID, "item_type", item.Type, "error", commitErr)
		return true
	}

	if commitErr != nil {
		e.items[idx].Status = models.ItemStatusError
		e.items[idx].LastError = commitErr.Error()
		e.state = stateIdle
		e.persistLocked(ctx)
		view := e.viewLocked()
		e.mu.Unlock()

		slog.Error("failed to commit queued item", "item_id", item.ID, "item_type", item.Type, "title", item.Title, "error", commitErr)
		e.publish(ctx, view)
		return false
	}

	if idx >= 0 {
		e.items = slices.Delete(e.items, idx, idx+1)
	}
	e.snapshot = &doc
	e.persistLocked(ctx)
	view := e.viewLocked()
	e.mu.Unlock()

	slog.Info("committed queued item", "item_id", item.ID, "item_type", item.Type, "title", item.Title, "queue_length", len(view.items))
	e.publish(ctx, view)
	e.publishDocument(ctx, doc)
	return true
}

// Retry puts an errored head item back to ready and starts processing. It
// returns false if the head is not errored.
func (e *Engine) Retry(ctx context.Context) bool {
	e.mu.Lock()
	if len(e.items) == 0 || e.items[0].Status != models.ItemStatusError {
		e.mu.Unlock()
		return false
	}
	e.items[0].Status = models.ItemStatusReady
	e.items[0].LastError = ""
	e.persistLocked(ctx)
	view := e.viewLocked()
	e.mu.Unlock()

	slog.Info("retrying errored item", "item_id", view.items[0].ID, "title", view.items[0].Title)
	e.publish(ctx, view)
	e.Process(ctx)
	return true
}

// Clear discards the whole queue.
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	dropped := len(e.items)
	e.items = []models.QueueItem{}
	e.persistLocked(ctx)
	view := e.viewLocked()
	e.mu.Unlock()

	slog.Info("queue cleared", "dropped", dropped)
	e.publish(ctx, view)
}

// persistLocked mirrors the queue to the store. Callers hold e.mu so saves
// land in mutation order.
func (e *Engine) persistLocked(ctx context.Context) {
	if err := e.store.Save(ctx, slices.Clone(e.items)); err != nil {
		slog.Error("failed to persist queue", "queue_length", len(e.items), "error", err)
	}
}

// queueView is a numbered copy of the queue taken under e.mu.
type queueView struct {
	seq    uint64
	items  []models.QueueItem
	status models.QueueStatus
}

func (e *Engine) viewLocked() queueView {
	e.seq++
	items := slices.Clone(e.items)
	return queueView{seq: e.seq, items: items, status: models.DeriveStatus(items)}
}

func (e *Engine) subscribers() []Listener {
	e.lmu.RLock()
	defer e.lmu.RUnlock()
	return slices.Clone(e.listeners)
}

// publish delivers view to the listeners. Views are numbered in mutation
// order, and a view older than one already delivered is dropped, so
// listeners never see the queue go backwards. Listeners must not call
// mutating engine methods.
func (e *Engine) publish(ctx context.Context, view queueView) {
	e.pmu.Lock()
	defer e.pmu.Unlock()
	if view.seq <= e.delivered {
		slog.Debug("dropping stale queue notification", "seq", view.seq, "delivered", e.delivered)
		return
	}
	e.delivered = view.seq
	for _, l := range e.subscribers() {
		l.QueueChanged(ctx, view.items, view.status)
	}
}

func (e *Engine) publishDocument(ctx context.Context, doc models.Document) {
	for _, l := range e.subscribers() {
		l.DocumentChanged(ctx, doc)
	}
}
