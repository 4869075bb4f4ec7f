package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/rocjay1/ledger-sync/internal/models"
)

const maxMutationBytes = 1 << 20

// HandleGetQueue returns the pending queue and its status.
func (d *Dependencies) HandleGetQueue(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, d.queueResponse())
}

// HandleEnqueue queues a new entity for the list named by the {type} path value.
func (d *Dependencies) HandleEnqueue(w http.ResponseWriter, r *http.Request) {
	itemType := models.ItemType(r.PathValue("type"))
	if !itemType.Valid() {
		WriteError(w, http.StatusNotFound, "Unknown item type")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxMutationBytes))
	if err != nil {
		slog.Error("failed to read mutation body", "item_type", itemType, "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if !json.Valid(body) {
		WriteError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// The drain may outlive the request, so it must not be cancelled with it.
	if !d.Queue.Enqueue(context.WithoutCancel(r.Context()), itemType, json.RawMessage(body)) {
		WriteError(w, http.StatusBadRequest, "Mutation rejected")
		return
	}

	WriteJSON(w, http.StatusAccepted, d.queueResponse())
}

// HandleClearQueue discards every pending mutation.
func (d *Dependencies) HandleClearQueue(w http.ResponseWriter, r *http.Request) {
	d.Queue.Clear(r.Context())
	WriteJSON(w, http.StatusOK, d.queueResponse())
}

// HandleRetryQueue resets an errored head item and resumes processing.
func (d *Dependencies) HandleRetryQueue(w http.ResponseWriter, r *http.Request) {
	if !d.Queue.Retry(context.WithoutCancel(r.Context())) {
		WriteError(w, http.StatusConflict, "Queue is not halted")
		return
	}
	WriteJSON(w, http.StatusOK, d.queueResponse())
}

// HandleProcessQueue triggers a drain, e.g. after connectivity returns.
func (d *Dependencies) HandleProcessQueue(w http.ResponseWriter, r *http.Request) {
	d.Queue.Process(context.WithoutCancel(r.Context()))
	WriteJSON(w, http.StatusOK, d.queueResponse())
}
