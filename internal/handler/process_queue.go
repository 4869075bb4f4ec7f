package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/rocjay1/ledger-sync/internal/models"
)

// invokeRequest represents the payload from Azure Functions Custom Handler.
type invokeRequest struct {
	Data     map[string]any `json:"Data"`
	Metadata map[string]any `json:"Metadata"`
}

// MutationMessage is a mutation delivered through the inbound storage queue.
type MutationMessage struct {
	Type models.ItemType `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ProcessQueue handles the queue trigger that feeds mutations from other
// producers into the write queue.
func (d *Dependencies) ProcessQueue(w http.ResponseWriter, r *http.Request) {
	var invokeReq invokeRequest
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("failed to read queue request body", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if err := json.Unmarshal(bodyBytes, &invokeReq); err != nil {
		slog.Error("failed to unmarshal queue request", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to unmarshal request")
		return
	}

	queueItemVal, ok := invokeReq.Data["queueItem"]
	if !ok {
		queueItemVal, ok = invokeReq.Data["queueitem"]
		if !ok {
			WriteError(w, http.StatusBadRequest, "Missing queueItem in Data")
			return
		}
	}

	msg, err := decodeMutationMessage(queueItemVal)
	if err != nil {
		slog.Error("failed to decode mutation message", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid queueItem")
		return
	}

	if !msg.Type.Valid() || len(msg.Data) == 0 {
		// Consume the message so it doesn't retry forever.
		slog.Warn("discarding malformed mutation message", "item_type", msg.Type)
		w.WriteHeader(http.StatusOK)
		return
	}

	if !d.Queue.Enqueue(context.WithoutCancel(r.Context()), msg.Type, msg.Data) {
		slog.Warn("discarding rejected mutation message", "item_type", msg.Type)
		w.WriteHeader(http.StatusOK)
		return
	}

	slog.Info("queued mutation from storage queue", "item_type", msg.Type, "queue_status", d.Queue.Status())
	w.WriteHeader(http.StatusOK)
}

// decodeMutationMessage accepts the queue item as a JSON object, a JSON
// string or a base64 encoded JSON string.
func decodeMutationMessage(v any) (MutationMessage, error) {
	var msg MutationMessage
	var raw []byte
	switch val := v.(type) {
	case string:
		raw = []byte(val)
		if decoded, err := base64.StdEncoding.DecodeString(val); err == nil {
			raw = decoded
		}
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return msg, err
		}
		raw = b
	}
	err := json.Unmarshal(raw, &msg)
	return msg, err
}
