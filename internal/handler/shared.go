package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rocjay1/ledger-sync/internal/models"
)

// Dependencies holds the services required by the handlers.
type Dependencies struct {
	Queue   QueueEngine
	Session SessionClient
}

// QueueResponse is the body returned by the queue endpoints.
type QueueResponse struct {
	Items  []models.QueueItem `json:"items"`
	Status models.QueueStatus `json:"status"`
}

func (d *Dependencies) queueResponse() QueueResponse {
	items := d.Queue.Items()
	if items == nil {
		items = []models.QueueItem{}
	}
	return QueueResponse{Items: items, Status: models.DeriveStatus(items)}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}
