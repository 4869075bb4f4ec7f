package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/rocjay1/ledger-sync/internal/csvparse"
	"github.com/rocjay1/ledger-sync/internal/models"
)

// ImportResponse reports the outcome of a CSV import.
type ImportResponse struct {
	Queued   int      `json:"queued"`
	Rejected int      `json:"rejected"`
	Errors   []string `json:"errors"`
	QueueResponse
}

// HandleImportActions queues one action per valid row of a CSV body.
// Category names are resolved against the current document snapshot.
func (d *Dependencies) HandleImportActions(w http.ResponseWriter, r *http.Request) {
	doc, ok := d.Queue.Snapshot()
	if !ok {
		WriteError(w, http.StatusConflict, "No document loaded")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxMutationBytes))
	if err != nil {
		slog.Error("failed to read import body", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	actions, errors := csvparse.ParseActions(string(body), doc)
	slog.Info("parsed action import", "actions_count", len(actions), "errors_count", len(errors))
	if len(errors) > 0 && len(actions) == 0 {
		WriteJSON(w, http.StatusBadRequest, ImportResponse{Errors: errors, QueueResponse: d.queueResponse()})
		return
	}

	ctx := context.WithoutCancel(r.Context())
	resp := ImportResponse{Errors: errors}
	for _, a := range actions {
		if d.Queue.Enqueue(ctx, models.ItemTypeActions, a) {
			resp.Queued++
		} else {
			resp.Rejected++
		}
	}
	if resp.Errors == nil {
		resp.Errors = []string{}
	}
	resp.QueueResponse = d.queueResponse()

	slog.Info("action import complete", "queued", resp.Queued, "rejected", resp.Rejected)
	WriteJSON(w, http.StatusAccepted, resp)
}
