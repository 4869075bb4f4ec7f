package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocjay1/ledger-sync/internal/syncqueue"
)

// HandleSyncTrigger runs on a timer. It drains whatever is pending and then
// refreshes the document snapshot so edits made elsewhere show up.
func (d *Dependencies) HandleSyncTrigger(w http.ResponseWriter, r *http.Request) {
	// A host-side cancel must not abort a write halfway.
	ctx := context.WithoutCancel(r.Context())
	slog.Info("starting scheduled sync", "pending", len(d.Queue.Items()))

	d.Queue.Process(ctx)

	if _, err := d.Queue.LoadDocument(ctx); err != nil {
		if errors.Is(err, syncqueue.ErrNotConnected) {
			slog.Info("scheduled sync skipped document refresh, not connected")
		} else {
			slog.Error("scheduled sync failed to refresh document", "document_id", d.Queue.DocumentID(), "error", err)
			http.Error(w, "Failed to refresh document", http.StatusInternalServerError)
			return
		}
	}

	slog.Info("scheduled sync complete", "queue_status", d.Queue.Status(), "pending", len(d.Queue.Items()))
	w.WriteHeader(http.StatusOK)
}
