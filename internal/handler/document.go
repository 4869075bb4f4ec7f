package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocjay1/ledger-sync/internal/syncqueue"
)

// HandleGetDocument returns the last known document. With ?refresh=true
// the document is fetched from the remote store first.
func (d *Dependencies) HandleGetDocument(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "true" {
		doc, err := d.Queue.LoadDocument(r.Context())
		if err != nil {
			if errors.Is(err, syncqueue.ErrNotConnected) {
				WriteError(w, http.StatusServiceUnavailable, "Not connected")
				return
			}
			slog.Error("failed to load document", "document_id", d.Queue.DocumentID(), "error", err)
			WriteError(w, http.StatusBadGateway, "Failed to load document")
			return
		}
		WriteJSON(w, http.StatusOK, doc)
		return
	}

	doc, ok := d.Queue.Snapshot()
	if !ok {
		WriteError(w, http.StatusNotFound, "No document loaded")
		return
	}
	WriteJSON(w, http.StatusOK, doc)
}
