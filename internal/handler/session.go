package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocjay1/ledger-sync/internal/remote"
)

// SessionRequest carries the credential obtained by the client at sign-in.
type SessionRequest struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresOn    time.Time `json:"expiresOn"`
	DocumentID   string    `json:"documentId"`
}

// SessionResponse reports the state after a session change.
type SessionResponse struct {
	Authorized bool   `json:"authorized"`
	DocumentID string `json:"documentId"`
	QueueResponse
}

// HandlePostSession installs a credential, selects the target document,
// drains any pending mutations and reloads the document snapshot.
func (d *Dependencies) HandlePostSession(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMutationBytes)).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.AccessToken == "" && req.RefreshToken == "" {
		WriteError(w, http.StatusBadRequest, "accessToken or refreshToken is required")
		return
	}

	documentID := req.DocumentID
	if documentID == "" {
		documentID = d.Queue.DocumentID()
	}
	if documentID == "" {
		WriteError(w, http.StatusBadRequest, "documentId is required")
		return
	}

	d.Session.SetCredential(remote.Credential{
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		ExpiresOn:    req.ExpiresOn,
	})
	slog.Info("session started", "document_id", documentID)

	ctx := context.WithoutCancel(r.Context())

	d.Queue.SetDocumentID(ctx, documentID)
	if _, err := d.Queue.LoadDocument(ctx); err != nil {
		slog.Error("failed to load document after sign-in", "document_id", documentID, "error", err)
		WriteError(w, http.StatusBadGateway, "Failed to load document")
		return
	}

	WriteJSON(w, http.StatusOK, d.sessionResponse())
}

// HandleDeleteSession drops the credential. Pending mutations stay queued.
func (d *Dependencies) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	d.Session.ClearCredential()
	slog.Info("session ended")
	WriteJSON(w, http.StatusOK, d.sessionResponse())
}

func (d *Dependencies) sessionResponse() SessionResponse {
	return SessionResponse{
		Authorized:    d.Session.Authorized(),
		DocumentID:    d.Queue.DocumentID(),
		QueueResponse: d.queueResponse(),
	}
}
