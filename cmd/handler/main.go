package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/rocjay1/ledger-sync/internal/handler"
	"github.com/rocjay1/ledger-sync/internal/remote"
	"github.com/rocjay1/ledger-sync/internal/services"
	"github.com/rocjay1/ledger-sync/internal/syncqueue"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	ctx := context.Background()

	// Initialize Services
	documentStore, err := services.NewBlobDocumentStore()
	if err != nil {
		slog.Error("Failed to init BlobDocumentStore", "error", err)
		os.Exit(1)
	}

	queueStore, err := newQueueStore()
	if err != nil {
		slog.Error("Failed to init queue store", "error", err)
		os.Exit(1)
	}

	refresher, err := newRefresher()
	if err != nil {
		slog.Error("Failed to init credential refresher", "error", err)
		os.Exit(1)
	}

	client := remote.NewClient(documentStore, refresher)
	client.OnRotate(func(cred remote.Credential) {
		slog.Info("credential rotated", "expires_on", cred.ExpiresOn)
	})

	engine, err := syncqueue.NewEngine(ctx, queueStore, client)
	if err != nil {
		slog.Error("Failed to init sync engine", "error", err)
		os.Exit(1)
	}

	if os.Getenv("QUEUE_SERVICE_URL") != "" {
		events, err := services.NewEventQueue(ctx)
		if err != nil {
			slog.Warn("Failed to init EventQueue (continuing without events)", "error", err)
		} else {
			engine.Subscribe(services.NewEventPublisher(events))
		}
	}

	mailer, err := services.NewMailer(nil)
	if err != nil {
		slog.Warn("Failed to init Mailer (continuing without alerts)", "error", err)
	} else if alerter := services.NewQueueAlerter(mailer); alerter != nil {
		engine.Subscribe(alerter)
	}

	if documentID := os.Getenv("LEDGER_DOCUMENT_ID"); documentID != "" {
		engine.SetDocumentID(ctx, documentID)
	}

	deps := &handler.Dependencies{
		Queue:   engine,
		Session: client,
	}

	// Router
	mux := http.NewServeMux()
	deps.Register(mux)

	// Get port from environment or default to 8080
	port := os.Getenv("FUNCTIONS_CUSTOMHANDLER_PORT")
	if port == "" {
		port = "8080"
	}

	// Wrap mux with logging middleware
	loggedMux := loggingMiddleware(mux)

	slog.Info("Starting server", "port", port, "pending", len(engine.Items()))
	if err := http.ListenAndServe(":"+port, loggedMux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// newQueueStore picks the queue persistence: a local file, an Azure table,
// or process memory when neither is configured.
func newQueueStore() (syncqueue.QueueStore, error) {
	if path := os.Getenv("QUEUE_STORE_PATH"); path != "" {
		return services.NewFileQueueStore(path)
	}
	if os.Getenv("TABLE_SERVICE_URL") != "" {
		return services.NewTableQueueStore()
	}
	slog.Warn("no queue store configured, pending mutations will not survive a restart")
	return syncqueue.NewMemoryStore(), nil
}

func newRefresher() (remote.Refresher, error) {
	if os.Getenv("OAUTH_TOKEN_URL") != "" {
		return services.NewOAuthRefresher()
	}
	return services.NewTokenCredentialRefresher(nil)
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Read body for logging (and restore it)
		var bodyBytes []byte
		if r.Body != nil {
			bodyBytes, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		slog.Debug("incoming request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_type", r.Header.Get("Content-Type"),
			"content_length", len(bodyBytes),
		)

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		slog.Info("request completed", "method", r.Method, "path", r.URL.Path, "status", rw.status, "duration", duration)
	})
}
