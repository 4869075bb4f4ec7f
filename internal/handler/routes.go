package handler

import (
	"log/slog"
	"net/http"
	"strings"
)

// Register adds the API routes and the Azure Functions trigger routes to mux.
func (d *Dependencies) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/queue", d.HandleGetQueue)
	mux.HandleFunc("DELETE /api/queue", d.HandleClearQueue)
	mux.HandleFunc("POST /api/queue/retry", d.HandleRetryQueue)
	mux.HandleFunc("POST /api/queue/process", d.HandleProcessQueue)
	mux.HandleFunc("POST /api/queue/{type}", d.HandleEnqueue)

	mux.HandleFunc("POST /api/import/actions", d.HandleImportActions)

	mux.HandleFunc("GET /api/document", d.HandleGetDocument)

	mux.HandleFunc("POST /api/session", d.HandlePostSession)
	mux.HandleFunc("DELETE /api/session", d.HandleDeleteSession)

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Adapter for HTTP Trigger (since enableForwardingHttpRequest is false)
	mux.HandleFunc("/HttpTrigger", HandleHTTPTrigger(mux))

	mux.HandleFunc("/ProcessQueue", d.ProcessQueue)
	mux.HandleFunc("/SyncTrigger", d.HandleSyncTrigger)

	// Catch-all handler for unmatched requests to debug what the Host is sending
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		headers := make(map[string]string)
		for k, v := range r.Header {
			headers[k] = strings.Join(v, ", ")
		}
		slog.Warn("unmatched request",
			"method", r.Method,
			"path", r.URL.Path,
			"headers", headers,
		)
		http.NotFound(w, r)
	})
}
