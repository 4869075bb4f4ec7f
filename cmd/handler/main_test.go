package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rocjay1/ledger-sync/internal/services"
	"github.com/rocjay1/ledger-sync/internal/syncqueue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingMiddleware_PreservesBodyAndStatus(t *testing.T) {
	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = string(b)
		w.WriteHeader(http.StatusAccepted)
	})

	w := httptest.NewRecorder()
	loggingMiddleware(next).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/queue/tags", strings.NewReader(`{"name":"x"}`)))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, `{"name":"x"}`, got)
}

func TestNewQueueStore(t *testing.T) {
	t.Run("File", func(t *testing.T) {
		t.Setenv("QUEUE_STORE_PATH", filepath.Join(t.TempDir(), "queue.json"))
		store, err := newQueueStore()
		require.NoError(t, err)
		assert.IsType(t, &services.FileQueueStore{}, store)
	})

	t.Run("Memory", func(t *testing.T) {
		t.Setenv("QUEUE_STORE_PATH", "")
		t.Setenv("TABLE_SERVICE_URL", "")
		store, err := newQueueStore()
		require.NoError(t, err)
		assert.IsType(t, &syncqueue.MemoryStore{}, store)
	})
}
