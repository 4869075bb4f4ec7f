package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rocjay1/ledger-sync/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileQueueStore(t *testing.T) {
	ctx := context.Background()

	t.Run("MissingFileIsEmpty", func(t *testing.T) {
		store, err := NewFileQueueStore(filepath.Join(t.TempDir(), "nested", "queue.json"))
		require.NoError(t, err)

		items, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("SaveThenLoad", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "queue.json")
		store, err := NewFileQueueStore(path)
		require.NoError(t, err)

		items := []models.QueueItem{{
			ID:          "q1",
			Type:        models.ItemTypeCategories,
			Status:      models.ItemStatusReady,
			APIAction:   models.APIActionAdd,
			Title:       "Food",
			Description: "New expense category",
			Data:        json.RawMessage(`{"name":"Food","sortPriority":1,"type":"expense"}`),
		}}
		require.NoError(t, store.Save(ctx, items))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.Equal(t, "q1", loaded[0].ID)
		assert.JSONEq(t, string(items[0].Data), string(loaded[0].Data))

		require.NoError(t, store.Save(ctx, nil))
		loaded, err = store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, loaded)

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temp files should be cleaned up")
	})

	t.Run("CorruptFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "queue.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
		store, err := NewFileQueueStore(path)
		require.NoError(t, err)

		_, err = store.Load(ctx)
		assert.Error(t, err)
	})

	t.Run("EmptyPath", func(t *testing.T) {
		_, err := NewFileQueueStore("")
		assert.Error(t, err)
	})
}
