package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/rocjay1/ledger-sync/internal/models"
	"github.com/rocjay1/ledger-sync/internal/syncqueue"
)

const (
	queuePartition = "queue"

	// Table string properties hold at most 64 KiB of UTF-16, so the encoded
	// queue is spread over numbered properties.
	maxChunkBytes = 30000
)

// TableQueueStore persists the pending queue as a single Azure Table entity.
type TableQueueStore struct {
	serviceClient *aztables.ServiceClient
	table         string
	rowKey        string
}

// NewTableQueueStore creates a new TableQueueStore instance.
func NewTableQueueStore() (*TableQueueStore, error) {
	tableURL := os.Getenv("TABLE_SERVICE_URL")
	if tableURL == "" {
		return nil, fmt.Errorf("TABLE_SERVICE_URL environment variable is required")
	}

	table := os.Getenv("QUEUE_TABLE")
	if table == "" {
		table = "pendingqueue"
	}

	rowKey := os.Getenv("QUEUE_STORE_KEY")
	if rowKey == "" {
		rowKey = "ledger.queue"
	}

	var client *aztables.ServiceClient

	// Check if running locally with Azurite (http endpoint)
	if isLocal(tableURL) {
		slog.Info("using Azurite credentials for table queue store")
		name, key := getAzuriteCredentials()
		cred, err := aztables.NewSharedKeyCredential(name, key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		var err2 error
		client, err2 = aztables.NewServiceClientWithSharedKey(tableURL, cred, nil)
		if err2 != nil {
			return nil, fmt.Errorf("failed to create table service client with shared key: %w", err2)
		}
	} else {
		// Production: Managed Identity
		cred, err := newDefaultAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		var err2 error
		client, err2 = aztables.NewServiceClient(tableURL, cred, nil)
		if err2 != nil {
			return nil, fmt.Errorf("failed to create table service client: %w", err2)
		}
	}

	store := &TableQueueStore{
		serviceClient: client,
		table:         table,
		rowKey:        rowKey,
	}

	if err := store.CreateTable(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	slog.Info("table queue store initialized successfully",
		"table_url", tableURL,
		"table", table,
		"row_key", rowKey,
	)
	return store, nil
}

// CreateTable ensures the queue table exists.
func (s *TableQueueStore) CreateTable(ctx context.Context) error {
	_, err := s.serviceClient.CreateTable(ctx, s.table, nil)
	if err != nil {
		// Ignore error if table already exists
		var azErr *azcore.ResponseError
		if errors.As(err, &azErr) && azErr.ErrorCode == "TableAlreadyExists" {
			return nil
		}
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}
	return nil
}

// Load reads the stored queue. A missing entity is an empty queue.
func (s *TableQueueStore) Load(ctx context.Context) ([]models.QueueItem, error) {
	client := s.serviceClient.NewClient(s.table)

	resp, err := client.GetEntity(ctx, queuePartition, s.rowKey, nil)
	if err != nil {
		var azErr *azcore.ResponseError
		if errors.As(err, &azErr) && azErr.StatusCode == http.StatusNotFound {
			return []models.QueueItem{}, nil
		}
		return nil, fmt.Errorf("failed to get queue entity: %w", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(resp.Value, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal queue entity: %w", err)
	}

	encoded, err := joinChunks(parsed)
	if err != nil {
		return nil, err
	}
	return syncqueue.DecodeQueue([]byte(encoded))
}

// Save replaces the stored queue with items.
func (s *TableQueueStore) Save(ctx context.Context, items []models.QueueItem) error {
	encoded, err := syncqueue.EncodeQueue(items)
	if err != nil {
		return err
	}

	chunks := splitChunks(string(encoded), maxChunkBytes)
	entity := map[string]any{
		"PartitionKey": queuePartition,
		"RowKey":       s.rowKey,
		"Chunks":       len(chunks),
	}
	for i, chunk := range chunks {
		entity[chunkProperty(i)] = chunk
	}

	b, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal queue entity: %w", err)
	}

	client := s.serviceClient.NewClient(s.table)
	_, err = client.UpsertEntity(ctx, b, &aztables.UpsertEntityOptions{UpdateMode: aztables.UpdateModeReplace})
	if err != nil {
		return fmt.Errorf("failed to upsert queue entity: %w", err)
	}

	slog.Debug("saved queue", "table", s.table, "items", len(items), "chunks", len(chunks))
	return nil
}

func chunkProperty(i int) string {
	return fmt.Sprintf("Items%d", i)
}

// splitChunks cuts s into pieces of at most size bytes without splitting a
// UTF-8 sequence. It always returns at least one chunk.
func splitChunks(s string, size int) []string {
	if len(s) <= size {
		return []string{s}
	}
	var chunks []string
	for len(s) > size {
		cut := size
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		chunks = append(chunks, s[:cut])
		s = s[cut:]
	}
	return append(chunks, s)
}

func joinChunks(entity map[string]any) (string, error) {
	count, ok := entity["Chunks"].(float64)
	if !ok {
		return "", fmt.Errorf("queue entity has no chunk count")
	}
	var sb strings.Builder
	for i := 0; i < int(count); i++ {
		chunk, ok := entity[chunkProperty(i)].(string)
		if !ok {
			return "", fmt.Errorf("queue entity is missing %s", chunkProperty(i))
		}
		sb.WriteString(chunk)
	}
	return sb.String(), nil
}
