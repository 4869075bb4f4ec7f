package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/rocjay1/ledger-sync/internal/models"
	"github.com/rocjay1/ledger-sync/internal/syncqueue"
)

// FileQueueStore persists the pending queue as a JSON file on local disk.
type FileQueueStore struct {
	path string
	mu   sync.Mutex
}

// NewFileQueueStore creates a store at path, creating parent directories.
func NewFileQueueStore(path string) (*FileQueueStore, error) {
	if path == "" {
		return nil, fmt.Errorf("queue store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create queue store directory: %w", err)
	}
	slog.Info("file queue store initialized", "path", path)
	return &FileQueueStore{path: path}, nil
}

// Load reads the queue file. A missing file is an empty queue.
func (s *FileQueueStore) Load(ctx context.Context) ([]models.QueueItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.QueueItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read queue file: %w", err)
	}
	return syncqueue.DecodeQueue(raw)
}

// Save writes items to a temporary file and renames it over the queue file.
func (s *FileQueueStore) Save(ctx context.Context, items []models.QueueItem) error {
	raw, err := syncqueue.EncodeQueue(items)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp queue file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp queue file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp queue file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace queue file: %w", err)
	}
	return nil
}
