package handler

import (
	"context"
	"sync"

	"github.com/rocjay1/ledger-sync/internal/models"
	"github.com/rocjay1/ledger-sync/internal/remote"
)

// MockQueueEngine is a mock implementation of QueueEngine
type MockQueueEngine struct {
	ItemsFunc         func() []models.QueueItem
	EnqueueFunc       func(ctx context.Context, itemType models.ItemType, data any) bool
	ProcessFunc       func(ctx context.Context)
	RetryFunc         func(ctx context.Context) bool
	ClearFunc         func(ctx context.Context)
	SnapshotFunc      func() (models.Document, bool)
	SetDocumentIDFunc func(ctx context.Context, documentID string)
	LoadDocumentFunc  func(ctx context.Context) (models.Document, error)

	documentID string
}

func (m *MockQueueEngine) Items() []models.QueueItem {
	if m.ItemsFunc != nil {
		return m.ItemsFunc()
	}
	return nil
}

func (m *MockQueueEngine) Status() models.QueueStatus {
	return models.DeriveStatus(m.Items())
}

func (m *MockQueueEngine) Enqueue(ctx context.Context, itemType models.ItemType, data any) bool {
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, itemType, data)
	}
	return true
}

func (m *MockQueueEngine) Process(ctx context.Context) {
	if m.ProcessFunc != nil {
		m.ProcessFunc(ctx)
	}
}

func (m *MockQueueEngine) Retry(ctx context.Context) bool {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx)
	}
	return false
}

func (m *MockQueueEngine) Clear(ctx context.Context) {
	if m.ClearFunc != nil {
		m.ClearFunc(ctx)
	}
}

func (m *MockQueueEngine) Snapshot() (models.Document, bool) {
	if m.SnapshotFunc != nil {
		return m.SnapshotFunc()
	}
	return models.Document{}, false
}

func (m *MockQueueEngine) DocumentID() string {
	return m.documentID
}

func (m *MockQueueEngine) SetDocumentID(ctx context.Context, documentID string) {
	m.documentID = documentID
	if m.SetDocumentIDFunc != nil {
		m.SetDocumentIDFunc(ctx, documentID)
	}
}

func (m *MockQueueEngine) LoadDocument(ctx context.Context) (models.Document, error) {
	if m.LoadDocumentFunc != nil {
		return m.LoadDocumentFunc(ctx)
	}
	return models.Document{}, nil
}

// MockSessionClient is a mock implementation of SessionClient
type MockSessionClient struct {
	mu   sync.Mutex
	cred *remote.Credential
}

func (m *MockSessionClient) SetCredential(cred remote.Credential) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = &cred
}

func (m *MockSessionClient) ClearCredential() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = nil
}

func (m *MockSessionClient) Authorized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cred != nil
}

func remoteCredential(accessToken string) remote.Credential {
	return remote.Credential{AccessToken: accessToken}
}
