package services

import (
	"context"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/rocjay1/ledger-sync/internal/models"
)

// MockCredential implements azcore.TokenCredential
type MockCredential struct {
	GetTokenFunc func(ctx context.Context, options policy.TokenRequestOptions) (azcore.AccessToken, error)
}

func (m *MockCredential) GetToken(ctx context.Context, options policy.TokenRequestOptions) (azcore.AccessToken, error) {
	if m.GetTokenFunc != nil {
		return m.GetTokenFunc(ctx, options)
	}
	return azcore.AccessToken{Token: "mock-token", ExpiresOn: time.Now().Add(time.Hour)}, nil
}

// MockEventSender records sent events.
type MockEventSender struct {
	mu       sync.Mutex
	Sent     []any
	SendFunc func(ctx context.Context, message any) error
}

func (m *MockEventSender) Send(ctx context.Context, message any) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, message)
	m.mu.Unlock()
	if m.SendFunc != nil {
		return m.SendFunc(ctx, message)
	}
	return nil
}

// MockHaltNotifier records halt alerts.
type MockHaltNotifier struct {
	mu                     sync.Mutex
	Calls                  [][]models.QueueItem
	Recipients             [][]string
	SendQueueHaltEmailFunc func(ctx context.Context, recipients []string, items []models.QueueItem) error
}

func (m *MockHaltNotifier) SendQueueHaltEmail(ctx context.Context, recipients []string, items []models.QueueItem) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, items)
	m.Recipients = append(m.Recipients, recipients)
	m.mu.Unlock()
	if m.SendQueueHaltEmailFunc != nil {
		return m.SendQueueHaltEmailFunc(ctx, recipients, items)
	}
	return nil
}
