package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocjay1/ledger-sync/internal/ledger"
	"github.com/rocjay1/ledger-sync/internal/models"
)

// Client reads and writes ledger documents through a Store using the
// current credential, refreshing it when the store rejects it.
type Client struct {
	store     Store
	refresher Refresher
	policy    RetryPolicy

	mu       sync.RWMutex
	cred     *Credential
	onRotate func(Credential)
}

// NewClient creates a Client with the default retry policy.
func NewClient(store Store, refresher Refresher) *Client {
	return &Client{
		store:     store,
		refresher: refresher,
		policy:    DefaultRetryPolicy(),
	}
}

// SetCredential replaces the current credential.
func (c *Client) SetCredential(cred Credential) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cred = &cred
}

// ClearCredential drops the current credential.
func (c *Client) ClearCredential() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cred = nil
}

// Credential returns the current credential, if any.
func (c *Client) Credential() (Credential, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cred == nil {
		return Credential{}, false
	}
	return *c.cred, true
}

// OnRotate registers fn to receive every refreshed credential.
func (c *Client) OnRotate(fn func(Credential)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRotate = fn
}

// Authorized reports whether a credential is available.
func (c *Client) Authorized() bool {
	_, ok := c.Credential()
	return ok
}

// FetchDocument downloads and parses the document. A document that does not
// exist yet is returned as an empty ledger.
func (c *Client) FetchDocument(ctx context.Context, documentID string) (models.Document, error) {
	raw, err := withCredential(ctx, c, func(ctx context.Context, cred Credential) ([]byte, error) {
		return c.store.Fetch(ctx, documentID, cred.AccessToken)
	})
	if errors.Is(err, ErrDocumentNotFound) {
		slog.Info("remote document missing, starting empty ledger", "document_id", documentID)
		return models.NewDocument(time.Now().UTC()), nil
	}
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to fetch document %s: %w", documentID, err)
	}

	doc, err := ledger.ParseDocument(raw)
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to parse document %s: %w", documentID, err)
	}
	return doc, nil
}

// WriteDocument serializes doc and replaces the remote document with it.
func (c *Client) WriteDocument(ctx context.Context, documentID string, doc models.Document) error {
	raw, err := ledger.Serialize(doc)
	if err != nil {
		return err
	}

	_, err = withCredential(ctx, c, func(ctx context.Context, cred Credential) (struct{}, error) {
		return struct{}{}, c.store.Write(ctx, documentID, cred.AccessToken, raw)
	})
	if err != nil {
		return fmt.Errorf("failed to write document %s: %w", documentID, err)
	}
	return nil
}

func withCredential[T any](ctx context.Context, c *Client, op func(context.Context, Credential) (T, error)) (T, error) {
	var zero T
	cred, ok := c.Credential()
	if !ok {
		return zero, ErrNoCredential
	}

	result, used, err := WithRefresh(ctx, c.policy, cred, c.refresher, op)
	if used.AccessToken != cred.AccessToken {
		c.rotate(cred, used)
	}
	return result, err
}

// rotate stores a refreshed credential unless another one was set meanwhile.
func (c *Client) rotate(prev, next Credential) {
	c.mu.Lock()
	if c.cred == nil || c.cred.AccessToken != prev.AccessToken {
		c.mu.Unlock()
		return
	}
	c.cred = &next
	fn := c.onRotate
	c.mu.Unlock()

	slog.Info("access token rotated", "expires_on", next.ExpiresOn)
	if fn != nil {
		fn(next)
	}
}
