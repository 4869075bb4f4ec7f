// Package remote wraps a whole-document store with short-lived credentials
// that are refreshed and retried when the store rejects them.
package remote

import (
	"context"
	"time"
)

// Credential is an access token plus the material needed to mint a new one.
type Credential struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresOn    time.Time `json:"expiresOn"`
}

// Refresher mints a new access token from the refresh material in cred.
type Refresher interface {
	Refresh(ctx context.Context, cred Credential) (Credential, error)
}

// RefreshFunc adapts a plain function to the Refresher interface.
type RefreshFunc func(ctx context.Context, cred Credential) (Credential, error)

// Refresh calls f(ctx, cred).
func (f RefreshFunc) Refresh(ctx context.Context, cred Credential) (Credential, error) {
	return f(ctx, cred)
}

// Store is the raw remote document store. Documents are addressed by an
// opaque id and are always read and replaced whole.
type Store interface {
	Fetch(ctx context.Context, documentID, accessToken string) ([]byte, error)
	Write(ctx context.Context, documentID, accessToken string, raw []byte) error
}
