package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/rocjay1/ledger-sync/internal/remote"
	"golang.org/x/oauth2"
)

// OAuthRefresher exchanges a refresh token for a new access token at an
// OAuth 2.0 token endpoint.
type OAuthRefresher struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewOAuthRefresher creates a refresher from OAUTH_TOKEN_URL,
// OAUTH_CLIENT_ID and OAUTH_CLIENT_SECRET.
func NewOAuthRefresher() (*OAuthRefresher, error) {
	tokenURL := os.Getenv("OAUTH_TOKEN_URL")
	if tokenURL == "" {
		return nil, fmt.Errorf("OAUTH_TOKEN_URL environment variable is required")
	}

	clientID := os.Getenv("OAUTH_CLIENT_ID")
	if clientID == "" {
		return nil, fmt.Errorf("OAUTH_CLIENT_ID environment variable is required")
	}

	scope := os.Getenv("TOKEN_SCOPE")
	if scope == "" {
		scope = defaultTokenScope
	}

	slog.Info("initializing oauth refresher", "token_url", tokenURL, "client_id", clientID)
	return &OAuthRefresher{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: os.Getenv("OAUTH_CLIENT_SECRET"),
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
			Scopes: strings.Fields(scope),
		},
		httpClient: http.DefaultClient,
	}, nil
}

// Refresh runs the refresh_token grant. A rejected grant is reported as
// remote.ErrUnauthorized so the caller can ask the user to sign in again.
func (r *OAuthRefresher) Refresh(ctx context.Context, cred remote.Credential) (remote.Credential, error) {
	if cred.RefreshToken == "" {
		return remote.Credential{}, fmt.Errorf("no refresh token: %w", remote.ErrUnauthorized)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)
	token, err := r.config.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken}).Token()
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) && rejectedGrant(rErr) {
			slog.Warn("refresh token rejected", "error_code", rErr.ErrorCode)
			return remote.Credential{}, fmt.Errorf("refresh token rejected: %w", remote.ErrUnauthorized)
		}
		return remote.Credential{}, fmt.Errorf("failed to refresh token: %w", err)
	}

	refreshToken := token.RefreshToken
	if refreshToken == "" {
		refreshToken = cred.RefreshToken
	}

	slog.Info("refreshed access token", "expires_on", token.Expiry)
	return remote.Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: refreshToken,
		ExpiresOn:    token.Expiry,
	}, nil
}

func rejectedGrant(err *oauth2.RetrieveError) bool {
	if err.ErrorCode == "invalid_grant" || err.ErrorCode == "invalid_client" {
		return true
	}
	return err.Response != nil &&
		(err.Response.StatusCode == http.StatusUnauthorized || err.Response.StatusCode == http.StatusForbidden)
}
