package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/rocjay1/ledger-sync/internal/remote"
)

const (
	// Standard Azurite account name and key
	azuriteAccountName = "devstoreaccount1"
	azuriteAccountKey  = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="

	defaultTokenScope = "https://storage.azure.com/.default"
)

// isLocal checks if the service URL indicates a local environment (starts with http).
func isLocal(serviceURL string) bool {
	return strings.HasPrefix(serviceURL, "http:")
}

// getAzuriteCredentials returns the hardcoded Azurite account name and key.
func getAzuriteCredentials() (string, string) {
	return azuriteAccountName, azuriteAccountKey
}

// newDefaultAzureCredential creates a new DefaultAzureCredential.
func newDefaultAzureCredential() (azcore.TokenCredential, error) {
	slog.Info("using default Azure credentials")
	return azidentity.NewDefaultAzureCredential(nil)
}

// accessTokenCredential presents a caller-supplied bearer token to the
// Azure SDK pipelines.
type accessTokenCredential struct {
	token string
}

func (c accessTokenCredential) GetToken(ctx context.Context, options policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: c.token, ExpiresOn: time.Now().Add(time.Hour)}, nil
}

// TokenCredentialRefresher mints access tokens from an Azure token credential.
type TokenCredentialRefresher struct {
	cred   azcore.TokenCredential
	scopes []string
}

// NewTokenCredentialRefresher creates a refresher for the TOKEN_SCOPE scope.
// If cred is nil, it defaults to using DefaultAzureCredential.
func NewTokenCredentialRefresher(cred azcore.TokenCredential) (*TokenCredentialRefresher, error) {
	scope := os.Getenv("TOKEN_SCOPE")
	if scope == "" {
		scope = defaultTokenScope
	}

	if cred == nil {
		var err error
		cred, err = newDefaultAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
	}

	return &TokenCredentialRefresher{cred: cred, scopes: []string{scope}}, nil
}

// Refresh requests a new token. The refresh token in cred is kept as is.
func (r *TokenCredentialRefresher) Refresh(ctx context.Context, cred remote.Credential) (remote.Credential, error) {
	token, err := r.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: r.scopes})
	if err != nil {
		return remote.Credential{}, fmt.Errorf("failed to get access token: %w", err)
	}

	slog.Info("minted access token", "scopes", r.scopes, "expires_on", token.ExpiresOn)
	return remote.Credential{
		AccessToken:  token.Token,
		RefreshToken: cred.RefreshToken,
		ExpiresOn:    token.ExpiresOn,
	}, nil
}
