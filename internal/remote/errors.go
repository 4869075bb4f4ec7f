package remote

import (
	"errors"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
)

var (
	// ErrUnauthorized marks a store or refresh failure caused by an expired
	// or invalid credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoCredential is returned when an operation runs before a credential
	// has been supplied.
	ErrNoCredential = errors.New("no credential available")

	// ErrDocumentNotFound is returned by a Store when the document id does
	// not exist yet.
	ErrDocumentNotFound = errors.New("document not found")
)

// IsAuthError reports whether err belongs to the authentication failure
// class that a credential refresh can fix.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode == http.StatusUnauthorized || respErr.StatusCode == http.StatusForbidden
	}
	return false
}
