package remote

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultMaxRefreshes is the number of extra attempts made after the first
// call fails with an auth error.
const DefaultMaxRefreshes = 2

// RetryPolicy decides which failures trigger a credential refresh and how
// many refreshes are attempted.
type RetryPolicy struct {
	MaxRefreshes int
	IsAuthError  func(error) bool
}

// DefaultRetryPolicy refreshes up to DefaultMaxRefreshes times on errors
// classified by IsAuthError.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRefreshes: DefaultMaxRefreshes, IsAuthError: IsAuthError}
}

// WithRefresh runs op with cred. When op fails with an auth error it mints a
// new credential through refresher and runs op again, up to
// policy.MaxRefreshes times. Any other error is returned immediately. The
// returned credential is the one the last attempt used, so callers can
// persist a rotated token.
func WithRefresh[T any](ctx context.Context, policy RetryPolicy, cred Credential, refresher Refresher, op func(context.Context, Credential) (T, error)) (T, Credential, error) {
	var zero T
	isAuth := policy.IsAuthError
	if isAuth == nil {
		isAuth = IsAuthError
	}

	for attempt := 0; ; attempt++ {
		result, err := op(ctx, cred)
		if err == nil {
			return result, cred, nil
		}
		if !isAuth(err) {
			return zero, cred, err
		}
		if attempt >= policy.MaxRefreshes || refresher == nil {
			return zero, cred, fmt.Errorf("credential rejected after %d refreshes: %w", attempt, err)
		}

		slog.Warn("credential rejected, refreshing", "attempt", attempt+1, "max_refreshes", policy.MaxRefreshes, "error", err)
		next, refreshErr := refresher.Refresh(ctx, cred)
		if refreshErr != nil {
			return zero, cred, fmt.Errorf("failed to refresh credential: %w", refreshErr)
		}
		if next.RefreshToken == "" {
			next.RefreshToken = cred.RefreshToken
		}
		cred = next
	}
}
