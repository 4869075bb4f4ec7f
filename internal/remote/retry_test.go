package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls  int
	tokens []string
	err    error
}

func (r *countingRefresher) Refresh(ctx context.Context, cred Credential) (Credential, error) {
	if r.err != nil {
		return Credential{}, r.err
	}
	token := r.tokens[r.calls]
	r.calls++
	return Credential{AccessToken: token}, nil
}

func TestWithRefresh_SucceedsAfterTwoAuthFailures(t *testing.T) {
	refresher := &countingRefresher{tokens: []string{"token-2", "token-3"}}
	var seen []string

	result, cred, err := WithRefresh(context.Background(), DefaultRetryPolicy(), Credential{AccessToken: "token-1", RefreshToken: "refresh"}, refresher,
		func(ctx context.Context, c Credential) (string, error) {
			seen = append(seen, c.AccessToken)
			if len(seen) < 3 {
				return "", fmt.Errorf("fetch: %w", ErrUnauthorized)
			}
			return "ok", nil
		})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, []string{"token-1", "token-2", "token-3"}, seen)
	assert.Equal(t, "token-3", cred.AccessToken)
	assert.Equal(t, "refresh", cred.RefreshToken, "refresh material is carried over")
	assert.Equal(t, 2, refresher.calls)
}

func TestWithRefresh_GivesUpAfterMaxRefreshes(t *testing.T) {
	refresher := &countingRefresher{tokens: []string{"a", "b", "c"}}
	calls := 0

	_, _, err := WithRefresh(context.Background(), DefaultRetryPolicy(), Credential{AccessToken: "x"}, refresher,
		func(ctx context.Context, c Credential) (int, error) {
			calls++
			return 0, ErrUnauthorized
		})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, refresher.calls)
}

func TestWithRefresh_OtherErrorsPropagateImmediately(t *testing.T) {
	refresher := &countingRefresher{tokens: []string{"a"}}
	boom := errors.New("service unavailable")
	calls := 0

	_, cred, err := WithRefresh(context.Background(), DefaultRetryPolicy(), Credential{AccessToken: "x"}, refresher,
		func(ctx context.Context, c Credential) (int, error) {
			calls++
			return 0, boom
		})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, refresher.calls)
	assert.Equal(t, "x", cred.AccessToken)
}

func TestWithRefresh_RefreshFailure(t *testing.T) {
	refreshErr := errors.New("refresh token revoked")
	refresher := &countingRefresher{err: refreshErr}

	_, _, err := WithRefresh(context.Background(), DefaultRetryPolicy(), Credential{AccessToken: "x"}, refresher,
		func(ctx context.Context, c Credential) (int, error) {
			return 0, ErrUnauthorized
		})

	assert.ErrorIs(t, err, refreshErr)
	assert.Contains(t, err.Error(), "failed to refresh credential")
}

func TestWithRefresh_CustomClassifier(t *testing.T) {
	expired := errors.New("token expired")
	refresher := &countingRefresher{tokens: []string{"new"}}
	policy := RetryPolicy{
		MaxRefreshes: 1,
		IsAuthError:  func(err error) bool { return errors.Is(err, expired) },
	}

	calls := 0
	_, cred, err := WithRefresh(context.Background(), policy, Credential{AccessToken: "old"}, refresher,
		func(ctx context.Context, c Credential) (bool, error) {
			calls++
			if c.AccessToken == "old" {
				return false, expired
			}
			return true, nil
		})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "new", cred.AccessToken)
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, IsAuthError(fmt.Errorf("wrapped: %w", ErrUnauthorized)))
	assert.True(t, IsAuthError(&azcore.ResponseError{StatusCode: http.StatusUnauthorized}))
	assert.True(t, IsAuthError(&azcore.ResponseError{StatusCode: http.StatusForbidden}))
	assert.False(t, IsAuthError(&azcore.ResponseError{StatusCode: http.StatusInternalServerError}))
	assert.False(t, IsAuthError(errors.New("boom")))
	assert.False(t, IsAuthError(nil))
}
