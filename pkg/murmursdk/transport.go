package murmursdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/murmurapp/murmur-go/pkg/idx"
	"github.com/murmurapp/murmur-go/pkg/tokenstore"

	"golang.org/x/time/rate"
)

// Transport is the authenticated request pipeline. It attaches the stored
// bearer token to every protected call, and on a 401 it exchanges the stored
// refresh token and re-sends the original request exactly once. The retry's
// outcome, success or failure, is final.
//
// Concurrent calls that each see a 401 each perform their own refresh; the
// last write to the store wins. Both exchanges return equivalent validity
// windows, so no cross-call de-duplication is done.
type Transport struct {
	base    http.RoundTripper
	store   tokenstore.Store
	baseURL string
	limiter *rate.Limiter
	log     *slog.Logger

	// onSessionExpired is invoked after a failed refresh, once the store has
	// been cleared. The session manager fans this out to its subscribers.
	onSessionExpired func()
}

// attemptKey marks a request as the post-refresh retry. The attempt travels
// on an immutable context rather than a mutable flag on the request itself.
type attemptKey struct{}

func withRetryAttempt(ctx context.Context) context.Context {
	return context.WithValue(ctx, attemptKey{}, 2)
}

func attemptFromContext(ctx context.Context) int {
	if n, ok := ctx.Value(attemptKey{}).(int); ok {
		return n
	}
	return 1
}

// Bootstrap endpoints authenticate by their payload, not by a bearer token.
func isBootstrapPath(path string) bool {
	return strings.HasSuffix(path, "/auth/login") ||
		strings.HasSuffix(path, "/auth/register") ||
		isRefreshPath(path)
}

func isRefreshPath(path string) bool {
	return strings.HasSuffix(path, "/auth/refresh")
}

func (t *Transport) roundTripper() http.RoundTripper {
	if t.base != nil {
		return t.base
	}
	return http.DefaultTransport
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	// Clone so the caller's request is never mutated.
	out := req.Clone(ctx)
	out.Header.Set("X-Request-Id", idx.New().String())

	if !isBootstrapPath(out.URL.Path) {
		if pair, err := t.store.Load(ctx); err == nil && pair.AccessToken != "" {
			out.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		}
	}

	resp, err := t.roundTripper().RoundTrip(out)
	if err != nil {
		return nil, err
	}

	// A 401 from a bootstrap endpoint is a credential failure, not token
	// expiry; only protected calls enter the refresh path.
	if resp.StatusCode != http.StatusUnauthorized ||
		isBootstrapPath(out.URL.Path) ||
		attemptFromContext(ctx) > 1 {
		return resp, nil
	}

	// A body that cannot be replayed cannot be retried.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	t.log.Debug("access token rejected, refreshing", "path", out.URL.Path)

	pair, refreshErr := t.refreshCredentials(ctx)
	if refreshErr != nil {
		t.log.Warn("token refresh failed", "err", refreshErr)

		if clearErr := t.store.Clear(ctx); clearErr != nil {
			t.log.Error("failed to clear credentials", "err", clearErr)
		}
		if t.onSessionExpired != nil {
			t.onSessionExpired()
		}

		// Propagate the original 401 to the caller.
		return resp, nil
	}

	// Drain the 401 response so its connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	retry := req.Clone(withRetryAttempt(ctx))
	retry.Header.Set("X-Request-Id", idx.New().String())
	retry.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to rewind request body: %w", err)
		}
		retry.Body = body
	}

	return t.roundTripper().RoundTrip(retry)
}

// refreshCredentials posts the stored refresh token to the refresh endpoint
// and overwrites the stored pair with the result.
func (t *Transport) refreshCredentials(ctx context.Context) (tokenstore.Pair, error) {
	current, err := t.store.Load(ctx)
	if err != nil {
		return tokenstore.Pair{}, fmt.Errorf("no refresh token available: %w", err)
	}
	if current.RefreshToken == "" {
		return tokenstore.Pair{}, fmt.Errorf("no refresh token available")
	}

	payload, err := json.Marshal(map[string]string{"refresh_token": current.RefreshToken})
	if err != nil {
		return tokenstore.Pair{}, fmt.Errorf("failed to encode refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		t.baseURL+"/auth/refresh",
		bytes.NewReader(payload),
	)
	if err != nil {
		return tokenstore.Pair{}, fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", idx.New().String())

	resp, err := t.roundTripper().RoundTrip(req)
	if err != nil {
		return tokenstore.Pair{}, fmt.Errorf("failed to send refresh request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return tokenstore.Pair{}, fmt.Errorf(
			"refresh request failed with status %d: %s",
			resp.StatusCode, string(bodyBytes),
		)
	}

	var tokens TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return tokenstore.Pair{}, fmt.Errorf("failed to decode refresh response: %w", err)
	}

	pair := tokenstore.Pair{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	}
	if err := t.store.Save(ctx, pair); err != nil {
		return tokenstore.Pair{}, fmt.Errorf("failed to persist refreshed credentials: %w", err)
	}

	t.log.Debug("credentials refreshed")
	return pair, nil
}
