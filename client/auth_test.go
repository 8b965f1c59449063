package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaintrub/hierarchy-go/internal/hierarchytest"
)

func TestAccessToken_CachesToken(t *testing.T) {
	srv := newFakeService(t)
	adapter := newTestAdapter(t, srv)
	ctx := context.Background()

	first, err := adapter.AccessToken(ctx)
	require.NoError(t, err)
	second, err := adapter.AccessToken(ctx)
	require.NoError(t, err)

	assert.Equal(t, "Bearer token-1", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, srv.TokenRequests())
}

func TestAccessToken_ReauthenticatesAfterExpiry(t *testing.T) {
	srv := newFakeService(t)
	srv.SetExpiresIn(60)
	clock := newFakeClock()
	cache := NewMemoryTokenCache(clock.Now)
	adapter := newTestAdapter(t, srv, WithTokenCache(cache))
	ctx := context.Background()

	first, err := adapter.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer token-1", first)

	clock.Advance(59 * time.Second)
	again, err := adapter.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, srv.TokenRequests())

	clock.Advance(time.Second)
	renewed, err := adapter.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer token-2", renewed)
	assert.Equal(t, 2, srv.TokenRequests())

	cached, ok, err := cache.Get(ctx, TokenCacheKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, renewed, cached)
}

func TestAccessToken_CacheHitPerformsNoNetworkIO(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cache := NewMemoryTokenCache(nil)
	require.NoError(t, cache.Set(context.Background(), TokenCacheKey, "Bearer cached", time.Hour))

	adapter, err := New(server.URL, hierarchytest.OrgID, "id", "secret", WithTokenCache(cache))
	require.NoError(t, err)

	token, err := adapter.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer cached", token)
}

func TestAccessToken_SendsClientCredentials(t *testing.T) {
	var gotPath string
	var gotForm map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = r.ParseForm()
		gotForm = map[string]string{
			"client_id":     r.PostForm.Get("client_id"),
			"client_secret": r.PostForm.Get("client_secret"),
			"audience":      r.PostForm.Get("audience"),
			"grant_type":    r.PostForm.Get("grant_type"),
		}
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"token_type":   "Bearer",
			"access_token": "abc",
			"expires_in":   3600,
		})
	}))
	defer server.Close()

	// The token path is absolute, so it replaces the auth URL's own path.
	adapter, err := New("https://hierarchy.test/", hierarchytest.OrgID, "my-id", "my-secret",
		WithAuthURL(server.URL+"/tenant/"),
		WithAudience("https://api.test"),
		WithTokenCache(NewMemoryTokenCache(nil)))
	require.NoError(t, err)

	token, err := adapter.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", token)
	assert.Equal(t, "/oauth/token", gotPath)
	assert.Equal(t, map[string]string{
		"client_id":     "my-id",
		"client_secret": "my-secret",
		"audience":      "https://api.test",
		"grant_type":    "client_credentials",
	}, gotForm)
}

func TestAccessToken_AuthenticationError(t *testing.T) {
	srv := newFakeService(t)
	srv.FailAuth(http.StatusUnauthorized)
	adapter := newTestAdapter(t, srv)

	_, err := adapter.AccessToken(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuthentication))

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
}

func TestAccessToken_IncompleteResponseReturnsEmpty(t *testing.T) {
	srv := newFakeService(t)
	srv.OmitTokenType(true)
	adapter := newTestAdapter(t, srv)
	ctx := context.Background()

	token, err := adapter.AccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	// Nothing was cached, so the next call asks again.
	_, err = adapter.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, srv.TokenRequests())
}

func TestAccessToken_ConcurrentMissesShareOneRequest(t *testing.T) {
	srv := newFakeService(t)
	adapter := newTestAdapter(t, srv)

	const callers = 16
	tokens := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token, err := adapter.AccessToken(context.Background())
			assert.NoError(t, err)
			tokens[i] = token
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, srv.TokenRequests())
	for _, token := range tokens {
		assert.Equal(t, "Bearer token-1", token)
	}
}

func TestAccessToken_CancelledCallerDoesNotFailOthers(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			close(started)
		}
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"token_type":   "Bearer",
			"access_token": "abc",
			"expires_in":   3600,
		})
	}))
	defer server.Close()

	adapter, err := New(server.URL, hierarchytest.OrgID, "id", "secret",
		WithTokenCache(NewMemoryTokenCache(nil)))
	require.NoError(t, err)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := adapter.AccessToken(first)
		firstErr <- err
	}()

	<-started
	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	secondToken := make(chan string, 1)
	go func() {
		token, err := adapter.AccessToken(context.Background())
		assert.NoError(t, err)
		secondToken <- token
	}()
	close(release)

	assert.Equal(t, "Bearer abc", <-secondToken)
	assert.Equal(t, int32(1), requests.Load())
}

func TestAccessToken_Metrics(t *testing.T) {
	srv := newFakeService(t)
	reg := prometheus.NewRegistry()
	adapter := newTestAdapter(t, srv, WithMetrics(reg))
	ctx := context.Background()

	_, err := adapter.AccessToken(ctx)
	require.NoError(t, err)
	_, err = adapter.AccessToken(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(adapter.metrics.tokenRequests.WithLabelValues(tokenOutcomeIssued)))
	assert.Equal(t, 1.0, testutil.ToFloat64(adapter.metrics.tokenRequests.WithLabelValues(tokenOutcomeCached)))
}

func TestAccessToken_CacheErrorPropagates(t *testing.T) {
	srv := newFakeService(t)
	adapter := newTestAdapter(t, srv, WithTokenCache(failingCache{}))

	_, err := adapter.AccessToken(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errCacheDown)
	assert.Equal(t, 0, srv.TokenRequests())
}

var errCacheDown = errors.New("cache down")

type failingCache struct{}

func (failingCache) Get(context.Context, string) (string, bool, error) {
	return "", false, errCacheDown
}

func (failingCache) Set(context.Context, string, string, time.Duration) error {
	return errCacheDown
}
