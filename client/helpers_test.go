package client

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vaintrub/hierarchy-go/internal/hierarchytest"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// newFakeService starts the in-process hierarchy service.
func newFakeService(t *testing.T) *hierarchytest.Server {
	t.Helper()
	srv := hierarchytest.NewServer()
	t.Cleanup(srv.Close)
	return srv
}

// newTestAdapter creates an Adapter talking to srv with its own memory cache.
func newTestAdapter(t *testing.T, srv *hierarchytest.Server, opts ...Option) *Adapter {
	t.Helper()
	base := []Option{
		WithAuthURL(srv.URL),
		WithAudience(hierarchytest.Audience),
		WithTokenCache(NewMemoryTokenCache(nil)),
		WithLogger(slog.New(slog.DiscardHandler)),
	}
	adapter, err := New(srv.URL+"/", hierarchytest.OrgID, hierarchytest.ClientID, hierarchytest.ClientSecret,
		append(base, opts...)...)
	require.NoError(t, err)
	return adapter
}
