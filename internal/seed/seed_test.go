package seed

import (
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaintrub/hierarchy-go/client"
	"github.com/vaintrub/hierarchy-go/internal/hierarchytest"
	"github.com/vaintrub/hierarchy-go/models"
)

const sample = `
root: Top Company
divisions:
  - name: Edinburgh
    sites: [Edinburgh Office]
  - name: Montreal
    shortCode: mtl
    sites:
      - Montreal Office
      - Montreal Warehouse
`

func newAdapter(t *testing.T) (*client.Adapter, *hierarchytest.Server) {
	t.Helper()
	srv := hierarchytest.NewServer()
	t.Cleanup(srv.Close)
	adapter, err := client.New(srv.URL+"/", hierarchytest.OrgID, hierarchytest.ClientID, hierarchytest.ClientSecret,
		client.WithAuthURL(srv.URL),
		client.WithTokenCache(client.NewMemoryTokenCache(nil)),
		client.WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, err)
	return adapter, srv
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/seed/tree.yaml", []byte(sample), 0o644))

	f, err := Load(fs, "/seed/tree.yaml")
	require.NoError(t, err)
	assert.Equal(t, "Top Company", f.Root)
	require.Len(t, f.Divisions, 2)
	assert.Equal(t, []string{"Edinburgh Office"}, f.Divisions[0].Sites)
	assert.Equal(t, "mtl", f.Divisions[1].ShortCode)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "/nope.yaml")
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed", "divisions: [\n"},
		{"division without name", "divisions:\n  - sites: [A]\n"},
		{"duplicate division", "divisions:\n  - name: Edinburgh\n  - name: edinburgh\n"},
		{"site clashes with root", "divisions:\n  - name: Edinburgh\n    sites: [Root]\n"},
		{"blank site", "divisions:\n  - name: Edinburgh\n    sites: ['--']\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestApply(t *testing.T) {
	adapter, _ := newAdapter(t)
	ctx := context.Background()

	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	res, err := Apply(ctx, adapter, f, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Divisions)
	assert.Equal(t, 3, res.Sites)

	root, err := adapter.GetRoot(ctx)
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Equal(t, res.RootID, root.ID)
	assert.Equal(t, "Top Company", root.Name)

	divisions, err := adapter.GetDivisions(ctx)
	require.NoError(t, err)
	codes := map[string]models.HierarchyNode{}
	for _, d := range divisions {
		codes[d.ShortCode] = d
		assert.Equal(t, root.ID, d.ParentID)
	}
	require.Contains(t, codes, "edinburgh")
	require.Contains(t, codes, "mtl")

	sites, err := adapter.GetSites(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 3)
	for _, s := range sites {
		if s.ShortCode == "edinburgh-office" {
			assert.Equal(t, codes["edinburgh"].ID, s.ParentID)
		} else {
			assert.Equal(t, "mtl", s.ParentShortCode)
			assert.Equal(t, codes["mtl"].ID, s.ParentID)
		}
	}
}

func TestApply_Idempotent(t *testing.T) {
	adapter, _ := newAdapter(t)
	ctx := context.Background()
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	first, err := Apply(ctx, adapter, f, nil)
	require.NoError(t, err)
	second, err := Apply(ctx, adapter, f, nil)
	require.NoError(t, err)
	assert.Equal(t, first.RootID, second.RootID)

	nodes, err := adapter.GetAllNonRootNodes(ctx)
	require.NoError(t, err)
	assert.Len(t, nodes, 5)
}

func TestApply_StopsOnServiceError(t *testing.T) {
	adapter, srv := newAdapter(t)
	srv.FailAPI(http.StatusServiceUnavailable)

	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	_, err = Apply(context.Background(), adapter, f, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrServerError)
	assert.Equal(t, 1, srv.APIRequests())
}
