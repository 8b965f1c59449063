package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requiredVars() map[string]string {
	return map[string]string{
		"AUTH_URL":           "https://auth.test/",
		"AUTH_CLIENT_ID":     "id",
		"AUTH_CLIENT_SECRET": "secret",
		"AUTH_AUDIENCE_ID":   "https://hierarchy.test/api",
	}
}

func TestFromMap_Defaults(t *testing.T) {
	cfg, err := FromMap(requiredVars())
	require.NoError(t, err)

	assert.Equal(t, "https://platform-hierarchy-service.localhost.net/", cfg.HierarchyURL)
	assert.Equal(t, "3fa85f64-5717-4562-b3fc-2c963f66afa6", cfg.OrgID)
	assert.Equal(t, "location", cfg.HierarchyType)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Zero(t, cfg.RateLimit)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".hierarchyctl", "token.db"), cfg.TokenCachePath)
}

func TestFromMap_Overrides(t *testing.T) {
	vars := requiredVars()
	vars["HIERARCHY_TYPE"] = "cost-centre"
	vars["HIERARCHY_TIMEOUT"] = "2s"
	vars["HIERARCHY_RATE_LIMIT"] = "5.5"
	vars["TOKEN_CACHE_PATH"] = ""

	cfg, err := FromMap(vars)
	require.NoError(t, err)
	assert.Equal(t, "cost-centre", cfg.HierarchyType)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, 5.5, cfg.RateLimit)
	assert.Empty(t, cfg.TokenCachePath)
}

func TestFromMap_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]string)
	}{
		{"missing client id", func(m map[string]string) { delete(m, "AUTH_CLIENT_ID") }},
		{"missing audience", func(m map[string]string) { delete(m, "AUTH_AUDIENCE_ID") }},
		{"bad timeout", func(m map[string]string) { m["HIERARCHY_TIMEOUT"] = "soon" }},
		{"zero timeout", func(m map[string]string) { m["HIERARCHY_TIMEOUT"] = "0s" }},
		{"negative rate", func(m map[string]string) { m["HIERARCHY_RATE_LIMIT"] = "-1" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := requiredVars()
			tt.mutate(vars)
			_, err := FromMap(vars)
			assert.Error(t, err)
		})
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	// t.Setenv restores the original environment after the file load.
	for k := range requiredVars() {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Setenv("HIERARCHY_TYPE", "location")

	path := filepath.Join(t.TempDir(), ".env")
	content := "AUTH_URL=https://auth.test/\n" +
		"AUTH_CLIENT_ID=from-file\n" +
		"AUTH_CLIENT_SECRET=secret\n" +
		"AUTH_AUDIENCE_ID=aud\n" +
		"HIERARCHY_TYPE=ignored\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.ClientID)
	assert.Equal(t, "location", cfg.HierarchyType, "existing variables win over the file")
}
