// Package config loads hierarchyctl settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything needed to build a hierarchy client.
type Config struct {
	HierarchyURL   string        `env:"HIERARCHY_URL" envDefault:"https://platform-hierarchy-service.localhost.net/"`
	OrgID          string        `env:"HIERARCHY_ORG_ID" envDefault:"3fa85f64-5717-4562-b3fc-2c963f66afa6"`
	HierarchyType  string        `env:"HIERARCHY_TYPE" envDefault:"location"`
	AuthURL        string        `env:"AUTH_URL,required"`
	ClientID       string        `env:"AUTH_CLIENT_ID,required"`
	ClientSecret   string        `env:"AUTH_CLIENT_SECRET,required"`
	Audience       string        `env:"AUTH_AUDIENCE_ID,required"`
	Timeout        time.Duration `env:"HIERARCHY_TIMEOUT" envDefault:"10s"`
	RateLimit      float64       `env:"HIERARCHY_RATE_LIMIT" envDefault:"0"` // requests per second, 0 = off
	TokenCachePath string        `env:"TOKEN_CACHE_PATH" envDefault:"~/.hierarchyctl/token.db"`
}

// Load reads the given .env files (missing files are skipped) and then parses
// the process environment. Variables already set are never overridden.
func Load(files ...string) (*Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return parse(env.Options{})
}

// FromMap parses configuration from vars instead of the process environment.
func FromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("HIERARCHY_TIMEOUT must be positive, got %s", cfg.Timeout)
	}
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("HIERARCHY_RATE_LIMIT must not be negative, got %g", cfg.RateLimit)
	}

	path, err := expandHome(cfg.TokenCachePath)
	if err != nil {
		return nil, err
	}
	cfg.TokenCachePath = path
	return &cfg, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
