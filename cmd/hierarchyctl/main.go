package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vaintrub/hierarchy-go/client"
	"github.com/vaintrub/hierarchy-go/internal/cli"
	"github.com/vaintrub/hierarchy-go/internal/config"
	"github.com/vaintrub/hierarchy-go/internal/tokenstore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cache *tokenstore.SQLiteCache
	defer func() {
		if cache != nil {
			cache.Close()
		}
	}()

	app := &cli.App{
		Connect: func(logger *slog.Logger, reg prometheus.Registerer) (client.Client, error) {
			cfg, err := config.Load(".env")
			if err != nil {
				return nil, err
			}

			opts := []client.Option{
				client.WithLogger(logger),
				client.WithTimeout(cfg.Timeout),
				client.WithAuthURL(cfg.AuthURL),
				client.WithAudience(cfg.Audience),
				client.WithHierarchyType(cfg.HierarchyType),
				client.WithMetrics(reg),
			}
			if cfg.RateLimit > 0 {
				opts = append(opts, client.WithRateLimit(cfg.RateLimit, 1))
			}
			if cfg.TokenCachePath != "" {
				cache, err = tokenstore.Open(cfg.TokenCachePath, nil)
				if err != nil {
					return nil, fmt.Errorf("opening token cache: %w", err)
				}
				opts = append(opts, client.WithTokenCache(cache))
			}

			return client.New(cfg.HierarchyURL, cfg.OrgID, cfg.ClientID, cfg.ClientSecret, opts...)
		},
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
