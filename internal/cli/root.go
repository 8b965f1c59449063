// Package cli implements the hierarchyctl command tree.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/vaintrub/hierarchy-go/client"
)

// App holds the dependencies shared by every command.
type App struct {
	// Client is used as-is when set; otherwise Connect builds it on first use.
	Client  client.Client
	Connect func(logger *slog.Logger, reg prometheus.Registerer) (client.Client, error)

	// Metrics receives the client's collectors when --metrics is set.
	Metrics *prometheus.Registry

	Fs     afero.Fs
	Logger *slog.Logger
	Now    func() time.Time
}

func (a *App) client() (client.Client, error) {
	if a.Client != nil {
		return a.Client, nil
	}
	if a.Connect == nil {
		return nil, errors.New("no hierarchy client configured")
	}
	var reg prometheus.Registerer
	if a.Metrics != nil {
		reg = a.Metrics
	}
	c, err := a.Connect(a.Logger, reg)
	if err != nil {
		return nil, err
	}
	a.Client = c
	return c, nil
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// writeMetrics prints every gathered metric family in the Prometheus text
// exposition format.
func (a *App) writeMetrics(cmd *cobra.Command) error {
	families, err := a.Metrics.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(cmd.ErrOrStderr(), mf); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}

// NewRootCmd creates the top-level "hierarchyctl" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var verbose, showMetrics bool

	root := &cobra.Command{
		Use:           "hierarchyctl",
		Short:         "Manage an organisation hierarchy (company, divisions, sites)",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if app.Fs == nil {
				app.Fs = afero.NewOsFs()
			}
			if app.Logger == nil {
				level := slog.LevelWarn
				if verbose {
					level = slog.LevelDebug
				}
				app.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			}
			if showMetrics && app.Metrics == nil {
				app.Metrics = prometheus.NewRegistry()
			}
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if !showMetrics || app.Metrics == nil {
				return nil
			}
			return app.writeMetrics(cmd)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every request at debug level")
	root.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "Print client metrics to stderr after the command")

	root.AddCommand(
		newRootNodeCmd(app),
		newChildCmd(app, "division", "Manage divisions"),
		newChildCmd(app, "site", "Manage sites"),
		newNodeCmd(app),
		newTreeCmd(app),
		newSummaryCmd(app),
		newSeedCmd(app),
		newTokenCmd(app),
	)

	return root
}
