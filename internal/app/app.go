package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/comfygate/comfygate/internal/ctxlog"
	"github.com/comfygate/comfygate/internal/gateway"
	"github.com/comfygate/comfygate/internal/host"
	"github.com/comfygate/comfygate/internal/registry"
	"github.com/comfygate/comfygate/internal/repository"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	snapshot *repository.Snapshot
	registry *registry.Registry
	client   *gateway.Client
	identity host.ExecutionIdentity
	preparer host.BinaryPreparer

	healthServer *http.Server
	healthAddr   string
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, a freshly
// scanned template snapshot, and the property registry rebuilt from it.
func NewApp(outW io.Writer, config *Config) (*App, error) {
	logger := newLogger(config.LogLevel, config.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// A broken template repository is a fatal startup error: templates are
	// configuration, and missing configuration never degrades silently.
	snapshot, err := repository.NewReader(config.TemplatesPath).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load template repository: %w", err)
	}

	reg := registry.Build(snapshot)
	logger.Debug("Parameter registry built.", "properties", len(reg.Properties()))

	client, err := gateway.NewClient(gateway.Config{
		BaseURL:      config.GatewayURL,
		AwaitTimeout: config.Timeout,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		outW:     outW,
		logger:   logger,
		config:   config,
		snapshot: snapshot,
		registry: reg,
		client:   client,
		identity: host.NewRunIdentity(),
		preparer: host.DirPreparer{Dir: config.OutputDir},
	}, nil
}

// Registry returns the application's property registry. This is primarily
// for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Snapshot returns the loaded template snapshot. This is primarily for
// testing.
func (a *App) Snapshot() *repository.Snapshot {
	return a.snapshot
}
