// Command server runs the portier authentication service.
//
// Configuration is read from a YAML file (PORTIER_CONFIG, ./config.yaml or
// /etc/portier/config.yaml) with PORTIER_* environment overrides:
//
//	PORTIER_PORT           - Listen port (default: 8080)
//	PORTIER_AUTH_TYPE      - none, auth, basic, session, jwt or chain (default: basic)
//	PORTIER_AUTH_CHAIN     - Comma-separated schemes for auth type chain
//	PORTIER_EXCLUDED_PATHS - Comma-separated paths exempt from authentication
//	PORTIER_SESSION_NAME   - Session cookie name (default: _my_session_id)
//	PORTIER_JWT_SECRET     - Shared secret for the jwt scheme
//	PORTIER_STORAGE        - Storage type: "memory" or "postgres" (default: "memory")
//	PORTIER_DATABASE_URL   - PostgreSQL DSN
//	PORTIER_USERS          - JSON array of seed accounts
//	PORTIER_LOG_LEVEL      - debug, info, warn or error
//	PORTIER_DEBUG          - Comma-separated debug categories, or "all"
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/rhuss/portier/pkg/config"
	"github.com/rhuss/portier/pkg/debug"
	transporthttp "github.com/rhuss/portier/pkg/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	debug.Init(cfg.Logging.Debug, cfg.Logging.Level, os.Stderr)

	ctx := context.Background()

	repo, err := newRepository(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("creating storage: %w", err)
	}
	defer repo.Close()

	if err := seedUsers(ctx, repo, cfg.Users); err != nil {
		return fmt.Errorf("seeding users: %w", err)
	}

	scheme, err := newScheme(cfg.Auth, repo)
	if err != nil {
		return fmt.Errorf("creating auth scheme: %w", err)
	}

	opts := []transporthttp.ServerOption{
		transporthttp.WithAddr(":" + strconv.Itoa(cfg.Server.Port)),
		transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithLogger(slog.Default()),
		transporthttp.WithAuth(scheme, cfg.Auth.ExcludedPaths),
	}
	if cfg.Observability.Metrics.Enabled {
		opts = append(opts, transporthttp.WithMetricsPath(cfg.Observability.Metrics.Path))
	} else {
		opts = append(opts, transporthttp.WithMetricsPath(""))
	}

	slog.Info("portier configured",
		"auth", cfg.Auth.Type,
		"storage", cfg.Storage.Type,
		"excluded_paths", len(cfg.Auth.ExcludedPaths),
	)

	return transporthttp.NewServer(repo, opts...).ListenAndServe()
}
