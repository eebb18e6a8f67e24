package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rhuss/portier/pkg/auth"
	"github.com/rhuss/portier/pkg/auth/basic"
	"github.com/rhuss/portier/pkg/auth/jwt"
	"github.com/rhuss/portier/pkg/auth/noop"
	"github.com/rhuss/portier/pkg/auth/session"
	"github.com/rhuss/portier/pkg/config"
	"github.com/rhuss/portier/pkg/storage"
	"github.com/rhuss/portier/pkg/storage/memory"
	"github.com/rhuss/portier/pkg/storage/postgres"
	"github.com/rhuss/portier/pkg/users"
)

// repository is a user repository owning backend resources.
type repository interface {
	users.Repository
	HealthCheck(ctx context.Context) error
	Close() error
}

// newRepository creates the configured user store.
func newRepository(ctx context.Context, cfg config.StorageConfig) (repository, error) {
	switch cfg.Type {
	case "memory", "":
		slog.Info("storage enabled", "type", "memory")
		return memory.New(), nil
	case "postgres":
		store, err := postgres.New(ctx, postgres.Config{
			DSN:             cfg.Postgres.DSN,
			MaxConns:        cfg.Postgres.MaxConns,
			MinConns:        cfg.Postgres.MinConns,
			MaxConnLifetime: cfg.Postgres.MaxConnLifetime,
			MigrateOnStart:  cfg.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, err
		}
		slog.Info("storage enabled", "type", "postgres", "max_conns", cfg.Postgres.MaxConns)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

// newScheme builds the configured authentication scheme. Type "none"
// returns a nil scheme, which disables authentication.
func newScheme(cfg config.AuthConfig, repo users.Repository) (auth.Scheme, error) {
	if cfg.Type == config.AuthNone {
		slog.Warn("authentication disabled")
		return nil, nil
	}
	if cfg.Type != config.AuthChain {
		return newSingleScheme(cfg.Type, cfg, repo)
	}

	schemes := make([]auth.Scheme, 0, len(cfg.Chain))
	for _, name := range cfg.Chain {
		s, err := newSingleScheme(name, cfg, repo)
		if err != nil {
			return nil, err
		}
		schemes = append(schemes, s)
	}
	return auth.NewChain(schemes...), nil
}

func newSingleScheme(name string, cfg config.AuthConfig, repo users.Repository) (auth.Scheme, error) {
	switch name {
	case config.AuthBase:
		return noop.New(), nil
	case config.AuthBasic:
		return basic.New(repo), nil
	case config.AuthSession:
		return session.New(repo, cfg.Session.CookieName), nil
	case config.AuthJWT:
		s, err := jwt.New(jwt.Config{
			Secret:   []byte(cfg.JWT.Secret),
			Issuer:   cfg.JWT.Issuer,
			Audience: cfg.JWT.Audience,
		}, repo)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown auth scheme %q", name)
	}
}

// seedUsers creates the configured accounts. Accounts whose email is
// already registered are left untouched, so restarts are idempotent.
func seedUsers(ctx context.Context, repo users.Repository, seeds []config.UserConfig) error {
	for i, seed := range seeds {
		existing, err := repo.Search(ctx, users.Filter{users.FieldEmail: seed.Email})
		if err != nil {
			return fmt.Errorf("users[%d]: %w", i, err)
		}
		if len(existing) > 0 {
			slog.Debug("seed user exists", "index", i)
			continue
		}

		hash, err := users.HashPassword(seed.Password)
		if err != nil {
			return fmt.Errorf("users[%d]: %w", i, err)
		}

		u := &users.User{ID: seed.ID, Email: seed.Email, HashedPassword: hash}
		if err := repo.Create(ctx, u); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				slog.Debug("seed user exists", "index", i)
				continue
			}
			return fmt.Errorf("users[%d]: %w", i, err)
		}
		slog.Info("seeded user", "user", u)
	}
	return nil
}
