package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// server.port must be positive.
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	// storage.type must be a known value.
	switch c.Storage.Type {
	case "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\" or \"postgres\", got %q", c.Storage.Type))
	}

	// If storage.type is "postgres", DSN or DSNFile must be set.
	if c.Storage.Type == "postgres" {
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
		if pg := c.Storage.Postgres; pg.MinConns < 0 || pg.MaxConns < 0 || pg.MinConns > pg.MaxConns {
			errs = append(errs, fmt.Errorf("storage.postgres.min_conns (%d) must be between 0 and max_conns (%d)", pg.MinConns, pg.MaxConns))
		}
	}

	// auth.type must be a known value.
	switch c.Auth.Type {
	case AuthNone, AuthBase, AuthBasic, AuthSession, AuthJWT:
		// valid
	case AuthChain:
		if len(c.Auth.Chain) == 0 {
			errs = append(errs, fmt.Errorf("auth.chain must list at least one scheme when auth.type is \"chain\""))
		}
		for i, name := range c.Auth.Chain {
			switch name {
			case AuthBase, AuthBasic, AuthSession, AuthJWT:
			default:
				errs = append(errs, fmt.Errorf("auth.chain[%d] must be \"auth\", \"basic\", \"session\" or \"jwt\", got %q", i, name))
			}
		}
	default:
		errs = append(errs, fmt.Errorf("auth.type must be \"none\", \"auth\", \"basic\", \"session\", \"jwt\" or \"chain\", got %q", c.Auth.Type))
	}

	// The jwt scheme needs key material.
	if c.usesScheme(AuthJWT) && c.Auth.JWT.Secret == "" {
		errs = append(errs, fmt.Errorf("auth.jwt.secret or auth.jwt.secret_file is required for the jwt scheme"))
	}

	// Seed users need an email and a password.
	for i, u := range c.Users {
		if u.Email == "" {
			errs = append(errs, fmt.Errorf("users[%d].email is required", i))
		}
		if u.Password == "" {
			errs = append(errs, fmt.Errorf("users[%d].password or users[%d].password_file is required", i, i))
		}
	}

	if c.Observability.Metrics.Enabled && !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("observability.metrics.path must start with \"/\", got %q", c.Observability.Metrics.Path))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "trace", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level must be one of trace, debug, info, warn, error, got %q", c.Logging.Level))
	}

	return errors.Join(errs...)
}

// usesScheme reports whether the named scheme is active, directly or as
// part of a chain.
func (c *Config) usesScheme(name string) bool {
	if c.Auth.Type == name {
		return true
	}
	return c.Auth.Type == AuthChain && slices.Contains(c.Auth.Chain, name)
}
