package postgres

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool defaults applied when the corresponding Config field is zero.
const (
	DefaultMaxConns        int32 = 25
	DefaultMinConns        int32 = 2
	DefaultMaxConnLifetime       = 5 * time.Minute
)

// Config describes the user store's connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration

	// MigrateOnStart creates the users table at startup when it is missing.
	MigrateOnStart bool
}

// poolConfig parses the DSN and applies the pool limits. MinConns may
// not exceed MaxConns.
func (c Config) poolConfig() (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(c.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = orDefault(c.MaxConns, DefaultMaxConns)
	poolCfg.MinConns = orDefault(c.MinConns, DefaultMinConns)
	poolCfg.MaxConnLifetime = orDefault(c.MaxConnLifetime, DefaultMaxConnLifetime)

	if poolCfg.MinConns > poolCfg.MaxConns {
		return nil, fmt.Errorf("min conns %d exceeds max conns %d", poolCfg.MinConns, poolCfg.MaxConns)
	}
	return poolCfg, nil
}

func orDefault[T int32 | time.Duration](v, def T) T {
	if v == 0 {
		return def
	}
	return v
}
