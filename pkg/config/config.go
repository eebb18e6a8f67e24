// Package config provides unified configuration for portier.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (PORTIER_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Auth scheme names accepted by auth.type and auth.chain.
const (
	AuthNone    = "none"
	AuthBase    = "auth"
	AuthBasic   = "basic"
	AuthSession = "session"
	AuthJWT     = "jwt"
	AuthChain   = "chain"
)

// Config holds all configuration for portier.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Auth          AuthConfig          `yaml:"auth"`
	Storage       StorageConfig       `yaml:"storage"`
	Users         []UserConfig        `yaml:"users"`
	Observability ObservabilityConfig `yaml:"observability"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8080
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 15s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 10s
}

// AuthConfig selects and configures the authentication scheme.
type AuthConfig struct {
	Type          string        `yaml:"type"`           // see Auth* constants, default: "basic"
	ExcludedPaths []string      `yaml:"excluded_paths"` // default: status/unauthorized/forbidden, healthz, metrics
	Chain         []string      `yaml:"chain"`          // ordered schemes for type=chain
	Session       SessionConfig `yaml:"session"`
	JWT           JWTConfig     `yaml:"jwt"`
}

// SessionConfig holds cookie session settings.
type SessionConfig struct {
	CookieName string `yaml:"cookie_name"` // default: "_my_session_id"
}

// JWTConfig holds bearer token settings.
type JWTConfig struct {
	Secret     string `yaml:"secret"`
	SecretFile string `yaml:"secret_file"` // _file variant for secret
	Issuer     string `yaml:"issuer"`
	Audience   string `yaml:"audience"`
}

// StorageConfig holds user repository settings.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory" or "postgres", default: "memory"
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 25
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: false

	MinConns        int32         `yaml:"min_conns"`         // default: 2
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"` // default: 5m
}

// UserConfig describes an account seeded at startup.
type UserConfig struct {
	ID           string `yaml:"id" json:"id"`
	Email        string `yaml:"email" json:"email"`
	Password     string `yaml:"password" json:"password"`
	PasswordFile string `yaml:"password_file" json:"password_file"` // _file variant for password
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// LoggingConfig holds log output settings. PORTIER_LOG_LEVEL and
// PORTIER_DEBUG take precedence.
type LoggingConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error", default: "info"
	Debug string `yaml:"debug"` // comma-separated debug categories, or "all"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			Type: AuthBasic,
			ExcludedPaths: []string{
				"/api/v1/status/",
				"/api/v1/unauthorized/",
				"/api/v1/forbidden/",
				"/healthz",
				"/metrics",
			},
			Session: SessionConfig{
				CookieName: "_my_session_id",
			},
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns:        25,
				MinConns:        2,
				MaxConnLifetime: 5 * time.Minute,
			},
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
