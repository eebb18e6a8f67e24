package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, PORTIER_CONFIG env, ./config.yaml, /etc/portier/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	// Start with defaults.
	cfg := Defaults()

	// Discover and load YAML config file.
	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	// Resolve _file references.
	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. PORTIER_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/portier/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("PORTIER_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/portier/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps PORTIER_* environment variables to config fields.
// Malformed numeric values are ignored; a malformed PORTIER_USERS is an
// error.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PORTIER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PORTIER_AUTH_TYPE"); v != "" {
		cfg.Auth.Type = v
	}
	if v := os.Getenv("PORTIER_AUTH_CHAIN"); v != "" {
		cfg.Auth.Chain = splitList(v)
	}
	if v, ok := os.LookupEnv("PORTIER_EXCLUDED_PATHS"); ok {
		cfg.Auth.ExcludedPaths = splitList(v)
	}
	if v := os.Getenv("PORTIER_SESSION_NAME"); v != "" {
		cfg.Auth.Session.CookieName = v
	}
	if v := os.Getenv("PORTIER_JWT_SECRET"); v != "" {
		cfg.Auth.JWT.Secret = v
	}
	if v := os.Getenv("PORTIER_STORAGE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("PORTIER_DATABASE_URL"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}

	// PORTIER_USERS: JSON array of seed accounts.
	if v := os.Getenv("PORTIER_USERS"); v != "" {
		seed, err := parseUsersJSON(v)
		if err != nil {
			return err
		}
		cfg.Users = seed
	}

	return nil
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseUsersJSON parses a JSON array of seed account configurations.
func parseUsersJSON(jsonStr string) ([]UserConfig, error) {
	var seed []UserConfig
	if err := json.Unmarshal([]byte(jsonStr), &seed); err != nil {
		return nil, fmt.Errorf("parsing PORTIER_USERS JSON: %w", err)
	}
	return seed, nil
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// For each field ending in _file, if the value field is empty and the file field is set,
// the file is read, whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// storage.postgres.dsn_file -> storage.postgres.dsn
	if cfg.Storage.Postgres.DSNFile != "" && cfg.Storage.Postgres.DSN == "" {
		val, err := readSecretFile(cfg.Storage.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("storage.postgres.dsn_file: %w", err)
		}
		cfg.Storage.Postgres.DSN = val
	}

	// auth.jwt.secret_file -> auth.jwt.secret
	if cfg.Auth.JWT.SecretFile != "" && cfg.Auth.JWT.Secret == "" {
		val, err := readSecretFile(cfg.Auth.JWT.SecretFile)
		if err != nil {
			return fmt.Errorf("auth.jwt.secret_file: %w", err)
		}
		cfg.Auth.JWT.Secret = val
	}

	// users[*].password_file -> users[*].password
	for i := range cfg.Users {
		if cfg.Users[i].PasswordFile != "" && cfg.Users[i].Password == "" {
			val, err := readSecretFile(cfg.Users[i].PasswordFile)
			if err != nil {
				return fmt.Errorf("users[%d].password_file: %w", i, err)
			}
			cfg.Users[i].Password = val
		}
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
