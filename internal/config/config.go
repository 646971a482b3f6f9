// Package config assembles helper runtime configuration from defaults,
// an optional TOML file, and environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	// DefaultSecret is deliberately weak: deployments must override it
	// through the environment. Startup logs a warning when it survives.
	DefaultSecret = "default-secret-change-in-production"

	DefaultServerURL = "http://localhost:3000"

	// DefaultAddr binds loopback only; the control plane is never
	// exposed beyond the local host.
	DefaultAddr = "127.0.0.1:8765"
)

// envConfig holds raw environment overrides before merging.
type envConfig struct {
	JWTSecret string `env:"HELPERD_JWT_SECRET"`
	ServerURL string `env:"HELPERD_SERVER_URL"`
}

// Config is the assembled runtime configuration.
type Config struct {
	// Addr is the control-plane listen address.
	Addr string
	// JWTSecret signs/validates scoped execution credentials.
	JWTSecret string
	// ServerURL is the remote authority base URL for outcome reports.
	ServerURL string
	// JournalPath enables the sqlite execution journal when non-empty.
	JournalPath string
}

// Default returns the insecure-but-working baseline configuration.
func Default() Config {
	return Config{
		Addr:      DefaultAddr,
		JWTSecret: DefaultSecret,
		ServerURL: DefaultServerURL,
	}
}

// ApplyEnv overlays environment variables onto cfg.
func ApplyEnv(cfg Config) (Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if v := strings.TrimSpace(raw.JWTSecret); v != "" {
		cfg.JWTSecret = v
	}
	if v := strings.TrimSpace(raw.ServerURL); v != "" {
		cfg.ServerURL = strings.TrimRight(v, "/")
	}
	return cfg, nil
}

// Validate enforces required fields. Malformed configuration is fatal
// at startup, never later.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("config: missing listen addr")
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return fmt.Errorf("config: missing jwt secret")
	}
	if strings.TrimSpace(cfg.ServerURL) == "" {
		return fmt.Errorf("config: missing server url")
	}
	return nil
}

// InsecureDefaults reports which deployment hazards survived assembly,
// for startup warnings.
func InsecureDefaults(cfg Config) []string {
	var hazards []string
	if cfg.JWTSecret == DefaultSecret {
		hazards = append(hazards, "jwt secret is the insecure default")
	}
	if cfg.ServerURL == DefaultServerURL {
		hazards = append(hazards, "server url is the localhost default")
	}
	return hazards
}
