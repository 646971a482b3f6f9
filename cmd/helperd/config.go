package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ohfixit/helperd/internal/config"
)

type fileConfig struct {
	Addr        string `toml:"addr"`
	JWTSecret   string `toml:"jwt_secret"`
	ServerURL   string `toml:"server_url"`
	JournalPath string `toml:"journal_path"`
}

// loadConfig layers defaults, the optional TOML file, then environment
// overrides, and validates the result.
func loadConfig(path string) (config.Config, error) {
	cfg := config.Default()

	if path != "" {
		var raw fileConfig
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			return config.Config{}, fmt.Errorf("load helperd config: %w", err)
		}
		if meta.IsDefined("addr") {
			if v := strings.TrimSpace(raw.Addr); v != "" {
				cfg.Addr = v
			}
		}
		if meta.IsDefined("jwt_secret") {
			if v := strings.TrimSpace(raw.JWTSecret); v != "" {
				cfg.JWTSecret = v
			}
		}
		if meta.IsDefined("server_url") {
			if v := strings.TrimSpace(raw.ServerURL); v != "" {
				cfg.ServerURL = strings.TrimRight(v, "/")
			}
		}
		if meta.IsDefined("journal_path") {
			cfg.JournalPath = strings.TrimSpace(raw.JournalPath)
		}
	}

	cfg, err := config.ApplyEnv(cfg)
	if err != nil {
		return config.Config{}, err
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
