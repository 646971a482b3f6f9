package config

import (
	"testing"

	"github.com/ohfixit/helperd/internal/testutil/testlog"
)

func TestDefaultIsValidButHazardous(t *testing.T) {
	testlog.Start(t)
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	hazards := InsecureDefaults(cfg)
	if len(hazards) != 2 {
		t.Fatalf("expected both default hazards, got %v", hazards)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	testlog.Start(t)
	t.Setenv("HELPERD_JWT_SECRET", "env-secret")
	t.Setenv("HELPERD_SERVER_URL", "https://authority.example.com/")

	cfg, err := ApplyEnv(Default())
	if err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.JWTSecret != "env-secret" {
		t.Fatalf("jwt secret not overridden: %q", cfg.JWTSecret)
	}
	if cfg.ServerURL != "https://authority.example.com" {
		t.Fatalf("server url not normalized: %q", cfg.ServerURL)
	}
	if len(InsecureDefaults(cfg)) != 0 {
		t.Fatalf("overridden config should have no hazards: %v", InsecureDefaults(cfg))
	}
}

func TestApplyEnvIgnoresBlankValues(t *testing.T) {
	testlog.Start(t)
	t.Setenv("HELPERD_JWT_SECRET", "   ")

	cfg, err := ApplyEnv(Default())
	if err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.JWTSecret != DefaultSecret {
		t.Fatalf("blank env value should not override: %q", cfg.JWTSecret)
	}
}

func TestValidateRejectsMissingFields(t *testing.T) {
	testlog.Start(t)
	cases := []Config{
		{JWTSecret: "s", ServerURL: "http://x"},
		{Addr: "127.0.0.1:1", ServerURL: "http://x"},
		{Addr: "127.0.0.1:1", JWTSecret: "s"},
	}
	for _, cfg := range cases {
		if err := Validate(cfg); err == nil {
			t.Fatalf("expected validation failure for %+v", cfg)
		}
	}
}
