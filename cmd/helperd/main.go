package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/ohfixit/helperd/internal/auth"
	"github.com/ohfixit/helperd/internal/catalog"
	"github.com/ohfixit/helperd/internal/config"
	"github.com/ohfixit/helperd/internal/engine"
	"github.com/ohfixit/helperd/internal/helper"
	"github.com/ohfixit/helperd/internal/journal"
	"github.com/ohfixit/helperd/internal/observability"
	"github.com/ohfixit/helperd/internal/probes"
	"github.com/ohfixit/helperd/internal/report"
	"github.com/ohfixit/helperd/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "helperd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to helperd TOML config")
	flag.Parse()

	observability.InitLogger("helperd")

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	for _, hazard := range config.InsecureDefaults(cfg) {
		log.Warn().Str("hazard", hazard).Msg("insecure configuration default in use")
	}

	var store *journal.Journal
	if cfg.JournalPath != "" {
		store, err = journal.Open(cfg.JournalPath)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
	}

	svc, err := helper.NewService(helper.Config{
		Catalog:   catalog.Builtin(),
		Validator: auth.NewHMACValidator(cfg.JWTSecret),
		Reporter:  report.NewClient(cfg.ServerURL),
		Journal:   store,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Config{
		Addr:    cfg.Addr,
		Service: svc,
		Prober:  probes.ForPlatform(runtime.GOOS, engine.ExecRunner{}),
	})

	log.Info().
		Str("addr", cfg.Addr).
		Int("actions", svc.Health().ActionsAvailable).
		Msg("helperd ready")
	return srv.Serve(ctx)
}
