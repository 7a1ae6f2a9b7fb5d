package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"FxPull/internal/di"
	"FxPull/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	ledgerPath := flag.String("ledger", "", "ledger CSV path (overrides ledger.path)")
	outputDir := flag.String("out", "", "output directory (overrides output.dir)")
	serve := flag.Bool("serve", false, "keep serving the ops API after the backfill")
	workers := flag.Int("workers", 0, "currencies fetched in parallel (overrides backfill.workers)")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *ledgerPath != "" {
		cfg.Ledger.Path = *ledgerPath
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *serve {
		cfg.Server.Enabled = true
	}
	if *workers > 0 {
		cfg.Backfill.Workers = *workers
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	report, err := app.Run(ctx)
	stop()
	cleanup()
	if err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
	log.Printf("run %s: %d succeeded, %d failed, %d unsupported",
		report.RunID, report.Succeeded, report.Failed, len(report.Unsupported))
}
