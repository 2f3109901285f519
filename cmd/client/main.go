package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/iudanet/portfolio-tracker/internal/client/api"
	"github.com/iudanet/portfolio-tracker/internal/client/auth"
	"github.com/iudanet/portfolio-tracker/internal/client/cli"
	"github.com/iudanet/portfolio-tracker/internal/client/iocli"
	"github.com/iudanet/portfolio-tracker/internal/client/storage/boltdb"
	"github.com/iudanet/portfolio-tracker/internal/clock"
	"github.com/iudanet/portfolio-tracker/internal/config"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	envFile := flag.String("env-file", "", "Path to .env file (default: ./.env if present)")
	serverURL := flag.String("server", "", "Server URL (overrides PORTFOLIO_SERVER_URL)")
	dbPath := flag.String("db", "", "Path to local session database (overrides PORTFOLIO_SESSION_DB)")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.LoadClient(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}
	if *dbPath != "" {
		cfg.SessionPath = *dbPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, logger, flag.Args()); err != nil {
		// usage уже напечатан
		if err != cli.ErrUsage {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Client, logger *slog.Logger, args []string) error {
	store, err := boltdb.New(ctx, cfg.SessionPath)
	if err != nil {
		return fmt.Errorf("failed to open session database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close session database", slog.Any("error", err))
		}
	}()

	apiClient := api.NewClient(cfg.ServerURL, cfg.Timeout)
	session := auth.NewSession(apiClient, store, clock.Real{}, logger)

	return cli.New(iocli.NewStdio(), session, apiClient, clock.Real{}).Run(ctx, args)
}

func printVersion() {
	fmt.Printf("Portfolio Tracker Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
