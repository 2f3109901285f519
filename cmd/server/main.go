package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/portfolio-tracker/internal/config"
	"github.com/iudanet/portfolio-tracker/internal/server"
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
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(*envFile); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(envFile string) error {
	cfg, err := config.LoadServer(envFile)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	// SIGINT/SIGTERM запускают graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, logger, server.Options{Version: Version})
	if err != nil {
		return err
	}

	logger.Info("Portfolio Tracker server starting",
		slog.String("version", Version),
		slog.String("addr", cfg.HTTPAddr),
		slog.String("db", cfg.DBPath),
	)

	return srv.Run(ctx)
}

func printVersion() {
	fmt.Printf("Portfolio Tracker Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
