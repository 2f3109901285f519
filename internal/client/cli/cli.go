// Package cli implements the portfolio tracker command line client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/portfolio-tracker/internal/client/auth"
	"github.com/iudanet/portfolio-tracker/internal/client/iocli"
	"github.com/iudanet/portfolio-tracker/internal/client/storage"
	"github.com/iudanet/portfolio-tracker/internal/clock"
	"github.com/iudanet/portfolio-tracker/pkg/api"
)

// ErrUsage is returned for unknown commands and bad arguments.
var ErrUsage = errors.New("invalid usage")

// PortfolioAPI is the part of the HTTP client used by portfolio commands.
type PortfolioAPI interface {
	Dashboard(ctx context.Context, accessToken string) (*api.DashboardResponse, error)
	AddAsset(ctx context.Context, accessToken, portfolioID string, req api.AddAssetRequest) (*api.AssetResponse, error)
	UpdateAsset(ctx context.Context, accessToken, portfolioID, assetID string, req api.UpdateAssetRequest) (*api.AssetResponse, error)
	RemoveAsset(ctx context.Context, accessToken, portfolioID, assetID string) error
	Health(ctx context.Context) (*api.HealthResponse, error)
}

type Cli struct {
	io        iocli.IO
	session   auth.Service
	portfolio PortfolioAPI
	clock     clock.Clock
}

func New(io iocli.IO, session auth.Service, portfolio PortfolioAPI, clk clock.Clock) *Cli {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Cli{
		io:        io,
		session:   session,
		portfolio: portfolio,
		clock:     clk,
	}
}

// Run выполняет команду args[0] с аргументами args[1:]
func (c *Cli) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		c.PrintUsage()
		return ErrUsage
	}

	command, rest := args[0], args[1:]

	var err error
	switch command {
	case "register":
		err = c.runRegister(ctx)
	case "login":
		err = c.runLogin(ctx)
	case "logout":
		err = c.runLogout(ctx)
	case "refresh":
		err = c.runRefresh(ctx)
	case "status":
		err = c.runStatus(ctx)
	case "dashboard":
		err = c.runDashboard(ctx, rest)
	case "add":
		err = c.runAdd(ctx, rest)
	case "update":
		err = c.runUpdate(ctx, rest)
	case "remove":
		err = c.runRemove(ctx, rest)
	case "help":
		c.PrintUsage()
	default:
		c.io.Printf("Unknown command: %s\n\n", command)
		c.PrintUsage()
		return ErrUsage
	}

	return friendly(err)
}

// friendly подменяет ошибки сессии понятными сообщениями
func friendly(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrAuthNotFound):
		return fmt.Errorf("not authenticated. Please run 'portfolio login' first")
	case errors.Is(err, auth.ErrSessionExpired):
		return fmt.Errorf("%w. Run 'portfolio login'", err)
	default:
		return err
	}
}

func (c *Cli) PrintUsage() {
	c.io.Println("Portfolio Tracker Client")
	c.io.Println()
	c.io.Println("Usage:")
	c.io.Println("  portfolio [OPTIONS] COMMAND [ARGS]")
	c.io.Println()
	c.io.Println("Options:")
	c.io.Println("  -version               Show version information")
	c.io.Println("  -server URL            Server URL (env PORTFOLIO_SERVER_URL)")
	c.io.Println("  -db PATH               Path to local session database (env PORTFOLIO_SESSION_DB)")
	c.io.Println("  -env-file PATH         Load settings from a .env file")
	c.io.Println()
	c.io.Println("Commands:")
	c.io.Println("  register               Create an account with an empty portfolio")
	c.io.Println("  login                  Login to server")
	c.io.Println("  logout                 Revoke the session on the server and forget it locally")
	c.io.Println("  refresh                Rotate the session tokens")
	c.io.Println("  status                 Show session and server status")
	c.io.Println("  dashboard [-limit N]   Show portfolio summary, assets and recent transactions")
	c.io.Println("  add [flags]            Add an asset (-type -code -name -qty -price [-date])")
	c.io.Println("  update ID [flags]      Change quantity and/or price (-qty -price); -qty 0 removes")
	c.io.Println("  remove ID              Remove an asset")
	c.io.Println()
	c.io.Println("Examples:")
	c.io.Println("  portfolio login")
	c.io.Println("  portfolio add -type STOCK -code AAPL -name 'Apple Inc.' -qty 10 -price 150.50")
	c.io.Println("  portfolio update 3f0c...e1 -qty 5")
	c.io.Println("  portfolio -server https://example.com dashboard -limit 5")
}

func (c *Cli) formatTime(t time.Time) string {
	return t.In(time.Local).Format("2006-01-02 15:04:05")
}
