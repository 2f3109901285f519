package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/portfolio-tracker/internal/client/storage"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Status ===")
	c.io.Println()

	if health, err := c.portfolio.Health(ctx); err != nil {
		c.io.Printf("Server: unreachable (%v)\n", err)
	} else {
		c.io.Printf("Server: %s (version %s, database %s)\n", health.Status, health.Version, health.Database)
	}

	data, err := c.session.Current(ctx)
	if errors.Is(err, storage.ErrAuthNotFound) {
		c.io.Println("Session: not authenticated")
		c.io.Println()
		c.io.Println("Run 'portfolio login' to authenticate.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}

	now := c.clock.Now()

	c.io.Println("Session: authenticated")
	c.io.Printf("Email: %s\n", data.Email)
	c.io.Printf("User ID: %s\n", data.UserID)
	if data.PortfolioID != "" {
		c.io.Printf("Portfolio ID: %s\n", data.PortfolioID)
	}

	if data.AccessExpired(now) {
		c.io.Println("Access token: expired (refreshed automatically on next request)")
	} else {
		c.io.Printf("Access token: valid for %s\n", data.AccessExpiresAt.Sub(now).Round(time.Second))
	}

	if data.RefreshExpired(now) {
		c.io.Println("⚠️  Session has expired. Please login again.")
	} else {
		c.io.Printf("Session expires: %s\n", c.formatTime(data.RefreshExpiresAt))
	}

	return nil
}
