package cli

import (
	"context"
	"errors"

	"github.com/iudanet/portfolio-tracker/internal/client/storage"
)

func (c *Cli) runLogout(ctx context.Context) error {
	err := c.session.Logout(ctx)
	if errors.Is(err, storage.ErrAuthNotFound) {
		c.io.Println("Not logged in.")
		return nil
	}
	if err != nil {
		// локальная сессия уже удалена
		c.io.Printf("Warning: server logout failed: %v\n", err)
	}

	c.io.Println("✓ Logged out")
	return nil
}
