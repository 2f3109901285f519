package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	if email == "" || password == "" {
		return fmt.Errorf("email and password are required")
	}

	c.io.Println()
	c.io.Println("Authenticating...")

	data, err := c.session.Login(ctx, email, password)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Email: %s\n", data.Email)
	c.io.Printf("Access token expires: %s\n", c.formatTime(data.AccessExpiresAt))
	c.io.Println("Your session has been saved.")

	return nil
}

func (c *Cli) runRefresh(ctx context.Context) error {
	data, err := c.session.Refresh(ctx)
	if err != nil {
		return err
	}

	c.io.Println("✓ Session refreshed")
	c.io.Printf("Access token expires: %s\n", c.formatTime(data.AccessExpiresAt))
	c.io.Printf("Refresh token expires: %s\n", c.formatTime(data.RefreshExpiresAt))

	return nil
}
