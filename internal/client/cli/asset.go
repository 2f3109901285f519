package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/iudanet/portfolio-tracker/internal/validation"
	"github.com/iudanet/portfolio-tracker/pkg/api"
)

func (c *Cli) runAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(c.io)
	assetType := fs.String("type", "", "asset type: STOCK, BOND or MUTUAL_FUND")
	code := fs.String("code", "", "asset code, e.g. AAPL")
	name := fs.String("name", "", "asset name")
	qty := fs.String("qty", "", "quantity")
	price := fs.String("price", "", "purchase price per unit")
	date := fs.String("date", "", "purchase date (YYYY-MM-DD), defaults to now")
	portfolioID := fs.String("portfolio", "", "portfolio id, defaults to your portfolio")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	// недостающие значения спрашиваем интерактивно
	prompts := []struct {
		value  *string
		prompt string
	}{
		{assetType, "Type (STOCK, BOND, MUTUAL_FUND): "},
		{code, "Code: "},
		{name, "Name: "},
		{qty, "Quantity: "},
		{price, "Price: "},
	}
	for _, p := range prompts {
		if *p.value != "" {
			continue
		}
		v, err := c.io.ReadInput(p.prompt)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		*p.value = v
	}

	req := api.AddAssetRequest{
		AssetType: strings.ToUpper(strings.TrimSpace(*assetType)),
		Code:      strings.TrimSpace(*code),
		Name:      strings.TrimSpace(*name),
	}

	var err error
	if req.Quantity, err = parseDecimal("quantity", *qty); err != nil {
		return err
	}
	if req.Price, err = parseDecimal("price", *price); err != nil {
		return err
	}
	if *date != "" {
		purchased, err := parseDate(*date)
		if err != nil {
			return err
		}
		req.PurchaseDate = &purchased
	}

	for _, check := range []error{
		validation.ValidateAssetType(req.AssetType),
		validation.ValidateAssetCode(req.Code),
		validation.ValidateName("name", req.Name),
		validation.ValidateQuantity(req.Quantity),
		validation.ValidatePrice(req.Price),
	} {
		if check != nil {
			return check
		}
	}

	target, err := c.resolvePortfolio(ctx, *portfolioID)
	if err != nil {
		return err
	}

	var asset *api.AssetResponse
	err = c.session.Do(ctx, func(token string) error {
		var err error
		asset, err = c.portfolio.AddAsset(ctx, token, target, req)
		return err
	})
	if err != nil {
		return err
	}

	c.io.Println("✓ Asset added")
	c.printAsset(asset)
	return nil
}

func (c *Cli) runUpdate(ctx context.Context, args []string) error {
	assetID, rest := splitID(args)

	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(c.io)
	qty := fs.String("qty", "", "new quantity (0 removes the asset)")
	price := fs.String("price", "", "new purchase price per unit")
	portfolioID := fs.String("portfolio", "", "portfolio id, defaults to your portfolio")
	if err := fs.Parse(rest); err != nil {
		return ErrUsage
	}
	if assetID == "" {
		assetID = fs.Arg(0)
	}
	if assetID == "" {
		return fmt.Errorf("%w: update requires an asset id", ErrUsage)
	}

	var req api.UpdateAssetRequest
	if *qty != "" {
		q, err := parseDecimal("quantity", *qty)
		if err != nil {
			return err
		}
		if err := validation.ValidateUpdateQuantity(q); err != nil {
			return err
		}
		req.Quantity = &q
	}
	if *price != "" {
		p, err := parseDecimal("price", *price)
		if err != nil {
			return err
		}
		if err := validation.ValidatePrice(p); err != nil {
			return err
		}
		req.Price = &p
	}
	if req.Quantity == nil && req.Price == nil {
		return fmt.Errorf("%w: nothing to update, pass -qty and/or -price", ErrUsage)
	}

	target, err := c.resolvePortfolio(ctx, *portfolioID)
	if err != nil {
		return err
	}

	var asset *api.AssetResponse
	err = c.session.Do(ctx, func(token string) error {
		var err error
		asset, err = c.portfolio.UpdateAsset(ctx, token, target, assetID, req)
		return err
	})
	if err != nil {
		return err
	}

	if req.Quantity != nil && req.Quantity.IsZero() {
		c.io.Println("✓ Asset removed")
		return nil
	}

	c.io.Println("✓ Asset updated")
	c.printAsset(asset)
	return nil
}

func (c *Cli) runRemove(ctx context.Context, args []string) error {
	assetID, rest := splitID(args)

	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	fs.SetOutput(c.io)
	portfolioID := fs.String("portfolio", "", "portfolio id, defaults to your portfolio")
	if err := fs.Parse(rest); err != nil {
		return ErrUsage
	}
	if assetID == "" {
		assetID = fs.Arg(0)
	}
	if assetID == "" {
		return fmt.Errorf("%w: remove requires an asset id", ErrUsage)
	}

	target, err := c.resolvePortfolio(ctx, *portfolioID)
	if err != nil {
		return err
	}

	err = c.session.Do(ctx, func(token string) error {
		return c.portfolio.RemoveAsset(ctx, token, target, assetID)
	})
	if err != nil {
		return err
	}

	c.io.Println("✓ Asset removed")
	return nil
}

func (c *Cli) printAsset(a *api.AssetResponse) {
	if a == nil {
		return
	}
	c.io.Printf("ID:            %s\n", a.ID)
	c.io.Printf("Asset:         %s %s (%s)\n", a.AssetType, a.Code, a.Name)
	c.io.Printf("Quantity:      %s\n", a.Quantity.String())
	c.io.Printf("Buy price:     %s\n", formatMoney(a.Price))
	c.io.Printf("Current price: %s\n", formatMoney(a.CurrentPrice))
	c.io.Printf("Value:         %s\n", formatMoney(a.CurrentValue))
	c.io.Printf("Gain/loss:     %s (%s)\n", formatMoney(a.GainLossAmount), formatPercent(a.GainLossPercentage))
}
