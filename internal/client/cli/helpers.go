package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// displayCurrency все суммы на сервере хранятся без валюты, показываем в USD
const displayCurrency = money.USD

// formatMoney форматирует сумму через go-money с округлением до центов
func formatMoney(amount decimal.Decimal) string {
	cur := money.GetCurrency(displayCurrency)
	factor := decimal.New(1, int32(cur.Fraction))
	return money.New(amount.Mul(factor).Round(0).IntPart(), displayCurrency).Display()
}

// formatPercent показывает процент со знаком
func formatPercent(p decimal.Decimal) string {
	if p.IsPositive() {
		return "+" + p.StringFixed(2) + "%"
	}
	return p.StringFixed(2) + "%"
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s must be a number", field)
	}
	return d, nil
}

// parseDate понимает YYYY-MM-DD и RFC3339
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD or RFC3339")
	}
	return t.UTC(), nil
}

// splitID отделяет позиционный id от флагов, чтобы работали оба порядка:
// "update ID -qty 5" и "update -qty 5 ID"
func splitID(args []string) (string, []string) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return args[0], args[1:]
	}
	return "", args
}

// resolvePortfolio возвращает явно указанный портфель, сохраненный в сессии,
// либо узнает его через dashboard и запоминает
func (c *Cli) resolvePortfolio(ctx context.Context, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	data, err := c.session.Current(ctx)
	if err != nil {
		return "", err
	}
	if data.PortfolioID != "" {
		return data.PortfolioID, nil
	}

	var portfolioID string
	err = c.session.Do(ctx, func(token string) error {
		dashboard, err := c.portfolio.Dashboard(ctx, token)
		if err != nil {
			return err
		}
		portfolioID = dashboard.Summary.PortfolioID
		return nil
	})
	if err != nil {
		return "", err
	}

	if err := c.session.RememberPortfolio(ctx, portfolioID); err != nil {
		return "", fmt.Errorf("failed to save portfolio id: %w", err)
	}
	return portfolioID, nil
}
