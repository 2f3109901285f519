package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/iudanet/portfolio-tracker/pkg/api"
)

const defaultTransactionLimit = 10

func (c *Cli) runDashboard(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	fs.SetOutput(c.io)
	limit := fs.Int("limit", defaultTransactionLimit, "number of recent transactions to show (0 = all)")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	var dashboard *api.DashboardResponse
	err := c.session.Do(ctx, func(token string) error {
		var err error
		dashboard, err = c.portfolio.Dashboard(ctx, token)
		return err
	})
	if err != nil {
		return err
	}

	if err := c.session.RememberPortfolio(ctx, dashboard.Summary.PortfolioID); err != nil {
		c.io.Printf("Warning: failed to remember portfolio id: %v\n", err)
	}

	c.printSummary(dashboard.Summary)
	c.printAssets(dashboard.Assets)
	c.printTransactions(dashboard.Transactions, *limit)

	return nil
}

func (c *Cli) printSummary(s api.SummaryResponse) {
	c.io.Println("=== Portfolio ===")
	c.io.Printf("ID: %s\n", s.PortfolioID)
	c.io.Printf("Total value:  %s\n", formatMoney(s.TotalValue))
	c.io.Printf("Total cost:   %s\n", formatMoney(s.TotalCost))
	c.io.Printf("Gain/loss:    %s (%s)\n", formatMoney(s.TotalGainLoss), formatPercent(s.TotalReturnPercentage))
	c.io.Printf("Updated:      %s\n", c.formatTime(s.LastUpdated))
	c.io.Println()
}

func (c *Cli) printAssets(assets []api.AssetResponse) {
	c.io.Println("=== Assets ===")
	if len(assets) == 0 {
		c.io.Println("No assets yet. Add one with 'portfolio add'.")
		c.io.Println()
		return
	}

	w := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTYPE\tCODE\tNAME\tQTY\tBUY PRICE\tPRICE\tVALUE\tGAIN/LOSS")
	for _, a := range assets {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s (%s)\n",
			a.ID, a.AssetType, a.Code, a.Name, a.Quantity.String(),
			formatMoney(a.Price), formatMoney(a.CurrentPrice), formatMoney(a.CurrentValue),
			formatMoney(a.GainLossAmount), formatPercent(a.GainLossPercentage),
		)
	}
	_ = w.Flush()
	c.io.Println()
}

func (c *Cli) printTransactions(t api.TransactionsResponse, limit int) {
	c.io.Println("=== Transactions ===")
	c.io.Printf("Total: %d  Bought: %s  Sold/removed: %s  Net flow: %s\n",
		t.TotalCount, formatMoney(t.TotalBuyAmount), formatMoney(t.TotalSellAmount), formatMoney(t.NetFlow))

	records := t.Records
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	if len(records) == 0 {
		return
	}

	w := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DATE\tTYPE\tCODE\tQTY\tPRICE\tAMOUNT")
	for _, r := range records {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.formatTime(r.CreatedAt), r.TransactionType, r.AssetCode, r.Quantity.String(),
			formatMoney(r.Price), formatMoney(r.TotalAmount),
		)
	}
	_ = w.Flush()

	if len(records) < len(t.Records) {
		c.io.Printf("... %d older transaction(s), use -limit 0 to show all\n", len(t.Records)-len(records))
	}
}
