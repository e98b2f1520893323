package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Simplici0/printledger/internal/engine"
)

func newReportCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate reports over the sales ledger",
	}
	cmd.AddCommand(reportCommand(opts, "summary", "Total revenue, cost, profit and margin", renderSummary))
	cmd.AddCommand(reportCommand(opts, "by-product", "Units sold per product name", renderByProduct))
	cmd.AddCommand(reportCommand(opts, "cumulative", "Daily and cumulative revenue", renderCumulative))
	cmd.AddCommand(reportCommand(opts, "costs", "Filament and energy cost totals", renderCosts))
	cmd.AddCommand(reportCommand(opts, "products", "Per-product revenue, cost and profit", renderProducts))
	return cmd
}

type reportFunc func(ctx context.Context, eng *engine.Engine, out *OutputFormatter) error

func reportCommand(opts *RootOptions, use, short string, run reportFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEngine(cmd, func(ctx context.Context, eng *engine.Engine) error {
				return run(ctx, eng, opts.output(cmd))
			})
		},
	}
}

func renderSummary(ctx context.Context, eng *engine.Engine, out *OutputFormatter) error {
	s, err := eng.FinancialSummary(ctx)
	if err != nil {
		return err
	}
	return out.Render(s, func(w io.Writer) {
		fmt.Fprintf(w, "Revenue:\t%s\n", money(s.TotalRevenue))
		fmt.Fprintf(w, "Cost:\t%s\n", money(s.TotalCost))
		fmt.Fprintf(w, "Profit:\t%s\n", signed(s.Profit))
		fmt.Fprintf(w, "Margin:\t%s\n", percent(s.MarginPct))
	})
}

func renderByProduct(ctx context.Context, eng *engine.Engine, out *OutputFormatter) error {
	counts, err := eng.SalesByProduct(ctx)
	if err != nil {
		return err
	}
	return out.Render(counts, func(w io.Writer) {
		if len(counts) == 0 {
			fmt.Fprintln(w, "No sales.")
			return
		}
		fmt.Fprintln(w, "PRODUCT\tQTY")
		for _, name := range sortedKeys(counts) {
			fmt.Fprintf(w, "%s\t%d\n", name, counts[name])
		}
	})
}

func renderCumulative(ctx context.Context, eng *engine.Engine, out *OutputFormatter) error {
	points, err := eng.CumulativeRevenueByDate(ctx)
	if err != nil {
		return err
	}
	return out.Render(points, func(w io.Writer) {
		if len(points) == 0 {
			fmt.Fprintln(w, "No sales.")
			return
		}
		fmt.Fprintln(w, "DATE\tREVENUE\tCUMULATIVE")
		for _, p := range points {
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.Date, money(p.Revenue), money(p.CumulativeRevenue))
		}
	})
}

func renderCosts(ctx context.Context, eng *engine.Engine, out *OutputFormatter) error {
	c, err := eng.CostBreakdown(ctx)
	if err != nil {
		return err
	}
	return out.Render(c, func(w io.Writer) {
		fmt.Fprintf(w, "Filament:\t%s\n", money(c.FilamentTotal))
		fmt.Fprintf(w, "Energy:\t%s\n", money(c.EnergyTotal))
	})
}

func renderProducts(ctx context.Context, eng *engine.Engine, out *OutputFormatter) error {
	totals, err := eng.ProductSummary(ctx)
	if err != nil {
		return err
	}
	return out.Render(totals, func(w io.Writer) {
		if len(totals) == 0 {
			fmt.Fprintln(w, "No sales.")
			return
		}
		fmt.Fprintln(w, "PRODUCT\tQTY\tREVENUE\tFILAMENT\tENERGY\tPROFIT")
		for _, name := range sortedKeys(totals) {
			t := totals[name]
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n", name, t.QuantityTotal,
				money(t.RevenueTotal), money(t.FilamentCostTotal), money(t.EnergyCostTotal), signed(t.ProfitTotal))
		}
	})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
