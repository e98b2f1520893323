package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Simplici0/printledger/internal/engine"
	"github.com/Simplici0/printledger/internal/ledger"
)

func newSaleCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sale",
		Short: "Record and list sales",
	}
	cmd.AddCommand(newSaleRecordCommand(opts))
	cmd.AddCommand(newSaleListCommand(opts))
	return cmd
}

func newSaleRecordCommand(opts *RootOptions) *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:     "record PRODUCT_ID",
		Short:   "Record a sale priced at the current settings",
		Example: `  printledger sale record 1 --quantity 3`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withEngine(cmd, func(ctx context.Context, eng *engine.Engine) error {
				id, err := eng.RecordSale(ctx, productID, quantity)
				if err != nil {
					return err
				}
				sale, err := eng.GetSale(ctx, id)
				if err != nil {
					return err
				}
				return opts.output(cmd).Render(sale, func(w io.Writer) {
					b := sale.Breakdown()
					fmt.Fprintf(w, "Recorded sale #%d: %d x %s on %s\n", sale.ID, sale.Quantity, sale.ProductName, sale.Date)
					fmt.Fprintf(w, "Revenue:\t%s\n", money(b.TotalSaleAmount))
					fmt.Fprintf(w, "Filament cost:\t%s\n", money(b.FilamentCost))
					fmt.Fprintf(w, "Energy cost:\t%s\n", money(b.EnergyCost))
					fmt.Fprintf(w, "Profit:\t%s\n", signed(b.Profit()))
				})
			})
		},
	}

	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "units sold")
	return cmd
}

func newSaleListCommand(opts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sales, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return NewExitError(ExitCommandError, "limit must be zero or positive")
			}
			return opts.withEngine(cmd, func(ctx context.Context, eng *engine.Engine) error {
				sales, err := eng.ListSales(ctx)
				if err != nil {
					return err
				}
				if limit > 0 && len(sales) > limit {
					sales = sales[:limit]
				}
				return opts.output(cmd).Render(sales, func(w io.Writer) {
					writeSales(w, sales)
				})
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "show at most N sales (0 for all)")
	return cmd
}

func writeSales(w io.Writer, sales []ledger.Sale) {
	if len(sales) == 0 {
		fmt.Fprintln(w, "No sales.")
		return
	}
	fmt.Fprintln(w, "DATE\tID\tPRODUCT\tQTY\tREVENUE\tFILAMENT\tENERGY\tPROFIT")
	for _, s := range sales {
		b := s.Breakdown()
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\t%s\t%s\t%s\n", s.Date, s.ID, s.ProductName, s.Quantity,
			money(b.TotalSaleAmount), money(b.FilamentCost), money(b.EnergyCost), signed(b.Profit()))
	}
}
