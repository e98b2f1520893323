package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Simplici0/printledger/internal/catalog"
	"github.com/Simplici0/printledger/internal/engine"
)

func newProductCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage the product catalog",
	}
	cmd.AddCommand(newProductAddCommand(opts))
	cmd.AddCommand(newProductListCommand(opts))
	cmd.AddCommand(newProductShowCommand(opts))
	return cmd
}

func newProductAddCommand(opts *RootOptions) *cobra.Command {
	var p catalog.NewProduct

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a product",
		Example: `  printledger product add --name "Gear" --hours 2 --grams 20 --price 10`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEngine(cmd, func(ctx context.Context, eng *engine.Engine) error {
				id, err := eng.AddProduct(ctx, p)
				if err != nil {
					return err
				}
				product, err := eng.GetProduct(ctx, id)
				if err != nil {
					return err
				}
				return opts.output(cmd).Render(product, func(w io.Writer) {
					fmt.Fprintf(w, "Added product #%d %s\n", product.ID, product.Name)
				})
			})
		},
	}

	cmd.Flags().StringVar(&p.Name, "name", "", "product name")
	cmd.Flags().Float64Var(&p.PrintTimeHours, "hours", 0, "print time per unit in hours")
	cmd.Flags().Float64Var(&p.FilamentWeightGrams, "grams", 0, "filament weight per unit in grams")
	cmd.Flags().Float64Var(&p.UnitSalePrice, "price", 0, "unit sale price")
	for _, name := range []string{"name", "hours", "grams", "price"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newProductListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List products in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEngine(cmd, func(ctx context.Context, eng *engine.Engine) error {
				products, err := eng.ListProducts(ctx)
				if err != nil {
					return err
				}
				return opts.output(cmd).Render(products, func(w io.Writer) {
					if len(products) == 0 {
						fmt.Fprintln(w, "No products.")
						return
					}
					fmt.Fprintln(w, "ID\tNAME\tHOURS\tGRAMS\tPRICE")
					for _, p := range products {
						fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Name,
							number(p.PrintTimeHours), number(p.FilamentWeightGrams), money(p.UnitSalePrice))
					}
				})
			})
		},
	}
}

func newProductShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withEngine(cmd, func(ctx context.Context, eng *engine.Engine) error {
				p, err := eng.GetProduct(ctx, id)
				if err != nil {
					return err
				}
				return opts.output(cmd).Render(p, func(w io.Writer) {
					fmt.Fprintf(w, "ID:\t%d\n", p.ID)
					fmt.Fprintf(w, "Name:\t%s\n", p.Name)
					fmt.Fprintf(w, "Print time (h):\t%s\n", number(p.PrintTimeHours))
					fmt.Fprintf(w, "Filament (g):\t%s\n", number(p.FilamentWeightGrams))
					fmt.Fprintf(w, "Unit price:\t%s\n", money(p.UnitSalePrice))
				})
			})
		},
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid id %q", raw))
	}
	return id, nil
}
