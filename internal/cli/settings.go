package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Simplici0/printledger/internal/engine"
	"github.com/Simplici0/printledger/internal/settings"
)

func newSettingsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change cost parameters",
	}
	cmd.AddCommand(newSettingsShowCommand(opts))
	cmd.AddCommand(newSettingsSetCommand(opts))
	return cmd
}

func newSettingsShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current cost parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEngine(cmd, func(ctx context.Context, eng *engine.Engine) error {
				s, err := eng.GetSettings(ctx)
				if err != nil {
					return err
				}
				return renderSettings(opts.output(cmd), s)
			})
		},
	}
}

func newSettingsSetCommand(opts *RootOptions) *cobra.Command {
	var kwhPrice, power, filamentPrice float64

	cmd := &cobra.Command{
		Use:     "set",
		Short:   "Update cost parameters; only the flags given are changed",
		Example: `  printledger settings set --power 250 --filament-price 95`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var u settings.Update
			if cmd.Flags().Changed("kwh-price") {
				u.KWhPrice = &kwhPrice
			}
			if cmd.Flags().Changed("power") {
				u.PrinterPowerWatts = &power
			}
			if cmd.Flags().Changed("filament-price") {
				u.FilamentPricePerKg = &filamentPrice
			}
			if u.IsEmpty() {
				return NewExitError(ExitCommandError, "nothing to update: pass --kwh-price, --power or --filament-price")
			}
			return opts.withEngine(cmd, func(ctx context.Context, eng *engine.Engine) error {
				s, err := eng.UpdateSettings(ctx, u)
				if err != nil {
					return err
				}
				return renderSettings(opts.output(cmd), s)
			})
		},
	}

	cmd.Flags().Float64Var(&kwhPrice, "kwh-price", 0, "price of one kWh")
	cmd.Flags().Float64Var(&power, "power", 0, "printer power draw in watts")
	cmd.Flags().Float64Var(&filamentPrice, "filament-price", 0, "filament price per kg")
	return cmd
}

func renderSettings(out *OutputFormatter, s settings.Settings) error {
	return out.Render(s, func(w io.Writer) {
		fmt.Fprintf(w, "kWh price:\t%s\n", number(s.KWhPrice))
		fmt.Fprintf(w, "Printer power (W):\t%s\n", number(s.PrinterPowerWatts))
		fmt.Fprintf(w, "Filament price (/kg):\t%s\n", number(s.FilamentPricePerKg))
	})
}
