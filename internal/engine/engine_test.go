package engine

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/printledger/internal/apperr"
	"github.com/Simplici0/printledger/internal/catalog"
	"github.com/Simplici0/printledger/internal/ledger"
	"github.com/Simplici0/printledger/internal/report"
	"github.com/Simplici0/printledger/internal/settings"
	"github.com/Simplici0/printledger/internal/testutil"
)

func openEngine(t *testing.T, clock *testutil.FixedClock, logger *slog.Logger) *Engine {
	t.Helper()
	e, err := Open(context.Background(), filepath.Join(t.TempDir(), "engine.db"), Options{
		Logger: logger,
		Now:    clock.Now,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func ptr(v float64) *float64 { return &v }

func TestOpen_SeedsDefaultsAndIsReopenable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "engine.db")

	e, err := Open(ctx, path, Options{})
	require.NoError(t, err)
	_, err = e.UpdateSettings(ctx, settings.Update{KWhPrice: ptr(1.1)})
	require.NoError(t, err)
	require.NoError(t, e.Close())

	reopened, err := Open(ctx, path, Options{})
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.Settings{KWhPrice: 1.1, PrinterPowerWatts: 200, FilamentPricePerKg: 80}, got)
}

func TestEmptyLedger(t *testing.T) {
	ctx := context.Background()
	e := openEngine(t, testutil.NewFixedClock(time.Now()), nil)

	summary, err := e.FinancialSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.Summary{}, summary)

	sales, err := e.ListSales(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales)

	series, err := e.CumulativeRevenueByDate(ctx)
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestSaleScenario_EndToEnd(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewFixedClock(time.Date(2026, 5, 10, 12, 0, 0, 0, time.Local))
	var logs bytes.Buffer
	e := openEngine(t, clock, slog.New(slog.NewTextHandler(&logs, nil)))

	productID, err := e.AddProduct(ctx, catalog.NewProduct{Name: "Benchy", PrintTimeHours: 5, FilamentWeightGrams: 50, UnitSalePrice: 25})
	require.NoError(t, err)

	saleID, err := e.RecordSale(ctx, productID, 2)
	require.NoError(t, err)

	sale, err := e.GetSale(ctx, saleID)
	require.NoError(t, err)
	assert.InDelta(t, 1.60, sale.EnergyCost, 1e-9)
	assert.InDelta(t, 8.00, sale.FilamentCost, 1e-9)
	assert.InDelta(t, 50.00, sale.TotalSaleAmount, 1e-9)
	assert.Equal(t, "2026-05-10", sale.Date.String())

	summary, err := e.FinancialSummary(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 50.00, summary.TotalRevenue, 1e-9)
	assert.InDelta(t, 9.60, summary.TotalCost, 1e-9)
	assert.InDelta(t, 40.40, summary.Profit, 1e-9)
	assert.InDelta(t, 80.8, summary.MarginPct, 1e-9)

	again, err := e.FinancialSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, summary, again)

	assert.Contains(t, logs.String(), "sale recorded")
	assert.Contains(t, logs.String(), "product added")
}

func TestCumulativeRevenueAcrossDays(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewFixedClock(time.Date(2026, 5, 10, 12, 0, 0, 0, time.Local))
	e := openEngine(t, clock, nil)

	benchy, err := e.AddProduct(ctx, catalog.NewProduct{Name: "Benchy", PrintTimeHours: 5, FilamentWeightGrams: 50, UnitSalePrice: 25})
	require.NoError(t, err)
	gear, err := e.AddProduct(ctx, catalog.NewProduct{Name: "Gear", PrintTimeHours: 1, FilamentWeightGrams: 20, UnitSalePrice: 10})
	require.NoError(t, err)

	_, err = e.RecordSale(ctx, benchy, 2)
	require.NoError(t, err)
	clock.Advance(24 * time.Hour)
	_, err = e.RecordSale(ctx, gear, 3)
	require.NoError(t, err)

	series, err := e.CumulativeRevenueByDate(ctx)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, ledger.Date{Year: 2026, Month: time.May, Day: 10}, series[0].Date)
	assert.InDelta(t, 50, series[0].CumulativeRevenue, 1e-9)
	assert.Equal(t, ledger.Date{Year: 2026, Month: time.May, Day: 11}, series[1].Date)
	assert.InDelta(t, 80, series[1].CumulativeRevenue, 1e-9)

	byProduct, err := e.SalesByProduct(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Benchy": 2, "Gear": 3}, byProduct)

	costs, err := e.CostBreakdown(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 8+4.8, costs.FilamentTotal, 1e-9)
	assert.InDelta(t, 1.6+0.48, costs.EnergyTotal, 1e-9)

	products, err := e.ProductSummary(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 30-4.8-0.48, products["Gear"].ProfitTotal, 1e-9)

	sales, err := e.ListSales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, "Gear", sales[0].ProductName)
}

func TestSettingsUpdateLeavesRecordedSalesUntouched(t *testing.T) {
	ctx := context.Background()
	e := openEngine(t, testutil.NewFixedClock(time.Now()), nil)

	productID, err := e.AddProduct(ctx, catalog.NewProduct{Name: "Benchy", PrintTimeHours: 5, FilamentWeightGrams: 50, UnitSalePrice: 25})
	require.NoError(t, err)
	saleID, err := e.RecordSale(ctx, productID, 2)
	require.NoError(t, err)
	before, err := e.GetSale(ctx, saleID)
	require.NoError(t, err)

	_, err = e.UpdateSettings(ctx, settings.Update{FilamentPricePerKg: ptr(500)})
	require.NoError(t, err)

	after, err := e.GetSale(ctx, saleID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRecordSale_UnknownProduct(t *testing.T) {
	ctx := context.Background()
	e := openEngine(t, testutil.NewFixedClock(time.Now()), nil)

	_, err := e.RecordSale(ctx, 404, 1)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.NotFound))

	sales, err := e.ListSales(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales)
}
