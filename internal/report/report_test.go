package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/printledger/internal/ledger"
)

func day(d int) ledger.Date {
	return ledger.Date{Year: 2026, Month: time.March, Day: d}
}

func sale(id int64, name string, qty int, revenue, filament, energy float64, date ledger.Date) ledger.Sale {
	return ledger.Sale{
		ID: id, ProductID: id, ProductName: name, Quantity: qty,
		TotalSaleAmount: revenue, FilamentCost: filament, EnergyCost: energy, Date: date,
	}
}

func TestFinancialSummary_EmptyLedgerIsExactlyZero(t *testing.T) {
	assert.Equal(t, Summary{}, FinancialSummary(nil))
	assert.Equal(t, Summary{}, FinancialSummary([]ledger.Sale{}))
}

func TestFinancialSummary_SingleSale(t *testing.T) {
	got := FinancialSummary([]ledger.Sale{sale(1, "Benchy", 2, 50, 8, 1.6, day(1))})

	assert.InDelta(t, 50.00, got.TotalRevenue, 1e-9)
	assert.InDelta(t, 9.60, got.TotalCost, 1e-9)
	assert.InDelta(t, 40.40, got.Profit, 1e-9)
	assert.InDelta(t, 80.8, got.MarginPct, 1e-9)
}

func TestFinancialSummary_Loss(t *testing.T) {
	got := FinancialSummary([]ledger.Sale{sale(1, "Bust", 1, 10, 12, 3, day(1))})

	assert.InDelta(t, -5, got.Profit, 1e-9)
	assert.InDelta(t, -50, got.MarginPct, 1e-9)
}

func TestSalesByProduct_MergesSameName(t *testing.T) {
	sales := []ledger.Sale{
		sale(3, "Benchy", 2, 50, 8, 1.6, day(2)),
		sale(2, "Gear", 5, 25, 1, 1, day(2)),
		{ID: 1, ProductID: 99, ProductName: "Benchy", Quantity: 1, TotalSaleAmount: 30, Date: day(1)},
	}

	assert.Equal(t, map[string]int{"Benchy": 3, "Gear": 5}, SalesByProduct(sales))
	assert.Empty(t, SalesByProduct(nil))
}

func TestCumulativeRevenueByDate_AscendingRunningTotal(t *testing.T) {
	sales := []ledger.Sale{
		sale(3, "Gear", 1, 30, 1, 1, day(4)),
		sale(2, "Benchy", 1, 20, 1, 1, day(1)),
		sale(1, "Benchy", 1, 30, 1, 1, day(1)),
	}

	got := CumulativeRevenueByDate(sales)
	require.Len(t, got, 2)
	assert.Equal(t, day(1), got[0].Date)
	assert.InDelta(t, 50, got[0].Revenue, 1e-9)
	assert.InDelta(t, 50, got[0].CumulativeRevenue, 1e-9)
	assert.Equal(t, day(4), got[1].Date)
	assert.InDelta(t, 30, got[1].Revenue, 1e-9)
	assert.InDelta(t, 80, got[1].CumulativeRevenue, 1e-9)
}

func TestCumulativeRevenueByDate_Empty(t *testing.T) {
	got := CumulativeRevenueByDate(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCosts(t *testing.T) {
	got := Costs([]ledger.Sale{
		sale(1, "Benchy", 2, 50, 8, 1.6, day(1)),
		sale(2, "Gear", 1, 5, 0.4, 0.1, day(1)),
	})

	assert.InDelta(t, 8.4, got.FilamentTotal, 1e-9)
	assert.InDelta(t, 1.7, got.EnergyTotal, 1e-9)
}

func TestProductSummary(t *testing.T) {
	got := ProductSummary([]ledger.Sale{
		sale(1, "Benchy", 2, 50, 8, 1.6, day(1)),
		sale(2, "Benchy", 1, 25, 4, 0.8, day(2)),
		sale(3, "Gear", 4, 20, 2, 1, day(2)),
	})

	require.Len(t, got, 2)
	benchy := got["Benchy"]
	assert.Equal(t, 3, benchy.QuantityTotal)
	assert.InDelta(t, 75, benchy.RevenueTotal, 1e-9)
	assert.InDelta(t, 12, benchy.FilamentCostTotal, 1e-9)
	assert.InDelta(t, 2.4, benchy.EnergyCostTotal, 1e-9)
	assert.InDelta(t, 60.6, benchy.ProfitTotal, 1e-9)

	gear := got["Gear"]
	assert.Equal(t, 4, gear.QuantityTotal)
	assert.InDelta(t, 17, gear.ProfitTotal, 1e-9)
}

type stubSource struct {
	sales []ledger.Sale
	err   error
	calls int
}

func (s *stubSource) List(context.Context) ([]ledger.Sale, error) {
	s.calls++
	return s.sales, s.err
}

func TestReporter_ReadsSourceEachCall(t *testing.T) {
	ctx := context.Background()
	src := &stubSource{sales: []ledger.Sale{sale(1, "Benchy", 2, 50, 8, 1.6, day(1))}}
	r := New(src)

	first, err := r.FinancialSummary(ctx)
	require.NoError(t, err)
	second, err := r.FinancialSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	byProduct, err := r.SalesByProduct(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Benchy": 2}, byProduct)

	series, err := r.CumulativeRevenueByDate(ctx)
	require.NoError(t, err)
	assert.Len(t, series, 1)

	costs, err := r.CostBreakdown(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 8, costs.FilamentTotal, 1e-9)

	products, err := r.ProductSummary(ctx)
	require.NoError(t, err)
	assert.Contains(t, products, "Benchy")

	assert.Equal(t, 6, src.calls)
}

func TestReporter_PropagatesSourceError(t *testing.T) {
	boom := errors.New("database is locked")
	r := New(&stubSource{err: boom})

	_, err := r.FinancialSummary(context.Background())
	assert.ErrorIs(t, err, boom)
	_, err = r.ProductSummary(context.Background())
	assert.ErrorIs(t, err, boom)
}
