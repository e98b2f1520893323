// Package report derives financial summaries from ledger sales.
//
// All functions are read-only. Product rollups are keyed by product name, so
// sales of distinct products sharing a name are merged into one row.
package report

import (
	"context"
	"sort"

	"github.com/Simplici0/printledger/internal/ledger"
)

// Summary is the headline financial position of the ledger.
type Summary struct {
	TotalRevenue float64 `json:"total_revenue" yaml:"total_revenue"`
	TotalCost    float64 `json:"total_cost" yaml:"total_cost"`
	Profit       float64 `json:"profit" yaml:"profit"`
	MarginPct    float64 `json:"margin_pct" yaml:"margin_pct"`
}

// CostBreakdown splits total cost by type.
type CostBreakdown struct {
	FilamentTotal float64 `json:"filament_total" yaml:"filament_total"`
	EnergyTotal   float64 `json:"energy_total" yaml:"energy_total"`
}

// RevenuePoint is one day of the cumulative revenue series.
type RevenuePoint struct {
	Date              ledger.Date `json:"date" yaml:"date"`
	Revenue           float64     `json:"revenue" yaml:"revenue"`
	CumulativeRevenue float64     `json:"cumulative_revenue" yaml:"cumulative_revenue"`
}

// ProductTotals rolls up every sale of one product name.
type ProductTotals struct {
	QuantityTotal     int     `json:"quantity_total" yaml:"quantity_total"`
	RevenueTotal      float64 `json:"revenue_total" yaml:"revenue_total"`
	FilamentCostTotal float64 `json:"filament_cost_total" yaml:"filament_cost_total"`
	EnergyCostTotal   float64 `json:"energy_cost_total" yaml:"energy_cost_total"`
	ProfitTotal       float64 `json:"profit_total" yaml:"profit_total"`
}

// FinancialSummary totals revenue and cost. Margin is 0 when there is no revenue.
func FinancialSummary(sales []ledger.Sale) Summary {
	var revenue, filament, energy float64
	for _, s := range sales {
		revenue += s.TotalSaleAmount
		filament += s.FilamentCost
		energy += s.EnergyCost
	}

	cost := filament + energy
	profit := revenue - cost

	margin := 0.0
	if revenue > 0 {
		margin = profit / revenue * 100
	}

	return Summary{
		TotalRevenue: revenue,
		TotalCost:    cost,
		Profit:       profit,
		MarginPct:    margin,
	}
}

// SalesByProduct sums quantity per product name.
func SalesByProduct(sales []ledger.Sale) map[string]int {
	out := make(map[string]int)
	for _, s := range sales {
		out[s.ProductName] += s.Quantity
	}
	return out
}

// CumulativeRevenueByDate returns per-day revenue and its running total,
// dates ascending.
func CumulativeRevenueByDate(sales []ledger.Sale) []RevenuePoint {
	daily := make(map[ledger.Date]float64)
	for _, s := range sales {
		daily[s.Date] += s.TotalSaleAmount
	}

	dates := make([]ledger.Date, 0, len(daily))
	for d := range daily {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	points := make([]RevenuePoint, 0, len(dates))
	running := 0.0
	for _, d := range dates {
		running += daily[d]
		points = append(points, RevenuePoint{Date: d, Revenue: daily[d], CumulativeRevenue: running})
	}
	return points
}

// Costs sums filament and energy cost across sales.
func Costs(sales []ledger.Sale) CostBreakdown {
	var out CostBreakdown
	for _, s := range sales {
		out.FilamentTotal += s.FilamentCost
		out.EnergyTotal += s.EnergyCost
	}
	return out
}

// ProductSummary rolls up quantity, revenue, costs and profit per product name.
func ProductSummary(sales []ledger.Sale) map[string]ProductTotals {
	out := make(map[string]ProductTotals)
	for _, s := range sales {
		t := out[s.ProductName]
		t.QuantityTotal += s.Quantity
		t.RevenueTotal += s.TotalSaleAmount
		t.FilamentCostTotal += s.FilamentCost
		t.EnergyCostTotal += s.EnergyCost
		out[s.ProductName] = t
	}
	for name, t := range out {
		t.ProfitTotal = t.RevenueTotal - t.FilamentCostTotal - t.EnergyCostTotal
		out[name] = t
	}
	return out
}

// Source lists ledger sales.
type Source interface {
	List(ctx context.Context) ([]ledger.Sale, error)
}

// Reporter runs the report functions over a fresh read of its source.
type Reporter struct {
	src Source
}

// New returns a Reporter reading from src.
func New(src Source) *Reporter {
	return &Reporter{src: src}
}

func (r *Reporter) FinancialSummary(ctx context.Context) (Summary, error) {
	sales, err := r.src.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	return FinancialSummary(sales), nil
}

func (r *Reporter) SalesByProduct(ctx context.Context) (map[string]int, error) {
	sales, err := r.src.List(ctx)
	if err != nil {
		return nil, err
	}
	return SalesByProduct(sales), nil
}

func (r *Reporter) CumulativeRevenueByDate(ctx context.Context) ([]RevenuePoint, error) {
	sales, err := r.src.List(ctx)
	if err != nil {
		return nil, err
	}
	return CumulativeRevenueByDate(sales), nil
}

func (r *Reporter) CostBreakdown(ctx context.Context) (CostBreakdown, error) {
	sales, err := r.src.List(ctx)
	if err != nil {
		return CostBreakdown{}, err
	}
	return Costs(sales), nil
}

func (r *Reporter) ProductSummary(ctx context.Context) (map[string]ProductTotals, error) {
	sales, err := r.src.List(ctx)
	if err != nil {
		return nil, err
	}
	return ProductSummary(sales), nil
}
