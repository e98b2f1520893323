package costing

import "math"

// ItemInput represents the per-unit cost drivers of a printable product.
type ItemInput struct {
	PrintTimeHours      float64
	FilamentWeightGrams float64
	UnitSalePrice       float64
}

// Rates represents the shared cost parameters in effect for a calculation.
type Rates struct {
	KWhPrice           float64
	PrinterPowerWatts  float64
	FilamentPricePerKg float64
}

// Breakdown contains the line items of a sale of quantity units.
type Breakdown struct {
	EnergyCost      float64
	FilamentCost    float64
	TotalSaleAmount float64
}

// TotalCost is the sum of filament and energy cost.
func (b Breakdown) TotalCost() float64 {
	return b.FilamentCost + b.EnergyCost
}

// Profit is the sale amount minus total cost.
func (b Breakdown) Profit() float64 {
	return b.TotalSaleAmount - b.TotalCost()
}

// IsFinite reports whether every amount, including the derived totals, is a
// finite number.
func (b Breakdown) IsFinite() bool {
	for _, v := range []float64{b.EnergyCost, b.FilamentCost, b.TotalSaleAmount, b.TotalCost(), b.Profit()} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}

// Calculate computes the cost breakdown for quantity units of item under rates.
// No rounding is applied.
func Calculate(item ItemInput, quantity int, rates Rates) Breakdown {
	q := float64(quantity)

	kwhPerUnit := (rates.PrinterPowerWatts / 1000.0) * item.PrintTimeHours
	energyCost := kwhPerUnit * rates.KWhPrice * q
	filamentCost := (item.FilamentWeightGrams / 1000.0) * rates.FilamentPricePerKg * q
	total := item.UnitSalePrice * q

	return Breakdown{
		EnergyCost:      energyCost,
		FilamentCost:    filamentCost,
		TotalSaleAmount: total,
	}
}
