package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Simplici0/printledger/internal/apperr"
	"github.com/Simplici0/printledger/internal/costing"
	"github.com/Simplici0/printledger/internal/db"
)

// Product is a printable item with its cost drivers and sale price.
type Product struct {
	ID                  int64   `json:"id" yaml:"id"`
	Name                string  `json:"name" yaml:"name"`
	PrintTimeHours      float64 `json:"print_time_hours" yaml:"print_time_hours"`
	FilamentWeightGrams float64 `json:"filament_weight_grams" yaml:"filament_weight_grams"`
	UnitSalePrice       float64 `json:"unit_sale_price" yaml:"unit_sale_price"`
}

// CostInput returns the product's per-unit costing input.
func (p Product) CostInput() costing.ItemInput {
	return costing.ItemInput{
		PrintTimeHours:      p.PrintTimeHours,
		FilamentWeightGrams: p.FilamentWeightGrams,
		UnitSalePrice:       p.UnitSalePrice,
	}
}

// NewProduct holds the fields supplied when creating a product.
type NewProduct struct {
	Name                string  `json:"name"`
	PrintTimeHours      float64 `json:"print_time_hours"`
	FilamentWeightGrams float64 `json:"filament_weight_grams"`
	UnitSalePrice       float64 `json:"unit_sale_price"`
}

// Validate checks the name is non-empty and all numbers are finite and positive.
func (p NewProduct) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperr.Invalid("name is required")
	}
	if err := positive("print_time_hours", p.PrintTimeHours); err != nil {
		return err
	}
	if err := positive("filament_weight_grams", p.FilamentWeightGrams); err != nil {
		return err
	}
	return positive("unit_sale_price", p.UnitSalePrice)
}

func positive(field string, v float64) error {
	if !(v > 0) || math.IsInf(v, 1) {
		return apperr.Invalid("%s must be a positive number, got %v", field, v)
	}
	return nil
}

// Catalog stores product definitions. Products are never updated or deleted.
type Catalog struct {
	db *sql.DB
}

// New returns a Catalog backed by database.
func New(database *sql.DB) *Catalog {
	return &Catalog{db: database}
}

// Add validates and inserts p, returning the new product id.
func (c *Catalog) Add(ctx context.Context, p NewProduct) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	result, err := c.db.ExecContext(ctx, `
		INSERT INTO products (name, print_time_hours, filament_weight_grams, unit_sale_price)
		VALUES (?, ?, ?, ?)
	`, strings.TrimSpace(p.Name), p.PrintTimeHours, p.FilamentWeightGrams, p.UnitSalePrice)
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read product id: %w", err)
	}
	return id, nil
}

// Get returns the product with the given id.
func (c *Catalog) Get(ctx context.Context, id int64) (Product, error) {
	return Lookup(ctx, c.db, id)
}

// List returns all products in insertion order.
func (c *Catalog) List(ctx context.Context) ([]Product, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, print_time_hours, filament_weight_grams, unit_sale_price
		FROM products
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.PrintTimeHours, &p.FilamentWeightGrams, &p.UnitSalePrice); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// Lookup reads a product through q, which may be a transaction.
func Lookup(ctx context.Context, q db.Querier, id int64) (Product, error) {
	var p Product
	err := q.QueryRowContext(ctx, `
		SELECT id, name, print_time_hours, filament_weight_grams, unit_sale_price
		FROM products
		WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.PrintTimeHours, &p.FilamentWeightGrams, &p.UnitSalePrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, apperr.NotFoundf("product not found: id %d", id)
		}
		return Product{}, fmt.Errorf("query product: %w", err)
	}
	return p, nil
}
