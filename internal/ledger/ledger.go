package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/printledger/internal/apperr"
	"github.com/Simplici0/printledger/internal/catalog"
	"github.com/Simplici0/printledger/internal/costing"
	"github.com/Simplici0/printledger/internal/db"
	"github.com/Simplici0/printledger/internal/settings"
)

// Sale is an immutable ledger entry. Its cost fields are the breakdown
// computed when it was recorded and are never recomputed.
type Sale struct {
	ID              int64   `json:"id" yaml:"id"`
	ProductID       int64   `json:"product_id" yaml:"product_id"`
	ProductName     string  `json:"product_name" yaml:"product_name"`
	Quantity        int     `json:"quantity" yaml:"quantity"`
	TotalSaleAmount float64 `json:"total_sale_amount" yaml:"total_sale_amount"`
	FilamentCost    float64 `json:"filament_cost" yaml:"filament_cost"`
	EnergyCost      float64 `json:"energy_cost" yaml:"energy_cost"`
	Date            Date    `json:"date" yaml:"date"`
}

// Breakdown returns the stored cost breakdown.
func (s Sale) Breakdown() costing.Breakdown {
	return costing.Breakdown{
		EnergyCost:      s.EnergyCost,
		FilamentCost:    s.FilamentCost,
		TotalSaleAmount: s.TotalSaleAmount,
	}
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the wall clock used to date new sales.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// Ledger appends sales and reads them back. There is no update or delete.
type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

// New returns a Ledger backed by database.
func New(database *sql.DB, opts ...Option) *Ledger {
	l := &Ledger{db: database, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record prices quantity units of the product against the current settings
// and appends the result. Product lookup, settings read and insert share one
// transaction, so the sale reflects a single settings snapshot.
func (l *Ledger) Record(ctx context.Context, productID int64, quantity int) (Sale, error) {
	if quantity < 1 {
		return Sale{}, apperr.Invalid("quantity must be a positive integer, got %d", quantity)
	}

	var sale Sale
	err := db.WithTx(ctx, l.db, func(tx *sql.Tx) error {
		product, err := catalog.Lookup(ctx, tx, productID)
		if err != nil {
			return err
		}

		snapshot, err := settings.Read(ctx, tx)
		if err != nil {
			return err
		}

		breakdown := costing.Calculate(product.CostInput(), quantity, snapshot.Rates())
		if !breakdown.IsFinite() {
			return apperr.Invalid("sale of %d x product %d exceeds the representable amount range", quantity, product.ID)
		}
		date := DateOf(l.now())

		result, err := tx.ExecContext(ctx, `
			INSERT INTO sales (product_id, quantity, total_sale_amount, filament_cost, energy_cost, date)
			VALUES (?, ?, ?, ?, ?, ?)
		`, product.ID, quantity, breakdown.TotalSaleAmount, breakdown.FilamentCost, breakdown.EnergyCost, date.String())
		if err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("read sale id: %w", err)
		}

		sale = Sale{
			ID:              id,
			ProductID:       product.ID,
			ProductName:     product.Name,
			Quantity:        quantity,
			TotalSaleAmount: breakdown.TotalSaleAmount,
			FilamentCost:    breakdown.FilamentCost,
			EnergyCost:      breakdown.EnergyCost,
			Date:            date,
		}
		return nil
	})
	if err != nil {
		return Sale{}, err
	}

	return sale, nil
}

const selectSales = `
	SELECT s.id, s.product_id, p.name, s.quantity, s.total_sale_amount, s.filament_cost, s.energy_cost, s.date
	FROM sales s
	JOIN products p ON s.product_id = p.id
`

// Get returns the sale with the given id.
func (l *Ledger) Get(ctx context.Context, id int64) (Sale, error) {
	row := l.db.QueryRowContext(ctx, selectSales+` WHERE s.id = ?`, id)
	sale, err := scanSale(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Sale{}, apperr.NotFoundf("sale not found: id %d", id)
		}
		return Sale{}, fmt.Errorf("query sale: %w", err)
	}
	return sale, nil
}

// List returns every sale, most recent date first, later-created first
// within a date.
func (l *Ledger) List(ctx context.Context) ([]Sale, error) {
	rows, err := l.db.QueryContext(ctx, selectSales+` ORDER BY s.date DESC, s.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	sales := make([]Sale, 0)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, sale)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}

	return sales, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSale(row scanner) (Sale, error) {
	var s Sale
	var date string
	if err := row.Scan(&s.ID, &s.ProductID, &s.ProductName, &s.Quantity, &s.TotalSaleAmount, &s.FilamentCost, &s.EnergyCost, &date); err != nil {
		return Sale{}, err
	}

	d, err := ParseDate(date)
	if err != nil {
		return Sale{}, err
	}
	s.Date = d
	return s, nil
}
