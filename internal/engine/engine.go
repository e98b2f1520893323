// Package engine is the costing and ledger engine behind every collaborator.
//
// An Engine owns one SQLite handle. It is built once per process with Open,
// which creates the schema and seeds default settings on first use.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Simplici0/printledger/internal/catalog"
	"github.com/Simplici0/printledger/internal/db"
	"github.com/Simplici0/printledger/internal/ledger"
	"github.com/Simplici0/printledger/internal/migrations"
	"github.com/Simplici0/printledger/internal/report"
	"github.com/Simplici0/printledger/internal/seed"
	"github.com/Simplici0/printledger/internal/settings"
)

// Options configures an Engine.
type Options struct {
	Logger *slog.Logger
	Now    func() time.Time
	Seed   seed.Config
}

// Engine wires the settings store, catalog, ledger and reports.
type Engine struct {
	db       *sql.DB
	logger   *slog.Logger
	settings *settings.Store
	catalog  *catalog.Catalog
	ledger   *ledger.Ledger
	reports  *report.Reporter
}

// Open opens the database at dbPath, applies migrations and seeds defaults.
func Open(ctx context.Context, dbPath string, opts Options) (*Engine, error) {
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}

	if err := migrations.Up(ctx, database); err != nil {
		database.Close()
		return nil, err
	}

	stats, err := seed.Run(ctx, database, opts.Seed)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("seed database: %w", err)
	}

	e := New(database, opts)
	e.logger.Debug("engine opened", "db_path", dbPath, "seed_inserts", stats.Inserts)
	return e, nil
}

// New builds an Engine on an already migrated and seeded database.
func New(database *sql.DB, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var ledgerOpts []ledger.Option
	if opts.Now != nil {
		ledgerOpts = append(ledgerOpts, ledger.WithClock(opts.Now))
	}

	l := ledger.New(database, ledgerOpts...)
	return &Engine{
		db:       database,
		logger:   logger,
		settings: settings.NewStore(database),
		catalog:  catalog.New(database),
		ledger:   l,
		reports:  report.New(l),
	}
}

// DB exposes the underlying handle for collaborators that share it.
func (e *Engine) DB() *sql.DB {
	return e.db
}

// Close releases the database handle.
func (e *Engine) Close() error {
	if e == nil || e.db == nil {
		return nil
	}
	return e.db.Close()
}

func (e *Engine) GetSettings(ctx context.Context) (settings.Settings, error) {
	return e.settings.Get(ctx)
}

// UpdateSettings changes only the supplied cost parameters. Recorded sales
// keep the values they were priced with.
func (e *Engine) UpdateSettings(ctx context.Context, u settings.Update) (settings.Settings, error) {
	s, err := e.settings.Update(ctx, u)
	if err != nil {
		return settings.Settings{}, err
	}

	e.logger.Info("settings updated",
		"kwh_price", s.KWhPrice,
		"printer_power_watts", s.PrinterPowerWatts,
		"filament_price_per_kg", s.FilamentPricePerKg,
	)
	return s, nil
}

func (e *Engine) AddProduct(ctx context.Context, p catalog.NewProduct) (int64, error) {
	id, err := e.catalog.Add(ctx, p)
	if err != nil {
		return 0, err
	}
	e.logger.Info("product added", "product_id", id, "name", p.Name)
	return id, nil
}

func (e *Engine) GetProduct(ctx context.Context, id int64) (catalog.Product, error) {
	return e.catalog.Get(ctx, id)
}

func (e *Engine) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return e.catalog.List(ctx)
}

// RecordSale prices and appends a sale, returning its id.
func (e *Engine) RecordSale(ctx context.Context, productID int64, quantity int) (int64, error) {
	sale, err := e.ledger.Record(ctx, productID, quantity)
	if err != nil {
		return 0, err
	}

	e.logger.Info("sale recorded",
		"sale_id", sale.ID,
		"product_id", sale.ProductID,
		"quantity", sale.Quantity,
		"total_sale_amount", sale.TotalSaleAmount,
		"filament_cost", sale.FilamentCost,
		"energy_cost", sale.EnergyCost,
		"date", sale.Date.String(),
	)
	return sale.ID, nil
}

func (e *Engine) GetSale(ctx context.Context, id int64) (ledger.Sale, error) {
	return e.ledger.Get(ctx, id)
}

func (e *Engine) ListSales(ctx context.Context) ([]ledger.Sale, error) {
	return e.ledger.List(ctx)
}

func (e *Engine) FinancialSummary(ctx context.Context) (report.Summary, error) {
	return e.reports.FinancialSummary(ctx)
}

func (e *Engine) SalesByProduct(ctx context.Context) (map[string]int, error) {
	return e.reports.SalesByProduct(ctx)
}

func (e *Engine) CumulativeRevenueByDate(ctx context.Context) ([]report.RevenuePoint, error) {
	return e.reports.CumulativeRevenueByDate(ctx)
}

func (e *Engine) CostBreakdown(ctx context.Context) (report.CostBreakdown, error) {
	return e.reports.CostBreakdown(ctx)
}

func (e *Engine) ProductSummary(ctx context.Context) (map[string]report.ProductTotals, error) {
	return e.reports.ProductSummary(ctx)
}
