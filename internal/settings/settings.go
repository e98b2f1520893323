package settings

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/Simplici0/printledger/internal/apperr"
	"github.com/Simplici0/printledger/internal/costing"
	"github.com/Simplici0/printledger/internal/db"
)

// Recognized keys of the settings table.
const (
	KeyKWhPrice           = "kwh_price"
	KeyPrinterPowerWatts  = "printer_power_watts"
	KeyFilamentPricePerKg = "filament_price_per_kg"
)

// Settings holds the cost parameters used to price a sale.
type Settings struct {
	KWhPrice           float64 `json:"kwh_price" yaml:"kwh_price"`
	PrinterPowerWatts  float64 `json:"printer_power_watts" yaml:"printer_power_watts"`
	FilamentPricePerKg float64 `json:"filament_price_per_kg" yaml:"filament_price_per_kg"`
}

// Defaults are seeded on first initialization.
var Defaults = Settings{
	KWhPrice:           0.80,
	PrinterPowerWatts:  200,
	FilamentPricePerKg: 80.0,
}

// Rates converts the settings into costing input.
func (s Settings) Rates() costing.Rates {
	return costing.Rates{
		KWhPrice:           s.KWhPrice,
		PrinterPowerWatts:  s.PrinterPowerWatts,
		FilamentPricePerKg: s.FilamentPricePerKg,
	}
}

func (s Settings) values() map[string]float64 {
	return map[string]float64{
		KeyKWhPrice:           s.KWhPrice,
		KeyPrinterPowerWatts:  s.PrinterPowerWatts,
		KeyFilamentPricePerKg: s.FilamentPricePerKg,
	}
}

// Update is a partial change; nil fields keep their current value.
type Update struct {
	KWhPrice           *float64 `json:"kwh_price,omitempty"`
	PrinterPowerWatts  *float64 `json:"printer_power_watts,omitempty"`
	FilamentPricePerKg *float64 `json:"filament_price_per_kg,omitempty"`
}

// IsEmpty reports whether no field is supplied.
func (u Update) IsEmpty() bool {
	return u.KWhPrice == nil && u.PrinterPowerWatts == nil && u.FilamentPricePerKg == nil
}

// Validate rejects supplied values that are not finite positive numbers.
func (u Update) Validate() error {
	for _, f := range u.fields() {
		if !isPositive(*f.value) {
			return apperr.Invalid("%s must be a positive number, got %v", f.key, *f.value)
		}
	}
	return nil
}

type field struct {
	key   string
	value *float64
}

// fields lists supplied values in a stable order.
func (u Update) fields() []field {
	var out []field
	if u.KWhPrice != nil {
		out = append(out, field{KeyKWhPrice, u.KWhPrice})
	}
	if u.PrinterPowerWatts != nil {
		out = append(out, field{KeyPrinterPowerWatts, u.PrinterPowerWatts})
	}
	if u.FilamentPricePerKg != nil {
		out = append(out, field{KeyFilamentPricePerKg, u.FilamentPricePerKg})
	}
	return out
}

func isPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// Store persists settings in the key/value settings table.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store backed by database.
func NewStore(database *sql.DB) *Store {
	return &Store{db: database}
}

// Get returns the current settings.
func (s *Store) Get(ctx context.Context) (Settings, error) {
	return Read(ctx, s.db)
}

// Update applies u atomically and returns the resulting settings.
func (s *Store) Update(ctx context.Context, u Update) (Settings, error) {
	if err := u.Validate(); err != nil {
		return Settings{}, err
	}

	var current Settings
	err := db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, f := range u.fields() {
			result, err := tx.ExecContext(ctx, `UPDATE settings SET value = ? WHERE key = ?`, *f.value, f.key)
			if err != nil {
				return fmt.Errorf("update setting %s: %w", f.key, err)
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("update setting %s: %w", f.key, err)
			}
			if affected == 0 {
				return apperr.Configf("settings key %s is missing", f.key)
			}
		}

		var err error
		current, err = Read(ctx, tx)
		return err
	})
	if err != nil {
		return Settings{}, err
	}

	return current, nil
}

// Read loads all recognized keys through q, so callers can read a snapshot
// inside their own transaction.
func Read(ctx context.Context, q db.Querier) (Settings, error) {
	rows, err := q.QueryContext(ctx, `SELECT key, value FROM settings WHERE key IN (?, ?, ?)`,
		KeyKWhPrice, KeyPrinterPowerWatts, KeyFilamentPricePerKg)
	if err != nil {
		return Settings{}, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]float64, 3)
	for rows.Next() {
		var key string
		var value float64
		if err := rows.Scan(&key, &value); err != nil {
			return Settings{}, fmt.Errorf("scan setting: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return Settings{}, fmt.Errorf("iterate settings: %w", err)
	}

	var s Settings
	for _, target := range []struct {
		key string
		dst *float64
	}{
		{KeyKWhPrice, &s.KWhPrice},
		{KeyPrinterPowerWatts, &s.PrinterPowerWatts},
		{KeyFilamentPricePerKg, &s.FilamentPricePerKg},
	} {
		v, ok := values[target.key]
		if !ok {
			return Settings{}, apperr.Configf("settings key %s is missing; store was not initialized", target.key)
		}
		*target.dst = v
	}

	return s, nil
}

// Seed inserts the defaults for any missing key and reports how many rows
// were inserted. Existing values are left untouched.
func Seed(ctx context.Context, q db.Querier) (int, error) {
	inserted := 0
	for key, value := range Defaults.values() {
		result, err := q.ExecContext(ctx, `
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO NOTHING
		`, key, value)
		if err != nil {
			return inserted, fmt.Errorf("seed setting %s: %w", key, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("seed setting %s: %w", key, err)
		}
		inserted += int(affected)
	}
	return inserted, nil
}
