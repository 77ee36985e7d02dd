// Package sqlite is the local ledger backend: the same port contract as the
// Google sheet, held in an embedded database so recording keeps working when
// the sheet is unreachable. The sync worker reconciles appends to the sheet.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"dailyspend/internal/core"
	"dailyspend/internal/ledger"
)

const (
	keyMonthlyBudget    = "monthly_budget"
	keyFirstDayOverride = "first_day_override"
)

type Repository struct {
	db *sql.DB
}

var _ ledger.Port = (*Repository)(nil)

func New(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) ReadAllExpenses(ctx context.Context) ([]core.ExpenseRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, amount_cents, date FROM expenses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: select expenses: %v", core.ErrExternalStore, err)
	}
	defer rows.Close()

	var out []core.ExpenseRecord
	for rows.Next() {
		var (
			category string
			cents    int64
			date     string
		)
		if err := rows.Scan(&category, &cents, &date); err != nil {
			return nil, fmt.Errorf("%w: scan expense: %v", core.ErrExternalStore, err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			// Hand-edited date text: skip, consistent with sheet parsing.
			continue
		}
		out = append(out, core.ExpenseRecord{
			Category: category,
			Amount:   core.Money{Cents: cents},
			Date:     d,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate expenses: %v", core.ErrExternalStore, err)
	}
	return out, nil
}

func (r *Repository) AppendExpense(ctx context.Context, rec core.ExpenseRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrParse, err)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (category, amount_cents, date) VALUES (?, ?, ?)`,
		rec.Category, rec.Amount.Cents, rec.Date.String())
	if err != nil {
		return fmt.Errorf("%w: insert expense: %v", core.ErrExternalStore, err)
	}
	return nil
}

func (r *Repository) ReadBudgetConfig(ctx context.Context) (core.BudgetConfig, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, value_cents FROM budget_config WHERE key IN (?, ?)`,
		keyMonthlyBudget, keyFirstDayOverride)
	if err != nil {
		return core.BudgetConfig{}, fmt.Errorf("%w: select config: %v", core.ErrExternalStore, err)
	}
	defer rows.Close()

	var cfg core.BudgetConfig
	seen := map[string]bool{}
	for rows.Next() {
		var (
			key   string
			cents int64
		)
		if err := rows.Scan(&key, &cents); err != nil {
			return core.BudgetConfig{}, fmt.Errorf("%w: scan config: %v", core.ErrExternalStore, err)
		}
		seen[key] = true
		switch key {
		case keyMonthlyBudget:
			cfg.MonthlyBudget = core.Money{Cents: cents}
		case keyFirstDayOverride:
			cfg.FirstDayOverride = core.Money{Cents: cents}
		}
	}
	if err := rows.Err(); err != nil {
		return core.BudgetConfig{}, fmt.Errorf("%w: iterate config: %v", core.ErrExternalStore, err)
	}
	if !seen[keyMonthlyBudget] || !seen[keyFirstDayOverride] {
		return core.BudgetConfig{}, fmt.Errorf("%w: budget_config rows missing", core.ErrConfiguration)
	}
	return cfg, nil
}

// SeedBudgetConfig upserts the two configuration rows. The values are owned
// externally; this exists for provisioning the local mirror.
func (r *Repository) SeedBudgetConfig(ctx context.Context, cfg core.BudgetConfig) error {
	for key, cents := range map[string]int64{
		keyMonthlyBudget:    cfg.MonthlyBudget.Cents,
		keyFirstDayOverride: cfg.FirstDayOverride.Cents,
	} {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO budget_config (key, value_cents) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value_cents = excluded.value_cents`,
			key, cents)
		if err != nil {
			return fmt.Errorf("%w: seed config %s: %v", core.ErrExternalStore, key, err)
		}
	}
	return nil
}

// EnsureMonthlySheet snapshots the current configuration under the month
// key. The insert is a no-op when the partition already exists.
func (r *Repository) EnsureMonthlySheet(ctx context.Context, yearMonth string) error {
	cfg, err := r.ReadBudgetConfig(ctx)
	if err != nil {
		if !errors.Is(err, core.ErrConfiguration) {
			return err
		}
		// Missing config still snapshots as zeros; the partition must exist
		// either way.
		cfg = core.BudgetConfig{}
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO monthly_sheets (year_month, monthly_budget_cents, first_day_cents)
		 VALUES (?, ?, ?) ON CONFLICT(year_month) DO NOTHING`,
		yearMonth, cfg.MonthlyBudget.Cents, cfg.FirstDayOverride.Cents)
	if err != nil {
		return fmt.Errorf("%w: ensure monthly sheet %s: %v", core.ErrExternalStore, yearMonth, err)
	}
	return nil
}
