// Package ledger defines the outbound port to the external tabular ledger:
// expense rows plus the two configuration cells the allowance math reads.
package ledger

import (
	"context"

	"dailyspend/internal/core"
)

// Ports for outbound adapters.
type (
	ExpenseReader interface {
		// ReadAllExpenses returns every parseable expense row in insertion
		// order. Malformed rows are skipped, never fatal.
		ReadAllExpenses(ctx context.Context) ([]core.ExpenseRecord, error)
	}

	ExpenseAppender interface {
		AppendExpense(ctx context.Context, rec core.ExpenseRecord) error
	}

	ConfigReader interface {
		// ReadBudgetConfig reads the monthly budget and first-day override
		// cells. Fails with core.ErrConfiguration when either is missing or
		// non-numeric.
		ReadBudgetConfig(ctx context.Context) (core.BudgetConfig, error)
	}

	SheetRoller interface {
		// EnsureMonthlySheet lazily creates the "YYYY-MM" partition holding a
		// copy of the configuration section. Creating twice is a no-op.
		EnsureMonthlySheet(ctx context.Context, yearMonth string) error
	}

	// Port is the full collaborator contract the core requires.
	Port interface {
		ExpenseReader
		ExpenseAppender
		ConfigReader
		SheetRoller
	}
)
