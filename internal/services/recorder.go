// Package services holds the operations the command surface exposes on top
// of the ledger port and the allowance engine: recording expenses, monthly
// category stats and the historical chart series.
package services

import (
	"context"
	"fmt"
	"strings"

	"dailyspend/internal/budget"
	"dailyspend/internal/clock"
	"dailyspend/internal/core"
	"dailyspend/internal/ledger"
	"dailyspend/internal/log"
)

// EventPublisher is the optional outbound notification channel; a nil
// publisher disables events without affecting recording.
type EventPublisher interface {
	PublishExpenseRecorded(ctx context.Context, rec core.ExpenseRecord) error
}

// Receipt reports a recorded expense and how much of today's allowance is
// now consumed. The percentage is measured against the limit that was in
// force when the expense was made, not the one shrunk by it, and is not
// capped at 100.
type Receipt struct {
	Record             core.ExpenseRecord
	PercentOfAllowance float64
}

type Recorder struct {
	ledger ledger.Port
	engine *budget.Engine
	clock  *clock.Clock
	events EventPublisher
	logger *log.Logger
}

func NewRecorder(port ledger.Port, engine *budget.Engine, clk *clock.Clock, events EventPublisher, logger *log.Logger) *Recorder {
	return &Recorder{
		ledger: port,
		engine: engine,
		clock:  clk,
		events: events,
		logger: logger.WithComponent("recorder"),
	}
}

// Record parses amountText, appends the expense dated today and returns the
// receipt. Nothing is written when parsing fails.
func (r *Recorder) Record(ctx context.Context, category, amountText string) (Receipt, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return Receipt{}, fmt.Errorf("%w: empty category", core.ErrParse)
	}
	cents, err := core.ParseAmountToCents(amountText)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: amount %q is not a number", core.ErrParse, amountText)
	}

	// Baseline before mutation: the allowance in force when the expense was
	// made, computed now if not cached yet.
	baseline, err := r.engine.DailyAllowance(ctx)
	if err != nil {
		return Receipt{}, err
	}

	today := r.clock.Today()
	rec := core.ExpenseRecord{Category: category, Amount: core.Money{Cents: cents}, Date: today}
	if err := r.ledger.AppendExpense(ctx, rec); err != nil {
		return Receipt{}, err
	}

	// The new expense invalidates today's allowance; recompute eagerly so the
	// cache reflects it. The expense is already committed, so a failure here
	// only delays the refresh.
	r.engine.Invalidate()
	if _, err := r.engine.DailyAllowance(ctx); err != nil {
		r.logger.WarnContext(ctx, "allowance refresh after expense failed", "error", err)
	}

	records, err := r.ledger.ReadAllExpenses(ctx)
	if err != nil {
		return Receipt{}, err
	}
	totalToday := core.SumOnDay(records, today)
	percent := core.PercentOf(totalToday, baseline)

	if r.events != nil {
		if err := r.events.PublishExpenseRecorded(ctx, rec); err != nil {
			r.logger.WarnContext(ctx, "expense event publish failed",
				"category", rec.Category, "error", err)
		}
	}

	r.logger.InfoContext(ctx, "expense recorded",
		"category", rec.Category,
		"amount", rec.Amount.String(),
		"date", today.String(),
		"percent_of_allowance", fmt.Sprintf("%.2f", percent))
	return Receipt{Record: rec, PercentOfAllowance: percent}, nil
}
