// Package budget implements the daily allowance recalculation engine: the
// per-day spending limit derived from the fixed monthly budget, actual
// expenditure to date and the calendar, with a per-day cache and month
// rollover detection.
package budget

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"

	"dailyspend/internal/clock"
	"dailyspend/internal/core"
	"dailyspend/internal/ledger"
	"dailyspend/internal/log"
)

// Engine owns the allowance cache. The cache holds the last computed value
// and the calendar day it was computed for; it is valid only while "today"
// still equals that day, and is dropped whenever the clock override changes
// or a new expense lands.
type Engine struct {
	ledger ledger.Port
	clock  *clock.Clock
	logger *log.Logger

	mu        sync.Mutex
	cached    core.Money
	cacheDate core.Date // zero means no valid cache
	lastDate  core.Date // last day a value was stored for; survives invalidation

	recompute singleflight.Group
}

// New creates an Engine and couples it to the clock: any override change
// invalidates the cache before the next read.
func New(port ledger.Port, clk *clock.Clock, logger *log.Logger) *Engine {
	e := &Engine{
		ledger: port,
		clock:  clk,
		logger: logger.WithComponent("budget"),
	}
	clk.OnChange(e.Invalidate)
	return e
}

// DailyAllowance returns today's spending limit, serving the cached value
// when it is still valid for today and recomputing from the ledger
// otherwise. Concurrent callers on the same day share one recomputation.
func (e *Engine) DailyAllowance(ctx context.Context) (core.Money, error) {
	today := e.clock.Today()

	e.mu.Lock()
	if !e.cacheDate.IsZero() && e.cacheDate.SameDay(today) {
		v := e.cached
		e.mu.Unlock()
		return v, nil
	}
	prev := e.lastDate
	e.mu.Unlock()

	// The mutex is not held across ledger I/O; singleflight keeps it to one
	// in-flight recomputation per calendar day.
	v, err, _ := e.recompute.Do(today.String(), func() (any, error) {
		if !prev.IsZero() && prev.YearMonth() != today.YearMonth() {
			if err := e.ledger.EnsureMonthlySheet(ctx, today.YearMonth()); err != nil {
				e.logger.WarnContext(ctx, "month rollover sheet creation failed",
					"year_month", today.YearMonth(), "error", err)
			}
		}
		allowance, err := e.computeFor(ctx, today)
		if err != nil {
			return core.Money{}, err
		}
		e.mu.Lock()
		e.cached = allowance
		e.cacheDate = today
		e.lastDate = today
		e.mu.Unlock()
		return allowance, nil
	})
	if err != nil {
		return core.Money{}, err
	}
	return v.(core.Money), nil
}

// computeFor derives the allowance for today from ledger state:
// remaining budget spread over the days left in the month, today included.
func (e *Engine) computeFor(ctx context.Context, today core.Date) (core.Money, error) {
	cfg, err := e.ledger.ReadBudgetConfig(ctx)
	if err != nil {
		if !errors.Is(err, core.ErrConfiguration) {
			return core.Money{}, err
		}
		// Missing config cells degrade to a zero monthly budget.
		e.logger.WarnContext(ctx, "could not retrieve budget, using zero monthly budget", "error", err)
		cfg = core.BudgetConfig{}
	}

	records, err := e.ledger.ReadAllExpenses(ctx)
	if err != nil {
		return core.Money{}, err
	}

	spent := core.SumInMonth(records, today)
	remaining := cfg.MonthlyBudget.Sub(spent)
	if remaining.Cents < 0 {
		e.logger.InfoContext(ctx, "monthly budget overspent",
			"overspend", spent.Sub(cfg.MonthlyBudget).String(),
			"year_month", today.YearMonth())
		remaining = core.Money{}
	}

	days := today.DaysLeftInMonth()
	allowance := remaining.DivDays(days)

	e.logger.InfoContext(ctx, "daily allowance recomputed",
		"date", today.String(),
		"monthly_budget", cfg.MonthlyBudget.String(),
		"spent_this_month", spent.String(),
		"remaining_budget", remaining.String(),
		"remaining_days", days,
		"allowance", allowance.String())
	return allowance, nil
}

// ResetToConfigured bypasses the recomputation entirely: it re-reads the
// configured monthly budget, stores it as today's cached allowance with no
// remaining-days adjustment, and returns it.
func (e *Engine) ResetToConfigured(ctx context.Context) (core.Money, error) {
	cfg, err := e.ledger.ReadBudgetConfig(ctx)
	if err != nil {
		return core.Money{}, err
	}
	today := e.clock.Today()
	e.mu.Lock()
	e.cached = cfg.MonthlyBudget
	e.cacheDate = today
	e.lastDate = today
	e.mu.Unlock()
	e.logger.InfoContext(ctx, "allowance reset to configured budget",
		"date", today.String(), "allowance", cfg.MonthlyBudget.String())
	return cfg.MonthlyBudget, nil
}

// RemainingToday returns today's allowance minus what was already spent
// today, floored at zero.
func (e *Engine) RemainingToday(ctx context.Context) (core.Money, error) {
	allowance, err := e.DailyAllowance(ctx)
	if err != nil {
		return core.Money{}, err
	}
	records, err := e.ledger.ReadAllExpenses(ctx)
	if err != nil {
		return core.Money{}, err
	}
	left := allowance.Sub(core.SumOnDay(records, e.clock.Today()))
	if left.Cents < 0 {
		left = core.Money{}
	}
	return left, nil
}

// Invalidate drops the cached allowance so the next read recomputes.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	e.cached = core.Money{}
	e.cacheDate = core.Date{}
	e.mu.Unlock()
}
