package services

import (
	"context"

	"dailyspend/internal/core"
	"dailyspend/internal/ledger"
	"dailyspend/internal/log"
)

// History reconstructs the full allowance-vs-spend time series for charting.
// It replays the ledger day by day and never touches the live allowance
// cache, so it can run concurrently with recording.
type History struct {
	ledger ledger.Port
	logger *log.Logger
}

func NewHistory(port ledger.Port, logger *log.Logger) *History {
	return &History{ledger: port, logger: logger.WithComponent("history")}
}

// Series returns three aligned slices covering every calendar day between
// the earliest and latest ledger record, days without spending filled with
// zero. The allowance curve is a forward simulation: day 0 carries the
// configured first-day override (clamped to the monthly budget), each later
// day spreads what is left of the budget over the days remaining after it.
//
// Note the remaining-days count here excludes the current day, unlike the
// live engine's inclusive count. Day 0's allowance is already fixed by the
// override, so the historical recurrence deliberately keeps the source
// convention instead of unifying the two.
func (h *History) Series(ctx context.Context) (core.ChartSeries, error) {
	cfg, err := h.ledger.ReadBudgetConfig(ctx)
	if err != nil {
		return core.ChartSeries{}, err
	}
	records, err := h.ledger.ReadAllExpenses(ctx)
	if err != nil {
		return core.ChartSeries{}, err
	}
	if len(records) == 0 {
		return core.ChartSeries{}, nil
	}

	perDay := map[string]int64{}
	minDate, maxDate := records[0].Date, records[0].Date
	for _, r := range records {
		perDay[r.Date.String()] += r.Amount.Cents
		if r.Date.Before(minDate.Time) {
			minDate = r.Date
		}
		if r.Date.After(maxDate.Time) {
			maxDate = r.Date
		}
	}

	firstDay := cfg.FirstDayOverride
	if firstDay.Cents > cfg.MonthlyBudget.Cents {
		h.logger.WarnContext(ctx, "first-day override above monthly budget, clamping",
			"override", firstDay.String(), "budget", cfg.MonthlyBudget.String())
		firstDay = cfg.MonthlyBudget
	}

	var series core.ChartSeries
	remaining := cfg.MonthlyBudget
	// Strictly increasing dates: each step depends on the running totals, so
	// the replay cannot be reordered or parallelized.
	for d, i := minDate, 0; !d.After(maxDate.Time); d, i = d.AddDays(1), i+1 {
		spent := core.Money{Cents: perDay[d.String()]}
		remaining = remaining.Sub(spent)

		var allowance core.Money
		if i == 0 {
			allowance = firstDay
		} else if days := d.EndOfMonth().Day() - d.Day(); days > 0 {
			rb := remaining
			if rb.Cents < 0 {
				rb = core.Money{}
			}
			allowance = rb.DivDays(days)
		}

		series.Dates = append(series.Dates, d)
		series.Actual = append(series.Actual, spent)
		series.Allowance = append(series.Allowance, allowance)
	}
	return series, nil
}
