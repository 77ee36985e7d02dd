package services

import (
	"context"
	"sort"

	"dailyspend/internal/clock"
	"dailyspend/internal/core"
	"dailyspend/internal/ledger"
)

// Aggregator groups the current month's expenses by category.
type Aggregator struct {
	ledger ledger.ExpenseReader
	clock  *clock.Clock
}

func NewAggregator(reader ledger.ExpenseReader, clk *clock.Clock) *Aggregator {
	return &Aggregator{ledger: reader, clock: clk}
}

// MonthlyStats sums amounts per category for today's calendar month.
// Categories are ordered by total descending; ties keep first-seen order.
func (a *Aggregator) MonthlyStats(ctx context.Context) (core.MonthlyStats, error) {
	today := a.clock.Today()
	records, err := a.ledger.ReadAllExpenses(ctx)
	if err != nil {
		return core.MonthlyStats{}, err
	}

	totals := map[string]int64{}
	var order []string
	var grand int64
	for _, r := range records {
		if !r.Date.SameMonth(today) {
			continue
		}
		if _, seen := totals[r.Category]; !seen {
			order = append(order, r.Category)
		}
		totals[r.Category] += r.Amount.Cents
		grand += r.Amount.Cents
	}

	byCat := make([]core.CategoryTotal, 0, len(order))
	for _, name := range order {
		byCat = append(byCat, core.CategoryTotal{Name: name, Total: core.Money{Cents: totals[name]}})
	}
	sort.SliceStable(byCat, func(i, j int) bool {
		return byCat[i].Total.Cents > byCat[j].Total.Cents
	})

	return core.MonthlyStats{
		YearMonth:  today.YearMonth(),
		Total:      core.Money{Cents: grand},
		ByCategory: byCat,
	}, nil
}
