package services

import (
	"context"
	"testing"

	"dailyspend/internal/core"
	"dailyspend/internal/ledger/memory"
)

func seedHistory(t *testing.T, store *memory.Store, recs []core.ExpenseRecord) {
	t.Helper()
	for _, r := range recs {
		if err := store.AppendExpense(context.Background(), r); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestSeriesForwardSimulation(t *testing.T) {
	store := memory.New(core.BudgetConfig{
		MonthlyBudget:    units(31000),
		FirstDayOverride: units(1500),
	})
	seedHistory(t, store, []core.ExpenseRecord{
		{Category: "food", Amount: units(1000), Date: core.NewDate(2024, 1, 1)},
		{Category: "taxi", Amount: units(500), Date: core.NewDate(2024, 1, 3)},
	})

	series, err := NewHistory(store, testLogger()).Series(context.Background())
	if err != nil {
		t.Fatalf("series: %v", err)
	}

	if len(series.Dates) != 3 || len(series.Actual) != 3 || len(series.Allowance) != 3 {
		t.Fatalf("expected 3 aligned entries, got %d/%d/%d",
			len(series.Dates), len(series.Actual), len(series.Allowance))
	}
	// The gap day is zero-filled.
	if series.Actual[1].Cents != 0 {
		t.Fatalf("gap day actual %s, want 0.00", series.Actual[1])
	}

	// Day 0 carries the first-day override untouched.
	if series.Allowance[0].String() != "1500.00" {
		t.Fatalf("day 0 allowance %s, want 1500.00", series.Allowance[0])
	}
	// Day 1: remaining 30000 over the 29 days after Jan 2.
	if series.Allowance[1].String() != "1034.48" {
		t.Fatalf("day 1 allowance %s, want 1034.48", series.Allowance[1])
	}
	// Day 2: remaining 29500 over the 28 days after Jan 3.
	if series.Allowance[2].String() != "1053.57" {
		t.Fatalf("day 2 allowance %s, want 1053.57", series.Allowance[2])
	}
}

func TestSeriesActualSumMatchesLedger(t *testing.T) {
	store := memory.New(core.BudgetConfig{MonthlyBudget: units(10000), FirstDayOverride: units(300)})
	recs := []core.ExpenseRecord{
		{Category: "a", Amount: units(120), Date: core.NewDate(2024, 5, 2)},
		{Category: "b", Amount: units(80), Date: core.NewDate(2024, 5, 2)},
		{Category: "c", Amount: units(55), Date: core.NewDate(2024, 5, 9)},
		{Category: "d", Amount: units(260), Date: core.NewDate(2024, 5, 20)},
	}
	seedHistory(t, store, recs)

	series, err := NewHistory(store, testLogger()).Series(context.Background())
	if err != nil {
		t.Fatalf("series: %v", err)
	}

	var fromSeries, fromLedger int64
	for _, m := range series.Actual {
		fromSeries += m.Cents
	}
	for _, r := range recs {
		fromLedger += r.Amount.Cents
	}
	if fromSeries != fromLedger {
		t.Fatalf("series sum %d != ledger sum %d", fromSeries, fromLedger)
	}
	// 2024-05-02 .. 2024-05-20 inclusive.
	if len(series.Dates) != 19 {
		t.Fatalf("expected 19 days, got %d", len(series.Dates))
	}
}

func TestSeriesClampsFirstDayOverride(t *testing.T) {
	store := memory.New(core.BudgetConfig{
		MonthlyBudget:    units(3000),
		FirstDayOverride: units(5000), // above the budget
	})
	seedHistory(t, store, []core.ExpenseRecord{
		{Category: "a", Amount: units(10), Date: core.NewDate(2024, 7, 1)},
	})

	series, err := NewHistory(store, testLogger()).Series(context.Background())
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if series.Allowance[0].String() != "3000.00" {
		t.Fatalf("override not clamped: %s", series.Allowance[0])
	}
}

func TestSeriesMonthEndDayHasZeroAllowance(t *testing.T) {
	store := memory.New(core.BudgetConfig{MonthlyBudget: units(29000), FirstDayOverride: units(1000)})
	seedHistory(t, store, []core.ExpenseRecord{
		{Category: "a", Amount: units(10), Date: core.NewDate(2024, 2, 28)},
		{Category: "b", Amount: units(10), Date: core.NewDate(2024, 2, 29)},
	})

	series, err := NewHistory(store, testLogger()).Series(context.Background())
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	// Leap February ends on the 29th; zero days remain after it under the
	// historical (exclusive) convention.
	if series.Allowance[1].Cents != 0 {
		t.Fatalf("month-end allowance %s, want 0.00", series.Allowance[1])
	}
}

func TestSeriesEmptyLedger(t *testing.T) {
	store := memory.New(core.BudgetConfig{MonthlyBudget: units(100)})
	series, err := NewHistory(store, testLogger()).Series(context.Background())
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if len(series.Dates) != 0 {
		t.Fatalf("expected empty series, got %d days", len(series.Dates))
	}
}
