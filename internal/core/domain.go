package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Date is a calendar day with no time-of-day component.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// ExpenseRecord is one appended ledger row. Records are immutable once
	// written; duplicates are valid (two purchases, same category and day).
	ExpenseRecord struct {
		Category string
		Amount   Money
		Date     Date
	}

	// BudgetConfig holds the two configuration cells read from the ledger.
	BudgetConfig struct {
		MonthlyBudget    Money
		FirstDayOverride Money
	}

	// CategoryTotal is an amount accumulated under one category name.
	CategoryTotal struct {
		Name  string
		Total Money
	}

	// MonthlyStats summarizes one calendar month, categories ordered by
	// total descending with first-seen order breaking ties.
	MonthlyStats struct {
		YearMonth  string // "YYYY-MM"
		Total      Money
		ByCategory []CategoryTotal
	}

	// ChartSeries carries the three aligned slices the external renderer
	// consumes: one entry per calendar day in the reconstructed range.
	ChartSeries struct {
		Dates     []Date
		Actual    []Money
		Allowance []Money
	}
)

// Failure kinds. Every public operation converts collaborator failures into
// one of these so callers can branch with errors.Is.
var (
	ErrParse         = errors.New("malformed input")
	ErrConfiguration = errors.New("budget configuration unavailable")
	ErrExternalStore = errors.New("ledger store failure")
	ErrClockOverride = errors.New("invalid override date")
)

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// YearMonth returns the "YYYY-MM" key of the date's month.
func (d Date) YearMonth() string {
	return d.Format("2006-01")
}

// SameDay reports whether both dates name the same calendar day.
func (d Date) SameDay(o Date) bool {
	return d.Year() == o.Year() && d.YearDay() == o.YearDay()
}

// SameMonth reports whether both dates fall in the same calendar month.
func (d Date) SameMonth(o Date) bool {
	return d.Year() == o.Year() && d.Month() == o.Month()
}

// EndOfMonth returns the true last day of the date's month. The day-zero
// trick normalizes short months, leap February included.
func (d Date) EndOfMonth() Date {
	return NewDate(d.Year(), int(d.Month())+1, 0)
}

// DaysLeftInMonth counts the days from d through the end of its month,
// inclusive of d itself. It is at least 1.
func (d Date) DaysLeftInMonth() int {
	return d.EndOfMonth().Day() - d.Day() + 1
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return NewDate(d.Year(), int(d.Month()), d.Day()+n)
}

func (e ExpenseRecord) Validate() error {
	if strings.TrimSpace(e.Category) == "" {
		return errors.New("empty category")
	}
	if e.Amount.Cents < 0 {
		return errors.New("negative amount")
	}
	if e.Date.IsZero() {
		return errors.New("zero date")
	}
	return nil
}
