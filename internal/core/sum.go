package core

import "strings"

// Report renders the stats as the multi-line text the transport posts,
// one category per line followed by the grand total.
func (s MonthlyStats) Report() string {
	var b strings.Builder
	b.WriteString("Expenses for " + s.YearMonth + "\n")
	for _, c := range s.ByCategory {
		b.WriteString(c.Name + ": " + c.Total.String() + "\n")
	}
	b.WriteString("Total: " + s.Total.String())
	return b.String()
}

// SumOnDay totals the amounts of records dated exactly day.
func SumOnDay(records []ExpenseRecord, day Date) Money {
	var total Money
	for _, r := range records {
		if r.Date.SameDay(day) {
			total = total.Add(r.Amount)
		}
	}
	return total
}

// SumInMonth totals the amounts of records falling in day's calendar month.
func SumInMonth(records []ExpenseRecord, day Date) Money {
	var total Money
	for _, r := range records {
		if r.Date.SameMonth(day) {
			total = total.Add(r.Amount)
		}
	}
	return total
}
