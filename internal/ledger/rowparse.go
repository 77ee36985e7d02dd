package ledger

import (
	"strings"

	"dailyspend/internal/core"
)

// ParseRow converts one raw {category, amount, date} ledger row into a typed
// record. It is the single parsing path shared by every adapter and consumer,
// tolerant of manually edited rows: anything that does not normalize is
// reported as a skip, not an error.
func ParseRow(cols []string) (core.ExpenseRecord, bool) {
	if len(cols) < 3 {
		return core.ExpenseRecord{}, false
	}
	category := strings.TrimSpace(cols[0])
	if category == "" {
		return core.ExpenseRecord{}, false
	}
	cents, err := core.ParseAmountToCents(cols[1])
	if err != nil {
		return core.ExpenseRecord{}, false
	}
	date, err := core.ParseDate(cols[2])
	if err != nil {
		return core.ExpenseRecord{}, false
	}
	return core.ExpenseRecord{
		Category: category,
		Amount:   core.Money{Cents: cents},
		Date:     date,
	}, true
}
