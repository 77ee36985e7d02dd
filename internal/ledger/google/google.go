// Package google adapts the ledger port to a Google Sheets spreadsheet: an
// expense section of {category, amount, date} rows appended from a fixed
// starting row, two named configuration cells above it, and one lazily
// created partition sheet per rolled month.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"dailyspend/internal/core"
	"dailyspend/internal/ledger"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	budgetCell    string
	overrideCell  string
	startRow      int
}

// Options configures the adapter. Zero-value cells and rows fall back to the
// layout of the source spreadsheet.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	BudgetCell      string // monthly budget cell, default B17
	OverrideCell    string // first-day override cell, default B18
	ExpenseStartRow int    // first expense row, default 21
}

var _ ledger.Port = (*Client)(nil)

var headerRow = []any{"Category", "Amount", "Date"}

// New creates a Sheets-backed ledger. Credentials come from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if opts.SheetName == "" {
		opts.SheetName = "Expenses"
	}
	if opts.BudgetCell == "" {
		opts.BudgetCell = "B17"
	}
	if opts.OverrideCell == "" {
		opts.OverrideCell = "B18"
	}
	if opts.ExpenseStartRow == 0 {
		opts.ExpenseStartRow = 21
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     opts.SheetName,
		budgetCell:    opts.BudgetCell,
		overrideCell:  opts.OverrideCell,
		startRow:      opts.ExpenseStartRow,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case inline != "":
		credentialsJSON = []byte(inline)
	case file != "":
		var err error
		credentialsJSON, err = os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// ReadAllExpenses scans the expense section in sheet order. Rows that do not
// parse are skipped; only transport failures surface as errors.
func (c *Client) ReadAllExpenses(ctx context.Context) ([]core.ExpenseRecord, error) {
	rng := fmt.Sprintf("%s!A%d:C", c.sheetName, c.startRow)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", core.ErrExternalStore, rng, err)
	}
	var out []core.ExpenseRecord
	for _, row := range resp.Values {
		if rec, ok := ledger.ParseRow(toStrings(row)); ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (c *Client) AppendExpense(ctx context.Context, rec core.ExpenseRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrParse, err)
	}
	rng := fmt.Sprintf("%s!A%d:C", c.sheetName, c.startRow)
	vr := &gsheet.ValueRange{Values: [][]any{{rec.Category, rec.Amount.String(), rec.Date.String()}}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: append to %s: %v", core.ErrExternalStore, rng, err)
	}
	return nil
}

// ReadBudgetConfig reads the two configuration cells. Each recalculation
// re-reads them; the allowance cache is the only longer-lived copy.
func (c *Client) ReadBudgetConfig(ctx context.Context) (core.BudgetConfig, error) {
	resp, err := c.svc.Spreadsheets.Values.BatchGet(c.spreadsheetID).
		Ranges(
			fmt.Sprintf("%s!%s", c.sheetName, c.budgetCell),
			fmt.Sprintf("%s!%s", c.sheetName, c.overrideCell),
		).Context(ctx).Do()
	if err != nil {
		return core.BudgetConfig{}, fmt.Errorf("%w: read config cells: %v", core.ErrExternalStore, err)
	}
	if len(resp.ValueRanges) != 2 {
		return core.BudgetConfig{}, fmt.Errorf("%w: expected 2 config cells, got %d", core.ErrConfiguration, len(resp.ValueRanges))
	}
	budget, err := parseConfigCell(resp.ValueRanges[0], c.budgetCell)
	if err != nil {
		return core.BudgetConfig{}, err
	}
	override, err := parseConfigCell(resp.ValueRanges[1], c.overrideCell)
	if err != nil {
		return core.BudgetConfig{}, err
	}
	return core.BudgetConfig{MonthlyBudget: budget, FirstDayOverride: override}, nil
}

// EnsureMonthlySheet creates the "YYYY-MM" partition when absent, copying
// only the configuration block above the expense section.
func (c *Client) EnsureMonthlySheet(ctx context.Context, yearMonth string) error {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: list sheets: %v", core.ErrExternalStore, err)
	}
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == yearMonth {
			return nil
		}
	}

	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: yearMonth},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: add sheet %s: %v", core.ErrExternalStore, yearMonth, err)
	}

	configRange := fmt.Sprintf("%s!A1:C%d", c.sheetName, c.startRow-1)
	src, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, configRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: read config block: %v", core.ErrExternalStore, err)
	}
	if len(src.Values) == 0 {
		return nil
	}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID,
		fmt.Sprintf("%s!A1", yearMonth),
		&gsheet.ValueRange{Values: src.Values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: copy config block to %s: %v", core.ErrExternalStore, yearMonth, err)
	}
	return nil
}

// EnsureHeader writes the expense header row when the sheet starts blank.
func (c *Client) EnsureHeader(ctx context.Context) error {
	rng := fmt.Sprintf("%s!A%d:C%d", c.sheetName, c.startRow-1, c.startRow-1)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: read header: %v", core.ErrExternalStore, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 && strings.TrimSpace(fmt.Sprint(resp.Values[0][0])) != "" {
		return nil
	}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng,
		&gsheet.ValueRange{Values: [][]any{headerRow}}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: write header: %v", core.ErrExternalStore, err)
	}
	return nil
}

func parseConfigCell(vr *gsheet.ValueRange, cell string) (core.Money, error) {
	if vr == nil || len(vr.Values) == 0 || len(vr.Values[0]) == 0 {
		return core.Money{}, fmt.Errorf("%w: cell %s is empty", core.ErrConfiguration, cell)
	}
	raw := strings.TrimSpace(fmt.Sprint(vr.Values[0][0]))
	cents, err := core.ParseAmountToCents(raw)
	if err != nil {
		return core.Money{}, fmt.Errorf("%w: cell %s holds %q, not a number", core.ErrConfiguration, cell, raw)
	}
	return core.Money{Cents: cents}, nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
