// Package memory is a mutex-guarded in-process ledger adapter. It backs the
// default DATA_BACKEND and doubles as the test collaborator for everything
// that consumes the ledger port.
package memory

import (
	"context"
	"sort"
	"sync"

	"dailyspend/internal/core"
	"dailyspend/internal/ledger"
)

type Store struct {
	mu      sync.Mutex
	cfg     core.BudgetConfig
	hasCfg  bool
	records []core.ExpenseRecord
	sheets  map[string]struct{}
}

var _ ledger.Port = (*Store)(nil)

func New(cfg core.BudgetConfig) *Store {
	return &Store{cfg: cfg, hasCfg: true, sheets: map[string]struct{}{}}
}

// NewUnconfigured creates a store whose config cells are "missing"; reads
// fail with core.ErrConfiguration until SetConfig is called.
func NewUnconfigured() *Store {
	return &Store{sheets: map[string]struct{}{}}
}

func (s *Store) SetConfig(cfg core.BudgetConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.hasCfg = true
}

func (s *Store) ReadAllExpenses(_ context.Context) ([]core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ExpenseRecord(nil), s.records...), nil
}

func (s *Store) AppendExpense(_ context.Context, rec core.ExpenseRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *Store) ReadBudgetConfig(_ context.Context) (core.BudgetConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasCfg {
		return core.BudgetConfig{}, core.ErrConfiguration
	}
	return s.cfg, nil
}

func (s *Store) EnsureMonthlySheet(_ context.Context, yearMonth string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[yearMonth] = struct{}{}
	return nil
}

// MonthlySheets lists the partitions created so far, sorted.
func (s *Store) MonthlySheets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.sheets))
	for ym := range s.sheets {
		out = append(out, ym)
	}
	sort.Strings(out)
	return out
}
