package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"dailyspend/internal/amqp"
	"dailyspend/internal/core"
	"dailyspend/internal/ledger/memory"
	"dailyspend/internal/log"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

type scriptedConsumer struct {
	messages []*amqp.ExpenseRecordedMessage
	errs     []error
}

func (c *scriptedConsumer) ConsumeExpenseRecorded(ctx context.Context, handler func(*amqp.ExpenseRecordedMessage) error) error {
	for _, msg := range c.messages {
		c.errs = append(c.errs, handler(msg))
	}
	return ctx.Err()
}

func TestSyncWorkerAppendsToTarget(t *testing.T) {
	store := memory.New(core.BudgetConfig{
		MonthlyBudget:    core.Money{Cents: 300000},
		FirstDayOverride: core.Money{Cents: 10000},
	})
	consumer := &scriptedConsumer{messages: []*amqp.ExpenseRecordedMessage{
		amqp.NewExpenseRecordedMessage("food", 150000, "2024-06-16"),
		amqp.NewExpenseRecordedMessage("taxi", 2500, "2024-06-17"),
	}}

	w := New(consumer, store, testLogger())
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	records, err := store.ReadAllExpenses(context.Background())
	if err != nil {
		t.Fatalf("ReadAllExpenses() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Category != "food" || records[0].Amount.Cents != 150000 {
		t.Errorf("first record = %+v", records[0])
	}
	if records[1].Date.String() != "2024-06-17" {
		t.Errorf("second record date = %s, want 2024-06-17", records[1].Date.String())
	}
}

func TestSyncWorkerDropsMalformedMessage(t *testing.T) {
	store := memory.New(core.BudgetConfig{
		MonthlyBudget: core.Money{Cents: 300000},
	})
	consumer := &scriptedConsumer{messages: []*amqp.ExpenseRecordedMessage{
		amqp.NewExpenseRecordedMessage("food", 150000, "not-a-date"),
		amqp.NewExpenseRecordedMessage("", 100, "2024-06-16"),
	}}

	w := New(consumer, store, testLogger())
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Malformed messages are acknowledged away, not requeued.
	for i, err := range consumer.errs {
		if err != nil {
			t.Errorf("handler(%d) error = %v, want nil", i, err)
		}
	}

	records, err := store.ReadAllExpenses(context.Background())
	if err != nil {
		t.Fatalf("ReadAllExpenses() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

type failingAppender struct{}

func (failingAppender) AppendExpense(ctx context.Context, rec core.ExpenseRecord) error {
	return errors.New("sheet unavailable")
}

func TestSyncWorkerReportsAppendFailure(t *testing.T) {
	consumer := &scriptedConsumer{messages: []*amqp.ExpenseRecordedMessage{
		amqp.NewExpenseRecordedMessage("food", 150000, "2024-06-16"),
	}}

	w := New(consumer, failingAppender{}, testLogger())
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(consumer.errs) != 1 || consumer.errs[0] == nil {
		t.Fatalf("expected handler error for failing target, got %v", consumer.errs)
	}
}
