package worker

import (
	"context"
	"fmt"

	"dailyspend/internal/amqp"
	"dailyspend/internal/core"
	"dailyspend/internal/ledger"
	"dailyspend/internal/log"
)

// Consumer delivers expense messages until its context is cancelled.
type Consumer interface {
	ConsumeExpenseRecorded(ctx context.Context, handler func(*amqp.ExpenseRecordedMessage) error) error
}

// SyncWorker mirrors recorded expenses into a secondary ledger. The
// message carries the full row, so the worker never reads the primary
// store back.
type SyncWorker struct {
	consumer Consumer
	target   ledger.ExpenseAppender
	logger   *log.Logger
}

func New(consumer Consumer, target ledger.ExpenseAppender, logger *log.Logger) *SyncWorker {
	return &SyncWorker{
		consumer: consumer,
		target:   target,
		logger:   logger.WithComponent("sync-worker"),
	}
}

// Run blocks consuming messages until ctx is done.
func (w *SyncWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "sync worker started")
	return w.consumer.ConsumeExpenseRecorded(ctx, w.handle)
}

func (w *SyncWorker) handle(msg *amqp.ExpenseRecordedMessage) error {
	rec, err := recordFromMessage(msg)
	if err != nil {
		// A malformed message will never become valid; ack it away
		// instead of requeueing forever.
		w.logger.Error("discarding malformed expense message",
			"error", err,
			"category", msg.Category,
			"date", msg.Date)
		return nil
	}

	if err := w.target.AppendExpense(context.Background(), rec); err != nil {
		return fmt.Errorf("append expense to target ledger: %w", err)
	}

	w.logger.Info("expense synced",
		"category", rec.Category,
		"amount", rec.Amount.String(),
		"date", rec.Date.String())
	return nil
}

func recordFromMessage(msg *amqp.ExpenseRecordedMessage) (core.ExpenseRecord, error) {
	date, err := core.ParseDate(msg.Date)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("parse date %q: %w", msg.Date, err)
	}
	rec := core.ExpenseRecord{
		Category: msg.Category,
		Amount:   core.Money{Cents: msg.AmountCents},
		Date:     date,
	}
	if err := rec.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}
	return rec, nil
}
