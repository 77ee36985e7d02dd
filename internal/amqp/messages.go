package amqp

import (
	"encoding/json"
	"time"
)

// ExpenseRecordedMessage carries one appended ledger row to the sync worker.
// The full row travels in the message so the consumer needs no read-back.
type ExpenseRecordedMessage struct {
	Category    string    `json:"category"`
	AmountCents int64     `json:"amount_cents"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Timestamp   time.Time `json:"timestamp"`
}

func NewExpenseRecordedMessage(category string, amountCents int64, date string) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{
		Category:    category,
		AmountCents: amountCents,
		Date:        date,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseRecordedMessageFromJSON creates a message from JSON bytes
func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
