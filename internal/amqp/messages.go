package amqp

import (
	"encoding/json"
	"time"
)

// Actions carried by an ExpenseEventMessage.
const (
	ActionUpsert = "upsert"
	ActionDelete = "delete"
)

// ExpenseEventMessage is a lightweight mutation event for the reporting
// mirror. It carries only the id and company; the worker re-reads the record
// from the row store, so replays and out-of-order delivery converge on the
// current state.
type ExpenseEventMessage struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"companyName"`
	Action      string    `json:"action"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewExpenseEventMessage creates an event for one expense mutation.
func NewExpenseEventMessage(id, companyName, action string) *ExpenseEventMessage {
	return &ExpenseEventMessage{
		ID:          id,
		CompanyName: companyName,
		Action:      action,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ExpenseEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventMessageFromJSON creates a message from JSON bytes.
func ExpenseEventMessageFromJSON(data []byte) (*ExpenseEventMessage, error) {
	var msg ExpenseEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
