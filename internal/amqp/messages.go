package amqp

import (
	"encoding/json"
	"time"
)

// ImportCompletedMessage announces that a spreadsheet export was archived.
// Consumers fetch the rows from the archive by ImportID.
type ImportCompletedMessage struct {
	ImportID     int64     `json:"import_id"`
	Origin       string    `json:"origin"`
	Rows         int       `json:"rows"`
	Transactions int       `json:"transactions"`
	Skipped      int       `json:"skipped"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewImportCompletedMessage creates a message stamped with the current time.
func NewImportCompletedMessage(importID int64, origin string, rows, transactions, skipped int) *ImportCompletedMessage {
	return &ImportCompletedMessage{
		ImportID:     importID,
		Origin:       origin,
		Rows:         rows,
		Transactions: transactions,
		Skipped:      skipped,
		Timestamp:    time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ImportCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ImportCompletedMessageFromJSON decodes a message from JSON bytes
func ImportCompletedMessageFromJSON(data []byte) (*ImportCompletedMessage, error) {
	var msg ImportCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
