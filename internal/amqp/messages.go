package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType names what happened to a transaction.
type EventType string

const (
	EventTransactionCreated EventType = "transaction.created"
	EventTransactionUpdated EventType = "transaction.updated"
	EventTransactionDeleted EventType = "transaction.deleted"
)

func (t EventType) Valid() bool {
	switch t {
	case EventTransactionCreated, EventTransactionUpdated, EventTransactionDeleted:
		return true
	}
	return false
}

// LedgerEvent is a lightweight change notification. It carries only ids;
// consumers re-read the current state from storage.
type LedgerEvent struct {
	Type          EventType `json:"type"`
	TransactionID int64     `json:"transaction_id"`
	OwnerID       int64     `json:"owner_id"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewLedgerEvent(t EventType, transactionID, ownerID int64) *LedgerEvent {
	return &LedgerEvent{
		Type:          t,
		TransactionID: transactionID,
		OwnerID:       ownerID,
		Timestamp:     time.Now().UTC(),
	}
}

func (e *LedgerEvent) Validate() error {
	if !e.Type.Valid() {
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.TransactionID <= 0 {
		return fmt.Errorf("invalid transaction id %d", e.TransactionID)
	}
	if e.OwnerID <= 0 {
		return fmt.Errorf("invalid owner id %d", e.OwnerID)
	}
	return nil
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and validates a message body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var evt LedgerEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, fmt.Errorf("decode ledger event: %w", err)
	}
	if err := evt.Validate(); err != nil {
		return nil, err
	}
	return &evt, nil
}
