package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"tally/internal/core"
)

const (
	EventTransactionSync   = "transaction.sync"
	EventTransactionDelete = "transaction.delete"
)

// Event is the envelope for ledger change messages. Sync events carry
// only the ID; the worker fetches the full record from the store. Delete
// events carry the whole record, since downstream stores locate rows by
// content once the local row is gone.
type Event struct {
	Type        string            `json:"type"`
	ID          int64             `json:"id,omitempty"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

func NewSyncEvent(id int64) *Event {
	return &Event{
		Type:      EventTransactionSync,
		ID:        id,
		Timestamp: time.Now(),
	}
}

func NewDeleteEvent(tx core.Transaction) *Event {
	return &Event{
		Type:        EventTransactionDelete,
		ID:          tx.ID,
		Transaction: &tx,
		Timestamp:   time.Now(),
	}
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Type {
	case EventTransactionSync, EventTransactionDelete:
	default:
		return nil, fmt.Errorf("unknown event type: %q", e.Type)
	}
	return &e, nil
}
