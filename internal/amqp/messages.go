package amqp

import (
	"encoding/json"
	"time"
)

// ChangeEvent announces a mutation of one ledger collection. It carries only
// the collection, operation and record id; consumers fetch whatever state
// they need from the ledger.
type ChangeEvent struct {
	Collection string    `json:"collection"`
	Op         string    `json:"op"` // add, update, delete, import
	ID         string    `json:"id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewChangeEvent creates a change event stamped with the current time.
func NewChangeEvent(collection, op, id string) *ChangeEvent {
	return &ChangeEvent{
		Collection: collection,
		Op:         op,
		ID:         id,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ChangeEventFromJSON creates an event from JSON bytes
func ChangeEventFromJSON(data []byte) (*ChangeEvent, error) {
	var e ChangeEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
