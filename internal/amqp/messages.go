package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"flux/internal/ledger"
)

// LedgerEventMessage tells consumers that a persisted ledger record changed.
// It carries ids only; consumers read the current record from the repository.
type LedgerEventMessage struct {
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Entity    string    `json:"entity"`
	ID        string    `json:"id"`
	IDs       []string  `json:"ids,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEventMessage converts a store event into its wire form.
func NewLedgerEventMessage(ev ledger.Event) *LedgerEventMessage {
	ts := ev.At
	if ts.IsZero() {
		ts = time.Now()
	}
	return &LedgerEventMessage{
		UserID:    ev.UserID,
		Kind:      string(ev.Kind),
		Entity:    string(ev.Entity),
		ID:        ev.ID,
		IDs:       ev.IDs,
		Timestamp: ts.UTC(),
	}
}

// AffectedIDs returns IDs, falling back to ID for single-record events.
func (m *LedgerEventMessage) AffectedIDs() []string {
	if len(m.IDs) > 0 {
		return m.IDs
	}
	if m.ID != "" {
		return []string{m.ID}
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON parses and checks a message body.
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.UserID == "" {
		return nil, fmt.Errorf("ledger event without user_id")
	}
	switch ledger.EventKind(msg.Kind) {
	case ledger.Created, ledger.Updated, ledger.Deleted:
	default:
		return nil, fmt.Errorf("unknown event kind %q", msg.Kind)
	}
	return &msg, nil
}
