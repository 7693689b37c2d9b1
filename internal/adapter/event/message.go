// Package event delivers domain events to a message broker.
package event

import (
	"encoding/json"
	"time"

	"github.com/iho/pocketledger/internal/domain"
)

// Message is the JSON body published for every domain event.
type Message struct {
	Type       string          `json:"type"`
	OwnerID    string          `json:"owner_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Encode turns a domain event into its wire form.
func Encode(e domain.Event) ([]byte, error) {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Message{
		Type:       e.Type,
		OwnerID:    e.OwnerID,
		OccurredAt: e.OccurredAt.UTC(),
		Payload:    payload,
	})
}
