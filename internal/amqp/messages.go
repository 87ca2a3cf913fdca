package amqp

import (
	"encoding/json"
	"time"

	"carteira/internal/services"
)

// ChangeMessage is the wire form of a change event. It carries only
// identifiers, consumers fetch current state from the API.
type ChangeMessage struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage wraps a change event with a publish timestamp.
func NewChangeMessage(event services.ChangeEvent) *ChangeMessage {
	return &ChangeMessage{
		Entity:    event.Entity,
		Action:    event.Action,
		ID:        event.ID,
		OwnerID:   event.OwnerID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON creates a message from JSON bytes
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
