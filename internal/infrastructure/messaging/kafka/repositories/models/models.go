package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is the wire form of a registry change event.
type Message struct {
	ID         uuid.UUID `json:"id"`
	Seq        uint64    `json:"seq"`
	Kind       string    `json:"kind"`
	EntityID   uint64    `json:"entity_id"`
	Content    string    `json:"content"`
	Hash       string    `json:"hash"`
	OccurredAt time.Time `json:"occurred_at"`
}
