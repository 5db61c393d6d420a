package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a change visible to the dashboard read side
type EventType string

const (
	EventAccountLinked      EventType = "account.linked"
	EventTradeUpserted      EventType = "trade.upserted"
	EventCredentialsRotated EventType = "credentials.rotated"
)

// ChangeEvent is published after a write commits.
type ChangeEvent struct {
	ID        string    `json:"id" msgpack:"id"`
	Type      EventType `json:"type" msgpack:"type"`
	UserID    uuid.UUID `json:"user_id" msgpack:"user_id"`
	AccountID string    `json:"account_id,omitempty" msgpack:"account_id,omitempty"`
	Ticket    string    `json:"ticket,omitempty" msgpack:"ticket,omitempty"`
	At        time.Time `json:"at" msgpack:"at"`
}
