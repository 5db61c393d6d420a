package domain

import (
	"context"

	"github.com/google/uuid"
)

// EventPublisher receives change events after writes commit
type EventPublisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}

// EventSubscriber streams a single user's change events.
// The returned func releases the subscription.
type EventSubscriber interface {
	Subscribe(ctx context.Context, userID uuid.UUID) (<-chan ChangeEvent, func(), error)
}
