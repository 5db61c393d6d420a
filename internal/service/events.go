package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tradelink/internal/domain"
	"tradelink/internal/utils"
)

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, domain.ChangeEvent) error { return nil }

func orNoop(p domain.EventPublisher) domain.EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

// publishChange announces a committed write. The write already succeeded,
// so a failed publish is logged and swallowed.
func publishChange(ctx context.Context, pub domain.EventPublisher, log zerolog.Logger, typ domain.EventType, userID uuid.UUID, accountID, ticket string, at time.Time) {
	event := domain.ChangeEvent{
		ID:        utils.NewEventID(at),
		Type:      typ,
		UserID:    userID,
		AccountID: accountID,
		Ticket:    ticket,
		At:        at,
	}
	if err := pub.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("event", string(typ)).Str("user_id", userID.String()).Msg("Failed to publish change event")
	}
}
