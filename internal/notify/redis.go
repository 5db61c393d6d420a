package notify

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"tradelink/internal/domain"
)

const channelPrefix = "tradelink:events:"

// ChannelFor is the Redis channel carrying a user's events
func ChannelFor(userID uuid.UUID) string {
	return channelPrefix + userID.String()
}

// RedisBroker shares change events between API instances through Redis pub/sub
type RedisBroker struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewRedisBroker creates a broker on an already connected client
func NewRedisBroker(client *redis.Client, log zerolog.Logger) *RedisBroker {
	return &RedisBroker{
		client: client,
		log:    log.With().Str("component", "redis_broker").Logger(),
	}
}

// Publish sends the msgpack-encoded event to the user's channel
func (b *RedisBroker) Publish(ctx context.Context, event domain.ChangeEvent) error {
	payload, err := EncodeEvent(event)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, ChannelFor(event.UserID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe listens on the user's channel until cancel is called or ctx ends
func (b *RedisBroker) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan domain.ChangeEvent, func(), error) {
	ctx, stop := context.WithCancel(ctx)
	pubsub := b.client.Subscribe(ctx, ChannelFor(userID))

	// Wait for the subscription confirmation so no event published after
	// Subscribe returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		stop()
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan domain.ChangeEvent, subscriberBuffer)
	go func() {
		defer close(out)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				event, err := DecodeEvent([]byte(msg.Payload))
				if err != nil {
					b.log.Warn().Err(err).Str("channel", msg.Channel).Msg("Dropping undecodable event")
					continue
				}
				select {
				case out <- event:
				default:
				}
			}
		}
	}()

	return out, stop, nil
}

// EncodeEvent serializes an event for the wire
func EncodeEvent(event domain.ChangeEvent) ([]byte, error) {
	b, err := msgpack.Marshal(&event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}
	return b, nil
}

// DecodeEvent is the inverse of EncodeEvent
func DecodeEvent(b []byte) (domain.ChangeEvent, error) {
	var event domain.ChangeEvent
	if err := msgpack.Unmarshal(b, &event); err != nil {
		return domain.ChangeEvent{}, fmt.Errorf("failed to decode event: %w", err)
	}
	return event, nil
}
