// Package notify carries change events from the write path to dashboard
// subscribers, either in-process or over Redis pub/sub.
package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"tradelink/internal/domain"
)

// subscriberBuffer bounds how far a slow subscriber may lag before events are dropped
const subscriberBuffer = 64

// LocalBroker fans events out to subscribers in this process
type LocalBroker struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uuid.UUID]map[uint64]chan domain.ChangeEvent
}

// NewLocalBroker creates an empty broker
func NewLocalBroker() *LocalBroker {
	return &LocalBroker{subs: make(map[uuid.UUID]map[uint64]chan domain.ChangeEvent)}
}

// Publish delivers the event to the user's subscribers without blocking.
// A subscriber whose buffer is full misses the event.
func (b *LocalBroker) Publish(_ context.Context, event domain.ChangeEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[event.UserID] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe registers a subscriber for userID. The channel is closed when
// the returned cancel func is called or ctx ends.
func (b *LocalBroker) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan domain.ChangeEvent, func(), error) {
	ch := make(chan domain.ChangeEvent, subscriberBuffer)

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[uint64]chan domain.ChangeEvent)
	}
	b.subs[userID][id] = ch
	b.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[userID], id)
			if len(b.subs[userID]) == 0 {
				delete(b.subs, userID)
			}
			b.mu.Unlock()
			close(ch)
			close(done)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()

	return ch, cancel, nil
}

// Subscribers reports how many subscriptions are open for userID
func (b *LocalBroker) Subscribers(userID uuid.UUID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[userID])
}
