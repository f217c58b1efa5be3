package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

const subscriptionBuffer = 16

// Bus fans auth events out to per-client subscribers.
type Bus interface {
	Publish(ctx context.Context, event AuthEvent) error
	Subscribe(clientID string) *Subscription
}

// Subscription is a cancellable handle on a client's event stream.
type Subscription struct {
	id     string
	topic  string
	ch     chan AuthEvent
	cancel func(*Subscription)
	once   sync.Once
}

// C returns the receive side of the subscription. It is closed on Cancel.
func (s *Subscription) C() <-chan AuthEvent {
	return s.ch
}

// Cancel detaches the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel(s)
		}
	})
}

type inMemoryBus struct {
	mu     sync.RWMutex
	topics map[string]map[string]*Subscription
}

// NewInMemoryBus creates a process-local bus.
func NewInMemoryBus() Bus {
	return &inMemoryBus{topics: make(map[string]map[string]*Subscription)}
}

// Publish delivers event to every subscriber of event.ClientID.
// Delivery blocks on a full subscriber until ctx is done.
func (b *inMemoryBus) Publish(ctx context.Context, event AuthEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.topics[event.ClientID] {
		select {
		case sub.ch <- event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe registers a subscriber for clientID.
func (b *inMemoryBus) Subscribe(clientID string) *Subscription {
	sub := &Subscription{
		id:    uuid.NewString(),
		topic: clientID,
		ch:    make(chan AuthEvent, subscriptionBuffer),
	}
	sub.cancel = b.remove

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.topics[clientID] == nil {
		b.topics[clientID] = make(map[string]*Subscription)
	}
	b.topics[clientID][sub.id] = sub
	return sub
}

func (b *inMemoryBus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if subs, ok := b.topics[sub.topic]; ok {
		delete(subs, sub.id)
		if len(subs) == 0 {
			delete(b.topics, sub.topic)
		}
	}
	close(sub.ch)
}
