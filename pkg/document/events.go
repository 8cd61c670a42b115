package document

import (
	"context"
	"sync"

	"github.com/aretw0/quire/pkg/core"
)

// Watch returns a channel of change events. The channel is closed when ctx
// is done or the service is closed. Events are dropped for subscribers that
// fall behind by more than the configured buffer.
func (s *Service) Watch(ctx context.Context) <-chan core.Event {
	return s.events.subscribe(ctx)
}

func (s *Service) publish(typ core.EventType, entity core.EntityType, id string) {
	s.events.publish(core.Event{
		Type:      typ,
		Entity:    entity,
		ID:        id,
		Timestamp: s.now().Unix(),
	})
}

type broker struct {
	mu     sync.Mutex
	subs   map[chan core.Event]struct{}
	size   int
	closed bool
	done   chan struct{}
}

func newBroker(size int) *broker {
	return &broker{
		subs: make(map[chan core.Event]struct{}),
		size: size,
		done: make(chan struct{}),
	}
}

func (b *broker) subscribe(ctx context.Context) <-chan core.Event {
	ch := make(chan core.Event, b.size)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			b.unsubscribe(ch)
		case <-b.done:
		}
	}()
	return ch
}

func (b *broker) unsubscribe(ch chan core.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

func (b *broker) publish(e core.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

func (b *broker) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}

// count returns the number of live subscribers.
func (b *broker) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

