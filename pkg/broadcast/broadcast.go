package broadcast

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

const DefaultBuffer = 64

// Bus is a topic-keyed broadcaster. Publish delivers a value to
// every subscription of the topic without ever blocking: a
// subscription whose buffer is full misses the value. Publishes are
// serialized, so all subscribers of one topic observe the same
// delivery order. The bus holds no state beyond in-flight delivery.
type Bus[T any] struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription[T]]struct{}
}

func New[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[string]map[*Subscription[T]]struct{})}
}

// Subscribe registers a subscription for the given topics.
// A non-positive buffer falls back to [DefaultBuffer]. There is no
// replay: only values published after Subscribe returns are seen.
func (b *Bus[T]) Subscribe(buffer int, topics ...string) *Subscription[T] {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	s := &Subscription[T]{
		bus:    b,
		topics: topics,
		ch:     make(chan T, buffer),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range topics {
		set, ok := b.subs[t]
		if !ok {
			set = make(map[*Subscription[T]]struct{})
			b.subs[t] = set
		}
		set[s] = struct{}{}
	}
	return s
}

// Publish fans v out to the topic's current subscribers.
func (b *Bus[T]) Publish(topic string, v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.subs[topic] {
		select {
		case s.ch <- v:
		default:
			s.dropped.Add(1)
			slog.Warn("broadcast: slow subscriber, value dropped",
				"topic", topic)
		}
	}
}

func (b *Bus[T]) unsubscribe(s *Subscription[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range s.topics {
		set := b.subs[t]
		delete(set, s)
		if len(set) == 0 {
			delete(b.subs, t)
		}
	}
	close(s.ch)
}

type Subscription[T any] struct {
	bus     *Bus[T]
	topics  []string
	ch      chan T
	closed  sync.Once
	dropped atomic.Uint64
}

// C is the receive channel. It is closed by [Subscription.Close].
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Dropped reports how many values were missed due to a full buffer.
func (s *Subscription[T]) Dropped() uint64 {
	return s.dropped.Load()
}

// Close removes the subscription from the bus and closes C.
func (s *Subscription[T]) Close() {
	s.closed.Do(func() {
		s.bus.unsubscribe(s)
	})
}
