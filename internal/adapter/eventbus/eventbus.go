// Package eventbus routes domain change events over an in-process
// broadcaster. It is the single Change Bus instance of the process,
// passed explicitly into every component that publishes or
// subscribes.
package eventbus

import (
	"github.com/Roberto031094/Backend1-Entrega/internal/core/domain"
	"github.com/Roberto031094/Backend1-Entrega/internal/core/port"
	"github.com/Roberto031094/Backend1-Entrega/pkg/broadcast"
)

// TopicAll receives a copy of every event regardless of its own
// topic. Process-wide listeners (the analytics mirror) subscribe
// here instead of enumerating per-cart topics.
const TopicAll = "*"

var _ port.EventPublisher = (*Bus)(nil)

type Bus struct {
	bus *broadcast.Bus[domain.ChangeEvent]
}

func New() *Bus {
	return &Bus{bus: broadcast.New[domain.ChangeEvent]()}
}

// Publish fans evt out on its own topic and on [TopicAll]; cart
// events additionally hit the [domain.TopicCarts] aggregate.
// Fire-and-forget: a slow or gone subscriber never fails or delays
// the caller.
func (b *Bus) Publish(evt domain.ChangeEvent) {
	b.bus.Publish(evt.Topic(), evt)
	switch evt.Kind {
	case domain.EventCartCreated, domain.EventCartUpdated:
		b.bus.Publish(domain.TopicCarts, evt)
	}
	b.bus.Publish(TopicAll, evt)
}

func (b *Bus) Subscribe(
	buffer int, topics ...string,
) *broadcast.Subscription[domain.ChangeEvent] {
	return b.bus.Subscribe(buffer, topics...)
}
