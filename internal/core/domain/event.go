package domain

type EventKind string

const (
	EventProductAdded   EventKind = "productAdded"
	EventProductUpdated EventKind = "productUpdated"
	EventProductDeleted EventKind = "productDeleted"
	EventCartCreated    EventKind = "cartCreated"
	EventCartUpdated    EventKind = "cartUpdated"
)

// TopicCatalog carries every product change. Cart changes go to the
// per-cart topic, see [CartTopic].
const TopicCatalog = "catalog"

// TopicCarts carries every cart change regardless of cart, for
// listeners that cannot enumerate per-cart topics up front.
const TopicCarts = "cart"

func CartTopic(cartID string) string {
	return TopicCarts + ":" + cartID
}

// ChangeEvent is the payload fanned out to subscribed connections
// after a successful mutation. Exactly one of Product or Cart is set
// for snapshot-carrying kinds; deletions carry only ProductID.
// Events are ephemeral and never persisted.
type ChangeEvent struct {
	Kind      EventKind
	ProductID string
	Product   *Product
	Cart      *Cart
}

func (e ChangeEvent) Topic() string {
	switch e.Kind {
	case EventCartCreated, EventCartUpdated:
		return CartTopic(e.Cart.CartID)
	default:
		return TopicCatalog
	}
}

func ProductAddedEvent(p Product) ChangeEvent {
	return ChangeEvent{Kind: EventProductAdded, ProductID: p.ProductID, Product: &p}
}

func ProductUpdatedEvent(p Product) ChangeEvent {
	return ChangeEvent{Kind: EventProductUpdated, ProductID: p.ProductID, Product: &p}
}

func ProductDeletedEvent(productID string) ChangeEvent {
	return ChangeEvent{Kind: EventProductDeleted, ProductID: productID}
}

func CartCreatedEvent(c Cart) ChangeEvent {
	return ChangeEvent{Kind: EventCartCreated, Cart: &c}
}

func CartUpdatedEvent(c Cart) ChangeEvent {
	return ChangeEvent{Kind: EventCartUpdated, Cart: &c}
}
