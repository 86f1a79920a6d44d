package domain

type (
	Cart struct {
		CartID string
		Items  []CartItem
	}

	CartItem struct {
		ProductID string
		Quantity  int
	}
)

// Item returns the index of the line item referencing productID,
// or -1 when the cart has no such item.
func (c Cart) Item(productID string) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// ResolvedCart is a cart with every line item's product reference
// resolved to the full product record.
type (
	ResolvedCart struct {
		CartID string
		Items  []ResolvedItem
	}

	ResolvedItem struct {
		Product  Product
		Quantity int
	}
)
