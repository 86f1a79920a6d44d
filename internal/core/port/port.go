package port

import (
	"context"

	"github.com/Roberto031094/Backend1-Entrega/internal/core/domain"
)

// ProductPatch carries the fields of a product update; nil fields
// are left untouched.
type ProductPatch struct {
	Title       *string
	Description *string
	Code        *string
	Price       *float64
	Stock       *int
	Category    *string
	Thumbnails  []string
}

// IsZero reports whether the patch carries no fields at all.
func (p ProductPatch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.Code == nil &&
		p.Price == nil && p.Stock == nil && p.Category == nil &&
		p.Thumbnails == nil
}

type ProductsRepository interface {
	Query(
		ctx context.Context,
		filter domain.CatalogFilter,
		sort domain.SortOrder,
		page domain.CatalogPage,
	) (products []domain.Product, totalCount int, err error)
	Read(ctx context.Context, productID string) (domain.Product, error)
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	Update(ctx context.Context, productID string, patch ProductPatch) (domain.Product, error)
	Delete(ctx context.Context, productID string) error
}

type CartsRepository interface {
	Read(ctx context.Context, cartID string) (domain.Cart, error)
	// Create persists a new cart. A preset CartID binds the cart to
	// that identifier, an empty one lets the store assign it.
	Create(ctx context.Context, c domain.Cart) (domain.Cart, error)
	Replace(ctx context.Context, c domain.Cart) error
}

// EventPublisher fans a change event out to current subscribers.
// Publishing is fire-and-forget: it never blocks on a slow
// subscriber and never reports failure to the caller.
type EventPublisher interface {
	Publish(evt domain.ChangeEvent)
}

type CatalogViewer interface {
	ListProducts(
		ctx context.Context,
		filter domain.CatalogFilter,
		sort domain.SortOrder,
		page domain.CatalogPage,
	) (domain.ProductListing, error)
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
}

type CatalogEditor interface {
	CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, productID string, patch ProductPatch) (domain.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
}

type CartReader interface {
	GetCart(ctx context.Context, cartID string) (domain.ResolvedCart, error)
}

type CartMutator interface {
	CreateCart(ctx context.Context, items []domain.CartItem) (domain.Cart, error)
	AddItem(ctx context.Context, cartID, productID string) (domain.Cart, error)
	RemoveItem(ctx context.Context, cartID, productID string) (domain.Cart, error)
	SetQuantity(ctx context.Context, cartID, productID string, quantity int) (domain.Cart, error)
	ReplaceItems(ctx context.Context, cartID string, items []domain.CartItem) (domain.Cart, error)
	Clear(ctx context.Context, cartID string) (domain.Cart, error)
}
