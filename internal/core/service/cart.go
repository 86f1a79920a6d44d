package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Roberto031094/Backend1-Entrega/internal/core/domain"
	"github.com/Roberto031094/Backend1-Entrega/internal/core/port"
)

var _ port.CartReader = (*CartService)(nil)
var _ port.CartMutator = (*CartService)(nil)

// CartService owns cart read-modify-write sequences. Every mutation
// runs under a per-cart mutex, so two concurrent increments against
// the same cart can never both read the same quantity and lose one
// of the writes. Events are published only after the store confirms
// the write.
type CartService struct {
	carts    port.CartsRepository
	products port.ProductsRepository
	events   port.EventPublisher
	locks    *keyedMutex
}

func NewCart(
	carts port.CartsRepository,
	products port.ProductsRepository,
	events port.EventPublisher,
) CartService {
	return CartService{carts, products, events, newKeyedMutex()}
}

func (s CartService) CreateCart(
	ctx context.Context, items []domain.CartItem,
) (domain.Cart, error) {
	const op = "CartService.CreateCart"

	if err := ctx.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	merged, err := mergeItems(items)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	cart, err := s.carts.Create(ctx, domain.Cart{Items: merged})
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	s.events.Publish(domain.CartCreatedEvent(cart))
	return cart, nil
}

func (s CartService) AddItem(
	ctx context.Context, cartID, productID string,
) (domain.Cart, error) {
	const op = "CartService.AddItem"

	if err := ctx.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	s.locks.lock(cartID)
	defer s.locks.unlock(cartID)

	cart, created, err := s.readOrNew(ctx, cartID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	if i := cart.Item(productID); i >= 0 {
		cart.Items[i].Quantity++
	} else {
		if _, err := s.products.Read(ctx, productID); err != nil {
			return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
		}
		cart.Items = append(cart.Items,
			domain.CartItem{ProductID: productID, Quantity: 1})
	}

	cart, err = s.commit(ctx, cart, created)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}
	return cart, nil
}

func (s CartService) RemoveItem(
	ctx context.Context, cartID, productID string,
) (domain.Cart, error) {
	const op = "CartService.RemoveItem"

	if err := ctx.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	s.locks.lock(cartID)
	defer s.locks.unlock(cartID)

	cart, err := s.carts.Read(ctx, cartID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	i := cart.Item(productID)
	if i < 0 {
		return domain.Cart{}, fmt.Errorf(
			"%s: product %q is not in cart: %w",
			op, productID, domain.ErrNotFound,
		)
	}
	cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)

	cart, err = s.commit(ctx, cart, false)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}
	return cart, nil
}

func (s CartService) SetQuantity(
	ctx context.Context, cartID, productID string, quantity int,
) (domain.Cart, error) {
	const op = "CartService.SetQuantity"

	if err := ctx.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	if quantity < 1 {
		return domain.Cart{}, fmt.Errorf(
			"%s: quantity must be a positive integer: %w",
			op, domain.ErrInvalidArgument,
		)
	}

	s.locks.lock(cartID)
	defer s.locks.unlock(cartID)

	cart, err := s.carts.Read(ctx, cartID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	i := cart.Item(productID)
	if i < 0 {
		return domain.Cart{}, fmt.Errorf(
			"%s: product %q is not in cart: %w",
			op, productID, domain.ErrNotFound,
		)
	}
	cart.Items[i].Quantity = quantity

	cart, err = s.commit(ctx, cart, false)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}
	return cart, nil
}

func (s CartService) ReplaceItems(
	ctx context.Context, cartID string, items []domain.CartItem,
) (domain.Cart, error) {
	const op = "CartService.ReplaceItems"

	if err := ctx.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	merged, err := mergeItems(items)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	s.locks.lock(cartID)
	defer s.locks.unlock(cartID)

	cart, err := s.carts.Read(ctx, cartID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}
	cart.Items = merged

	cart, err = s.commit(ctx, cart, false)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}
	return cart, nil
}

func (s CartService) Clear(
	ctx context.Context, cartID string,
) (domain.Cart, error) {
	const op = "CartService.Clear"

	if err := ctx.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	s.locks.lock(cartID)
	defer s.locks.unlock(cartID)

	cart, err := s.carts.Read(ctx, cartID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}
	cart.Items = nil

	cart, err = s.commit(ctx, cart, false)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}
	return cart, nil
}

func (s CartService) GetCart(
	ctx context.Context, cartID string,
) (domain.ResolvedCart, error) {
	const op = "CartService.GetCart"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return domain.ResolvedCart{}, fmt.Errorf("%s: %w", op, err)
	}

	cart, err := s.carts.Read(ctx, cartID)
	if err != nil {
		return domain.ResolvedCart{}, fmt.Errorf("%s: %w", op, err)
	}

	resolved := domain.ResolvedCart{CartID: cart.CartID}
	for _, it := range cart.Items {
		p, err := s.products.Read(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// product deleted after it was added to the cart
				log.Warn("skipping dangling line item",
					"cartID", cartID, "productID", it.ProductID)
				continue
			}
			return domain.ResolvedCart{}, fmt.Errorf("%s: %w", op, err)
		}
		resolved.Items = append(resolved.Items,
			domain.ResolvedItem{Product: p, Quantity: it.Quantity})
	}
	return resolved, nil
}

// readOrNew loads the addressed cart, falling back to a fresh cart
// bound to the requested identifier when none exists yet. Carts are
// created lazily on first mutation.
func (s CartService) readOrNew(
	ctx context.Context, cartID string,
) (cart domain.Cart, created bool, err error) {
	cart, err = s.carts.Read(ctx, cartID)
	if err == nil {
		return cart, false, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Cart{CartID: cartID}, true, nil
	}
	return domain.Cart{}, false, err
}

func (s CartService) commit(
	ctx context.Context, cart domain.Cart, created bool,
) (domain.Cart, error) {
	if created {
		saved, err := s.carts.Create(ctx, cart)
		if err != nil {
			return domain.Cart{}, err
		}
		s.events.Publish(domain.CartCreatedEvent(saved))
		return saved, nil
	}

	if err := s.carts.Replace(ctx, cart); err != nil {
		return domain.Cart{}, err
	}
	s.events.Publish(domain.CartUpdatedEvent(cart))
	return cart, nil
}

// mergeItems validates a line-item sequence and folds duplicate
// product references into one item, keeping at most one line item
// per product.
func mergeItems(items []domain.CartItem) ([]domain.CartItem, error) {
	var merged []domain.CartItem
	index := make(map[string]int)

	for _, it := range items {
		if it.ProductID == "" {
			return nil, fmt.Errorf(
				"%w: item product reference is required",
				domain.ErrInvalidArgument,
			)
		}
		if it.Quantity < 1 {
			return nil, fmt.Errorf(
				"%w: item quantity must be a positive integer",
				domain.ErrInvalidArgument,
			)
		}
		if i, ok := index[it.ProductID]; ok {
			merged[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(merged)
		merged = append(merged, it)
	}
	return merged, nil
}
