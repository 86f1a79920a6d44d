package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/Roberto031094/Backend1-Entrega/internal/core/domain"
	"github.com/Roberto031094/Backend1-Entrega/internal/core/port"
	"github.com/Roberto031094/Backend1-Entrega/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memProducts is a minimal in-memory products repository. The cart
// service only reads products, so the write operations just mutate
// the map.
type memProducts struct {
	mu   sync.RWMutex
	byID map[string]domain.Product
}

func newMemProducts(products ...domain.Product) *memProducts {
	m := &memProducts{byID: make(map[string]domain.Product)}
	for _, p := range products {
		m.byID[p.ProductID] = p
	}
	return m
}

func (m *memProducts) Query(
	context.Context, domain.CatalogFilter, domain.SortOrder, domain.CatalogPage,
) ([]domain.Product, int, error) {
	return nil, 0, nil
}

func (m *memProducts) Read(
	_ context.Context, productID string,
) (domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.byID[productID]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

func (m *memProducts) Create(
	_ context.Context, p domain.Product,
) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[p.ProductID] = p
	return p, nil
}

func (m *memProducts) Update(
	_ context.Context, productID string, _ port.ProductPatch,
) (domain.Product, error) {
	return domain.Product{}, domain.ErrNotFound
}

func (m *memProducts) Delete(_ context.Context, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, productID)
	return nil
}

// memCarts is an in-memory carts repository. Items are copied on
// every read and write so callers never share backing arrays, the
// same isolation a real document store gives.
type memCarts struct {
	mu          sync.Mutex
	byID        map[string]domain.Cart
	seq         int
	failReplace error
}

func newMemCarts() *memCarts {
	return &memCarts{byID: make(map[string]domain.Cart)}
}

func copyCart(c domain.Cart) domain.Cart {
	c.Items = append([]domain.CartItem(nil), c.Items...)
	return c
}

func (m *memCarts) Read(
	_ context.Context, cartID string,
) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[cartID]
	if !ok {
		return domain.Cart{}, domain.ErrNotFound
	}
	return copyCart(c), nil
}

func (m *memCarts) Create(
	_ context.Context, c domain.Cart,
) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.CartID == "" {
		m.seq++
		c.CartID = fmt.Sprintf("cart-%d", m.seq)
	}
	m.byID[c.CartID] = copyCart(c)
	return copyCart(c), nil
}

func (m *memCarts) Replace(_ context.Context, c domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReplace != nil {
		return m.failReplace
	}
	if _, ok := m.byID[c.CartID]; !ok {
		return domain.ErrNotFound
	}
	m.byID[c.CartID] = copyCart(c)
	return nil
}

func cartFixture(t *testing.T) (
	service.CartService, *memCarts, *capturePublisher,
) {
	t.Helper()
	products := newMemProducts(
		domain.Product{ProductID: "pA", Title: "A", Code: "A1", Price: 1},
		domain.Product{ProductID: "pB", Title: "B", Code: "B1", Price: 2},
	)
	carts := newMemCarts()
	events := new(capturePublisher)
	return service.NewCart(carts, products, events), carts, events
}

func TestCartAddItem(t *testing.T) {
	t.Run("RepeatedAddIncrementsQuantity", func(t *testing.T) {
		s, _, _ := cartFixture(t)
		cart, err := s.CreateCart(t.Context(), nil)
		require.NoError(t, err)

		const n = 5
		for i := 0; i < n; i++ {
			cart, err = s.AddItem(t.Context(), cart.CartID, "pA")
			require.NoError(t, err)
		}

		require.Len(t, cart.Items, 1)
		assert.Equal(t, "pA", cart.Items[0].ProductID)
		assert.Equal(t, n, cart.Items[0].Quantity)
	})

	t.Run("LazilyCreatesCartBoundToRequestedID", func(t *testing.T) {
		s, carts, events := cartFixture(t)

		cart, err := s.AddItem(t.Context(), "wishful", "pA")
		require.NoError(t, err)
		assert.Equal(t, "wishful", cart.CartID)

		stored, err := carts.Read(t.Context(), "wishful")
		require.NoError(t, err)
		assert.Equal(t, cart, stored)

		evts := events.Events()
		require.Len(t, evts, 1)
		assert.Equal(t, domain.EventCartCreated, evts[0].Kind)
	})

	t.Run("UnknownProduct", func(t *testing.T) {
		s, carts, events := cartFixture(t)
		cart, err := s.CreateCart(t.Context(), nil)
		require.NoError(t, err)

		_, err = s.AddItem(t.Context(), cart.CartID, "ghost")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		stored, err := carts.Read(t.Context(), cart.CartID)
		require.NoError(t, err)
		assert.Empty(t, stored.Items)
		assert.Len(t, events.Events(), 1) // only the CartCreated
	})

	t.Run("DistinctProductsGetDistinctLineItems", func(t *testing.T) {
		s, _, _ := cartFixture(t)
		cart, err := s.CreateCart(t.Context(), nil)
		require.NoError(t, err)

		_, err = s.AddItem(t.Context(), cart.CartID, "pA")
		require.NoError(t, err)
		cart, err = s.AddItem(t.Context(), cart.CartID, "pB")
		require.NoError(t, err)

		assert.Len(t, cart.Items, 2)
	})

	t.Run("ConcurrentAddsLoseNoIncrements", func(t *testing.T) {
		s, _, _ := cartFixture(t)
		cart, err := s.CreateCart(t.Context(), nil)
		require.NoError(t, err)

		const n = 50
		var wg sync.WaitGroup
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func() {
				defer wg.Done()
				_, err := s.AddItem(context.Background(), cart.CartID, "pA")
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := s.GetCart(t.Context(), cart.CartID)
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, n, got.Items[0].Quantity)
	})
}

func TestCartRemoveItem(t *testing.T) {
	t.Run("RemoveThenAddEqualsSingleAddFromEmpty", func(t *testing.T) {
		s, _, _ := cartFixture(t)
		cart, err := s.CreateCart(t.Context(), nil)
		require.NoError(t, err)

		_, err = s.AddItem(t.Context(), cart.CartID, "pA")
		require.NoError(t, err)
		_, err = s.RemoveItem(t.Context(), cart.CartID, "pA")
		require.NoError(t, err)
		cart, err = s.AddItem(t.Context(), cart.CartID, "pA")
		require.NoError(t, err)

		require.Len(t, cart.Items, 1)
		assert.Equal(t, 1, cart.Items[0].Quantity)
	})

	t.Run("ProductNotInCart", func(t *testing.T) {
		s, _, _ := cartFixture(t)
		cart, err := s.CreateCart(t.Context(), nil)
		require.NoError(t, err)

		_, err = s.RemoveItem(t.Context(), cart.CartID, "pA")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("UnknownCart", func(t *testing.T) {
		s, _, _ := cartFixture(t)
		_, err := s.RemoveItem(t.Context(), "ghost", "pA")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCartSetQuantity(t *testing.T) {
	t.Run("OverwritesQuantity", func(t *testing.T) {
		s, _, _ := cartFixture(t)
		cart, err := s.CreateCart(t.Context(),
			[]domain.CartItem{{ProductID: "pA", Quantity: 2}})
		require.NoError(t, err)

		cart, err = s.SetQuantity(t.Context(), cart.CartID, "pA", 7)
		require.NoError(t, err)
		assert.Equal(t, 7, cart.Items[0].Quantity)
	})

	t.Run("ZeroQuantityRejectedCartUnchanged", func(t *testing.T) {
		s, carts, _ := cartFixture(t)
		cart, err := s.CreateCart(t.Context(),
			[]domain.CartItem{{ProductID: "pA", Quantity: 2}})
		require.NoError(t, err)

		_, err = s.SetQuantity(t.Context(), cart.CartID, "pA", 0)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)

		stored, err := carts.Read(t.Context(), cart.CartID)
		require.NoError(t, err)
		assert.Equal(t, 2, stored.Items[0].Quantity)
	})

	t.Run("NegativeQuantityRejected", func(t *testing.T) {
		s, _, _ := cartFixture(t)
		_, err := s.SetQuantity(t.Context(), "c", "pA", -1)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("ProductNotInCart", func(t *testing.T) {
		s, _, _ := cartFixture(t)
		cart, err := s.CreateCart(t.Context(), nil)
		require.NoError(t, err)

		_, err = s.SetQuantity(t.Context(), cart.CartID, "pA", 3)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCartReplaceItems(t *testing.T) {
	t.Run("ReplacesWholeSequence", func(t *testing.T) {
		s, _, _ := cartFixture(t)
		cart, err := s.CreateCart(t.Context(),
			[]domain.CartItem{{ProductID: "pA", Quantity: 1}})
		require.NoError(t, err)

		cart, err = s.ReplaceItems(t.Context(), cart.CartID,
			[]domain.CartItem{
				{ProductID: "pB", Quantity: 3},
			})
		require.NoError(t, err)

		require.Len(t, cart.Items, 1)
		assert.Equal(t, "pB", cart.Items[0].ProductID)
		assert.Equal(t, 3, cart.Items[0].Quantity)
	})

	t.Run("DuplicateReferencesFoldIntoOneItem", func(t *testing.T) {
		s, _, _ := cartFixture(t)
		cart, err := s.CreateCart(t.Context(), nil)
		require.NoError(t, err)

		cart, err = s.ReplaceItems(t.Context(), cart.CartID,
			[]domain.CartItem{
				{ProductID: "pA", Quantity: 1},
				{ProductID: "pA", Quantity: 2},
			})
		require.NoError(t, err)

		require.Len(t, cart.Items, 1)
		assert.Equal(t, 3, cart.Items[0].Quantity)
	})

	t.Run("InvalidItemRejected", func(t *testing.T) {
		s, _, _ := cartFixture(t)
		cart, err := s.CreateCart(t.Context(), nil)
		require.NoError(t, err)

		_, err = s.ReplaceItems(t.Context(), cart.CartID,
			[]domain.CartItem{{ProductID: "pA", Quantity: 0}})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}

func TestCartClear(t *testing.T) {
	s, carts, _ := cartFixture(t)
	cart, err := s.CreateCart(t.Context(),
		[]domain.CartItem{{ProductID: "pA", Quantity: 2}})
	require.NoError(t, err)

	cart, err = s.Clear(t.Context(), cart.CartID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	// cart survives clearing
	stored, err := carts.Read(t.Context(), cart.CartID)
	require.NoError(t, err)
	assert.Empty(t, stored.Items)
}

func TestCartGetCart(t *testing.T) {
	t.Run("ResolvesProducts", func(t *testing.T) {
		s, _, _ := cartFixture(t)
		cart, err := s.CreateCart(t.Context(),
			[]domain.CartItem{{ProductID: "pA", Quantity: 2}})
		require.NoError(t, err)

		resolved, err := s.GetCart(t.Context(), cart.CartID)
		require.NoError(t, err)
		require.Len(t, resolved.Items, 1)
		assert.Equal(t, "pA", resolved.Items[0].Product.ProductID)
		assert.Equal(t, "A", resolved.Items[0].Product.Title)
		assert.Equal(t, 2, resolved.Items[0].Quantity)
	})

	t.Run("UnknownCart", func(t *testing.T) {
		s, _, _ := cartFixture(t)
		_, err := s.GetCart(t.Context(), "ghost")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCartEvents(t *testing.T) {
	t.Run("EveryMutationPublishesSnapshot", func(t *testing.T) {
		s, _, events := cartFixture(t)
		cart, err := s.CreateCart(t.Context(), nil)
		require.NoError(t, err)
		_, err = s.AddItem(t.Context(), cart.CartID, "pA")
		require.NoError(t, err)

		evts := events.Events()
		require.Len(t, evts, 2)
		assert.Equal(t, domain.EventCartCreated, evts[0].Kind)
		assert.Equal(t, domain.EventCartUpdated, evts[1].Kind)
		require.NotNil(t, evts[1].Cart)
		assert.Equal(t, cart.CartID, evts[1].Cart.CartID)
		assert.Equal(t, domain.CartTopic(cart.CartID), evts[1].Topic())
	})

	t.Run("NoEventOnStorageFailure", func(t *testing.T) {
		s, carts, events := cartFixture(t)
		cart, err := s.CreateCart(t.Context(),
			[]domain.CartItem{{ProductID: "pA", Quantity: 1}})
		require.NoError(t, err)
		before := len(events.Events())

		carts.failReplace = fmt.Errorf("connection reset")
		_, err = s.AddItem(t.Context(), cart.CartID, "pA")
		require.Error(t, err)

		assert.Len(t, events.Events(), before)
	})
}
