package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/Roberto031094/Backend1-Entrega/internal/core/domain"
	"github.com/Roberto031094/Backend1-Entrega/internal/core/port"
	"github.com/Roberto031094/Backend1-Entrega/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProductsRepository struct {
	mock.Mock
}

func (m *MockProductsRepository) Query(
	ctx context.Context,
	filter domain.CatalogFilter,
	sort domain.SortOrder,
	page domain.CatalogPage,
) ([]domain.Product, int, error) {
	args := m.Called(ctx, filter, sort, page)
	products, _ := args.Get(0).([]domain.Product)
	return products, args.Int(1), args.Error(2)
}

func (m *MockProductsRepository) Read(
	ctx context.Context, productID string,
) (domain.Product, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductsRepository) Create(
	ctx context.Context, p domain.Product,
) (domain.Product, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductsRepository) Update(
	ctx context.Context, productID string, patch port.ProductPatch,
) (domain.Product, error) {
	args := m.Called(ctx, productID, patch)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductsRepository) Delete(
	ctx context.Context, productID string,
) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
}

func (p *capturePublisher) Publish(evt domain.ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *capturePublisher) Events() []domain.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.ChangeEvent(nil), p.events...)
}

func validProduct() domain.Product {
	return domain.Product{
		Title:       "testTitle",
		Description: "testDescription",
		Code:        "testCode",
		Price:       99.9,
		Stock:       3,
		Category:    "testCategory",
	}
}

func TestCatalogListProducts(t *testing.T) {
	tenProducts := make([]domain.Product, 10)

	t.Run("FirstPageOfTwelve", func(t *testing.T) {
		repo := new(MockProductsRepository)
		events := new(capturePublisher)
		page := domain.CatalogPage{Page: 1, PageSize: 10}
		repo.On("Query", t.Context(), domain.CatalogFilter{},
			domain.SortNone, page).Return(tenProducts, 12, nil)

		s := service.NewCatalog(repo, events)
		listing, err := s.ListProducts(
			t.Context(), domain.CatalogFilter{}, domain.SortNone, page)
		require.NoError(t, err)

		assert.Len(t, listing.Products, 10)
		assert.Equal(t, 12, listing.TotalCount)
		assert.Equal(t, 2, listing.TotalPages)
		assert.Equal(t, 1, listing.Page)
		assert.False(t, listing.HasPrevPage)
		assert.True(t, listing.HasNextPage)
		assert.Equal(t, 0, listing.PrevPage)
		assert.Equal(t, 2, listing.NextPage)
	})

	t.Run("LastPageOfTwelve", func(t *testing.T) {
		repo := new(MockProductsRepository)
		events := new(capturePublisher)
		page := domain.CatalogPage{Page: 2, PageSize: 10}
		repo.On("Query", t.Context(), domain.CatalogFilter{},
			domain.SortNone, page).Return(make([]domain.Product, 2), 12, nil)

		s := service.NewCatalog(repo, events)
		listing, err := s.ListProducts(
			t.Context(), domain.CatalogFilter{}, domain.SortNone, page)
		require.NoError(t, err)

		assert.Len(t, listing.Products, 2)
		assert.Equal(t, 2, listing.TotalPages)
		assert.True(t, listing.HasPrevPage)
		assert.False(t, listing.HasNextPage)
		assert.Equal(t, 1, listing.PrevPage)
		assert.Equal(t, 0, listing.NextPage)
	})

	t.Run("ExactPageBoundary", func(t *testing.T) {
		repo := new(MockProductsRepository)
		events := new(capturePublisher)
		page := domain.CatalogPage{Page: 2, PageSize: 5}
		repo.On("Query", t.Context(), domain.CatalogFilter{},
			domain.SortNone, page).Return(make([]domain.Product, 5), 10, nil)

		s := service.NewCatalog(repo, events)
		listing, err := s.ListProducts(
			t.Context(), domain.CatalogFilter{}, domain.SortNone, page)
		require.NoError(t, err)

		assert.Equal(t, 2, listing.TotalPages)
		assert.False(t, listing.HasNextPage)
	})

	t.Run("ClampsNonPositivePageParams", func(t *testing.T) {
		repo := new(MockProductsRepository)
		events := new(capturePublisher)
		normalized := domain.CatalogPage{Page: 1, PageSize: 10}
		repo.On("Query", t.Context(), domain.CatalogFilter{},
			domain.SortNone, normalized).Return(tenProducts, 12, nil)

		s := service.NewCatalog(repo, events)
		listing, err := s.ListProducts(
			t.Context(), domain.CatalogFilter{}, domain.SortNone,
			domain.CatalogPage{Page: -3, PageSize: 0})
		require.NoError(t, err)

		assert.Equal(t, 1, listing.Page)
		repo.AssertExpectations(t)
	})

	t.Run("EmptyCatalog", func(t *testing.T) {
		repo := new(MockProductsRepository)
		events := new(capturePublisher)
		page := domain.CatalogPage{Page: 1, PageSize: 10}
		repo.On("Query", t.Context(), domain.CatalogFilter{},
			domain.SortNone, page).Return(nil, 0, nil)

		s := service.NewCatalog(repo, events)
		listing, err := s.ListProducts(
			t.Context(), domain.CatalogFilter{}, domain.SortNone, page)
		require.NoError(t, err)

		assert.Empty(t, listing.Products)
		assert.Equal(t, 0, listing.TotalPages)
		assert.False(t, listing.HasPrevPage)
		assert.False(t, listing.HasNextPage)
	})
}

func TestCatalogCreateProduct(t *testing.T) {
	t.Run("PublishesProductAdded", func(t *testing.T) {
		repo := new(MockProductsRepository)
		events := new(capturePublisher)
		p := validProduct()
		created := p
		created.ProductID = "p1"
		repo.On("Create", t.Context(), p).Return(created, nil)

		s := service.NewCatalog(repo, events)
		got, err := s.CreateProduct(t.Context(), p)
		require.NoError(t, err)
		assert.Equal(t, created, got)

		evts := events.Events()
		require.Len(t, evts, 1)
		assert.Equal(t, domain.EventProductAdded, evts[0].Kind)
		assert.Equal(t, "p1", evts[0].ProductID)
		require.NotNil(t, evts[0].Product)
		assert.Equal(t, created, *evts[0].Product)
	})

	t.Run("MissingRequiredField", func(t *testing.T) {
		repo := new(MockProductsRepository)
		events := new(capturePublisher)
		p := validProduct()
		p.Code = ""

		s := service.NewCatalog(repo, events)
		_, err := s.CreateProduct(t.Context(), p)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		assert.Empty(t, events.Events())
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("DuplicateCodeNoEvent", func(t *testing.T) {
		repo := new(MockProductsRepository)
		events := new(capturePublisher)
		p := validProduct()
		repo.On("Create", t.Context(), p).
			Return(domain.Product{}, domain.ErrConflict)

		s := service.NewCatalog(repo, events)
		_, err := s.CreateProduct(t.Context(), p)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Empty(t, events.Events())
	})
}

func TestCatalogDeleteProduct(t *testing.T) {
	t.Run("PublishesExactlyOneProductDeleted", func(t *testing.T) {
		repo := new(MockProductsRepository)
		events := new(capturePublisher)
		repo.On("Delete", t.Context(), "p1").Return(nil)

		s := service.NewCatalog(repo, events)
		require.NoError(t, s.DeleteProduct(t.Context(), "p1"))

		evts := events.Events()
		require.Len(t, evts, 1)
		assert.Equal(t, domain.EventProductDeleted, evts[0].Kind)
		assert.Equal(t, "p1", evts[0].ProductID)
		assert.Nil(t, evts[0].Product)
	})

	t.Run("UnknownIDNoEvent", func(t *testing.T) {
		repo := new(MockProductsRepository)
		events := new(capturePublisher)
		repo.On("Delete", t.Context(), "nope").Return(domain.ErrNotFound)

		s := service.NewCatalog(repo, events)
		err := s.DeleteProduct(t.Context(), "nope")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, events.Events())
	})
}

func TestCatalogUpdateProduct(t *testing.T) {
	t.Run("PublishesProductUpdated", func(t *testing.T) {
		repo := new(MockProductsRepository)
		events := new(capturePublisher)
		price := 10.5
		patch := port.ProductPatch{Price: &price}
		updated := validProduct()
		updated.ProductID = "p1"
		updated.Price = price
		repo.On("Update", t.Context(), "p1", patch).Return(updated, nil)

		s := service.NewCatalog(repo, events)
		got, err := s.UpdateProduct(t.Context(), "p1", patch)
		require.NoError(t, err)
		assert.Equal(t, updated, got)

		evts := events.Events()
		require.Len(t, evts, 1)
		assert.Equal(t, domain.EventProductUpdated, evts[0].Kind)
	})

	t.Run("EmptyPatchRejected", func(t *testing.T) {
		repo := new(MockProductsRepository)
		events := new(capturePublisher)

		s := service.NewCatalog(repo, events)
		_, err := s.UpdateProduct(t.Context(), "p1", port.ProductPatch{})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		assert.Empty(t, events.Events())
	})

	t.Run("NegativePriceRejected", func(t *testing.T) {
		repo := new(MockProductsRepository)
		events := new(capturePublisher)
		price := -1.0

		s := service.NewCatalog(repo, events)
		_, err := s.UpdateProduct(
			t.Context(), "p1", port.ProductPatch{Price: &price})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		assert.Empty(t, events.Events())
	})
}
