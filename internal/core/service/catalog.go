package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Roberto031094/Backend1-Entrega/internal/core/domain"
	"github.com/Roberto031094/Backend1-Entrega/internal/core/port"
)

var _ port.CatalogViewer = (*CatalogService)(nil)
var _ port.CatalogEditor = (*CatalogService)(nil)

// CatalogService owns product reads and writes. Every successful
// write is committed to the store first and only then published to
// the event bus: an unconfirmed write never produces an event.
type CatalogService struct {
	products port.ProductsRepository
	events   port.EventPublisher
}

func NewCatalog(
	products port.ProductsRepository, events port.EventPublisher,
) CatalogService {
	return CatalogService{products, events}
}

func (s CatalogService) ListProducts(
	ctx context.Context,
	filter domain.CatalogFilter,
	sort domain.SortOrder,
	page domain.CatalogPage,
) (domain.ProductListing, error) {
	const op = "CatalogService.ListProducts"

	if err := ctx.Err(); err != nil {
		return domain.ProductListing{}, fmt.Errorf("%s: %w", op, err)
	}

	page = page.Normalize()
	products, total, err := s.products.Query(ctx, filter, sort, page)
	if err != nil {
		return domain.ProductListing{}, fmt.Errorf("%s: %w", op, err)
	}

	return makeListing(products, total, page), nil
}

func makeListing(
	products []domain.Product, total int, page domain.CatalogPage,
) domain.ProductListing {
	totalPages := (total + page.PageSize - 1) / page.PageSize

	l := domain.ProductListing{
		Products:    products,
		TotalCount:  total,
		TotalPages:  totalPages,
		Page:        page.Page,
		HasPrevPage: page.Page > 1,
		HasNextPage: page.Page < totalPages,
	}
	if l.HasPrevPage {
		l.PrevPage = page.Page - 1
	}
	if l.HasNextPage {
		l.NextPage = page.Page + 1
	}
	return l
}

func (s CatalogService) GetProduct(
	ctx context.Context, productID string,
) (domain.Product, error) {
	const op = "CatalogService.GetProduct"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	p, err := s.products.Read(ctx, productID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (s CatalogService) CreateProduct(
	ctx context.Context, p domain.Product,
) (domain.Product, error) {
	const op = "CatalogService.CreateProduct"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := validateProduct(p); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.products.Create(ctx, p)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	s.events.Publish(domain.ProductAddedEvent(created))
	return created, nil
}

func (s CatalogService) UpdateProduct(
	ctx context.Context, productID string, patch port.ProductPatch,
) (domain.Product, error) {
	const op = "CatalogService.UpdateProduct"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := validatePatch(patch); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.products.Update(ctx, productID, patch)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	s.events.Publish(domain.ProductUpdatedEvent(updated))
	return updated, nil
}

func (s CatalogService) DeleteProduct(
	ctx context.Context, productID string,
) error {
	const op = "CatalogService.DeleteProduct"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.products.Delete(ctx, productID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.events.Publish(domain.ProductDeletedEvent(productID))
	log.Info("product deleted", "productID", productID)
	return nil
}

func validateProduct(p domain.Product) error {
	switch {
	case p.Title == "":
		return fmt.Errorf("%w: title is required", domain.ErrInvalidArgument)
	case p.Description == "":
		return fmt.Errorf("%w: description is required", domain.ErrInvalidArgument)
	case p.Code == "":
		return fmt.Errorf("%w: code is required", domain.ErrInvalidArgument)
	case p.Category == "":
		return fmt.Errorf("%w: category is required", domain.ErrInvalidArgument)
	case p.Price < 0:
		return fmt.Errorf("%w: price must be non-negative", domain.ErrInvalidArgument)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock must be non-negative", domain.ErrInvalidArgument)
	}
	return nil
}

func validatePatch(patch port.ProductPatch) error {
	switch {
	case patch.IsZero():
		return fmt.Errorf("%w: at least one field is required", domain.ErrInvalidArgument)
	case patch.Code != nil && *patch.Code == "":
		return fmt.Errorf("%w: code must not be empty", domain.ErrInvalidArgument)
	case patch.Price != nil && *patch.Price < 0:
		return fmt.Errorf("%w: price must be non-negative", domain.ErrInvalidArgument)
	case patch.Stock != nil && *patch.Stock < 0:
		return fmt.Errorf("%w: stock must be non-negative", domain.ErrInvalidArgument)
	}
	return nil
}
