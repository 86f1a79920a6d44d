package httphandler

import (
	"github.com/Roberto031094/Backend1-Entrega/internal/core/domain"
	"github.com/Roberto031094/Backend1-Entrega/internal/core/port"
)

type (
	Product struct {
		ID          string   `json:"id"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Code        string   `json:"code"`
		Price       float64  `json:"price"`
		Stock       int      `json:"stock"`
		Category    string   `json:"category"`
		Thumbnails  []string `json:"thumbnails"`
	}

	ProductInput struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Code        string   `json:"code"`
		Price       float64  `json:"price"`
		Stock       int      `json:"stock"`
		Category    string   `json:"category"`
		Thumbnails  []string `json:"thumbnails"`
	}

	// ProductPatchInput distinguishes absent fields from zero
	// values, so a PUT can change a subset of fields.
	ProductPatchInput struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Code        *string  `json:"code"`
		Price       *float64 `json:"price"`
		Stock       *int     `json:"stock"`
		Category    *string  `json:"category"`
		Thumbnails  []string `json:"thumbnails"`
	}
)

type ProductListing struct {
	Status      string    `json:"status"`
	Payload     []Product `json:"payload"`
	TotalPages  int       `json:"totalPages"`
	PrevPage    *int      `json:"prevPage"`
	NextPage    *int      `json:"nextPage"`
	Page        int       `json:"page"`
	HasPrevPage bool      `json:"hasPrevPage"`
	HasNextPage bool      `json:"hasNextPage"`
	PrevLink    *string   `json:"prevLink"`
	NextLink    *string   `json:"nextLink"`
}

type (
	Cart struct {
		ID       string     `json:"id"`
		Products []CartItem `json:"products"`
	}

	CartItem struct {
		Product  string `json:"product"`
		Quantity int    `json:"quantity"`
	}

	// ResolvedCart carries full product records per line item, the
	// shape the cart page renders from.
	ResolvedCart struct {
		ID       string         `json:"id"`
		Products []ResolvedItem `json:"products"`
	}

	ResolvedItem struct {
		Product  Product `json:"product"`
		Quantity int     `json:"quantity"`
	}

	CartItemsInput struct {
		Products []CartItem `json:"products"`
	}

	QuantityInput struct {
		Quantity *int `json:"quantity"`
	}
)

func toProductDTO(p domain.Product) Product {
	return Product{
		ID:          p.ProductID,
		Title:       p.Title,
		Description: p.Description,
		Code:        p.Code,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		Thumbnails:  p.Thumbnails,
	}
}

func (in ProductInput) toDomain() domain.Product {
	return domain.Product{
		Title:       in.Title,
		Description: in.Description,
		Code:        in.Code,
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    in.Category,
		Thumbnails:  in.Thumbnails,
	}
}

func (in ProductPatchInput) toDomain() port.ProductPatch {
	return port.ProductPatch{
		Title:       in.Title,
		Description: in.Description,
		Code:        in.Code,
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    in.Category,
		Thumbnails:  in.Thumbnails,
	}
}

func toCartDTO(c domain.Cart) Cart {
	dto := Cart{ID: c.CartID, Products: []CartItem{}}
	for _, it := range c.Items {
		dto.Products = append(dto.Products, CartItem{
			Product:  it.ProductID,
			Quantity: it.Quantity,
		})
	}
	return dto
}

func toResolvedCartDTO(c domain.ResolvedCart) ResolvedCart {
	dto := ResolvedCart{ID: c.CartID, Products: []ResolvedItem{}}
	for _, it := range c.Items {
		dto.Products = append(dto.Products, ResolvedItem{
			Product:  toProductDTO(it.Product),
			Quantity: it.Quantity,
		})
	}
	return dto
}

func toDomainItems(items []CartItem) []domain.CartItem {
	ds := make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		ds = append(ds, domain.CartItem{
			ProductID: it.Product,
			Quantity:  it.Quantity,
		})
	}
	return ds
}
