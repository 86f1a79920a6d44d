package domain

type Product struct {
	ProductID   string
	Title       string
	Description string
	Code        string
	Price       float64
	Stock       int
	Category    string
	Thumbnails  []string
}

type SortOrder int

const (
	SortNone SortOrder = iota
	SortPriceAsc
	SortPriceDesc
)

// CatalogFilter narrows a catalog query. The zero value matches
// every product.
type CatalogFilter struct {
	Category  string
	Available *bool
}

type CatalogPage struct {
	Page     int
	PageSize int
}

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Normalize clamps non-positive page and page size to the defaults,
// so skip offsets never go negative and page arithmetic never
// divides by zero.
func (p CatalogPage) Normalize() CatalogPage {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	return p
}

func (p CatalogPage) Skip() int {
	return (p.Page - 1) * p.PageSize
}

// ProductListing is a page of catalog results with the pagination
// metadata callers render alongside it.
type ProductListing struct {
	Products    []Product
	TotalCount  int
	TotalPages  int
	Page        int
	PrevPage    int
	NextPage    int
	HasPrevPage bool
	HasNextPage bool
}
