package httphandler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Roberto031094/Backend1-Entrega/internal/core/domain"
	"github.com/Roberto031094/Backend1-Entrega/internal/core/port"
)

// GET    /api/v1/products?limit=&page=&sort=&query=&available=
// GET    /api/v1/products/{productID}
// POST   /api/v1/products         (201, 400 missing field, 409 dup code)
// PUT    /api/v1/products/{productID}
// DELETE /api/v1/products/{productID}

type ProductsHandler struct {
	viewer port.CatalogViewer
	editor port.CatalogEditor
}

func RegisterProducts(
	mux *http.ServeMux,
	viewer port.CatalogViewer,
	editor port.CatalogEditor,
) {
	h := ProductsHandler{viewer, editor}
	mux.HandleFunc("GET /api/v1/products", h.List)
	mux.HandleFunc("GET /api/v1/products/{productID}", h.Get)
	mux.HandleFunc("POST /api/v1/products", h.Create)
	mux.HandleFunc("PUT /api/v1/products/{productID}", h.Update)
	mux.HandleFunc("DELETE /api/v1/products/{productID}", h.Delete)
}

func (h ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.List"
	log := slog.With("op", op)

	q := r.URL.Query()
	filter, sort, page := parseListParams(q)

	listing, err := h.viewer.ListProducts(r.Context(), filter, sort, page)
	if err != nil {
		log.Error("failed to list products", "err", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, makeListingResponse(r, q, listing))
}

// parseListParams never fails: missing or non-numeric paging input
// falls back to the defaults.
func parseListParams(q url.Values) (
	domain.CatalogFilter, domain.SortOrder, domain.CatalogPage,
) {
	page := domain.CatalogPage{
		Page:     domain.DefaultPage,
		PageSize: domain.DefaultPageSize,
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil {
		page.Page = n
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		page.PageSize = n
	}
	page = page.Normalize()

	var sort domain.SortOrder
	switch q.Get("sort") {
	case "asc":
		sort = domain.SortPriceAsc
	case "desc":
		sort = domain.SortPriceDesc
	}

	filter := domain.CatalogFilter{Category: q.Get("query")}
	if v := q.Get("available"); v != "" {
		available := v == "true"
		filter.Available = &available
	}

	return filter, sort, page
}

func makeListingResponse(
	r *http.Request, q url.Values, listing domain.ProductListing,
) ProductListing {
	resp := ProductListing{
		Status:      "success",
		Payload:     make([]Product, 0, len(listing.Products)),
		TotalPages:  listing.TotalPages,
		Page:        listing.Page,
		HasPrevPage: listing.HasPrevPage,
		HasNextPage: listing.HasNextPage,
	}
	for _, p := range listing.Products {
		resp.Payload = append(resp.Payload, toProductDTO(p))
	}
	if listing.HasPrevPage {
		resp.PrevPage = &listing.PrevPage
		link := pageLink(r, q, listing.PrevPage)
		resp.PrevLink = &link
	}
	if listing.HasNextPage {
		resp.NextPage = &listing.NextPage
		link := pageLink(r, q, listing.NextPage)
		resp.NextLink = &link
	}
	return resp
}

func pageLink(r *http.Request, q url.Values, page int) string {
	linkQuery := url.Values{}
	for k, vs := range q {
		linkQuery[k] = vs
	}
	linkQuery.Set("page", strconv.Itoa(page))
	return fmt.Sprintf("%s?%s", r.URL.Path, linkQuery.Encode())
}

func (h ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.Get"
	log := slog.With("op", op)

	productID := r.PathValue("productID")
	p, err := h.viewer.GetProduct(r.Context(), productID)
	if err != nil {
		log.Warn("failed to get product", "productID", productID, "err", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProductDTO(p))
}

func (h ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.Create"
	log := slog.With("op", op)

	var in ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		log.Warn("failed to parse JSON", "err", err)
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		return
	}

	p, err := h.editor.CreateProduct(r.Context(), in.toDomain())
	if err != nil {
		log.Warn("failed to create product", "err", err)
		writeError(w, err)
		return
	}

	log.Info("product created", "productID", p.ProductID, "code", p.Code)
	writeJSON(w, http.StatusCreated, toProductDTO(p))
}

func (h ProductsHandler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.Update"
	log := slog.With("op", op)

	var in ProductPatchInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		log.Warn("failed to parse JSON", "err", err)
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		return
	}

	productID := r.PathValue("productID")
	p, err := h.editor.UpdateProduct(r.Context(), productID, in.toDomain())
	if err != nil {
		log.Warn("failed to update product", "productID", productID, "err", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProductDTO(p))
}

func (h ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.Delete"
	log := slog.With("op", op)

	productID := r.PathValue("productID")
	if err := h.editor.DeleteProduct(r.Context(), productID); err != nil {
		log.Warn("failed to delete product", "productID", productID, "err", err)
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
