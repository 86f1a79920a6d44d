package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Roberto031094/Backend1-Entrega/internal/core/port"
)

// GET    /api/v1/carts/{cartID}                        (resolved products)
// POST   /api/v1/carts                                 (201)
// POST   /api/v1/carts/{cartID}/products/{productID}
// DELETE /api/v1/carts/{cartID}/products/{productID}
// PUT    /api/v1/carts/{cartID}/products/{productID}   {"quantity": n}
// PUT    /api/v1/carts/{cartID}                        {"products": [...]}
// DELETE /api/v1/carts/{cartID}

type CartsHandler struct {
	reader  port.CartReader
	mutator port.CartMutator
}

func RegisterCarts(
	mux *http.ServeMux,
	reader port.CartReader,
	mutator port.CartMutator,
) {
	h := CartsHandler{reader, mutator}
	mux.HandleFunc("GET /api/v1/carts/{cartID}", h.Get)
	mux.HandleFunc("POST /api/v1/carts", h.Create)
	mux.HandleFunc("POST /api/v1/carts/{cartID}/products/{productID}", h.AddProduct)
	mux.HandleFunc("DELETE /api/v1/carts/{cartID}/products/{productID}", h.RemoveProduct)
	mux.HandleFunc("PUT /api/v1/carts/{cartID}/products/{productID}", h.SetQuantity)
	mux.HandleFunc("PUT /api/v1/carts/{cartID}", h.ReplaceProducts)
	mux.HandleFunc("DELETE /api/v1/carts/{cartID}", h.Clear)
}

func (h CartsHandler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "CartsHandler.Get"
	log := slog.With("op", op)

	cartID := r.PathValue("cartID")
	cart, err := h.reader.GetCart(r.Context(), cartID)
	if err != nil {
		log.Warn("failed to get cart", "cartID", cartID, "err", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResolvedCartDTO(cart))
}

func (h CartsHandler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "CartsHandler.Create"
	log := slog.With("op", op)

	var in CartItemsInput
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			log.Warn("failed to parse JSON", "err", err)
			http.Error(w, "invalid JSON data", http.StatusBadRequest)
			return
		}
	}

	cart, err := h.mutator.CreateCart(r.Context(), toDomainItems(in.Products))
	if err != nil {
		log.Warn("failed to create cart", "err", err)
		writeError(w, err)
		return
	}

	log.Info("cart created", "cartID", cart.CartID)
	writeJSON(w, http.StatusCreated, toCartDTO(cart))
}

func (h CartsHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	const op = "CartsHandler.AddProduct"
	log := slog.With("op", op)

	cartID := r.PathValue("cartID")
	productID := r.PathValue("productID")

	cart, err := h.mutator.AddItem(r.Context(), cartID, productID)
	if err != nil {
		log.Warn("failed to add product to cart",
			"cartID", cartID, "productID", productID, "err", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCartDTO(cart))
}

func (h CartsHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	const op = "CartsHandler.RemoveProduct"
	log := slog.With("op", op)

	cartID := r.PathValue("cartID")
	productID := r.PathValue("productID")

	cart, err := h.mutator.RemoveItem(r.Context(), cartID, productID)
	if err != nil {
		log.Warn("failed to remove product from cart",
			"cartID", cartID, "productID", productID, "err", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCartDTO(cart))
}

func (h CartsHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	const op = "CartsHandler.SetQuantity"
	log := slog.With("op", op)

	var in QuantityInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		log.Warn("failed to parse JSON", "err", err)
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		return
	}
	if in.Quantity == nil {
		http.Error(w, "quantity is required", http.StatusBadRequest)
		return
	}

	cartID := r.PathValue("cartID")
	productID := r.PathValue("productID")

	cart, err := h.mutator.SetQuantity(
		r.Context(), cartID, productID, *in.Quantity)
	if err != nil {
		log.Warn("failed to set quantity",
			"cartID", cartID, "productID", productID, "err", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCartDTO(cart))
}

func (h CartsHandler) ReplaceProducts(w http.ResponseWriter, r *http.Request) {
	const op = "CartsHandler.ReplaceProducts"
	log := slog.With("op", op)

	var in CartItemsInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		log.Warn("failed to parse JSON", "err", err)
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		return
	}
	if in.Products == nil {
		http.Error(w, "products array is required", http.StatusBadRequest)
		return
	}

	cartID := r.PathValue("cartID")
	cart, err := h.mutator.ReplaceItems(
		r.Context(), cartID, toDomainItems(in.Products))
	if err != nil {
		log.Warn("failed to replace cart products",
			"cartID", cartID, "err", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCartDTO(cart))
}

func (h CartsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	const op = "CartsHandler.Clear"
	log := slog.With("op", op)

	cartID := r.PathValue("cartID")
	cart, err := h.mutator.Clear(r.Context(), cartID)
	if err != nil {
		log.Warn("failed to clear cart", "cartID", cartID, "err", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCartDTO(cart))
}
