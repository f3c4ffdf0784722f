package transport

import (
	"context"
	"net/http"
	"strings"

	"nextgen-storefront/internal/auth"
	"nextgen-storefront/internal/cart"
	"nextgen-storefront/internal/product"

	"github.com/go-chi/chi/v5"
)

type cartHandler struct {
	carts    cart.Service
	products product.Service
}

type CartResponse struct {
	Items []cart.Item `json:"items"`
	Count int         `json:"count"`
	// Warning is set when the cart changed but could not be saved.
	Warning string `json:"warning,omitempty"`
}

// AddItemRequest names a catalog product. Price and details always come
// from the catalog.
type AddItemRequest struct {
	ProductID string `json:"productId"`
}

func (h *cartHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerFrom(r.Context())
	items := h.carts.Items(r.Context(), owner)
	respondJSON(w, http.StatusOK, CartResponse{Items: items, Count: len(items)})
}

func (h *cartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	id := strings.TrimSpace(req.ProductID)
	if id == "" {
		respondError(w, r, cart.ErrInvalidItem)
		return
	}
	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.mutate(w, r, func(ctx context.Context, owner string) ([]cart.Item, error) {
		return h.carts.Add(ctx, owner, *p)
	})
}

func (h *cartHandler) Increase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, func(ctx context.Context, owner string) ([]cart.Item, error) {
		return h.carts.Increase(ctx, owner, id)
	})
}

// decrease serves both the cart screen and the mini-cart, each with its
// own policy for the last unit.
func (h *cartHandler) decrease(policy cart.DecreasePolicy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		h.mutate(w, r, func(ctx context.Context, owner string) ([]cart.Item, error) {
			return h.carts.Decrease(ctx, owner, id, policy)
		})
	}
}

func (h *cartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, func(ctx context.Context, owner string) ([]cart.Item, error) {
		return h.carts.Remove(ctx, owner, id)
	})
}

func (h *cartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, owner string) ([]cart.Item, error) {
		return []cart.Item{}, h.carts.Clear(ctx, owner)
	})
}

func (h *cartHandler) mutate(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) ([]cart.Item, error)) {
	items, err := fn(r.Context(), auth.OwnerFrom(r.Context()))
	resp := CartResponse{Items: items, Count: len(items)}
	if err != nil {
		if !cart.IsWarning(err) {
			respondError(w, r, err)
			return
		}
		resp.Warning = cart.ErrPersistFailed.Error()
	}
	if resp.Items == nil {
		resp.Items = []cart.Item{}
	}
	respondJSON(w, http.StatusOK, resp)
}
