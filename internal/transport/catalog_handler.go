package transport

import (
	"net/http"

	"nextgen-storefront/internal/product"

	"github.com/go-chi/chi/v5"
)

type catalogHandler struct {
	products product.Service
}

func (h *catalogHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	catalog, err := h.products.Catalog(r.Context(), product.Filter{
		Brand:    q.Get("brand"),
		Category: q.Get("category"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, catalog)
}

func (h *catalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}
