package transport

import (
	"net/http"

	"nextgen-storefront/internal/auth"
	"nextgen-storefront/internal/settings"
)

type settingsHandler struct {
	settings settings.Service
}

type DarkModeBody struct {
	DarkMode bool `json:"darkMode"`
}

func (h *settingsHandler) GetDarkMode(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, DarkModeBody{DarkMode: h.settings.DarkMode(r.Context(), auth.OwnerFrom(r.Context()))})
}

func (h *settingsHandler) SetDarkMode(w http.ResponseWriter, r *http.Request) {
	var body DarkModeBody
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.settings.SetDarkMode(r.Context(), auth.OwnerFrom(r.Context()), body.DarkMode); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, body)
}
