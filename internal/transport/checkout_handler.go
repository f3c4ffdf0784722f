package transport

import (
	"net/http"
	"strconv"

	"nextgen-storefront/internal/auth"
	"nextgen-storefront/internal/checkout"
	"nextgen-storefront/internal/payment"
	"nextgen-storefront/internal/pricing"
)

// defaultMonths is preselected on the checkout screen.
const defaultMonths = 3

type checkoutHandler struct {
	checkout checkout.Service
}

// PurchaseRequest is the checkout screen as submitted.
type PurchaseRequest struct {
	Currency         string       `json:"currency"`
	PaymentType      string       `json:"paymentType"`
	InstalmentMonths int          `json:"instalmentMonths"`
	Delivery         string       `json:"delivery"`
	Form             payment.Form `json:"form"`
}

func parseConfig(currency, paymentType, delivery string, months int) (pricing.Config, error) {
	var (
		cfg pricing.Config
		err error
	)
	if cfg.Currency, err = pricing.ParseCurrency(currency); err != nil {
		return cfg, err
	}
	if cfg.PaymentType, err = pricing.ParsePaymentType(paymentType); err != nil {
		return cfg, err
	}
	if cfg.Delivery, err = pricing.ParseDelivery(delivery); err != nil {
		return cfg, err
	}
	if cfg.PaymentType == pricing.Instalment {
		if months == 0 {
			months = defaultMonths
		}
		cfg.Months = months
	}
	return cfg, cfg.Validate()
}

func (h *checkoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	months := 0
	if raw := q.Get("months"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, r, pricing.ErrInvalidMonths)
			return
		}
		months = m
	}

	cfg, err := parseConfig(q.Get("currency"), q.Get("paymentType"), q.Get("delivery"), months)
	if err != nil {
		respondError(w, r, err)
		return
	}

	quote, err := h.checkout.Quote(r.Context(), auth.OwnerFrom(r.Context()), cfg)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

func (h *checkoutHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	cfg, err := parseConfig(req.Currency, req.PaymentType, req.Delivery, req.InstalmentMonths)
	if err != nil {
		respondError(w, r, err)
		return
	}

	receipt, err := h.checkout.Purchase(r.Context(), auth.OwnerFrom(r.Context()), checkout.Request{
		Config: cfg,
		Form:   req.Form,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, receipt)
}
