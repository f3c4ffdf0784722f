package transport

import (
	"errors"
	"net/http"

	"nextgen-storefront/internal/auth"
	"nextgen-storefront/internal/instalment"
	"nextgen-storefront/internal/logger"
	"nextgen-storefront/internal/order"
	"nextgen-storefront/internal/pricing"
	"nextgen-storefront/internal/timer"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type orderHandler struct {
	orders order.Service
	timers *timer.Tracker
}

// OrderView is an order as the order history screen shows it.
type OrderView struct {
	*order.Order
	ReceiveLabel string        `json:"receiveLabel"`
	Timer        *timer.Status `json:"timer,omitempty"`
}

type RateRequest struct {
	Rating int `json:"rating"`
}

// List returns the caller's orders and starts the countdown of any order
// seen for the first time.
func (h *orderHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := auth.IdentityFrom(ctx)

	orders, err := h.orders.List(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}

	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		v := OrderView{Order: o, ReceiveLabel: o.ReceiveLabel()}
		if h.timers != nil {
			st, err := h.timers.Observe(ctx, watchOf(o, id.Email))
			if err != nil {
				logger.FromCtx(ctx).Warn("order timer unavailable", zap.String("order_id", o.ID), zap.Error(err))
			} else {
				v.Timer = &st
			}
		}
		views = append(views, v)
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *orderHandler) Receive(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())
	o, err := h.orders.MarkReceived(r.Context(), id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, OrderView{Order: o, ReceiveLabel: o.ReceiveLabel()})
}

func (h *orderHandler) PayInstalment(w http.ResponseWriter, r *http.Request) {
	var conf instalment.Confirmation
	if err := decodeJSON(w, r, &conf); err != nil {
		respondError(w, r, err)
		return
	}

	id, _ := auth.IdentityFrom(r.Context())
	res, err := h.orders.PayInstalment(r.Context(), id.UserID, chi.URLParam(r, "id"), conf)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *orderHandler) Rate(w http.ResponseWriter, r *http.Request) {
	var req RateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	id, _ := auth.IdentityFrom(r.Context())
	o, err := h.orders.Rate(r.Context(), id.UserID, chi.URLParam(r, "id"), chi.URLParam(r, "itemId"), req.Rating)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, OrderView{Order: o, ReceiveLabel: o.ReceiveLabel()})
}

// RetryNotification re-sends a failed arrival email for one of the
// caller's own orders.
func (h *orderHandler) RetryNotification(w http.ResponseWriter, r *http.Request) {
	if h.timers == nil {
		respondError(w, r, timer.ErrStopped)
		return
	}
	ctx := r.Context()
	id, _ := auth.IdentityFrom(ctx)

	// The backend only lists the caller's orders.
	o, err := h.orders.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	// Settled orders leave the tracker; bring this one back first.
	if _, err := h.timers.Observe(ctx, watchOf(o, id.Email)); err != nil {
		respondError(w, r, err)
		return
	}
	st, err := h.timers.Retry(ctx, o.ID)
	if err != nil {
		if st.OrderID != "" && !errors.Is(err, timer.ErrNotRetryable) {
			// The retry ran and failed again; the status says so.
			respondJSON(w, http.StatusBadGateway, st)
			return
		}
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func watchOf(o *order.Order, email string) timer.Watch {
	return timer.Watch{
		OrderID:   o.ID,
		UserEmail: email,
		Delivery:  o.Delivery == pricing.HomeDelivery,
	}
}
