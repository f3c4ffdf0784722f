package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"nextgen-storefront/internal/backend"
	"nextgen-storefront/internal/cart"
	"nextgen-storefront/internal/checkout"
	"nextgen-storefront/internal/instalment"
	"nextgen-storefront/internal/logger"
	"nextgen-storefront/internal/order"
	"nextgen-storefront/internal/payment"
	"nextgen-storefront/internal/pricing"
	"nextgen-storefront/internal/product"
	"nextgen-storefront/internal/timer"
	"nextgen-storefront/internal/user"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

var errBadBody = errors.New("invalid JSON body")

type ErrorResponse struct {
	Error  string               `json:"error"`
	Fields []payment.FieldError `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.L().Warn("failed to encode response", zap.Error(err))
	}
}

// respondError writes err with the status it maps to. Server-side
// failures are logged; their text is not shown to the caller.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := ErrorResponse{Error: err.Error()}

	var verr *payment.ValidationError
	if errors.As(err, &verr) {
		body = ErrorResponse{Error: verr.Message, Fields: verr.Fields}
	}
	var ierr *user.InputError
	if errors.As(err, &ierr) {
		body.Fields = make([]payment.FieldError, 0, len(ierr.Fields))
		for _, f := range ierr.Fields {
			body.Fields = append(body.Fields, payment.FieldError{Field: f, Rule: "invalid"})
		}
	}

	log := logger.FromCtx(r.Context()).With(zap.Int("status", status), zap.Error(err))
	switch {
	case status >= http.StatusInternalServerError:
		log.Error("request failed")
		if status == http.StatusInternalServerError {
			body = ErrorResponse{Error: http.StatusText(status)}
		}
	default:
		log.Debug("request rejected")
	}
	respondJSON(w, status, body)
}

func statusFor(err error) int {
	var (
		verr *payment.ValidationError
		ierr *user.InputError
		rerr *user.RejectedError
		berr *backend.Error
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &ierr), errors.As(err, &rerr),
		errors.Is(err, errBadBody),
		errors.Is(err, pricing.ErrUnknownCurrency),
		errors.Is(err, pricing.ErrUnknownPaymentType),
		errors.Is(err, pricing.ErrUnknownDelivery),
		errors.Is(err, pricing.ErrInvalidMonths),
		errors.Is(err, instalment.ErrMissingConfirmation),
		errors.Is(err, order.ErrInvalidRating),
		errors.Is(err, order.ErrInvalidDraft),
		errors.Is(err, checkout.ErrCartEmpty),
		errors.Is(err, cart.ErrInvalidItem),
		errors.Is(err, user.ErrTermsNotAccepted),
		errors.Is(err, user.ErrInvalidImage):
		return http.StatusBadRequest

	case errors.Is(err, checkout.ErrLoginRequired),
		errors.Is(err, order.ErrUnauthorized),
		errors.Is(err, user.ErrNotLoggedIn),
		errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, user.ErrWrongPassword),
		errors.Is(err, backend.ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrItemNotFound),
		errors.Is(err, cart.ErrCartItemNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, user.ErrAccountNotFound),
		errors.Is(err, timer.ErrUnknownOrder):
		return http.StatusNotFound

	case order.IsConflict(err),
		errors.Is(err, order.ErrNotInstalment),
		errors.Is(err, timer.ErrNotRetryable):
		return http.StatusConflict

	case errors.As(err, &berr),
		errors.Is(err, product.ErrCatalogFailed),
		errors.Is(err, user.ErrNoToken):
		return http.StatusBadGateway

	case errors.Is(err, timer.ErrStopped):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}
