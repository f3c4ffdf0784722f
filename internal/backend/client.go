package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nextgen-storefront/internal/logger"
	"nextgen-storefront/internal/metrics"

	"go.uber.org/zap"
)

// Client talks to the storefront REST backend.
type Client interface {
	ListProducts(ctx context.Context) ([]ProductRecord, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error)
	Me(ctx context.Context) (*UserRecord, error)
	UpdateProfilePicture(ctx context.Context, image string) error

	ListOrders(ctx context.Context) ([]OrderRecord, error)
	// CreateOrder returns nil when the backend acknowledges without a body.
	CreateOrder(ctx context.Context, payload OrderPayload) (*OrderRecord, error)
	ReceiveOrder(ctx context.Context, orderID string) (*OrderRecord, error)
	CompleteInstalment(ctx context.Context, orderID string, payment InstalmentPayment) (*OrderRecord, error)
	RateItem(ctx context.Context, orderID, itemID string, rating int) error
	SendOrderEmail(ctx context.Context, msg OrderEmail) error
}

type httpClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) Client {
	if baseURL == "" {
		logger.L().Warn("backend base URL is empty")
	}
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ----------------- Catalog & auth -----------------

func (c *httpClient) ListProducts(ctx context.Context) ([]ProductRecord, error) {
	var out []ProductRecord
	if err := c.do(ctx, http.MethodGet, "/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	return c.auth(ctx, "/login", req)
}

func (c *httpClient) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	return c.auth(ctx, "/signup", req)
}

func (c *httpClient) auth(ctx context.Context, path string, body any) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	// Some revisions answer 200 with {"error": "..."}.
	if out.Error != "" {
		return nil, &Error{Status: http.StatusUnauthorized, Message: out.Error}
	}
	return &out, nil
}

func (c *httpClient) Me(ctx context.Context) (*UserRecord, error) {
	var out UserRecord
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) UpdateProfilePicture(ctx context.Context, image string) error {
	return c.do(ctx, http.MethodPut, "/users/profile-picture", map[string]string{"image": image}, nil)
}

// ----------------- Orders -----------------

func (c *httpClient) ListOrders(ctx context.Context) ([]OrderRecord, error) {
	var out []OrderRecord
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) CreateOrder(ctx context.Context, payload OrderPayload) (*OrderRecord, error) {
	return c.orderCall(ctx, "/orders", payload)
}

func (c *httpClient) ReceiveOrder(ctx context.Context, orderID string) (*OrderRecord, error) {
	return c.orderCall(ctx, "/orders/"+url.PathEscape(orderID)+"/receive", struct{}{})
}

func (c *httpClient) CompleteInstalment(ctx context.Context, orderID string, payment InstalmentPayment) (*OrderRecord, error) {
	return c.orderCall(ctx, "/orders/"+url.PathEscape(orderID)+"/complete-instalment", payment)
}

// orderCall posts body and decodes an order from the answer. Opaque
// acknowledgements ({"message": "ok"}, "ok", empty) yield a nil record.
func (c *httpClient) orderCall(ctx context.Context, path string, body any) (*OrderRecord, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, path, body, &raw); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var envelope struct {
		Order *OrderRecord `json:"order"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Order != nil && hasID(envelope.Order) {
		return envelope.Order, nil
	}

	var rec OrderRecord
	if err := json.Unmarshal(raw, &rec); err != nil || !hasID(&rec) {
		return nil, nil
	}
	return &rec, nil
}

func hasID(r *OrderRecord) bool {
	return r.ID != "" || r.MongoID != ""
}

func (c *httpClient) RateItem(ctx context.Context, orderID, itemID string, rating int) error {
	path := fmt.Sprintf("/orders/%s/rate/%s", url.PathEscape(orderID), url.PathEscape(itemID))
	return c.do(ctx, http.MethodPost, path, map[string]int{"rating": rating}, nil)
}

func (c *httpClient) SendOrderEmail(ctx context.Context, msg OrderEmail) error {
	return c.do(ctx, http.MethodPost, "/send-order-email", msg, nil)
}

// ----------------- Transport -----------------

func (c *httpClient) do(ctx context.Context, method, path string, body, out any) error {
	log := logger.FromCtx(ctx).With(
		zap.String("method", method),
		zap.String("path", path),
	)

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			log.Error("failed to marshal backend request", zap.Error(err))
			return err
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		log.Error("failed creating backend request", zap.Error(err))
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := TokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if reqID := logger.RequestIDFrom(ctx); reqID != "" {
		req.Header.Set(logger.RequestIDHeader, reqID)
	}

	timer := metrics.StartTimer()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("backend request failed", zap.Duration("took", timer.Duration()), zap.Error(err))
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("failed to read backend response", zap.Error(err))
		return fmt.Errorf("failed to read backend response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("backend returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.Duration("took", timer.Duration()),
			zap.ByteString("response", bodyBytes),
		)
		return &Error{Status: resp.StatusCode, Message: errorMessage(bodyBytes)}
	}

	if out == nil || len(bytes.TrimSpace(bodyBytes)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], bodyBytes...)
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		log.Error("failed decoding backend response", zap.Error(err))
		return fmt.Errorf("failed decoding backend response: %w", err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
