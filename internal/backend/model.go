package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// FlexString accepts a JSON string or number. The backend is not
// consistent about identifier types.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("flex string: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// FlexTime accepts RFC3339 strings or epoch milliseconds.
type FlexTime struct {
	time.Time
}

func (f *FlexTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" || string(b) == `""` {
		f.Time = time.Time{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			f.Time = time.UnixMilli(ms).UTC()
			return nil
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("flex time: %w", err)
		}
		f.Time = t
		return nil
	}
	ms, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("flex time: %w", err)
	}
	f.Time = time.UnixMilli(ms).UTC()
	return nil
}

func (f FlexTime) MarshalJSON() ([]byte, error) {
	if f.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(f.Time.Format(time.RFC3339Nano))
}

type ProductRecord struct {
	ID          FlexString      `json:"id"`
	MongoID     FlexString      `json:"_id"`
	Brand       string          `json:"brand"`
	Model       string          `json:"model"`
	Name        string          `json:"name"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	ImageURL    string          `json:"image_url"`
	Category    string          `json:"category"`
	Specs       map[string]any  `json:"specs"`
}

type UserRecord struct {
	ID             FlexString `json:"id"`
	MongoID        FlexString `json:"_id"`
	Email          string     `json:"email"`
	Username       string     `json:"username"`
	Phone          string     `json:"phone"`
	ProfilePicture string     `json:"profilePicture,omitempty"`
}

type AuthResponse struct {
	User  UserRecord `json:"user"`
	Token string     `json:"token,omitempty"`
	Error string     `json:"error,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Dob      string `json:"dob,omitempty"`
	Password string `json:"password"`
}

type OrderItemRecord struct {
	ID          FlexString      `json:"id,omitempty"`
	MongoID     FlexString      `json:"_id,omitempty"`
	Brand       string          `json:"brand"`
	Model       string          `json:"model"`
	Name        string          `json:"name,omitempty"`
	ProductName string          `json:"product_name,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	Quantity    int             `json:"quantity"`
	Rating      int             `json:"rating,omitempty"`
}

type InstalmentRecord struct {
	Months        int             `json:"months"`
	MonthlyAmount decimal.Decimal `json:"monthlyAmount"`
	Paid          decimal.Decimal `json:"paid"`
	PaymentsMade  int             `json:"paymentsMade"`
}

type OrderRecord struct {
	ID             FlexString        `json:"id"`
	MongoID        FlexString        `json:"_id"`
	Items          []OrderItemRecord `json:"items"`
	Delivery       string            `json:"delivery"`
	PaymentType    string            `json:"paymentType"`
	Currency       string            `json:"currency,omitempty"`
	TotalAmount    decimal.Decimal   `json:"totalAmount"`
	Instalment     *InstalmentRecord `json:"instalment,omitempty"`
	Status         string            `json:"status"`
	CreatedAt      FlexTime          `json:"createdAt"`
	CompletionDate FlexTime          `json:"completionDate"`
}

// OrderPayload is the body of POST /orders.
type OrderPayload struct {
	Items       []OrderItemRecord `json:"items"`
	Delivery    string            `json:"delivery"`
	PaymentType string            `json:"paymentType"`
	Currency    string            `json:"currency"`
	TotalAmount decimal.Decimal   `json:"totalAmount"`
	Instalment  *InstalmentRecord `json:"instalment,omitempty"`
}

// InstalmentPayment is the body of POST /orders/:id/complete-instalment.
type InstalmentPayment struct {
	Email            string          `json:"email"`
	AccountReference string          `json:"accountNumber"`
	Amount           decimal.Decimal `json:"amount"`
}

// OrderEmail is the body of POST /send-order-email.
type OrderEmail struct {
	UserEmail string `json:"userEmail"`
	OrderID   string `json:"orderId"`
	Delivery  string `json:"delivery"`
}
