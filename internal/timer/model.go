package timer

import (
	"fmt"
	"time"
)

const (
	DeliveryDuration = 600 * time.Second
	PickupDuration   = 120 * time.Second

	// urgentBelow is when the countdown turns red.
	urgentBelow = 60

	labelDelivery = "On the way"
	labelPickup   = "Ready for pickup"
)

// Watch identifies an order to count down for.
type Watch struct {
	OrderID   string
	UserEmail string
	Delivery  bool
}

func durationFor(delivery bool) time.Duration {
	if delivery {
		return DeliveryDuration
	}
	return PickupDuration
}

// Arrival is sent to the backend when an order's countdown reaches zero.
type Arrival struct {
	OrderID   string
	UserEmail string
	Delivery  bool
}

func (a Arrival) DeliveryMode() string {
	if a.Delivery {
		return "delivery"
	}
	return "pickup"
}

type NotifyState string

const (
	NotifyNone    NotifyState = "none"
	NotifyPending NotifyState = "pending"
	NotifySent    NotifyState = "sent"
	NotifyFailed  NotifyState = "failed"
	// NotifySkipped means there was nobody to notify.
	NotifySkipped NotifyState = "skipped"
)

type Status struct {
	OrderID      string      `json:"orderId"`
	Label        string      `json:"label"`
	Duration     int         `json:"duration"`
	Remaining    int         `json:"remaining"`
	Display      string      `json:"display"`
	Progress     int         `json:"progress"`
	Urgent       bool        `json:"urgent"`
	Arrived      bool        `json:"arrived"`
	StartedAt    time.Time   `json:"startedAt"`
	Notification NotifyState `json:"notification"`
	Error        string      `json:"error,omitempty"`
}

// FormatClock renders seconds as mm:ss. Negative input shows 00:00.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
