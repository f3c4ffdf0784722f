package instalment

import (
	"strings"

	"github.com/shopspring/decimal"
)

type State int

const (
	NotStarted State = iota
	InProgress
	Completed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Completed:
		return "completed"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Plan tracks how much of an order's total has been paid in instalments.
// Paid stays within [0, Total].
type Plan struct {
	Total        decimal.Decimal `json:"total"`
	Monthly      decimal.Decimal `json:"monthlyAmount"`
	Months       int             `json:"months"`
	Paid         decimal.Decimal `json:"paid"`
	PaymentsMade int             `json:"paymentsMade"`
}

// Start opens a plan with the first instalment charged at purchase time.
func Start(total decimal.Decimal, months int) (*Plan, error) {
	if months < 1 || total.IsNegative() {
		return nil, ErrInvalidPlan
	}
	monthly := total.Div(decimal.NewFromInt(int64(months))).Round(2)
	p := &Plan{
		Total:        total,
		Monthly:      monthly,
		Months:       months,
		Paid:         decimal.Min(monthly, total),
		PaymentsMade: 1,
	}
	return p, nil
}

// Restore rebuilds a plan from stored figures, clamping paid into range.
func Restore(total, monthly, paid decimal.Decimal, months, paymentsMade int) *Plan {
	if paid.IsNegative() {
		paid = decimal.Zero
	}
	if paid.GreaterThan(total) {
		paid = total
	}
	if paymentsMade < 0 {
		paymentsMade = 0
	}
	return &Plan{
		Total:        total,
		Monthly:      monthly,
		Months:       months,
		Paid:         paid,
		PaymentsMade: paymentsMade,
	}
}

func (p *Plan) State() State {
	if p.PaymentsMade == 0 && p.Paid.IsZero() && !p.Total.IsZero() {
		return NotStarted
	}
	if p.Paid.GreaterThanOrEqual(p.Total) {
		return Completed
	}
	return InProgress
}

func (p *Plan) Remaining() decimal.Decimal {
	return p.Total.Sub(p.Paid)
}

// NextCharge is what the next PayNext would take: the monthly amount, or
// the remainder when less than that is owed. A rounding shortfall is
// settled by an extra payment after the scheduled ones.
func (p *Plan) NextCharge() decimal.Decimal {
	remaining := p.Remaining()
	if !remaining.IsPositive() {
		return decimal.Zero
	}
	if remaining.LessThan(p.Monthly) || !p.Monthly.IsPositive() {
		return remaining
	}
	return p.Monthly
}

// Confirmation carries the payer details the backend needs for one payment.
type Confirmation struct {
	PayerEmail       string `json:"email"`
	AccountReference string `json:"accountNumber"`
}

func (c Confirmation) Validate() error {
	if strings.TrimSpace(c.PayerEmail) == "" || strings.TrimSpace(c.AccountReference) == "" {
		return ErrMissingConfirmation
	}
	return nil
}

// Payment is the outcome of one PayNext.
type Payment struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentNumber int             `json:"paymentNumber"`
	// JustCompleted is true only for the payment that settled the total.
	JustCompleted bool `json:"justCompleted"`
}

// Preview validates conf and returns the payment PayNext would make,
// without touching the plan.
func (p *Plan) Preview(conf Confirmation) (Payment, error) {
	switch p.State() {
	case Completed:
		return Payment{}, ErrAlreadyPaid
	case NotStarted:
		return Payment{}, ErrNotStarted
	}
	if err := conf.Validate(); err != nil {
		return Payment{}, err
	}
	charge := p.NextCharge()
	return Payment{
		Amount:        charge,
		PaymentNumber: p.PaymentsMade + 1,
		JustCompleted: p.Paid.Add(charge).GreaterThanOrEqual(p.Total),
	}, nil
}

// PayNext charges the next instalment. A completed plan is left untouched.
func (p *Plan) PayNext(conf Confirmation) (Payment, error) {
	pay, err := p.Preview(conf)
	if err != nil {
		return Payment{}, err
	}
	p.Paid = decimal.Min(p.Paid.Add(pay.Amount), p.Total)
	p.PaymentsMade++
	return pay, nil
}
