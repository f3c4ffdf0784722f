package checkout

import (
	"context"
	"strconv"
	"strings"
	"time"

	"nextgen-storefront/internal/cart"
	"nextgen-storefront/internal/instalment"
	"nextgen-storefront/internal/logger"
	"nextgen-storefront/internal/order"
	"nextgen-storefront/internal/payment"
	"nextgen-storefront/internal/pricing"
	"nextgen-storefront/internal/storage"

	"go.uber.org/zap"
)

type Service interface {
	Quote(ctx context.Context, owner string, cfg pricing.Config) (*Quote, error)
	// Purchase validates everything locally, places the order and clears
	// the cart. Nothing changes when any step before the order fails.
	Purchase(ctx context.Context, owner string, req Request) (*Receipt, error)
}

type service struct {
	carts  cart.Service
	orders order.Service
	engine *pricing.Engine
}

func NewService(carts cart.Service, orders order.Service, engine *pricing.Engine) Service {
	if engine == nil {
		engine = pricing.DefaultEngine()
	}
	return &service{carts: carts, orders: orders, engine: engine}
}

func (s *service) Quote(ctx context.Context, owner string, cfg pricing.Config) (*Quote, error) {
	items := s.carts.Items(ctx, owner)
	totals, err := s.engine.ComputeTotals(items, cfg)
	if err != nil {
		return nil, err
	}

	q := &Quote{
		Lines:   make([]Line, 0, len(items)),
		Totals:  totals,
		Display: pricing.FormatAmount(totals.TotalConverted, cfg.Currency),
	}
	for _, it := range items {
		converted, err := s.engine.Convert(it.Price, cfg.Currency)
		if err != nil {
			return nil, err
		}
		q.Lines = append(q.Lines, Line{
			ID:             it.ID,
			Brand:          it.Brand,
			Model:          it.Model,
			Quantity:       it.Quantity,
			UnitPrice:      it.Price,
			ConvertedPrice: converted,
		})
	}
	if totals.MonthlyInstalment != nil {
		q.Monthly = pricing.FormatAmount(*totals.MonthlyInstalment, cfg.Currency)
	}
	return q, nil
}

func (s *service) Purchase(ctx context.Context, owner string, req Request) (*Receipt, error) {
	owner = strings.TrimSpace(owner)
	cfg := req.Config
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Purchase"),
		zap.String("payment_type", string(cfg.PaymentType)),
		zap.String("currency", string(cfg.Currency)),
	)

	if storage.IsGuestOwner(owner) {
		return nil, ErrLoginRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := payment.Validate(req.Form, cfg.PaymentType, cfg.Delivery); err != nil {
		log.Info("checkout form rejected", zap.Error(err))
		return nil, err
	}

	items := s.carts.Items(ctx, owner)
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	totals, err := s.engine.ComputeTotals(items, cfg)
	if err != nil {
		return nil, err
	}

	draft := order.Draft{
		Items:       order.ItemsFromCart(items),
		Delivery:    cfg.Delivery,
		PaymentType: cfg.PaymentType,
		Currency:    cfg.Currency,
		TotalAmount: totals.TotalConverted,
	}
	var plan *instalment.Plan
	if cfg.PaymentType == pricing.Instalment {
		plan, err = instalment.Start(totals.TotalConverted, cfg.Months)
		if err != nil {
			return nil, err
		}
		draft.Instalment = &order.Instalment{
			Months:        plan.Months,
			MonthlyAmount: plan.Monthly,
			Paid:          plan.Paid,
			PaymentsMade:  plan.PaymentsMade,
		}
	}

	placed, err := s.orders.Place(ctx, owner, draft)
	if err != nil {
		log.Warn("purchase failed, cart left as is", zap.Error(err))
		return nil, err
	}

	receipt := &Receipt{
		Order:     placed,
		Totals:    totals,
		Message:   msgPurchaseDone,
		Reference: payment.NewReference(time.Now()),
	}
	if plan != nil {
		receipt.Message = msgFirstInstalment
	}
	receipt.Instructions = instructions(cfg, req.Form, placed, totals, plan, receipt.Reference)

	if err := s.carts.Clear(ctx, owner); err != nil {
		log.Warn("order placed but cart not cleared", zap.Error(err))
		receipt.Warning = cart.ErrPersistFailed.Error()
	}

	log.Info("purchase complete",
		zap.String("order_id", placed.ID),
		zap.String("total", totals.TotalConverted.StringFixed(2)),
	)
	return receipt, nil
}

func instructions(cfg pricing.Config, form payment.Form, o *order.Order, totals *pricing.Totals, plan *instalment.Plan, ref string) []string {
	vars := payment.InstructionVars{
		"amount":    pricing.FormatAmount(totals.TotalConverted, cfg.Currency),
		"order_id":  o.ID,
		"reference": ref,
		"bank":      strings.TrimSpace(form.EFT.Bank),
		"address":   strings.TrimSpace(form.Delivery.Address),
	}
	if plan != nil {
		vars["monthly"] = pricing.FormatAmount(plan.Monthly, cfg.Currency)
		vars["remaining"] = strconv.Itoa(plan.Months - plan.PaymentsMade)
	}
	return payment.InjectVariables(payment.GetInstructions(cfg.PaymentType, cfg.Delivery), vars)
}
