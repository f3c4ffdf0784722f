package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nextgen-storefront/internal/backend"
	"nextgen-storefront/internal/cart"
	"nextgen-storefront/internal/checkout"
	"nextgen-storefront/internal/config"
	"nextgen-storefront/internal/event"
	"nextgen-storefront/internal/logger"
	"nextgen-storefront/internal/metrics"
	"nextgen-storefront/internal/middleware"
	"nextgen-storefront/internal/order"
	"nextgen-storefront/internal/pricing"
	"nextgen-storefront/internal/product"
	"nextgen-storefront/internal/settings"
	"nextgen-storefront/internal/storage"
	"nextgen-storefront/internal/timer"
	"nextgen-storefront/internal/transport"
	"nextgen-storefront/internal/user"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Seams for tests.
var (
	openStoreFunc   = storage.Open
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.L().Error("server exited with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

type app struct {
	handler http.Handler
	tracker *timer.Tracker
	limiter *middleware.Limiter
	close   func()
}

// newApp wires every service against cfg. close releases what newApp opened.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store, closeStore, err := openStoreFunc(ctx, cfg)
	if err != nil {
		return nil, err
	}

	engine, err := pricing.FromSettings(cfg.CurrencyRates, cfg.DeliveryFee)
	if err != nil {
		closeStore()
		return nil, err
	}

	var (
		publisher    event.Publisher = event.NopPublisher{}
		closeBrokers                 = func() error { return nil }
	)
	if len(cfg.KafkaBrokers) > 0 {
		kp := event.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		publisher, closeBrokers = kp, kp.Close
		logger.L().Info("publishing order events to kafka",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic),
		)
	}

	client := backend.NewClient(cfg.BackendURL, cfg.HTTPTimeout)
	counters := metrics.NewCounters()

	products := product.NewService(product.NewRepository(client))
	carts := cart.NewService(cart.NewRepository(store), counters)
	orders := order.NewService(order.NewRepository(client), publisher, counters)

	tracker := timer.NewTracker(store, timer.BackendNotifier(client), timer.WithCounters(counters))
	tracker.Subscribe(func(a timer.Arrival) {
		orders.Arrived(ctx, "", a.OrderID)
	})

	limiter := middleware.NewLimiter(cfg.InternalKey)

	handler := transport.NewRouter(transport.Services{
		Products: products,
		Carts:    carts,
		Checkout: checkout.NewService(carts, orders, engine),
		Orders:   orders,
		Users:    user.NewService(user.NewRepository(client), carts),
		Settings: settings.NewService(store),
		Timers:   tracker,
		Counters: counters,
	}, transport.Options{
		Secret:         []byte(cfg.SecretKey),
		AllowedOrigins: cfg.AllowedOrigins,
		Limiter:        limiter,
		RequestTimeout: cfg.HTTPTimeout + 5*time.Second,
		SecureCookies:  cfg.AppEnv == "production",
	})

	return &app{
		handler: handler,
		tracker: tracker,
		limiter: limiter,
		close: func() {
			tracker.Stop()
			if err := closeBrokers(); err != nil {
				logger.L().Warn("failed to close kafka writer", zap.Error(err))
			}
			if err := closeStore(); err != nil {
				logger.L().Warn("failed to close storage", zap.Error(err))
			}
		},
	}, nil
}

func run(ctx context.Context) error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv, cfg.LogLevel)
	defer logger.Sync()

	decimal.MarshalJSONWithoutQuotes = true

	if err := cfg.Validate(); err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	bgCtx, cancelBg := context.WithCancel(ctx)
	defer cancelBg()
	go a.tracker.Run(bgCtx)
	go a.limiter.Run(bgCtx)

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      a.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.HTTPTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("storefront listening",
			zap.String("addr", srv.Addr),
			zap.String("backend", cfg.BackendURL),
			zap.String("storage", cfg.StorageDriver),
		)
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.L().Info("server exited")
	return nil
}
