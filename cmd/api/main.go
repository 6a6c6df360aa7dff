// Adaptive Payments Microservice
//
// This is the main entry point for the split-payment checkout service.
// It wires up all dependencies and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fitstack/adaptive-payments/config"
	"github.com/fitstack/adaptive-payments/internal/adapters/kafka"
	"github.com/fitstack/adaptive-payments/internal/adapters/memory"
	"github.com/fitstack/adaptive-payments/internal/adapters/paypal"
	"github.com/fitstack/adaptive-payments/internal/adapters/postgres"
	"github.com/fitstack/adaptive-payments/internal/adapters/redis"
	"github.com/fitstack/adaptive-payments/internal/adapters/storefront"
	"github.com/fitstack/adaptive-payments/internal/core/ledger"
	"github.com/fitstack/adaptive-payments/internal/core/ports"
	"github.com/fitstack/adaptive-payments/internal/core/service"
	"github.com/fitstack/adaptive-payments/internal/core/split"
	"github.com/fitstack/adaptive-payments/internal/handlers"
	"github.com/fitstack/adaptive-payments/internal/platform/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "adaptive-payments: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, err := logging.New(logging.Config{
		ServiceName: "adaptive-payments",
		Env:         cfg.Log.Env,
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		AddCaller:   cfg.Log.Env != "production",
	})
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	logger.Info("starting adaptive payments service",
		zap.String("port", cfg.Server.Port),
		zap.Bool("sandbox", cfg.PayPal.SandboxMode),
		zap.String("split_strategy", cfg.Checkout.SplitStrategy),
	)
	if cfg.Security.ServiceAPIKey == "" {
		logger.Warn("SERVICE_API_KEY not set, service authentication disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Wire up dependencies (manual dependency injection)
	//
	// Infrastructure Layer
	var (
		records     ports.TransactionRepository
		settlements ports.SettlementStore
	)
	if cfg.Postgres.DSN != "" {
		if err := postgres.Migrate(ctx, cfg.Postgres.DSN); err != nil {
			return err
		}
		pool, err := postgres.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		repo := postgres.NewRepository(pool)
		records, settlements = repo, repo
		logger.Info("using postgres ledger")
	} else {
		records, settlements = memory.NewTransactionRepository(), memory.NewSettlementStore()
		logger.Warn("POSTGRES_DSN not set, ledger and settlements kept in memory")
	}

	var sessions ports.SessionStore
	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		sessions = redis.NewSessionStore(client, logger)
		logger.Info("using redis session store", zap.String("addr", cfg.Redis.Addr))
	} else {
		sessions = memory.NewSessionStore()
		logger.Warn("REDIS_ADDR not set, checkout sessions kept in memory")
	}

	var publisher ports.SettlementPublisher = memory.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := kafka.NewSettlementPublisher(logger, cfg.Kafka.Brokers, cfg.Kafka.SettlementTopic)
		defer kp.Close()
		publisher = kp
	}

	txLedger := ledger.New(records, logger)
	paypalCfg := paypal.Config{
		Username:      cfg.PayPal.Username,
		Password:      cfg.PayPal.Password,
		Signature:     cfg.PayPal.Signature,
		ApplicationID: cfg.PayPal.ApplicationID,
		Sandbox:       cfg.PayPal.SandboxMode,
		BaseURL:       cfg.PayPal.BaseURL,
		NVPURL:        cfg.PayPal.NVPURL,
	}
	httpClient := paypal.NewClient(cfg.PayPal.Timeout)
	gateway := paypal.NewAdaptiveGateway(paypalCfg, httpClient, txLedger, logger)
	verifier := paypal.NewAddressVerifier(paypalCfg, httpClient, txLedger, logger)

	backend := storefront.NewClient(cfg.Storefront.BaseURL, cfg.Storefront.APIKey, cfg.Storefront.Timeout, logger)

	splitCfg := split.DefaultConfig()
	splitCfg.BankFeePosition = cfg.Checkout.BankFeePosition
	splitCfg.InsuranceFeePosition = cfg.Checkout.InsuranceFeePosition

	// Service Layer
	checkoutService := service.NewCheckoutService(policyFromConfig(cfg), service.Dependencies{
		Gateway:     gateway,
		Verifier:    verifier,
		History:     txLedger,
		Sessions:    sessions,
		Baskets:     backend, // implements ports.BasketRepository
		Shipping:    backend, // implements ports.ShippingRepositoryProvider
		Partners:    backend, // implements ports.PartnerSettingsProvider
		Settlements: settlements,
		Publisher:   publisher,
		Calculator:  split.NewCalculator(splitCfg),
		Logger:      logger,
	})

	// API Layer
	handler := handlers.NewCheckoutHandler(checkoutService, logger)
	router := handlers.SetupRouter(handler, cfg.Server.GinMode, cfg.Security.ServiceAPIKey, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func policyFromConfig(cfg *config.Config) service.Policy {
	policy := service.DefaultPolicy()
	policy.Split = service.SplitStrategy(cfg.Checkout.SplitStrategy)
	policy.PayerValidation = service.PayerValidation(cfg.Checkout.PayerValidation)
	policy.Currency = cfg.PayPal.Currency
	policy.PlatformEmail = cfg.PayPal.PlatformEmail
	policy.FeesPayer = cfg.PayPal.FeesPayer
	policy.IPNURL = cfg.PayPal.IPNURL
	policy.CallbackBaseURL = cfg.Checkout.CallbackBaseURL
	policy.CallbackHTTPS = cfg.Checkout.CallbackHTTPS
	policy.Itemize = cfg.PayPal.Itemize
	policy.SessionTTL = cfg.Checkout.SessionTTL
	return policy
}
