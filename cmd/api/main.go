package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/shipdesk-backend/api/routes"
	"github.com/angelmondragon/shipdesk-backend/internal/analytics"
	"github.com/angelmondragon/shipdesk-backend/internal/clients"
	"github.com/angelmondragon/shipdesk-backend/internal/courier"
	"github.com/angelmondragon/shipdesk-backend/internal/credits"
	"github.com/angelmondragon/shipdesk-backend/internal/inventory"
	"github.com/angelmondragon/shipdesk-backend/internal/orders"
	"github.com/angelmondragon/shipdesk-backend/internal/users"
	"github.com/angelmondragon/shipdesk-backend/internal/webhooks"
	"github.com/angelmondragon/shipdesk-backend/pkg/catalog"
	"github.com/angelmondragon/shipdesk-backend/pkg/config"
	delhivery "github.com/angelmondragon/shipdesk-backend/pkg/courier"
	"github.com/angelmondragon/shipdesk-backend/pkg/db"
	"github.com/angelmondragon/shipdesk-backend/pkg/instance"
	"github.com/angelmondragon/shipdesk-backend/pkg/logger"
	"github.com/angelmondragon/shipdesk-backend/pkg/metrics"
	"github.com/angelmondragon/shipdesk-backend/pkg/migrate"
	"github.com/angelmondragon/shipdesk-backend/pkg/outbox"
	"github.com/angelmondragon/shipdesk-backend/pkg/pubsub"
	"github.com/angelmondragon/shipdesk-backend/pkg/redis"
)

const shutdownTimeout = 20 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	tenants := clients.NewCachedProvider(clients.NewRepository(dbClient.DB()), cfg.ConfigCache.TTL)
	outboxRepo := outbox.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outboxRepo, logg)

	ledger, err := credits.NewLedger(credits.Options{
		DB:          dbClient.DB(),
		Tx:          dbClient,
		Settings:    tenants,
		Outbox:      outboxService,
		OutboxRepo:  outboxRepo,
		DefaultCost: cfg.Credits.DefaultOrderCost,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create credit ledger", err)
		os.Exit(1)
	}

	delhiveryClient, err := delhivery.NewClient(cfg.Courier.DelhiveryToken,
		delhivery.WithBaseURL(cfg.Courier.DelhiveryBaseURL),
		delhivery.WithTimeout(cfg.Courier.Timeout),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create delhivery client", err)
		os.Exit(1)
	}
	gateway, err := courier.NewDelhiveryGateway(delhiveryClient, tenants, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create courier gateway", err)
		os.Exit(1)
	}

	restorer, err := inventory.NewRestorer(
		catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout),
		inventory.NewCredentialRepository(dbClient.DB()),
		cfg.Catalog.Namespace,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory restorer", err)
		os.Exit(1)
	}

	dispatcher, err := webhooks.NewDispatcher(webhooks.NewRepository(dbClient.DB()), logg,
		webhooks.WithTimeout(cfg.Webhooks.Timeout),
		webhooks.WithUserAgent(cfg.Webhooks.UserAgent),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook dispatcher", err)
		os.Exit(1)
	}

	var recorder orders.AnalyticsRecorder = analytics.NoopRecorder{}
	var pubsubRecorder *analytics.PubSubRecorder
	if cfg.FeatureFlags.AnalyticsPubSub {
		pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		pubsubRecorder, err = analytics.NewPubSubRecorder(pubsubClient.AnalyticsPublisher(), logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create analytics recorder", err)
			os.Exit(1)
		}
		recorder = pubsubRecorder
	}

	ordersService, err := orders.NewService(orders.Options{
		Repo:       orders.NewRepository(dbClient.DB()),
		Tx:         dbClient,
		Outbox:     outboxService,
		Credits:    ledger,
		Tenants:    tenants,
		Users:      users.NewRepository(dbClient.DB()),
		Gateway:    gateway,
		Inventory:  restorer,
		Analytics:  recorder,
		Webhooks:   dispatcher,
		References: orders.NewReferenceGenerator(),
		Metrics:    metrics.NewOrderMetrics(registry),
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Idempotency: redisClient,
			Orders:      ordersService,
			Metrics:     registry,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}

	dispatcher.Wait()
	if pubsubRecorder != nil {
		pubsubRecorder.Wait()
	}
}
