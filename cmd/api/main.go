package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/terangalabs/kadoo-backend/api/routes"
	"github.com/terangalabs/kadoo-backend/internal/notifications"
	"github.com/terangalabs/kadoo-backend/internal/payments"
	"github.com/terangalabs/kadoo-backend/internal/pots"
	"github.com/terangalabs/kadoo-backend/internal/rewards"
	"github.com/terangalabs/kadoo-backend/internal/sponsorships"
	"github.com/terangalabs/kadoo-backend/internal/store"
	"github.com/terangalabs/kadoo-backend/internal/vouchers"
	"github.com/terangalabs/kadoo-backend/internal/webhooks"
	"github.com/terangalabs/kadoo-backend/pkg/config"
	"github.com/terangalabs/kadoo-backend/pkg/db"
	"github.com/terangalabs/kadoo-backend/pkg/logger"
	"github.com/terangalabs/kadoo-backend/pkg/metrics"
	"github.com/terangalabs/kadoo-backend/pkg/migrate"
	"github.com/terangalabs/kadoo-backend/pkg/paydunya"
	"github.com/terangalabs/kadoo-backend/pkg/redis"
)

const webhookGuardTTL = 7 * 24 * time.Hour

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

	paydunyaClient, err := paydunya.NewClient(context.Background(), cfg.PayDunya, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment client", err)
		os.Exit(1)
	}

	webhookGuard, err := webhooks.NewReplayGuard(redisClient, webhookGuardTTL, "paydunya")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook replay guard", err)
		os.Exit(1)
	}

	stores := store.New(dbClient.DB())

	notificationsService, err := notifications.NewService(notifications.Params{
		Notifications: stores.Notifications,
		Logger:        logg,
	})
	requireService(logg, "notifications", err)

	rewardsService, err := rewards.NewService(rewards.Params{
		Transactions: stores.PointTransactions,
		Aggregates:   stores.UserPoints,
		Pots:         stores.Pots,
		Donations:    stores.Donations,
		Rules:        cfg.Rewards,
		Logger:       logg,
	})
	requireService(logg, "rewards", err)

	paymentsService, err := payments.NewService(payments.Params{
		Donations:     stores.Donations,
		Pots:          stores.Pots,
		Sponsorships:  stores.Sponsorships,
		Rewards:       rewardsService,
		Notifications: notificationsService,
		Provider:      paydunyaClient,
		FirstBonus:    cfg.Rewards.FirstDonationBonus,
		PendingGrace:  cfg.Scheduler.PendingGrace,
		Logger:        logg,
	})
	requireService(logg, "payments", err)

	sponsorshipsService, err := sponsorships.NewService(sponsorships.Params{
		Sponsorships:  stores.Sponsorships,
		Notifications: notificationsService,
		Logger:        logg,
	})
	requireService(logg, "sponsorships", err)

	potsService, err := pots.NewService(pots.Params{
		Pots:      stores.Pots,
		Donations: stores.Donations,
		Logger:    logg,
	})
	requireService(logg, "pots", err)

	vouchersService, err := vouchers.NewService(vouchers.Params{
		Vouchers:      stores.Vouchers,
		Invitations:   stores.Invitations,
		Pots:          stores.Pots,
		Notifications: notificationsService,
		Logger:        logg,
	})
	requireService(logg, "vouchers", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			PayDunya:      paydunyaClient,
			WebhookGuard:  webhookGuard,
			WebhookMetric: metrics.NewWebhookMetrics(prometheus.DefaultRegisterer),
			Payments:      paymentsService,
			Rewards:       rewardsService,
			Sponsorships:  sponsorshipsService,
			Pots:          potsService,
			Vouchers:      vouchersService,
			Notifications: notificationsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}
