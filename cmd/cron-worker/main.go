package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/terangalabs/kadoo-backend/internal/cron"
	"github.com/terangalabs/kadoo-backend/internal/notifications"
	"github.com/terangalabs/kadoo-backend/internal/payments"
	"github.com/terangalabs/kadoo-backend/internal/rewards"
	"github.com/terangalabs/kadoo-backend/internal/store"
	"github.com/terangalabs/kadoo-backend/internal/vouchers"
	"github.com/terangalabs/kadoo-backend/pkg/config"
	"github.com/terangalabs/kadoo-backend/pkg/db"
	"github.com/terangalabs/kadoo-backend/pkg/logger"
	"github.com/terangalabs/kadoo-backend/pkg/metrics"
	"github.com/terangalabs/kadoo-backend/pkg/migrate"
	"github.com/terangalabs/kadoo-backend/pkg/paydunya"
	"github.com/terangalabs/kadoo-backend/pkg/redis"
)

const lockKeyFormat = "cron-worker:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	vouchersService, err := vouchers.NewService(vouchers.Params{
		Vouchers:      stores.Vouchers,
		Invitations:   stores.Invitations,
		Pots:          stores.Pots,
		Notifications: notificationsService,
		Logger:        logg,
	})
	requireService(logg, "vouchers", err)

	registry := cron.NewRegistry()
	registerJob := func(name string, job cron.Job, err error) {
		if err != nil {
			logg.Error(context.Background(), "failed to create "+name+" job", err)
			os.Exit(1)
		}
		registry.Register(job)
	}

	openingJob, err := cron.NewPotOpeningJob(cron.PotOpeningJobParams{
		Logger:           logg,
		Sponsorships:     stores.Sponsorships,
		Pots:             stores.Pots,
		Rewards:          rewardsService,
		Notifications:    notificationsService,
		OpenOffsetDays:   cfg.Scheduler.OpenOffsetDays,
		AdultAge:         cfg.Scheduler.AdultAge,
		DefaultPotTarget: cfg.Scheduler.DefaultPotTarget,
		PotOpenedBonus:   cfg.Rewards.PotOpenedBonus,
	})
	registerJob("pot-opening", openingJob, err)

	reminderJob, err := cron.NewReminderJob(cron.ReminderJobParams{
		Logger:        logg,
		Pots:          stores.Pots,
		Notifications: notificationsService,
		Offsets:       cfg.Scheduler.ReminderOffsets,
	})
	registerJob("birthday-reminders", reminderJob, err)

	closingJob, err := cron.NewClosingJob(cron.ClosingJobParams{
		Logger:        logg,
		Pots:          stores.Pots,
		Notifications: notificationsService,
		Vouchers:      vouchersService,
	})
	registerJob("pot-closing", closingJob, err)

	reconcileJob, err := cron.NewReconcileJob(cron.ReconcileJobParams{
		Logger:   logg,
		Payments: paymentsService,
	})
	registerJob("payment-reconcile", reconcileJob, err)

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockKey(cfg.App.Env)), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Scheduler.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
