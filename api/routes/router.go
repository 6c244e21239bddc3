package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terangalabs/kadoo-backend/api/controllers"
	webhookcontrollers "github.com/terangalabs/kadoo-backend/api/controllers/webhooks"
	"github.com/terangalabs/kadoo-backend/api/middleware"
	"github.com/terangalabs/kadoo-backend/internal/notifications"
	"github.com/terangalabs/kadoo-backend/internal/payments"
	"github.com/terangalabs/kadoo-backend/internal/pots"
	"github.com/terangalabs/kadoo-backend/internal/rewards"
	"github.com/terangalabs/kadoo-backend/internal/sponsorships"
	"github.com/terangalabs/kadoo-backend/internal/vouchers"
	"github.com/terangalabs/kadoo-backend/internal/webhooks"
	"github.com/terangalabs/kadoo-backend/pkg/config"
	"github.com/terangalabs/kadoo-backend/pkg/db"
	"github.com/terangalabs/kadoo-backend/pkg/logger"
	"github.com/terangalabs/kadoo-backend/pkg/metrics"
	"github.com/terangalabs/kadoo-backend/pkg/paydunya"
	"github.com/terangalabs/kadoo-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            db.Pinger
	Redis         *redis.Client
	PayDunya      *paydunya.Client
	WebhookGuard  *webhooks.ReplayGuard
	WebhookMetric *metrics.WebhookMetrics

	Payments      payments.Service
	Rewards       rewards.Service
	Sponsorships  sponsorships.Service
	Pots          pots.Service
	Vouchers      vouchers.Service
	Notifications notifications.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	// Provider callbacks authenticate by signature, not caller identity.
	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/paydunya", webhookcontrollers.PayDunyaWebhook(deps.Payments, deps.PayDunya, deps.WebhookGuard, deps.WebhookMetric, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity(logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/payments", func(r chi.Router) {
			r.Post("/initiate", controllers.InitiatePayment(deps.Payments, logg))
			r.Post("/{donationId}/refund", controllers.RefundDonation(deps.Payments, logg))
		})

		r.Route("/points", func(r chi.Router) {
			r.Get("/", controllers.PointsStatus(deps.Rewards, logg))
			r.Post("/convert", controllers.ConvertPoints(deps.Rewards, logg))
			r.Post("/apply-credit", controllers.ApplyCredit(deps.Rewards, logg))
		})

		r.Route("/sponsorships", func(r chi.Router) {
			r.Get("/", controllers.SponsorshipList(deps.Sponsorships, logg))
			r.Post("/", controllers.SponsorshipInvite(deps.Sponsorships, logg))
			r.Post("/{sponsorshipId}/respond", controllers.SponsorshipRespond(deps.Sponsorships, logg))
		})

		r.Route("/pots", func(r chi.Router) {
			r.Get("/public", controllers.PublicPots(deps.Pots, logg))
			r.Get("/mine", controllers.MyPots(deps.Pots, logg))
			r.Get("/{potId}", controllers.PotDetail(deps.Pots, logg))
			r.Get("/{potId}/vouchers", controllers.PotVouchers(deps.Vouchers, logg))
		})

		r.Post("/vouchers/redeem", controllers.VoucherRedeem(deps.Vouchers, logg))

		r.Get("/notifications", controllers.ListNotifications(deps.Notifications, logg))
	})

	return r
}
