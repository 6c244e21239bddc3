package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/terangalabs/kadoo-backend/api/responses"
	pkgerrors "github.com/terangalabs/kadoo-backend/pkg/errors"
	"github.com/terangalabs/kadoo-backend/pkg/logger"
	"github.com/terangalabs/kadoo-backend/pkg/metrics"
	"github.com/terangalabs/kadoo-backend/pkg/paydunya"
)

const signatureHeader = "Paydunya-Signature"

type PaymentWebhookService interface {
	ProcessWebhook(ctx context.Context, event paydunya.WebhookEvent) error
}

type webhookSecretSource interface {
	WebhookSecret() string
}

type webhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

// PayDunyaWebhook receives payment status notifications. Verification is
// fail-closed: a missing or bad signature rejects the delivery before any
// state is touched. The redis guard short-circuits exact redeliveries; the
// service's own terminal-state check covers everything the guard misses.
func PayDunyaWebhook(svc PaymentWebhookService, secrets webhookSecretSource, guard webhookGuard, wm *metrics.WebhookMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || secrets == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		if !paydunya.VerifySignature(payload, secrets.WebhookSecret(), r.Header.Get(signatureHeader)) {
			if wm != nil {
				wm.IncRejected()
			}
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInvalidSignature, "webhook signature invalid"))
			return
		}

		var event paydunya.WebhookEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode webhook payload"))
			return
		}
		if event.ID == "" || event.Reference == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "event id and reference required"))
			return
		}

		if guard != nil {
			replayed, guardErr := guard.CheckAndMark(ctx, event.ID)
			if guardErr != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, guardErr, "check webhook replay"))
				return
			}
			if replayed {
				if wm != nil {
					wm.IncReplayed()
				}
				responses.WriteSuccess(w, nil)
				return
			}
		}

		if err := svc.ProcessWebhook(ctx, event); err != nil {
			// Unmark so the provider's retry gets a clean attempt.
			if guard != nil {
				_ = guard.Delete(ctx, event.ID)
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if wm != nil {
			wm.IncProcessed(string(event.Status))
		}
		responses.WriteSuccess(w, nil)
	}
}
