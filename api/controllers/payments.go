package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/terangalabs/kadoo-backend/api/responses"
	"github.com/terangalabs/kadoo-backend/api/validators"
	"github.com/terangalabs/kadoo-backend/internal/payments"
	pkgerrors "github.com/terangalabs/kadoo-backend/pkg/errors"
	"github.com/terangalabs/kadoo-backend/pkg/logger"
)

type initiatePaymentRequest struct {
	PotID     string `json:"pot_id" validate:"required,uuid"`
	Amount    int64  `json:"amount" validate:"required,min=1"`
	DonorName string `json:"donor_name" validate:"required,min=1,max=120"`
}

// InitiatePayment creates a pending donation and returns the provider's
// hosted checkout URL.
func InitiatePayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var req initiatePaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		potID, err := uuid.Parse(req.PotID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pot id"))
			return
		}

		result, err := svc.InitiatePayment(ctx, payments.InitiateParams{
			PotID:     potID,
			Amount:    req.Amount,
			DonorName: req.DonorName,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type refundRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// RefundDonation reverses a completed donation through the provider.
func RefundDonation(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		donationID, err := validators.UUIDParam(r, "donationId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req refundRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.RefundDonation(ctx, donationID, req.Reason); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"donation_id": donationID.String(), "status": "refunded"})
	}
}
