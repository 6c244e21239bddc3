package controllers

import (
	"net/http"

	"github.com/terangalabs/kadoo-backend/api/middleware"
	"github.com/terangalabs/kadoo-backend/api/responses"
	"github.com/terangalabs/kadoo-backend/api/validators"
	"github.com/terangalabs/kadoo-backend/internal/rewards"
	pkgerrors "github.com/terangalabs/kadoo-backend/pkg/errors"
	"github.com/terangalabs/kadoo-backend/pkg/logger"
)

// PointsStatus returns the caller's point balances, level, and recent ledger
// entries.
func PointsStatus(svc rewards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rewards service unavailable"))
			return
		}

		status, err := svc.GetUserPointsStatus(ctx, middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

type convertPointsRequest struct {
	Points int `json:"points" validate:"required,min=1"`
}

// ConvertPoints quotes the CFA value of the caller's points and spends them.
func ConvertPoints(svc rewards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rewards service unavailable"))
			return
		}

		var req convertPointsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		amount, err := svc.ConvertPointsToCFA(ctx, middleware.UserIDFromContext(ctx), req.Points)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"points":     req.Points,
			"amount_cfa": amount,
			"currency":   "XOF",
		})
	}
}

type applyCreditRequest struct {
	Points int `json:"points" validate:"min=0"`
}

// ApplyCredit converts points into a credit on the caller's nearest upcoming
// pot. A zero points body applies only previously carried-over credit.
func ApplyCredit(svc rewards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rewards service unavailable"))
			return
		}

		var req applyCreditRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.ApplyCreditToPot(ctx, middleware.UserIDFromContext(ctx), req.Points)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
