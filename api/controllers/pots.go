package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/terangalabs/kadoo-backend/api/middleware"
	"github.com/terangalabs/kadoo-backend/api/responses"
	"github.com/terangalabs/kadoo-backend/api/validators"
	"github.com/terangalabs/kadoo-backend/internal/pots"
	pkgerrors "github.com/terangalabs/kadoo-backend/pkg/errors"
	"github.com/terangalabs/kadoo-backend/pkg/logger"
)

// PotDetail returns one pot with its progress summary.
func PotDetail(svc pots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pots service unavailable"))
			return
		}

		potID, err := validators.UUIDParam(r, "potId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		summary, err := svc.Get(ctx, potID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// MyPots lists the caller's pots.
func MyPots(svc pots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pots service unavailable"))
			return
		}

		rows, err := svc.ListByUser(ctx, middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// PublicPots lists active public pots for the discovery feed.
func PublicPots(svc pots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pots service unavailable"))
			return
		}

		limit, err := validators.QueryLimit(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		offset := 0
		if raw := strings.TrimSpace(r.URL.Query().Get("offset")); raw != "" {
			value, parseErr := strconv.Atoi(raw)
			if parseErr != nil || value < 0 {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "offset must be a non-negative integer"))
				return
			}
			offset = value
		}

		rows, err := svc.ListPublic(ctx, limit, offset)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
