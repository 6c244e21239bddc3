package controllers

import (
	"net/http"

	"github.com/terangalabs/kadoo-backend/api/middleware"
	"github.com/terangalabs/kadoo-backend/api/responses"
	"github.com/terangalabs/kadoo-backend/api/validators"
	"github.com/terangalabs/kadoo-backend/internal/notifications"
	pkgerrors "github.com/terangalabs/kadoo-backend/pkg/errors"
	"github.com/terangalabs/kadoo-backend/pkg/logger"
)

// ListNotifications returns the caller's most recent notifications.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		limit, err := validators.QueryLimit(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.List(ctx, middleware.UserIDFromContext(ctx), limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
