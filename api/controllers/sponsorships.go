package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/terangalabs/kadoo-backend/api/middleware"
	"github.com/terangalabs/kadoo-backend/api/responses"
	"github.com/terangalabs/kadoo-backend/api/validators"
	"github.com/terangalabs/kadoo-backend/internal/sponsorships"
	pkgerrors "github.com/terangalabs/kadoo-backend/pkg/errors"
	"github.com/terangalabs/kadoo-backend/pkg/logger"
)

type inviteRequest struct {
	InvitedName     string `json:"invited_name" validate:"required,min=1,max=120"`
	InvitedPhone    string `json:"invited_phone" validate:"required,e164"`
	InvitedBirthday string `json:"invited_birthday" validate:"required"`
	InvitedUserID   string `json:"invited_user_id" validate:"omitempty,uuid"`
}

// SponsorshipInvite creates a pending sponsorship for the caller.
func SponsorshipInvite(svc sponsorships.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sponsorships service unavailable"))
			return
		}

		var req inviteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		birthday, err := time.Parse("2006-01-02", req.InvitedBirthday)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invited_birthday must be YYYY-MM-DD"))
			return
		}

		params := sponsorships.InviteParams{
			SponsorUserID:   middleware.UserIDFromContext(ctx),
			InvitedName:     req.InvitedName,
			InvitedPhone:    req.InvitedPhone,
			InvitedBirthday: birthday,
		}
		if req.InvitedUserID != "" {
			invitedID, parseErr := uuid.Parse(req.InvitedUserID)
			if parseErr != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid invited user id"))
				return
			}
			params.InvitedUserID = &invitedID
		}

		sponsorship, err := svc.Invite(ctx, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sponsorship)
	}
}

type respondRequest struct {
	Accept bool `json:"accept"`
}

// SponsorshipRespond records the invitee's accept or reject decision.
func SponsorshipRespond(svc sponsorships.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sponsorships service unavailable"))
			return
		}

		sponsorshipID, err := validators.UUIDParam(r, "sponsorshipId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req respondRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sponsorship, err := svc.Respond(ctx, sponsorshipID, req.Accept)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, sponsorship)
	}
}

// SponsorshipList returns the caller's sponsorships.
func SponsorshipList(svc sponsorships.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sponsorships service unavailable"))
			return
		}

		rows, err := svc.ListBySponsor(ctx, middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
