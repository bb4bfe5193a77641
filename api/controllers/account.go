package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/homeplate-backend/api/middleware"
	"github.com/angelmondragon/homeplate-backend/api/responses"
	"github.com/angelmondragon/homeplate-backend/api/validators"
	"github.com/angelmondragon/homeplate-backend/internal/auth"
	"github.com/angelmondragon/homeplate-backend/internal/users"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
	"github.com/angelmondragon/homeplate-backend/pkg/logger"
)

type refundDetailsRequest struct {
	RefundDetails string `json:"refundDetails" validate:"max=1000"`
}

// ListAddresses returns the signed-in user's saved delivery addresses.
func ListAddresses(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := accountSession(w, r, svc, logg)
		if !ok {
			return
		}
		addresses, err := svc.ListAddresses(r.Context(), sess.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, addresses)
	}
}

// AddAddress saves a delivery address and returns the updated list.
func AddAddress(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := accountSession(w, r, svc, logg)
		if !ok {
			return
		}
		var body users.AddressInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		addresses, err := svc.AddAddress(r.Context(), sess.UserID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, addresses)
	}
}

// DeleteAddress removes one saved address and returns the remaining list.
func DeleteAddress(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := accountSession(w, r, svc, logg)
		if !ok {
			return
		}
		addressID := strings.TrimSpace(chi.URLParam(r, "addressId"))
		if addressID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "address id required"))
			return
		}
		addresses, err := svc.DeleteAddress(r.Context(), sess.UserID, addressID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, addresses)
	}
}

// UpdateRefundDetails stores where refunds for cancelled paid orders should go.
func UpdateRefundDetails(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := accountSession(w, r, svc, logg)
		if !ok {
			return
		}
		var body refundDetailsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.UpdateRefundDetails(r.Context(), sess.UserID, body.RefundDetails)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

func accountSession(w http.ResponseWriter, r *http.Request, svc users.Service, logg *logger.Logger) (*auth.Session, bool) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
		return nil, false
	}
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
		return nil, false
	}
	return sess, true
}
