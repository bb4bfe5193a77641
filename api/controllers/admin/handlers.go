package admin

import (
	"net/http"
	"strconv"

	"github.com/angelmondragon/homeplate-backend/api/middleware"
	"github.com/angelmondragon/homeplate-backend/api/responses"
	"github.com/angelmondragon/homeplate-backend/api/validators"
	"github.com/angelmondragon/homeplate-backend/internal/auth"
	"github.com/angelmondragon/homeplate-backend/internal/catalog"
	"github.com/angelmondragon/homeplate-backend/internal/users"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
	"github.com/angelmondragon/homeplate-backend/pkg/logger"
)

type verifyVendorRequest struct {
	Verified *bool `json:"verified"`
}

// ListAdmins returns admin accounts. The optional verified query narrows the list.
func ListAdmins(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}
		if _, err := requireAdmin(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		verified, err := validators.ParseQueryBool(r, "verified")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		admins, err := svc.ListAdmins(r.Context(), verified)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, admins)
	}
}

// VerifyAdmin approves a pending admin account. Only the main admin may do this.
func VerifyAdmin(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}
		sess, err := requireAdmin(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		targetID, err := validators.ParseIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.VerifyAdmin(r.Context(), sess.User(), targetID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// DeleteAdmin removes an admin account. Only the main admin may do this.
func DeleteAdmin(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}
		sess, err := requireAdmin(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		targetID, err := validators.ParseIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteAdmin(r.Context(), sess.User(), targetID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// VerifyVendor publishes (or hides) a vendor. An empty body verifies.
func VerifyVendor(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		if _, err := requireAdmin(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vendorID, err := validators.ParseIDParam(r, "vendorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body verifyVendorRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		verified := body.Verified == nil || *body.Verified

		vendor, err := svc.VerifyVendor(r.Context(), vendorID, verified)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			ctx := logg.WithVendorID(r.Context(), strconv.Itoa(vendorID))
			ctx = logg.WithField(ctx, "verified", verified)
			logg.Info(ctx, "admin.vendor_verification_changed")
		}
		responses.WriteSuccess(w, vendor)
	}
}

func requireAdmin(r *http.Request) (*auth.Session, error) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	if !sess.IsVerifiedAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}
	return sess, nil
}
