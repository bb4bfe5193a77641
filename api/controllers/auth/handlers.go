package auth

import (
	"net/http"

	"github.com/angelmondragon/homeplate-backend/api/middleware"
	"github.com/angelmondragon/homeplate-backend/api/responses"
	"github.com/angelmondragon/homeplate-backend/api/validators"
	internalauth "github.com/angelmondragon/homeplate-backend/internal/auth"
	"github.com/angelmondragon/homeplate-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
	"github.com/angelmondragon/homeplate-backend/pkg/logger"
)

// AuthRegister creates a customer account and signs it in.
func AuthRegister(svc internalauth.Service, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body internalauth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeSession(w, r, cfg, CustomerCookies, result, http.StatusCreated, logg)
	}
}

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc internalauth.Service, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body internalauth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeSession(w, r, cfg, CustomerCookies, result, http.StatusOK, logg)
	}
}

// AdminAuthLogin signs in verified admins and sets the admin cookies.
func AdminAuthLogin(svc internalauth.Service, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body internalauth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AdminLogin(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeSession(w, r, cfg, AdminCookies, result, http.StatusOK, logg)
	}
}

// AuthLogout drops the cached identity and clears every session cookie. It succeeds for
// anonymous callers so stale cookies can always be cleared.
func AuthLogout(svc internalauth.Service, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		if sess := middleware.SessionFromContext(r.Context()); sess != nil {
			if err := svc.Logout(r.Context(), sess.UserID); err != nil && logg != nil {
				logg.Warn(r.Context(), "auth.logout_cache_clear_failed: "+err.Error())
			}
		}

		clearSessionCookies(w, cfg, CustomerCookies)
		clearSessionCookies(w, cfg, AdminCookies)
		responses.WriteNoContent(w)
	}
}

// AuthMe returns the signed-in session.
func AuthMe(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.SessionFromContext(r.Context())
		if sess == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		responses.WriteSuccess(w, sess)
	}
}

func writeSession(w http.ResponseWriter, r *http.Request, cfg config.SessionConfig, set CookieSet, result *internalauth.LoginResponse, status int, logg *logger.Logger) {
	sess := result.Session
	if sess == nil && result.User != nil {
		sess = internalauth.NewSession(*result.User, result.Token)
	}
	if sess == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "auth response missing user"))
		return
	}
	if err := setSessionCookies(w, cfg, set, sess); err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "set session cookies"))
		return
	}
	responses.WriteSuccessStatus(w, status, result)
}
