package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/homeplate-backend/api/responses"
	"github.com/angelmondragon/homeplate-backend/api/validators"
	"github.com/angelmondragon/homeplate-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
	"github.com/angelmondragon/homeplate-backend/pkg/logger"
)

type sessionResolver interface {
	Resolve(ctx context.Context, token string) (*auth.Session, error)
}

// Auth resolves the session token and rejects anonymous requests. The token is read from the
// Authorization header first, then from the named cookies in order.
func Auth(resolver sessionResolver, logg *logger.Logger, cookieNames ...string) func(http.Handler) http.Handler {
	return sessionMiddleware(resolver, logg, true, cookieNames)
}

// OptionalAuth attaches the session when a token is present and lets anonymous requests through.
func OptionalAuth(resolver sessionResolver, logg *logger.Logger, cookieNames ...string) func(http.Handler) http.Handler {
	return sessionMiddleware(resolver, logg, false, cookieNames)
}

func sessionMiddleware(resolver sessionResolver, logg *logger.Logger, required bool, cookieNames []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := sessionToken(r, cookieNames)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid credentials"))
				return
			}
			if token == "" {
				if required {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			sess, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithSession(r.Context(), sess)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    strconv.Itoa(sess.UserID),
					"actor_role": actorRole(sess),
				})
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionToken(r *http.Request, cookieNames []string) (string, error) {
	if raw := strings.TrimSpace(r.Header.Get("Authorization")); raw != "" {
		return validators.BearerToken(raw)
	}
	for _, name := range cookieNames {
		cookie, err := r.Cookie(name)
		if err != nil {
			continue
		}
		if value := strings.TrimSpace(cookie.Value); value != "" {
			return value, nil
		}
	}
	return "", nil
}

func actorRole(sess *auth.Session) string {
	if sess.IsVerifiedAdmin() {
		return "admin"
	}
	return "customer"
}
