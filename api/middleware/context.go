package middleware

import (
	"context"
	"strconv"

	"github.com/angelmondragon/homeplate-backend/internal/auth"
	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
)

type contextKey string

const (
	ctxSession contextKey = "session"
	ctxVendor  contextKey = "vendor"
)

// SessionFromContext returns the signed-in account, or nil for anonymous requests.
func SessionFromContext(ctx context.Context) *auth.Session {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxSession).(*auth.Session); ok {
		return v
	}
	return nil
}

// UserIDFromContext returns the signed-in user id as a string, empty when anonymous.
func UserIDFromContext(ctx context.Context) string {
	if sess := SessionFromContext(ctx); sess != nil && sess.UserID > 0 {
		return strconv.Itoa(sess.UserID)
	}
	return ""
}

// VendorFromContext returns the vendor profile owned by the signed-in user.
func VendorFromContext(ctx context.Context) *models.Vendor {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxVendor).(*models.Vendor); ok {
		return v
	}
	return nil
}

// WithSession injects the session into the context.
func WithSession(ctx context.Context, sess *auth.Session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSession, sess)
}

// WithVendor injects the caller's vendor profile into the context for downstream handlers.
func WithVendor(ctx context.Context, vendor *models.Vendor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxVendor, vendor)
}
