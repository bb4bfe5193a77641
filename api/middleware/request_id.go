package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/homeplate-backend/pkg/content"
	"github.com/angelmondragon/homeplate-backend/pkg/logger"
)

const (
	requestIDHeader = content.RequestIDHeader
	maxRequestIDLen = 64
)

// RequestID echoes a client-supplied id or mints one, tags the request logger with
// it and forwards it on every content backend call made for this request.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if !validRequestID(reqID) {
				reqID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, reqID)

			ctx := content.WithRequestID(r.Context(), reqID)
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validRequestID keeps client ids to a short token so they are safe to log and forward.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
