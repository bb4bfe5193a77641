package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/angelmondragon/homeplate-backend/api/responses"
	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
	"github.com/angelmondragon/homeplate-backend/pkg/logger"
)

type vendorResolver interface {
	VendorForOwner(ctx context.Context, email string) (*models.Vendor, error)
}

// VendorContext loads the vendor profile owned by the signed-in user. Accounts without one are
// rejected with FORBIDDEN. Must run after Auth.
func VendorContext(resolver vendorResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromContext(r.Context())
			if sess == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			vendor, err := resolver.VendorForOwner(r.Context(), sess.Email)
			if err != nil {
				if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
					err = pkgerrors.New(pkgerrors.CodeForbidden, "vendor profile required")
				}
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithVendor(r.Context(), vendor)
			if logg != nil {
				ctx = logg.WithVendorID(ctx, strconv.Itoa(vendor.ID))
				ctx = logg.WithActorRole(ctx, "vendor")
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
