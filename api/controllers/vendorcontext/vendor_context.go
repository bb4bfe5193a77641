package vendorcontext

import (
	"net/http"

	"github.com/angelmondragon/homeplate-backend/api/middleware"
	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
)

// ResolveVendor returns the vendor profile loaded by the vendor middleware and enforces vendor access.
func ResolveVendor(r *http.Request) (*models.Vendor, error) {
	ctx := r.Context()
	if middleware.SessionFromContext(ctx) == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	vendor := middleware.VendorFromContext(ctx)
	if vendor == nil || vendor.ID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor access required")
	}
	return vendor, nil
}
