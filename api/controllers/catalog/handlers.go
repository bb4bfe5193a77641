package catalog

import (
	"math"
	"net/http"

	"github.com/angelmondragon/homeplate-backend/api/responses"
	"github.com/angelmondragon/homeplate-backend/api/validators"
	internalcatalog "github.com/angelmondragon/homeplate-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
	"github.com/angelmondragon/homeplate-backend/pkg/logger"
	"github.com/angelmondragon/homeplate-backend/pkg/pagination"
)

// ListVendors returns verified vendors. Unverified vendors never appear on the public surface.
func ListVendors(svc internalcatalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		topRated, err := validators.ParseQueryBool(r, "topRated")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		filter := internalcatalog.VendorFilter{
			VerifiedOnly: true,
			Cuisine:      validators.SanitizeString(query.Get("cuisine"), 80),
			City:         validators.SanitizeString(query.Get("city"), 80),
			Zipcode:      validators.SanitizeString(query.Get("zipcode"), 20),
			TopRated:     topRated != nil && *topRated,
			Page:         pagination.FromQuery(query),
		}

		vendors, page, err := svc.ListVendors(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, vendors, page)
	}
}

// VendorDetail returns a vendor with the dishes it currently offers.
func VendorDetail(svc internalcatalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		vendorID, err := validators.ParseIDParam(r, "vendorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetVendorDetail(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// ListDishes returns dishes. Only available dishes are listed unless available=false is passed.
func ListDishes(svc internalcatalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		vendorID, err := validators.ParseQueryInt(r, "vendorId", 0, 0, math.MaxInt32)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		available, err := validators.ParseQueryBool(r, "available")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		topRated, err := validators.ParseQueryBool(r, "topRated")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		filter := internalcatalog.DishFilter{
			VendorID:      vendorID,
			Category:      validators.SanitizeString(query.Get("category"), 80),
			AvailableOnly: available == nil || *available,
			TopRated:      topRated != nil && *topRated,
			Search:        validators.SanitizeString(query.Get("q"), 120),
			Page:          pagination.FromQuery(query),
		}

		dishes, page, err := svc.ListDishes(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, dishes, page)
	}
}

// DishDetail returns one dish with its reviews.
func DishDetail(svc internalcatalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		dishID, err := validators.ParseIDParam(r, "dishId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dish, err := svc.GetDish(r.Context(), dishID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dish)
	}
}
