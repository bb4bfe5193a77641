package catalog

import (
	"math"
	"net/http"

	"github.com/angelmondragon/homeplate-backend/api/middleware"
	"github.com/angelmondragon/homeplate-backend/api/responses"
	"github.com/angelmondragon/homeplate-backend/api/validators"
	"github.com/angelmondragon/homeplate-backend/internal/reviews"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
	"github.com/angelmondragon/homeplate-backend/pkg/logger"
)

// SubmitReview stores the signed-in customer's review of a delivered dish.
func SubmitReview(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reviewer, dishID, ok := reviewTarget(w, r, svc, logg)
		if !ok {
			return
		}

		var body reviews.Input
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Submit(r.Context(), reviewer, dishID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ReviewEligibility reports whether the signed-in customer may review the dish for an order.
func ReviewEligibility(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reviewer, dishID, ok := reviewTarget(w, r, svc, logg)
		if !ok {
			return
		}

		orderID, err := validators.ParseQueryInt(r, "orderId", 0, 1, math.MaxInt32)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if orderID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "orderId is required").
				WithDetails(map[string]any{"field": "orderId"}))
			return
		}

		if err := svc.Eligible(r.Context(), reviewer, dishID, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"eligible": true})
	}
}

func reviewTarget(w http.ResponseWriter, r *http.Request, svc reviews.Service, logg *logger.Logger) (reviews.Reviewer, int, bool) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "review service unavailable"))
		return reviews.Reviewer{}, 0, false
	}
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
		return reviews.Reviewer{}, 0, false
	}
	dishID, err := validators.ParseIDParam(r, "dishId")
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return reviews.Reviewer{}, 0, false
	}
	return reviews.Reviewer{UserID: sess.UserID, Email: sess.Email, Name: sess.Username}, dishID, true
}
