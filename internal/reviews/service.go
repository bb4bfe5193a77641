package reviews

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/homeplate-backend/pkg/content"
	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	"github.com/angelmondragon/homeplate-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
	"github.com/angelmondragon/homeplate-backend/pkg/logger"
	"github.com/angelmondragon/homeplate-backend/pkg/pagination"
)

const maxReviewText = 2000

type contentStore interface {
	List(ctx context.Context, collection string, q *content.Query, dest any) (*content.Pagination, error)
	Get(ctx context.Context, collection string, id int, q *content.Query, dest any) error
	Update(ctx context.Context, collection string, id int, payload any, dest any) error
}

type locker interface {
	WithLock(ctx context.Context, fn func(ctx context.Context) error, parts ...string) error
}

// Reviewer is the signed-in customer writing a review.
type Reviewer struct {
	UserID int
	Email  string
	Name   string
}

// Input is a review submission.
type Input struct {
	OrderID int    `json:"orderId" validate:"required,gt=0"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Text    string `json:"text" validate:"max=2000"`
}

// Result reports the ratings after the review was stored.
type Result struct {
	Review       models.Review   `json:"review"`
	DishRating   decimal.Decimal `json:"dishRating"`
	VendorRating decimal.Decimal `json:"vendorRating"`
	Warnings     []string        `json:"warnings,omitempty"`
}

// Service defines review submission.
type Service interface {
	Submit(ctx context.Context, reviewer Reviewer, dishID int, input Input) (*Result, error)
	Eligible(ctx context.Context, reviewer Reviewer, dishID, orderID int) error
}

type service struct {
	store contentStore
	locks locker
	logg  *logger.Logger
}

// NewService builds the review service.
func NewService(store contentStore, locks locker, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("content store required")
	}
	if locks == nil {
		return nil, fmt.Errorf("locker required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{store: store, locks: locks, logg: logg}, nil
}

// Eligible checks that the order was delivered to the reviewer, includes the dish, and that the
// reviewer has not reviewed the dish yet.
func (s *service) Eligible(ctx context.Context, reviewer Reviewer, dishID, orderID int) error {
	if _, err := s.deliveredOrder(ctx, reviewer, dishID, orderID); err != nil {
		return err
	}
	var dish models.Dish
	if err := s.store.Get(ctx, content.CollectionDishes, dishID, content.NewQuery().Populate(), &dish); err != nil {
		return err
	}
	if dish.HasReviewFrom(reviewer.Email) {
		return errAlreadyReviewed(dishID)
	}
	return nil
}

func (s *service) Submit(ctx context.Context, reviewer Reviewer, dishID int, input Input) (*Result, error) {
	if err := validateInput(reviewer, dishID, input); err != nil {
		return nil, err
	}
	if _, err := s.deliveredOrder(ctx, reviewer, dishID, input.OrderID); err != nil {
		return nil, err
	}

	review := models.Review{
		Name:    strings.TrimSpace(reviewer.Name),
		Email:   strings.TrimSpace(reviewer.Email),
		Rating:  input.Rating,
		Text:    strings.TrimSpace(input.Text),
		OrderID: input.OrderID,
	}

	var dish models.Dish
	err := s.locks.WithLock(ctx, func(ctx context.Context) error {
		if err := s.store.Get(ctx, content.CollectionDishes, dishID, content.NewQuery().Populate(), &dish); err != nil {
			return err
		}
		if dish.HasReviewFrom(reviewer.Email) {
			return errAlreadyReviewed(dishID)
		}
		rating := NextDishRating(dish.Rating, len(dish.Reviews), review.Rating)
		reviews := append(append([]models.Review{}, dish.Reviews...), review)
		if err := s.store.Update(ctx, content.CollectionDishes, dish.ID, map[string]any{
			"reviews": reviews,
			"rating":  rating,
		}, nil); err != nil {
			return err
		}
		dish.Reviews = reviews
		dish.Rating = rating
		return nil
	}, "dish", strconv.Itoa(dishID))
	if err != nil {
		return nil, err
	}

	result := &Result{Review: review, DishRating: dish.Rating}
	vendorRating, err := s.RecomputeVendorRating(ctx, dish.VendorID)
	if err != nil {
		// The review is stored; the vendor average catches up on the next review.
		ctx = s.logg.WithVendorID(ctx, strconv.Itoa(dish.VendorID))
		s.logg.Warn(ctx, "review.vendor_rating_failed: "+err.Error())
		result.Warnings = append(result.Warnings, "vendor rating could not be refreshed")
	} else {
		result.VendorRating = vendorRating
	}
	return result, nil
}

// RecomputeVendorRating re-averages every review across the vendor's dishes and stores it.
func (s *service) RecomputeVendorRating(ctx context.Context, vendorID int) (decimal.Decimal, error) {
	var rating decimal.Decimal
	err := s.locks.WithLock(ctx, func(ctx context.Context) error {
		dishes, err := s.vendorDishes(ctx, vendorID)
		if err != nil {
			return err
		}
		rating = MeanRating(dishes)
		return s.store.Update(ctx, content.CollectionVendors, vendorID, map[string]any{"rating": rating}, nil)
	}, "vendor", strconv.Itoa(vendorID), "rating")
	return rating, err
}

func (s *service) vendorDishes(ctx context.Context, vendorID int) ([]models.Dish, error) {
	var all []models.Dish
	for page := 1; ; page++ {
		var batch []models.Dish
		q := content.NewQuery().Eq("vendorId", vendorID).Populate("reviews").Page(page, pagination.MaxPageSize)
		meta, err := s.store.List(ctx, content.CollectionDishes, q, &batch)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if meta == nil || page >= meta.PageCount || len(batch) == 0 {
			return all, nil
		}
	}
}

func (s *service) deliveredOrder(ctx context.Context, reviewer Reviewer, dishID, orderID int) (*models.Order, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	var order models.Order
	if err := s.store.Get(ctx, content.CollectionOrders, orderID, content.NewQuery().Populate(), &order); err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(order.CustomerEmail), strings.TrimSpace(reviewer.Email)) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.Status != enums.OrderStatusDelivered {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "dishes can be reviewed once the order is delivered")
	}
	if !order.Contains(dishID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dish is not part of this order").
			WithDetails(map[string]any{"dishId": dishID, "orderId": orderID})
	}
	return &order, nil
}

func validateInput(reviewer Reviewer, dishID int, input Input) error {
	if strings.TrimSpace(reviewer.Email) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "reviewer identity missing")
	}
	fields := map[string]string{}
	if dishID <= 0 {
		fields["dishId"] = "required"
	}
	if input.Rating < 1 || input.Rating > 5 {
		fields["rating"] = "must be between 1 and 5"
	}
	if utf8.RuneCountInString(input.Text) > maxReviewText {
		fields["text"] = fmt.Sprintf("must be at most %d characters", maxReviewText)
	}
	if len(fields) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid review").WithDetails(fields)
	}
	return nil
}

func errAlreadyReviewed(dishID int) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "you have already reviewed this dish").
		WithDetails(map[string]any{"dishId": dishID})
}
