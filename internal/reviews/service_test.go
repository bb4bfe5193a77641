package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/homeplate-backend/pkg/content"
	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	"github.com/angelmondragon/homeplate-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
)

var ann = Reviewer{UserID: 3, Email: "Ann@Example.com", Name: "Ann"}

func seed(status enums.OrderStatus) *memoryStore {
	store := newMemoryStore()
	store.put(content.CollectionOrders, 100, models.Order{
		ID: 100, VendorID: 7, CustomerEmail: "ann@example.com", Status: status,
		Dishes: []models.OrderedDish{{DishID: 1, Quantity: 1}},
	})
	store.put(content.CollectionDishes, 1, models.Dish{
		ID: 1, Name: "Tacos", VendorID: 7, Rating: decimal.NewFromInt(4),
		Reviews: []models.Review{{Email: "bob@example.com", Rating: 4}},
	})
	store.put(content.CollectionDishes, 2, models.Dish{
		ID: 2, Name: "Soup", VendorID: 7, Rating: decimal.NewFromInt(2),
		Reviews: []models.Review{{Email: "cy@example.com", Rating: 2}},
	})
	store.put(content.CollectionDishes, 3, models.Dish{
		ID: 3, Name: "Other", VendorID: 9, Rating: decimal.NewFromInt(5),
		Reviews: []models.Review{{Email: "cy@example.com", Rating: 5}},
	})
	store.put(content.CollectionVendors, 7, models.Vendor{ID: 7, StoreName: "Grill", Rating: decimal.NewFromInt(3)})
	return store
}

func newTestService(t *testing.T, store *memoryStore) (Service, *recordingLocker) {
	t.Helper()
	locks := &recordingLocker{}
	svc, err := NewService(store, locks, nil)
	require.NoError(t, err)
	return svc, locks
}

func TestSubmitUpdatesDishAndVendorRatings(t *testing.T) {
	store := seed(enums.OrderStatusDelivered)
	svc, locks := newTestService(t, store)

	res, err := svc.Submit(context.Background(), ann, 1, Input{OrderID: 100, Rating: 2, Text: " ok "})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.True(t, res.DishRating.Equal(decimal.NewFromInt(3)), res.DishRating.String())
	// (4 + 2 + 2) / 3 across vendor 7 only.
	assert.True(t, res.VendorRating.Equal(decimal.RequireFromString("2.6666666666666667")), res.VendorRating.String())
	assert.Equal(t, "ok", res.Review.Text)

	dish := store.dish(1)
	require.Len(t, dish.Reviews, 2)
	assert.Equal(t, 100, dish.Reviews[1].OrderID)
	assert.True(t, dish.Rating.Equal(decimal.NewFromInt(3)))
	assert.True(t, store.vendor(7).Rating.Round(6).Equal(res.VendorRating.Round(6)))
	assert.Equal(t, []string{"[dish 1]", "[vendor 7 rating]"}, locks.names)
}

func TestSubmitRejectsDuplicateReviewer(t *testing.T) {
	store := seed(enums.OrderStatusDelivered)
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	_, err := svc.Submit(ctx, ann, 1, Input{OrderID: 100, Rating: 5})
	require.NoError(t, err)

	upper := ann
	upper.Email = "ANN@EXAMPLE.COM"
	_, err = svc.Submit(ctx, upper, 1, Input{OrderID: 100, Rating: 1})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict), "got %v", err)
	assert.Len(t, store.dish(1).Reviews, 2)
	assert.True(t, pkgerrors.HasCode(svc.Eligible(ctx, ann, 1, 100), pkgerrors.CodeConflict))
}

func TestSubmitEligibility(t *testing.T) {
	ctx := context.Background()

	_, err := func() (*Result, error) {
		svc, _ := newTestService(t, seed(enums.OrderStatusReady))
		return svc.Submit(ctx, ann, 1, Input{OrderID: 100, Rating: 5})
	}()
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "undelivered: %v", err)

	svc, _ := newTestService(t, seed(enums.OrderStatusDelivered))
	_, err = svc.Submit(ctx, ann, 2, Input{OrderID: 100, Rating: 5})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "dish not in order: %v", err)

	_, err = svc.Submit(ctx, Reviewer{Email: "eve@example.com"}, 1, Input{OrderID: 100, Rating: 5})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound), "foreign order: %v", err)

	assert.NoError(t, svc.Eligible(ctx, ann, 1, 100))
}

func TestSubmitValidatesInput(t *testing.T) {
	svc, _ := newTestService(t, seed(enums.OrderStatusDelivered))
	ctx := context.Background()

	for _, rating := range []int{0, 6} {
		_, err := svc.Submit(ctx, ann, 1, Input{OrderID: 100, Rating: rating})
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "rating %d: %v", rating, err)
	}
	_, err := svc.Submit(ctx, ann, 1, Input{OrderID: 100, Rating: 3, Text: strings.Repeat("x", maxReviewText+1)})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.Submit(ctx, Reviewer{}, 1, Input{OrderID: 100, Rating: 3})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}

func TestVendorRatingFailureIsAWarning(t *testing.T) {
	store := seed(enums.OrderStatusDelivered)
	store.failOn[fmt.Sprintf("update:%s:%d", content.CollectionVendors, 7)] = errors.New("backend down")
	svc, _ := newTestService(t, store)

	res, err := svc.Submit(context.Background(), ann, 1, Input{OrderID: 100, Rating: 4})
	require.NoError(t, err)
	assert.Len(t, res.Warnings, 1)
	assert.Len(t, store.dish(1).Reviews, 2)
	assert.True(t, store.vendor(7).Rating.Equal(decimal.NewFromInt(3)))
}

func TestVendorRatingPagesThroughDishes(t *testing.T) {
	store := seed(enums.OrderStatusDelivered)
	for id := 10; id < 130; id++ {
		store.put(content.CollectionDishes, id, models.Dish{
			ID: id, Name: "Filler", VendorID: 7,
			Reviews: []models.Review{{Email: "x@example.com", Rating: 3}},
		})
	}
	svc, _ := newTestService(t, store)

	res, err := svc.Submit(context.Background(), ann, 1, Input{OrderID: 100, Rating: 3})
	require.NoError(t, err)
	// 120 fillers at 3, plus 4, 2 and the new 3.
	want := decimal.NewFromInt(120*3 + 4 + 2 + 3).Div(decimal.NewFromInt(123))
	assert.True(t, res.VendorRating.Equal(want), "got %s want %s", res.VendorRating, want)
}
