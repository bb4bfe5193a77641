package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/homeplate-backend/internal/pricing"
	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
	"github.com/angelmondragon/homeplate-backend/pkg/redis"
)

type stubCatalog struct {
	dishes  map[int]*models.Dish
	vendors map[int]*models.Vendor
}

func (s *stubCatalog) GetDish(ctx context.Context, id int) (*models.Dish, error) {
	if d, ok := s.dishes[id]; ok {
		return d, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dish not found")
}

func (s *stubCatalog) GetVendor(ctx context.Context, id int) (*models.Vendor, error) {
	if v, ok := s.vendors[id]; ok {
		return v, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
}

func newCatalog() *stubCatalog {
	return &stubCatalog{
		dishes: map[int]*models.Dish{
			1: {
				ID: 1, Name: "Burger", Price: decimal.RequireFromString("15.99"), VendorID: 7, Available: true,
				Spiciness: []string{"mild", "hot"},
				Toppings: []models.OptionGroup{{Name: "Cheese", Options: []models.Option{
					{Label: "Cheddar", Price: decimal.RequireFromString("1.00")},
				}}},
				Extras: []models.OptionGroup{{Name: "Sides", Options: []models.Option{
					{Label: "Fries", Price: decimal.RequireFromString("2.50")},
				}}},
			},
			2: {ID: 2, Name: "Soup", Price: decimal.RequireFromString("6"), VendorID: 7, Available: false},
		},
		vendors: map[int]*models.Vendor{7: {ID: 7, StoreName: "Grill House"}},
	}
}

func newTestService(t *testing.T) (Service, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: srv.Addr()}))
	t.Cleanup(func() { _ = client.Close() })
	store, err := NewRedisStore(client, time.Hour)
	require.NoError(t, err)
	svc, err := NewService(store, newCatalog(), pricing.DefaultRates())
	require.NoError(t, err)
	return svc, srv
}

func TestAddItemPricesOptionsAndPersists(t *testing.T) {
	ctx := context.Background()
	svc, srv := newTestService(t)
	owner := OwnerKey(3)

	view, err := svc.AddItem(ctx, owner, AddItemInput{DishID: 1, Quantity: 2, Spiciness: "HOT", Toppings: []string{"cheddar"}, Extras: []string{"Fries"}})
	require.NoError(t, err)
	require.Len(t, view.Cart.Groups, 1)
	item := view.Cart.Groups[0].Items[0]
	assert.Equal(t, "Grill House", view.Cart.Groups[0].VendorName)
	assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("19.49")), item.UnitPrice.String())
	assert.True(t, view.Quote.Subtotal.Equal(decimal.RequireFromString("38.98")), view.Quote.Subtotal.String())
	assert.NotEmpty(t, item.LineID)
	assert.True(t, srv.Exists("hp:cart:user:3"))

	reloaded, err := svc.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, item.LineID, reloaded.Cart.Groups[0].Items[0].LineID)
}

func TestAddItemRejectsInvalidSelections(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	owner := OwnerKey(3)

	cases := []AddItemInput{
		{DishID: 2, Quantity: 1},
		{DishID: 1, Quantity: 0},
		{DishID: 1, Quantity: 1, Spiciness: "volcanic"},
		{DishID: 1, Quantity: 1, Toppings: []string{"Pineapple"}},
	}
	for _, input := range cases {
		_, err := svc.AddItem(ctx, owner, input)
		if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("input %+v: expected validation error, got %v", input, err)
		}
	}

	_, err := svc.AddItem(ctx, owner, AddItemInput{DishID: 99, Quantity: 1})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestAddItemCapsMergedQuantity(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	owner := OwnerKey(6)

	_, err := svc.AddItem(ctx, owner, AddItemInput{DishID: 1, Quantity: 60})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, owner, AddItemInput{DishID: 1, Quantity: 60})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)

	view, err := svc.AddItem(ctx, owner, AddItemInput{DishID: 1, Quantity: 39})
	require.NoError(t, err)
	assert.Equal(t, 99, view.Cart.Groups[0].Items[0].Quantity)
}

func TestApplyCouponResetsOnUnknownCode(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	owner := OwnerKey(4)
	_, err := svc.AddItem(ctx, owner, AddItemInput{DishID: 1, Quantity: 2})
	require.NoError(t, err)

	view, err := svc.ApplyCoupon(ctx, owner, "save10")
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", view.Cart.Coupon)
	assert.True(t, view.Quote.Discount.Equal(decimal.RequireFromString("4.27")), view.Quote.Discount.String())
	assert.True(t, view.Quote.Final.Equal(decimal.RequireFromString("38.45")), view.Quote.Final.String())

	_, err = svc.ApplyCoupon(ctx, owner, "BOGUS")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	view, err = svc.Get(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, view.Cart.Coupon)
	assert.True(t, view.Quote.Discount.IsZero())
}

func TestUpdateRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	svc, srv := newTestService(t)
	owner := OwnerKey(5)
	view, err := svc.AddItem(ctx, owner, AddItemInput{DishID: 1, Quantity: 1})
	require.NoError(t, err)
	lineID := view.Cart.Groups[0].Items[0].LineID

	view, err = svc.UpdateItem(ctx, owner, lineID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Cart.Groups[0].Items[0].Quantity)

	_, err = svc.UpdateItem(ctx, owner, "missing", 1)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	view, err = svc.SetZipcode(ctx, owner, " 73301 ")
	require.NoError(t, err)
	assert.Equal(t, "73301", view.Cart.Zipcode)

	view, err = svc.RemoveItem(ctx, owner, lineID)
	require.NoError(t, err)
	assert.True(t, view.Cart.IsEmpty())
	assert.True(t, view.Quote.ShippingWaived)

	require.NoError(t, svc.Clear(ctx, owner))
	assert.False(t, srv.Exists("hp:cart:user:5"))
}

func TestLoadRequiresOwner(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Get(context.Background(), "")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}
