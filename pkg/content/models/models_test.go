package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/homeplate-backend/pkg/enums"
)

func TestDishHasReviewFromIsCaseInsensitive(t *testing.T) {
	dish := Dish{Reviews: []Review{{Email: "Ann@Example.com", Rating: 5}}}
	if !dish.HasReviewFrom(" ann@example.com ") {
		t.Fatal("expected existing review to match")
	}
	if dish.HasReviewFrom("bob@example.com") {
		t.Fatal("did not expect a match for another email")
	}
	if dish.HasReviewFrom("") {
		t.Fatal("empty email never matches")
	}
}

func TestOptionGroupFind(t *testing.T) {
	group := OptionGroup{Name: "Sauces", Options: []Option{{Label: "Garlic", Price: decimal.RequireFromString("0.5")}}}
	opt, ok := group.Find("garlic")
	if !ok || !opt.Price.Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("unexpected option %+v %v", opt, ok)
	}
	if _, ok := group.Find("ketchup"); ok {
		t.Fatal("unexpected match")
	}
}

func TestOrderTotals(t *testing.T) {
	order := Order{Dishes: []OrderedDish{{DishID: 1, Quantity: 2}, {DishID: 2, Quantity: 3}}}
	if order.TotalQuantity() != 5 {
		t.Fatalf("expected 5 got %d", order.TotalQuantity())
	}
	if !order.Contains(2) || order.Contains(9) {
		t.Fatal("unexpected contains result")
	}
}

func TestPricesEncodeAsNumbers(t *testing.T) {
	raw, err := json.Marshal(Option{Label: "x", Price: decimal.RequireFromString("1.25")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"label":"x","price":1.25}` {
		t.Fatalf("unexpected encoding %s", raw)
	}
}

func TestDeliveryOptionsFor(t *testing.T) {
	opts := DeliveryOptions{
		LocalDelivery: DeliveryOption{Enabled: true, Fee: decimal.NewFromInt(3)},
		Pickup:        DeliveryOption{Enabled: true},
	}
	if !opts.For(enums.DeliveryTypeDelivery).Fee.Equal(decimal.NewFromInt(3)) {
		t.Fatal("expected local delivery fee")
	}
	if !opts.For(enums.DeliveryTypePickup).Fee.IsZero() {
		t.Fatal("expected zero pickup fee")
	}
}

func TestIsMainAdmin(t *testing.T) {
	u := User{IsAdmin: true, AdminVerified: true, AdminType: enums.AdminTypeMain}
	if !u.IsMainAdmin() {
		t.Fatal("expected main admin")
	}
	u.AdminVerified = false
	if u.IsMainAdmin() {
		t.Fatal("unverified admin is not main")
	}
}
