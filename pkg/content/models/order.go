package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/homeplate-backend/pkg/enums"
)

// OrderedDish is the price-locked snapshot of a dish at checkout.
type OrderedDish struct {
	DishID    int             `json:"dishId" validate:"required"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity" validate:"min=1"`
	Spiciness string          `json:"spiciness,omitempty"`
	Toppings  []Option        `json:"toppings,omitempty"`
	Extras    []Option        `json:"extras,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// Order is one vendor's share of a checkout.
type Order struct {
	ID              int                 `json:"id" validate:"required"`
	VendorID        int                 `json:"vendorId" validate:"required"`
	CustomerOrderID string              `json:"customerOrderId"`
	CustomerEmail   string              `json:"customerEmail"`
	CustomerName    string              `json:"customerName"`
	CustomerPhone   string              `json:"customerPhone"`
	Address         string              `json:"address"`
	Dishes          []OrderedDish       `json:"dishes" validate:"dive"`
	Status          enums.OrderStatus   `json:"status" validate:"required"`
	PaymentStatus   enums.PaymentStatus `json:"paymentStatus"`
	DeclineReason   string              `json:"declineReason,omitempty"`
	RefundEmail     string              `json:"refundEmail,omitempty"`
	RefundDetails   string              `json:"refundDetails,omitempty"`
	DeliveryType    enums.DeliveryType  `json:"deliveryType"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	Tax             decimal.Decimal     `json:"tax"`
	DeliveryFee     decimal.Decimal     `json:"deliveryFee"`
	Discount        decimal.Decimal     `json:"discount"`
	Total           decimal.Decimal     `json:"total"`
	CreatedAt       time.Time           `json:"createdAt"`
}

// TotalQuantity sums the quantities of every dish in the order.
func (o Order) TotalQuantity() int {
	total := 0
	for _, d := range o.Dishes {
		total += d.Quantity
	}
	return total
}

// Contains reports whether the order includes the dish.
func (o Order) Contains(dishID int) bool {
	for _, d := range o.Dishes {
		if d.DishID == dishID {
			return true
		}
	}
	return false
}
