package models

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/homeplate-backend/pkg/enums"
)

// Location is a vendor's kitchen address.
type Location struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`
	Country string `json:"country"`
	Address string `json:"address"`
}

// DeliveryOption configures one way of handing an order to the customer.
type DeliveryOption struct {
	Enabled      bool            `json:"enabled"`
	Fee          decimal.Decimal `json:"fee"`
	MinimumOrder decimal.Decimal `json:"minimumOrder"`
}

// DeliveryOptions lists the vendor's local delivery and pickup terms.
type DeliveryOptions struct {
	LocalDelivery DeliveryOption `json:"localDelivery"`
	Pickup        DeliveryOption `json:"pickup"`
}

// For returns the option configured for the given delivery type.
func (d DeliveryOptions) For(kind enums.DeliveryType) DeliveryOption {
	if kind == enums.DeliveryTypePickup {
		return d.Pickup
	}
	return d.LocalDelivery
}

// DayHours holds opening hours for one weekday, formatted HH:MM.
type DayHours struct {
	Open bool   `json:"open"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Vendor is a chef's storefront.
type Vendor struct {
	ID              int                 `json:"id" validate:"required"`
	StoreName       string              `json:"storeName" validate:"required"`
	Username        string              `json:"username"`
	Email           string              `json:"email"`
	Bio             string              `json:"bio,omitempty"`
	Cuisine         string              `json:"cuisine,omitempty"`
	Logo            *Media              `json:"logo,omitempty"`
	Cover           *Media              `json:"cover,omitempty"`
	Location        Location            `json:"location"`
	Delivery        DeliveryOptions     `json:"deliveryOptions"`
	Hours           map[string]DayHours `json:"hours,omitempty"`
	Rating          decimal.Decimal     `json:"rating"`
	PaymentMethod   string              `json:"paymentMethod,omitempty"`
	PaypalEmail     string              `json:"paypalEmail,omitempty"`
	WeeklyItemsSold int                 `json:"weeklyItemsSold"`
	Verified        bool                `json:"verified"`
}
