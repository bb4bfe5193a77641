package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Option is a selectable add-on with its own price.
type Option struct {
	Label string          `json:"label" validate:"required"`
	Price decimal.Decimal `json:"price"`
}

// OptionGroup groups add-ons under a heading such as "Sauces".
type OptionGroup struct {
	Name    string   `json:"name" validate:"required"`
	Options []Option `json:"options" validate:"dive"`
}

// Find returns the option matching label, case-insensitively.
func (g OptionGroup) Find(label string) (Option, bool) {
	for _, opt := range g.Options {
		if strings.EqualFold(strings.TrimSpace(opt.Label), strings.TrimSpace(label)) {
			return opt, true
		}
	}
	return Option{}, false
}

// Review is a customer's rating of a dish.
type Review struct {
	Name    string `json:"name"`
	Email   string `json:"email" validate:"required"`
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Text    string `json:"text,omitempty"`
	OrderID int    `json:"orderId,omitempty"`
}

// Dish is a menu item offered by a vendor.
type Dish struct {
	ID          int             `json:"id" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category,omitempty"`
	Subcategory string          `json:"subcategory,omitempty"`
	Servings    int             `json:"servings,omitempty"`
	PrepTime    string          `json:"preparationTime,omitempty"`
	Spiciness   []string        `json:"spiciness,omitempty"`
	Toppings    []OptionGroup   `json:"toppings,omitempty" validate:"dive"`
	Extras      []OptionGroup   `json:"extras,omitempty" validate:"dive"`
	Ingredients []string        `json:"ingredients,omitempty"`
	Image       *Media          `json:"image,omitempty"`
	VendorID    int             `json:"vendorId" validate:"required"`
	Available   bool            `json:"available"`
	Reviews     []Review        `json:"reviews" validate:"dive"`
	Rating      decimal.Decimal `json:"rating"`
	WeeklySales int             `json:"weeklySales"`
}

// HasReviewFrom reports whether email already reviewed this dish.
func (d Dish) HasReviewFrom(email string) bool {
	needle := strings.ToLower(strings.TrimSpace(email))
	if needle == "" {
		return false
	}
	for _, r := range d.Reviews {
		if strings.ToLower(strings.TrimSpace(r.Email)) == needle {
			return true
		}
	}
	return false
}

// OffersSpiciness reports whether level is one of the dish's spiciness choices.
func (d Dish) OffersSpiciness(level string) bool {
	for _, s := range d.Spiciness {
		if strings.EqualFold(s, level) {
			return true
		}
	}
	return false
}
