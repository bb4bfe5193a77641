package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	"github.com/angelmondragon/homeplate-backend/pkg/pagination"
)

// VendorFilter narrows vendor listings.
type VendorFilter struct {
	VerifiedOnly bool
	Cuisine      string
	City         string
	Zipcode      string
	TopRated     bool
	Page         pagination.Params
}

// DishFilter narrows dish listings.
type DishFilter struct {
	VendorID      int
	Category      string
	AvailableOnly bool
	TopRated      bool
	Search        string
	Page          pagination.Params
}

// VendorDetail is a vendor with the dishes it currently offers.
type VendorDetail struct {
	Vendor models.Vendor `json:"vendor"`
	Dishes []models.Dish `json:"dishes"`
}

// Owner is the signed-in user a vendor profile belongs to.
type Owner struct {
	Email    string
	Username string
}

// RegisterVendorInput opens a vendor profile.
type RegisterVendorInput struct {
	StoreName string          `json:"storeName" validate:"required,max=120"`
	Bio       string          `json:"bio" validate:"max=2000"`
	Cuisine   string          `json:"cuisine" validate:"max=80"`
	Location  models.Location `json:"location"`
}

// SettingsInput changes vendor profile fields. Nil fields are left untouched.
type SettingsInput struct {
	StoreName *string                    `json:"storeName" validate:"omitempty,max=120"`
	Bio       *string                    `json:"bio" validate:"omitempty,max=2000"`
	Cuisine   *string                    `json:"cuisine" validate:"omitempty,max=80"`
	LogoID    *int                       `json:"logoId" validate:"omitempty,gt=0"`
	CoverID   *int                       `json:"coverId" validate:"omitempty,gt=0"`
	Location  *models.Location           `json:"location"`
	Delivery  *models.DeliveryOptions    `json:"deliveryOptions"`
	Hours     map[string]models.DayHours `json:"hours"`
}

// PaymentMethodInput selects how the vendor is paid.
type PaymentMethodInput struct {
	Method      string `json:"paymentMethod" validate:"required"`
	PaypalEmail string `json:"paypalEmail" validate:"omitempty,email"`
}

// DishInput creates a dish.
type DishInput struct {
	Name        string               `json:"name" validate:"required,max=120"`
	Description string               `json:"description" validate:"max=2000"`
	Price       decimal.Decimal      `json:"price"`
	Category    string               `json:"category" validate:"max=80"`
	Subcategory string               `json:"subcategory" validate:"max=80"`
	Servings    int                  `json:"servings" validate:"gte=0"`
	PrepTime    string               `json:"preparationTime" validate:"max=40"`
	Spiciness   []string             `json:"spiciness" validate:"omitempty,dive,required"`
	Toppings    []models.OptionGroup `json:"toppings" validate:"omitempty,dive"`
	Extras      []models.OptionGroup `json:"extras" validate:"omitempty,dive"`
	Ingredients []string             `json:"ingredients" validate:"omitempty,dive,required"`
	ImageID     *int                 `json:"imageId" validate:"omitempty,gt=0"`
	Available   *bool                `json:"available"`
}

// DishUpdate changes dish fields. Nil fields are left untouched.
type DishUpdate struct {
	Name        *string               `json:"name" validate:"omitempty,max=120"`
	Description *string               `json:"description" validate:"omitempty,max=2000"`
	Price       *decimal.Decimal      `json:"price"`
	Category    *string               `json:"category" validate:"omitempty,max=80"`
	Subcategory *string               `json:"subcategory" validate:"omitempty,max=80"`
	Servings    *int                  `json:"servings" validate:"omitempty,gte=0"`
	PrepTime    *string               `json:"preparationTime" validate:"omitempty,max=40"`
	Spiciness   *[]string             `json:"spiciness"`
	Toppings    *[]models.OptionGroup `json:"toppings"`
	Extras      *[]models.OptionGroup `json:"extras"`
	Ingredients *[]string             `json:"ingredients"`
	ImageID     *int                  `json:"imageId" validate:"omitempty,gt=0"`
}
