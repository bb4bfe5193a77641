package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/homeplate-backend/internal/pricing"
	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
)

const maxLineQuantity = 99

// OwnerKey identifies the cart of a signed-in user.
func OwnerKey(userID int) string {
	return "user:" + strconv.Itoa(userID)
}

// AddItemInput selects a dish with its options.
type AddItemInput struct {
	DishID    int      `json:"dishId" validate:"required,gt=0"`
	Quantity  int      `json:"quantity" validate:"required,gt=0,lte=99"`
	Spiciness string   `json:"spiciness" validate:"omitempty,max=50"`
	Toppings  []string `json:"toppings" validate:"omitempty,dive,required"`
	Extras    []string `json:"extras" validate:"omitempty,dive,required"`
}

// View is a cart together with its price breakdown.
type View struct {
	Cart  *Cart             `json:"cart"`
	Quote pricing.Breakdown `json:"quote"`
}

// Service exposes cart operations.
type Service interface {
	Get(ctx context.Context, owner string) (*View, error)
	AddItem(ctx context.Context, owner string, input AddItemInput) (*View, error)
	UpdateItem(ctx context.Context, owner, lineID string, quantity int) (*View, error)
	RemoveItem(ctx context.Context, owner, lineID string) (*View, error)
	ApplyCoupon(ctx context.Context, owner, code string) (*View, error)
	SetZipcode(ctx context.Context, owner, zipcode string) (*View, error)
	Clear(ctx context.Context, owner string) error
	Load(ctx context.Context, owner string) (*Cart, error)
	Rates() pricing.Rates
}

type service struct {
	store   Store
	catalog CatalogReader
	rates   pricing.Rates
	now     func() time.Time
}

// NewService builds a cart service backed by the provided stack.
func NewService(store Store, catalog CatalogReader, rates pricing.Rates) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog reader required")
	}
	return &service{store: store, catalog: catalog, rates: rates, now: time.Now}, nil
}

func (s *service) Rates() pricing.Rates {
	return s.rates
}

func (s *service) Load(ctx context.Context, owner string) (*Cart, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "cart owner required")
	}
	c, err := s.store.Load(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return c, nil
}

func (s *service) Get(ctx context.Context, owner string) (*View, error) {
	c, err := s.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.view(c), nil
}

func (s *service) AddItem(ctx context.Context, owner string, input AddItemInput) (*View, error) {
	if input.DishID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dish id is required")
	}
	if input.Quantity <= 0 || input.Quantity > maxLineQuantity {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "quantity must be between 1 and %d", maxLineQuantity)
	}

	dish, err := s.catalog.GetDish(ctx, input.DishID)
	if err != nil {
		return nil, err
	}
	if !dish.Available {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dish is not available").
			WithDetails(map[string]any{"dishId": dish.ID})
	}
	vendor, err := s.catalog.GetVendor(ctx, dish.VendorID)
	if err != nil {
		return nil, err
	}

	line, err := buildLine(dish, input)
	if err != nil {
		return nil, err
	}

	c, err := s.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if merged := c.MergedQuantity(vendor.ID, line); merged > maxLineQuantity {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "quantity must be between 1 and %d", maxLineQuantity).
			WithDetails(map[string]any{"dishId": dish.ID, "quantity": merged})
	}
	c.Add(vendor.ID, vendor.StoreName, line)
	if err := s.save(ctx, owner, c); err != nil {
		return nil, err
	}
	return s.view(c), nil
}

func (s *service) UpdateItem(ctx context.Context, owner, lineID string, quantity int) (*View, error) {
	if quantity < 0 || quantity > maxLineQuantity {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "quantity must be between 0 and %d", maxLineQuantity)
	}
	c, err := s.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if !c.SetQuantity(lineID, quantity) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	if err := s.save(ctx, owner, c); err != nil {
		return nil, err
	}
	return s.view(c), nil
}

func (s *service) RemoveItem(ctx context.Context, owner, lineID string) (*View, error) {
	c, err := s.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if !c.Remove(lineID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	if err := s.save(ctx, owner, c); err != nil {
		return nil, err
	}
	return s.view(c), nil
}

// ApplyCoupon stores a recognized code. An unrecognized code clears any applied coupon before the
// validation error is returned.
func (s *service) ApplyCoupon(ctx context.Context, owner, code string) (*View, error) {
	c, err := s.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(code) == "" {
		c.Coupon = ""
		if err := s.save(ctx, owner, c); err != nil {
			return nil, err
		}
		return s.view(c), nil
	}
	if _, lookupErr := pricing.CouponPercent(code); lookupErr != nil {
		c.Coupon = ""
		if err := s.save(ctx, owner, c); err != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, lookupErr, "invalid coupon code").
			WithDetails(map[string]any{"coupon": code})
	}
	c.Coupon = pricing.NormalizeCoupon(code)
	if err := s.save(ctx, owner, c); err != nil {
		return nil, err
	}
	return s.view(c), nil
}

func (s *service) SetZipcode(ctx context.Context, owner, zipcode string) (*View, error) {
	c, err := s.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	c.Zipcode = strings.TrimSpace(zipcode)
	if err := s.save(ctx, owner, c); err != nil {
		return nil, err
	}
	return s.view(c), nil
}

func (s *service) Clear(ctx context.Context, owner string) error {
	if strings.TrimSpace(owner) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "cart owner required")
	}
	if err := s.store.Clear(ctx, owner); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) save(ctx context.Context, owner string, c *Cart) error {
	c.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, owner, c); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return nil
}

func (s *service) view(c *Cart) *View {
	quote, err := pricing.Quote(c.Lines(), s.rates, c.Coupon)
	if errors.Is(err, pricing.ErrInvalidCoupon) {
		// A coupon retired since it was applied no longer discounts.
		c.Coupon = ""
	}
	return &View{Cart: c, Quote: quote.Rounded()}
}

// buildLine resolves the selected options against the dish and locks in their prices.
func buildLine(dish *models.Dish, input AddItemInput) (Line, error) {
	spiciness := strings.TrimSpace(input.Spiciness)
	if spiciness != "" && len(dish.Spiciness) > 0 && !dish.OffersSpiciness(spiciness) {
		return Line{}, pkgerrors.New(pkgerrors.CodeValidation, "spiciness option not offered").
			WithDetails(map[string]any{"spiciness": spiciness})
	}

	toppings, err := resolveOptions(dish.Toppings, input.Toppings, "toppings")
	if err != nil {
		return Line{}, err
	}
	extras, err := resolveOptions(dish.Extras, input.Extras, "extras")
	if err != nil {
		return Line{}, err
	}

	optionPrices := make([]decimal.Decimal, 0, len(toppings)+len(extras))
	for _, opt := range toppings {
		optionPrices = append(optionPrices, opt.Price)
	}
	for _, opt := range extras {
		optionPrices = append(optionPrices, opt.Price)
	}

	return Line{
		LineID:    uuid.NewString(),
		DishID:    dish.ID,
		Name:      dish.Name,
		UnitPrice: pricing.UnitPrice(dish.Price, optionPrices...),
		Quantity:  input.Quantity,
		Spiciness: spiciness,
		Toppings:  toppings,
		Extras:    extras,
	}, nil
}

func resolveOptions(groups []models.OptionGroup, labels []string, field string) ([]models.Option, error) {
	if len(labels) == 0 {
		return nil, nil
	}
	out := make([]models.Option, 0, len(labels))
	for _, label := range labels {
		found := false
		for _, group := range groups {
			if opt, ok := group.Find(label); ok {
				out = append(out, opt)
				found = true
				break
			}
		}
		if !found {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown option").
				WithDetails(map[string]any{field: label})
		}
	}
	return out, nil
}
