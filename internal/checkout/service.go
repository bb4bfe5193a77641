package checkout

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/homeplate-backend/internal/cart"
	"github.com/angelmondragon/homeplate-backend/internal/pricing"
	"github.com/angelmondragon/homeplate-backend/pkg/content"
	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	"github.com/angelmondragon/homeplate-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
	"github.com/angelmondragon/homeplate-backend/pkg/logger"
)

const submissionConcurrency = 4

type cartReader interface {
	Load(ctx context.Context, owner string) (*cart.Cart, error)
	Clear(ctx context.Context, owner string) error
	Rates() pricing.Rates
}

type catalogReader interface {
	GetDish(ctx context.Context, id int) (*models.Dish, error)
	GetVendor(ctx context.Context, id int) (*models.Vendor, error)
}

type orderWriter interface {
	Create(ctx context.Context, collection string, payload any, dest any) error
}

// Input is the customer's delivery details.
type Input struct {
	Name         string             `json:"name" validate:"required,max=120"`
	Phone        string             `json:"phone" validate:"required,max=40"`
	Address      string             `json:"address" validate:"required_if=DeliveryType delivery,max=500"`
	DeliveryType enums.DeliveryType `json:"deliveryType" validate:"required,oneof=delivery pickup"`
}

// Result lists the orders created by one checkout.
type Result struct {
	CustomerOrderID string            `json:"customerOrderId"`
	Orders          []models.Order    `json:"orders"`
	Quote           pricing.Breakdown `json:"quote"`
}

// Service executes checkout orchestration.
type Service interface {
	Execute(ctx context.Context, owner, customerEmail string, input Input) (*Result, error)
}

type service struct {
	carts   cartReader
	catalog catalogReader
	orders  orderWriter
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the checkout service.
func NewService(carts cartReader, catalog catalogReader, orders orderWriter, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog reader required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order writer required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{carts: carts, catalog: catalog, orders: orders, logg: logg, now: time.Now}, nil
}

func (s *service) Execute(ctx context.Context, owner, customerEmail string, input Input) (*Result, error) {
	customer, err := validateInput(customerEmail, input)
	if err != nil {
		return nil, err
	}

	c, err := s.carts.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
	}

	batches := GroupByVendor(FlattenCart(c))
	fees, err := s.validateBatches(ctx, batches, input.DeliveryType)
	if err != nil {
		return nil, err
	}

	rates := s.carts.Rates()
	cartQuote, couponErr := pricing.Quote(c.Lines(), rates, c.Coupon)
	coupon, discountPercent := cartQuote.Coupon, cartQuote.DiscountPercent
	if couponErr != nil {
		coupon, discountPercent = "", decimal.Zero
	}

	customerOrderID := CustomerOrderID(s.now())
	drafts := BuildDrafts(batches, DraftParams{
		CustomerOrderID: customerOrderID,
		Customer:        customer,
		DeliveryType:    input.DeliveryType,
		TaxRatePercent:  rates.TaxRatePercent,
		DiscountPercent: discountPercent,
		DeliveryFees:    fees,
	})

	quote := QuoteDrafts(drafts, coupon, discountPercent)

	created, err := s.submit(ctx, drafts)
	if err != nil {
		return nil, err
	}

	if err := s.carts.Clear(ctx, owner); err != nil {
		// Orders exist at this point; a stale cart is recoverable by the customer.
		s.logg.Error(ctx, "checkout.cart_clear_failed", err)
	}

	ctx = s.logg.WithCustomerOrderID(ctx, customerOrderID)
	s.logg.Info(ctx, "checkout.completed")

	return &Result{CustomerOrderID: customerOrderID, Orders: created, Quote: quote.Rounded()}, nil
}

func validateInput(email string, input Input) (Customer, error) {
	fields := map[string]string{}
	customer := Customer{
		Email:   strings.TrimSpace(email),
		Name:    strings.TrimSpace(input.Name),
		Phone:   strings.TrimSpace(input.Phone),
		Address: strings.TrimSpace(input.Address),
	}
	if customer.Email == "" {
		return Customer{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer email unavailable")
	}
	if customer.Name == "" {
		fields["name"] = "required"
	}
	if customer.Phone == "" {
		fields["phone"] = "required"
	}
	if !input.DeliveryType.IsValid() {
		fields["deliveryType"] = "must be delivery or pickup"
	}
	if input.DeliveryType == enums.DeliveryTypeDelivery && customer.Address == "" {
		fields["address"] = "required for delivery"
	}
	if len(fields) > 0 {
		return Customer{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid checkout details").WithDetails(fields)
	}
	return customer, nil
}

// validateBatches checks vendor delivery terms and dish availability and returns the fee per vendor.
func (s *service) validateBatches(ctx context.Context, batches []VendorBatch, kind enums.DeliveryType) (map[int]decimal.Decimal, error) {
	fees := make(map[int]decimal.Decimal, len(batches))
	for _, batch := range batches {
		vendor, err := s.catalog.GetVendor(ctx, batch.VendorID)
		if err != nil {
			return nil, err
		}
		option := vendor.Delivery.For(kind)
		configured := vendor.Delivery.LocalDelivery.Enabled || vendor.Delivery.Pickup.Enabled
		if configured && !option.Enabled {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s does not offer %s", vendor.StoreName, kind).
				WithDetails(map[string]any{"vendorId": vendor.ID})
		}
		if subtotal := batch.Subtotal(); subtotal.LessThan(option.MinimumOrder) {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s requires a minimum order of %s", vendor.StoreName, option.MinimumOrder.StringFixed(2)).
				WithDetails(map[string]any{"vendorId": vendor.ID, "subtotal": subtotal.StringFixed(2)})
		}
		for _, line := range batch.Lines {
			dish, err := s.catalog.GetDish(ctx, line.DishID)
			if err != nil {
				if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
					return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s is no longer on the menu", line.Name).
						WithDetails(map[string]any{"dishId": line.DishID})
				}
				return nil, err
			}
			if !dish.Available || dish.VendorID != batch.VendorID {
				return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s is not available", dish.Name).
					WithDetails(map[string]any{"dishId": dish.ID})
			}
		}
		fees[batch.VendorID] = option.Fee
	}
	return fees, nil
}

// submit creates every draft independently. It fails when any creation fails; orders already
// created are not rolled back and are reported in the error details.
func (s *service) submit(ctx context.Context, drafts []OrderDraft) ([]models.Order, error) {
	created := make([]*models.Order, len(drafts))
	var (
		mu   sync.Mutex
		errs error
	)

	var g errgroup.Group
	g.SetLimit(submissionConcurrency)
	for i, draft := range drafts {
		i, draft := i, draft
		g.Go(func() error {
			var order models.Order
			if err := s.orders.Create(ctx, content.CollectionOrders, draft, &order); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("vendor %d: %w", draft.VendorID, err))
				mu.Unlock()
				return nil
			}
			created[i] = &order
			return nil
		})
	}
	_ = g.Wait()

	var orders []models.Order
	var createdVendors, failedVendors []int
	for i, order := range created {
		if order == nil {
			failedVendors = append(failedVendors, drafts[i].VendorID)
			continue
		}
		orders = append(orders, *order)
		createdVendors = append(createdVendors, drafts[i].VendorID)
	}

	if errs != nil {
		sort.Ints(createdVendors)
		sort.Ints(failedVendors)
		s.logg.Error(ctx, "checkout.submission_failed", errs)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "could not place every order, please try again").
			WithDetails(map[string]any{
				"createdVendorIds": createdVendors,
				"failedVendorIds":  failedVendors,
				"createdOrderIds":  orderIDs(orders),
			})
	}
	return orders, nil
}

func orderIDs(orders []models.Order) []int {
	ids := make([]int, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	return ids
}
