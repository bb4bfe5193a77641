package orders

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/angelmondragon/homeplate-backend/pkg/content"
	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	"github.com/angelmondragon/homeplate-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
	"github.com/angelmondragon/homeplate-backend/pkg/logger"
	"github.com/angelmondragon/homeplate-backend/pkg/pagination"
)

const maxDeclineReason = 500

type contentStore interface {
	List(ctx context.Context, collection string, q *content.Query, dest any) (*content.Pagination, error)
	Get(ctx context.Context, collection string, id int, q *content.Query, dest any) error
	Update(ctx context.Context, collection string, id int, payload any, dest any) error
}

type locker interface {
	WithLock(ctx context.Context, fn func(ctx context.Context) error, parts ...string) error
}

// Actor is the signed-in party acting on an order.
type Actor struct {
	Role     enums.ActorRole
	UserID   int
	Email    string
	VendorID int
}

// TransitionInput requests a status change.
type TransitionInput struct {
	OrderID     int
	To          enums.OrderStatus
	Actor       Actor
	Reason      string
	RefundEmail string
}

// TransitionResult is the updated order. Warnings list side effects that failed after the
// status change was stored.
type TransitionResult struct {
	Order    *models.Order `json:"order"`
	Warnings []string      `json:"warnings,omitempty"`
}

// ListFilter narrows order listings.
type ListFilter struct {
	Status   enums.OrderStatus
	VendorID int
	Page     pagination.Params
}

// RefundInput records where a refund should be sent.
type RefundInput struct {
	RefundEmail   string `json:"refundEmail" validate:"required,email"`
	RefundDetails string `json:"refundDetails" validate:"max=1000"`
}

// Service defines the order workflow.
type Service interface {
	Get(ctx context.Context, actor Actor, orderID int) (*models.Order, error)
	List(ctx context.Context, actor Actor, filter ListFilter) ([]models.Order, *content.Pagination, error)
	Siblings(ctx context.Context, actor Actor, customerOrderID string) ([]models.Order, error)
	Transition(ctx context.Context, input TransitionInput) (*TransitionResult, error)
	UpdatePaymentStatus(ctx context.Context, actor Actor, orderID int, status enums.PaymentStatus) (*models.Order, error)
	UpdateRefund(ctx context.Context, actor Actor, orderID int, input RefundInput) (*models.Order, error)
}

type service struct {
	store contentStore
	locks locker
	logg  *logger.Logger
}

// NewService builds the order workflow service.
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

func (s *service) Get(ctx context.Context, actor Actor, orderID int) (*models.Order, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	var order models.Order
	if err := s.store.Get(ctx, content.CollectionOrders, orderID, content.NewQuery().Populate(), &order); err != nil {
		return nil, err
	}
	if !visibleTo(&order, actor) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return &order, nil
}

func (s *service) List(ctx context.Context, actor Actor, filter ListFilter) ([]models.Order, *content.Pagination, error) {
	q, err := scopedQuery(actor)
	if err != nil {
		return nil, nil, err
	}
	if filter.Status != "" {
		if !filter.Status.IsValid() {
			return nil, nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown order status %q", filter.Status)
		}
		q.Eq("status", filter.Status)
	}
	if filter.VendorID > 0 && actor.Role == enums.ActorRoleAdmin {
		q.Eq("vendorId", filter.VendorID)
	}
	page := filter.Page.Normalize()
	q.Populate().Sort("createdAt", true).Page(page.Page, page.PageSize)

	var orders []models.Order
	meta, err := s.store.List(ctx, content.CollectionOrders, q, &orders)
	if err != nil {
		return nil, nil, err
	}
	return orders, meta, nil
}

func (s *service) Siblings(ctx context.Context, actor Actor, customerOrderID string) ([]models.Order, error) {
	customerOrderID = strings.TrimSpace(customerOrderID)
	if customerOrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer order id required")
	}
	q, err := scopedQuery(actor)
	if err != nil {
		return nil, err
	}
	q.Eq("customerOrderId", customerOrderID).Populate().Sort("vendorId", false).Page(1, pagination.MaxPageSize)

	var orders []models.Order
	if _, err := s.store.List(ctx, content.CollectionOrders, q, &orders); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return orders, nil
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*TransitionResult, error) {
	if input.OrderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var (
		order   *models.Order
		updated models.Order
	)
	// The status is re-read and written under the order lock so a transition, and its side
	// effects, happen once even when the same request races itself.
	err := s.locks.WithLock(ctx, func(ctx context.Context) error {
		current, err := s.Get(ctx, input.Actor, input.OrderID)
		if err != nil {
			return err
		}
		update, err := transitionUpdate(current, input)
		if err != nil {
			return err
		}
		order = current
		return s.store.Update(ctx, content.CollectionOrders, current.ID, update, &updated)
	}, "order", strconv.Itoa(input.OrderID))
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderID(ctx, strconv.Itoa(order.ID))
	ctx = s.logg.WithField(ctx, "transition", fmt.Sprintf("%s->%s", order.Status, input.To))
	s.logg.Info(ctx, "order.status_changed")

	result := &TransitionResult{Order: &updated}
	if input.To == enums.OrderStatusDelivered {
		if err := s.recordSales(ctx, order); err != nil {
			s.logg.Warn(ctx, "order.sales_counters_failed: "+err.Error())
			for _, e := range multierr.Errors(err) {
				result.Warnings = append(result.Warnings, e.Error())
			}
		}
	}
	return result, nil
}

// transitionUpdate checks the move against the order's current state and builds the fields to write.
func transitionUpdate(order *models.Order, input TransitionInput) (map[string]any, error) {
	if err := CheckTransition(order.Status, input.To, input.Actor.Role); err != nil {
		return nil, err
	}

	update := map[string]any{"status": input.To}
	switch input.To {
	case enums.OrderStatusDeclined:
		reason := strings.TrimSpace(input.Reason)
		if reason == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "a reason is required to decline an order").
				WithDetails(map[string]string{"reason": "required"})
		}
		if len(reason) > maxDeclineReason {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "reason must be at most %d characters", maxDeclineReason)
		}
		update["declineReason"] = reason
	case enums.OrderStatusCancelled:
		if order.PaymentStatus.Captured() {
			refundEmail := strings.TrimSpace(input.RefundEmail)
			if refundEmail == "" {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "a refund email is required to cancel a paid order").
					WithDetails(map[string]string{"refundEmail": "required"})
			}
			update["refundEmail"] = refundEmail
			update["paymentStatus"] = enums.PaymentStatusRefundPending
		}
	}
	return update, nil
}

func (s *service) UpdatePaymentStatus(ctx context.Context, actor Actor, orderID int, status enums.PaymentStatus) (*models.Order, error) {
	if actor.Role != enums.ActorRoleAdmin && actor.Role != enums.ActorRoleVendor {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "payment status is managed by vendors and admins")
	}
	if !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown payment status %q", status)
	}
	if actor.Role == enums.ActorRoleVendor && status != enums.PaymentStatusPaid && status != enums.PaymentStatusUnpaid {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins settle refunds")
	}
	order, err := s.Get(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	var updated models.Order
	if err := s.store.Update(ctx, content.CollectionOrders, order.ID, map[string]any{"paymentStatus": status}, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *service) UpdateRefund(ctx context.Context, actor Actor, orderID int, input RefundInput) (*models.Order, error) {
	email := strings.TrimSpace(input.RefundEmail)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund email is required").
			WithDetails(map[string]string{"refundEmail": "required"})
	}
	order, err := s.Get(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusCancelled && order.Status != enums.OrderStatusDeclined {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "refund details apply to cancelled or declined orders")
	}
	update := map[string]any{
		"refundEmail":   email,
		"refundDetails": strings.TrimSpace(input.RefundDetails),
	}
	if order.PaymentStatus.Captured() {
		update["paymentStatus"] = enums.PaymentStatusRefundPending
	}
	var updated models.Order
	if err := s.store.Update(ctx, content.CollectionOrders, order.ID, update, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// recordSales adds the ordered quantities to each dish's weekly sales and the total to the
// vendor's weekly items sold. Each counter is read and written back under its own lock.
func (s *service) recordSales(ctx context.Context, order *models.Order) error {
	var errs error
	for _, line := range quantitiesByDish(order.Dishes) {
		err := s.locks.WithLock(ctx, func(ctx context.Context) error {
			var dish models.Dish
			if err := s.store.Get(ctx, content.CollectionDishes, line.dishID, nil, &dish); err != nil {
				return err
			}
			return s.store.Update(ctx, content.CollectionDishes, dish.ID,
				map[string]any{"weeklySales": dish.WeeklySales + line.quantity}, nil)
		}, "dish", strconv.Itoa(line.dishID))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("dish %d weekly sales: %w", line.dishID, err))
		}
	}

	total := order.TotalQuantity()
	err := s.locks.WithLock(ctx, func(ctx context.Context) error {
		var vendor models.Vendor
		if err := s.store.Get(ctx, content.CollectionVendors, order.VendorID, nil, &vendor); err != nil {
			return err
		}
		return s.store.Update(ctx, content.CollectionVendors, vendor.ID,
			map[string]any{"weeklyItemsSold": vendor.WeeklyItemsSold + total}, nil)
	}, "vendor", strconv.Itoa(order.VendorID))
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("vendor %d weekly items sold: %w", order.VendorID, err))
	}
	return errs
}

type dishQuantity struct {
	dishID   int
	quantity int
}

// quantitiesByDish sums quantities per dish, keeping first-seen order.
func quantitiesByDish(dishes []models.OrderedDish) []dishQuantity {
	index := map[int]int{}
	var out []dishQuantity
	for _, d := range dishes {
		if pos, ok := index[d.DishID]; ok {
			out[pos].quantity += d.Quantity
			continue
		}
		index[d.DishID] = len(out)
		out = append(out, dishQuantity{dishID: d.DishID, quantity: d.Quantity})
	}
	return out
}

// scopedQuery restricts a listing to what the actor may see.
func scopedQuery(actor Actor) (*content.Query, error) {
	q := content.NewQuery()
	switch actor.Role {
	case enums.ActorRoleAdmin:
		return q, nil
	case enums.ActorRoleVendor:
		if actor.VendorID <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor profile required")
		}
		return q.Eq("vendorId", actor.VendorID), nil
	case enums.ActorRoleCustomer:
		if strings.TrimSpace(actor.Email) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity missing")
		}
		return q.Where("customerEmail", content.OpEqi, strings.TrimSpace(actor.Email)), nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor")
	}
}

// visibleTo hides orders that belong to someone else.
func visibleTo(order *models.Order, actor Actor) bool {
	switch actor.Role {
	case enums.ActorRoleAdmin:
		return true
	case enums.ActorRoleVendor:
		return actor.VendorID > 0 && order.VendorID == actor.VendorID
	case enums.ActorRoleCustomer:
		email := strings.TrimSpace(actor.Email)
		return email != "" && strings.EqualFold(strings.TrimSpace(order.CustomerEmail), email)
	}
	return false
}
