package orders

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/homeplate-backend/api/controllers/vendorcontext"
	"github.com/angelmondragon/homeplate-backend/api/middleware"
	"github.com/angelmondragon/homeplate-backend/api/responses"
	"github.com/angelmondragon/homeplate-backend/api/validators"
	internalorders "github.com/angelmondragon/homeplate-backend/internal/orders"
	"github.com/angelmondragon/homeplate-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
	"github.com/angelmondragon/homeplate-backend/pkg/logger"
	"github.com/angelmondragon/homeplate-backend/pkg/pagination"
)

type actorFunc func(r *http.Request) (internalorders.Actor, error)

type cancelRequest struct {
	RefundEmail string `json:"refundEmail" validate:"omitempty,email"`
}

type vendorOrderDecisionRequest struct {
	Decision string `json:"decision" validate:"required"`
	Reason   string `json:"reason" validate:"max=500"`
}

type statusRequest struct {
	Status      string `json:"status" validate:"required"`
	Reason      string `json:"reason" validate:"max=500"`
	RefundEmail string `json:"refundEmail" validate:"omitempty,email"`
}

type paymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus" validate:"required"`
}

// List returns the signed-in customer's orders, newest first.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return listOrders(svc, customerActor, false, logg)
}

// Detail returns one of the customer's orders.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return orderDetail(svc, customerActor, logg)
}

// Group returns every vendor order created by one checkout.
func Group(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		actor, err := customerActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orders, err := svc.Siblings(r.Context(), actor, chi.URLParam(r, "customerOrderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

// Cancel lets a customer cancel an order the vendor has not finished. Paid orders need a refund email.
func Cancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return cancelOrder(svc, customerActor, logg)
}

// Received marks a ready order as delivered.
func Received(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transition(w, r, svc, customerActor, internalorders.TransitionInput{To: enums.OrderStatusDelivered}, logg)
	}
}

// Refund records where the refund for a cancelled or declined order goes.
func Refund(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		actor, err := customerActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body internalorders.RefundInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.UpdateRefund(r.Context(), actor, orderID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// VendorList returns the orders placed with the active vendor.
func VendorList(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return listOrders(svc, vendorActor, false, logg)
}

// VendorDetail returns one order placed with the active vendor.
func VendorDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return orderDetail(svc, vendorActor, logg)
}

// VendorOrderDecision accepts or declines a pending order. Declines need a reason.
func VendorOrderDecision(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload vendorOrderDecisionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		decision, err := enums.ParseVendorOrderDecision(payload.Decision)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decision must be accept or decline").
				WithDetails(map[string]string{"decision": "invalid"}))
			return
		}
		input := internalorders.TransitionInput{To: decision.Status(), Reason: payload.Reason}
		transition(w, r, svc, vendorActor, input, logg)
	}
}

// VendorReady marks an accepted order ready for pickup or delivery.
func VendorReady(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transition(w, r, svc, vendorActor, internalorders.TransitionInput{To: enums.OrderStatusReady}, logg)
	}
}

// VendorCancel cancels an accepted order on the vendor's side.
func VendorCancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return cancelOrder(svc, vendorActor, logg)
}

// VendorPaymentStatus marks an order paid or unpaid.
func VendorPaymentStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return updatePaymentStatus(svc, vendorActor, logg)
}

// AdminList returns all orders, optionally filtered by status and vendor.
func AdminList(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return listOrders(svc, adminActor, true, logg)
}

// AdminStatus moves an order through the state machine as an admin.
func AdminStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload statusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status").
				WithDetails(map[string]string{"status": "invalid"}))
			return
		}
		input := internalorders.TransitionInput{To: status, Reason: payload.Reason, RefundEmail: payload.RefundEmail}
		transition(w, r, svc, adminActor, input, logg)
	}
}

// AdminPaymentStatus sets any payment status, including refund settlement.
func AdminPaymentStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return updatePaymentStatus(svc, adminActor, logg)
}

func listOrders(svc internalorders.Service, actorOf actorFunc, allowVendorFilter bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		actor, err := actorOf(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := internalorders.ListFilter{Page: pagination.FromQuery(r.URL.Query())}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter").
					WithDetails(map[string]string{"status": "invalid"}))
				return
			}
			filter.Status = status
		}
		if allowVendorFilter {
			vendorID, err := validators.ParseQueryInt(r, "vendorId", 0, 1, 1<<31-1)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filter.VendorID = vendorID
		}

		orders, meta, err := svc.List(r.Context(), actor, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, orders, meta)
	}
}

func orderDetail(svc internalorders.Service, actorOf actorFunc, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		actor, err := actorOf(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func cancelOrder(svc internalorders.Service, actorOf actorFunc, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload cancelRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		input := internalorders.TransitionInput{To: enums.OrderStatusCancelled, RefundEmail: payload.RefundEmail}
		transition(w, r, svc, actorOf, input, logg)
	}
}

func updatePaymentStatus(svc internalorders.Service, actorOf actorFunc, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		actor, err := actorOf(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload paymentStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParsePaymentStatus(payload.PaymentStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status").
				WithDetails(map[string]string{"paymentStatus": "invalid"}))
			return
		}
		order, err := svc.UpdatePaymentStatus(r.Context(), actor, orderID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// transition resolves the actor and order id, then applies input through the service.
func transition(w http.ResponseWriter, r *http.Request, svc internalorders.Service, actorOf actorFunc, input internalorders.TransitionInput, logg *logger.Logger) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
		return
	}
	actor, err := actorOf(r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	orderID, err := validators.ParseIDParam(r, "orderId")
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	input.OrderID = orderID
	input.Actor = actor

	result, err := svc.Transition(r.Context(), input)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, result)
}

func customerActor(r *http.Request) (internalorders.Actor, error) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		return internalorders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return internalorders.Actor{Role: enums.ActorRoleCustomer, UserID: sess.UserID, Email: sess.Email}, nil
}

func vendorActor(r *http.Request) (internalorders.Actor, error) {
	vendor, err := vendorcontext.ResolveVendor(r)
	if err != nil {
		return internalorders.Actor{}, err
	}
	sess := middleware.SessionFromContext(r.Context())
	return internalorders.Actor{Role: enums.ActorRoleVendor, UserID: sess.UserID, Email: sess.Email, VendorID: vendor.ID}, nil
}

func adminActor(r *http.Request) (internalorders.Actor, error) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		return internalorders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	if !sess.IsVerifiedAdmin() {
		return internalorders.Actor{}, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}
	return internalorders.Actor{Role: enums.ActorRoleAdmin, UserID: sess.UserID, Email: sess.Email}, nil
}
