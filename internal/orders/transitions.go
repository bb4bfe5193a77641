package orders

import (
	"github.com/angelmondragon/homeplate-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
)

type edge struct {
	from enums.OrderStatus
	to   enums.OrderStatus
}

// allowedActors lists who may drive each status change.
var allowedActors = map[edge][]enums.ActorRole{
	{enums.OrderStatusPending, enums.OrderStatusAccepted}:   {enums.ActorRoleVendor, enums.ActorRoleAdmin},
	{enums.OrderStatusPending, enums.OrderStatusDeclined}:   {enums.ActorRoleVendor, enums.ActorRoleAdmin},
	{enums.OrderStatusPending, enums.OrderStatusCancelled}:  {enums.ActorRoleCustomer, enums.ActorRoleAdmin},
	{enums.OrderStatusAccepted, enums.OrderStatusReady}:     {enums.ActorRoleVendor, enums.ActorRoleAdmin},
	{enums.OrderStatusAccepted, enums.OrderStatusCancelled}: {enums.ActorRoleVendor, enums.ActorRoleAdmin},
	{enums.OrderStatusReady, enums.OrderStatusDelivered}:    {enums.ActorRoleCustomer, enums.ActorRoleAdmin},
}

// NextStatuses returns the statuses reachable from status, in a stable order.
func NextStatuses(status enums.OrderStatus) []enums.OrderStatus {
	var out []enums.OrderStatus
	for _, candidate := range []enums.OrderStatus{
		enums.OrderStatusAccepted,
		enums.OrderStatusDeclined,
		enums.OrderStatusReady,
		enums.OrderStatusDelivered,
		enums.OrderStatusCancelled,
	} {
		if _, ok := allowedActors[edge{status, candidate}]; ok {
			out = append(out, candidate)
		}
	}
	return out
}

// CheckTransition validates that actor may move an order from one status to another.
func CheckTransition(from, to enums.OrderStatus, actor enums.ActorRole) error {
	if !to.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown order status %q", to)
	}
	actors, ok := allowedActors[edge{from, to}]
	if !ok {
		return pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot move order from %s to %s", from, to).
			WithDetails(map[string]any{"from": from, "to": to, "allowed": NextStatuses(from)})
	}
	for _, allowed := range actors {
		if allowed == actor {
			return nil
		}
	}
	if actor == enums.ActorRoleCustomer && to == enums.OrderStatusCancelled {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "orders can only be cancelled while pending")
	}
	return pkgerrors.Newf(pkgerrors.CodeForbidden, "%s may not move order to %s", actor, to)
}
