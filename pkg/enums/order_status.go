package enums

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OrderStatus tracks the lifecycle of a per-vendor order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusDeclined  OrderStatus = "declined"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusAccepted,
	OrderStatusReady,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusDeclined,
}

// orderStatusAliases maps legacy spellings stored by older clients.
var orderStatusAliases = map[string]OrderStatus{
	"in-process": OrderStatusAccepted,
	"in_process": OrderStatusAccepted,
	"inprocess":  OrderStatusAccepted,
	"canceled":   OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition leaves this status.
func (o OrderStatus) IsTerminal() bool {
	switch o {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusDeclined:
		return true
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validOrderStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	if alias, ok := orderStatusAliases[normalized]; ok {
		return alias, nil
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// UnmarshalJSON normalizes stored legacy spellings. Unknown values are kept as-is so a listing
// never fails on one odd record; the state machine rejects them on transition.
func (o *OrderStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("order status: %w", err)
	}
	if parsed, err := ParseOrderStatus(raw); err == nil {
		*o = parsed
		return nil
	}
	*o = OrderStatus(raw)
	return nil
}
