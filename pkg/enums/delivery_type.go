package enums

import (
	"fmt"
	"strings"
)

// DeliveryType is how the customer receives an order.
type DeliveryType string

const (
	DeliveryTypeDelivery DeliveryType = "delivery"
	DeliveryTypePickup   DeliveryType = "pickup"
)

// IsValid reports whether the value is a known DeliveryType.
func (d DeliveryType) IsValid() bool {
	return d == DeliveryTypeDelivery || d == DeliveryTypePickup
}

// ParseDeliveryType converts raw input into a DeliveryType.
func ParseDeliveryType(value string) (DeliveryType, error) {
	candidate := DeliveryType(strings.ToLower(strings.TrimSpace(value)))
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid delivery type %q", value)
	}
	return candidate, nil
}
