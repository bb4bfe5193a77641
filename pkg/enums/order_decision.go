package enums

import (
	"fmt"
	"strings"
)

// VendorOrderDecision is the answer a vendor gives to a pending order.
type VendorOrderDecision string

const (
	VendorOrderDecisionAccept  VendorOrderDecision = "accept"
	VendorOrderDecisionDecline VendorOrderDecision = "decline"
)

// Status is the order status the decision moves the order to.
func (d VendorOrderDecision) Status() OrderStatus {
	if d == VendorOrderDecisionAccept {
		return OrderStatusAccepted
	}
	return OrderStatusDeclined
}

// ParseVendorOrderDecision accepts "reject" as a synonym of decline.
func ParseVendorOrderDecision(value string) (VendorOrderDecision, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "accept":
		return VendorOrderDecisionAccept, nil
	case "decline", "reject":
		return VendorOrderDecisionDecline, nil
	}
	return "", fmt.Errorf("invalid vendor order decision %q", value)
}
