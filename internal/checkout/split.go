package checkout

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/homeplate-backend/internal/cart"
	"github.com/angelmondragon/homeplate-backend/internal/pricing"
	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	"github.com/angelmondragon/homeplate-backend/pkg/enums"
)

// VendorLine is a cart line tagged with the vendor that sells it.
type VendorLine struct {
	VendorID   int
	VendorName string
	Line       cart.Line
}

// VendorBatch holds one vendor's lines in the order they appeared in the cart.
type VendorBatch struct {
	VendorID   int
	VendorName string
	Lines      []cart.Line
}

// Subtotal sums UnitPrice × Quantity within the batch.
func (b VendorBatch) Subtotal() decimal.Decimal {
	lines := make([]pricing.Line, 0, len(b.Lines))
	for _, l := range b.Lines {
		lines = append(lines, pricing.Line{UnitPrice: l.UnitPrice, Quantity: l.Quantity})
	}
	return pricing.Subtotal(lines)
}

// FlattenCart tags every cart line with its vendor.
func FlattenCart(c *cart.Cart) []VendorLine {
	if c == nil {
		return nil
	}
	var out []VendorLine
	for _, g := range c.Groups {
		for _, item := range g.Items {
			out = append(out, VendorLine{VendorID: g.VendorID, VendorName: g.VendorName, Line: item})
		}
	}
	return out
}

// GroupByVendor groups lines by vendor id. Groups keep the order in which each vendor first appears.
func GroupByVendor(lines []VendorLine) []VendorBatch {
	index := make(map[int]int, len(lines))
	var batches []VendorBatch
	for _, l := range lines {
		pos, ok := index[l.VendorID]
		if !ok {
			pos = len(batches)
			index[l.VendorID] = pos
			batches = append(batches, VendorBatch{VendorID: l.VendorID, VendorName: l.VendorName})
		}
		batches[pos].Lines = append(batches[pos].Lines, l.Line)
	}
	return batches
}

// CustomerOrderID derives the correlation id shared by sibling orders of one checkout.
func CustomerOrderID(at time.Time) string {
	return fmt.Sprintf("ORD-%d", at.UnixMilli())
}

// Customer holds the contact fields copied onto every sibling order.
type Customer struct {
	Email   string
	Name    string
	Phone   string
	Address string
}

// OrderDraft is the create payload for one vendor's order.
type OrderDraft struct {
	VendorID        int                  `json:"vendorId"`
	CustomerOrderID string               `json:"customerOrderId"`
	CustomerEmail   string               `json:"customerEmail"`
	CustomerName    string               `json:"customerName"`
	CustomerPhone   string               `json:"customerPhone"`
	Address         string               `json:"address"`
	Dishes          []models.OrderedDish `json:"dishes"`
	Status          enums.OrderStatus    `json:"status"`
	PaymentStatus   enums.PaymentStatus  `json:"paymentStatus"`
	DeliveryType    enums.DeliveryType   `json:"deliveryType"`
	Subtotal        decimal.Decimal      `json:"subtotal"`
	Tax             decimal.Decimal      `json:"tax"`
	DeliveryFee     decimal.Decimal      `json:"deliveryFee"`
	Discount        decimal.Decimal      `json:"discount"`
	Total           decimal.Decimal      `json:"total"`
}

// DraftParams are the checkout-wide inputs applied to every draft.
type DraftParams struct {
	CustomerOrderID string
	Customer        Customer
	DeliveryType    enums.DeliveryType
	TaxRatePercent  decimal.Decimal
	DiscountPercent decimal.Decimal
	// DeliveryFees maps vendor id to the fee for the chosen delivery type.
	DeliveryFees map[int]decimal.Decimal
}

// BuildDrafts emits one pending, unpaid order draft per vendor batch.
func BuildDrafts(batches []VendorBatch, params DraftParams) []OrderDraft {
	drafts := make([]OrderDraft, 0, len(batches))
	for _, batch := range batches {
		subtotal := batch.Subtotal()
		tax := pricing.Tax(subtotal, params.TaxRatePercent)
		fee := params.DeliveryFees[batch.VendorID]
		gross := subtotal.Add(tax).Add(fee)
		discount := gross.Mul(params.DiscountPercent).Div(decimal.NewFromInt(100))

		dishes := make([]models.OrderedDish, 0, len(batch.Lines))
		for _, l := range batch.Lines {
			dishes = append(dishes, models.OrderedDish{
				DishID:    l.DishID,
				Name:      l.Name,
				Quantity:  l.Quantity,
				Spiciness: l.Spiciness,
				Toppings:  l.Toppings,
				Extras:    l.Extras,
				UnitPrice: l.UnitPrice,
				LineTotal: l.LineTotal,
			})
		}

		drafts = append(drafts, OrderDraft{
			VendorID:        batch.VendorID,
			CustomerOrderID: params.CustomerOrderID,
			CustomerEmail:   params.Customer.Email,
			CustomerName:    params.Customer.Name,
			CustomerPhone:   params.Customer.Phone,
			Address:         params.Customer.Address,
			Dishes:          dishes,
			Status:          enums.OrderStatusPending,
			PaymentStatus:   enums.PaymentStatusUnpaid,
			DeliveryType:    params.DeliveryType,
			Subtotal:        subtotal,
			Tax:             tax,
			DeliveryFee:     fee,
			Discount:        discount,
			Total:           gross.Sub(discount),
		})
	}
	return drafts
}

// QuoteDrafts totals the drafts into the breakdown shown to the customer, so the quote always
// equals the sum of the orders that were recorded. Shipping is the sum of vendor delivery fees.
func QuoteDrafts(drafts []OrderDraft, coupon string, discountPercent decimal.Decimal) pricing.Breakdown {
	out := pricing.Breakdown{Coupon: coupon, DiscountPercent: discountPercent}
	for _, d := range drafts {
		out.Subtotal = out.Subtotal.Add(d.Subtotal)
		out.Tax = out.Tax.Add(d.Tax)
		out.Shipping = out.Shipping.Add(d.DeliveryFee)
		out.Discount = out.Discount.Add(d.Discount)
		out.Final = out.Final.Add(d.Total)
	}
	out.TotalWithTax = out.Subtotal.Add(out.Tax).Add(out.Shipping)
	out.ShippingWaived = out.Shipping.IsZero()
	return out
}
