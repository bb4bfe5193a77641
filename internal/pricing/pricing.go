package pricing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/homeplate-backend/pkg/config"
)

// ErrInvalidCoupon is returned when a coupon code is not in the coupon table.
var ErrInvalidCoupon = errors.New("invalid coupon code")

var hundred = decimal.NewFromInt(100)

// coupons maps a normalized coupon code to its percent discount.
var coupons = map[string]decimal.Decimal{
	"SAVE10": decimal.NewFromInt(10),
	"SAVE20": decimal.NewFromInt(20),
}

// Line is one priced cart line. UnitPrice already includes any selected option prices.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Total returns UnitPrice × Quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Rates are the inputs shared by every cart.
type Rates struct {
	TaxRatePercent    decimal.Decimal
	ShippingFee       decimal.Decimal
	FreeShippingAbove decimal.Decimal
}

// RatesFromConfig reads the configured tax rate and shipping rules.
func RatesFromConfig(cfg config.PricingConfig) Rates {
	return Rates{
		TaxRatePercent:    cfg.TaxRate(),
		ShippingFee:       cfg.Shipping(),
		FreeShippingAbove: cfg.FreeShippingAbove(),
	}
}

// DefaultRates mirrors the storefront defaults: 18% tax, 4.99 shipping, free above 100.
func DefaultRates() Rates {
	return Rates{
		TaxRatePercent:    decimal.NewFromInt(18),
		ShippingFee:       decimal.RequireFromString("4.99"),
		FreeShippingAbove: hundred,
	}
}

// Breakdown is the full price computation for a cart. Values keep full precision.
type Breakdown struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	Shipping        decimal.Decimal `json:"shipping"`
	ShippingWaived  bool            `json:"shippingWaived"`
	TotalWithTax    decimal.Decimal `json:"totalWithTax"`
	Coupon          string          `json:"coupon,omitempty"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	Discount        decimal.Decimal `json:"discount"`
	Final           decimal.Decimal `json:"final"`
}

// Rounded returns the breakdown rounded to cents for presentation.
func (b Breakdown) Rounded() Breakdown {
	out := b
	out.Subtotal = b.Subtotal.Round(2)
	out.Tax = b.Tax.Round(2)
	out.Shipping = b.Shipping.Round(2)
	out.TotalWithTax = b.TotalWithTax.Round(2)
	out.Discount = b.Discount.Round(2)
	out.Final = b.Final.Round(2)
	return out
}

// UnitPrice folds selected option prices into a dish's base price.
func UnitPrice(base decimal.Decimal, optionPrices ...decimal.Decimal) decimal.Decimal {
	total := base
	for _, price := range optionPrices {
		total = total.Add(price)
	}
	return total
}

// Subtotal sums UnitPrice × Quantity over lines.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line.Total())
	}
	return sum
}

// Tax applies a percentage rate to an amount.
func Tax(amount, ratePercent decimal.Decimal) decimal.Decimal {
	return amount.Mul(ratePercent).Div(hundred)
}

// CouponPercent looks up the percent discount for code. Unknown codes yield zero and ErrInvalidCoupon.
func CouponPercent(code string) (decimal.Decimal, error) {
	pct, ok := coupons[NormalizeCoupon(code)]
	if !ok {
		return decimal.Zero, ErrInvalidCoupon
	}
	return pct, nil
}

// NormalizeCoupon trims and upper-cases a coupon code.
func NormalizeCoupon(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Quote computes the cart breakdown. An empty coupon applies no discount. An unrecognized coupon
// also applies no discount and returns ErrInvalidCoupon alongside a fully populated breakdown.
func Quote(lines []Line, rates Rates, coupon string) (Breakdown, error) {
	var b Breakdown
	b.Subtotal = Subtotal(lines)
	b.Tax = Tax(b.Subtotal, rates.TaxRatePercent)

	empty := totalQuantity(lines) == 0
	b.ShippingWaived = empty || b.Subtotal.GreaterThan(rates.FreeShippingAbove)
	b.Shipping = rates.ShippingFee
	if b.ShippingWaived {
		b.Shipping = decimal.Zero
	}
	b.TotalWithTax = b.Subtotal.Add(b.Tax).Add(b.Shipping)

	var couponErr error
	b.DiscountPercent = decimal.Zero
	if strings.TrimSpace(coupon) != "" {
		pct, err := CouponPercent(coupon)
		if err != nil {
			couponErr = err
		} else {
			b.Coupon = NormalizeCoupon(coupon)
			b.DiscountPercent = pct
		}
	}
	b.Discount = b.TotalWithTax.Mul(b.DiscountPercent).Div(hundred)
	b.Final = b.TotalWithTax.Sub(b.Discount)
	return b, couponErr
}

func totalQuantity(lines []Line) int {
	total := 0
	for _, line := range lines {
		if line.Quantity > 0 {
			total += line.Quantity
		}
	}
	return total
}
