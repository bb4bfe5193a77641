package cart

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/homeplate-backend/internal/pricing"
	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
)

// Line is one dish selection in the cart. Option prices are locked in when the line is added.
type Line struct {
	LineID    string          `json:"lineId"`
	DishID    int             `json:"dishId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Spiciness string          `json:"spiciness,omitempty"`
	Toppings  []models.Option `json:"toppings,omitempty"`
	Extras    []models.Option `json:"extras,omitempty"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

func (l *Line) recompute() {
	l.LineTotal = pricing.Line{UnitPrice: l.UnitPrice, Quantity: l.Quantity}.Total()
}

// sameSelection reports whether two lines are the same dish with the same options.
func (l Line) sameSelection(other Line) bool {
	if l.DishID != other.DishID || !strings.EqualFold(l.Spiciness, other.Spiciness) {
		return false
	}
	return sameOptions(l.Toppings, other.Toppings) && sameOptions(l.Extras, other.Extras)
}

func sameOptions(a, b []models.Option) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, opt := range a {
		seen[strings.ToLower(opt.Label)]++
	}
	for _, opt := range b {
		key := strings.ToLower(opt.Label)
		if seen[key] == 0 {
			return false
		}
		seen[key]--
	}
	return true
}

// VendorGroup holds the lines of one vendor in the order they were added.
type VendorGroup struct {
	VendorID   int    `json:"vendorId"`
	VendorName string `json:"vendorName"`
	Items      []Line `json:"items"`
}

// Subtotal sums the group's line totals.
func (g VendorGroup) Subtotal() decimal.Decimal {
	return pricing.Subtotal(g.pricingLines())
}

// Quantity sums the group's line quantities.
func (g VendorGroup) Quantity() int {
	total := 0
	for _, item := range g.Items {
		total += item.Quantity
	}
	return total
}

func (g VendorGroup) pricingLines() []pricing.Line {
	lines := make([]pricing.Line, 0, len(g.Items))
	for _, item := range g.Items {
		lines = append(lines, pricing.Line{UnitPrice: item.UnitPrice, Quantity: item.Quantity})
	}
	return lines
}

// Cart is the persisted shopping cart of one customer.
type Cart struct {
	Groups    []VendorGroup `json:"groups"`
	Zipcode   string        `json:"zipcode,omitempty"`
	Coupon    string        `json:"coupon,omitempty"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Groups) == 0
}

// Lines flattens every vendor group into pricing lines.
func (c *Cart) Lines() []pricing.Line {
	if c == nil {
		return nil
	}
	var lines []pricing.Line
	for _, g := range c.Groups {
		lines = append(lines, g.pricingLines()...)
	}
	return lines
}

// MergedQuantity returns the quantity line would end up with after Add, counting an existing line
// with the same selection.
func (c *Cart) MergedQuantity(vendorID int, line Line) int {
	for _, g := range c.Groups {
		if g.VendorID != vendorID {
			continue
		}
		for _, existing := range g.Items {
			if existing.sameSelection(line) {
				return existing.Quantity + line.Quantity
			}
		}
	}
	return line.Quantity
}

// Add appends line to its vendor's group, creating the group on first use. A line with the same
// dish and options merges into the existing one. It returns the stored line.
func (c *Cart) Add(vendorID int, vendorName string, line Line) Line {
	for gi := range c.Groups {
		group := &c.Groups[gi]
		if group.VendorID != vendorID {
			continue
		}
		for li := range group.Items {
			existing := &group.Items[li]
			if existing.sameSelection(line) {
				existing.Quantity += line.Quantity
				existing.recompute()
				return *existing
			}
		}
		line.recompute()
		group.Items = append(group.Items, line)
		return line
	}
	line.recompute()
	c.Groups = append(c.Groups, VendorGroup{VendorID: vendorID, VendorName: vendorName, Items: []Line{line}})
	return line
}

// SetQuantity changes the quantity of a line. A quantity of zero removes it.
func (c *Cart) SetQuantity(lineID string, quantity int) bool {
	if quantity <= 0 {
		return c.Remove(lineID)
	}
	for gi := range c.Groups {
		for li := range c.Groups[gi].Items {
			item := &c.Groups[gi].Items[li]
			if item.LineID == lineID {
				item.Quantity = quantity
				item.recompute()
				return true
			}
		}
	}
	return false
}

// Remove deletes a line and drops its vendor group when it becomes empty.
func (c *Cart) Remove(lineID string) bool {
	for gi := range c.Groups {
		items := c.Groups[gi].Items
		for li := range items {
			if items[li].LineID != lineID {
				continue
			}
			c.Groups[gi].Items = append(items[:li:li], items[li+1:]...)
			if len(c.Groups[gi].Items) == 0 {
				c.Groups = append(c.Groups[:gi:gi], c.Groups[gi+1:]...)
			}
			return true
		}
	}
	return false
}
