package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
)

const topRatedThreshold = 4

var weekdays = map[string]struct{}{
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {},
}

type fieldErrors map[string]string

func (f fieldErrors) err(message string) error {
	if len(f) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(map[string]string(f))
}

// normalizeHours lowercases day keys and checks opening times are HH:MM with from before to.
func normalizeHours(hours map[string]models.DayHours, fields fieldErrors) map[string]models.DayHours {
	out := make(map[string]models.DayHours, len(hours))
	for day, h := range hours {
		key := strings.ToLower(strings.TrimSpace(day))
		if _, ok := weekdays[key]; !ok {
			fields["hours."+day] = "unknown day"
			continue
		}
		if !h.Open {
			out[key] = models.DayHours{Open: false}
			continue
		}
		from, errFrom := time.Parse("15:04", strings.TrimSpace(h.From))
		to, errTo := time.Parse("15:04", strings.TrimSpace(h.To))
		if errFrom != nil || errTo != nil {
			fields["hours."+key] = "open days need from and to as HH:MM"
			continue
		}
		if !from.Before(to) {
			fields["hours."+key] = "from must be before to"
			continue
		}
		out[key] = models.DayHours{Open: true, From: from.Format("15:04"), To: to.Format("15:04")}
	}
	return out
}

func checkDeliveryOption(name string, opt models.DeliveryOption, fields fieldErrors) {
	if opt.Fee.IsNegative() {
		fields[name+".fee"] = "must not be negative"
	}
	if opt.MinimumOrder.IsNegative() {
		fields[name+".minimumOrder"] = "must not be negative"
	}
}

func checkPrice(field string, price decimal.Decimal, fields fieldErrors) {
	if !price.IsPositive() {
		fields[field] = "must be greater than zero"
	}
}

// checkOptionGroups requires named groups, unique labels within a group, and non-negative prices.
func checkOptionGroups(field string, groups []models.OptionGroup, fields fieldErrors) {
	for i, g := range groups {
		if strings.TrimSpace(g.Name) == "" {
			fields[field] = "option groups need a name"
			return
		}
		seen := map[string]struct{}{}
		for _, opt := range g.Options {
			label := strings.ToLower(strings.TrimSpace(opt.Label))
			if label == "" {
				fields[field] = "options need a label"
				return
			}
			if _, dup := seen[label]; dup {
				fields[field] = "duplicate option " + opt.Label + " in " + groups[i].Name
				return
			}
			seen[label] = struct{}{}
			if opt.Price.IsNegative() {
				fields[field] = "option prices must not be negative"
				return
			}
		}
	}
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
