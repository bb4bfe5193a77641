package reviews

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
)

// NextDishRating folds one more score into a running average over n reviews.
func NextDishRating(current decimal.Decimal, n int, score int) decimal.Decimal {
	if n <= 0 {
		return decimal.NewFromInt(int64(score))
	}
	count := decimal.NewFromInt(int64(n))
	return current.Mul(count).Add(decimal.NewFromInt(int64(score))).Div(count.Add(decimal.NewFromInt(1)))
}

// MeanRating averages every review rating across dishes. No reviews yields zero.
func MeanRating(dishes []models.Dish) decimal.Decimal {
	sum := int64(0)
	count := int64(0)
	for _, d := range dishes {
		for _, r := range d.Reviews {
			sum += int64(r.Rating)
			count++
		}
	}
	if count == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(sum).Div(decimal.NewFromInt(count))
}
