package cart

import (
	"context"

	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
)

// CatalogReader loads the dishes and vendors a cart refers to.
type CatalogReader interface {
	GetDish(ctx context.Context, id int) (*models.Dish, error)
	GetVendor(ctx context.Context, id int) (*models.Vendor, error)
}
