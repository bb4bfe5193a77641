package catalog

import (
	"context"
	"strconv"
	"strings"

	"github.com/angelmondragon/homeplate-backend/pkg/content"
	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
)

func (s *service) CreateDish(ctx context.Context, vendorID int, input DishInput) (*models.Dish, error) {
	if vendorID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor profile required")
	}
	fields := fieldErrors{}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		fields["name"] = "required"
	}
	checkPrice("price", input.Price, fields)
	checkOptionGroups("toppings", input.Toppings, fields)
	checkOptionGroups("extras", input.Extras, fields)
	if input.Servings < 0 {
		fields["servings"] = "must not be negative"
	}
	if err := fields.err("invalid dish"); err != nil {
		return nil, err
	}

	available := true
	if input.Available != nil {
		available = *input.Available
	}
	payload := map[string]any{
		"name":            name,
		"description":     strings.TrimSpace(input.Description),
		"price":           input.Price,
		"category":        strings.TrimSpace(input.Category),
		"subcategory":     strings.TrimSpace(input.Subcategory),
		"servings":        input.Servings,
		"preparationTime": strings.TrimSpace(input.PrepTime),
		"spiciness":       trimAll(input.Spiciness),
		"toppings":        nonNilGroups(input.Toppings),
		"extras":          nonNilGroups(input.Extras),
		"ingredients":     trimAll(input.Ingredients),
		"vendorId":        vendorID,
		"available":       available,
		"reviews":         []models.Review{},
		"rating":          0,
		"weeklySales":     0,
	}
	if input.ImageID != nil {
		payload["image"] = *input.ImageID
	}

	var dish models.Dish
	if err := s.store.Create(ctx, content.CollectionDishes, payload, &dish); err != nil {
		return nil, err
	}
	ctx = s.logg.WithVendorID(ctx, strconv.Itoa(vendorID))
	ctx = s.logg.WithDishID(ctx, dish.ID)
	s.logg.Info(ctx, "dish.created")
	return &dish, nil
}

func (s *service) UpdateDish(ctx context.Context, vendorID, dishID int, input DishUpdate) (*models.Dish, error) {
	if _, err := s.ownedDish(ctx, vendorID, dishID); err != nil {
		return nil, err
	}

	fields := fieldErrors{}
	payload := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			fields["name"] = "required"
		}
		payload["name"] = name
	}
	if input.Description != nil {
		payload["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		checkPrice("price", *input.Price, fields)
		payload["price"] = *input.Price
	}
	if input.Category != nil {
		payload["category"] = strings.TrimSpace(*input.Category)
	}
	if input.Subcategory != nil {
		payload["subcategory"] = strings.TrimSpace(*input.Subcategory)
	}
	if input.Servings != nil {
		if *input.Servings < 0 {
			fields["servings"] = "must not be negative"
		}
		payload["servings"] = *input.Servings
	}
	if input.PrepTime != nil {
		payload["preparationTime"] = strings.TrimSpace(*input.PrepTime)
	}
	if input.Spiciness != nil {
		payload["spiciness"] = trimAll(*input.Spiciness)
	}
	if input.Toppings != nil {
		checkOptionGroups("toppings", *input.Toppings, fields)
		payload["toppings"] = nonNilGroups(*input.Toppings)
	}
	if input.Extras != nil {
		checkOptionGroups("extras", *input.Extras, fields)
		payload["extras"] = nonNilGroups(*input.Extras)
	}
	if input.Ingredients != nil {
		payload["ingredients"] = trimAll(*input.Ingredients)
	}
	if input.ImageID != nil {
		payload["image"] = *input.ImageID
	}
	if err := fields.err("invalid dish"); err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return s.GetDish(ctx, dishID)
	}

	var dish models.Dish
	if err := s.store.Update(ctx, content.CollectionDishes, dishID, payload, &dish); err != nil {
		return nil, err
	}
	return &dish, nil
}

// SetDishAvailability hides or shows a dish. Dishes are never deleted so past orders keep
// their references.
func (s *service) SetDishAvailability(ctx context.Context, vendorID, dishID int, available bool) (*models.Dish, error) {
	if _, err := s.ownedDish(ctx, vendorID, dishID); err != nil {
		return nil, err
	}
	var dish models.Dish
	if err := s.store.Update(ctx, content.CollectionDishes, dishID, map[string]any{"available": available}, &dish); err != nil {
		return nil, err
	}
	return &dish, nil
}

// ownedDish loads a dish and hides it from vendors that do not own it.
func (s *service) ownedDish(ctx context.Context, vendorID, dishID int) (*models.Dish, error) {
	if vendorID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor profile required")
	}
	dish, err := s.GetDish(ctx, dishID)
	if err != nil {
		return nil, err
	}
	if dish.VendorID != vendorID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dish not found")
	}
	return dish, nil
}

func nonNilGroups(groups []models.OptionGroup) []models.OptionGroup {
	if groups == nil {
		return []models.OptionGroup{}
	}
	return groups
}
