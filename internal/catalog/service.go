package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/homeplate-backend/pkg/content"
	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
	"github.com/angelmondragon/homeplate-backend/pkg/logger"
	"github.com/angelmondragon/homeplate-backend/pkg/pagination"
)

type contentStore interface {
	List(ctx context.Context, collection string, q *content.Query, dest any) (*content.Pagination, error)
	Get(ctx context.Context, collection string, id int, q *content.Query, dest any) error
	Create(ctx context.Context, collection string, payload any, dest any) error
	Update(ctx context.Context, collection string, id int, payload any, dest any) error
}

// Service exposes dish and vendor browsing plus vendor self-management.
type Service interface {
	ListVendors(ctx context.Context, filter VendorFilter) ([]models.Vendor, *content.Pagination, error)
	GetVendorDetail(ctx context.Context, vendorID int) (*VendorDetail, error)
	ListDishes(ctx context.Context, filter DishFilter) ([]models.Dish, *content.Pagination, error)
	GetDish(ctx context.Context, id int) (*models.Dish, error)
	GetVendor(ctx context.Context, id int) (*models.Vendor, error)

	VendorForOwner(ctx context.Context, email string) (*models.Vendor, error)
	RegisterVendor(ctx context.Context, owner Owner, input RegisterVendorInput) (*models.Vendor, error)
	UpdateVendorSettings(ctx context.Context, vendorID int, input SettingsInput) (*models.Vendor, error)
	UpdatePaymentMethod(ctx context.Context, vendorID int, input PaymentMethodInput) (*models.Vendor, error)
	VerifyVendor(ctx context.Context, vendorID int, verified bool) (*models.Vendor, error)

	CreateDish(ctx context.Context, vendorID int, input DishInput) (*models.Dish, error)
	UpdateDish(ctx context.Context, vendorID, dishID int, input DishUpdate) (*models.Dish, error)
	SetDishAvailability(ctx context.Context, vendorID, dishID int, available bool) (*models.Dish, error)
}

type service struct {
	store contentStore
	logg  *logger.Logger
}

// NewService builds the catalog service over the content backend.
func NewService(store contentStore, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("content store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{store: store, logg: logg}, nil
}

func (s *service) ListVendors(ctx context.Context, filter VendorFilter) ([]models.Vendor, *content.Pagination, error) {
	q := content.NewQuery()
	if filter.VerifiedOnly {
		q.Eq("verified", true)
	}
	if cuisine := strings.TrimSpace(filter.Cuisine); cuisine != "" {
		q.Where("cuisine", content.OpEqi, cuisine)
	}
	if city := strings.TrimSpace(filter.City); city != "" {
		q.Where("location.city", content.OpEqi, city)
	}
	if zip := strings.TrimSpace(filter.Zipcode); zip != "" {
		q.Eq("location.zipcode", zip)
	}
	if filter.TopRated {
		q.Where("rating", content.OpGte, topRatedThreshold).Sort("rating", true)
	}
	page := filter.Page.Normalize()
	q.Populate("logo", "cover").Sort("storeName", false).Page(page.Page, page.PageSize)

	var vendors []models.Vendor
	meta, err := s.store.List(ctx, content.CollectionVendors, q, &vendors)
	if err != nil {
		return nil, nil, err
	}
	return vendors, meta, nil
}

func (s *service) GetVendorDetail(ctx context.Context, vendorID int) (*VendorDetail, error) {
	vendor, err := s.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	q := content.NewQuery().
		Eq("vendorId", vendor.ID).
		Eq("available", true).
		Populate("image").
		Sort("name", false).
		Page(1, pagination.MaxPageSize)
	var dishes []models.Dish
	if _, err := s.store.List(ctx, content.CollectionDishes, q, &dishes); err != nil {
		return nil, err
	}
	if dishes == nil {
		dishes = []models.Dish{}
	}
	return &VendorDetail{Vendor: *vendor, Dishes: dishes}, nil
}

func (s *service) ListDishes(ctx context.Context, filter DishFilter) ([]models.Dish, *content.Pagination, error) {
	q := content.NewQuery()
	if filter.VendorID > 0 {
		q.Eq("vendorId", filter.VendorID)
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		q.Where("category", content.OpEqi, category)
	}
	if filter.AvailableOnly {
		q.Eq("available", true)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		q.Where("name", content.OpContainsi, search)
	}
	if filter.TopRated {
		q.Where("rating", content.OpGte, topRatedThreshold).Sort("rating", true)
	}
	page := filter.Page.Normalize()
	q.Populate("image").Sort("name", false).Page(page.Page, page.PageSize)

	var dishes []models.Dish
	meta, err := s.store.List(ctx, content.CollectionDishes, q, &dishes)
	if err != nil {
		return nil, nil, err
	}
	return dishes, meta, nil
}

func (s *service) GetDish(ctx context.Context, id int) (*models.Dish, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dish id required")
	}
	var dish models.Dish
	if err := s.store.Get(ctx, content.CollectionDishes, id, content.NewQuery().Populate(), &dish); err != nil {
		return nil, err
	}
	return &dish, nil
}

func (s *service) GetVendor(ctx context.Context, id int) (*models.Vendor, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	var vendor models.Vendor
	if err := s.store.Get(ctx, content.CollectionVendors, id, content.NewQuery().Populate("logo", "cover"), &vendor); err != nil {
		return nil, err
	}
	return &vendor, nil
}
