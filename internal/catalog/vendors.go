package catalog

import (
	"context"
	"strconv"
	"strings"

	"github.com/angelmondragon/homeplate-backend/pkg/content"
	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	"github.com/angelmondragon/homeplate-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
)

// VendorForOwner finds the vendor profile registered to email.
func (s *service) VendorForOwner(ctx context.Context, email string) (*models.Vendor, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "owner email required")
	}
	q := content.NewQuery().Where("email", content.OpEqi, email).Populate("logo", "cover").Page(1, 1)
	var vendors []models.Vendor
	if _, err := s.store.List(ctx, content.CollectionVendors, q, &vendors); err != nil {
		return nil, err
	}
	if len(vendors) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor profile not found")
	}
	return &vendors[0], nil
}

func (s *service) RegisterVendor(ctx context.Context, owner Owner, input RegisterVendorInput) (*models.Vendor, error) {
	fields := fieldErrors{}
	storeName := strings.TrimSpace(input.StoreName)
	if storeName == "" {
		fields["storeName"] = "required"
	}
	if err := fields.err("invalid vendor profile"); err != nil {
		return nil, err
	}

	existing, err := s.VendorForOwner(ctx, owner.Email)
	if err == nil && existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a vendor profile already exists for this account").
			WithDetails(map[string]any{"vendorId": existing.ID})
	}
	if err != nil && !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		return nil, err
	}

	payload := map[string]any{
		"storeName":       storeName,
		"username":        strings.TrimSpace(owner.Username),
		"email":           strings.ToLower(strings.TrimSpace(owner.Email)),
		"bio":             strings.TrimSpace(input.Bio),
		"cuisine":         strings.TrimSpace(input.Cuisine),
		"location":        input.Location,
		"deliveryOptions": models.DeliveryOptions{},
		"rating":          0,
		"weeklyItemsSold": 0,
		"verified":        false,
	}
	var vendor models.Vendor
	if err := s.store.Create(ctx, content.CollectionVendors, payload, &vendor); err != nil {
		return nil, err
	}
	ctx = s.logg.WithVendorID(ctx, strconv.Itoa(vendor.ID))
	s.logg.Info(ctx, "vendor.registered")
	return &vendor, nil
}

func (s *service) UpdateVendorSettings(ctx context.Context, vendorID int, input SettingsInput) (*models.Vendor, error) {
	fields := fieldErrors{}
	payload := map[string]any{}
	if input.StoreName != nil {
		name := strings.TrimSpace(*input.StoreName)
		if name == "" {
			fields["storeName"] = "required"
		}
		payload["storeName"] = name
	}
	if input.Bio != nil {
		payload["bio"] = strings.TrimSpace(*input.Bio)
	}
	if input.Cuisine != nil {
		payload["cuisine"] = strings.TrimSpace(*input.Cuisine)
	}
	if input.LogoID != nil {
		payload["logo"] = *input.LogoID
	}
	if input.CoverID != nil {
		payload["cover"] = *input.CoverID
	}
	if input.Location != nil {
		payload["location"] = *input.Location
	}
	if input.Delivery != nil {
		checkDeliveryOption("deliveryOptions.localDelivery", input.Delivery.LocalDelivery, fields)
		checkDeliveryOption("deliveryOptions.pickup", input.Delivery.Pickup, fields)
		payload["deliveryOptions"] = *input.Delivery
	}
	if input.Hours != nil {
		payload["hours"] = normalizeHours(input.Hours, fields)
	}
	if err := fields.err("invalid vendor settings"); err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return s.GetVendor(ctx, vendorID)
	}
	return s.updateVendor(ctx, vendorID, payload)
}

func (s *service) UpdatePaymentMethod(ctx context.Context, vendorID int, input PaymentMethodInput) (*models.Vendor, error) {
	method, err := enums.ParsePaymentMethod(input.Method)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method").
			WithDetails(map[string]string{"paymentMethod": "must be paypal or cash"})
	}
	payload := map[string]any{"paymentMethod": method, "paypalEmail": ""}
	if method == enums.PaymentMethodPaypal {
		email := strings.TrimSpace(input.PaypalEmail)
		if email == "" || !strings.Contains(email, "@") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "a PayPal email is required").
				WithDetails(map[string]string{"paypalEmail": "required"})
		}
		payload["paypalEmail"] = email
	}
	return s.updateVendor(ctx, vendorID, payload)
}

func (s *service) VerifyVendor(ctx context.Context, vendorID int, verified bool) (*models.Vendor, error) {
	if _, err := s.GetVendor(ctx, vendorID); err != nil {
		return nil, err
	}
	vendor, err := s.updateVendor(ctx, vendorID, map[string]any{"verified": verified})
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithVendorID(ctx, strconv.Itoa(vendorID))
	ctx = s.logg.WithField(ctx, "verified", verified)
	s.logg.Info(ctx, "vendor.verification_changed")
	return vendor, nil
}

func (s *service) updateVendor(ctx context.Context, vendorID int, payload map[string]any) (*models.Vendor, error) {
	if vendorID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor profile required")
	}
	var vendor models.Vendor
	if err := s.store.Update(ctx, content.CollectionVendors, vendorID, payload, &vendor); err != nil {
		return nil, err
	}
	return &vendor, nil
}
