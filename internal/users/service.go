package users

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/homeplate-backend/pkg/content"
	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
	"github.com/angelmondragon/homeplate-backend/pkg/logger"
)

const (
	maxSavedAddresses = 10
	maxRefundDetails  = 1000
)

type userStore interface {
	GetUser(ctx context.Context, id int) (*models.User, error)
	UpdateUser(ctx context.Context, id int, fields map[string]any) (*models.User, error)
	ListUsers(ctx context.Context, q *content.Query) ([]models.User, error)
	DeleteUser(ctx context.Context, id int) error
}

type locker interface {
	WithLock(ctx context.Context, fn func(ctx context.Context) error, parts ...string) error
}

// identityCache drops the cached account after it changes so sessions see fresh data.
type identityCache interface {
	Forget(ctx context.Context, userID int) error
}

// AddressInput is a saved delivery address.
type AddressInput struct {
	Name    string `json:"name" validate:"required,max=120"`
	Phone   string `json:"phone" validate:"required,max=40"`
	Address string `json:"address" validate:"required,max=500"`
}

// Service manages account-level data and admin accounts.
type Service interface {
	ListAddresses(ctx context.Context, userID int) ([]models.SavedAddress, error)
	AddAddress(ctx context.Context, userID int, input AddressInput) ([]models.SavedAddress, error)
	DeleteAddress(ctx context.Context, userID int, addressID string) ([]models.SavedAddress, error)
	UpdateRefundDetails(ctx context.Context, userID int, details string) (*models.User, error)

	ListAdmins(ctx context.Context, verified *bool) ([]models.User, error)
	VerifyAdmin(ctx context.Context, actor models.User, targetID int) (*models.User, error)
	DeleteAdmin(ctx context.Context, actor models.User, targetID int) error
}

type service struct {
	store    userStore
	locks    locker
	identity identityCache
	logg     *logger.Logger
}

// NewService builds the users service.
func NewService(store userStore, locks locker, identity identityCache, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("user store required")
	}
	if locks == nil {
		return nil, fmt.Errorf("locker required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{store: store, locks: locks, identity: identity, logg: logg}, nil
}

func (s *service) ListAddresses(ctx context.Context, userID int) ([]models.SavedAddress, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return nonNil(user.Addresses), nil
}

func (s *service) AddAddress(ctx context.Context, userID int, input AddressInput) ([]models.SavedAddress, error) {
	addr := models.SavedAddress{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(input.Name),
		Phone:   strings.TrimSpace(input.Phone),
		Address: strings.TrimSpace(input.Address),
	}
	fields := map[string]string{}
	if addr.Name == "" {
		fields["name"] = "required"
	}
	if addr.Phone == "" {
		fields["phone"] = "required"
	}
	if addr.Address == "" {
		fields["address"] = "required"
	}
	if len(fields) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid address").WithDetails(fields)
	}

	var out []models.SavedAddress
	err := s.mutateAddresses(ctx, userID, func(current []models.SavedAddress) ([]models.SavedAddress, error) {
		if len(current) >= maxSavedAddresses {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "at most %d addresses can be saved", maxSavedAddresses)
		}
		out = append(append([]models.SavedAddress{}, current...), addr)
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) DeleteAddress(ctx context.Context, userID int, addressID string) ([]models.SavedAddress, error) {
	addressID = strings.TrimSpace(addressID)
	if addressID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address id required")
	}
	var out []models.SavedAddress
	err := s.mutateAddresses(ctx, userID, func(current []models.SavedAddress) ([]models.SavedAddress, error) {
		out = make([]models.SavedAddress, 0, len(current))
		for _, a := range current {
			if a.ID != addressID {
				out = append(out, a)
			}
		}
		if len(out) == len(current) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// mutateAddresses rewrites the address list under a per-user lock since the backend stores it
// as a single field.
func (s *service) mutateAddresses(ctx context.Context, userID int, change func([]models.SavedAddress) ([]models.SavedAddress, error)) error {
	return s.locks.WithLock(ctx, func(ctx context.Context) error {
		user, err := s.load(ctx, userID)
		if err != nil {
			return err
		}
		next, err := change(nonNil(user.Addresses))
		if err != nil {
			return err
		}
		if _, err := s.store.UpdateUser(ctx, userID, map[string]any{"addresses": next}); err != nil {
			return err
		}
		s.forget(ctx, userID)
		return nil
	}, "user", strconv.Itoa(userID), "addresses")
}

func (s *service) UpdateRefundDetails(ctx context.Context, userID int, details string) (*models.User, error) {
	details = strings.TrimSpace(details)
	if len(details) > maxRefundDetails {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "refund details must be at most %d characters", maxRefundDetails)
	}
	if _, err := s.load(ctx, userID); err != nil {
		return nil, err
	}
	user, err := s.store.UpdateUser(ctx, userID, map[string]any{"refundDetails": details})
	if err != nil {
		return nil, err
	}
	s.forget(ctx, userID)
	return user, nil
}

func (s *service) ListAdmins(ctx context.Context, verified *bool) ([]models.User, error) {
	q := content.NewQuery().Eq("isAdmin", true).Sort("email", false)
	if verified != nil {
		q.Eq("adminVerified", *verified)
	}
	admins, err := s.store.ListUsers(ctx, q)
	if err != nil {
		return nil, err
	}
	return admins, nil
}

func (s *service) VerifyAdmin(ctx context.Context, actor models.User, targetID int) (*models.User, error) {
	target, err := s.adminTarget(ctx, actor, targetID)
	if err != nil {
		return nil, err
	}
	if target.AdminVerified {
		return target, nil
	}
	user, err := s.store.UpdateUser(ctx, targetID, map[string]any{"adminVerified": true})
	if err != nil {
		return nil, err
	}
	s.forget(ctx, targetID)
	ctx = s.logg.WithUserID(ctx, strconv.Itoa(actor.ID))
	ctx = s.logg.WithField(ctx, "target_user_id", targetID)
	s.logg.Info(ctx, "admin.verified")
	return user, nil
}

func (s *service) DeleteAdmin(ctx context.Context, actor models.User, targetID int) error {
	if actor.ID == targetID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admins cannot delete their own account")
	}
	if _, err := s.adminTarget(ctx, actor, targetID); err != nil {
		return err
	}
	if err := s.store.DeleteUser(ctx, targetID); err != nil {
		return err
	}
	s.forget(ctx, targetID)
	ctx = s.logg.WithUserID(ctx, strconv.Itoa(actor.ID))
	ctx = s.logg.WithField(ctx, "target_user_id", targetID)
	s.logg.Info(ctx, "admin.deleted")
	return nil
}

// adminTarget enforces that only the main admin manages other admin accounts.
func (s *service) adminTarget(ctx context.Context, actor models.User, targetID int) (*models.User, error) {
	if !actor.IsMainAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the main admin can manage admins")
	}
	target, err := s.load(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !target.IsAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "admin not found")
	}
	return target, nil
}

func (s *service) load(ctx context.Context, userID int) (*models.User, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	return s.store.GetUser(ctx, userID)
}

func (s *service) forget(ctx context.Context, userID int) {
	if s.identity == nil {
		return
	}
	if err := s.identity.Forget(ctx, userID); err != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, strconv.Itoa(userID)), "identity cache invalidation failed: "+err.Error())
	}
}

func nonNil(addrs []models.SavedAddress) []models.SavedAddress {
	if addrs == nil {
		return []models.SavedAddress{}
	}
	return addrs
}
