package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/homeplate-backend/api/middleware"
	"github.com/angelmondragon/homeplate-backend/internal/auth"
	"github.com/angelmondragon/homeplate-backend/internal/catalog"
	"github.com/angelmondragon/homeplate-backend/internal/users"
	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	"github.com/angelmondragon/homeplate-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
)

type stubUsers struct {
	users.Service
	verifiedFilter *bool
	actor          models.User
	target         int
	deleted        bool
	err            error
}

func (s *stubUsers) ListAdmins(ctx context.Context, verified *bool) ([]models.User, error) {
	s.verifiedFilter = verified
	return []models.User{{ID: 1, IsAdmin: true}}, s.err
}

func (s *stubUsers) VerifyAdmin(ctx context.Context, actor models.User, targetID int) (*models.User, error) {
	s.actor, s.target = actor, targetID
	if s.err != nil {
		return nil, s.err
	}
	return &models.User{ID: targetID, IsAdmin: true, AdminVerified: true}, nil
}

func (s *stubUsers) DeleteAdmin(ctx context.Context, actor models.User, targetID int) error {
	s.actor, s.target = actor, targetID
	if s.err != nil {
		return s.err
	}
	s.deleted = true
	return nil
}

type stubCatalog struct {
	catalog.Service
	vendorID int
	verified bool
}

func (s *stubCatalog) VerifyVendor(ctx context.Context, vendorID int, verified bool) (*models.Vendor, error) {
	s.vendorID, s.verified = vendorID, verified
	return &models.Vendor{ID: vendorID, Verified: verified}, nil
}

func asMainAdmin(req *http.Request) *http.Request {
	sess := &auth.Session{UserID: 1, Email: "root@example.com", IsAdmin: true, AdminVerified: true, AdminType: enums.AdminTypeMain}
	return req.WithContext(middleware.WithSession(req.Context(), sess))
}

func withParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestListAdminsVerifiedFilter(t *testing.T) {
	svc := &stubUsers{}
	resp := httptest.NewRecorder()
	ListAdmins(svc, nil).ServeHTTP(resp, asMainAdmin(httptest.NewRequest(http.MethodGet, "/api/admin/v1/admins?verified=false", nil)))

	require.Equal(t, http.StatusOK, resp.Code)
	require.NotNil(t, svc.verifiedFilter)
	assert.False(t, *svc.verifiedFilter)

	svc = &stubUsers{}
	resp = httptest.NewRecorder()
	ListAdmins(svc, nil).ServeHTTP(resp, asMainAdmin(httptest.NewRequest(http.MethodGet, "/api/admin/v1/admins", nil)))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Nil(t, svc.verifiedFilter)
}

func TestListAdminsRejectsCustomers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/admins", nil)
	req = req.WithContext(middleware.WithSession(req.Context(), &auth.Session{UserID: 5}))
	resp := httptest.NewRecorder()
	ListAdmins(&stubUsers{}, nil).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestVerifyAdminPassesActor(t *testing.T) {
	svc := &stubUsers{}
	req := asMainAdmin(withParam(httptest.NewRequest(http.MethodPost, "/api/admin/v1/admins/6/verify", nil), "userId", "6"))
	resp := httptest.NewRecorder()
	VerifyAdmin(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 6, svc.target)
	assert.Equal(t, 1, svc.actor.ID)
	assert.Equal(t, enums.AdminTypeMain, svc.actor.AdminType)
}

func TestDeleteAdminForbiddenForSecondary(t *testing.T) {
	svc := &stubUsers{err: pkgerrors.New(pkgerrors.CodeForbidden, "only the main admin manages admins")}
	req := asMainAdmin(withParam(httptest.NewRequest(http.MethodDelete, "/api/admin/v1/admins/6", nil), "userId", "6"))
	resp := httptest.NewRecorder()
	DeleteAdmin(svc, nil).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.False(t, svc.deleted)
}

func TestDeleteAdmin(t *testing.T) {
	svc := &stubUsers{}
	req := asMainAdmin(withParam(httptest.NewRequest(http.MethodDelete, "/api/admin/v1/admins/6", nil), "userId", "6"))
	resp := httptest.NewRecorder()
	DeleteAdmin(svc, nil).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.True(t, svc.deleted)
}

func TestVerifyVendorDefaultsToVerified(t *testing.T) {
	svc := &stubCatalog{}
	req := asMainAdmin(withParam(httptest.NewRequest(http.MethodPost, "/api/admin/v1/vendors/3/verify", nil), "vendorId", "3"))
	resp := httptest.NewRecorder()
	VerifyVendor(svc, nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 3, svc.vendorID)
	assert.True(t, svc.verified)

	body := strings.NewReader(`{"verified":false}`)
	req = asMainAdmin(withParam(httptest.NewRequest(http.MethodPost, "/api/admin/v1/vendors/3/verify", body), "vendorId", "3"))
	resp = httptest.NewRecorder()
	VerifyVendor(svc, nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.False(t, svc.verified)
}
