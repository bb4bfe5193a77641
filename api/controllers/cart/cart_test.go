package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/homeplate-backend/api/middleware"
	"github.com/angelmondragon/homeplate-backend/internal/auth"
	cartsvc "github.com/angelmondragon/homeplate-backend/internal/cart"
	"github.com/angelmondragon/homeplate-backend/internal/pricing"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
)

type stubCartService struct {
	view     *cartsvc.View
	err      error
	owner    string
	lastAdd  cartsvc.AddItemInput
	lastLine string
	lastQty  int
	lastCode string
	lastZip  string
	cleared  bool
}

func (s *stubCartService) Get(ctx context.Context, owner string) (*cartsvc.View, error) {
	s.owner = owner
	return s.view, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, owner string, input cartsvc.AddItemInput) (*cartsvc.View, error) {
	s.owner, s.lastAdd = owner, input
	return s.view, s.err
}

func (s *stubCartService) UpdateItem(ctx context.Context, owner, lineID string, quantity int) (*cartsvc.View, error) {
	s.owner, s.lastLine, s.lastQty = owner, lineID, quantity
	return s.view, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, owner, lineID string) (*cartsvc.View, error) {
	s.owner, s.lastLine = owner, lineID
	return s.view, s.err
}

func (s *stubCartService) ApplyCoupon(ctx context.Context, owner, code string) (*cartsvc.View, error) {
	s.owner, s.lastCode = owner, code
	return s.view, s.err
}

func (s *stubCartService) SetZipcode(ctx context.Context, owner, zipcode string) (*cartsvc.View, error) {
	s.owner, s.lastZip = owner, zipcode
	return s.view, s.err
}

func (s *stubCartService) Clear(ctx context.Context, owner string) error {
	s.owner, s.cleared = owner, true
	return s.err
}

func (s *stubCartService) Load(ctx context.Context, owner string) (*cartsvc.Cart, error) {
	return s.view.Cart, s.err
}

func (s *stubCartService) Rates() pricing.Rates {
	return pricing.DefaultRates()
}

func sampleView() *cartsvc.View {
	return &cartsvc.View{
		Cart:  &cartsvc.Cart{},
		Quote: pricing.Breakdown{Subtotal: decimal.NewFromInt(20), Final: decimal.NewFromInt(25)},
	}
}

func withSession(req *http.Request, userID int) *http.Request {
	return req.WithContext(middleware.WithSession(req.Context(), &auth.Session{UserID: userID}))
}

func withLineID(req *http.Request, id string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add("lineId", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestCartFetchRequiresSession(t *testing.T) {
	resp := httptest.NewRecorder()
	CartFetch(&stubCartService{view: sampleView()}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartFetchSuccess(t *testing.T) {
	svc := &stubCartService{view: sampleView()}
	req := withSession(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), 12)
	resp := httptest.NewRecorder()
	CartFetch(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.owner != "user:12" {
		t.Fatalf("expected owner user:12 got %s", svc.owner)
	}
	var envelope struct {
		Data struct {
			Quote struct {
				Final json.Number `json:"final"`
			} `json:"quote"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Quote.Final.String() != "25" {
		t.Fatalf("expected final 25 got %s", envelope.Data.Quote.Final)
	}
}

func TestCartAddItem(t *testing.T) {
	svc := &stubCartService{view: sampleView()}
	body := `{"dishId":3,"quantity":2,"spiciness":"Hot","toppings":["Cheese"]}`
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)), 1)
	resp := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastAdd.DishID != 3 || svc.lastAdd.Quantity != 2 || len(svc.lastAdd.Toppings) != 1 {
		t.Fatalf("unexpected input %+v", svc.lastAdd)
	}
}

func TestCartAddItemRejectsBadQuantity(t *testing.T) {
	svc := &stubCartService{view: sampleView()}
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"dishId":3,"quantity":0}`)), 1)
	resp := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartUpdateItemAllowsZero(t *testing.T) {
	svc := &stubCartService{view: sampleView()}
	req := withSession(httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/abc", strings.NewReader(`{"quantity":0}`)), 1)
	req = withLineID(req, "abc")
	resp := httptest.NewRecorder()
	CartUpdateItem(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastLine != "abc" || svc.lastQty != 0 {
		t.Fatalf("unexpected update %s %d", svc.lastLine, svc.lastQty)
	}
}

func TestCartRemoveItemNotFound(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")}
	req := withLineID(withSession(httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/zzz", nil), 1), "zzz")
	resp := httptest.NewRecorder()
	CartRemoveItem(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestCartApplyCouponInvalid(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon code")}
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/coupon", strings.NewReader(`{"code":"BOGUS"}`)), 1)
	resp := httptest.NewRecorder()
	CartApplyCoupon(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.lastCode != "BOGUS" {
		t.Fatalf("expected code forwarded, got %q", svc.lastCode)
	}
}

func TestCartSetZipcodeAndClear(t *testing.T) {
	svc := &stubCartService{view: sampleView()}
	req := withSession(httptest.NewRequest(http.MethodPut, "/api/v1/cart/zipcode", strings.NewReader(`{"zipcode":"78701"}`)), 1)
	resp := httptest.NewRecorder()
	CartSetZipcode(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || svc.lastZip != "78701" {
		t.Fatalf("unexpected zipcode result %d %q", resp.Code, svc.lastZip)
	}

	resp = httptest.NewRecorder()
	CartClear(svc, nil).ServeHTTP(resp, withSession(httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil), 1))
	if resp.Code != http.StatusNoContent || !svc.cleared {
		t.Fatalf("expected cleared cart, got %d", resp.Code)
	}
}
