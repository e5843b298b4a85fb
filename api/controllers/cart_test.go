package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/discounts"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubCartService struct {
	result    cart.CartDTO
	err       error
	lastOwner string
	lastOp    string
	lastKey   cart.Key
	lastAdd   cart.AddItemInput
}

func (s *stubCartService) Get(ctx context.Context, owner string) (cart.CartDTO, error) {
	s.lastOwner, s.lastOp = owner, "get"
	return s.result, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, owner string, input cart.AddItemInput) (cart.CartDTO, error) {
	s.lastOwner, s.lastOp, s.lastAdd = owner, "add", input
	return s.result, s.err
}

func (s *stubCartService) RemoveOne(ctx context.Context, owner string, key cart.Key) (cart.CartDTO, error) {
	s.lastOwner, s.lastOp, s.lastKey = owner, "remove_one", key
	return s.result, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, owner string, key cart.Key) (cart.CartDTO, error) {
	s.lastOwner, s.lastOp, s.lastKey = owner, "remove_item", key
	return s.result, s.err
}

func (s *stubCartService) Clear(ctx context.Context, owner string) (cart.CartDTO, error) {
	s.lastOwner, s.lastOp = owner, "clear"
	return s.result, s.err
}

type stubQuoter struct {
	err          error
	lastCode     string
	lastSubtotal decimal.Decimal
}

func (s *stubQuoter) Quote(ctx context.Context, code string, subtotal decimal.Decimal) (*discounts.Quote, error) {
	s.lastCode, s.lastSubtotal = code, subtotal
	if s.err != nil {
		return nil, s.err
	}
	return &discounts.Quote{Code: "SAVE10", Subtotal: "100.00", Discount: "10.00", Total: "90.00"}, nil
}

const testOwner = "guest:3f1b7a52-1d9e-4c55-9a36-0c8f5f1f9a11"

func cartRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	}
	ctx := middleware.WithCartOwner(req.Context(), testOwner)
	ctx = middleware.WithLocale(ctx, "fr")
	return req.WithContext(ctx)
}

func TestCartGetUsesOwnerFromContext(t *testing.T) {
	svc := &stubCartService{result: cart.CartDTO{Items: []cart.LineItemDTO{}, Subtotal: "0.00"}}
	rec := httptest.NewRecorder()
	CartGet(svc, nil, nil).ServeHTTP(rec, cartRequest(http.MethodGet, "/api/v1/cart", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastOwner != testOwner {
		t.Fatalf("expected owner %s got %s", testOwner, svc.lastOwner)
	}
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := envelope.Data["discount"]; ok {
		t.Fatal("expected no discount block without a code")
	}
	if envelope.Data["subtotal"] != "0.00" {
		t.Fatalf("unexpected subtotal %v", envelope.Data["subtotal"])
	}
}

func TestCartGetWithDiscountQuote(t *testing.T) {
	svc := &stubCartService{result: cart.CartDTO{Items: []cart.LineItemDTO{}, ItemCount: 2, Subtotal: "100.00"}}
	quoter := &stubQuoter{}
	rec := httptest.NewRecorder()
	CartGet(svc, quoter, nil).ServeHTTP(rec, cartRequest(http.MethodGet, "/api/v1/cart?discount_code=save10", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if quoter.lastCode != "save10" {
		t.Fatalf("expected code forwarded, got %q", quoter.lastCode)
	}
	if !quoter.lastSubtotal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected subtotal 100 got %s", quoter.lastSubtotal)
	}
	var envelope struct {
		Data struct {
			Subtotal string           `json:"subtotal"`
			Discount *discounts.Quote `json:"discount"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Discount == nil || envelope.Data.Discount.Total != "90.00" {
		t.Fatalf("expected quote in response, got %+v", envelope.Data.Discount)
	}
}

func TestCartGetWithUnusableDiscount(t *testing.T) {
	svc := &stubCartService{result: cart.CartDTO{Subtotal: "100.00"}}
	quoter := &stubQuoter{err: pkgerrors.New(pkgerrors.CodeConflict, "discount code is not usable").
		WithDetails(map[string]string{"code": "OLD", "reason": "expired"})}
	rec := httptest.NewRecorder()
	CartGet(svc, quoter, nil).ServeHTTP(rec, cartRequest(http.MethodGet, "/api/v1/cart?discount_code=old", ""))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestCartAddItemDefaultsQuantity(t *testing.T) {
	svc := &stubCartService{}
	productID, variantID := uuid.New(), uuid.New()
	body := `{"product_id":"` + productID.String() + `","variant_id":"` + variantID.String() + `","storage":" 256GB "}`

	rec := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(rec, cartRequest(http.MethodPost, "/api/v1/cart/items", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastAdd.Quantity != 1 {
		t.Fatalf("expected default quantity 1 got %d", svc.lastAdd.Quantity)
	}
	if svc.lastAdd.ProductID != productID || svc.lastAdd.VariantID != variantID {
		t.Fatalf("unexpected ids %+v", svc.lastAdd)
	}
	if svc.lastAdd.Storage != "256GB" {
		t.Fatalf("expected trimmed storage got %q", svc.lastAdd.Storage)
	}
	if svc.lastAdd.Locale != "fr" {
		t.Fatalf("expected negotiated locale fr got %q", svc.lastAdd.Locale)
	}
}

func TestCartAddItemRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"missing variant": `{"product_id":"` + uuid.NewString() + `","storage":"128GB"}`,
		"zero quantity":   `{"product_id":"` + uuid.NewString() + `","variant_id":"` + uuid.NewString() + `","storage":"128GB","quantity":0}`,
		"bad uuid":        `{"product_id":"nope","variant_id":"` + uuid.NewString() + `","storage":"128GB"}`,
		"unknown field":   `{"product_id":"` + uuid.NewString() + `","variant_id":"` + uuid.NewString() + `","storage":"128GB","price":"1.00"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &stubCartService{}
			rec := httptest.NewRecorder()
			CartAddItem(svc, nil).ServeHTTP(rec, cartRequest(http.MethodPost, "/api/v1/cart/items", body))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", rec.Code)
			}
			if svc.lastOp != "" {
				t.Fatalf("service must not be called, got %s", svc.lastOp)
			}
		})
	}
}

func TestCartDecrementAndRemoveRouteToDistinctOperations(t *testing.T) {
	variantID := uuid.NewString()
	body := `{"variant_id":"` + variantID + `","storage":"512GB"}`

	svc := &stubCartService{}
	rec := httptest.NewRecorder()
	CartDecrementItem(svc, nil).ServeHTTP(rec, cartRequest(http.MethodPost, "/api/v1/cart/items/decrement", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastOp != "remove_one" {
		t.Fatalf("expected remove_one got %s", svc.lastOp)
	}
	if svc.lastKey != (cart.Key{VariantID: variantID, Storage: "512GB"}) {
		t.Fatalf("unexpected key %+v", svc.lastKey)
	}

	rec = httptest.NewRecorder()
	CartRemoveItem(svc, nil).ServeHTTP(rec, cartRequest(http.MethodDelete, "/api/v1/cart/items", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastOp != "remove_item" {
		t.Fatalf("expected remove_item got %s", svc.lastOp)
	}
}

func TestCartClear(t *testing.T) {
	svc := &stubCartService{result: cart.CartDTO{Items: []cart.LineItemDTO{}, Subtotal: "0.00"}}
	rec := httptest.NewRecorder()
	CartClear(svc, nil).ServeHTTP(rec, cartRequest(http.MethodDelete, "/api/v1/cart", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastOp != "clear" || svc.lastOwner != testOwner {
		t.Fatalf("unexpected call %s/%s", svc.lastOp, svc.lastOwner)
	}
}

func TestCartStorageFailureIsDependencyError(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeDependency, "cart storage unavailable")}
	rec := httptest.NewRecorder()
	CartClear(svc, nil).ServeHTTP(rec, cartRequest(http.MethodDelete, "/api/v1/cart", ""))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}

func TestCartNilService(t *testing.T) {
	rec := httptest.NewRecorder()
	CartRemoveItem(nil, nil).ServeHTTP(rec, cartRequest(http.MethodDelete, "/api/v1/cart/items", `{}`))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
}
