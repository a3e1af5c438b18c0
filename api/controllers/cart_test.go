package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	cartsvc "github.com/angelmondragon/shopfront-backend/internal/cart"
	"github.com/angelmondragon/shopfront-backend/internal/shops"
	"github.com/angelmondragon/shopfront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
)

type stubCart struct {
	added   *cartsvc.AddItemInput
	removed uuid.UUID
	addErr  error
}

func (s *stubCart) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*cartsvc.CartView, error) {
	return &cartsvc.CartView{ID: uuid.New(), UserID: userID}, nil
}

func (s *stubCart) AddItem(ctx context.Context, userID uuid.UUID, input cartsvc.AddItemInput) (*cartsvc.CartView, error) {
	if s.addErr != nil {
		return nil, s.addErr
	}
	s.added = &input
	return &cartsvc.CartView{UserID: userID}, nil
}

func (s *stubCart) RemoveBasket(ctx context.Context, userID, shopID uuid.UUID) (*cartsvc.CartView, error) {
	s.removed = shopID
	return &cartsvc.CartView{UserID: userID}, nil
}

func (s *stubCart) OpenBasket(ctx context.Context, userID, shopID uuid.UUID) (*cartsvc.Basket, error) {
	return &cartsvc.Basket{ID: uuid.New(), ShopID: shopID}, nil
}

func (s *stubCart) ClaimBasket(ctx context.Context, tx *gorm.DB, basketID uuid.UUID) error {
	return nil
}

func TestCartAddItemRequiresShopID(t *testing.T) {
	svc := &stubCart{}
	req := signedIn(httptest.NewRequest(http.MethodPost, "/cart", strings.NewReader(`{"productId":"`+uuid.NewString()+`"}`)), uuid.New(), false)

	resp := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp); code != string(pkgerrors.CodeMissingParameter) {
		t.Fatalf("unexpected code %s", code)
	}
	if svc.added != nil {
		t.Fatal("cart must not be touched")
	}
}

func TestCartAddItemForwardsInput(t *testing.T) {
	svc := &stubCart{}
	shopID := uuid.New()
	productID := uuid.New()
	body := `{"productId":"` + productID.String() + `","variantIndex":1}`
	req := signedIn(httptest.NewRequest(http.MethodPost, "/cart?shopId="+shopID.String(), strings.NewReader(body)), uuid.New(), false)

	resp := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.added == nil || svc.added.ShopID != shopID || svc.added.ProductID != productID {
		t.Fatalf("unexpected input %+v", svc.added)
	}
	if svc.added.VariantIndex == nil || *svc.added.VariantIndex != 1 {
		t.Fatalf("expected variant index 1")
	}
}

func TestCartAddItemSurfacesDuplicateShop(t *testing.T) {
	svc := &stubCart{addErr: pkgerrors.New(pkgerrors.CodeShopAlreadyInCart, "shop already in cart")}
	req := signedIn(httptest.NewRequest(http.MethodPost, "/cart?shopId="+uuid.NewString(), strings.NewReader(`{"productId":"`+uuid.NewString()+`"}`)), uuid.New(), false)

	resp := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp); code != string(pkgerrors.CodeShopAlreadyInCart) {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestTenantCartAddItemResolvesSubdomain(t *testing.T) {
	shop := &shops.ShopDTO{ID: uuid.New(), Subdomain: "acme", Status: enums.ShopStatusActive}
	svc := &stubCart{}
	r := chi.NewRouter()
	r.Post("/shops/{subdomain}/cart", TenantCartAddItem(&stubShops{shop: shop}, svc, nil))

	req := signedIn(httptest.NewRequest(http.MethodPost, "/shops/acme/cart", strings.NewReader(`{"productId":"`+uuid.NewString()+`"}`)), uuid.New(), false)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.added.ShopID != shop.ID {
		t.Fatalf("expected shop %s got %s", shop.ID, svc.added.ShopID)
	}
}

func TestTenantCartRoutesRejectInactiveShop(t *testing.T) {
	shop := &shops.ShopDTO{ID: uuid.New(), Subdomain: "acme", Status: enums.ShopStatusBanned}
	svc := &stubCart{}
	r := chi.NewRouter()
	r.Get("/shops/{subdomain}/cart", TenantCartGet(&stubShops{shop: shop}, svc, nil))
	r.Post("/shops/{subdomain}/cart", TenantCartAddItem(&stubShops{shop: shop}, svc, nil))

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		req := signedIn(httptest.NewRequest(method, "/shops/acme/cart", strings.NewReader(`{"productId":"`+uuid.NewString()+`"}`)), uuid.New(), false)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s: expected 503 got %d", method, resp.Code)
		}
		if code := decodeErrorCode(t, resp); code != string(pkgerrors.CodeTenantUnavailable) {
			t.Fatalf("%s: unexpected code %s", method, code)
		}
	}
	if svc.added != nil {
		t.Fatal("cart must not be touched")
	}
}

func TestCartRoutesRequireIdentity(t *testing.T) {
	svc := &stubCart{}
	for name, handler := range map[string]http.Handler{
		"get":    CartGet(svc, nil),
		"remove": CartRemoveBasket(svc, nil),
	} {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/cart?shopId="+uuid.NewString(), nil))
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", name, resp.Code)
		}
	}

	shopID := uuid.New()
	resp := httptest.NewRecorder()
	CartRemoveBasket(svc, nil).ServeHTTP(resp, signedIn(httptest.NewRequest(http.MethodDelete, "/cart?shopId="+shopID.String(), nil), uuid.New(), false))
	if resp.Code != http.StatusOK || svc.removed != shopID {
		t.Fatalf("expected basket %s removed, got %d", shopID, resp.Code)
	}
}
