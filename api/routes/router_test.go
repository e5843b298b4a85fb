package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/contact"
	"github.com/angelmondragon/storefront-backend/internal/discounts"
	"github.com/angelmondragon/storefront-backend/internal/locations"
	"github.com/angelmondragon/storefront-backend/internal/users"
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/locale"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

func (stubAuthService) AdminLogin(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

type stubRegisterService struct{}

func (stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) error {
	return nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "", "", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type stubUsersService struct{}

func (stubUsersService) GetProfile(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID}, nil
}

func (stubUsersService) UpdateProfile(ctx context.Context, userID uuid.UUID, input users.UpdateProfileInput) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID}, nil
}

func (stubUsersService) ChangePassword(ctx context.Context, userID uuid.UUID, input users.ChangePasswordInput) error {
	return nil
}

type stubCatalogService struct{ lastSlug *string }

func (stubCatalogService) ListProducts(ctx context.Context, params catalog.ListParams) (catalog.ProductPageDTO, error) {
	return catalog.ProductPageDTO{Items: []catalog.ProductSummaryDTO{}}, nil
}

func (s stubCatalogService) GetProduct(ctx context.Context, slug, locale string) (*catalog.ProductDetailDTO, error) {
	if s.lastSlug != nil {
		*s.lastSlug = slug
	}
	return &catalog.ProductDetailDTO{}, nil
}

func (stubCatalogService) ResolveVariant(ctx context.Context, productID, variantID uuid.UUID, storage, locale string) (*catalog.VariantSnapshot, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
}

type stubCartService struct{ lastOwner *string }

func (s stubCartService) record(owner string) (cart.CartDTO, error) {
	if s.lastOwner != nil {
		*s.lastOwner = owner
	}
	return cart.CartDTO{Items: []cart.LineItemDTO{}, Subtotal: "0.00"}, nil
}

func (s stubCartService) Get(ctx context.Context, owner string) (cart.CartDTO, error) {
	return s.record(owner)
}

func (s stubCartService) AddItem(ctx context.Context, owner string, input cart.AddItemInput) (cart.CartDTO, error) {
	return s.record(owner)
}

func (s stubCartService) RemoveOne(ctx context.Context, owner string, key cart.Key) (cart.CartDTO, error) {
	return s.record(owner)
}

func (s stubCartService) RemoveItem(ctx context.Context, owner string, key cart.Key) (cart.CartDTO, error) {
	return s.record(owner)
}

func (s stubCartService) Clear(ctx context.Context, owner string) (cart.CartDTO, error) {
	return s.record(owner)
}

type stubDiscountService struct{}

func (stubDiscountService) Validate(ctx context.Context, code string) (*discounts.DiscountDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
}

func (stubDiscountService) Quote(ctx context.Context, code string, subtotal decimal.Decimal) (*discounts.Quote, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
}

type stubLocationService struct{}

func (stubLocationService) List(ctx context.Context, country string) ([]locations.LocationDTO, error) {
	return []locations.LocationDTO{}, nil
}

type stubContactService struct{}

func (stubContactService) Submit(ctx context.Context, input contact.CreateMessageInput, userID *uuid.UUID) (*contact.MessageDTO, error) {
	return &contact.MessageDTO{ID: uuid.New()}, nil
}

func (stubContactService) List(ctx context.Context, params pagination.Params) (*contact.MessagePage, error) {
	return &contact.MessagePage{Items: []contact.MessageDTO{}}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "storefront", ExpirationMinutes: 10},
		Locale: config.LocaleConfig{
			Default:   "en",
			Supported: []string{"en", "fr", "ar"},
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
}

type routerFixture struct {
	handler   http.Handler
	cartOwner string
	slug      string
}

func newTestRouter(t *testing.T) *routerFixture {
	t.Helper()
	cfg := testConfig()
	resolver, err := locale.NewResolver(cfg.Locale.Default, cfg.Locale.Supported)
	if err != nil {
		t.Fatalf("locale resolver: %v", err)
	}
	fx := &routerFixture{}
	fx.handler = NewRouter(
		cfg,
		logger.Nop(),
		stubPinger{},
		nil,
		metrics.NewHTTPMetrics(prometheus.NewRegistry()),
		resolver,
		stubSessionManager{},
		stubAuthService{},
		stubRegisterService{},
		stubUsersService{},
		stubCatalogService{lastSlug: &fx.slug},
		stubCartService{lastOwner: &fx.cartOwner},
		stubDiscountService{},
		stubLocationService{},
		stubContactService{},
	)
	return fx
}

func mintToken(t *testing.T, role enums.UserRole) (string, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	token, err := pkgAuth.MintAccessToken(testConfig().JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: userID,
		Role:   role,
		Locale: "en",
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token, userID
}

func TestHealthRoutes(t *testing.T) {
	fx := newTestRouter(t)
	for _, path := range []string{"/health/live", "/health/ready"} {
		rec := httptest.NewRecorder()
		fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, rec.Code)
		}
	}
}

func TestGuestCartMintsSession(t *testing.T) {
	fx := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Accept-Language", "fr-CA,fr;q=0.9")
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	guest := rec.Header().Get(middleware.CartSessionHeader)
	if _, err := uuid.Parse(guest); err != nil {
		t.Fatalf("expected minted guest session, got %q", guest)
	}
	if fx.cartOwner != "guest:"+guest {
		t.Fatalf("expected owner guest:%s got %s", guest, fx.cartOwner)
	}
	if got := rec.Header().Get("Content-Language"); got != "fr" {
		t.Fatalf("expected Content-Language fr got %q", got)
	}
}

func TestSignedInCartUsesUserOwner(t *testing.T) {
	fx := newTestRouter(t)
	token, userID := mintToken(t, enums.UserRoleCustomer)
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if fx.cartOwner != "user:"+userID.String() {
		t.Fatalf("expected user owner got %s", fx.cartOwner)
	}
}

func TestProfileRequiresAuth(t *testing.T) {
	fx := newTestRouter(t)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}

	token, _ := mintToken(t, enums.UserRoleCustomer)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	fx := newTestRouter(t)

	customer, _ := mintToken(t, enums.UserRoleCustomer)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/contact-messages", nil)
	req.Header.Set("Authorization", "Bearer "+customer)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}

	admin, _ := mintToken(t, enums.UserRoleAdmin)
	req = httptest.NewRequest(http.MethodGet, "/api/admin/v1/contact-messages", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	rec = httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestProductSlugRoute(t *testing.T) {
	fx := newTestRouter(t)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/galaxy-s24?locale=ar", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if fx.slug != "galaxy-s24" {
		t.Fatalf("expected slug galaxy-s24 got %q", fx.slug)
	}
	if got := rec.Header().Get("Content-Language"); got != "ar" {
		t.Fatalf("expected Content-Language ar got %q", got)
	}
}

func TestUnknownRoute(t *testing.T) {
	fx := newTestRouter(t)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
