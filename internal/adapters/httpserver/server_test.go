package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/easyphone/internal/adapters/shipping/superfrete"
	"github.com/phenrril/easyphone/internal/config"
	"github.com/phenrril/easyphone/internal/domain"
	"github.com/phenrril/easyphone/internal/usecase"
)

type memProductRepo struct {
	products map[uuid.UUID]*domain.Product
}

func (r *memProductRepo) Save(_ context.Context, p *domain.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (r *memProductRepo) List(_ context.Context, _ domain.ProductFilter) ([]domain.Product, int64, error) {
	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *memProductRepo) SaveVariant(_ context.Context, v *domain.Variant) error {
	p, ok := r.products[v.ProductID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Variants = append(p.Variants, *v)
	return nil
}

func (r *memProductRepo) DeleteVariant(context.Context, uuid.UUID) error { return nil }

type memOrderRepo struct {
	orders map[uuid.UUID]*domain.Order
}

func (r *memOrderRepo) Save(_ context.Context, o *domain.Order) error {
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) List(context.Context) ([]domain.Order, error) {
	out := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.OrderStatus) error {
	o, ok := r.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	return nil
}

type memSettingsRepo struct {
	settings *domain.StoreSettings
	coupons  map[uuid.UUID]domain.Coupon
}

func (r *memSettingsRepo) Get(context.Context) (*domain.StoreSettings, error) {
	if r.settings == nil {
		return nil, domain.ErrNotFound
	}
	return r.settings, nil
}

func (r *memSettingsRepo) Save(_ context.Context, s *domain.StoreSettings) error {
	r.settings = s
	return nil
}

func (r *memSettingsRepo) ListCoupons(context.Context) ([]domain.Coupon, error) {
	out := make([]domain.Coupon, 0, len(r.coupons))
	for _, c := range r.coupons {
		out = append(out, c)
	}
	return out, nil
}

func (r *memSettingsRepo) SaveCoupon(_ context.Context, c *domain.Coupon) error {
	r.coupons[c.ID] = *c
	return nil
}

func (r *memSettingsRepo) DeleteCoupon(_ context.Context, id uuid.UUID) error {
	delete(r.coupons, id)
	return nil
}

type stubRates struct {
	options []domain.ShippingOption
	err     error
}

func (s stubRates) Quote(_ context.Context, dest string) ([]domain.ShippingOption, error) {
	if strings.TrimSpace(dest) == "" {
		return nil, domain.ErrMissingDestination
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.options, nil
}

type testEnv struct {
	handler  http.Handler
	products *memProductRepo
	orders   *memOrderRepo
	product  *domain.Product
}

func newTestEnv(t *testing.T, rates domain.RateService) *testEnv {
	t.Helper()
	p := &domain.Product{
		ID:       uuid.New(),
		Title:    "iPhone 12",
		Brand:    "Apple",
		Category: "celulares",
	}
	p.Variants = []domain.Variant{
		{ID: uuid.New(), ProductID: p.ID, Name: "64GB Preto", Stock: 2, Price: 100, Promotional: 80},
		{ID: uuid.New(), ProductID: p.ID, Name: "128GB Branco", Stock: 5, Price: 120},
	}
	prodRepo := &memProductRepo{products: map[uuid.UUID]*domain.Product{p.ID: p}}
	orderRepo := &memOrderRepo{orders: map[uuid.UUID]*domain.Order{}}
	settRepo := &memSettingsRepo{coupons: map[uuid.UUID]domain.Coupon{}}

	cfg := config.Config{
		SessionKey:  "test-session-key",
		AdminSecret: "test-admin-secret",
		AdminUser:   "admin",
		AdminPass:   "admin123",
	}
	h := New(
		&usecase.ProductUC{Products: prodRepo},
		&usecase.OrderUC{Orders: orderRepo},
		&usecase.SettingsUC{Settings: settRepo},
		rates,
		cfg,
		nil,
	)
	return &testEnv{handler: h, products: prodRepo, orders: orderRepo, product: p}
}

func (e *testEnv) do(method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var rd *bytes.Reader
	if body != nil {
		buf, _ := json.Marshal(body)
		rd = bytes.NewReader(buf)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestFreteRejectsNonPost(t *testing.T) {
	env := newTestEnv(t, stubRates{})
	rec := env.do(http.MethodGet, "/api/frete", nil, nil)
	assert.Equal(t, 405, rec.Code)
	assert.Equal(t, "Método não permitido", decodeBody(t, rec)["error"])
}

func TestFreteRequiresDestination(t *testing.T) {
	env := newTestEnv(t, stubRates{})
	rec := env.do(http.MethodPost, "/api/frete", map[string]string{"cepDestino": "  "}, nil)
	assert.Equal(t, 400, rec.Code)
	assert.Equal(t, "CEP de destino é obrigatório", decodeBody(t, rec)["error"])
}

func TestFreteReturnsOptions(t *testing.T) {
	env := newTestEnv(t, stubRates{options: []domain.ShippingOption{
		{Carrier: "Correios", Service: "PAC", DeliveryDays: 7, Price: 21.9},
	}})
	rec := env.do(http.MethodPost, "/api/frete", map[string]string{"cepDestino": "01310100"}, nil)
	require.Equal(t, 200, rec.Code)

	var opts []domain.ShippingOption
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	require.Len(t, opts, 1)
	assert.Equal(t, "PAC", opts[0].Service)
}

func TestFreteMirrorsUpstreamStatus(t *testing.T) {
	env := newTestEnv(t, stubRates{err: &superfrete.UpstreamError{
		StatusCode: 422,
		Body:       []byte(`{"message":"CEP inválido"}`),
	}})
	rec := env.do(http.MethodPost, "/api/frete", map[string]string{"cepDestino": "00000000"}, nil)
	assert.Equal(t, 422, rec.Code)
	assert.Contains(t, rec.Body.String(), "CEP inválido")
}

func TestFreteMalformedUpstream(t *testing.T) {
	env := newTestEnv(t, stubRates{err: &superfrete.MalformedResponseError{Raw: []byte("<html>")}})
	rec := env.do(http.MethodPost, "/api/frete", map[string]string{"cepDestino": "01310100"}, nil)
	assert.Equal(t, 500, rec.Code)
	assert.Equal(t, "Resposta não é JSON", decodeBody(t, rec)["error"])
}

func TestProductsEndpoint(t *testing.T) {
	env := newTestEnv(t, stubRates{})

	rec := env.do(http.MethodGet, "/api/products", nil, nil)
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["total"])

	rec = env.do(http.MethodGet, "/api/products/"+env.product.ID.String(), nil, nil)
	require.Equal(t, 200, rec.Code)

	rec = env.do(http.MethodGet, "/api/products/"+uuid.NewString(), nil, nil)
	assert.Equal(t, 404, rec.Code)

	rec = env.do(http.MethodPost, "/api/products", nil, nil)
	assert.Equal(t, 405, rec.Code)
}

func TestCartAddAndReload(t *testing.T) {
	env := newTestEnv(t, stubRates{})
	v := env.product.Variants[0]

	rec := env.do(http.MethodPost, "/api/cart", map[string]any{
		"productId": env.product.ID,
		"variantId": v.ID,
		"quantity":  1,
	}, nil)
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, 80.0, decodeBody(t, rec)["total"])

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	// recarga: el espejo firmado rehidrata el carrito
	rec = env.do(http.MethodGet, "/api/cart", nil, cookies)
	require.Equal(t, 200, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, 80.0, body["total"])
	assert.Len(t, body["items"], 1)
}

func TestCartAddUnknownProduct(t *testing.T) {
	env := newTestEnv(t, stubRates{})

	rec := env.do(http.MethodPost, "/api/cart", map[string]any{
		"productId": uuid.New(),
		"variantId": uuid.New(),
	}, nil)
	assert.Equal(t, 404, rec.Code)

	rec = env.do(http.MethodPost, "/api/cart", map[string]any{
		"productId": env.product.ID,
		"variantId": uuid.New(),
	}, nil)
	assert.Equal(t, 404, rec.Code)
}

func TestCartUpdateAndRemove(t *testing.T) {
	env := newTestEnv(t, stubRates{})
	v := env.product.Variants[1] // stock 5

	rec := env.do(http.MethodPost, "/api/cart", map[string]any{
		"productId": env.product.ID, "variantId": v.ID, "quantity": 1,
	}, nil)
	cookies := rec.Result().Cookies()

	rec = env.do(http.MethodPost, "/api/cart/update", map[string]any{
		"productId": env.product.ID, "variantId": v.ID, "quantity": 3,
	}, cookies)
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, 3*120.0, decodeBody(t, rec)["total"])

	cookies = rec.Result().Cookies()
	rec = env.do(http.MethodPost, "/api/cart/remove", map[string]any{
		"productId": env.product.ID, "variantId": v.ID,
	}, cookies)
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, 0.0, decodeBody(t, rec)["total"])
}

func TestCheckoutCreatesOrderAndClearsCart(t *testing.T) {
	env := newTestEnv(t, stubRates{})
	v := env.product.Variants[0]

	rec := env.do(http.MethodPost, "/api/cart", map[string]any{
		"productId": env.product.ID, "variantId": v.ID, "quantity": 2,
	}, nil)
	cookies := rec.Result().Cookies()

	rec = env.do(http.MethodPost, "/api/checkout", map[string]any{
		"name":          "Maria",
		"deliveryType":  "delivery",
		"address":       "Rua das Flores",
		"number":        "120",
		"city":          "Teresina",
		"freight":       20,
		"paymentMethod": "pix",
	}, cookies)
	require.Equal(t, 201, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, string(domain.StatusPendente), body["status"])
	assert.Equal(t, 160.0, body["amount"])
	assert.Equal(t, 180.0, body["total"])

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "easy-phone-cart" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "el cookie del carrito debe borrarse tras el checkout")
	assert.Len(t, env.orders.orders, 1)
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := newTestEnv(t, stubRates{})
	rec := env.do(http.MethodPost, "/api/checkout", map[string]any{"name": "Maria"}, nil)
	assert.Equal(t, 400, rec.Code)
}

func adminLogin(t *testing.T, env *testEnv) []*http.Cookie {
	t.Helper()
	form := url.Values{"user": {"admin"}, "pass": {"admin123"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/auth", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, 200, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestAdminRequiresAuth(t *testing.T) {
	env := newTestEnv(t, stubRates{})
	for _, path := range []string{"/admin/orders", "/admin/settings", "/admin/settings/coupons"} {
		rec := env.do(http.MethodGet, path, nil, nil)
		assert.Equal(t, 401, rec.Code, path)
	}
}

func TestAdminAuthRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t, stubRates{})
	form := url.Values{"user": {"admin"}, "pass": {"incorrecta"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/auth", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, 401, rec.Code)
}

func TestAdminOrdersView(t *testing.T) {
	env := newTestEnv(t, stubRates{})
	cookies := adminLogin(t, env)

	o := &domain.Order{
		ID:           uuid.New(),
		Status:       domain.StatusPendente,
		Name:         "Maria",
		DeliveryType: domain.DeliveryShipping,
		Address:      "Rua das Flores",
		Number:       "120",
		Freight:      20,
		Amount:       150,
		TimeStamp:    "20240115093045",
		Items: []domain.OrderItem{
			{ProductID: env.product.ID, VariantID: env.product.Variants[0].ID, Quantity: 2, UnitPrice: 75},
		},
	}
	require.NoError(t, env.orders.Save(context.Background(), o))

	rec := env.do(http.MethodGet, "/admin/orders", nil, cookies)
	require.Equal(t, 200, rec.Code)

	var body struct {
		Items []usecase.OrderSummary `json:"items"`
		Total int                    `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Total)
	assert.Equal(t, 170.0, body.Items[0].GrandTotal)
	assert.Equal(t, "15/01/2024 09:30", body.Items[0].PlacedAt)
	assert.Equal(t, []string{"iPhone 12 64GB Preto (x2)"}, body.Items[0].Items)
}

func TestAdminOrderStatusUpdate(t *testing.T) {
	env := newTestEnv(t, stubRates{})
	cookies := adminLogin(t, env)

	o := &domain.Order{ID: uuid.New(), Status: domain.StatusPendente, Name: "Maria", TimeStamp: "20240115093045"}
	require.NoError(t, env.orders.Save(context.Background(), o))
	path := fmt.Sprintf("/admin/orders/%s/status", o.ID)

	rec := env.do(http.MethodPost, path, map[string]string{"status": "Pago"}, cookies)
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "Pago", decodeBody(t, rec)["status"])

	persisted, err := env.orders.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPago, persisted.Status)

	rec = env.do(http.MethodPost, path, map[string]string{"status": "Despachado"}, cookies)
	assert.Equal(t, 400, rec.Code)

	rec = env.do(http.MethodPost, fmt.Sprintf("/admin/orders/%s/status", uuid.New()), map[string]string{"status": "Pago"}, cookies)
	assert.Equal(t, 404, rec.Code)
}

func TestAdminBearerToken(t *testing.T) {
	env := newTestEnv(t, stubRates{})
	cookies := adminLogin(t, env)

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+cookies[0].Value)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, 200, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer basura")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, 401, rec.Code)
}

func TestAdminSettingsAndCoupons(t *testing.T) {
	env := newTestEnv(t, stubRates{})
	cookies := adminLogin(t, env)

	rec := env.do(http.MethodPut, "/admin/settings", map[string]string{
		"Title": "Easy Phone", "WhatsApp": "86 99999-0000",
	}, cookies)
	require.Equal(t, 200, rec.Code)

	rec = env.do(http.MethodGet, "/admin/settings", nil, cookies)
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "Easy Phone", decodeBody(t, rec)["Title"])

	rec = env.do(http.MethodPost, "/admin/settings/coupons", map[string]any{
		"code": "promo10", "percent": 10,
	}, cookies)
	require.Equal(t, 201, rec.Code)
	created := decodeBody(t, rec)
	assert.Equal(t, "PROMO10", created["Code"])

	rec = env.do(http.MethodPost, "/admin/settings/coupons", map[string]any{
		"code": "promo200", "percent": 200,
	}, cookies)
	assert.Equal(t, 400, rec.Code)

	rec = env.do(http.MethodDelete, "/admin/settings/coupons/"+created["ID"].(string), nil, cookies)
	assert.Equal(t, 200, rec.Code)
}
