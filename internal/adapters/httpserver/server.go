package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/phenrril/easyphone/internal/adapters/shipping/superfrete"
	"github.com/phenrril/easyphone/internal/cart"
	"github.com/phenrril/easyphone/internal/config"
	"github.com/phenrril/easyphone/internal/domain"
	"github.com/phenrril/easyphone/internal/usecase"
)

type Server struct {
	mux      *http.ServeMux
	products *usecase.ProductUC
	orders   *usecase.OrderUC
	settings *usecase.SettingsUC
	rates    domain.RateService

	sessionKey   []byte
	adminSecret  []byte
	adminAllowed map[string]struct{}
	adminUser    string
	adminPass    string
	oauthCfg     *oauth2.Config
}

func New(p *usecase.ProductUC, o *usecase.OrderUC, st *usecase.SettingsUC, rates domain.RateService, cfg config.Config, oauthCfg *oauth2.Config) http.Handler {
	s := &Server{
		mux:         http.NewServeMux(),
		products:    p,
		orders:      o,
		settings:    st,
		rates:       rates,
		sessionKey:  []byte(cfg.SessionKey),
		adminSecret: []byte(cfg.AdminSecret),
		adminUser:   cfg.AdminUser,
		adminPass:   cfg.AdminPass,
		oauthCfg:    oauthCfg,
	}
	s.adminAllowed = map[string]struct{}{}
	for _, e := range strings.Split(cfg.AdminAllowedEmails, ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			s.adminAllowed[e] = struct{}{}
		}
	}
	s.routes()
	return Chain(s.mux,
		RateLimit(120),
		RequestID,
		Recovery,
		Logging,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/products", s.handleProducts)
	s.mux.HandleFunc("/api/products/", s.handleProductByID)

	s.mux.HandleFunc("/api/frete", s.handleFrete)

	s.mux.HandleFunc("/api/cart", s.handleCart)
	s.mux.HandleFunc("/api/cart/update", s.handleCartUpdate)
	s.mux.HandleFunc("/api/cart/remove", s.handleCartRemove)
	s.mux.HandleFunc("/api/checkout", s.handleCheckout)

	s.mux.HandleFunc("/auth/google/login", s.handleGoogleLogin)
	s.mux.HandleFunc("/auth/google/callback", s.handleGoogleCallback)
	s.mux.HandleFunc("/admin/auth", s.handleAdminAuth)
	s.mux.HandleFunc("/admin/logout", s.handleAdminLogout)

	s.mux.HandleFunc("/admin/orders", s.handleAdminOrders)
	s.mux.HandleFunc("/admin/orders/export", s.handleAdminOrdersExport)
	s.mux.HandleFunc("/admin/orders/", s.handleAdminOrderStatus)
	s.mux.HandleFunc("/admin/settings", s.handleAdminSettings)
	s.mux.HandleFunc("/admin/settings/coupons", s.handleAdminCoupons)
	s.mux.HandleFunc("/admin/settings/coupons/", s.handleAdminCouponByID)
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	qv := r.URL.Query()
	f := domain.ProductFilter{Query: qv.Get("q"), Category: qv.Get("category"), Sort: qv.Get("sort")}
	list, total, err := s.products.List(r.Context(), f)
	if err != nil {
		http.Error(w, "err", 500)
		return
	}
	writeJSON(w, 200, map[string]any{"items": list, "total": total})
}

func (s *Server) handleProductByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	id, err := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/api/products/"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	p, err := s.products.GetByID(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, 200, p)
}

// handleFrete es el proxy local hacia el servicio de fletes: valida lo mínimo,
// delega y espeja el status del upstream cuando falla. Sin reintentos, el
// usuario vuelve a intentar a mano.
func (s *Server) handleFrete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, 405, map[string]any{"error": "Método não permitido"})
		return
	}
	var req struct {
		CEPDestino string `json:"cepDestino"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1024)).Decode(&req); err != nil && err != io.EOF {
		writeJSON(w, 400, map[string]any{"error": "json"})
		return
	}
	if strings.TrimSpace(req.CEPDestino) == "" {
		writeJSON(w, 400, map[string]any{"error": "CEP de destino é obrigatório"})
		return
	}

	options, err := s.rates.Quote(r.Context(), req.CEPDestino)
	if err != nil {
		var up *superfrete.UpstreamError
		if errors.As(err, &up) {
			if json.Valid(up.Body) {
				writeJSON(w, up.StatusCode, map[string]any{"error": json.RawMessage(up.Body)})
			} else {
				writeJSON(w, up.StatusCode, map[string]any{"error": string(up.Body)})
			}
			return
		}
		var mal *superfrete.MalformedResponseError
		if errors.As(err, &mal) {
			writeJSON(w, 500, map[string]any{"error": "Resposta não é JSON", "raw": string(mal.Raw)})
			return
		}
		if errors.Is(err, domain.ErrMissingDestination) {
			writeJSON(w, 400, map[string]any{"error": "CEP de destino é obrigatório"})
			return
		}
		log.Error().Err(err).Msg("calcular frete")
		writeJSON(w, 500, map[string]any{"error": "Erro ao calcular frete"})
		return
	}
	writeJSON(w, 200, options)
}

func (s *Server) lookupProduct(r *http.Request) func(uuid.UUID) (*domain.Product, error) {
	return func(id uuid.UUID) (*domain.Product, error) {
		return s.products.GetByID(r.Context(), id)
	}
}

func (s *Server) readCart(r *http.Request) *cart.Cart {
	return cart.ReadCookie(r, s.sessionKey, s.lookupProduct(r))
}

func (s *Server) writeCartJSON(w http.ResponseWriter, c *cart.Cart) {
	cart.WriteCookie(w, s.sessionKey, c)
	writeJSON(w, 200, map[string]any{"items": c.Lines(), "total": c.Total()})
}

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		c := s.readCart(r)
		writeJSON(w, 200, map[string]any{"items": c.Lines(), "total": c.Total()})
	case http.MethodPost:
		var req struct {
			ProductID uuid.UUID `json:"productId"`
			VariantID uuid.UUID `json:"variantId"`
			Quantity  int       `json:"quantity"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, 1024)).Decode(&req); err != nil {
			http.Error(w, "json", 400)
			return
		}
		p, err := s.products.GetByID(r.Context(), req.ProductID)
		if err != nil {
			http.Error(w, "prod", 404)
			return
		}
		v := p.Variant(req.VariantID)
		if v == nil {
			http.Error(w, "variant", 404)
			return
		}
		if req.Quantity < 1 {
			req.Quantity = 1
		}
		c := s.readCart(r)
		c.Add(p, v, req.Quantity)
		s.writeCartJSON(w, c)
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) handleCartUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var req struct {
		ProductID uuid.UUID `json:"productId"`
		VariantID uuid.UUID `json:"variantId"`
		Quantity  int       `json:"quantity"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1024)).Decode(&req); err != nil {
		http.Error(w, "json", 400)
		return
	}
	c := s.readCart(r)
	c.SetQuantity(req.ProductID, req.VariantID, req.Quantity)
	s.writeCartJSON(w, c)
}

func (s *Server) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var req struct {
		ProductID uuid.UUID `json:"productId"`
		VariantID uuid.UUID `json:"variantId"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1024)).Decode(&req); err != nil {
		http.Error(w, "json", 400)
		return
	}
	c := s.readCart(r)
	c.Remove(req.ProductID, req.VariantID)
	s.writeCartJSON(w, c)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var req struct {
		Name          string  `json:"name"`
		Phone         string  `json:"phone"`
		Email         string  `json:"email"`
		DeliveryType  string  `json:"deliveryType"`
		Address       string  `json:"address"`
		Number        string  `json:"number"`
		City          string  `json:"city"`
		Freight       float64 `json:"freight"`
		PaymentMethod string  `json:"paymentMethod"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
		http.Error(w, "json", 400)
		return
	}
	c := s.readCart(r)
	if c.Empty() {
		http.Error(w, "carrito vacío", 400)
		return
	}
	o, err := s.orders.CreateFromCart(r.Context(), c, usecase.CheckoutInput{
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		DeliveryType:  domain.DeliveryType(req.DeliveryType),
		Address:       req.Address,
		Number:        req.Number,
		City:          req.City,
		Freight:       req.Freight,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		log.Error().Err(err).Msg("checkout")
		http.Error(w, "orden", 400)
		return
	}
	cart.ClearCookie(w)
	writeJSON(w, 201, map[string]any{"orderId": o.ID, "status": o.Status, "amount": o.Amount, "total": o.GrandTotal()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
