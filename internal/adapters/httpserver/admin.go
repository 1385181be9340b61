package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/phenrril/easyphone/internal/domain"
	"github.com/phenrril/easyphone/internal/usecase"
)

// --- dashboard: pedidos ---

func (s *Server) handleAdminOrders(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	summaries, err := s.orderSummaries(r)
	if err != nil {
		http.Error(w, "err", 500)
		return
	}
	writeJSON(w, 200, map[string]any{"items": summaries, "total": len(summaries)})
}

// orderSummaries lee pedidos y catálogo on-demand y arma la proyección. No
// hay push al dashboard: cada carga es una foto nueva.
func (s *Server) orderSummaries(r *http.Request) ([]usecase.OrderSummary, error) {
	orders, err := s.orders.ListAll(r.Context())
	if err != nil {
		return nil, err
	}
	products, _, err := s.products.List(r.Context(), domain.ProductFilter{Page: 1, PageSize: 1000})
	if err != nil {
		return nil, err
	}
	return usecase.BuildOrderSummaries(orders, products), nil
}

// POST /admin/orders/{id}/status
func (s *Server) handleAdminOrderStatus(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/admin/orders/"), "/")
	if len(parts) != 2 || parts[1] != "status" {
		http.NotFound(w, r)
		return
	}
	id, err := uuid.Parse(parts[0])
	if err != nil {
		http.Error(w, "order id", 400)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 512)).Decode(&req); err != nil {
		http.Error(w, "json", 400)
		return
	}
	o, err := s.orders.UpdateStatus(r.Context(), id, domain.OrderStatus(req.Status))
	switch {
	case err == nil:
		writeJSON(w, 200, map[string]any{"id": o.ID, "status": o.Status})
	case errors.Is(err, domain.ErrInvalidStatus):
		http.Error(w, "status", 400)
	case errors.Is(err, domain.ErrStatusUpdateInFlight):
		http.Error(w, "update en curso", 409)
	case errors.Is(err, domain.ErrNotFound):
		http.NotFound(w, r)
	default:
		log.Error().Err(err).Str("order_id", id.String()).Msg("actualizar status")
		http.Error(w, "persistencia", 500)
	}
}

// GET /admin/orders/export: misma proyección que el dashboard, en XLSX.
func (s *Server) handleAdminOrdersExport(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	summaries, err := s.orderSummaries(r)
	if err != nil {
		http.Error(w, "err", 500)
		return
	}
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	headers := []string{"Pedido", "Cliente", "Entrega", "Produtos", "Pagamento", "Total", "Data", "Status"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for row, sum := range summaries {
		values := []any{sum.ID.String(), sum.Client, sum.Delivery, strings.Join(sum.Items, "; "), sum.Payment, sum.GrandTotal, sum.PlacedAt, string(sum.Status)}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=pedidos_%s.xlsx", time.Now().Format("2006-01-02")))
	if err := f.Write(w); err != nil {
		log.Error().Err(err).Msg("export xlsx")
	}
}

// --- dashboard: configuración y cupones ---

func (s *Server) handleAdminSettings(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		st, err := s.settings.Get(r.Context())
		if err != nil {
			http.Error(w, "err", 500)
			return
		}
		writeJSON(w, 200, st)
	case http.MethodPut:
		var req domain.StoreSettings
		if err := json.NewDecoder(io.LimitReader(r.Body, 8192)).Decode(&req); err != nil {
			http.Error(w, "json", 400)
			return
		}
		if err := s.settings.Update(r.Context(), &req); err != nil {
			http.Error(w, "save", 500)
			return
		}
		writeJSON(w, 200, req)
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) handleAdminCoupons(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		list, err := s.settings.ListCoupons(r.Context())
		if err != nil {
			http.Error(w, "err", 500)
			return
		}
		writeJSON(w, 200, map[string]any{"items": list})
	case http.MethodPost:
		var req struct {
			Code    string `json:"code"`
			Percent int    `json:"percent"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, 512)).Decode(&req); err != nil {
			http.Error(w, "json", 400)
			return
		}
		c, err := s.settings.AddCoupon(r.Context(), req.Code, req.Percent)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCoupon) {
				http.Error(w, "cupón", 400)
				return
			}
			http.Error(w, "save", 500)
			return
		}
		writeJSON(w, 201, c)
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) handleAdminCouponByID(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodDelete {
		http.Error(w, "method", 405)
		return
	}
	id, err := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/admin/settings/coupons/"))
	if err != nil {
		http.Error(w, "coupon id", 400)
		return
	}
	if err := s.settings.RemoveCoupon(r.Context(), id); err != nil {
		http.Error(w, "delete", 500)
		return
	}
	writeJSON(w, 200, map[string]any{"status": "ok"})
}

// --- auth del dashboard ---

func (s *Server) handleAdminAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "form", 400)
		return
	}
	user := strings.TrimSpace(r.FormValue("user"))
	pass := strings.TrimSpace(r.FormValue("pass"))
	if user == "" || pass == "" || user != s.adminUser || subtle.ConstantTimeCompare([]byte(pass), []byte(s.adminPass)) != 1 {
		http.Error(w, "credenciales", 401)
		return
	}
	tok, err := s.issueAdminToken(user+"@local", 6*time.Hour)
	if err != nil {
		http.Error(w, "token", 500)
		return
	}
	s.setAdminCookie(w, r, tok, 60*60*6)
	writeJSON(w, 200, map[string]any{"status": "ok"})
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	s.setAdminCookie(w, r, "", -1)
	writeJSON(w, 200, map[string]any{"status": "ok"})
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil {
		http.Error(w, "oauth deshabilitado", 404)
		return
	}
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: state, Path: "/", MaxAge: 300, HttpOnly: true})
	http.Redirect(w, r, s.oauthCfg.AuthCodeURL(state), 302)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil {
		http.Error(w, "oauth deshabilitado", 404)
		return
	}
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		http.Error(w, "state", 400)
		return
	}
	tok, err := s.oauthCfg.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		http.Error(w, "exchange", 401)
		return
	}
	client := s.oauthCfg.Client(r.Context(), tok)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		http.Error(w, "userinfo", 502)
		return
	}
	defer resp.Body.Close()
	var info struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		http.Error(w, "userinfo", 502)
		return
	}
	email := strings.ToLower(strings.TrimSpace(info.Email))
	if _, ok := s.adminAllowed[email]; !ok {
		http.Error(w, "unauthorized", 403)
		return
	}
	adminTok, err := s.issueAdminToken(email, 6*time.Hour)
	if err != nil {
		http.Error(w, "token", 500)
		return
	}
	s.setAdminCookie(w, r, adminTok, 60*60*6)
	http.Redirect(w, r, "/admin/orders", 302)
}

func (s *Server) setAdminCookie(w http.ResponseWriter, r *http.Request, tok string, maxAge int) {
	secure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{Name: "admin_token", Value: tok, Path: "/", MaxAge: maxAge, HttpOnly: true, Secure: secure, SameSite: http.SameSiteStrictMode})
}

// issueAdminToken firma email y vencimiento con el secreto del admin.
func (s *Server) issueAdminToken(email string, dur time.Duration) (string, error) {
	exp := time.Now().Add(dur).Unix()
	payload := email + "|" + strconv.FormatInt(exp, 10)
	h := hmac.New(sha256.New, s.adminSecret)
	h.Write([]byte(payload))
	sig := base64.RawURLEncoding.EncodeToString(h.Sum(nil))
	return base64.RawURLEncoding.EncodeToString([]byte(payload)) + "." + sig, nil
}

func (s *Server) verifyAdminToken(tok string) (string, error) {
	parts := strings.SplitN(tok, ".", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("token malformado")
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", err
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", err
	}
	h := hmac.New(sha256.New, s.adminSecret)
	h.Write(payload)
	if !hmac.Equal(sig, h.Sum(nil)) {
		return "", fmt.Errorf("firma inválida")
	}
	fields := strings.SplitN(string(payload), "|", 2)
	if len(fields) != 2 {
		return "", fmt.Errorf("token malformado")
	}
	exp, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || time.Now().Unix() > exp {
		return "", fmt.Errorf("token vencido")
	}
	return fields[0], nil
}

func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		if _, err := s.verifyAdminToken(strings.TrimSpace(auth[7:])); err == nil {
			return true
		}
	}
	if c, err := r.Cookie("admin_token"); err == nil && c.Value != "" {
		if _, err := s.verifyAdminToken(c.Value); err == nil {
			return true
		}
	}
	http.Error(w, "unauthorized", 401)
	return false
}
