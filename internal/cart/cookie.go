package cart

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/phenrril/easyphone/internal/domain"
)

// CookieName es el slot client-side donde se espeja el carrito para que
// sobreviva recargas. Es un cache firmado, no fuente de verdad: al leerlo se
// rehidrata contra el catálogo actual.
const CookieName = "easy-phone-cart"

type cookieItem struct {
	ProductID uuid.UUID `json:"productId"`
	VariantID uuid.UUID `json:"variantId"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unitPrice"`
}

// ReadCookie reconstruye el carrito desde la cookie firmada. Las entradas
// cuyo producto o variante ya no existen se descartan; las cantidades se
// acotan al stock actual. El precio unitario es el snapshot del alta.
func ReadCookie(r *http.Request, key []byte, lookup func(uuid.UUID) (*domain.Product, error)) *Cart {
	c := New()
	ck, err := r.Cookie(CookieName)
	if err != nil {
		return c
	}
	payload, ok := verify(ck.Value, key)
	if !ok {
		return c
	}
	var items []cookieItem
	if json.Unmarshal(payload, &items) != nil {
		return c
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		p, err := lookup(it.ProductID)
		if err != nil || p == nil {
			continue
		}
		v := p.Variant(it.VariantID)
		if v == nil {
			continue
		}
		c.Add(p, v, it.Quantity)
		if i := c.find(p.ID, v.ID); i >= 0 && it.UnitPrice > 0 {
			c.lines[i].UnitPrice = it.UnitPrice
		}
	}
	return c
}

// WriteCookie espeja el estado actual del carrito en la cookie firmada.
func WriteCookie(w http.ResponseWriter, key []byte, c *Cart) {
	items := make([]cookieItem, 0, c.Len())
	for _, l := range c.Lines() {
		items = append(items, cookieItem{ProductID: l.ProductID, VariantID: l.VariantID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	b, _ := json.Marshal(items)
	http.SetCookie(w, &http.Cookie{Name: CookieName, Value: sign(b, key), Path: "/", MaxAge: 60 * 60 * 24 * 7, HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// ClearCookie descarta el espejo client-side (post checkout).
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

func sign(payload, key []byte) string {
	h := hmac.New(sha256.New, key)
	h.Write(payload)
	sig := base64.RawURLEncoding.EncodeToString(h.Sum(nil))
	return sig + "." + base64.RawURLEncoding.EncodeToString(payload)
}

func verify(value string, key []byte) ([]byte, bool) {
	parts := strings.SplitN(value, ".", 2)
	if len(parts) != 2 {
		return nil, false
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, false
	}
	h := hmac.New(sha256.New, key)
	h.Write(payload)
	if !hmac.Equal(sig, h.Sum(nil)) {
		return nil, false
	}
	return payload, true
}
