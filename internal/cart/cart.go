package cart

import (
	"github.com/google/uuid"

	"github.com/phenrril/easyphone/internal/domain"
)

// Line es una entrada del carrito, identificada por (producto, variante).
// Guarda un snapshot de la variante al momento del alta: el precio unitario
// queda congelado y el stock conocido funciona como tope consultivo. El
// control autoritativo de stock ocurre recién al persistir el pedido.
type Line struct {
	ProductID    uuid.UUID `json:"productId"`
	VariantID    uuid.UUID `json:"variantId"`
	Title        string    `json:"title"`
	Brand        string    `json:"brand"`
	Category     string    `json:"category"`
	Images       []string  `json:"images"`
	Description  string    `json:"description"`
	VariantName  string    `json:"variantName"`
	VariantStock int       `json:"variantStock"`
	Quantity     int       `json:"quantity"`
	UnitPrice    float64   `json:"unitPrice"`
}

func (l Line) Subtotal() float64 { return float64(l.Quantity) * l.UnitPrice }

// Cart mantiene las líneas en orden de inserción. Nunca conviven dos líneas
// con la misma clave (producto, variante): agregar de nuevo incrementa la
// existente. Toda mutación pasa por Add/SetQuantity/Remove.
type Cart struct {
	lines []Line
}

func New() *Cart { return &Cart{} }

func (c *Cart) find(productID, variantID uuid.UUID) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID && c.lines[i].VariantID == variantID {
			return i
		}
	}
	return -1
}

// Add suma qty unidades de la variante al carrito. Si la línea ya existe
// incrementa su cantidad y refresca el snapshot de stock; si no, la crea con
// el precio efectivo de la variante. La cantidad resultante queda acotada al
// stock conocido. Con stock agotado no se crea línea.
func (c *Cart) Add(p *domain.Product, v *domain.Variant, qty int) {
	if p == nil || v == nil {
		return
	}
	if qty < 1 {
		qty = 1
	}
	if i := c.find(p.ID, v.ID); i >= 0 {
		l := &c.lines[i]
		l.VariantStock = v.Stock
		l.Quantity = clamp(l.Quantity+qty, v.Stock)
		if l.Quantity == 0 {
			c.removeAt(i)
		}
		return
	}
	if v.Stock <= 0 {
		return
	}
	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, img.URL)
	}
	c.lines = append(c.lines, Line{
		ProductID:    p.ID,
		VariantID:    v.ID,
		Title:        p.Title,
		Brand:        p.Brand,
		Category:     p.Category,
		Images:       images,
		Description:  p.Description,
		VariantName:  v.Name,
		VariantStock: v.Stock,
		Quantity:     clamp(qty, v.Stock),
		UnitPrice:    v.EffectivePrice(),
	})
}

// SetQuantity fija la cantidad de una línea existente. Cero o negativo
// equivale a Remove; por encima del stock conocido se acota al stock.
func (c *Cart) SetQuantity(productID, variantID uuid.UUID, qty int) {
	i := c.find(productID, variantID)
	if i < 0 {
		return
	}
	if qty <= 0 {
		c.removeAt(i)
		return
	}
	c.lines[i].Quantity = clamp(qty, c.lines[i].VariantStock)
	if c.lines[i].Quantity == 0 {
		c.removeAt(i)
	}
}

// Remove borra la línea si existe; si no, no hace nada.
func (c *Cart) Remove(productID, variantID uuid.UUID) {
	if i := c.find(productID, variantID); i >= 0 {
		c.removeAt(i)
	}
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

func (c *Cart) Find(productID, variantID uuid.UUID) (Line, bool) {
	if i := c.find(productID, variantID); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

// Lines devuelve una copia: las líneas sólo se mutan por los métodos del Cart.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) Empty() bool { return len(c.lines) == 0 }

// Total es la suma de cantidad por precio unitario de todas las líneas.
func (c *Cart) Total() float64 {
	total := 0.0
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

func clamp(qty, stock int) int {
	if stock < 0 {
		stock = 0
	}
	if qty > stock {
		return stock
	}
	return qty
}
