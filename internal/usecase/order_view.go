package usecase

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/phenrril/easyphone/internal/domain"
)

// Etiquetas para referencias que ya no resuelven en el catálogo: un pedido
// nunca debe romper el dashboard porque el producto fue borrado.
const (
	RemovedProductLabel = "Produto removido"
	RemovedVariantLabel = "??"
)

type OrderSummary struct {
	ID         uuid.UUID          `json:"id"`
	Client     string             `json:"client"`
	Delivery   string             `json:"delivery"`
	Payment    string             `json:"payment"`
	Items      []string           `json:"items"`
	GrandTotal float64            `json:"grandTotal"`
	PlacedAt   string             `json:"placedAt"`
	TimeStamp  string             `json:"timeStamp"`
	Status     domain.OrderStatus `json:"status"`
}

// BuildOrderSummaries es una proyección pura (pedidos, productos) → resúmenes
// listos para mostrar, ordenados del más nuevo al más viejo. El timestamp de
// ancho fijo hace que el orden lexicográfico descendente sea exactamente el
// cronológico.
func BuildOrderSummaries(orders []domain.Order, products []domain.Product) []OrderSummary {
	catalog := make(map[uuid.UUID]*domain.Product, len(products))
	for i := range products {
		catalog[products[i].ID] = &products[i]
	}

	out := make([]OrderSummary, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		s := OrderSummary{
			ID:         o.ID,
			Client:     o.Name,
			Payment:    o.PaymentMethod,
			GrandTotal: o.GrandTotal(),
			PlacedAt:   FormatTimeStamp(o.TimeStamp),
			TimeStamp:  o.TimeStamp,
			Status:     o.Status,
		}
		if o.HasDelivery() {
			s.Delivery = fmt.Sprintf("%s, %s", o.Address, o.Number)
		} else {
			s.Delivery = "Retirada"
		}
		for _, it := range o.Items {
			s.Items = append(s.Items, fmt.Sprintf("%s %s (x%d)", productName(catalog, it.ProductID), variantName(catalog, it.ProductID, it.VariantID), it.Quantity))
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].TimeStamp > out[j].TimeStamp })
	return out
}

func productName(catalog map[uuid.UUID]*domain.Product, productID uuid.UUID) string {
	if p, ok := catalog[productID]; ok {
		return p.Title
	}
	return RemovedProductLabel
}

func variantName(catalog map[uuid.UUID]*domain.Product, productID, variantID uuid.UUID) string {
	p, ok := catalog[productID]
	if !ok {
		return RemovedProductLabel
	}
	if v := p.Variant(variantID); v != nil {
		return v.Name
	}
	return RemovedVariantLabel
}

// FormatTimeStamp reagrupa "YYYYMMDDHHMMSS" como "dd/mm/yyyy hh:mm". Un valor
// fuera de formato se devuelve tal cual.
func FormatTimeStamp(ts string) string {
	if len(ts) != len(domain.TimeStampLayout) {
		return ts
	}
	return ts[6:8] + "/" + ts[4:6] + "/" + ts[0:4] + " " + ts[8:10] + ":" + ts[10:12]
}
