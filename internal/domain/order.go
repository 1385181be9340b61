package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusPendente  OrderStatus = "Pendente"
	StatusPago      OrderStatus = "Pago"
	StatusEnviado   OrderStatus = "Enviado"
	StatusConcluido OrderStatus = "Concluído"
	StatusCancelado OrderStatus = "Cancelado"
)

// OrderStatuses en el orden que muestra el dashboard.
var OrderStatuses = []OrderStatus{StatusPendente, StatusPago, StatusEnviado, StatusConcluido, StatusCancelado}

// Valid acepta cualquiera de los cinco estados. No hay grafo de transiciones:
// cualquier estado puede pasar a cualquier otro, incluso desde Cancelado o
// Concluído.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPendente, StatusPago, StatusEnviado, StatusConcluido, StatusCancelado:
		return true
	}
	return false
}

type DeliveryType string

const (
	DeliveryPickup   DeliveryType = "pickup"
	DeliveryShipping DeliveryType = "delivery"
)

// TimeStampLayout es el formato de ancho fijo que usa Order.TimeStamp.
// Al ser zero-padded, el orden lexicográfico coincide con el cronológico.
const TimeStampLayout = "20060102150405"

func NewTimeStamp(t time.Time) string {
	return t.Format(TimeStampLayout)
}

// Order es inmutable después del checkout salvo por Status, que es la única
// columna que el dashboard puede tocar.
type Order struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey"`
	Status        OrderStatus  `gorm:"type:varchar(20);index"`
	Name          string       `gorm:"size:140"`
	Phone         string       `gorm:"size:50"`
	Email         string       `gorm:"size:140"`
	DeliveryType  DeliveryType `gorm:"type:varchar(10)"`
	Address       string       `gorm:"size:255"`
	Number        string       `gorm:"size:20"`
	City          string       `gorm:"size:100"`
	Freight       float64      `gorm:"type:decimal(12,2);default:0"`
	PaymentMethod string       `gorm:"size:40"`
	Items         []OrderItem
	Amount        float64 `gorm:"type:decimal(12,2)"`
	TimeStamp     string  `gorm:"type:char(14);index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasDelivery indica si el pedido lleva envío (y por lo tanto flete).
func (o *Order) HasDelivery() bool { return o.DeliveryType == DeliveryShipping }

// GrandTotal es mercadería más flete cuando hay envío.
func (o *Order) GrandTotal() float64 {
	if o.HasDelivery() {
		return o.Amount + o.Freight
	}
	return o.Amount
}

type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;index"`
	ProductID uuid.UUID `gorm:"type:uuid;index"`
	VariantID uuid.UUID `gorm:"type:uuid;index"`
	Quantity  int       `gorm:"not null"`
	UnitPrice float64   `gorm:"type:decimal(12,2)"`
}
