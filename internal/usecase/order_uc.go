package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/phenrril/easyphone/internal/cart"
	"github.com/phenrril/easyphone/internal/domain"
)

type OrderUC struct {
	Orders domain.OrderRepo

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

type CheckoutInput struct {
	Name          string
	Phone         string
	Email         string
	DeliveryType  domain.DeliveryType
	Address       string
	Number        string
	City          string
	Freight       float64
	PaymentMethod string
}

// CreateFromCart arma el pedido inmutable a partir del carrito: snapshot de
// (producto, variante, cantidad, precio), subtotal de mercadería sin flete y
// timestamp de ancho fijo. Nace Pendente. El descuento real de stock queda en
// manos de la capa de persistencia.
func (uc *OrderUC) CreateFromCart(ctx context.Context, c *cart.Cart, in CheckoutInput) (*domain.Order, error) {
	if c == nil || c.Empty() {
		return nil, errors.New("carrito vacío")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.New("nombre obligatorio")
	}
	if in.DeliveryType == "" {
		in.DeliveryType = domain.DeliveryPickup
	}
	if in.DeliveryType == domain.DeliveryShipping {
		if strings.TrimSpace(in.Address) == "" || strings.TrimSpace(in.City) == "" {
			return nil, errors.New("dirección y ciudad obligatorias para envío")
		}
		if in.Freight < 0 {
			return nil, errors.New("flete inválido")
		}
	}

	o := &domain.Order{
		ID:            uuid.New(),
		Status:        domain.StatusPendente,
		Name:          strings.TrimSpace(in.Name),
		Phone:         strings.TrimSpace(in.Phone),
		Email:         strings.TrimSpace(in.Email),
		DeliveryType:  in.DeliveryType,
		PaymentMethod: in.PaymentMethod,
		Amount:        c.Total(),
		TimeStamp:     domain.NewTimeStamp(time.Now()),
	}
	if in.DeliveryType == domain.DeliveryShipping {
		o.Address = strings.TrimSpace(in.Address)
		o.Number = strings.TrimSpace(in.Number)
		o.City = strings.TrimSpace(in.City)
		o.Freight = in.Freight
	}
	for _, l := range c.Lines() {
		o.Items = append(o.Items, domain.OrderItem{
			ID:        uuid.New(),
			OrderID:   o.ID,
			ProductID: l.ProductID,
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	if err := uc.Orders.Save(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (uc *OrderUC) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return uc.Orders.FindByID(ctx, id)
}

func (uc *OrderUC) ListAll(ctx context.Context) ([]domain.Order, error) {
	return uc.Orders.List(ctx)
}

// UpdateStatus es la única mutación permitida sobre un pedido persistido.
// Garantiza a lo sumo una transición en vuelo por pedido: un segundo pedido
// concurrente para el mismo id se rechaza hasta que el primero resuelva.
// Cualquier estado puede pasar a cualquier otro; pedir el estado actual es un
// éxito idempotente. El pedido devuelto refleja el nuevo estado recién después
// de que la escritura confirmó: si la persistencia falla, conserva el último
// estado durable.
func (uc *OrderUC) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	if !uc.begin(id) {
		return nil, domain.ErrStatusUpdateInFlight
	}
	defer uc.end(id)

	o, err := uc.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status == status {
		return o, nil
	}
	if err := uc.Orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	o.Status = status
	return o, nil
}

func (uc *OrderUC) begin(id uuid.UUID) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.inFlight == nil {
		uc.inFlight = map[uuid.UUID]struct{}{}
	}
	if _, busy := uc.inFlight[id]; busy {
		return false
	}
	uc.inFlight[id] = struct{}{}
	return true
}

func (uc *OrderUC) end(id uuid.UUID) {
	uc.mu.Lock()
	delete(uc.inFlight, id)
	uc.mu.Unlock()
}
