package domain

import (
	"context"

	"github.com/google/uuid"
)

type ProductFilter struct {
	Page     int
	PageSize int
	Query    string
	Category string
	Sort     string
}

type ProductRepo interface {
	Save(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, f ProductFilter) ([]Product, int64, error)
	SaveVariant(ctx context.Context, v *Variant) error
	DeleteVariant(ctx context.Context, id uuid.UUID) error
}

type OrderRepo interface {
	Save(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	// UpdateStatus escribe únicamente la columna status del pedido.
	UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) error
}

type SettingsRepo interface {
	Get(ctx context.Context) (*StoreSettings, error)
	Save(ctx context.Context, s *StoreSettings) error
	ListCoupons(ctx context.Context) ([]Coupon, error)
	SaveCoupon(ctx context.Context, c *Coupon) error
	DeleteCoupon(ctx context.Context, id uuid.UUID) error
}
