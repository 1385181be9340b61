package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/phenrril/easyphone/internal/domain"
)

type ProductUC struct {
	Products domain.ProductRepo
}

func (uc *ProductUC) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	if f.PageSize == 0 {
		f.PageSize = 20
	}
	return uc.Products.List(ctx, f)
}

func (uc *ProductUC) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if id == uuid.Nil {
		return nil, domain.ErrNotFound
	}
	return uc.Products.FindByID(ctx, id)
}

// Create da de alta un producto con al menos una variante. El stock de las
// variantes lo administra la capa de persistencia, nunca el carrito.
func (uc *ProductUC) Create(ctx context.Context, p *domain.Product) error {
	if p.Title == "" {
		return errors.New("título vacío")
	}
	if len(p.Variants) == 0 {
		return errors.New("el producto necesita al menos una variante")
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for i := range p.Variants {
		v := &p.Variants[i]
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
		v.ProductID = p.ID
		if v.Price <= 0 {
			return errors.Errorf("variante %q sin precio", v.Name)
		}
		if v.Promotional >= v.Price {
			return errors.Errorf("variante %q: promocional debe ser menor al precio", v.Name)
		}
		if v.Stock < 0 {
			return errors.Errorf("variante %q con stock negativo", v.Name)
		}
	}
	return uc.Products.Save(ctx, p)
}

func (uc *ProductUC) SaveVariant(ctx context.Context, v *domain.Variant) error {
	if v == nil || v.ProductID == uuid.Nil {
		return errors.New("variante sin producto")
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.Price <= 0 {
		return errors.New("precio inválido")
	}
	if v.Promotional >= v.Price {
		return errors.New("promocional debe ser menor al precio")
	}
	return uc.Products.SaveVariant(ctx, v)
}

func (uc *ProductUC) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errors.New("variant id vacío")
	}
	return uc.Products.DeleteVariant(ctx, id)
}
