package domain

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"size:180;not null"`
	Brand       string    `gorm:"size:100"`
	Category    string    `gorm:"size:100;index"`
	Description string    `gorm:"type:text"`
	Images      []Image
	Variants    []Variant
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OutOfStock indica que ninguna variante tiene stock.
func (p *Product) OutOfStock() bool {
	for _, v := range p.Variants {
		if v.Stock > 0 {
			return false
		}
	}
	return true
}

func (p *Product) Variant(id uuid.UUID) *Variant {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i]
		}
	}
	return nil
}

type Variant struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID   uuid.UUID `gorm:"type:uuid;index"`
	Name        string    `gorm:"size:120;not null"`
	Stock       int       `gorm:"type:int;default:0"`
	Price       float64   `gorm:"type:decimal(12,2);not null"`
	Promotional float64   `gorm:"type:decimal(12,2);default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EffectivePrice resuelve el precio unitario: promocional si está cargado
// (mayor a cero), si no el de lista.
func (v Variant) EffectivePrice() float64 {
	if v.Promotional > 0 {
		return v.Promotional
	}
	return v.Price
}

type Image struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;index"`
	URL       string    `gorm:"size:255"`
	Alt       string    `gorm:"size:140"`
	Position  int       `gorm:"type:int;default:0"`
	CreatedAt time.Time
}
