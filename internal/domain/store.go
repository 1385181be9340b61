package domain

import (
	"time"

	"github.com/google/uuid"
)

type StoreSettings struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"size:140"`
	Description string    `gorm:"type:text"`
	Email       string    `gorm:"size:140"`
	Instagram   string    `gorm:"size:140"`
	Facebook    string    `gorm:"size:140"`
	WhatsApp    string    `gorm:"size:50"`
	UpdatedAt   time.Time
}

// Coupon vive en la configuración de la tienda. El checkout todavía no lo
// consume: es alta/baja desde el dashboard nada más.
type Coupon struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code      string    `gorm:"size:40;uniqueIndex"`
	Percent   int       `gorm:"type:int"`
	Active    bool      `gorm:"default:true"`
	CreatedAt time.Time
}
