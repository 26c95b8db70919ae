package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Prenda is a garment service type in the catalog (e.g. "Camisa", "Acolchado").
// Sales resolve the name and price at creation time and store only name +
// quantity on the line item.
type Prenda struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string          `gorm:"uniqueIndex;not null"`
	Precio    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Activa    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Prenda) TableName() string { return "prendas" }
