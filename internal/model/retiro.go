package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Retiro is a cash withdrawal from the drawer (supplier payment, owner draw,
// errand money). Immutable. Sufficient-cash is checked by the caller against
// the live session snapshot, not here.
type Retiro struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago   string          `gorm:"type:varchar(20);not null"` // efectivo | transferencia
	// CategoriaBeneficiario: "proveedor" | "empleado" | "dueno" | "otro"
	CategoriaBeneficiario string    `gorm:"type:varchar(30);not null"`
	Beneficiario          string    `gorm:"not null"`
	Motivo                string    `gorm:"not null"`
	UsuarioID             uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt             time.Time
}

func (Retiro) TableName() string { return "retiros" }
