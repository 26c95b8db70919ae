package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MetodoPago values accepted across money movements.
// Retiros and ingresos manuales only accept efectivo | transferencia.
const (
	MetodoEfectivo      = "efectivo"
	MetodoTransferencia = "transferencia"
	MetodoDebito        = "debito"
	MetodoCredito       = "credito"
)

// Venta is a settled sale in the money-movement ledger.
// Immutable once created, with one exception: Nota may be edited.
// SesionCajaID is always set here — a sale awaiting payment lives in
// ventas_pendientes instead and only migrates into this table on settlement,
// with CreatedAt reflecting the settlement time.
type Venta struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroTicket string          `gorm:"type:varchar(6);uniqueIndex;not null"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClienteID    *uuid.UUID      `gorm:"type:uuid"` // null = mostrador (anonymous)
	MetodoPago   string          `gorm:"type:varchar(20);not null"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Nota         string
	Items        []VentaItem `gorm:"foreignKey:VentaID"`
	CreatedAt    time.Time   `gorm:"index"`
}

func (Venta) TableName() string { return "ventas" }

// VentaItem is one garment line on a sale. The garment name is resolved from
// the catalog at sale time and stored denormalized — no live price reference.
type VentaItem struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Prenda   string    `gorm:"not null"`
	Cantidad int       `gorm:"not null"`
}

func (VentaItem) TableName() string { return "venta_items" }
