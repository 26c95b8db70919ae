package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Desglose is a physical bill count keyed by face value ("1000" → 3 bills).
// Stored as JSONB; optional on both open and close.
type Desglose map[string]int

func (d Desglose) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

func (d *Desglose) Scan(src interface{}) error {
	if src == nil {
		*d = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		if s, ok := src.(string); ok {
			b = []byte(s)
		} else {
			return fmt.Errorf("desglose: unexpected type %T", src)
		}
	}
	return json.Unmarshal(b, d)
}

// SesionCaja represents one physical cash-drawer open/close period.
// ClosedAt IS NULL means the session is open; a partial unique index on the
// table guarantees at most one open session (see infra schema patches).
// Per-method totals are denormalized onto the row only at close time.
type SesionCaja struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID        uuid.UUID       `gorm:"type:uuid;not null"`
	MontoInicial     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DesgloseApertura Desglose        `gorm:"type:jsonb"`
	// DesvioApertura = MontoInicial - MontoContado of the previous closed
	// session. Null when this is the first session ever.
	DesvioApertura *decimal.Decimal `gorm:"type:decimal(12,2)"`

	MontoContado   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	DesgloseCierre Desglose         `gorm:"type:jsonb"`
	DesvioCierre   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// Clasificacion: "cuadrada" | "sobrante" | "faltante"
	Clasificacion *string `gorm:"type:varchar(20)"`

	TotalVentasEfectivo        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalVentasTransferencia   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalVentasDebito          *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalVentasCredito         *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalRetirosEfectivo       *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalRetirosTransferencia  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalIngresosEfectivo      *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalIngresosTransferencia *decimal.Decimal `gorm:"type:decimal(12,2)"`

	OpenedAt time.Time
	ClosedAt *time.Time `gorm:"index"`
}

func (SesionCaja) TableName() string { return "sesiones_caja" }

// Abierta reports whether this session is still open.
func (s *SesionCaja) Abierta() bool { return s.ClosedAt == nil }
