package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemsPendientes stores the garment lines of a pending sale as JSONB so the
// record stays a single row until it migrates into ventas/venta_items.
type ItemsPendientes []ItemPendiente

type ItemPendiente struct {
	Prenda   string `json:"prenda"`
	Cantidad int    `json:"cantidad"`
}

func (i ItemsPendientes) Value() (driver.Value, error) {
	if i == nil {
		return nil, nil
	}
	return json.Marshal(i)
}

func (i *ItemsPendientes) Scan(src interface{}) error {
	if src == nil {
		*i = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		if s, ok := src.(string); ok {
			b = []byte(s)
		} else {
			return fmt.Errorf("items pendientes: unexpected type %T", src)
		}
	}
	return json.Unmarshal(b, i)
}

// VentaPendiente is an open tab: a sale awaiting payment, not tied to any
// session. Its ticket number was issued at creation time and survives
// settlement. Presence in this table IS the pending state — settling moves
// the record into ventas, voiding deletes it; both are terminal.
type VentaPendiente struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroTicket string          `gorm:"type:varchar(6);uniqueIndex;not null"`
	ClienteID    *uuid.UUID      `gorm:"type:uuid"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Nota         string
	Items        ItemsPendientes `gorm:"type:jsonb"`
	CreatedAt    time.Time
}

func (VentaPendiente) TableName() string { return "ventas_pendientes" }
