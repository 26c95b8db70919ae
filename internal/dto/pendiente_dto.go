package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearPendienteRequest struct {
	Items        []ItemVentaRequest `json:"items" validate:"required,min=1,dive"`
	ClienteID    *string            `json:"cliente_id"    validate:"omitempty,uuid"`
	Nota         string             `json:"nota"`
}

// CobrarPendienteRequest settles an open tab. The final payment method can
// never itself be deferred.
type CobrarPendienteRequest struct {
	MetodoPago string `json:"metodo_pago" validate:"required,oneof=efectivo transferencia debito credito"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PendienteResponse struct {
	ID           string              `json:"id"`
	NumeroTicket string              `json:"numero_ticket"`
	ClienteID    *string             `json:"cliente_id"`
	Monto        decimal.Decimal     `json:"monto"`
	Nota         string              `json:"nota"`
	Items        []ItemVentaResponse `json:"items"`
	CreatedAt    string              `json:"created_at"`
}
