package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	PrendaID string `json:"prenda_id" validate:"required,uuid"`
	Cantidad int    `json:"cantidad"  validate:"required,min=1"`
}

type RegistrarVentaRequest struct {
	MetodoPago   string             `json:"metodo_pago" validate:"required,oneof=efectivo transferencia debito credito"`
	Items        []ItemVentaRequest `json:"items"       validate:"required,min=1,dive"`
	ClienteID    *string            `json:"cliente_id"    validate:"omitempty,uuid"`
	ClienteEmail *string            `json:"cliente_email" validate:"omitempty,email"`
	Nota         string             `json:"nota"`
}

type RegistrarRetiroRequest struct {
	Monto                 decimal.Decimal `json:"monto"        validate:"required"`
	MetodoPago            string          `json:"metodo_pago"  validate:"required,oneof=efectivo transferencia"`
	CategoriaBeneficiario string          `json:"categoria_beneficiario" validate:"required,oneof=proveedor empleado dueno otro"`
	Beneficiario          string          `json:"beneficiario" validate:"required,min=2"`
	Motivo                string          `json:"motivo"       validate:"required,min=3"`
}

type RegistrarIngresoRequest struct {
	Monto      decimal.Decimal `json:"monto"       validate:"required"`
	MetodoPago string          `json:"metodo_pago" validate:"required,oneof=efectivo transferencia"`
	Motivo     string          `json:"motivo"      validate:"required,min=3"`
}

type EditarNotaRequest struct {
	Nota string `json:"nota" validate:"max=500"`
}

// VentaFilter narrows the ledger query: by session, date range, or exact
// ticket number.
type VentaFilter struct {
	SesionID string `form:"sesion_id"`
	Ticket   string `form:"ticket"`
	Desde    string `form:"desde"` // YYYY-MM-DD
	Hasta    string `form:"hasta"`
}

// MovimientoFilter narrows the retiro/ingreso queries. Same shape as
// VentaFilter minus the ticket: only sales carry ticket numbers.
type MovimientoFilter struct {
	SesionID string `form:"sesion_id"`
	Desde    string `form:"desde"` // YYYY-MM-DD
	Hasta    string `form:"hasta"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	Prenda   string `json:"prenda"`
	Cantidad int    `json:"cantidad"`
}

type RetiroResponse struct {
	ID                    string          `json:"id"`
	SesionCajaID          string          `json:"sesion_caja_id"`
	Monto                 decimal.Decimal `json:"monto"`
	MetodoPago            string          `json:"metodo_pago"`
	CategoriaBeneficiario string          `json:"categoria_beneficiario"`
	Beneficiario          string          `json:"beneficiario"`
	Motivo                string          `json:"motivo"`
	CreatedAt             string          `json:"created_at"`
}

type IngresoResponse struct {
	ID           string          `json:"id"`
	SesionCajaID string          `json:"sesion_caja_id"`
	Monto        decimal.Decimal `json:"monto"`
	MetodoPago   string          `json:"metodo_pago"`
	Motivo       string          `json:"motivo"`
	CreatedAt    string          `json:"created_at"`
}

type VentaResponse struct {
	ID           string              `json:"id"`
	NumeroTicket string              `json:"numero_ticket"`
	SesionCajaID string              `json:"sesion_caja_id"`
	ClienteID    *string             `json:"cliente_id"`
	MetodoPago   string              `json:"metodo_pago"`
	Monto        decimal.Decimal     `json:"monto"`
	Nota         string              `json:"nota"`
	Items        []ItemVentaResponse `json:"items"`
	CreatedAt    string              `json:"created_at"`
}
