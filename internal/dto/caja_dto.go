package dto

import (
	"lavanderia/internal/arqueo"
	"lavanderia/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	MontoInicial decimal.Decimal `json:"monto_inicial" validate:"min=0"`
	// Desglose is optional; when present it must sum to monto_inicial.
	Desglose model.Desglose `json:"desglose"`
}

type CerrarCajaRequest struct {
	MontoContado decimal.Decimal `json:"monto_contado" validate:"min=0"`
	Desglose     model.Desglose  `json:"desglose"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SolicitarCierreResponse struct {
	// PendientesDeCobro is a warn-and-confirm figure: closing does not block
	// on open tabs, the operator just has to acknowledge them.
	PendientesDeCobro int64 `json:"pendientes_de_cobro"`
}

type TotalesCierre struct {
	Ventas   arqueo.TotalesVentas     `json:"ventas"`
	Retiros  arqueo.TotalesMovimiento `json:"retiros"`
	Ingresos arqueo.TotalesMovimiento `json:"ingresos"`
}

type SesionCajaResponse struct {
	ID             string           `json:"id"`
	UsuarioID      string           `json:"usuario_id"`
	MontoInicial   decimal.Decimal  `json:"monto_inicial"`
	DesvioApertura *decimal.Decimal `json:"desvio_apertura"`
	Estado         string           `json:"estado"` // abierta | cerrada
	OpenedAt       string           `json:"opened_at"`

	// Closing figures — nil while the session is open.
	MontoContado     *decimal.Decimal `json:"monto_contado,omitempty"`
	EfectivoEsperado *decimal.Decimal `json:"efectivo_esperado,omitempty"`
	DesvioCierre     *decimal.Decimal `json:"desvio_cierre,omitempty"`
	Clasificacion    *string          `json:"clasificacion,omitempty"`
	Totales          *TotalesCierre   `json:"totales,omitempty"`
	ClosedAt         *string          `json:"closed_at,omitempty"`
}

type HistorialCajaResponse struct {
	Data  []SesionCajaResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
