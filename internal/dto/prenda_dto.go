package dto

import "github.com/shopspring/decimal"

type CrearPrendaRequest struct {
	Nombre string          `json:"nombre" validate:"required,min=2,max=100"`
	Precio decimal.Decimal `json:"precio" validate:"required"`
}

type ActualizarPrendaRequest struct {
	Nombre string           `json:"nombre" validate:"omitempty,min=2,max=100"`
	Precio *decimal.Decimal `json:"precio"`
}

type PrendaResponse struct {
	ID     string          `json:"id"`
	Nombre string          `json:"nombre"`
	Precio decimal.Decimal `json:"precio"`
	Activa bool            `json:"activa"`
}
