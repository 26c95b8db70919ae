package handler

import (
	"net/http"

	"lavanderia/internal/apierror"
	"lavanderia/internal/dto"
	"lavanderia/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PendientesHandler struct{ svc service.PendienteService }

func NewPendientesHandler(svc service.PendienteService) *PendientesHandler {
	return &PendientesHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear una venta pendiente
// @Description  Abre una cuenta por cobrar con numero de ticket propio. No requiere sesion abierta.
// @Tags         pendientes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearPendienteRequest true "Detalle"
// @Success      201 {object} dto.PendienteResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/pendientes [post]
func (h *PendientesHandler) Crear(c *gin.Context) {
	var req dto.CrearPendienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Cobrar godoc
// @Summary      Cobrar una venta pendiente
// @Description  Liquida la pendiente en la sesion abierta: conserva el ticket original, toma fecha y metodo de pago actuales.
// @Tags         pendientes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID de la pendiente"
// @Param        body body dto.CobrarPendienteRequest true "Metodo de pago"
// @Success      200 {object} dto.VentaResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/pendientes/{id}/cobrar [post]
func (h *PendientesHandler) Cobrar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.CobrarPendienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cobrar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Anular voids an open tab. Terminal.
func (h *PendientesHandler) Anular(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.Anular(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Listar returns all open tabs, oldest first.
func (h *PendientesHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar pendientes"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
