package handler

import (
	"net/http"

	"lavanderia/internal/apierror"
	"lavanderia/internal/dto"
	"lavanderia/internal/middleware"
	"lavanderia/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VentasHandler struct{ svc service.MovimientoService }

func NewVentasHandler(svc service.MovimientoService) *VentasHandler {
	return &VentasHandler{svc: svc}
}

// RegistrarVenta godoc
// @Summary      Registrar una venta
// @Description  Emite el numero de ticket y crea la venta dentro de la sesion abierta. Despacha fidelidad y recibo asincronos.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarVentaRequest true "Detalle de la venta"
// @Success      201  {object} dto.VentaResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/ventas [post]
func (h *VentasHandler) RegistrarVenta(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.RegistrarVenta(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// EditarNota godoc
// @Summary      Editar la nota de una venta
// @Description  La nota es el unico campo mutable de un movimiento registrado.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID de la venta"
// @Param        body body dto.EditarNotaRequest true "Nueva nota"
// @Success      204
// @Failure      404  {object} apierror.APIError
// @Router       /v1/ventas/{id}/nota [patch]
func (h *VentasHandler) EditarNota(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.EditarNotaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.EditarNota(c.Request.Context(), id, req.Nota); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListarVentas returns the sales ledger filtered by session, ticket, or date
// range.
func (h *VentasHandler) ListarVentas(c *gin.Context) {
	var filter dto.VentaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListVentas(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar ventas"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
