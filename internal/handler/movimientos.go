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

// MovimientosHandler covers the non-sale money movements: withdrawals and
// manual incomes.
type MovimientosHandler struct{ svc service.MovimientoService }

func NewMovimientosHandler(svc service.MovimientoService) *MovimientosHandler {
	return &MovimientosHandler{svc: svc}
}

// RegistrarRetiro godoc
// @Summary      Registrar un retiro de caja
// @Description  Un retiro en efectivo no puede superar el efectivo esperado de la sesion.
// @Tags         movimientos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarRetiroRequest true "Detalle del retiro"
// @Success      204
// @Failure      400 {object} apierror.APIError
// @Router       /v1/retiros [post]
func (h *MovimientosHandler) RegistrarRetiro(c *gin.Context) {
	var req dto.RegistrarRetiroRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	if err := h.svc.RegistrarRetiro(c.Request.Context(), usuarioID, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegistrarIngreso godoc
// @Summary      Registrar un ingreso manual
// @Tags         movimientos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarIngresoRequest true "Detalle del ingreso"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/ingresos [post]
func (h *MovimientosHandler) RegistrarIngreso(c *gin.Context) {
	var req dto.RegistrarIngresoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	if err := h.svc.RegistrarIngreso(c.Request.Context(), usuarioID, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListarRetiros returns the withdrawal log filtered by session or date range.
func (h *MovimientosHandler) ListarRetiros(c *gin.Context) {
	var filter dto.MovimientoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListRetiros(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar retiros"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarIngresos returns the manual-income log filtered by session or date
// range.
func (h *MovimientosHandler) ListarIngresos(c *gin.Context) {
	var filter dto.MovimientoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListIngresos(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar ingresos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
