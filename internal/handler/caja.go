package handler

import (
	"net/http"
	"strconv"

	"lavanderia/internal/apierror"
	"lavanderia/internal/dto"
	"lavanderia/internal/middleware"
	"lavanderia/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CajaHandler struct {
	svc   service.CajaService
	vista service.VistaCaja
}

func NewCajaHandler(svc service.CajaService, vista service.VistaCaja) *CajaHandler {
	return &CajaHandler{svc: svc, vista: vista}
}

// Abrir godoc
// @Summary Abre una nueva sesion de caja
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCajaRequest true "Datos de apertura"
// @Success 201 {object} dto.SesionCajaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/abrir [post]
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Abrir(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Actual returns the currently open session, 404 when the drawer is closed.
func (h *CajaHandler) Actual(c *gin.Context) {
	sesion, err := h.svc.Abierta(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Sin sesión abierta"))
		return
	}
	resp, err := h.svc.Reporte(c.Request.Context(), sesion.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Resumen godoc
// @Summary Resumen en vivo de la sesion abierta
// @Description Devuelve el ultimo snapshot publicado por el agregador: subtotales por metodo de pago y efectivo esperado.
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Success 200 {object} arqueo.Resumen
// @Failure 404 {object} apierror.APIError
// @Router /v1/caja/resumen [get]
func (h *CajaHandler) Resumen(c *gin.Context) {
	resumen, ok := h.vista.Actual()
	if !ok {
		c.JSON(http.StatusNotFound, apierror.New("Resumen aún no disponible"))
		return
	}
	c.JSON(http.StatusOK, resumen)
}

// SolicitarCierre reports how many open tabs exist before the drawer closes.
// The operator confirms; nothing is blocked.
func (h *CajaHandler) SolicitarCierre(c *gin.Context) {
	resp, err := h.svc.SolicitarCierre(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cerrar godoc
// @Summary Cierra la sesion abierta y realiza el arqueo
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CerrarCajaRequest true "Efectivo contado"
// @Success 200 {object} dto.SesionCajaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/cerrar [post]
func (h *CajaHandler) Cerrar(c *gin.Context) {
	var req dto.CerrarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cerrar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reporte returns the stored reconciliation of any session by id.
func (h *CajaHandler) Reporte(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Reporte(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReportePDF streams the arqueo sheet of a closed session.
func (h *CajaHandler) ReportePDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	path, err := h.svc.ReportePDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, "arqueo_"+id.String()+".pdf")
}

// Historial returns a paginated list of closed cash sessions.
func (h *CajaHandler) Historial(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	resp, err := h.svc.Historial(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
