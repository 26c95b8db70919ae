package handler

import (
	"net/http"

	"lavanderia/internal/apierror"
	"lavanderia/internal/dto"
	"lavanderia/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PrendasHandler struct{ svc service.PrendaService }

func NewPrendasHandler(svc service.PrendaService) *PrendasHandler {
	return &PrendasHandler{svc: svc}
}

func (h *PrendasHandler) Crear(c *gin.Context) {
	var req dto.CrearPrendaRequest
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

func (h *PrendasHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ActualizarPrendaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PrendasHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar prendas"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PrendasHandler) Desactivar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
