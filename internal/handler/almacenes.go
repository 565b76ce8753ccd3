package handler

import (
	"net/http"

	"paucara/internal/apierror"
	"paucara/internal/dto"
	"paucara/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AlmacenesHandler struct{ svc service.AlmacenService }

func NewAlmacenesHandler(svc service.AlmacenService) *AlmacenesHandler {
	return &AlmacenesHandler{svc: svc}
}

func (h *AlmacenesHandler) Crear(c *gin.Context) {
	var req dto.CrearAlmacenRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, apierror.OK(resp))
}

func (h *AlmacenesHandler) Listar(c *gin.Context) {
	incluirInactivos := c.Query("incluir_inactivos") == "true"
	resp, err := h.svc.Listar(c.Request.Context(), incluirInactivos)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar almacenes"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AlmacenesHandler) ObtenerPorID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AlmacenesHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.CrearAlmacenRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apierror.OK(resp))
}

func (h *AlmacenesHandler) Desactivar(c *gin.Context) {
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
