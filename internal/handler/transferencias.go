package handler

import (
	"net/http"

	"paucara/internal/apierror"
	"paucara/internal/dto"
	"paucara/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TransferenciasHandler struct{ svc service.TransferenciaService }

func NewTransferenciasHandler(svc service.TransferenciaService) *TransferenciasHandler {
	return &TransferenciasHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear transferencia
// @Description  Crea una transferencia en estado borrador. No afecta stock.
// @Tags         transferencias
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearTransferenciaRequest true "Datos de la transferencia"
// @Success      201  {object} apierror.Envelope{data=dto.TransferenciaResponse}
// @Failure      422  {object} apierror.Envelope
// @Router       /v1/inventario/transferencias/crear [post]
func (h *TransferenciasHandler) Crear(c *gin.Context) {
	var req dto.CrearTransferenciaRequest
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

// Actualizar godoc
// @Summary      Editar transferencia en borrador
// @Description  Reemplaza destino, transporte, observaciones y líneas. Solo en estado borrador; el almacén de origen es inmutable.
// @Tags         transferencias
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID de la transferencia"
// @Param        body body dto.CrearTransferenciaRequest true "Datos actualizados"
// @Success      200  {object} apierror.Envelope{data=dto.TransferenciaResponse}
// @Failure      409  {object} apierror.Envelope
// @Router       /v1/inventario/transferencias/{id} [put]
func (h *TransferenciasHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.CrearTransferenciaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Editar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apierror.OK(resp))
}

// Enviar godoc
// @Summary      Enviar transferencia
// @Description  Transición borrador→enviado. Descuenta el stock del origen de forma atómica; si falta stock para alguna línea no descuenta nada.
// @Tags         transferencias
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la transferencia"
// @Success      200 {object} apierror.Envelope{data=dto.TransferenciaResponse}
// @Failure      409 {object} apierror.Envelope
// @Router       /v1/inventario/transferencias/{id}/enviar [post]
func (h *TransferenciasHandler) Enviar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Enviar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apierror.OKMsg("Transferencia enviada", resp))
}

// Recibir godoc
// @Summary      Recibir transferencia
// @Description  Transición enviado→recibido. Acredita al destino las cantidades recibidas declaradas; las líneas omitidas se reciben completas.
// @Tags         transferencias
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID de la transferencia"
// @Param        body body dto.RecibirTransferenciaRequest false "Cantidades recibidas por línea"
// @Success      200  {object} apierror.Envelope{data=dto.TransferenciaResponse}
// @Failure      409  {object} apierror.Envelope
// @Router       /v1/inventario/transferencias/{id}/recibir [post]
func (h *TransferenciasHandler) Recibir(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.RecibirTransferenciaRequest
	if c.Request.ContentLength > 0 {
		if !bindAndValidate(c, &req) {
			return
		}
	}
	resp, err := h.svc.Recibir(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apierror.OKMsg("Transferencia recibida", resp))
}

// Cancelar godoc
// @Summary      Cancelar transferencia
// @Description  Cancela desde borrador o enviado. Si estaba enviada restaura el stock del origen; el motivo es obligatorio.
// @Tags         transferencias
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID de la transferencia"
// @Param        body body dto.CancelarTransferenciaRequest true "Motivo de cancelación"
// @Success      200  {object} apierror.Envelope{data=dto.TransferenciaResponse}
// @Failure      409  {object} apierror.Envelope
// @Router       /v1/inventario/transferencias/{id}/cancelar [post]
func (h *TransferenciasHandler) Cancelar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.CancelarTransferenciaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), id, req.MotivoCancelacion)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apierror.OKMsg("Transferencia cancelada", resp))
}

// Listar godoc
// @Summary      Listar transferencias
// @Description  Lista paginada con filtros por estado, almacén de origen/destino y búsqueda por número u observaciones.
// @Tags         transferencias
// @Produce      json
// @Security     BearerAuth
// @Param        busqueda        query string false "Número u observaciones"
// @Param        estado          query string false "borrador | enviado | recibido | cancelado | all"
// @Param        almacen_origen  query string false "UUID del almacén de origen"
// @Param        almacen_destino query string false "UUID del almacén de destino"
// @Param        page            query int    false "Página (default 1)"
// @Param        limit           query int    false "Registros por página (default 50)"
// @Success      200 {object} dto.TransferenciaListResponse
// @Router       /v1/inventario/transferencias [get]
func (h *TransferenciasHandler) Listar(c *gin.Context) {
	var filter dto.TransferenciaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar transferencias"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorID godoc
// @Summary      Detalle de transferencia
// @Tags         transferencias
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la transferencia"
// @Success      200 {object} dto.TransferenciaResponse
// @Failure      404 {object} apierror.Envelope
// @Router       /v1/inventario/transferencias/{id} [get]
func (h *TransferenciasHandler) ObtenerPorID(c *gin.Context) {
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
