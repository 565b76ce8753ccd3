package handler

import (
	"net/http"

	"paucara/internal/apierror"
	"paucara/internal/dto"
	"paucara/internal/repository"
	"paucara/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StockHandler struct{ svc service.StockService }

func NewStockHandler(svc service.StockService) *StockHandler { return &StockHandler{svc: svc} }

// Listar godoc
// @Summary      Consultar stock
// @Description  Stock por almacén y/o producto. Las consultas de un almacén completo se sirven desde la cache.
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Param        almacen_id  query string false "UUID del almacén"
// @Param        producto_id query string false "UUID del producto"
// @Success      200 {array} dto.StockEntryResponse
// @Router       /v1/inventario/stock [get]
func (h *StockHandler) Listar(c *gin.Context) {
	var filter dto.StockFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al consultar stock"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Ajustar godoc
// @Summary      Ajuste manual de stock
// @Description  Aplica un delta positivo o negativo con motivo obligatorio. Nunca deja la entrada por debajo de cero.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AjusteStockRequest true "Ajuste"
// @Success      200  {object} apierror.Envelope{data=dto.StockEntryResponse}
// @Failure      409  {object} apierror.Envelope
// @Router       /v1/inventario/stock/ajuste [patch]
func (h *StockHandler) Ajustar(c *gin.Context) {
	var req dto.AjusteStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Ajustar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apierror.OKMsg("Stock ajustado", resp))
}

// Movimientos godoc
// @Summary      Historial de movimientos de stock
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Param        almacen_id  query string false "UUID del almacén"
// @Param        producto_id query string false "UUID del producto"
// @Param        tipo        query string false "transferencia_envio | transferencia_recepcion | transferencia_reversion | ajuste_manual"
// @Param        page        query int    false "Página (default 1)"
// @Param        limit       query int    false "Registros por página (default 100)"
// @Success      200 {object} apierror.Envelope
// @Router       /v1/inventario/movimientos [get]
func (h *StockHandler) Movimientos(c *gin.Context) {
	var filter repository.MovimientoStockFilter
	if v := c.Query("almacen_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("almacen_id invalido"))
			return
		}
		filter.AlmacenID = &id
	}
	if v := c.Query("producto_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("producto_id invalido"))
			return
		}
		filter.ProductoID = &id
	}
	filter.Tipo = c.Query("tipo")
	filter.Page = queryInt(c, "page", 1)
	filter.Limit = queryInt(c, "limit", 100)

	movimientos, total, err := h.svc.ListarMovimientos(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al consultar movimientos"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  movimientos,
		"total": total,
		"page":  filter.Page,
		"limit": filter.Limit,
	})
}
