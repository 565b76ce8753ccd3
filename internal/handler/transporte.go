package handler

import (
	"net/http"

	"paucara/internal/apierror"
	"paucara/internal/repository"

	"github.com/gin-gonic/gin"
)

// TransporteHandler serves the vehicle / driver catalogs used when assigning
// transport to a transfer. Read-only; fleet management lives elsewhere.
type TransporteHandler struct{ repo repository.TransporteRepository }

func NewTransporteHandler(repo repository.TransporteRepository) *TransporteHandler {
	return &TransporteHandler{repo: repo}
}

func (h *TransporteHandler) ListarVehiculos(c *gin.Context) {
	vehiculos, err := h.repo.ListVehiculos(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar vehiculos"))
		return
	}
	c.JSON(http.StatusOK, vehiculos)
}

func (h *TransporteHandler) ListarChoferes(c *gin.Context) {
	choferes, err := h.repo.ListChoferes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar choferes"))
		return
	}
	c.JSON(http.StatusOK, choferes)
}
