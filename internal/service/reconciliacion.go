package service

import (
	"fmt"

	"paucara/internal/apierror"
	"paucara/internal/model"

	"github.com/google/uuid"
)

// LineaReconciliada is the outcome of comparing what was sent against what
// the destination declared received for one transfer line. Diferencia is
// audit data; the quantity credited to destination stock is always
// CantidadRecibida, regardless of the sign or magnitude of the difference.
type LineaReconciliada struct {
	ProductoID       uuid.UUID
	CantidadEnviada  int
	CantidadRecibida int
	Diferencia       int
}

// Reconciliar computes per-line reconciliation for a reception.
// `cantidades` maps line index → declared received quantity; omitted lines
// default to their sent quantity. A negative declared quantity or an index
// outside the line range is a validation error, never silently clamped.
// Over-receipt (more than was sent) is deliberately allowed.
func Reconciliar(detalles []model.DetalleTransferencia, cantidades map[int]int) ([]LineaReconciliada, error) {
	var violations []string
	for idx, cantidad := range cantidades {
		if idx < 0 || idx >= len(detalles) {
			violations = append(violations, fmt.Sprintf("línea %d no existe en la transferencia", idx))
		}
		if cantidad < 0 {
			violations = append(violations, fmt.Sprintf("línea %d: cantidad recibida no puede ser negativa", idx))
		}
	}
	if len(violations) > 0 {
		return nil, apierror.NewValidation(violations...)
	}

	lineas := make([]LineaReconciliada, 0, len(detalles))
	for i, d := range detalles {
		recibido := d.Cantidad
		if v, ok := cantidades[i]; ok {
			recibido = v
		}
		lineas = append(lineas, LineaReconciliada{
			ProductoID:       d.ProductoID,
			CantidadEnviada:  d.Cantidad,
			CantidadRecibida: recibido,
			Diferencia:       recibido - d.Cantidad,
		})
	}
	return lineas, nil
}
