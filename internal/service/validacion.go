package service

import (
	"fmt"

	"paucara/internal/apierror"
	"paucara/internal/model"

	"github.com/google/uuid"
)

// StockSnapshot maps producto → quantity available at the origin warehouse
// at validation time.
type StockSnapshot map[uuid.UUID]int

// ValidarTransferencia checks a transfer and its lines against the product
// catalog. It is pure: callers resolve the catalog and pass it in. Returns a
// list of human-readable violations; an empty list means valid.
//
// Stock is deliberately NOT checked here — BORRADOR transfers make no claim
// on stock. Availability is verified separately at enviar time via
// ValidarStockOrigen.
func ValidarTransferencia(t *model.TransferenciaInventario, catalogo map[uuid.UUID]*model.Producto) []string {
	var violations []string

	if t.AlmacenOrigenID == t.AlmacenDestinoID {
		violations = append(violations, "el almacén de origen y el de destino deben ser distintos")
	}
	if len(t.Detalles) == 0 {
		violations = append(violations, "la transferencia debe tener al menos una línea")
	}

	for i, d := range t.Detalles {
		p, ok := catalogo[d.ProductoID]
		switch {
		case !ok:
			violations = append(violations, fmt.Sprintf("línea %d: producto %s no existe", i, d.ProductoID))
		case !p.Activo:
			violations = append(violations, fmt.Sprintf("línea %d: producto %s está inactivo", i, p.Nombre))
		}
		if d.Cantidad <= 0 {
			violations = append(violations, fmt.Sprintf("línea %d: la cantidad debe ser mayor a cero", i))
		}
	}

	return violations
}

// ValidarStockOrigen checks every line against the origin stock snapshot and
// returns the lines that cannot be covered. An empty result means the whole
// transfer can be sent.
func ValidarStockOrigen(detalles []model.DetalleTransferencia, catalogo map[uuid.UUID]*model.Producto, stock StockSnapshot) []apierror.StockFaltante {
	var faltantes []apierror.StockFaltante
	for _, d := range detalles {
		disponible := stock[d.ProductoID]
		if d.Cantidad > disponible {
			nombre := d.ProductoID.String()
			if p, ok := catalogo[d.ProductoID]; ok {
				nombre = p.Nombre
			}
			faltantes = append(faltantes, apierror.StockFaltante{
				ProductoID: d.ProductoID,
				Producto:   nombre,
				Solicitado: d.Cantidad,
				Disponible: disponible,
			})
		}
	}
	return faltantes
}
