package service

import "paucara/internal/model"

// RequiereTransporte decides whether a transfer between two warehouses is
// "physical" (needs a vehicle/driver) or "virtual". The result is
// informational only: it never blocks a state transition, it just tells the
// caller whether the vehiculo/chofer fields are meaningful.
//
// A transfer requires transport when either warehouse is flagged
// requiere_transporte_externo, or when the warehouses sit at different
// physical locations. Two warehouses without a registered location count as
// the same place.
func RequiereTransporte(origen, destino *model.Almacen) bool {
	if origen.RequiereTransporteExterno || destino.RequiereTransporteExterno {
		return true
	}
	switch {
	case origen.UbicacionFisica == nil && destino.UbicacionFisica == nil:
		return false
	case origen.UbicacionFisica == nil || destino.UbicacionFisica == nil:
		return true
	default:
		return *origen.UbicacionFisica != *destino.UbicacionFisica
	}
}
