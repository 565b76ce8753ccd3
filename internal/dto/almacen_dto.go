package dto

// CrearAlmacenRequest is the body of POST /v1/almacenes and PUT /v1/almacenes/:id.
type CrearAlmacenRequest struct {
	Nombre                    string  `json:"nombre"                      validate:"required,min=2,max=100"`
	UbicacionFisica           *string `json:"ubicacion_fisica"            validate:"omitempty,max=200"`
	RequiereTransporteExterno bool    `json:"requiere_transporte_externo"`
	Responsable               *string `json:"responsable"                 validate:"omitempty,max=100"`
}

type AlmacenResponse struct {
	ID                        string  `json:"id"`
	Nombre                    string  `json:"nombre"`
	UbicacionFisica           *string `json:"ubicacion_fisica"`
	RequiereTransporteExterno bool    `json:"requiere_transporte_externo"`
	Responsable               *string `json:"responsable"`
	Activo                    bool    `json:"activo"`
}
