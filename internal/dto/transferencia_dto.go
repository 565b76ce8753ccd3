package dto

// ─── Filter / List ──────────────────────────────────────────────────────────

// TransferenciaFilter is bound from query string of GET /v1/inventario/transferencias.
type TransferenciaFilter struct {
	Busqueda       string `form:"busqueda"` // matches numero u observaciones
	Estado         string `form:"estado"`   // borrador | enviado | recibido | cancelado | all
	AlmacenOrigen  string `form:"almacen_origen"  validate:"omitempty,uuid"`
	AlmacenDestino string `form:"almacen_destino" validate:"omitempty,uuid"`
	Page           int    `form:"page,default=1"   validate:"min=1"`
	Limit          int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type TransferenciaListResponse struct {
	Data  []TransferenciaListItem `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

type TransferenciaListItem struct {
	ID                 string  `json:"id"`
	Numero             int     `json:"numero"`
	Estado             string  `json:"estado"`
	AlmacenOrigen      string  `json:"almacen_origen"`
	AlmacenDestino     string  `json:"almacen_destino"`
	TotalLineas        int     `json:"total_lineas"`
	RequiereTransporte bool    `json:"requiere_transporte"`
	Fecha              string  `json:"fecha"`
	FechaEnvio         *string `json:"fecha_envio"`
	FechaRecepcion     *string `json:"fecha_recepcion"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type DetalleTransferenciaRequest struct {
	ProductoID       string  `json:"producto_id"       validate:"required,uuid"`
	Cantidad         int     `json:"cantidad"          validate:"required,min=1"`
	Lote             *string `json:"lote"              validate:"omitempty,max=100"`
	FechaVencimiento *string `json:"fecha_vencimiento" validate:"omitempty,datetime=2006-01-02"`
	Observaciones    *string `json:"observaciones"     validate:"omitempty,max=500"`
}

// CrearTransferenciaRequest is the body of POST /v1/inventario/transferencias/crear
// and PUT /v1/inventario/transferencias/:id.
type CrearTransferenciaRequest struct {
	AlmacenOrigenID  string                        `json:"almacen_origen_id"  validate:"required,uuid"`
	AlmacenDestinoID string                        `json:"almacen_destino_id" validate:"required,uuid"`
	VehiculoID       *string                       `json:"vehiculo_id"        validate:"omitempty,uuid"`
	ChoferID         *string                       `json:"chofer_id"          validate:"omitempty,uuid"`
	Observaciones    *string                       `json:"observaciones"      validate:"omitempty,max=1000"`
	Detalles         []DetalleTransferenciaRequest `json:"detalles"           validate:"required,min=1,dive"`
}

// RecibirTransferenciaRequest maps line index → received quantity. Omitted
// lines default to their sent quantity.
type RecibirTransferenciaRequest struct {
	CantidadesRecibidas map[int]int `json:"cantidades_recibidas"`
}

type CancelarTransferenciaRequest struct {
	MotivoCancelacion string `json:"motivo_cancelacion" validate:"required,min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DetalleTransferenciaResponse struct {
	ProductoID       string  `json:"producto_id"`
	Producto         string  `json:"producto"`
	Cantidad         int     `json:"cantidad"`
	CantidadRecibida *int    `json:"cantidad_recibida"`
	Diferencia       *int    `json:"diferencia"`
	Lote             *string `json:"lote"`
	FechaVencimiento *string `json:"fecha_vencimiento"`
	Observaciones    *string `json:"observaciones"`
}

type TransferenciaResponse struct {
	ID                 string                         `json:"id"`
	Numero             int                            `json:"numero"`
	Estado             string                         `json:"estado"`
	AlmacenOrigenID    string                         `json:"almacen_origen_id"`
	AlmacenOrigen      string                         `json:"almacen_origen"`
	AlmacenDestinoID   string                         `json:"almacen_destino_id"`
	AlmacenDestino     string                         `json:"almacen_destino"`
	VehiculoID         *string                        `json:"vehiculo_id"`
	ChoferID           *string                        `json:"chofer_id"`
	RequiereTransporte bool                           `json:"requiere_transporte"`
	Observaciones      *string                        `json:"observaciones"`
	MotivoCancelacion  *string                        `json:"motivo_cancelacion"`
	Detalles           []DetalleTransferenciaResponse `json:"detalles"`
	Fecha              string                         `json:"fecha"`
	FechaEnvio         *string                        `json:"fecha_envio"`
	FechaRecepcion     *string                        `json:"fecha_recepcion"`
}
