package dto

// StockFilter is bound from query string of GET /v1/inventario/stock.
type StockFilter struct {
	AlmacenID  string `form:"almacen_id"  validate:"omitempty,uuid"`
	ProductoID string `form:"producto_id" validate:"omitempty,uuid"`
}

type StockEntryResponse struct {
	AlmacenID  string `json:"almacen_id"`
	Almacen    string `json:"almacen"`
	ProductoID string `json:"producto_id"`
	Producto   string `json:"producto"`
	Cantidad   int    `json:"cantidad"`
}

// AjusteStockRequest is the body of PATCH /v1/inventario/stock/ajuste.
// Delta may be negative; the adjustment fails if it would leave the entry
// below zero.
type AjusteStockRequest struct {
	AlmacenID  string `json:"almacen_id"  validate:"required,uuid"`
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Delta      int    `json:"delta"       validate:"required"`
	Motivo     string `json:"motivo"      validate:"required,min=3,max=500"`
}
