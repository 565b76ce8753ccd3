package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	CodigoBarras string          `json:"codigo_barras" validate:"required,min=8,max=18"`
	Nombre       string          `json:"nombre"        validate:"required,min=2,max=120"`
	Descripcion  *string         `json:"descripcion"`
	Categoria    string          `json:"categoria"     validate:"required"`
	PrecioCosto  decimal.Decimal `json:"precio_costo"  validate:"required"`
	PrecioVenta  decimal.Decimal `json:"precio_venta"  validate:"required"`
	StockMinimo  int             `json:"stock_minimo"  validate:"min=0"`
	UnidadMedida string          `json:"unidad_medida"`
	Perecedero   bool            `json:"perecedero"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	Barcode   string `form:"barcode"`
	Nombre    string `form:"nombre"`
	Categoria string `form:"categoria"`
	Page      int    `form:"page,default=1"  validate:"min=1"`
	Limit     int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID           string          `json:"id"`
	CodigoBarras string          `json:"codigo_barras"`
	Nombre       string          `json:"nombre"`
	Descripcion  *string         `json:"descripcion"`
	Categoria    string          `json:"categoria"`
	PrecioCosto  decimal.Decimal `json:"precio_costo"`
	PrecioVenta  decimal.Decimal `json:"precio_venta"`
	StockMinimo  int             `json:"stock_minimo"`
	UnidadMedida string          `json:"unidad_medida"`
	Perecedero   bool            `json:"perecedero"`
	Activo       bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data       []ProductoResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}
