package service

import (
	"context"
	"errors"
	"math"

	"paucara/internal/apierror"
	"paucara/internal/dto"
	"paucara/internal/model"
	"paucara/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	ObtenerPorBarcode(ctx context.Context, barcode string) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type productoService struct {
	repo repository.ProductoRepository
}

func NewProductoService(repo repository.ProductoRepository) ProductoService {
	return &productoService{repo: repo}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if req.PrecioVenta.LessThan(req.PrecioCosto) {
		return nil, apierror.NewValidation("el precio de venta no puede ser menor al costo")
	}
	p := &model.Producto{
		CodigoBarras: req.CodigoBarras,
		Nombre:       req.Nombre,
		Descripcion:  req.Descripcion,
		Categoria:    req.Categoria,
		PrecioCosto:  req.PrecioCosto,
		PrecioVenta:  req.PrecioVenta,
		StockMinimo:  req.StockMinimo,
		Perecedero:   req.Perecedero,
		Activo:       true,
	}
	if req.UnidadMedida != "" {
		p.UnidadMedida = req.UnidadMedida
	} else {
		p.UnidadMedida = "unidad"
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apierror.NotFoundError{Recurso: "producto", ID: id}
		}
		return nil, err
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) ObtenerPorBarcode(ctx context.Context, barcode string) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apierror.NotFoundError{Recurso: "producto"}
		}
		return nil, err
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductoResponse, len(productos))
	for i := range productos {
		data[i] = productoToResponse(&productos[i])
	}
	return &dto.ProductoListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if req.PrecioVenta.LessThan(req.PrecioCosto) {
		return nil, apierror.NewValidation("el precio de venta no puede ser menor al costo")
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apierror.NotFoundError{Recurso: "producto", ID: id}
		}
		return nil, err
	}
	p.CodigoBarras = req.CodigoBarras
	p.Nombre = req.Nombre
	p.Descripcion = req.Descripcion
	p.Categoria = req.Categoria
	p.PrecioCosto = req.PrecioCosto
	p.PrecioVenta = req.PrecioVenta
	p.StockMinimo = req.StockMinimo
	p.Perecedero = req.Perecedero
	if req.UnidadMedida != "" {
		p.UnidadMedida = req.UnidadMedida
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func productoToResponse(p *model.Producto) dto.ProductoResponse {
	return dto.ProductoResponse{
		ID:           p.ID.String(),
		CodigoBarras: p.CodigoBarras,
		Nombre:       p.Nombre,
		Descripcion:  p.Descripcion,
		Categoria:    p.Categoria,
		PrecioCosto:  p.PrecioCosto,
		PrecioVenta:  p.PrecioVenta,
		StockMinimo:  p.StockMinimo,
		UnidadMedida: p.UnidadMedida,
		Perecedero:   p.Perecedero,
		Activo:       p.Activo,
	}
}
