package service

import (
	"context"
	"errors"

	"paucara/internal/apierror"
	"paucara/internal/dto"
	"paucara/internal/model"
	"paucara/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AlmacenService interface {
	Crear(ctx context.Context, req dto.CrearAlmacenRequest) (*dto.AlmacenResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.AlmacenResponse, error)
	Listar(ctx context.Context, incluirInactivos bool) ([]dto.AlmacenResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.CrearAlmacenRequest) (*dto.AlmacenResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type almacenService struct {
	repo repository.AlmacenRepository
}

func NewAlmacenService(repo repository.AlmacenRepository) AlmacenService {
	return &almacenService{repo: repo}
}

func (s *almacenService) Crear(ctx context.Context, req dto.CrearAlmacenRequest) (*dto.AlmacenResponse, error) {
	a := &model.Almacen{
		Nombre:                    req.Nombre,
		UbicacionFisica:           req.UbicacionFisica,
		RequiereTransporteExterno: req.RequiereTransporteExterno,
		Responsable:               req.Responsable,
		Activo:                    true,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	resp := almacenToResponse(a)
	return &resp, nil
}

func (s *almacenService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.AlmacenResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apierror.NotFoundError{Recurso: "almacen", ID: id}
		}
		return nil, err
	}
	resp := almacenToResponse(a)
	return &resp, nil
}

func (s *almacenService) Listar(ctx context.Context, incluirInactivos bool) ([]dto.AlmacenResponse, error) {
	almacenes, err := s.repo.List(ctx, incluirInactivos)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.AlmacenResponse, len(almacenes))
	for i := range almacenes {
		resp[i] = almacenToResponse(&almacenes[i])
	}
	return resp, nil
}

func (s *almacenService) Actualizar(ctx context.Context, id uuid.UUID, req dto.CrearAlmacenRequest) (*dto.AlmacenResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apierror.NotFoundError{Recurso: "almacen", ID: id}
		}
		return nil, err
	}
	a.Nombre = req.Nombre
	a.UbicacionFisica = req.UbicacionFisica
	a.RequiereTransporteExterno = req.RequiereTransporteExterno
	a.Responsable = req.Responsable
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	resp := almacenToResponse(a)
	return &resp, nil
}

// Desactivar soft-deletes: transfers reference warehouses historically, so
// rows are never removed.
func (s *almacenService) Desactivar(ctx context.Context, id uuid.UUID) error {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apierror.NotFoundError{Recurso: "almacen", ID: id}
		}
		return err
	}
	a.Activo = false
	return s.repo.Update(ctx, a)
}

func almacenToResponse(a *model.Almacen) dto.AlmacenResponse {
	return dto.AlmacenResponse{
		ID:                        a.ID.String(),
		Nombre:                    a.Nombre,
		UbicacionFisica:           a.UbicacionFisica,
		RequiereTransporteExterno: a.RequiereTransporteExterno,
		Responsable:               a.Responsable,
		Activo:                    a.Activo,
	}
}
