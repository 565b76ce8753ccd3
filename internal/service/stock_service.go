package service

import (
	"context"
	"encoding/json"
	"fmt"

	"paucara/internal/apierror"
	"paucara/internal/dto"
	"paucara/internal/model"
	"paucara/internal/repository"
	"paucara/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// StockService serves stock queries and manual adjustments. Reads of a whole
// warehouse go through the Redis summary cache kept warm by the worker pool;
// everything else hits the database directly.
type StockService interface {
	Listar(ctx context.Context, filter dto.StockFilter) ([]dto.StockEntryResponse, error)
	Ajustar(ctx context.Context, req dto.AjusteStockRequest) (*dto.StockEntryResponse, error)
	ListarMovimientos(ctx context.Context, filter repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error)
}

type stockService struct {
	stockRepo      repository.StockRepository
	almacenRepo    repository.AlmacenRepository
	productoRepo   repository.ProductoRepository
	movimientoRepo repository.MovimientoStockRepository
	rdb            *redis.Client
	dispatcher     *worker.Dispatcher
}

func NewStockService(
	stockRepo repository.StockRepository,
	almacenRepo repository.AlmacenRepository,
	productoRepo repository.ProductoRepository,
	movimientoRepo repository.MovimientoStockRepository,
	rdb *redis.Client,
	dispatcher *worker.Dispatcher,
) StockService {
	return &stockService{
		stockRepo:      stockRepo,
		almacenRepo:    almacenRepo,
		productoRepo:   productoRepo,
		movimientoRepo: movimientoRepo,
		rdb:            rdb,
		dispatcher:     dispatcher,
	}
}

func (s *stockService) Listar(ctx context.Context, filter dto.StockFilter) ([]dto.StockEntryResponse, error) {
	// Whole-warehouse reads can be served from cache.
	if filter.AlmacenID != "" && filter.ProductoID == "" && s.rdb != nil {
		cached, err := s.rdb.Get(ctx, worker.StockCachePrefix+filter.AlmacenID).Result()
		if err == nil {
			var summary []dto.StockEntryResponse
			if jsonErr := json.Unmarshal([]byte(cached), &summary); jsonErr == nil {
				return summary, nil
			}
		}
	}

	entries, err := s.stockRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.StockEntryResponse, 0, len(entries))
	for i := range entries {
		resp = append(resp, stockEntryToResponse(&entries[i]))
	}
	return resp, nil
}

// Ajustar applies a manual stock correction. Negative deltas use the same
// atomic decrement-with-floor as transfers, so an adjustment can never drive
// the entry below zero.
func (s *stockService) Ajustar(ctx context.Context, req dto.AjusteStockRequest) (*dto.StockEntryResponse, error) {
	almacenID, err := uuid.Parse(req.AlmacenID)
	if err != nil {
		return nil, apierror.NewValidation("almacen_id inválido")
	}
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, apierror.NewValidation("producto_id inválido")
	}
	if req.Delta == 0 {
		return nil, apierror.NewValidation("el ajuste debe ser distinto de cero")
	}

	almacen, err := s.almacenRepo.FindByID(ctx, almacenID)
	if err != nil {
		return nil, &apierror.NotFoundError{Recurso: "almacen", ID: almacenID}
	}
	producto, err := s.productoRepo.FindByID(ctx, productoID)
	if err != nil {
		return nil, &apierror.NotFoundError{Recurso: "producto", ID: productoID}
	}

	var resultado dto.StockEntryResponse
	txErr := runTx(ctx, s.stockRepo.DB(), func(tx *gorm.DB) error {
		anterior, err := s.stockRepo.DisponibleTx(tx, almacenID, productoID)
		if err != nil {
			return err
		}
		if req.Delta > 0 {
			if err := s.stockRepo.AddTx(tx, almacenID, productoID, req.Delta); err != nil {
				return err
			}
		} else {
			ok, err := s.stockRepo.DeductTx(tx, almacenID, productoID, -req.Delta)
			if err != nil {
				return err
			}
			if !ok {
				return &apierror.InsufficientStockError{Faltantes: []apierror.StockFaltante{{
					ProductoID: productoID,
					Producto:   producto.Nombre,
					Solicitado: -req.Delta,
					Disponible: anterior,
				}}}
			}
		}
		mov := &model.MovimientoStock{
			AlmacenID:     almacenID,
			ProductoID:    productoID,
			Tipo:          "ajuste_manual",
			Cantidad:      req.Delta,
			StockAnterior: anterior,
			StockNuevo:    anterior + req.Delta,
			Motivo:        fmt.Sprintf("Ajuste manual: %s", req.Motivo),
		}
		if err := s.movimientoRepo.CreateTx(tx, mov); err != nil {
			return err
		}
		resultado = dto.StockEntryResponse{
			AlmacenID:  almacenID.String(),
			Almacen:    almacen.Nombre,
			ProductoID: productoID.String(),
			Producto:   producto.Nombre,
			Cantidad:   anterior + req.Delta,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueStockRefresh(ctx, almacenID); err != nil {
			log.Warn().Err(err).Str("almacen_id", almacenID.String()).Msg("stock refresh enqueue failed")
		}
	}
	return &resultado, nil
}

func (s *stockService) ListarMovimientos(ctx context.Context, filter repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	return s.movimientoRepo.List(ctx, filter)
}

func stockEntryToResponse(e *model.StockAlmacen) dto.StockEntryResponse {
	resp := dto.StockEntryResponse{
		AlmacenID:  e.AlmacenID.String(),
		ProductoID: e.ProductoID.String(),
		Cantidad:   e.Cantidad,
	}
	if e.Almacen != nil {
		resp.Almacen = e.Almacen.Nombre
	}
	if e.Producto != nil {
		resp.Producto = e.Producto.Nombre
	}
	return resp
}
