package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"paucara/internal/apierror"
	"paucara/internal/dto"
	"paucara/internal/model"
	"paucara/internal/repository"
	"paucara/internal/worker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransferenciaService is the transfer state machine. Every mutating
// operation runs as one atomic unit: state guard, stock mutation(s) and
// persistence of the new estado either all succeed or all roll back.
type TransferenciaService interface {
	Crear(ctx context.Context, req dto.CrearTransferenciaRequest) (*dto.TransferenciaResponse, error)
	Editar(ctx context.Context, id uuid.UUID, req dto.CrearTransferenciaRequest) (*dto.TransferenciaResponse, error)
	Enviar(ctx context.Context, id uuid.UUID) (*dto.TransferenciaResponse, error)
	Recibir(ctx context.Context, id uuid.UUID, req dto.RecibirTransferenciaRequest) (*dto.TransferenciaResponse, error)
	Cancelar(ctx context.Context, id uuid.UUID, motivo string) (*dto.TransferenciaResponse, error)
	Listar(ctx context.Context, filter dto.TransferenciaFilter) (*dto.TransferenciaListResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.TransferenciaResponse, error)
}

type transferenciaService struct {
	repo           repository.TransferenciaRepository
	stockRepo      repository.StockRepository
	almacenRepo    repository.AlmacenRepository
	productoRepo   repository.ProductoRepository
	transporteRepo repository.TransporteRepository
	movimientoRepo repository.MovimientoStockRepository
	dispatcher     *worker.Dispatcher
}

func NewTransferenciaService(
	repo repository.TransferenciaRepository,
	stockRepo repository.StockRepository,
	almacenRepo repository.AlmacenRepository,
	productoRepo repository.ProductoRepository,
	transporteRepo repository.TransporteRepository,
	movimientoRepo repository.MovimientoStockRepository,
	dispatcher *worker.Dispatcher,
) TransferenciaService {
	return &transferenciaService{
		repo:           repo,
		stockRepo:      stockRepo,
		almacenRepo:    almacenRepo,
		productoRepo:   productoRepo,
		transporteRepo: transporteRepo,
		movimientoRepo: movimientoRepo,
		dispatcher:     dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Crear ────────────────────────────────────────────────────────────────────
// New transfer in BORRADOR. No stock effect: drafts make no claim on stock.

func (s *transferenciaService) Crear(ctx context.Context, req dto.CrearTransferenciaRequest) (*dto.TransferenciaResponse, error) {
	t, catalogo, err := s.resolverRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if violations := ValidarTransferencia(t, catalogo); len(violations) > 0 {
		return nil, apierror.NewValidation(violations...)
	}

	t.Estado = model.EstadoBorrador
	t.Fecha = time.Now()

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		numero, err := s.repo.NextNumero(ctx, tx)
		if err != nil {
			return err
		}
		t.Numero = numero
		return s.repo.CreateTx(tx, t)
	})
	if txErr != nil {
		return nil, txErr
	}

	return s.construirRespuesta(ctx, t.ID)
}

// ── Editar ───────────────────────────────────────────────────────────────────
// Replaces destino / observaciones / vehículo / chofer / líneas atomically.
// Allowed only while the transfer is still a BORRADOR; the origin warehouse
// is fixed at creation.

func (s *transferenciaService) Editar(ctx context.Context, id uuid.UUID, req dto.CrearTransferenciaRequest) (*dto.TransferenciaResponse, error) {
	nuevo, catalogo, err := s.resolverRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	actual, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err, id)
	}
	if nuevo.AlmacenOrigenID != actual.AlmacenOrigenID {
		return nil, apierror.NewValidation("el almacén de origen no puede modificarse")
	}
	if violations := ValidarTransferencia(nuevo, catalogo); len(violations) > 0 {
		return nil, apierror.NewValidation(violations...)
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ok, err := s.repo.UpdateEstadoTx(tx, id, model.EstadoBorrador, map[string]interface{}{
			"estado":             model.EstadoBorrador,
			"almacen_destino_id": nuevo.AlmacenDestinoID,
			"vehiculo_id":        nuevo.VehiculoID,
			"chofer_id":          nuevo.ChoferID,
			"observaciones":      nuevo.Observaciones,
		})
		if err != nil {
			return err
		}
		if !ok {
			return s.estadoConflicto(tx, id, "editar")
		}
		return s.repo.ReplaceDetallesTx(tx, id, nuevo.Detalles)
	})
	if txErr != nil {
		return nil, txErr
	}

	return s.construirRespuesta(ctx, id)
}

// ── Enviar ───────────────────────────────────────────────────────────────────
// BORRADOR → ENVIADO. Deducts origin stock for every line, all-or-nothing.
// The estado compare-and-swap guarantees a racing second caller never
// double-deducts: it fails the guard, re-reads, and gets an
// InvalidStateTransitionError.

func (s *transferenciaService) Enviar(ctx context.Context, id uuid.UUID) (*dto.TransferenciaResponse, error) {
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		t, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return s.mapNotFound(err, id)
		}
		if t.Estado != model.EstadoBorrador {
			return &apierror.InvalidStateTransitionError{Estado: t.Estado, Operacion: "enviar"}
		}

		catalogo, err := s.catalogoDeDetalles(ctx, t.Detalles)
		if err != nil {
			return err
		}
		snapshot := make(StockSnapshot, len(t.Detalles))
		for _, d := range t.Detalles {
			disponible, err := s.stockRepo.DisponibleTx(tx, t.AlmacenOrigenID, d.ProductoID)
			if err != nil {
				return err
			}
			snapshot[d.ProductoID] = disponible
		}
		if faltantes := ValidarStockOrigen(t.Detalles, catalogo, snapshot); len(faltantes) > 0 {
			return &apierror.InsufficientStockError{Faltantes: faltantes}
		}

		ok, err := s.repo.UpdateEstadoTx(tx, id, model.EstadoBorrador, map[string]interface{}{
			"estado":      model.EstadoEnviado,
			"fecha_envio": time.Now(),
		})
		if err != nil {
			return err
		}
		if !ok {
			return s.estadoConflicto(tx, id, "enviar")
		}

		for _, d := range t.Detalles {
			ok, err := s.stockRepo.DeductTx(tx, t.AlmacenOrigenID, d.ProductoID, d.Cantidad)
			if err != nil {
				return err
			}
			if !ok {
				// A concurrent consumer drained the row between snapshot and
				// deduct; abort so the whole transition rolls back.
				return &apierror.InsufficientStockError{Faltantes: []apierror.StockFaltante{{
					ProductoID: d.ProductoID,
					Producto:   nombreProducto(catalogo, d.ProductoID),
					Solicitado: d.Cantidad,
					Disponible: snapshot[d.ProductoID],
				}}}
			}
			ref := t.ID
			mov := &model.MovimientoStock{
				AlmacenID:     t.AlmacenOrigenID,
				ProductoID:    d.ProductoID,
				Tipo:          "transferencia_envio",
				Cantidad:      -d.Cantidad,
				StockAnterior: snapshot[d.ProductoID],
				StockNuevo:    snapshot[d.ProductoID] - d.Cantidad,
				Motivo:        fmt.Sprintf("Envío transferencia #%d", t.Numero),
				ReferenciaID:  &ref,
			}
			if err := s.movimientoRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.refrescarStock(ctx, id)
	return s.construirRespuesta(ctx, id)
}

// ── Recibir ──────────────────────────────────────────────────────────────────
// ENVIADO → RECIBIDO. Credits the destination with the reconciled received
// quantities — never the originally sent ones.

func (s *transferenciaService) Recibir(ctx context.Context, id uuid.UUID, req dto.RecibirTransferenciaRequest) (*dto.TransferenciaResponse, error) {
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		t, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return s.mapNotFound(err, id)
		}
		if t.Estado != model.EstadoEnviado {
			return &apierror.InvalidStateTransitionError{Estado: t.Estado, Operacion: "recibir"}
		}

		lineas, err := Reconciliar(t.Detalles, req.CantidadesRecibidas)
		if err != nil {
			return err
		}

		ok, err := s.repo.UpdateEstadoTx(tx, id, model.EstadoEnviado, map[string]interface{}{
			"estado":          model.EstadoRecibido,
			"fecha_recepcion": time.Now(),
		})
		if err != nil {
			return err
		}
		if !ok {
			return s.estadoConflicto(tx, id, "recibir")
		}

		for i, linea := range lineas {
			if err := s.repo.UpdateCantidadRecibidaTx(tx, t.Detalles[i].ID, linea.CantidadRecibida); err != nil {
				return err
			}
			if linea.CantidadRecibida == 0 {
				continue
			}
			anterior, err := s.stockRepo.DisponibleTx(tx, t.AlmacenDestinoID, linea.ProductoID)
			if err != nil {
				return err
			}
			if err := s.stockRepo.AddTx(tx, t.AlmacenDestinoID, linea.ProductoID, linea.CantidadRecibida); err != nil {
				return err
			}
			ref := t.ID
			mov := &model.MovimientoStock{
				AlmacenID:     t.AlmacenDestinoID,
				ProductoID:    linea.ProductoID,
				Tipo:          "transferencia_recepcion",
				Cantidad:      linea.CantidadRecibida,
				StockAnterior: anterior,
				StockNuevo:    anterior + linea.CantidadRecibida,
				Motivo:        fmt.Sprintf("Recepción transferencia #%d", t.Numero),
				ReferenciaID:  &ref,
			}
			if err := s.movimientoRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.refrescarStock(ctx, id)
	return s.construirRespuesta(ctx, id)
}

// ── Cancelar ─────────────────────────────────────────────────────────────────
// BORRADOR/ENVIADO → CANCELADO. Cancelling an ENVIADO transfer restores to
// the origin exactly the quantities deducted at enviar; cancelling a
// BORRADOR touches no stock. Cancellation is always whole-transfer.

func (s *transferenciaService) Cancelar(ctx context.Context, id uuid.UUID, motivo string) (*dto.TransferenciaResponse, error) {
	if motivo == "" {
		return nil, apierror.NewValidation("el motivo de cancelación es obligatorio")
	}
	if utf8.RuneCountInString(motivo) > 500 {
		return nil, apierror.NewValidation("el motivo de cancelación no puede superar 500 caracteres")
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		t, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return s.mapNotFound(err, id)
		}
		if !model.PuedeTransicionar(t.Estado, model.EstadoCancelado) {
			return &apierror.InvalidStateTransitionError{Estado: t.Estado, Operacion: "cancelar"}
		}
		estadoPrevio := t.Estado

		ok, err := s.repo.UpdateEstadoTx(tx, id, estadoPrevio, map[string]interface{}{
			"estado":             model.EstadoCancelado,
			"motivo_cancelacion": motivo,
		})
		if err != nil {
			return err
		}
		if !ok {
			return s.estadoConflicto(tx, id, "cancelar")
		}

		if estadoPrevio != model.EstadoEnviado {
			return nil
		}
		// Exact reversal of the enviar deduction, line by line.
		for _, d := range t.Detalles {
			anterior, err := s.stockRepo.DisponibleTx(tx, t.AlmacenOrigenID, d.ProductoID)
			if err != nil {
				return err
			}
			if err := s.stockRepo.AddTx(tx, t.AlmacenOrigenID, d.ProductoID, d.Cantidad); err != nil {
				return err
			}
			ref := t.ID
			mov := &model.MovimientoStock{
				AlmacenID:     t.AlmacenOrigenID,
				ProductoID:    d.ProductoID,
				Tipo:          "transferencia_reversion",
				Cantidad:      d.Cantidad,
				StockAnterior: anterior,
				StockNuevo:    anterior + d.Cantidad,
				Motivo:        fmt.Sprintf("Cancelación transferencia #%d — %s", t.Numero, motivo),
				ReferenciaID:  &ref,
			}
			if err := s.movimientoRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.refrescarStock(ctx, id)
	return s.construirRespuesta(ctx, id)
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *transferenciaService) Listar(ctx context.Context, filter dto.TransferenciaFilter) (*dto.TransferenciaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	transferencias, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransferenciaListItem, 0, len(transferencias))
	for i := range transferencias {
		items = append(items, transferenciaToListItem(&transferencias[i]))
	}
	return &dto.TransferenciaListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *transferenciaService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.TransferenciaResponse, error) {
	return s.construirRespuesta(ctx, id)
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// resolverRequest turns the wire request into a model and resolves the
// referenced catalog entries. Unknown warehouse / vehicle / driver references
// are validation errors; the line-level checks live in ValidarTransferencia.
func (s *transferenciaService) resolverRequest(ctx context.Context, req dto.CrearTransferenciaRequest) (*model.TransferenciaInventario, map[uuid.UUID]*model.Producto, error) {
	origenID, err := uuid.Parse(req.AlmacenOrigenID)
	if err != nil {
		return nil, nil, apierror.NewValidation("almacen_origen_id inválido")
	}
	destinoID, err := uuid.Parse(req.AlmacenDestinoID)
	if err != nil {
		return nil, nil, apierror.NewValidation("almacen_destino_id inválido")
	}

	var violations []string
	if _, err := s.almacenRepo.FindByID(ctx, origenID); err != nil {
		violations = append(violations, "el almacén de origen no existe")
	}
	if _, err := s.almacenRepo.FindByID(ctx, destinoID); err != nil {
		violations = append(violations, "el almacén de destino no existe")
	}

	t := &model.TransferenciaInventario{
		AlmacenOrigenID:  origenID,
		AlmacenDestinoID: destinoID,
		Observaciones:    req.Observaciones,
	}

	if req.VehiculoID != nil {
		vid, err := uuid.Parse(*req.VehiculoID)
		if err != nil {
			violations = append(violations, "vehiculo_id inválido")
		} else if _, err := s.transporteRepo.FindVehiculoByID(ctx, vid); err != nil {
			violations = append(violations, "el vehículo no existe")
		} else {
			t.VehiculoID = &vid
		}
	}
	if req.ChoferID != nil {
		cid, err := uuid.Parse(*req.ChoferID)
		if err != nil {
			violations = append(violations, "chofer_id inválido")
		} else if _, err := s.transporteRepo.FindChoferByID(ctx, cid); err != nil {
			violations = append(violations, "el chofer no existe")
		} else {
			t.ChoferID = &cid
		}
	}

	ids := make([]uuid.UUID, 0, len(req.Detalles))
	for i, d := range req.Detalles {
		pid, err := uuid.Parse(d.ProductoID)
		if err != nil {
			violations = append(violations, fmt.Sprintf("línea %d: producto_id inválido", i))
			continue
		}
		ids = append(ids, pid)
		detalle := model.DetalleTransferencia{
			ProductoID:    pid,
			Cantidad:      d.Cantidad,
			Lote:          d.Lote,
			Observaciones: d.Observaciones,
			Orden:         i,
		}
		if d.FechaVencimiento != nil {
			fv, err := time.Parse("2006-01-02", *d.FechaVencimiento)
			if err != nil {
				violations = append(violations, fmt.Sprintf("línea %d: fecha_vencimiento inválida", i))
			} else {
				detalle.FechaVencimiento = &fv
			}
		}
		t.Detalles = append(t.Detalles, detalle)
	}
	if len(violations) > 0 {
		return nil, nil, apierror.NewValidation(violations...)
	}

	catalogo := map[uuid.UUID]*model.Producto{}
	if len(ids) > 0 {
		catalogo, err = s.productoRepo.FindByIDs(ctx, ids)
		if err != nil {
			return nil, nil, err
		}
	}
	return t, catalogo, nil
}

func (s *transferenciaService) catalogoDeDetalles(ctx context.Context, detalles []model.DetalleTransferencia) (map[uuid.UUID]*model.Producto, error) {
	ids := make([]uuid.UUID, 0, len(detalles))
	for _, d := range detalles {
		ids = append(ids, d.ProductoID)
	}
	return s.productoRepo.FindByIDs(ctx, ids)
}

// estadoConflicto resolves a failed estado compare-and-swap: the row either
// vanished or another caller advanced it first.
func (s *transferenciaService) estadoConflicto(tx *gorm.DB, id uuid.UUID, operacion string) error {
	t, err := s.repo.FindByIDTx(tx, id)
	if err != nil {
		return &apierror.NotFoundError{Recurso: "transferencia", ID: id}
	}
	return &apierror.InvalidStateTransitionError{Estado: t.Estado, Operacion: operacion}
}

func (s *transferenciaService) mapNotFound(err error, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &apierror.NotFoundError{Recurso: "transferencia", ID: id}
	}
	return err
}

// refrescarStock enqueues cache refresh jobs for both warehouses of a
// transfer. Best-effort — the DB rows are authoritative.
func (s *transferenciaService) refrescarStock(ctx context.Context, id uuid.UUID) {
	if s.dispatcher == nil {
		return
	}
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return
	}
	_ = s.dispatcher.EnqueueStockRefresh(ctx, t.AlmacenOrigenID)
	_ = s.dispatcher.EnqueueStockRefresh(ctx, t.AlmacenDestinoID)
}

func (s *transferenciaService) construirRespuesta(ctx context.Context, id uuid.UUID) (*dto.TransferenciaResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err, id)
	}
	return transferenciaToResponse(t), nil
}

func nombreProducto(catalogo map[uuid.UUID]*model.Producto, id uuid.UUID) string {
	if p, ok := catalogo[id]; ok {
		return p.Nombre
	}
	return id.String()
}

func transferenciaToResponse(t *model.TransferenciaInventario) *dto.TransferenciaResponse {
	detalles := make([]dto.DetalleTransferenciaResponse, 0, len(t.Detalles))
	for _, d := range t.Detalles {
		nombre := ""
		if d.Producto != nil {
			nombre = d.Producto.Nombre
		}
		var diferencia *int
		if d.CantidadRecibida != nil {
			diff := *d.CantidadRecibida - d.Cantidad
			diferencia = &diff
		}
		var fv *string
		if d.FechaVencimiento != nil {
			s := d.FechaVencimiento.Format("2006-01-02")
			fv = &s
		}
		detalles = append(detalles, dto.DetalleTransferenciaResponse{
			ProductoID:       d.ProductoID.String(),
			Producto:         nombre,
			Cantidad:         d.Cantidad,
			CantidadRecibida: d.CantidadRecibida,
			Diferencia:       diferencia,
			Lote:             d.Lote,
			FechaVencimiento: fv,
			Observaciones:    d.Observaciones,
		})
	}

	resp := &dto.TransferenciaResponse{
		ID:                t.ID.String(),
		Numero:            t.Numero,
		Estado:            t.Estado,
		AlmacenOrigenID:   t.AlmacenOrigenID.String(),
		AlmacenDestinoID:  t.AlmacenDestinoID.String(),
		Observaciones:     t.Observaciones,
		MotivoCancelacion: t.MotivoCancelacion,
		Detalles:          detalles,
		Fecha:             t.Fecha.Format(time.RFC3339),
		FechaEnvio:        formatearFecha(t.FechaEnvio),
		FechaRecepcion:    formatearFecha(t.FechaRecepcion),
	}
	if t.VehiculoID != nil {
		v := t.VehiculoID.String()
		resp.VehiculoID = &v
	}
	if t.ChoferID != nil {
		c := t.ChoferID.String()
		resp.ChoferID = &c
	}
	if t.AlmacenOrigen != nil && t.AlmacenDestino != nil {
		resp.AlmacenOrigen = t.AlmacenOrigen.Nombre
		resp.AlmacenDestino = t.AlmacenDestino.Nombre
		resp.RequiereTransporte = RequiereTransporte(t.AlmacenOrigen, t.AlmacenDestino)
	}
	return resp
}

func transferenciaToListItem(t *model.TransferenciaInventario) dto.TransferenciaListItem {
	item := dto.TransferenciaListItem{
		ID:             t.ID.String(),
		Numero:         t.Numero,
		Estado:         t.Estado,
		TotalLineas:    len(t.Detalles),
		Fecha:          t.Fecha.Format(time.RFC3339),
		FechaEnvio:     formatearFecha(t.FechaEnvio),
		FechaRecepcion: formatearFecha(t.FechaRecepcion),
	}
	if t.AlmacenOrigen != nil && t.AlmacenDestino != nil {
		item.AlmacenOrigen = t.AlmacenOrigen.Nombre
		item.AlmacenDestino = t.AlmacenDestino.Nombre
		item.RequiereTransporte = RequiereTransporte(t.AlmacenOrigen, t.AlmacenDestino)
	}
	return item
}

func formatearFecha(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
