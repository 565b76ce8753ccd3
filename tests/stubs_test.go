package tests

import (
	"context"
	"errors"
	"sync"
	"time"

	"paucara/internal/dto"
	"paucara/internal/model"
	"paucara/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository stubs. The estado compare-and-swap and the
// decrement-with-floor are mutex-atomic here, mirroring the single-statement
// atomicity the real repositories get from PostgreSQL. That keeps the
// concurrency tests meaningful without a database.

// ── Almacenes ─────────────────────────────────────────────────────────────────

type stubAlmacenRepo struct {
	almacenes map[uuid.UUID]*model.Almacen
}

func newStubAlmacenRepo() *stubAlmacenRepo {
	return &stubAlmacenRepo{almacenes: make(map[uuid.UUID]*model.Almacen)}
}

func (r *stubAlmacenRepo) Create(_ context.Context, a *model.Almacen) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.almacenes[a.ID] = a
	return nil
}

func (r *stubAlmacenRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Almacen, error) {
	a, ok := r.almacenes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *stubAlmacenRepo) List(_ context.Context, incluirInactivos bool) ([]model.Almacen, error) {
	out := make([]model.Almacen, 0, len(r.almacenes))
	for _, a := range r.almacenes {
		if a.Activo || incluirInactivos {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *stubAlmacenRepo) Update(_ context.Context, a *model.Almacen) error {
	r.almacenes[a.ID] = a
	return nil
}

var _ repository.AlmacenRepository = (*stubAlmacenRepo)(nil)

// ── Productos ─────────────────────────────────────────────────────────────────

type stubProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductoRepo) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Producto, error) {
	out := make(map[uuid.UUID]*model.Producto, len(ids))
	for _, id := range ids {
		if p, ok := r.productos[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r *stubProductoRepo) FindByBarcode(_ context.Context, barcode string) (*model.Producto, error) {
	for _, p := range r.productos {
		if p.CodigoBarras == barcode && p.Activo {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	out := make([]model.Producto, 0, len(r.productos))
	for _, p := range r.productos {
		if p.Activo {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	p, ok := r.productos[id]
	if !ok {
		return errors.New("not found")
	}
	p.Activo = false
	return nil
}

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// ── Transporte ────────────────────────────────────────────────────────────────

type stubTransporteRepo struct {
	vehiculos map[uuid.UUID]*model.Vehiculo
	choferes  map[uuid.UUID]*model.Chofer
}

func newStubTransporteRepo() *stubTransporteRepo {
	return &stubTransporteRepo{
		vehiculos: make(map[uuid.UUID]*model.Vehiculo),
		choferes:  make(map[uuid.UUID]*model.Chofer),
	}
}

func (r *stubTransporteRepo) FindVehiculoByID(_ context.Context, id uuid.UUID) (*model.Vehiculo, error) {
	v, ok := r.vehiculos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubTransporteRepo) FindChoferByID(_ context.Context, id uuid.UUID) (*model.Chofer, error) {
	c, ok := r.choferes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubTransporteRepo) ListVehiculos(_ context.Context) ([]model.Vehiculo, error) {
	out := make([]model.Vehiculo, 0, len(r.vehiculos))
	for _, v := range r.vehiculos {
		out = append(out, *v)
	}
	return out, nil
}

func (r *stubTransporteRepo) ListChoferes(_ context.Context) ([]model.Chofer, error) {
	out := make([]model.Chofer, 0, len(r.choferes))
	for _, c := range r.choferes {
		out = append(out, *c)
	}
	return out, nil
}

var _ repository.TransporteRepository = (*stubTransporteRepo)(nil)

// ── Stock ─────────────────────────────────────────────────────────────────────

type stockKey struct {
	almacen  uuid.UUID
	producto uuid.UUID
}

type stubStockRepo struct {
	mu    sync.Mutex
	stock map[stockKey]int
}

func newStubStockRepo() *stubStockRepo {
	return &stubStockRepo{stock: make(map[stockKey]int)}
}

func (r *stubStockRepo) Disponible(_ context.Context, almacenID, productoID uuid.UUID) (int, error) {
	return r.DisponibleTx(nil, almacenID, productoID)
}

func (r *stubStockRepo) DisponibleTx(_ *gorm.DB, almacenID, productoID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stock[stockKey{almacenID, productoID}], nil
}

func (r *stubStockRepo) List(_ context.Context, filter dto.StockFilter) ([]model.StockAlmacen, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.StockAlmacen, 0, len(r.stock))
	for k, cantidad := range r.stock {
		if filter.AlmacenID != "" && filter.AlmacenID != k.almacen.String() {
			continue
		}
		if filter.ProductoID != "" && filter.ProductoID != k.producto.String() {
			continue
		}
		out = append(out, model.StockAlmacen{
			AlmacenID:  k.almacen,
			ProductoID: k.producto,
			Cantidad:   cantidad,
		})
	}
	return out, nil
}

func (r *stubStockRepo) DeductTx(_ *gorm.DB, almacenID, productoID uuid.UUID, cantidad int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := stockKey{almacenID, productoID}
	if r.stock[k] < cantidad {
		return false, nil
	}
	r.stock[k] -= cantidad
	return true, nil
}

func (r *stubStockRepo) AddTx(_ *gorm.DB, almacenID, productoID uuid.UUID, cantidad int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stock[stockKey{almacenID, productoID}] += cantidad
	return nil
}

func (r *stubStockRepo) DB() *gorm.DB { return nil }

func (r *stubStockRepo) set(almacenID, productoID uuid.UUID, cantidad int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stock[stockKey{almacenID, productoID}] = cantidad
}

func (r *stubStockRepo) get(almacenID, productoID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stock[stockKey{almacenID, productoID}]
}

var _ repository.StockRepository = (*stubStockRepo)(nil)

// ── Movimientos ───────────────────────────────────────────────────────────────

type stubMovimientoRepo struct {
	mu          sync.Mutex
	movimientos []model.MovimientoStock
}

func (r *stubMovimientoRepo) Create(_ context.Context, m *model.MovimientoStock) error {
	return r.CreateTx(nil, m)
}

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) List(_ context.Context, filter repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.MovimientoStock, 0, len(r.movimientos))
	for _, m := range r.movimientos {
		if filter.AlmacenID != nil && m.AlmacenID != *filter.AlmacenID {
			continue
		}
		if filter.ProductoID != nil && m.ProductoID != *filter.ProductoID {
			continue
		}
		if filter.Tipo != "" && m.Tipo != filter.Tipo {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *stubMovimientoRepo) porTipo(tipo string) []model.MovimientoStock {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.MovimientoStock
	for _, m := range r.movimientos {
		if m.Tipo == tipo {
			out = append(out, m)
		}
	}
	return out
}

var _ repository.MovimientoStockRepository = (*stubMovimientoRepo)(nil)

// ── Transferencias ────────────────────────────────────────────────────────────

type stubTransferenciaRepo struct {
	mu             sync.Mutex
	transferencias map[uuid.UUID]*model.TransferenciaInventario
	numeroSeq      int

	// wired in so FindByID can hydrate relations the way GORM preloads do
	almacenes *stubAlmacenRepo
	productos *stubProductoRepo
}

func newStubTransferenciaRepo(almacenes *stubAlmacenRepo, productos *stubProductoRepo) *stubTransferenciaRepo {
	return &stubTransferenciaRepo{
		transferencias: make(map[uuid.UUID]*model.TransferenciaInventario),
		almacenes:      almacenes,
		productos:      productos,
	}
}

func (r *stubTransferenciaRepo) DB() *gorm.DB { return nil }

func (r *stubTransferenciaRepo) CreateTx(_ *gorm.DB, t *model.TransferenciaInventario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	for i := range t.Detalles {
		if t.Detalles[i].ID == uuid.Nil {
			t.Detalles[i].ID = uuid.New()
		}
		t.Detalles[i].TransferenciaID = t.ID
	}
	r.transferencias[t.ID] = t
	return nil
}

func (r *stubTransferenciaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.TransferenciaInventario, error) {
	return r.FindByIDTx(nil, id)
}

func (r *stubTransferenciaRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.TransferenciaInventario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transferencias[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := r.hydrate(t)
	return &c, nil
}

// hydrate returns a hydrated copy of the stored transfer. Callers never share
// the stored struct or its Detalles slice, the same way GORM materializes
// fresh rows for every query.
func (r *stubTransferenciaRepo) hydrate(t *model.TransferenciaInventario) model.TransferenciaInventario {
	c := *t
	c.Detalles = make([]model.DetalleTransferencia, len(t.Detalles))
	copy(c.Detalles, t.Detalles)
	if r.almacenes != nil {
		c.AlmacenOrigen = r.almacenes.almacenes[c.AlmacenOrigenID]
		c.AlmacenDestino = r.almacenes.almacenes[c.AlmacenDestinoID]
	}
	if r.productos != nil {
		for i := range c.Detalles {
			c.Detalles[i].Producto = r.productos.productos[c.Detalles[i].ProductoID]
		}
	}
	return c
}

func (r *stubTransferenciaRepo) NextNumero(_ context.Context, _ *gorm.DB) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.numeroSeq++
	return r.numeroSeq, nil
}

func (r *stubTransferenciaRepo) UpdateEstadoTx(_ *gorm.DB, id uuid.UUID, desde string, updates map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transferencias[id]
	if !ok || t.Estado != desde {
		return false, nil
	}
	for k, v := range updates {
		switch k {
		case "estado":
			t.Estado = v.(string)
		case "fecha_envio":
			tm := v.(time.Time)
			t.FechaEnvio = &tm
		case "fecha_recepcion":
			tm := v.(time.Time)
			t.FechaRecepcion = &tm
		case "motivo_cancelacion":
			s := v.(string)
			t.MotivoCancelacion = &s
		case "almacen_destino_id":
			t.AlmacenDestinoID = v.(uuid.UUID)
		case "vehiculo_id":
			t.VehiculoID, _ = v.(*uuid.UUID)
		case "chofer_id":
			t.ChoferID, _ = v.(*uuid.UUID)
		case "observaciones":
			t.Observaciones, _ = v.(*string)
		}
	}
	return true, nil
}

func (r *stubTransferenciaRepo) ReplaceDetallesTx(_ *gorm.DB, transferenciaID uuid.UUID, detalles []model.DetalleTransferencia) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transferencias[transferenciaID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range detalles {
		detalles[i].ID = uuid.New()
		detalles[i].TransferenciaID = transferenciaID
		detalles[i].Orden = i
	}
	t.Detalles = detalles
	return nil
}

func (r *stubTransferenciaRepo) UpdateCantidadRecibidaTx(_ *gorm.DB, detalleID uuid.UUID, cantidad int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.transferencias {
		for i := range t.Detalles {
			if t.Detalles[i].ID == detalleID {
				c := cantidad
				t.Detalles[i].CantidadRecibida = &c
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubTransferenciaRepo) List(_ context.Context, filter dto.TransferenciaFilter) ([]model.TransferenciaInventario, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.TransferenciaInventario, 0, len(r.transferencias))
	for _, t := range r.transferencias {
		if filter.Estado != "" && filter.Estado != "all" && t.Estado != filter.Estado {
			continue
		}
		if filter.AlmacenOrigen != "" && t.AlmacenOrigenID.String() != filter.AlmacenOrigen {
			continue
		}
		if filter.AlmacenDestino != "" && t.AlmacenDestinoID.String() != filter.AlmacenDestino {
			continue
		}
		out = append(out, r.hydrate(t))
	}
	return out, int64(len(out)), nil
}

var _ repository.TransferenciaRepository = (*stubTransferenciaRepo)(nil)
