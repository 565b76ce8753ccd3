package tests

import (
	"context"
	"testing"

	"paucara/internal/apierror"
	"paucara/internal/dto"
	"paucara/internal/model"
	"paucara/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stockEnv struct {
	svc         service.StockService
	stock       *stubStockRepo
	almacenes   *stubAlmacenRepo
	productos   *stubProductoRepo
	movimientos *stubMovimientoRepo
}

func newStockEnv() *stockEnv {
	env := &stockEnv{
		stock:       newStubStockRepo(),
		almacenes:   newStubAlmacenRepo(),
		productos:   newStubProductoRepo(),
		movimientos: &stubMovimientoRepo{},
	}
	env.svc = service.NewStockService(env.stock, env.almacenes, env.productos, env.movimientos, nil, nil)
	return env
}

func (env *stockEnv) seed(t *testing.T) (*model.Almacen, *model.Producto) {
	t.Helper()
	a := &model.Almacen{ID: uuid.New(), Nombre: "Central", Activo: true}
	env.almacenes.almacenes[a.ID] = a
	p := &model.Producto{
		ID:           uuid.New(),
		CodigoBarras: "7790001000010",
		Nombre:       "Harina 1kg",
		Categoria:    "almacen",
		PrecioCosto:  decimal.NewFromInt(10),
		PrecioVenta:  decimal.NewFromInt(15),
		Activo:       true,
	}
	env.productos.productos[p.ID] = p
	return a, p
}

func ajuste(a *model.Almacen, p *model.Producto, delta int) dto.AjusteStockRequest {
	return dto.AjusteStockRequest{
		AlmacenID:  a.ID.String(),
		ProductoID: p.ID.String(),
		Delta:      delta,
		Motivo:     "conteo físico",
	}
}

func TestAjustarStock_Positivo(t *testing.T) {
	env := newStockEnv()
	a, p := env.seed(t)
	env.stock.set(a.ID, p.ID, 10)

	resp, err := env.svc.Ajustar(context.Background(), ajuste(a, p, 5))
	require.NoError(t, err)

	assert.Equal(t, 15, resp.Cantidad)
	assert.Equal(t, 15, env.stock.get(a.ID, p.ID))

	movs := env.movimientos.porTipo("ajuste_manual")
	require.Len(t, movs, 1)
	assert.Equal(t, 5, movs[0].Cantidad)
	assert.Equal(t, 10, movs[0].StockAnterior)
	assert.Equal(t, 15, movs[0].StockNuevo)
	assert.Contains(t, movs[0].Motivo, "conteo físico")
}

func TestAjustarStock_NegativoConFloor(t *testing.T) {
	env := newStockEnv()
	a, p := env.seed(t)
	env.stock.set(a.ID, p.ID, 4)

	// Would go below zero — rejected, nothing changed.
	_, err := env.svc.Ajustar(context.Background(), ajuste(a, p, -6))
	var se *apierror.InsufficientStockError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 6, se.Faltantes[0].Solicitado)
	assert.Equal(t, 4, se.Faltantes[0].Disponible)
	assert.Equal(t, 4, env.stock.get(a.ID, p.ID))
	assert.Empty(t, env.movimientos.porTipo("ajuste_manual"))

	// Down to exactly zero is fine.
	resp, err := env.svc.Ajustar(context.Background(), ajuste(a, p, -4))
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Cantidad)
}

func TestAjustarStock_DeltaCero(t *testing.T) {
	env := newStockEnv()
	a, p := env.seed(t)

	_, err := env.svc.Ajustar(context.Background(), ajuste(a, p, 0))
	var ve *apierror.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestAjustarStock_AlmacenInexistente(t *testing.T) {
	env := newStockEnv()
	_, p := env.seed(t)

	req := dto.AjusteStockRequest{
		AlmacenID:  uuid.New().String(),
		ProductoID: p.ID.String(),
		Delta:      1,
		Motivo:     "conteo físico",
	}
	_, err := env.svc.Ajustar(context.Background(), req)
	var ne *apierror.NotFoundError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "almacen", ne.Recurso)
}

func TestAjustarStock_EntradaNueva(t *testing.T) {
	// Adjusting a product the warehouse never held creates the entry.
	env := newStockEnv()
	a, p := env.seed(t)

	resp, err := env.svc.Ajustar(context.Background(), ajuste(a, p, 25))
	require.NoError(t, err)
	assert.Equal(t, 25, resp.Cantidad)
	assert.Equal(t, 25, env.stock.get(a.ID, p.ID))
}

func TestListarStock_FiltraPorAlmacen(t *testing.T) {
	env := newStockEnv()
	a, p := env.seed(t)
	otro := &model.Almacen{ID: uuid.New(), Nombre: "Sucursal", Activo: true}
	env.almacenes.almacenes[otro.ID] = otro
	env.stock.set(a.ID, p.ID, 7)
	env.stock.set(otro.ID, p.ID, 3)

	entries, err := env.svc.Listar(context.Background(), dto.StockFilter{AlmacenID: a.ID.String()})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 7, entries[0].Cantidad)
}
