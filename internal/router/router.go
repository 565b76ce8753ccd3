package router

import (
	"time"

	"paucara/internal/config"
	"paucara/internal/handler"
	"paucara/internal/middleware"
	"paucara/internal/repository"
	"paucara/internal/service"
	"paucara/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	almacenRepo := repository.NewAlmacenRepository(db)
	transporteRepo := repository.NewTransporteRepository(db)
	transferenciaRepo := repository.NewTransferenciaRepository(db)
	stockRepo := repository.NewStockRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo)
	almacenSvc := service.NewAlmacenService(almacenRepo)
	stockSvc := service.NewStockService(stockRepo, almacenRepo, productoRepo, movimientoStockRepo, rdb, dispatcher)
	transferenciaSvc := service.NewTransferenciaService(
		transferenciaRepo, stockRepo, almacenRepo, productoRepo, transporteRepo, movimientoStockRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	almacenesH := handler.NewAlmacenesHandler(almacenSvc)
	stockH := handler.NewStockHandler(stockSvc)
	transferenciasH := handler.NewTransferenciasHandler(transferenciaSvc)
	transporteH := handler.NewTransporteHandler(transporteRepo)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Catálogo de productos — lectura para todos los roles autenticados,
		// escritura solo con capacidad de gestión de catálogo.
		v1.GET("/productos", productosH.Listar)
		v1.GET("/productos/:id", productosH.ObtenerPorID)
		v1.GET("/productos/barcode/:barcode", productosH.ObtenerPorBarcode)
		prods := v1.Group("/productos", middleware.RequirePermiso("catalogo.gestionar"))
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
		}

		// Almacenes
		v1.GET("/almacenes", almacenesH.Listar)
		v1.GET("/almacenes/:id", almacenesH.ObtenerPorID)
		almacenes := v1.Group("/almacenes", middleware.RequireRole("administrador"))
		{
			almacenes.POST("", almacenesH.Crear)
			almacenes.PUT("/:id", almacenesH.Actualizar)
			almacenes.DELETE("/:id", almacenesH.Desactivar)
		}

		// Inventario: stock, movimientos y ciclo de vida de transferencias.
		inv := v1.Group("/inventario")
		{
			inv.GET("/stock", middleware.RequirePermiso("inventario.stock.ver"), stockH.Listar)
			inv.PATCH("/stock/ajuste", middleware.RequirePermiso("inventario.stock.ajustar"), stockH.Ajustar)
			inv.GET("/movimientos", middleware.RequirePermiso("inventario.stock.ver"), stockH.Movimientos)

			inv.GET("/transferencias", transferenciasH.Listar)
			inv.GET("/transferencias/:id", transferenciasH.ObtenerPorID)
			inv.POST("/transferencias/crear", middleware.RequirePermiso("inventario.transferencias.crear"), transferenciasH.Crear)
			inv.PUT("/transferencias/:id", middleware.RequirePermiso("inventario.transferencias.crear"), transferenciasH.Actualizar)
			inv.POST("/transferencias/:id/enviar", middleware.RequirePermiso("inventario.transferencias.enviar"), transferenciasH.Enviar)
			inv.POST("/transferencias/:id/recibir", middleware.RequirePermiso("inventario.transferencias.recibir"), transferenciasH.Recibir)
			inv.POST("/transferencias/:id/cancelar", middleware.RequirePermiso("inventario.transferencias.cancelar"), transferenciasH.Cancelar)
		}

		// Transporte — catálogos de vehículos y choferes
		v1.GET("/transporte/vehiculos", transporteH.ListarVehiculos)
		v1.GET("/transporte/choferes", transporteH.ListarChoferes)

		// Usuarios — administrador only
		usuarios := v1.Group("/usuarios", middleware.RequireRole("administrador"))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
