package router

import (
	"time"

	"lavanderia/internal/aggregator"
	"lavanderia/internal/config"
	"lavanderia/internal/handler"
	"lavanderia/internal/infra"
	"lavanderia/internal/middleware"
	"lavanderia/internal/repository"
	"lavanderia/internal/service"
	"lavanderia/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, agg *aggregator.Agregador, dispatcher *worker.Dispatcher) *gin.Engine {
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

	// ── Infrastructure ───────────────────────────────────────────────────────
	notificador := infra.NewPubSubNotificador(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	prendaRepo := repository.NewPrendaRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	movimientoRepo := repository.NewMovimientoRepository(db)
	pendienteRepo := repository.NewPendienteRepository(db)
	contadorRepo := repository.NewContadorRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	ticketSeq := service.NewTicketSequencer(contadorRepo)
	cajaSvc := service.NewCajaService(cajaRepo, movimientoRepo, pendienteRepo, notificador, cfg.PDFStoragePath)
	movimientoSvc := service.NewMovimientoService(movimientoRepo, cajaSvc, prendaRepo, ticketSeq, agg, notificador, dispatcher)
	pendienteSvc := service.NewPendienteService(pendienteRepo, movimientoRepo, cajaSvc, prendaRepo, ticketSeq, notificador)
	prendaSvc := service.NewPrendaService(prendaRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	cajaH := handler.NewCajaHandler(cajaSvc, agg)
	ventasH := handler.NewVentasHandler(movimientoSvc)
	movimientosH := handler.NewMovimientosHandler(movimientoSvc)
	pendientesH := handler.NewPendientesHandler(pendienteSvc)
	prendasH := handler.NewPrendasHandler(prendaSvc)

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
	operador := middleware.RequireRole("cajero", "encargado", "administrador")
	encargado := middleware.RequireRole("encargado", "administrador")
	admin := middleware.RequireRole("administrador")

	v1 := r.Group("/v1", jwtMW)
	{
		caja := v1.Group("/caja")
		{
			caja.POST("/abrir", operador, cajaH.Abrir)
			caja.GET("/actual", operador, cajaH.Actual)
			caja.GET("/resumen", operador, cajaH.Resumen)
			caja.POST("/solicitar-cierre", operador, cajaH.SolicitarCierre)
			caja.POST("/cerrar", operador, cajaH.Cerrar)
			caja.GET("/historial", encargado, cajaH.Historial)
			caja.GET("/:id/reporte", encargado, cajaH.Reporte)
			caja.GET("/:id/reporte/pdf", encargado, cajaH.ReportePDF)
		}

		v1.POST("/ventas", operador, ventasH.RegistrarVenta)
		v1.GET("/ventas", operador, ventasH.ListarVentas)
		v1.PATCH("/ventas/:id/nota", operador, ventasH.EditarNota)

		v1.POST("/retiros", operador, movimientosH.RegistrarRetiro)
		v1.GET("/retiros", operador, movimientosH.ListarRetiros)
		v1.POST("/ingresos", operador, movimientosH.RegistrarIngreso)
		v1.GET("/ingresos", operador, movimientosH.ListarIngresos)

		pendientes := v1.Group("/pendientes", operador)
		{
			pendientes.POST("", pendientesH.Crear)
			pendientes.GET("", pendientesH.Listar)
			pendientes.POST("/:id/cobrar", pendientesH.Cobrar)
		}
		// Voiding a tab needs a supervisor
		v1.DELETE("/pendientes/:id", encargado, pendientesH.Anular)

		v1.GET("/prendas", operador, prendasH.Listar)
		prendas := v1.Group("/prendas", admin)
		{
			prendas.POST("", prendasH.Crear)
			prendas.PUT("/:id", prendasH.Actualizar)
			prendas.DELETE("/:id", prendasH.Desactivar)
		}

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
