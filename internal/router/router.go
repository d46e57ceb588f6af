package router

import (
	"time"

	"caixapos/internal/config"
	"caixapos/internal/handler"
	"caixapos/internal/middleware"
	"caixapos/internal/repository"
	"caixapos/internal/service"
	"caixapos/internal/worker"

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
	caixaRepo := repository.NewCaixaRepository(db)
	pedidoRepo := repository.NewPedidoRepository(db)
	catalogoRepo := repository.NewCatalogoRepository(db)
	relatorioRepo := repository.NewRelatorioRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	caixaSvc := service.NewCaixaService(caixaRepo, dispatcher)
	pedidoSvc := service.NewPedidoService(pedidoRepo, caixaSvc, caixaRepo, catalogoRepo)
	relatorioSvc := service.NewRelatorioService(relatorioRepo, rdb, time.Duration(cfg.ReportCacheTTLSeconds)*time.Second)

	// ── Handlers ─────────────────────────────────────────────────────────────
	caixaH := handler.NewCaixaHandler(caixaSvc)
	pedidosH := handler.NewPedidoHandler(pedidoSvc)
	relatoriosH := handler.NewRelatorioHandler(relatorioSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: operador, supervisor, administrador — declared per-endpoint
		caixa := v1.Group("/caixa")
		{
			caixa.POST("/abrir", middleware.RequireRole("operador", "supervisor", "administrador"), caixaH.Abrir)
			caixa.POST("/fechar", middleware.RequireRole("operador", "supervisor", "administrador"), caixaH.Fechar)
			caixa.POST("/movimentacao", middleware.RequireRole("operador", "supervisor", "administrador"), caixaH.RegistrarMovimentacao)
			caixa.GET("/atual", middleware.RequireRole("operador", "supervisor", "administrador"), caixaH.SessaoAtual)
			caixa.GET("/:id/movimentacoes", middleware.RequireRole("operador", "supervisor", "administrador"), caixaH.ListarMovimentacoes)
			caixa.GET("/historico", middleware.RequireRole("supervisor", "administrador"), caixaH.Historico)
		}

		pedidos := v1.Group("/pedidos")
		{
			pedidos.POST("", middleware.RequireRole("operador", "supervisor", "administrador"), pedidosH.Criar)
			pedidos.GET("", middleware.RequireRole("operador", "supervisor", "administrador"), pedidosH.Listar)
			pedidos.GET("/:id", middleware.RequireRole("operador", "supervisor", "administrador"), pedidosH.Obter)
			pedidos.POST("/:id/pagamentos", middleware.RequireRole("operador", "supervisor", "administrador"), pedidosH.RegistrarPagamento)
			pedidos.DELETE("/:id", middleware.RequireRole("supervisor", "administrador"), pedidosH.Cancelar)
		}

		v1.POST("/pagamentos/:id/confirmar", middleware.RequireRole("operador", "supervisor", "administrador"), pedidosH.ConfirmarPagamento)

		relatorios := v1.Group("/relatorios", middleware.RequireRole("supervisor", "administrador"))
		{
			relatorios.GET("/consolidado", relatoriosH.Consolidado)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
