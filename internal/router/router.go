package router

import (
	"time"

	"gestorpdv/internal/config"
	"gestorpdv/internal/handler"
	"gestorpdv/internal/middleware"
	"gestorpdv/internal/repository"
	"gestorpdv/internal/service"
	"gestorpdv/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
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
	produtoRepo := repository.NewProdutoRepository(db)
	metodoRepo := repository.NewMetodoPagamentoRepository(db)
	caixaRepo := repository.NewCaixaRepository(db)
	vendaRepo := repository.NewVendaRepository(db)
	contaRepo := repository.NewContaReceberRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	produtoSvc := service.NewProdutoService(produtoRepo)
	pagamentoSvc := service.NewPagamentoService(metodoRepo, rdb)
	caixaSvc := service.NewCaixaService(caixaRepo, dispatcher)
	receberSvc := service.NewReceberService(contaRepo)
	vendaSvc := service.NewVendaService(vendaRepo, produtoRepo, caixaSvc, pagamentoSvc, receberSvc, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	produtosH := handler.NewProdutosHandler(produtoSvc)
	pagamentosH := handler.NewPagamentosHandler(pagamentoSvc)
	caixaH := handler.NewCaixaHandler(caixaSvc)
	vendasH := handler.NewVendasHandler(vendaSvc)
	contasH := handler.NewContasReceberHandler(receberSvc)

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
		operacao := middleware.RequireRole("operador", "supervisor", "administrador")
		supervisao := middleware.RequireRole("supervisor", "administrador")
		admin := middleware.RequireRole("administrador")

		caixa := v1.Group("/caixa")
		{
			caixa.POST("/abrir", operacao, caixaH.Abrir)
			caixa.POST("/fechar", operacao, caixaH.Fechar)
			caixa.GET("/atual", operacao, caixaH.Atual)
			caixa.GET("/:id", supervisao, caixaH.Obter)
			caixa.GET("/historico", supervisao, caixaH.Historico)
		}

		v1.POST("/vendas", operacao, vendasH.Registrar)
		v1.GET("/vendas", operacao, vendasH.Listar)
		v1.GET("/vendas/:id", operacao, vendasH.Obter)
		v1.POST("/vendas/:id/anular", supervisao, vendasH.Anular)

		pagamentos := v1.Group("/pagamentos")
		{
			pagamentos.GET("/metodos", operacao, pagamentosH.Listar)
			pagamentos.POST("/simular", operacao, pagamentosH.Simular)
			metodos := pagamentos.Group("/metodos", admin)
			{
				metodos.POST("", pagamentosH.Criar)
				metodos.PUT("/:id", pagamentosH.Atualizar)
				metodos.DELETE("/:id", pagamentosH.Desativar)
			}
		}

		contas := v1.Group("/contas-receber", supervisao)
		{
			contas.GET("", contasH.Listar)
			contas.POST("/:id/baixa", contasH.RegistrarRecebimento)
		}

		v1.GET("/produtos", operacao, produtosH.Listar)
		v1.GET("/produtos/:id", operacao, produtosH.Obter)
		v1.GET("/produtos/barcode/:barcode", operacao, produtosH.ObterPorBarcode)
		produtos := v1.Group("/produtos", admin)
		{
			produtos.POST("", produtosH.Criar)
			produtos.PUT("/:id", produtosH.Atualizar)
			produtos.DELETE("/:id", produtosH.Desativar)
		}

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Criar)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Atualizar)
			usuarios.DELETE("/:id", usuariosH.Desativar)
			usuarios.PATCH("/:id/reativar", usuariosH.Reativar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
