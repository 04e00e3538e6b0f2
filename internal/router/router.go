package router

import (
	"time"

	"github.com/r2flows/pharma-vendor-oportunities/internal/config"
	"github.com/r2flows/pharma-vendor-oportunities/internal/handler"
	"github.com/r2flows/pharma-vendor-oportunities/internal/infra"
	"github.com/r2flows/pharma-vendor-oportunities/internal/middleware"
	"github.com/r2flows/pharma-vendor-oportunities/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Dependencias are built in the composition root and injected here.
// DB and RDB may be nil: CSV mode has no database, and without Redis the
// async endpoints fall back to synchronous work.
type Dependencias struct {
	DB       *gorm.DB
	RDB      *redis.Client
	Servicio service.ConciliacionService
	Jobs     handler.Encolador
	Breaker  *infra.CircuitBreaker
}

// New returns a configured Gin engine.
// Dependency graph: Handler ← Service ← FuenteDatos ← CSV/Postgres
func New(cfg *config.Config, deps Dependencias) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins...))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	conciliacionH := handler.NewConciliacionHandler(deps.Servicio, deps.Jobs)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(deps.DB, deps.RDB, deps.Servicio, deps.Breaker))

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.GET("/estado", middleware.RequireRole(middleware.RolAdministrador, middleware.RolAnalista), conciliacionH.Estado)
		v1.POST("/recalcular", middleware.RequireRole(middleware.RolAdministrador), conciliacionH.Recalcular)
		v1.GET("/pos", middleware.RequireRole(middleware.RolAdministrador, middleware.RolAnalista), conciliacionH.ListarPOS)

		// Every role reads a POS; punto_de_venta tokens only their own
		pos := v1.Group("/pos/:pos", middleware.RequirePOSAccess())
		{
			pos.GET("/resumen", conciliacionH.Resumen)
			pos.GET("/vendors", conciliacionH.Vendors)
			pos.GET("/clasificacion", conciliacionH.Clasificacion)
			pos.GET("/insights", conciliacionH.Insights)
			pos.GET("/fabricantes", conciliacionH.Fabricantes)
			pos.GET("/reporte.pdf", conciliacionH.ReportePDF)
			pos.POST("/reporte/email", middleware.RequireRole(middleware.RolAdministrador, middleware.RolAnalista), conciliacionH.EnviarReporte)
		}
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
