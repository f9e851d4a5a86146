package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "finlens/docs"
	"finlens/internal/handler"
	"finlens/internal/middleware"
)

// Options controls the global middleware.
type Options struct {
	AllowedOrigins []string
	SessionMaxAge  int
	SecureCookies  bool
	Logger         *zap.Logger
}

// Setup configures the Gin engine with all routes and middleware. Every
// endpoint is reachable both at the root and under /api.
func Setup(
	opts Options,
	analysisH *handler.AnalysisHandler,
	exportH *handler.ExportHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(opts.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	for _, g := range []*gin.RouterGroup{r.Group(""), r.Group("/api")} {
		g.Use(middleware.Session(opts.SessionMaxAge, opts.SecureCookies))
		g.POST("/analyze", analysisH.Analyze)
		g.GET("/download-excel", exportH.Excel)
		g.GET("/download-csv", exportH.CSV)
		g.GET("/download-ocr", exportH.Extraction)
	}

	return r
}
