package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reportai-backend/internal/reports"
	"reportai-backend/internal/services/health"
	"reportai-backend/internal/shared/config"
	"reportai-backend/internal/shared/metrics"
	"reportai-backend/internal/shared/server/middleware"
	"reportai-backend/internal/shared/server/respond"
)

const generateRateLimitGroup = "GENERATE"

// RouterDeps carries the handlers mounted by NewRouter.
type RouterDeps struct {
	Config         config.Config
	ReportsHandler *reports.Handler
	Health         *health.Service
	Limiter        *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	healthHandler := func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status())
	}

	r.GET("/", healthHandler)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.GET("/health", healthHandler)
	if deps.ReportsHandler != nil {
		deps.ReportsHandler.RegisterRoutes(api, generateRateLimit(deps))
	}

	return r
}

func generateRateLimit(deps RouterDeps) gin.HandlerFunc {
	return middleware.RateLimit(middleware.RateLimitConfig{
		DefaultGroup: generateRateLimitGroup,
		Limiter:      deps.Limiter,
		Rules: map[string]middleware.RateLimitRule{
			generateRateLimitGroup: {Rate: deps.Config.GenerateRate, Burst: deps.Config.GenerateBurst},
		},
	})
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
