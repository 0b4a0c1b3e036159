// internal/api/router.go
package api

import (
	"net/http"

	"betfunnels-copy/internal/common/auth"
	"betfunnels-copy/internal/common/config"
	"betfunnels-copy/internal/common/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type RouterConfig struct {
	Config    *config.Config
	Generator Generator
	Casinos   CasinoSearcher
	Gate      *auth.PasswordGate
	Limiter   AttemptLimiter
	Readiness map[string]Pinger
	Logger    logger.Logger
}

func NewRouter(rc RouterConfig) *gin.Engine {
	h := &Handler{
		generator:   rc.Generator,
		casinos:     rc.Casinos,
		gate:        rc.Gate,
		limiter:     rc.Limiter,
		readiness:   rc.Readiness,
		dayCount:    rc.Config.Generation.DayCount,
		searchLimit: rc.Config.Generation.SearchLimit,
	}

	r := gin.New()
	r.Use(otelgin.Middleware(rc.Config.App.Name))
	r.Use(RequestContext(rc.Logger))
	r.Use(Recovery())
	r.Use(RequestLog())
	r.Use(CORS(rc.Config.CORS))

	r.GET("/healthz", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/check-password", h.CheckPassword)

		protected := api.Group("/")
		protected.Use(RequirePassword(rc.Gate))
		protected.POST("/generate-copy", h.GenerateCopy)
		protected.POST("/search-casinos", h.SearchCasinos)
	}

	return r
}

// NewServer wraps the router with the configured timeouts.
func NewServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadTimeout:       config.GetDuration(cfg.ReadTimeout),
		ReadHeaderTimeout: config.GetDuration(cfg.ReadTimeout),
		WriteTimeout:      config.GetDuration(cfg.WriteTimeout),
	}
}
