package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwalitptl/frontdesk/internal/middleware"
	"github.com/jwalitptl/frontdesk/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// Handlers groups the API surface.
type Handlers struct {
	Health      Handler
	Appointment Handler
	Slot        Handler
	Patient     Handler
	Export      Handler
}

type RouterConfig struct {
	Mode string
	// RateLimit is nil when limiting is disabled.
	RateLimit  *middleware.RateLimiterConfig
	CORSConfig middleware.CORSConfig
	// Auth guards everything except health and metrics. Nil disables it.
	Auth        *middleware.AuthMiddleware
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	MetricsPath string
}

type Router struct {
	engine   *gin.Engine
	handlers Handlers
	config   RouterConfig
}

func NewRouter(handlers Handlers, config RouterConfig) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	if config.Metrics == nil {
		config.Metrics = metrics.NewNop()
	}
	middleware.RegisterValidators()

	engine := gin.New()
	r := &Router{engine: engine, handlers: handlers, config: config}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
		middleware.ErrorHandler(),
		middleware.CORS(config.CORSConfig),
	)
	if config.RateLimit != nil {
		engine.Use(middleware.NewRateLimiter(*config.RateLimit).RateLimit())
	}

	r.setup()
	return r
}

func (r *Router) setup() {
	if r.config.Gatherer != nil && r.config.MetricsPath != "" {
		r.engine.GET(r.config.MetricsPath, gin.WrapH(promhttp.HandlerFor(r.config.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(api)
	}

	protected := api.Group("")
	if r.config.Auth != nil {
		protected.Use(r.config.Auth.Authenticate())
	}
	for _, h := range []Handler{r.handlers.Appointment, r.handlers.Slot, r.handlers.Patient, r.handlers.Export} {
		if h != nil {
			h.RegisterRoutes(protected)
		}
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	m := r.config.Metrics
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		m.RequestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		if c.Writer.Status() >= 500 {
			m.ErrorTotal.WithLabelValues(c.Request.Method, path).Inc()
		}
	}
}
