package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

const apiVersion = "1.0"

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	metrics *prometheus.Metrics
	config  RouterConfig

	// public handlers need no session
	public []handler.Handler
	// protected handlers run behind RequireSession
	protected []handler.Handler
}

type RouterConfig struct {
	RateLimit      float64
	RateBurst      int
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	CORSConfig     middleware.CORSConfig
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	metrics *prometheus.Metrics,
	public []handler.Handler,
	protected []handler.Handler,
	config RouterConfig,
) *Router {
	engine := gin.New()

	r := &Router{
		engine:    engine,
		auth:      auth,
		metrics:   metrics,
		config:    config,
		public:    public,
		protected: protected,
	}

	middleware.RegisterValidation()

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.ErrorHandler(),
		metrics.Middleware(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORSConfig),
		middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RPS:   config.RateLimit,
			Burst: config.RateBurst,
		}).RateLimit(),
		middleware.SizeLimit(middleware.SizeLimitConfig{
			MaxBodySize:   config.MaxBodyBytes,
			MaxHeaderSize: middleware.DefaultSizeLimitConfig().MaxHeaderSize,
		}),
		middleware.Timeout(config.RequestTimeout),
		middleware.Compress(middleware.DefaultCompressConfig()),
	)

	return r
}

func (r *Router) Setup() *gin.Engine {
	api := r.engine.Group("/api/v1")
	api.Use(middleware.Version(apiVersion), r.auth.Authenticate())

	for _, h := range r.public {
		h.RegisterRoutes(api)
	}

	protected := api.Group("")
	protected.Use(r.auth.RequireSession(), middleware.NoStore())
	for _, h := range r.protected {
		h.RegisterRoutes(protected)
	}

	r.engine.NoRoute(func(c *gin.Context) {
		httputil.RespondWithError(c, apperrors.NotFound("route", nil))
	})

	return r.engine
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
