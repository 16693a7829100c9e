package server

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/harentsoaR/lessons-api/internal/handlers"
	"github.com/harentsoaR/lessons-api/internal/middleware"
)

type RouterOptions struct {
	CORSOrigins  []string
	StaticPrefix string
	StaticDir    string

	// AuthLimiter throttles signup and signin; nil disables it.
	AuthLimiter *middleware.RateLimiter
	// Metrics enables request metrics and the /metrics endpoint.
	Metrics *middleware.Metrics

	Logger zerolog.Logger
}

func NewRouter(h *handlers.Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()

	// --- Middleware ---
	r.Use(
		middleware.Recovery(opts.Logger),
		middleware.RequestID(),
		middleware.RequestLogger(opts.Logger),
	)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Handler())
	}
	r.Use(
		middleware.CORS(opts.CORSOrigins),
		middleware.ErrorHandler(opts.Logger),
	)

	r.NoRoute(middleware.NoRoute)

	// --- Routes ---
	if opts.StaticDir != "" {
		r.Static(opts.StaticPrefix, opts.StaticDir)
	}
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics.Exposition()))
	}
	r.GET("/healthz", h.Health)

	api := r.Group("/api")
	{
		api.GET("/search", h.SearchLessons)
		api.POST("/orders", h.CreateOrder)

		auth := api.Group("", opts.AuthLimiter.Handler())
		auth.POST("/signup", h.Signup)
		auth.POST("/signin", h.Signin)

		// Generic access to any collection named in the path.
		api.GET("/:collectionName", h.BindCollection(), h.ListDocuments)
		api.PUT("/:collectionName/:id", h.BindCollection(), h.UpdateDocument)
	}

	return r
}
