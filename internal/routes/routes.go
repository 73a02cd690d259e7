package routes

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/handlers"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/webapp"
)

type Deps struct {
	Log        *zap.Logger
	Production bool
	Products   handlers.ProductService
	Store      handlers.Pinger
	Tokens     *auth.Tokens
	Metrics    *metrics.Metrics // optional
	Web        *webapp.Router   // optional
}

// RegisterRoutes installs the middleware chain, the product API, health and
// metrics endpoints and the client shell on router.
func RegisterRoutes(router *gin.Engine, d Deps) {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	router.Use(middleware.RequestID(), middleware.RequestLogger(log))
	if d.Metrics != nil {
		router.Use(d.Metrics.Middleware())
	}
	router.Use(middleware.ErrorHandler(log, d.Production), middleware.Recovery(log))

	router.GET("/healthz", handlers.Health(d.Store))
	if d.Metrics != nil {
		router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	h := handlers.NewProductHandler(d.Products)

	products := router.Group("/api/products")
	{
		products.GET("", handlers.Wrap(h.GetProducts))
		products.GET("/:id", handlers.Wrap(h.GetProductByID))
	}

	admin := products.Group("", auth.Protect(d.Tokens), auth.Admin())
	{
		admin.POST("", handlers.Wrap(h.CreateProduct))
		admin.POST("/:id", handlers.Wrap(h.UpdateProduct))
		admin.PUT("/:id", handlers.Wrap(h.UpdateProduct))
		admin.DELETE("/:id", handlers.Wrap(h.DeleteProduct))
	}

	if d.Web != nil {
		d.Web.Mount(router)
	}

	apiNotFound := middleware.NotFound()
	router.NoRoute(func(c *gin.Context) {
		if d.Web == nil || strings.HasPrefix(c.Request.URL.Path, "/api") {
			apiNotFound(c)
			return
		}
		d.Web.NotFound(c)
	})
}
