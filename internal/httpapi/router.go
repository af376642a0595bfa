package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/matheusmosca/storefront/internal/identity"
)

// NewRouter monta as rotas HTTP da loja
func NewRouter(h *Handler, resolver identity.Resolver, serviceName string, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))

	r.GET("/health", h.HealthCheck)

	api := r.Group("/api")
	api.GET("/products", h.SearchProducts)
	api.GET("/products/:id", h.GetProduct)

	// Relatórios
	api.GET("/orders", h.RecentOrders)
	api.GET("/orders/popular-products", h.PopularProducts)
	api.GET("/orders/popular-categories", h.PopularCategories)

	authed := api.Group("", Authenticate(resolver, logger))
	authed.GET("/basket", h.GetBasket)
	authed.PUT("/basket/:productId", h.PutBasketLine)
	authed.DELETE("/basket/:productId", h.RemoveBasketLine)
	authed.POST("/orders", h.PlaceOrder)
	authed.GET("/orders/:id", h.GetOrder)

	return r
}
