// Package httpapi exposes the grocery core over HTTP with gin.
package httpapi

import (
	"net/http"

	"smart-grocery/internal/app"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the HTTP handler for a. Mutating routes require a bearer
// token when API_SECRET is configured.
func NewRouter(a *app.App) *gin.Engine {
	registerValidators()

	cfg := a.Config()
	h := &handler{app: a, logger: a.Logger()}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(correlationID())
	r.Use(requestLogger(h.logger))
	r.Use(corsMiddleware(cfg.CORSAllowedOrigins))

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/health", h.health)

	r.GET("/items", h.listItems)
	r.GET("/items/:id", h.getItem)
	r.GET("/expiring", h.expiring)
	r.GET("/summary", h.summary)
	r.POST("/recommendations", h.recommendations)
	r.GET("/healthy-subs", h.healthySubs)
	r.GET("/shopping-list", h.listShopping)

	w := r.Group("/", requireToken(cfg.APISecret))
	w.POST("/items", h.createItem)
	w.PUT("/items/:id", h.updateItem)
	w.DELETE("/items/:id", h.deleteItem)
	w.POST("/history", h.recordHistory)
	w.POST("/history/receipt", h.recordReceipt)
	w.POST("/shopping-list", h.addShopping)
	w.DELETE("/shopping-list/:id", h.removeShopping)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	return r
}
