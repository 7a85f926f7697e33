package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/guestflow/faqbot/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(logger.With("component", "http.router")),
		errorHandlingMiddleware(logger.With("component", "http.errors")),
		rateLimitMiddleware(cfg.HTTP.RateLimit, logger.With("component", "http.ratelimit")),
		corsMiddleware(),
	)

	router.GET("/healthz", handler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1/tenants/:tenantId")
	{
		api.POST("/queries", handler.Answer)
		api.GET("/faqs", handler.ListFaqs)
		api.POST("/faqs", handler.AddFaq)
		api.PUT("/faqs/:entryId", handler.UpdateFaq)
		api.DELETE("/faqs/:entryId", handler.DeleteFaq)
		api.POST("/faqs/import", handler.ImportFaqs)
		api.GET("/faqs/export", handler.ExportFaqs)
		api.POST("/embeddings/refresh", handler.RefreshEmbeddings)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
