package transport

import (
	"net/http"

	"github.com/jimmyshah83/doc-intellij-poc/internal/config"
	"github.com/jimmyshah83/doc-intellij-poc/internal/service"

	"github.com/gin-gonic/gin"
)

// NewWebHandler builds the router of the standalone web server
func NewWebHandler(svc service.FormService, cfg *config.Config, metrics MetricsProvider) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck(metrics))
	r.GET("/analyze_form", serveAnalysis(svc, webTrigger{defaultURL: cfg.FormURL}, cfg.RequestTimeout))

	return r
}
