package transport

import (
	"net/http"
	"strings"

	"github.com/jimmyshah83/doc-intellij-poc/internal/config"
	"github.com/jimmyshah83/doc-intellij-poc/internal/service"
	"github.com/jimmyshah83/doc-intellij-poc/pkg/models"

	"github.com/gin-gonic/gin"
)

const greetingFallback = "This HTTP triggered function executed successfully. Pass a name in the query string or in the request body for a personalized response."

// NewFunctionsHandler builds the router of the Azure Functions custom handler.
// Each function is served at its own name and under /api/ for forwarded requests.
func NewFunctionsHandler(svc service.FormService, cfg *config.Config, metrics MetricsProvider) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		invocationEnvelope(),
		errorHandler(),
	)

	analyze := serveAnalysis(svc, functionTrigger{}, cfg.RequestTimeout)
	for _, prefix := range []string{"", "/api"} {
		r.POST(prefix+"/analyze_doc", analyze)
		r.GET(prefix+"/jsdipoc", greeting)
		r.POST(prefix+"/jsdipoc", greeting)
	}
	r.GET("/health", healthCheck(metrics))

	return r
}

func greeting(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		var req models.GreetingRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			name = strings.TrimSpace(req.Name)
		}
	}

	if name == "" {
		c.String(http.StatusOK, greetingFallback)
		return
	}
	c.String(http.StatusOK, "Hello, %s. This HTTP triggered function executed successfully.", name)
}
