package transport

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/jimmyshah83/doc-intellij-poc/internal/errors"
	"github.com/jimmyshah83/doc-intellij-poc/internal/logger"
	"github.com/jimmyshah83/doc-intellij-poc/internal/service"
	"github.com/jimmyshah83/doc-intellij-poc/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	headerRecordsStored = "X-Records-Stored"
	headerRecordsFailed = "X-Records-Failed"
)

// trigger adapts a hosting environment's request to a document locator
type trigger interface {
	name() string
	documentURL(c *gin.Context) (string, error)
}

// webTrigger uses the formurl query parameter, else the configured locator
type webTrigger struct {
	defaultURL string
}

func (t webTrigger) name() string { return "web" }

func (t webTrigger) documentURL(c *gin.Context) (string, error) {
	if formURL := strings.TrimSpace(c.Query("formurl")); formURL != "" {
		return formURL, nil
	}
	if t.defaultURL == "" {
		return "", apperrors.NewValidationError("no document locator configured", nil)
	}
	return t.defaultURL, nil
}

// functionTrigger reads the locator from the JSON request body
type functionTrigger struct{}

func (functionTrigger) name() string { return "function" }

func (functionTrigger) documentURL(c *gin.Context) (string, error) {
	var req models.AnalyzeDocRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return "", apperrors.NewValidationError("invalid request format", err)
	}
	return req.FormURL, nil
}

// serveAnalysis runs the analyze-and-store pass for the locator the trigger supplies
func serveAnalysis(svc service.FormService, t trigger, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx := c.Request.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		logger.WithFields(logrus.Fields{
			"trigger":    t.name(),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing form analysis request")

		documentURL, err := t.documentURL(c)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid request", err)
			return
		}

		outcome, err := svc.AnalyzeForm(ctx, documentURL)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "form analysis failed", err)
			return
		}

		c.Header(headerRecordsStored, strconv.Itoa(outcome.StoredCount()))
		if failed := outcome.FailedIndexes(); len(failed) > 0 {
			c.Header(headerRecordsFailed, joinIndexes(failed))
		}

		logger.WithFields(logrus.Fields{
			"trigger":            t.name(),
			"url":                documentURL,
			"fields":             len(outcome.Fields),
			"records_stored":     outcome.StoredCount(),
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Form analysis completed")

		if c.Query("detail") == "true" {
			c.JSON(http.StatusOK, outcome)
			return
		}
		c.JSON(http.StatusOK, outcome.Fields)
	}
}

func joinIndexes(indexes []int) string {
	parts := make([]string, len(indexes))
	for i, index := range indexes {
		parts[i] = strconv.Itoa(index)
	}
	return strings.Join(parts, ",")
}
