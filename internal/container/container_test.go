package container

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jimmyshah83/doc-intellij-poc/internal/config"
	"github.com/jimmyshah83/doc-intellij-poc/pkg/models"

	"github.com/gin-gonic/gin"
)

func testConfig() *config.Config {
	return &config.Config{
		RequestTimeout:            5 * time.Second,
		AnalysisTimeout:           time.Second,
		PersistTimeout:            time.Second,
		MaxRequestBodySize:        1024,
		PersistConcurrency:        2,
		AnalysisProvider:          config.ProviderAzure,
		DocIntelligenceEndpoint:   "https://example.cognitiveservices.azure.com",
		DocIntelligenceKey:        "key",
		DocIntelligenceModel:      "prebuilt-document",
		DocIntelligenceAPIVersion: "2023-07-31",
		FormURL:                   "https://example.com/form.pdf",
		CosmosEndpoint:            "https://example.documents.azure.com:443/",
		CosmosKey:                 "dGVzdC1rZXk=",
		CosmosDatabaseName:        "forms",
		CosmosContainerName:       "fields",
		CosmosPartitionKeyPath:    "/id",
	}
}

func TestNewContainer(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name            string
		variant         config.Variant
		wantPersistence bool
	}{
		{"web server", config.VariantWebServer, true},
		{"function", config.VariantFunction, true},
		{"analyze only", config.VariantAnalyzeOnly, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewContainer(context.Background(), testConfig(), tt.variant)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			defer c.Close()

			if (c.fieldRepository != nil) != tt.wantPersistence {
				t.Errorf("Expected persistence=%v", tt.wantPersistence)
			}
			if c.Service() == nil {
				t.Errorf("Expected a form service")
			}
		})
	}
}

func TestNewContainer_UnsupportedProvider(t *testing.T) {
	cfg := testConfig()
	cfg.AnalysisProvider = "aws"

	if _, err := NewContainer(context.Background(), cfg, config.VariantAnalyzeOnly); err == nil {
		t.Errorf("Expected an error for an unsupported provider")
	}
}

func TestContainer_HealthReportsMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, err := NewContainer(context.Background(), testConfig(), config.VariantFunction)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer c.Close()

	for _, handler := range []http.Handler{c.WebHandler(), c.FunctionsHandler()} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		var resp models.HealthResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode health response: %v", err)
		}
		if resp.Metrics["persist_workers"] != float64(2) {
			t.Errorf("Expected persist_workers=2, got %v", resp.Metrics["persist_workers"])
		}
		if _, ok := resp.Metrics["records_stored"]; !ok {
			t.Errorf("Expected pipeline counters, got %v", resp.Metrics)
		}
	}
}
