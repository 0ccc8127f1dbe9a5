package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingConfig is returned when required configuration values are absent
var ErrMissingConfig = errors.New("missing required configuration")

// Analysis providers
const (
	ProviderAzure  = "azure"
	ProviderGoogle = "google"
)

// Variant selects which entry point the configuration is validated for
type Variant int

const (
	// VariantWebServer needs a default document locator (FORM_URL)
	VariantWebServer Variant = iota
	// VariantFunction reads the locator from each request
	VariantFunction
	// VariantAnalyzeOnly analyses without persisting
	VariantAnalyzeOnly
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	AnalysisTimeout    time.Duration
	PersistTimeout     time.Duration
	MaxRequestBodySize int64
	PersistConcurrency int

	AnalysisProvider          string
	DocIntelligenceEndpoint   string
	DocIntelligenceKey        string
	DocIntelligenceModel      string
	DocIntelligenceAPIVersion string

	GoogleCloudProject    string
	GoogleCloudLocation   string
	DocumentAIProcessorID string
	GoogleCredentialsFile string

	FormURL              string
	AllowedDocumentHosts []string

	CosmosEndpoint         string
	CosmosKey              string
	CosmosDatabaseName     string
	CosmosContainerName    string
	CosmosPartitionKeyPath string

	StorageAccountName string
	StorageAccountKey  string

	LogLevel  string
	LogFormat string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// PersistenceConfigured reports whether every Cosmos DB setting is present
func (c *Config) PersistenceConfigured() bool {
	return c.CosmosEndpoint != "" && c.CosmosKey != "" &&
		c.CosmosDatabaseName != "" && c.CosmosContainerName != ""
}

// BlobStorageConfigured reports whether shared key access to a storage account is set up
func (c *Config) BlobStorageConfigured() bool {
	return c.StorageAccountName != "" && c.StorageAccountKey != ""
}

// LoadDotEnv populates the process environment from a local override file.
// Variables already set in the environment are left untouched and a missing
// file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 120*time.Second),
		AnalysisTimeout:    parseDurationOrDefault("ANALYSIS_TIMEOUT", 90*time.Second),
		PersistTimeout:     parseDurationOrDefault("PERSIST_TIMEOUT", 10*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 1024*1024), // 1MB
		PersistConcurrency: int(parseIntOrDefault("PERSIST_CONCURRENCY", 1)),

		AnalysisProvider:          strings.ToLower(getEnvOrDefault("ANALYSIS_PROVIDER", ProviderAzure)),
		DocIntelligenceEndpoint:   strings.TrimRight(os.Getenv("DOC_INTELLIGENCE_ENDPOINT"), "/"),
		DocIntelligenceKey:        os.Getenv("DOC_INTELLIGENCE_KEY"),
		DocIntelligenceModel:      getEnvOrDefault("DOC_INTELLIGENCE_MODEL", "prebuilt-document"),
		DocIntelligenceAPIVersion: getEnvOrDefault("DOC_INTELLIGENCE_API_VERSION", "2023-07-31"),

		GoogleCloudProject:    os.Getenv("GOOGLE_CLOUD_PROJECT"),
		GoogleCloudLocation:   getEnvOrDefault("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID: os.Getenv("DOCUMENT_AI_PROCESSOR_ID"),
		GoogleCredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		FormURL:              strings.TrimSpace(os.Getenv("FORM_URL")),
		AllowedDocumentHosts: splitList(os.Getenv("ALLOWED_DOCUMENT_HOSTS")),

		CosmosEndpoint:         os.Getenv("COSMOSDB_ENDPOINT"),
		CosmosKey:              os.Getenv("COSMOSDB_KEY"),
		CosmosDatabaseName:     os.Getenv("COSMOSDB_DATABASE_NAME"),
		CosmosContainerName:    os.Getenv("COSMOSDB_CONTAINER_NAME"),
		CosmosPartitionKeyPath: getEnvOrDefault("COSMOSDB_PARTITION_KEY_PATH", "/id"),

		StorageAccountName: os.Getenv("AZURE_STORAGE_ACCOUNT_NAME"),
		StorageAccountKey:  os.Getenv("AZURE_STORAGE_ACCOUNT_KEY"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
	}

	// The functions host tells a custom handler which port to listen on
	if port := os.Getenv("FUNCTIONS_CUSTOMHANDLER_PORT"); port != "" {
		cfg.Port = port
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.PersistConcurrency <= 0 {
		return nil, fmt.Errorf("PERSIST_CONCURRENCY must be > 0 (got %d)", cfg.PersistConcurrency)
	}
	if cfg.RequestTimeout <= 0 || cfg.AnalysisTimeout <= 0 || cfg.PersistTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, analysis=%s, persist=%s)",
			cfg.RequestTimeout, cfg.AnalysisTimeout, cfg.PersistTimeout)
	}
	if cfg.AnalysisProvider != ProviderAzure && cfg.AnalysisProvider != ProviderGoogle {
		return nil, fmt.Errorf("invalid ANALYSIS_PROVIDER: %q", cfg.AnalysisProvider)
	}
	if cfg.CosmosPartitionKeyPath != "/id" && cfg.CosmosPartitionKeyPath != "/key" {
		return nil, fmt.Errorf("unsupported COSMOSDB_PARTITION_KEY_PATH: %q", cfg.CosmosPartitionKeyPath)
	}
	return cfg, nil
}

// Validate checks that every value the given entry point needs is present.
// All missing keys are reported together.
func (c *Config) Validate(variant Variant) error {
	var missing []string
	require := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}

	switch c.AnalysisProvider {
	case ProviderGoogle:
		require("GOOGLE_CLOUD_PROJECT", c.GoogleCloudProject)
		require("DOCUMENT_AI_PROCESSOR_ID", c.DocumentAIProcessorID)
	default:
		require("DOC_INTELLIGENCE_ENDPOINT", c.DocIntelligenceEndpoint)
		require("DOC_INTELLIGENCE_KEY", c.DocIntelligenceKey)
	}

	if variant == VariantWebServer {
		require("FORM_URL", c.FormURL)
	}

	if variant != VariantAnalyzeOnly {
		require("COSMOSDB_ENDPOINT", c.CosmosEndpoint)
		require("COSMOSDB_KEY", c.CosmosKey)
		require("COSMOSDB_DATABASE_NAME", c.CosmosDatabaseName)
		require("COSMOSDB_CONTAINER_NAME", c.CosmosContainerName)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
