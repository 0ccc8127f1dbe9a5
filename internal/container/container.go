package container

import (
	"context"
	"net/http"

	"github.com/jimmyshah83/doc-intellij-poc/internal/analysis"
	"github.com/jimmyshah83/doc-intellij-poc/internal/config"
	"github.com/jimmyshah83/doc-intellij-poc/internal/factory"
	"github.com/jimmyshah83/doc-intellij-poc/internal/logger"
	"github.com/jimmyshah83/doc-intellij-poc/internal/observer"
	"github.com/jimmyshah83/doc-intellij-poc/internal/repository"
	"github.com/jimmyshah83/doc-intellij-poc/internal/service"
	"github.com/jimmyshah83/doc-intellij-poc/internal/transport"
	"github.com/jimmyshah83/doc-intellij-poc/internal/worker"
	"github.com/jimmyshah83/doc-intellij-poc/pkg/validation"

	"github.com/sirupsen/logrus"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	analyzer        analysis.DocumentAnalyzer
	fieldRepository repository.FieldRepository
	pool            *worker.Pool
	publisher       *observer.EventPublisher
	metrics         *observer.MetricsObserver
	formService     service.FormService
}

// NewContainer builds the dependency graph for the given entry point.
// VariantAnalyzeOnly skips the Cosmos DB client.
func NewContainer(ctx context.Context, cfg *config.Config, variant config.Variant) (*Container, error) {
	components := factory.NewComponentFactory(cfg)

	documentAnalyzer, err := components.AnalyzerFactory.CreateAnalyzer(ctx, cfg.AnalysisProvider)
	if err != nil {
		return nil, err
	}

	var fieldRepository repository.FieldRepository
	if variant != config.VariantAnalyzeOnly {
		cosmos, err := repository.NewCosmosFieldRepository(repository.CosmosOptions{
			Endpoint:         cfg.CosmosEndpoint,
			Key:              cfg.CosmosKey,
			DatabaseName:     cfg.CosmosDatabaseName,
			ContainerName:    cfg.CosmosContainerName,
			PartitionKeyPath: cfg.CosmosPartitionKeyPath,
		})
		if err != nil {
			return nil, err
		}
		fieldRepository = cosmos
	}

	pool := worker.NewPool(cfg.PersistConcurrency)
	pool.Start()

	metrics := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	validator := validation.NewURLValidatorWithOptions([]string{"http", "https"}, cfg.AllowedDocumentHosts)
	formService := service.NewFormAnalysisService(documentAnalyzer, fieldRepository, pool, validator, publisher, service.Options{
		AnalysisTimeout: cfg.AnalysisTimeout,
		PersistTimeout:  cfg.PersistTimeout,
	})

	logger.WithFields(logrus.Fields{
		"provider":            cfg.AnalysisProvider,
		"blob_storage":        cfg.BlobStorageConfigured(),
		"persistence":         fieldRepository != nil,
		"persist_concurrency": cfg.PersistConcurrency,
	}).Info("Container initialized")

	return &Container{
		config:          cfg,
		analyzer:        documentAnalyzer,
		fieldRepository: fieldRepository,
		pool:            pool,
		publisher:       publisher,
		metrics:         metrics,
		formService:     formService,
	}, nil
}

// Service returns the form analysis service
func (c *Container) Service() service.FormService {
	return c.formService
}

// WebHandler returns the router of the standalone web server
func (c *Container) WebHandler() http.Handler {
	return transport.NewWebHandler(c.formService, c.config, c)
}

// FunctionsHandler returns the router of the Functions custom handler
func (c *Container) FunctionsHandler() http.Handler {
	return transport.NewFunctionsHandler(c.formService, c.config, c)
}

// GetMetrics merges pipeline counters with persistence worker stats
func (c *Container) GetMetrics() map[string]interface{} {
	metrics := c.metrics.GetMetrics()
	stats := c.pool.GetStats()
	metrics["persist_workers"] = stats.Workers
	metrics["persist_jobs_total"] = stats.TotalJobs
	metrics["persist_jobs_completed"] = stats.CompletedJobs
	metrics["persist_workers_active"] = stats.ActiveWorkers
	return metrics
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close stops the persistence workers and releases analysis clients
func (c *Container) Close() error {
	c.pool.Close()
	if closer, ok := c.analyzer.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
