package factory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jimmyshah83/doc-intellij-poc/internal/analysis"
	"github.com/jimmyshah83/doc-intellij-poc/internal/config"
	"github.com/jimmyshah83/doc-intellij-poc/internal/storage"
)

// StorageType represents different document sources
type StorageType string

const (
	// HTTPStorage fetches public or SAS-signed locators over HTTP
	HTTPStorage StorageType = "http"
	// AzureStorage downloads private blobs with the account key
	AzureStorage StorageType = "azure"
	// RoutingStorage picks the blob fetcher for the configured account, else HTTP
	RoutingStorage StorageType = "routing"
)

// AnalyzerFactory creates document analyzers
type AnalyzerFactory interface {
	CreateAnalyzer(ctx context.Context, provider string) (analysis.DocumentAnalyzer, error)
}

// StorageFactory creates document fetchers
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.DocumentFetcher, error)
}

// storageFactory implements StorageFactory. The blob client is shared by
// every fetcher it hands out.
type storageFactory struct {
	cfg *config.Config

	once    sync.Once
	blob    *storage.AzureBlobFetcher
	blobErr error
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

func (f *storageFactory) blobFetcher() (*storage.AzureBlobFetcher, error) {
	f.once.Do(func() {
		if !f.cfg.BlobStorageConfigured() {
			return
		}
		f.blob, f.blobErr = storage.NewAzureBlobFetcher(f.cfg.StorageAccountName, f.cfg.StorageAccountKey)
	})
	return f.blob, f.blobErr
}

// CreateStorage creates a fetcher of the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.DocumentFetcher, error) {
	switch storageType {
	case HTTPStorage:
		return storage.NewHTTPDocumentFetcher(), nil
	case AzureStorage:
		blob, err := f.blobFetcher()
		if err != nil {
			return nil, err
		}
		if blob == nil {
			return nil, fmt.Errorf("azure storage requires AZURE_STORAGE_ACCOUNT_NAME and AZURE_STORAGE_ACCOUNT_KEY")
		}
		return blob, nil
	case RoutingStorage:
		blob, err := f.blobFetcher()
		if err != nil {
			return nil, err
		}
		return storage.NewRoutingFetcher(blob, storage.NewHTTPDocumentFetcher()), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// analyzerFactory implements AnalyzerFactory
type analyzerFactory struct {
	cfg     *config.Config
	storage StorageFactory
}

// NewAnalyzerFactory creates a new analyzer factory
func NewAnalyzerFactory(cfg *config.Config, storageFactory StorageFactory) AnalyzerFactory {
	return &analyzerFactory{cfg: cfg, storage: storageFactory}
}

// CreateAnalyzer creates an analyzer for the named provider
func (f *analyzerFactory) CreateAnalyzer(ctx context.Context, provider string) (analysis.DocumentAnalyzer, error) {
	switch provider {
	case config.ProviderAzure, "":
		opts := analysis.DocIntelligenceOptions{
			Endpoint:   f.cfg.DocIntelligenceEndpoint,
			Key:        f.cfg.DocIntelligenceKey,
			ModelID:    f.cfg.DocIntelligenceModel,
			APIVersion: f.cfg.DocIntelligenceAPIVersion,
		}
		if f.cfg.BlobStorageConfigured() {
			fetcher, err := f.storage.CreateStorage(AzureStorage)
			if err != nil {
				return nil, err
			}
			if blobs, ok := fetcher.(analysis.BlobSource); ok {
				opts.Blobs = blobs
			}
		}
		return analysis.NewDocIntelligenceAnalyzer(opts)
	case config.ProviderGoogle:
		fetcher, err := f.storage.CreateStorage(RoutingStorage)
		if err != nil {
			return nil, err
		}
		return analysis.NewDocumentAIAnalyzer(ctx, analysis.DocumentAIOptions{
			ProjectID:       f.cfg.GoogleCloudProject,
			Location:        f.cfg.GoogleCloudLocation,
			ProcessorID:     f.cfg.DocumentAIProcessorID,
			CredentialsFile: f.cfg.GoogleCredentialsFile,
			Timeout:         f.cfg.AnalysisTimeout,
		}, fetcher)
	default:
		return nil, fmt.Errorf("unsupported analysis provider: %s", provider)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	AnalyzerFactory AnalyzerFactory
	StorageFactory  StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	storageFactory := NewStorageFactory(cfg)
	return &ComponentFactory{
		AnalyzerFactory: NewAnalyzerFactory(cfg, storageFactory),
		StorageFactory:  storageFactory,
	}
}
