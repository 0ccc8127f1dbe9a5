package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"github.com/google/uuid"
	"github.com/jimmyshah83/doc-intellij-poc/internal/logger"
	"github.com/jimmyshah83/doc-intellij-poc/pkg/models"
	"github.com/sirupsen/logrus"
)

// CosmosOptions locates the container records are written to
type CosmosOptions struct {
	Endpoint         string
	Key              string
	DatabaseName     string
	ContainerName    string
	PartitionKeyPath string
}

type itemCreator interface {
	CreateItem(ctx context.Context, partitionKey azcosmos.PartitionKey, item []byte, o *azcosmos.ItemOptions) (azcosmos.ItemResponse, error)
}

// CosmosFieldRepository stores each field as its own item in a Cosmos DB container
type CosmosFieldRepository struct {
	container        itemCreator
	partitionKeyPath string
	newID            func() string
}

// NewCosmosFieldRepository creates a repository backed by an account key client
func NewCosmosFieldRepository(opts CosmosOptions) (*CosmosFieldRepository, error) {
	cred, err := azcosmos.NewKeyCredential(opts.Key)
	if err != nil {
		return nil, fmt.Errorf("invalid cosmos db key: %w", err)
	}

	client, err := azcosmos.NewClientWithKey(opts.Endpoint, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cosmos db client: %w", err)
	}

	container, err := client.NewContainer(opts.DatabaseName, opts.ContainerName)
	if err != nil {
		return nil, fmt.Errorf("failed to open container %s/%s: %w", opts.DatabaseName, opts.ContainerName, err)
	}

	return newCosmosFieldRepository(container, opts.PartitionKeyPath)
}

func newCosmosFieldRepository(container itemCreator, partitionKeyPath string) (*CosmosFieldRepository, error) {
	if partitionKeyPath == "" {
		partitionKeyPath = "/id"
	}
	if partitionKeyPath != "/id" && partitionKeyPath != "/key" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPartitionKey, partitionKeyPath)
	}

	return &CosmosFieldRepository{
		container:        container,
		partitionKeyPath: partitionKeyPath,
		newID:            func() string { return uuid.New().String() },
	}, nil
}

// Store assigns a fresh UUID and creates the record
func (r *CosmosFieldRepository) Store(ctx context.Context, field models.Field) (string, error) {
	record := models.NewRecord(r.newID(), field)

	item, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("%w: encode record: %w", ErrPersistenceFailed, err)
	}

	resp, err := r.container.CreateItem(ctx, r.partitionKey(record), item, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) {
			return "", fmt.Errorf("%w: cosmos db returned %d %s", ErrPersistenceFailed, respErr.StatusCode, respErr.ErrorCode)
		}
		return "", fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	logger.WithFields(logrus.Fields{
		"component":      "cosmos_repository",
		"id":             record.ID,
		"key":            record.Key,
		"request_charge": resp.RequestCharge,
	}).Debug("Record created")

	return record.ID, nil
}

func (r *CosmosFieldRepository) partitionKey(record models.Record) azcosmos.PartitionKey {
	if r.partitionKeyPath == "/key" {
		return azcosmos.NewPartitionKeyString(record.Key)
	}
	return azcosmos.NewPartitionKeyString(record.ID)
}
