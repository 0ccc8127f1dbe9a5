package repository

import (
	"context"

	"github.com/jimmyshah83/doc-intellij-poc/pkg/models"
)

// FieldRepository defines the persistence operations for extracted fields
type FieldRepository interface {
	// Store writes one field as a new record and returns its generated id
	Store(ctx context.Context, field models.Field) (string, error)
}
