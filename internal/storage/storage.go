// Package storage defines persistence for process models and the built
// LSA collection.
package storage

import (
	"context"

	"github.com/CarolineDieterich/LS3/internal/models"
)

// Storage defines process model persistence operations.
type Storage interface {
	CreateModel(ctx context.Context, model *models.ProcessModel) error
	GetModel(ctx context.Context, id string) (*models.ProcessModel, error)
	UpdateModel(ctx context.Context, model *models.ProcessModel) error
	DeleteModel(ctx context.Context, id string) error
	// ListModels returns models ordered by creation time (oldest first) so
	// that collection builds see a stable document ordering.
	ListModels(ctx context.Context, offset, limit int) ([]*models.ProcessModel, error)
	CountModels(ctx context.Context) (int64, error)

	Close() error
}
