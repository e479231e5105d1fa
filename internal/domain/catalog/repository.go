package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines product persistence
type Repository interface {
	// FindByID finds a product by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, p *Product) error
}
