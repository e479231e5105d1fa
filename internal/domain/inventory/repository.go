package inventory

import (
	"context"

	"github.com/google/uuid"
)

// BatchRepository defines inventory batch persistence
type BatchRepository interface {
	// FindByID finds a batch by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Batch, error)

	// FindAvailable returns batches of a product owned by a company
	// that still have remaining quantity, oldest first
	FindAvailable(ctx context.Context, companyID, productID uuid.UUID) ([]Batch, error)

	// Save creates or updates a batch
	Save(ctx context.Context, batch *Batch) error
}
