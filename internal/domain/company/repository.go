package company

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines company persistence
type Repository interface {
	// FindByID finds a company by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)

	// Save creates or updates a company
	Save(ctx context.Context, c *Company) error
}

// RelationshipRepository resolves business relationships between companies.
// The returned ordering is deterministic; fan-out fulfillment depends on it.
type RelationshipRepository interface {
	// FindSuppliers returns the eligible supplier companies for a buyer
	// and product, ordered by relationship priority then company name.
	FindSuppliers(ctx context.Context, buyerID, productID uuid.UUID) ([]Company, error)
}
