package port

import (
	"context"

	"github.com/lribeiro/storefront/internal/core/domain"
)

type CustomerRepository interface {
	// FindByID retrieves a customer by ID, returns nil when the customer does not exist
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
}
