package port

import (
	"context"
	"fmt"

	"github.com/lribeiro/storefront/internal/core/domain"
)

// StockConflictError reports the first product whose conditional decrement
// failed; the whole update set is rolled back when it is returned.
type StockConflictError struct {
	ProductID string
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("stock conflict on product %s", e.ProductID)
}

type ProductRepository interface {
	// FindAllByIDs retrieves the products matching the given IDs; unknown IDs
	// are silently omitted from the result
	FindAllByIDs(ctx context.Context, ids []string) ([]domain.Product, error)

	// DecrementStock atomically applies all decrements, or none of them. A
	// decrement only succeeds if the resulting quantity stays >= 0; otherwise
	// the call fails with *StockConflictError
	DecrementStock(ctx context.Context, decrements []domain.StockDecrement) error
}
