package port

import (
	"context"

	"github.com/lribeiro/storefront/internal/core/domain"
)

type OrderRepository interface {
	// CreateOrderWithLines persists a new order and its line items as one
	// durable unit, assigning identity and timestamps
	CreateOrderWithLines(ctx context.Context, customerID string, lines []domain.OrderLine) (*domain.Order, error)

	// DeleteOrder voids a previously created order (compensating action when
	// the stock decrement fails after creation)
	DeleteOrder(ctx context.Context, orderID string) error

	// FindOrderByID loads an order with its lines, returns nil when not found
	FindOrderByID(ctx context.Context, orderID string) (*domain.Order, error)
}
