package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Quantity  int
	Version   int // optimistic locking
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StockDecrement is one aggregated stock deduction for a product.
type StockDecrement struct {
	ProductID string
	Quantity  int
}
