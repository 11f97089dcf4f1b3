package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID         string
	CustomerID string
	Lines      []OrderLine
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderLine records the price at purchase time; later price changes on the
// product never alter it.
type OrderLine struct {
	ID        string
	OrderID   string
	ProductID string
	Price     decimal.Decimal
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
