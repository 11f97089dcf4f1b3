package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/lribeiro/storefront/internal/core/domain"
	"github.com/lribeiro/storefront/internal/port"
)

var (
	ErrDuplicateRequest  = errors.New("duplicate request")
	ErrInvalidRequest    = errors.New("invalid order request")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrInvalidProducts   = errors.New("one or more products do not exist")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOrderPersistence  = errors.New("order persistence failed")
	ErrStockUpdate       = errors.New("stock update failed after order creation")
)

// InsufficientStockError names the products that cannot cover the requested
// quantities. It matches ErrInsufficientStock under errors.Is.
type InsufficientStockError struct {
	ProductIDs []string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for products: %s", strings.Join(e.ProductIDs, ", "))
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

type RequestedLine struct {
	ProductID string
	Quantity  int
}

type PlaceOrderRequest struct {
	// RequestID deduplicates retried requests; empty disables the check
	RequestID  string
	CustomerID string
	Lines      []RequestedLine
}

type OrderService struct {
	customers port.CustomerRepository
	products  port.ProductRepository
	orders    port.OrderRepository
	cache     port.CacheRepository
	logger    *zap.Logger
}

func NewOrderService(
	customers port.CustomerRepository,
	products port.ProductRepository,
	orders port.OrderRepository,
	cache port.CacheRepository,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		customers: customers,
		products:  products,
		orders:    orders,
		cache:     cache,
		logger:    logger,
	}
}

// PlaceOrder validates the customer, the requested products and their stock,
// persists the order with price-at-purchase line snapshots, then decrements
// stock. Validation runs entirely before any mutation; if the decrement fails
// after the order was created, the order is voided before the error surfaces.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (_ *domain.Order, err error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if req.RequestID != "" && s.cache != nil {
		key := fmt.Sprintf("order:%s:%s", req.CustomerID, req.RequestID)
		ok, err := s.cache.SetIdempotency(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return nil, ErrDuplicateRequest
		}
		defer func() {
			if err == nil {
				return
			}
			if clearErr := s.cache.ClearIdempotency(ctx, key); clearErr != nil {
				s.logger.Warn("failed to release idempotency key",
					zap.String("key", key), zap.Error(clearErr))
			}
		}()
	}

	customer, err := s.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("customer lookup failed: %w", err)
	}
	if customer == nil {
		return nil, fmt.Errorf("%w: %s", ErrCustomerNotFound, req.CustomerID)
	}

	ids := distinctProductIDs(req.Lines)

	products, err := s.products.FindAllByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("product lookup failed: %w", err)
	}

	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	if len(byID) < len(ids) {
		missing := make([]string, 0, len(ids)-len(byID))
		for _, id := range ids {
			if _, ok := byID[id]; !ok {
				missing = append(missing, id)
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidProducts, strings.Join(missing, ", "))
	}

	// Quantities for the same product are summed before the check so that
	// duplicate lines cannot jointly overdraw a stock figure each of them
	// individually fits into.
	requested := aggregateByProduct(req.Lines)

	var short []string
	for _, id := range ids {
		if byID[id].Quantity-requested[id] < 0 {
			short = append(short, id)
		}
	}
	if len(short) > 0 {
		return nil, &InsufficientStockError{ProductIDs: short}
	}

	lines := make([]domain.OrderLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, domain.OrderLine{
			ProductID: l.ProductID,
			Price:     byID[l.ProductID].Price,
			Quantity:  l.Quantity,
		})
	}

	order, err := s.orders.CreateOrderWithLines(ctx, customer.ID, lines)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderPersistence, err)
	}

	decrements := make([]domain.StockDecrement, 0, len(requested))
	for id, qty := range requested {
		decrements = append(decrements, domain.StockDecrement{ProductID: id, Quantity: qty})
	}
	// stable lock order across concurrent multi-product orders
	sort.Slice(decrements, func(i, j int) bool {
		return decrements[i].ProductID < decrements[j].ProductID
	})

	if err := s.products.DecrementStock(ctx, decrements); err != nil {
		s.voidOrder(ctx, order.ID)

		var conflict *port.StockConflictError
		if errors.As(err, &conflict) {
			return nil, &InsufficientStockError{ProductIDs: []string{conflict.ProductID}}
		}
		return nil, fmt.Errorf("%w: %v", ErrStockUpdate, err)
	}

	return order, nil
}

// voidOrder is the compensating action for a decrement failure after the
// order was already persisted.
func (s *OrderService) voidOrder(ctx context.Context, orderID string) {
	if err := s.orders.DeleteOrder(ctx, orderID); err != nil {
		s.logger.Error("CRITICAL: failed to void order after stock update failure",
			zap.String("order_id", orderID), zap.Error(err))
	}
}

func validateRequest(req PlaceOrderRequest) error {
	if req.CustomerID == "" {
		return fmt.Errorf("%w: missing customer id", ErrInvalidRequest)
	}
	if len(req.Lines) == 0 {
		return fmt.Errorf("%w: order has no lines", ErrInvalidRequest)
	}
	for _, l := range req.Lines {
		if l.ProductID == "" {
			return fmt.Errorf("%w: missing product id", ErrInvalidRequest)
		}
		if l.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive", ErrInvalidRequest)
		}
	}
	return nil
}

func aggregateByProduct(lines []RequestedLine) map[string]int {
	totals := make(map[string]int, len(lines))
	for _, l := range lines {
		totals[l.ProductID] += l.Quantity
	}
	return totals
}

func distinctProductIDs(lines []RequestedLine) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	return ids
}
