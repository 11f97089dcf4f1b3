package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	validator "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lribeiro/storefront/internal/core/domain"
	"github.com/lribeiro/storefront/internal/core/service"
)

// OrderPlacer is the slice of the order service the HTTP layer needs.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req service.PlaceOrderRequest) (*domain.Order, error)
}

type HTTPHandler struct {
	orders   OrderPlacer
	validate *validator.Validate
	logger   *zap.Logger
}

type OrderLineHTTPRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type PlaceOrderHTTPRequest struct {
	RequestID  string                 `json:"request_id"`
	CustomerID string                 `json:"customer_id" validate:"required"`
	Products   []OrderLineHTTPRequest `json:"products" validate:"required,min=1,dive"`
}

type OrderLineHTTPResponse struct {
	ProductID string `json:"product_id"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

type PlaceOrderHTTPResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	OrderID string                  `json:"order_id,omitempty"`
	Lines   []OrderLineHTTPResponse `json:"lines,omitempty"`
}

func NewHTTPHandler(orders OrderPlacer, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{
		orders:   orders,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *HTTPHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PlaceOrderHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, PlaceOrderHTTPResponse{
			Success: false,
			Message: "invalid request body",
		})
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, PlaceOrderHTTPResponse{
			Success: false,
			Message: "validation failed: " + err.Error(),
		})
		return
	}

	lines := make([]service.RequestedLine, 0, len(req.Products))
	for _, p := range req.Products {
		lines = append(lines, service.RequestedLine{
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
		})
	}

	order, err := h.orders.PlaceOrder(r.Context(), service.PlaceOrderRequest{
		RequestID:  req.RequestID,
		CustomerID: req.CustomerID,
		Lines:      lines,
	})
	if err != nil {
		status, message := mapError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("order placement failed",
				zap.String("customer_id", req.CustomerID), zap.Error(err))
		}

		writeJSON(w, status, PlaceOrderHTTPResponse{
			Success: false,
			Message: message,
		})
		return
	}

	resp := PlaceOrderHTTPResponse{
		Success: true,
		Message: "order placed successfully",
		OrderID: order.ID,
	}
	for _, l := range order.Lines {
		resp.Lines = append(resp.Lines, OrderLineHTTPResponse{
			ProductID: l.ProductID,
			Price:     l.Price.StringFixed(2),
			Quantity:  l.Quantity,
		})
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrDuplicateRequest):
		return http.StatusConflict, "duplicate request"
	case errors.Is(err, service.ErrCustomerNotFound):
		return http.StatusNotFound, "customer not found"
	case errors.Is(err, service.ErrInvalidProducts):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, service.ErrInsufficientStock):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
