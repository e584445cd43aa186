package service

import (
	"context"
	"fmt"
	"time"

	"localmart/internal/apperr"
	"localmart/internal/auth"
	"localmart/internal/broker"
	"localmart/internal/models"
	"localmart/internal/redisclient"
	"localmart/internal/store"
	"localmart/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService handles order business logic
type OrderService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	strict         bool
	defaultFee     float64
	logger         *zap.Logger
}

// NewOrderService creates a new order service. With strict enabled,
// status updates must follow the lifecycle order instead of accepting
// any known status.
func NewOrderService(
	store *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
	strict bool,
	defaultFee float64,
) *OrderService {
	return &OrderService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		strict:         strict,
		defaultFee:     defaultFee,
		logger:         util.GetLogger(),
	}
}

// CreateOrderRequest represents a checkout. Item prices are order-time
// snapshots; subtotals are recomputed server-side and never trusted from
// the caller.
type CreateOrderRequest struct {
	ShopID                int64                  `json:"shop_id"`
	Items                 []OrderItemRequest     `json:"items"`
	DeliveryAddress       models.DeliveryAddress `json:"delivery_address"`
	PaymentMethod         string                 `json:"payment_method"`
	DeliveryFee           float64                `json:"delivery_fee"`
	EstimatedDeliveryTime string                 `json:"estimated_delivery_time"`
	SpecialInstructions   string                 `json:"special_instructions"`
}

// OrderItemRequest represents one line of a checkout
type OrderItemRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image"`
	Category string  `json:"category"`
}

// validateCreateOrder collects every violated field instead of stopping
// at the first failure.
func validateCreateOrder(req *CreateOrderRequest) []apperr.FieldError {
	var fields []apperr.FieldError

	if req.ShopID == 0 {
		fields = append(fields, apperr.FieldError{Field: "shop_id", Message: "is required"})
	}
	if len(req.Items) == 0 {
		fields = append(fields, apperr.FieldError{Field: "items", Message: "at least one item is required"})
	}
	for i, item := range req.Items {
		if item.Name == "" {
			fields = append(fields, apperr.FieldError{Field: fmt.Sprintf("items[%d].name", i), Message: "is required"})
		}
		if item.Price <= 0 {
			fields = append(fields, apperr.FieldError{Field: fmt.Sprintf("items[%d].price", i), Message: "must be positive"})
		}
		if item.Quantity < 1 {
			fields = append(fields, apperr.FieldError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "must be at least 1"})
		}
	}
	if req.DeliveryAddress.Street == "" {
		fields = append(fields, apperr.FieldError{Field: "delivery_address.street", Message: "is required"})
	}
	if req.DeliveryAddress.Area == "" {
		fields = append(fields, apperr.FieldError{Field: "delivery_address.area", Message: "is required"})
	}
	if req.DeliveryAddress.City == "" {
		fields = append(fields, apperr.FieldError{Field: "delivery_address.city", Message: "is required"})
	}
	if req.DeliveryAddress.Pincode == "" {
		fields = append(fields, apperr.FieldError{Field: "delivery_address.pincode", Message: "is required"})
	}
	if len(req.DeliveryAddress.Coordinates) != 2 {
		fields = append(fields, apperr.FieldError{Field: "delivery_address.coordinates", Message: "must be a [lng, lat] pair"})
	}
	if !models.ValidPaymentMethod(req.PaymentMethod) {
		fields = append(fields, apperr.FieldError{Field: "payment_method", Message: "must be one of: cod, online, upi, wallet"})
	}
	if req.DeliveryFee < 0 {
		fields = append(fields, apperr.FieldError{Field: "delivery_fee", Message: "must not be negative"})
	}

	return fields
}

// computeTotals recomputes each line subtotal and the order total.
func computeTotals(items []OrderItemRequest, deliveryFee float64) ([]models.OrderItem, float64) {
	lines := make([]models.OrderItem, 0, len(items))
	total := deliveryFee
	for _, item := range items {
		subtotal := item.Price * float64(item.Quantity)
		lines = append(lines, models.OrderItem{
			ProductName: item.Name,
			UnitPrice:   item.Price,
			Quantity:    item.Quantity,
			Subtotal:    subtotal,
			Image:       item.Image,
			Category:    item.Category,
		})
		total += subtotal
	}
	return lines, total
}

// CreateOrder persists a checkout as a pending order
func (s *OrderService) CreateOrder(ctx context.Context, actor *auth.Claims, req *CreateOrderRequest) (*models.Order, []models.OrderItem, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if actor.Role != models.RoleCustomer {
		util.OrdersFailedTotal.WithLabelValues("forbidden").Inc()
		return nil, nil, apperr.Forbidden("only customers can create orders")
	}

	if fields := validateCreateOrder(req); len(fields) > 0 {
		util.OrdersFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, nil, apperr.InvalidArgument("validation failed", fields...)
	}

	shop, err := s.store.GetShopByID(ctx, req.ShopID)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, nil, fmt.Errorf("failed to load shop: %w", err)
	}
	if shop == nil {
		util.OrdersFailedTotal.WithLabelValues("shop_not_found").Inc()
		return nil, nil, apperr.NotFound("shop not found")
	}

	deliveryFee := req.DeliveryFee
	if deliveryFee == 0 {
		deliveryFee = s.defaultFee
	}
	lines, totalAmount := computeTotals(req.Items, deliveryFee)

	order := &models.Order{
		CustomerID:            actor.UserID,
		ShopID:                req.ShopID,
		TotalAmount:           totalAmount,
		DeliveryFee:           deliveryFee,
		Street:                req.DeliveryAddress.Street,
		Area:                  req.DeliveryAddress.Area,
		City:                  req.DeliveryAddress.City,
		Pincode:               req.DeliveryAddress.Pincode,
		DeliveryLongitude:     req.DeliveryAddress.Coordinates[0],
		DeliveryLatitude:      req.DeliveryAddress.Coordinates[1],
		Status:                models.OrderStatusPending,
		PaymentStatus:         models.PaymentStatusPending,
		PaymentMethod:         req.PaymentMethod,
		EstimatedDeliveryTime: req.EstimatedDeliveryTime,
		SpecialInstructions:   req.SpecialInstructions,
	}

	if err := s.store.CreateOrderWithItems(ctx, order, lines); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("shop_id", order.ShopID),
		zap.Float64("total_amount", order.TotalAmount))

	// Checkout consumes the customer's cart.
	if s.redis != nil {
		if err := s.redis.DeleteCart(ctx, actor.UserID); err != nil {
			s.logger.Warn("Failed to clear cart after checkout", zap.Error(err))
		}
	}

	eventItems := make([]models.OrderItemData, len(lines))
	for i, line := range lines {
		eventItems[i] = models.OrderItemData{
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		}
	}

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		ShopID:      order.ShopID,
		TotalAmount: order.TotalAmount,
		Items:       eventItems,
	}

	if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return order, lines, nil
}

// MyOrders retrieves the calling customer's orders, newest first
func (s *OrderService) MyOrders(ctx context.Context, actor *auth.Claims) ([]models.Order, error) {
	if actor.Role != models.RoleCustomer {
		return nil, apperr.Forbidden("only customers can view their orders")
	}
	return s.store.GetOrdersByCustomer(ctx, actor.UserID)
}

// ShopOrders retrieves a shop's orders for its owner, newest first
func (s *OrderService) ShopOrders(ctx context.Context, actor *auth.Claims, shopID int64) ([]models.Order, error) {
	if actor.Role != models.RoleShopOwner {
		return nil, apperr.Forbidden("only shop owners can view shop orders")
	}

	shop, err := s.store.GetShopByID(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shop: %w", err)
	}
	if shop == nil {
		return nil, apperr.NotFound("shop not found")
	}
	if shop.OwnerID != actor.UserID {
		return nil, apperr.Forbidden("you can only view your own shop orders")
	}

	return s.store.GetOrdersByShop(ctx, shopID)
}

// GetOrder retrieves an order, visible only to its customer or the
// owning shop's owner
func (s *OrderService) GetOrder(ctx context.Context, actor *auth.Claims, orderID int64) (*models.Order, []models.OrderItem, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, nil, apperr.NotFound("order not found")
	}

	if order.CustomerID != actor.UserID {
		shop, err := s.store.GetShopByID(ctx, order.ShopID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load shop: %w", err)
		}
		if shop == nil || shop.OwnerID != actor.UserID {
			return nil, nil, apperr.Forbidden("you can only view your own orders")
		}
	}

	items, err := s.store.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load order items: %w", err)
	}

	return order, items, nil
}

// strictTransitionAllowed enforces forward-only lifecycle moves plus the
// cancellation branch.
func strictTransitionAllowed(from, to string) bool {
	switch from {
	case models.OrderStatusPending:
		return to == models.OrderStatusConfirmed || to == models.OrderStatusCancelled
	case models.OrderStatusConfirmed:
		return to == models.OrderStatusPreparing || to == models.OrderStatusCancelled
	case models.OrderStatusPreparing:
		return to == models.OrderStatusOutForDelivery || to == models.OrderStatusCancelled
	case models.OrderStatusOutForDelivery:
		return to == models.OrderStatusDelivered
	default:
		return false
	}
}

// statusStamps returns the lifecycle timestamps to set when entering a
// status. confirmedAt on confirmed, deliveredAt on delivered.
func statusStamps(status string, now time.Time) (confirmedAt, deliveredAt *time.Time) {
	switch status {
	case models.OrderStatusConfirmed:
		confirmedAt = &now
	case models.OrderStatusDelivered:
		deliveredAt = &now
	}
	return confirmedAt, deliveredAt
}

// UpdateStatus moves an order through the lifecycle on behalf of the
// owning shop's owner
func (s *OrderService) UpdateStatus(ctx context.Context, actor *auth.Claims, orderID int64, newStatus string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	if actor.Role != models.RoleShopOwner {
		return nil, apperr.Forbidden("only shop owners can update order status")
	}
	if !models.ValidOrderStatus(newStatus) {
		return nil, apperr.InvalidArgument("validation failed",
			apperr.FieldError{Field: "status", Message: "must be a valid order status"})
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, apperr.NotFound("order not found")
	}

	shop, err := s.store.GetShopByID(ctx, order.ShopID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shop: %w", err)
	}
	if shop == nil || shop.OwnerID != actor.UserID {
		return nil, apperr.Forbidden("you can only update orders for your own shop")
	}

	if s.strict && !strictTransitionAllowed(order.Status, newStatus) {
		return nil, apperr.InvalidState(
			fmt.Sprintf("cannot move order from %s to %s", order.Status, newStatus))
	}

	now := time.Now()
	confirmedAt, deliveredAt := statusStamps(newStatus, now)

	if err := s.store.UpdateOrderStatus(ctx, orderID, newStatus, confirmedAt, deliveredAt); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	util.OrderStatusUpdatesTotal.WithLabelValues(newStatus).Inc()
	s.logger.Info("Order status updated",
		zap.Int64("order_id", orderID),
		zap.String("old_status", order.Status),
		zap.String("new_status", newStatus))

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: now,
		},
		OrderID:     orderID,
		ShopID:      order.ShopID,
		OldStatus:   order.Status,
		NewStatus:   newStatus,
		TotalAmount: order.TotalAmount,
	}
	if err := s.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	updated, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}
	return updated, nil
}

// CancelOrder cancels an order on behalf of its customer. Rejected once
// the order is out for delivery or delivered. Payment status is forced
// to refunded regardless of its prior value, matching the historical
// behavior this service replaces.
func (s *OrderService) CancelOrder(ctx context.Context, actor *auth.Claims, orderID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CancelOrder")
	defer span.End()

	if actor.Role != models.RoleCustomer {
		return nil, apperr.Forbidden("only customers can cancel orders")
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, apperr.NotFound("order not found")
	}
	if order.CustomerID != actor.UserID {
		return nil, apperr.Forbidden("you can only cancel your own orders")
	}
	if !order.Cancellable() {
		return nil, apperr.InvalidState("order cannot be cancelled at this stage")
	}

	if err := s.store.CancelOrder(ctx, orderID); err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	util.OrdersCancelledTotal.Inc()
	s.logger.Info("Order cancelled", zap.Int64("order_id", orderID))

	event := &models.OrderCancelledEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCancelled,
			Timestamp: time.Now(),
		},
		OrderID: orderID,
		ShopID:  order.ShopID,
		Reason:  "customer_cancelled",
	}
	if err := s.eventPublisher.PublishOrderCancelled(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCancelled event", zap.Error(err))
	}

	updated, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}
	return updated, nil
}
