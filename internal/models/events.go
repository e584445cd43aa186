package models

import "time"

// Event types
const (
	EventTypeOrderCreated       = "ORDER_CREATED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeOrderCancelled     = "ORDER_CANCELLED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when a customer places an order
type OrderCreatedEvent struct {
	BaseEvent
	OrderID     int64           `json:"order_id"`
	CustomerID  int64           `json:"customer_id"`
	ShopID      int64           `json:"shop_id"`
	TotalAmount float64         `json:"total_amount"`
	Items       []OrderItemData `json:"items"`
}

// OrderStatusChangedEvent published when a shop owner moves an order
// through the lifecycle
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID     int64   `json:"order_id"`
	ShopID      int64   `json:"shop_id"`
	OldStatus   string  `json:"old_status"`
	NewStatus   string  `json:"new_status"`
	TotalAmount float64 `json:"total_amount"`
}

// OrderCancelledEvent published when a customer cancels an order
type OrderCancelledEvent struct {
	BaseEvent
	OrderID int64  `json:"order_id"`
	ShopID  int64  `json:"shop_id"`
	Reason  string `json:"reason"`
}

// OrderItemData represents line data carried in events
type OrderItemData struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}
