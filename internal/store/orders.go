package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"localmart/internal/models"
)

// CreateOrderWithItems inserts an order and all its snapshot lines in
// one transaction. A failed line insert rolls the order back, so no
// order row ever exists whose lines do not sum to its total.
func (s *Store) CreateOrderWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	orderQuery := `
		INSERT INTO orders (customer_id, shop_id, total_amount, delivery_fee,
			street, area, city, pincode, delivery_latitude, delivery_longitude,
			status, payment_status, payment_method,
			estimated_delivery_time, special_instructions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, order_date`

	err = tx.GetContext(ctx, order, orderQuery,
		order.CustomerID, order.ShopID, order.TotalAmount, order.DeliveryFee,
		order.Street, order.Area, order.City, order.Pincode,
		order.DeliveryLatitude, order.DeliveryLongitude,
		order.Status, order.PaymentStatus, order.PaymentMethod,
		order.EstimatedDeliveryTime, order.SpecialInstructions)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_name, unit_price, quantity, subtotal, image, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	for i := range items {
		items[i].OrderID = order.ID
		err = tx.GetContext(ctx, &items[i].ID, itemQuery,
			order.ID, items[i].ProductName, items[i].UnitPrice, items[i].Quantity,
			items[i].Subtotal, items[i].Image, items[i].Category)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order by ID, nil if absent
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderItemsByOrderID retrieves all snapshot lines for an order
func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}

// GetOrdersByCustomer retrieves a customer's orders, newest first
func (s *Store) GetOrdersByCustomer(ctx context.Context, customerID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE customer_id = $1 ORDER BY order_date DESC", customerID)
	return orders, err
}

// GetOrdersByShop retrieves a shop's orders, newest first
func (s *Store) GetOrdersByShop(ctx context.Context, shopID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE shop_id = $1 ORDER BY order_date DESC", shopID)
	return orders, err
}

// UpdateOrderStatus sets the status and stamps the lifecycle timestamps
// when they are provided. Existing stamps are never cleared.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status string, confirmedAt, deliveredAt *time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1,
			confirmed_at = COALESCE($2, confirmed_at),
			delivered_at = COALESCE($3, delivered_at)
		WHERE id = $4`,
		status, confirmedAt, deliveredAt, orderID)
	return err
}

// CancelOrder marks an order cancelled and its payment refunded
func (s *Store) CancelOrder(ctx context.Context, orderID int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, payment_status = $2 WHERE id = $3",
		models.OrderStatusCancelled, models.PaymentStatusRefunded, orderID)
	return err
}
