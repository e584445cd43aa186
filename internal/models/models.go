package models

import "time"

// User roles
const (
	RoleCustomer  = "customer"
	RoleShopOwner = "shop_owner"
)

// Shop and product categories
const (
	CategoryGrocery     = "grocery"
	CategoryElectronics = "electronics"
	CategoryClothing    = "clothing"
	CategoryFood        = "food"
	CategoryPharmacy    = "pharmacy"
	CategoryOther       = "other"
)

// Order statuses
const (
	OrderStatusPending        = "pending"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusPreparing      = "preparing"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
)

// Payment statuses
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Payment methods
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodOnline = "online"
	PaymentMethodUPI    = "upi"
	PaymentMethodWallet = "wallet"
)

// ValidCategory reports whether c is a known shop/product category.
func ValidCategory(c string) bool {
	switch c {
	case CategoryGrocery, CategoryElectronics, CategoryClothing, CategoryFood, CategoryPharmacy, CategoryOther:
		return true
	}
	return false
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether m is a known payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodOnline, PaymentMethodUPI, PaymentMethodWallet:
		return true
	}
	return false
}

// User represents a registered account. Role is fixed at signup.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Phone        string    `db:"phone" json:"phone"`
	Role         string    `db:"role" json:"role"`
	Latitude     *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude    *float64  `db:"longitude" json:"longitude,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Shop represents a registered shop. Owner is fixed at registration.
type Shop struct {
	ID             int64     `db:"id" json:"id"`
	OwnerID        int64     `db:"owner_id" json:"owner_id"`
	Name           string    `db:"name" json:"name"`
	Description    string    `db:"description" json:"description"`
	Category       string    `db:"category" json:"category"`
	Street         string    `db:"street" json:"street"`
	Area           string    `db:"area" json:"area"`
	City           string    `db:"city" json:"city"`
	Pincode        string    `db:"pincode" json:"pincode"`
	Latitude       float64   `db:"latitude" json:"latitude"`
	Longitude      float64   `db:"longitude" json:"longitude"`
	ContactPhone   string    `db:"contact_phone" json:"contact_phone"`
	ContactEmail   string    `db:"contact_email" json:"contact_email"`
	OpensAt        string    `db:"opens_at" json:"opens_at"`
	ClosesAt       string    `db:"closes_at" json:"closes_at"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	Rating         float64   `db:"rating" json:"rating"`
	TotalOrders    int64     `db:"total_orders" json:"total_orders"`
	TotalRevenue   float64   `db:"total_revenue" json:"total_revenue"`
	CustomerVisits int64     `db:"customer_visits" json:"customer_visits"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// NearbyShop is a shop annotated with its distance from the query point.
type NearbyShop struct {
	Shop
	DistanceMeters float64 `json:"distance_meters"`
}

// Product represents a shop's product. Deletion is a soft isActive flip.
type Product struct {
	ID          int64     `db:"id" json:"id"`
	ShopID      int64     `db:"shop_id" json:"shop_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price"`
	Category    string    `db:"category" json:"category"`
	Stock       int       `db:"stock" json:"stock"`
	Image       string    `db:"image" json:"image"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ProductFilter holds conjunctive predicates for product listing.
type ProductFilter struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
	Search   string
}

// DeliveryAddress is the destination of an order.
type DeliveryAddress struct {
	Street      string    `json:"street"`
	Area        string    `json:"area"`
	City        string    `json:"city"`
	Pincode     string    `json:"pincode"`
	Coordinates []float64 `json:"coordinates"` // [lng, lat]
}

// OrderItem is a line snapshot frozen at order creation. Later product
// price edits never touch historical orders.
type OrderItem struct {
	ID          int64   `db:"id" json:"id"`
	OrderID     int64   `db:"order_id" json:"order_id"`
	ProductName string  `db:"product_name" json:"product_name"`
	UnitPrice   float64 `db:"unit_price" json:"unit_price"`
	Quantity    int     `db:"quantity" json:"quantity"`
	Subtotal    float64 `db:"subtotal" json:"subtotal"`
	Image       string  `db:"image" json:"image,omitempty"`
	Category    string  `db:"category" json:"category,omitempty"`
}

// Order represents a customer order against one shop.
type Order struct {
	ID                    int64      `db:"id" json:"id"`
	CustomerID            int64      `db:"customer_id" json:"customer_id"`
	ShopID                int64      `db:"shop_id" json:"shop_id"`
	TotalAmount           float64    `db:"total_amount" json:"total_amount"`
	DeliveryFee           float64    `db:"delivery_fee" json:"delivery_fee"`
	Street                string     `db:"street" json:"street"`
	Area                  string     `db:"area" json:"area"`
	City                  string     `db:"city" json:"city"`
	Pincode               string     `db:"pincode" json:"pincode"`
	DeliveryLatitude      float64    `db:"delivery_latitude" json:"delivery_latitude"`
	DeliveryLongitude     float64    `db:"delivery_longitude" json:"delivery_longitude"`
	Status                string     `db:"status" json:"status"`
	PaymentStatus         string     `db:"payment_status" json:"payment_status"`
	PaymentMethod         string     `db:"payment_method" json:"payment_method"`
	EstimatedDeliveryTime string     `db:"estimated_delivery_time" json:"estimated_delivery_time"`
	SpecialInstructions   string     `db:"special_instructions" json:"special_instructions,omitempty"`
	OrderDate             time.Time  `db:"order_date" json:"order_date"`
	ConfirmedAt           *time.Time `db:"confirmed_at" json:"confirmed_at,omitempty"`
	DeliveredAt           *time.Time `db:"delivered_at" json:"delivered_at,omitempty"`
}

// Cancellable reports whether the order may still be cancelled by the
// customer. Once it is out for delivery the window is closed.
func (o *Order) Cancellable() bool {
	return o.Status != OrderStatusOutForDelivery && o.Status != OrderStatusDelivered
}
