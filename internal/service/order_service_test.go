package service

import (
	"testing"
	"time"

	"localmart/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotals(t *testing.T) {
	items := []OrderItemRequest{
		{Name: "Tomato", Price: 40, Quantity: 2},
		{Name: "Potato", Price: 60, Quantity: 1},
	}

	lines, total := computeTotals(items, 30)

	require.Len(t, lines, 2)
	assert.InDelta(t, 80, lines[0].Subtotal, 1e-9)
	assert.InDelta(t, 60, lines[1].Subtotal, 1e-9)
	assert.InDelta(t, 2*40+60+30, total, 1e-9)
}

func TestComputeTotalsIgnoresCallerSubtotals(t *testing.T) {
	// Subtotals are always recomputed from price and quantity; there is
	// no request field a caller could use to inflate them.
	lines, total := computeTotals([]OrderItemRequest{{Name: "Milk", Price: 28.5, Quantity: 3}}, 0)
	assert.InDelta(t, 85.5, lines[0].Subtotal, 1e-9)
	assert.InDelta(t, 85.5, total, 1e-9)
}

func validRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		ShopID: 1,
		Items: []OrderItemRequest{
			{Name: "Tomato", Price: 40, Quantity: 1},
		},
		DeliveryAddress: models.DeliveryAddress{
			Street:      "12 MG Road",
			Area:        "Shivajinagar",
			City:        "Bangalore",
			Pincode:     "560001",
			Coordinates: []float64{77.5946, 12.9716},
		},
		PaymentMethod:         models.PaymentMethodCOD,
		EstimatedDeliveryTime: "30 mins",
	}
}

func TestValidateCreateOrderAcceptsValidRequest(t *testing.T) {
	assert.Empty(t, validateCreateOrder(validRequest()))
}

func TestValidateCreateOrderRejectsBadQuantity(t *testing.T) {
	req := validRequest()
	req.Items = []OrderItemRequest{
		{Name: "Tomato", Price: 40, Quantity: 0},
		{Name: "Potato", Price: 60, Quantity: -2},
	}

	fields := validateCreateOrder(req)
	require.Len(t, fields, 2)
	assert.Equal(t, "items[0].quantity", fields[0].Field)
	assert.Equal(t, "items[1].quantity", fields[1].Field)
}

func TestValidateCreateOrderCollectsAllViolations(t *testing.T) {
	req := &CreateOrderRequest{
		Items:         []OrderItemRequest{{Price: -5, Quantity: 0}},
		PaymentMethod: "barter",
		DeliveryFee:   -1,
	}

	fields := validateCreateOrder(req)

	// Every violated field is reported, not just the first.
	got := make(map[string]bool, len(fields))
	for _, f := range fields {
		got[f.Field] = true
	}
	for _, want := range []string{
		"shop_id",
		"items[0].name", "items[0].price", "items[0].quantity",
		"delivery_address.street", "delivery_address.area",
		"delivery_address.city", "delivery_address.pincode",
		"delivery_address.coordinates",
		"payment_method", "delivery_fee",
	} {
		assert.True(t, got[want], "missing field error for %s", want)
	}
}

func TestValidateCreateOrderRejectsEmptyItems(t *testing.T) {
	req := validRequest()
	req.Items = nil

	fields := validateCreateOrder(req)
	require.NotEmpty(t, fields)
	assert.Equal(t, "items", fields[0].Field)
}

func TestStatusStamps(t *testing.T) {
	now := time.Now()

	confirmedAt, deliveredAt := statusStamps(models.OrderStatusConfirmed, now)
	require.NotNil(t, confirmedAt)
	assert.Nil(t, deliveredAt)

	confirmedAt, deliveredAt = statusStamps(models.OrderStatusDelivered, now)
	assert.Nil(t, confirmedAt)
	require.NotNil(t, deliveredAt)

	confirmedAt, deliveredAt = statusStamps(models.OrderStatusPreparing, now)
	assert.Nil(t, confirmedAt)
	assert.Nil(t, deliveredAt)
}

func TestLifecycleStampsOrdering(t *testing.T) {
	// pending -> confirmed -> delivered stamps both timestamps, with
	// deliveredAt after confirmedAt.
	t0 := time.Now()
	confirmedAt, _ := statusStamps(models.OrderStatusConfirmed, t0)
	_, deliveredAt := statusStamps(models.OrderStatusDelivered, t0.Add(20*time.Minute))

	require.NotNil(t, confirmedAt)
	require.NotNil(t, deliveredAt)
	assert.True(t, deliveredAt.After(*confirmedAt))
}

func TestStrictTransitionAllowed(t *testing.T) {
	allowed := [][2]string{
		{models.OrderStatusPending, models.OrderStatusConfirmed},
		{models.OrderStatusPending, models.OrderStatusCancelled},
		{models.OrderStatusConfirmed, models.OrderStatusPreparing},
		{models.OrderStatusConfirmed, models.OrderStatusCancelled},
		{models.OrderStatusPreparing, models.OrderStatusOutForDelivery},
		{models.OrderStatusPreparing, models.OrderStatusCancelled},
		{models.OrderStatusOutForDelivery, models.OrderStatusDelivered},
	}
	for _, pair := range allowed {
		assert.True(t, strictTransitionAllowed(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}

	denied := [][2]string{
		{models.OrderStatusPending, models.OrderStatusDelivered},
		{models.OrderStatusOutForDelivery, models.OrderStatusCancelled},
		{models.OrderStatusDelivered, models.OrderStatusPending},
		{models.OrderStatusCancelled, models.OrderStatusConfirmed},
	}
	for _, pair := range denied {
		assert.False(t, strictTransitionAllowed(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}
}

func TestCancellableGuard(t *testing.T) {
	for _, status := range []string{
		models.OrderStatusPending,
		models.OrderStatusConfirmed,
		models.OrderStatusPreparing,
	} {
		order := models.Order{Status: status}
		assert.True(t, order.Cancellable(), status)
	}

	for _, status := range []string{
		models.OrderStatusOutForDelivery,
		models.OrderStatusDelivered,
	} {
		order := models.Order{Status: status}
		assert.False(t, order.Cancellable(), status)
	}
}
