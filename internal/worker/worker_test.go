package worker

import (
	"context"
	"testing"

	"localmart/internal/models"
	"localmart/internal/redisclient"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatsStore struct {
	orderStats map[int64]int
	revenue    map[int64]float64
}

func newFakeStatsStore() *fakeStatsStore {
	return &fakeStatsStore{
		orderStats: make(map[int64]int),
		revenue:    make(map[int64]float64),
	}
}

func (f *fakeStatsStore) IncrementShopOrderStats(ctx context.Context, shopID int64) error {
	f.orderStats[shopID]++
	return nil
}

func (f *fakeStatsStore) AddShopRevenue(ctx context.Context, shopID int64, amount float64) error {
	f.revenue[shopID] += amount
	return nil
}

func newTestWorker(t *testing.T) (*ShopStatsWorker, *fakeStatsStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	redis, err := redisclient.NewClient(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { redis.Close() })

	store := newFakeStatsStore()
	return NewShopStatsWorker(nil, store, redis), store
}

func deliveredEvent(eventID, oldStatus string) *models.OrderStatusChangedEvent {
	return &models.OrderStatusChangedEvent{
		BaseEvent:   models.BaseEvent{EventID: eventID, EventType: models.EventTypeOrderStatusChanged},
		OrderID:     1,
		ShopID:      7,
		OldStatus:   oldStatus,
		NewStatus:   models.OrderStatusDelivered,
		TotalAmount: 140,
	}
}

func TestDeliveredOrderAddsRevenueOnce(t *testing.T) {
	w, store := newTestWorker(t)
	ctx := context.Background()

	err := w.handleOrderStatusChanged(ctx, deliveredEvent("evt-1", models.OrderStatusOutForDelivery))
	require.NoError(t, err)
	assert.InDelta(t, 140, store.revenue[7], 1e-9)
}

func TestRedeliveredEventAddsNoRevenue(t *testing.T) {
	w, store := newTestWorker(t)
	ctx := context.Background()

	event := deliveredEvent("evt-1", models.OrderStatusOutForDelivery)
	require.NoError(t, w.handleOrderStatusChanged(ctx, event))
	require.NoError(t, w.handleOrderStatusChanged(ctx, event))

	assert.InDelta(t, 140, store.revenue[7], 1e-9)
}

func TestRepeatedDeliveredStatusAddsNoRevenue(t *testing.T) {
	w, store := newTestWorker(t)
	ctx := context.Background()

	// With permissive transitions a shop owner can re-assert delivered;
	// each assertion publishes a fresh event id.
	require.NoError(t, w.handleOrderStatusChanged(ctx, deliveredEvent("evt-1", models.OrderStatusOutForDelivery)))
	require.NoError(t, w.handleOrderStatusChanged(ctx, deliveredEvent("evt-2", models.OrderStatusDelivered)))

	assert.InDelta(t, 140, store.revenue[7], 1e-9)
}

func TestNonDeliveredStatusAddsNoRevenue(t *testing.T) {
	w, store := newTestWorker(t)
	ctx := context.Background()

	event := deliveredEvent("evt-1", models.OrderStatusPending)
	event.NewStatus = models.OrderStatusConfirmed
	require.NoError(t, w.handleOrderStatusChanged(ctx, event))

	assert.Empty(t, store.revenue)
}

func TestRedeliveredOrderCreatedCountsOnce(t *testing.T) {
	w, store := newTestWorker(t)
	ctx := context.Background()

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{EventID: "evt-1", EventType: models.EventTypeOrderCreated},
		OrderID:   1,
		ShopID:    7,
	}
	require.NoError(t, w.handleOrderCreated(ctx, event))
	require.NoError(t, w.handleOrderCreated(ctx, event))

	assert.Equal(t, 1, store.orderStats[7])
}
