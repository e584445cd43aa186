package worker

import (
	"context"
	"log"
	"time"

	"localmart/internal/broker"
	"localmart/internal/models"
	"localmart/internal/redisclient"
	"localmart/internal/util"

	"go.uber.org/zap"
)

// Claims outlive any plausible redelivery window.
const eventClaimTTL = 24 * time.Hour

// StatsStore is the slice of the store the worker writes to.
type StatsStore interface {
	IncrementShopOrderStats(ctx context.Context, shopID int64) error
	AddShopRevenue(ctx context.Context, shopID int64, amount float64) error
}

// ShopStatsWorker folds order events into the shop aggregate counters.
// Order creation bumps totalOrders and customerVisits; delivery adds the
// order amount to totalRevenue. Kafka redelivers after consumer crashes,
// so every event is claimed by id in Redis before it is applied.
type ShopStatsWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        StatsStore
	redis        *redisclient.Client
	logger       *zap.Logger
}

// NewShopStatsWorker creates a new shop stats worker
func NewShopStatsWorker(consumer *broker.Consumer, store StatsStore, redis *redisclient.Client) *ShopStatsWorker {
	w := &ShopStatsWorker{
		consumer: consumer,
		store:    store,
		redis:    redis,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderCreated(w.handleOrderCreated)
	eventHandler.OnOrderStatusChanged(w.handleOrderStatusChanged)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *ShopStatsWorker) Start(ctx context.Context) error {
	log.Println("Starting shop stats worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *ShopStatsWorker) Stop() error {
	log.Println("Stopping shop stats worker...")
	return w.consumer.Close()
}

// claimEvent reports whether this event id has not been seen before. A
// Redis failure counts as fresh: applying a duplicate under an outage
// beats silently dropping a counter update.
func (w *ShopStatsWorker) claimEvent(ctx context.Context, eventID string) bool {
	fresh, err := w.redis.ClaimEvent(ctx, eventID, eventClaimTTL)
	if err != nil {
		w.logger.Warn("Failed to claim event, applying anyway",
			zap.String("event_id", eventID), zap.Error(err))
		return true
	}
	return fresh
}

func (w *ShopStatsWorker) handleOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	if !w.claimEvent(ctx, event.EventID) {
		return nil
	}

	w.logger.Info("Recording order against shop stats",
		zap.Int64("order_id", event.OrderID),
		zap.Int64("shop_id", event.ShopID))

	return w.store.IncrementShopOrderStats(ctx, event.ShopID)
}

func (w *ShopStatsWorker) handleOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	if event.NewStatus != models.OrderStatusDelivered {
		return nil
	}
	// A delivered order re-marked delivered must not earn twice.
	if event.OldStatus == models.OrderStatusDelivered {
		return nil
	}
	if !w.claimEvent(ctx, event.EventID) {
		return nil
	}

	w.logger.Info("Recording delivered order revenue",
		zap.Int64("order_id", event.OrderID),
		zap.Int64("shop_id", event.ShopID),
		zap.Float64("amount", event.TotalAmount))

	return w.store.AddShopRevenue(ctx, event.ShopID, event.TotalAmount)
}
