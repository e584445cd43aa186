package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"localmart/internal/cart"

	"github.com/go-redis/redis/v8"
)

const shopGeoKey = "shops:geo"

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// IndexShop adds or moves a shop in the geo index
func (c *Client) IndexShop(ctx context.Context, shopID int64, lat, lng float64) error {
	err := c.rdb.GeoAdd(ctx, shopGeoKey, &redis.GeoLocation{
		Name:      strconv.FormatInt(shopID, 10),
		Longitude: lng,
		Latitude:  lat,
	}).Err()
	if err != nil {
		return fmt.Errorf("geo add failed: %w", err)
	}
	return nil
}

// RemoveShop drops a shop from the geo index (deactivated shops must not
// appear in nearby results)
func (c *Client) RemoveShop(ctx context.Context, shopID int64) error {
	return c.rdb.ZRem(ctx, shopGeoKey, strconv.FormatInt(shopID, 10)).Err()
}

// ShopDistance is one geo query hit: shop id plus distance from the
// query point, ascending.
type ShopDistance struct {
	ShopID         int64
	DistanceMeters float64
}

// NearbyShops returns shop ids within radiusMeters of the point, closest
// first.
func (c *Client) NearbyShops(ctx context.Context, lat, lng, radiusMeters float64) ([]ShopDistance, error) {
	locs, err := c.rdb.GeoRadius(ctx, shopGeoKey, lng, lat, &redis.GeoRadiusQuery{
		Radius:   radiusMeters,
		Unit:     "m",
		WithDist: true,
		Sort:     "ASC",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("geo radius failed: %w", err)
	}

	results := make([]ShopDistance, 0, len(locs))
	for _, loc := range locs {
		id, err := strconv.ParseInt(loc.Name, 10, 64)
		if err != nil {
			continue
		}
		results = append(results, ShopDistance{ShopID: id, DistanceMeters: loc.Dist})
	}
	return results, nil
}

func cartKey(customerID int64) string {
	return fmt.Sprintf("cart:%d", customerID)
}

// GetCart loads a customer's cart state. A missing key is an empty cart.
func (c *Client) GetCart(ctx context.Context, customerID int64) (cart.State, error) {
	data, err := c.rdb.Get(ctx, cartKey(customerID)).Bytes()
	if err == redis.Nil {
		return cart.Empty(), nil
	}
	if err != nil {
		return cart.State{}, fmt.Errorf("cart get failed: %w", err)
	}

	var state cart.State
	if err := json.Unmarshal(data, &state); err != nil {
		return cart.State{}, fmt.Errorf("cart decode failed: %w", err)
	}
	return state, nil
}

// SaveCart stores a customer's cart state with a TTL
func (c *Client) SaveCart(ctx context.Context, customerID int64, state cart.State, ttl time.Duration) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("cart encode failed: %w", err)
	}
	return c.rdb.Set(ctx, cartKey(customerID), data, ttl).Err()
}

// DeleteCart removes a customer's cart state
func (c *Client) DeleteCart(ctx context.Context, customerID int64) error {
	return c.rdb.Del(ctx, cartKey(customerID)).Err()
}

// ClaimEvent records an event id as processed and reports whether this
// call was the first to claim it. Kafka delivery is at-least-once, so
// consumers use the claim to skip redelivered events.
func (c *Client) ClaimEvent(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("event:%s", eventID), "1", ttl).Result()
}
