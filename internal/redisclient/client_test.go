package redisclient

import (
	"context"
	"testing"
	"time"

	"localmart/internal/cart"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewClient(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestNearbyShopsOrderedByDistance(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	// Query point is Bangalore city center; one shop sits exactly there.
	require.NoError(t, client.IndexShop(ctx, 1, 12.9716, 77.5946))
	require.NoError(t, client.IndexShop(ctx, 2, 12.9750, 77.6000)) // ~720m away
	require.NoError(t, client.IndexShop(ctx, 3, 13.0827, 80.2707)) // Chennai, far out

	results, err := client.NearbyShops(ctx, 12.9716, 77.5946, 2000)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, int64(1), results[0].ShopID)
	assert.InDelta(t, 0, results[0].DistanceMeters, 1)
	assert.Equal(t, int64(2), results[1].ShopID)
	assert.Greater(t, results[1].DistanceMeters, results[0].DistanceMeters)
}

func TestNearbyShopsEmptyIsNotAnError(t *testing.T) {
	client := newTestClient(t)

	results, err := client.NearbyShops(context.Background(), 12.9716, 77.5946, 200)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRemoveShopDropsItFromResults(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.IndexShop(ctx, 1, 12.9716, 77.5946))
	require.NoError(t, client.RemoveShop(ctx, 1))

	results, err := client.NearbyShops(ctx, 12.9716, 77.5946, 2000)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCartRoundTrip(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	state := cart.Empty().
		Add(cart.Item{ProductID: 1, Name: "Tomato", UnitPrice: 40}).
		Add(cart.Item{ProductID: 2, Name: "Potato", UnitPrice: 60})

	require.NoError(t, client.SaveCart(ctx, 7, state, time.Hour))

	loaded, err := client.GetCart(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, state.Items, loaded.Items)
	assert.InDelta(t, state.Total, loaded.Total, 1e-9)
	assert.Equal(t, state.ItemCount, loaded.ItemCount)
}

func TestGetCartMissingIsEmpty(t *testing.T) {
	client := newTestClient(t)

	state, err := client.GetCart(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, state.Items)
	assert.Zero(t, state.ItemCount)
}

func TestClaimEventOnlyOnce(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	fresh, err := client.ClaimEvent(ctx, "evt-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = client.ClaimEvent(ctx, "evt-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, fresh)

	fresh, err = client.ClaimEvent(ctx, "evt-2", time.Hour)
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestDeleteCart(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	state := cart.Empty().Add(cart.Item{ProductID: 1, Name: "Tomato", UnitPrice: 40})
	require.NoError(t, client.SaveCart(ctx, 7, state, time.Hour))
	require.NoError(t, client.DeleteCart(ctx, 7))

	loaded, err := client.GetCart(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, loaded.Items)
}
