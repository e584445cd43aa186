package cart

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id int64, name string, price float64) Item {
	return Item{ProductID: id, Name: name, UnitPrice: price}
}

// checkInvariants verifies total and itemCount against the item lines.
func checkInvariants(t *testing.T, s State) {
	t.Helper()
	var total float64
	var count int
	for _, it := range s.Items {
		require.GreaterOrEqual(t, it.Quantity, 1, "line quantity must be >= 1")
		total += it.UnitPrice * float64(it.Quantity)
		count += it.Quantity
	}
	assert.InDelta(t, total, s.Total, 1e-9)
	assert.Equal(t, count, s.ItemCount)
}

func TestAddNewAndExisting(t *testing.T) {
	s := Empty()
	s = s.Add(item(1, "Tomato", 40))
	checkInvariants(t, s)
	require.Len(t, s.Items, 1)
	assert.Equal(t, 1, s.Items[0].Quantity)

	// Adding the same product never creates a duplicate line.
	s = s.Add(item(1, "Tomato", 40))
	checkInvariants(t, s)
	require.Len(t, s.Items, 1)
	assert.Equal(t, 2, s.Items[0].Quantity)
	assert.InDelta(t, 80, s.Total, 1e-9)
	assert.Equal(t, 2, s.ItemCount)
}

func TestRemoveMissingItem(t *testing.T) {
	s := Empty().Add(item(1, "Tomato", 40))
	next, err := s.Remove(99)
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.Equal(t, s.ItemCount, next.ItemCount)
}

func TestSetQuantityZeroEqualsRemove(t *testing.T) {
	base := Empty().Add(item(1, "Tomato", 40)).Add(item(2, "Potato", 60))

	viaSet, err := base.SetQuantity(2, 0)
	require.NoError(t, err)
	viaRemove, err := base.Remove(2)
	require.NoError(t, err)

	assert.Equal(t, viaRemove.Items, viaSet.Items)
	assert.InDelta(t, viaRemove.Total, viaSet.Total, 1e-9)
	assert.Equal(t, viaRemove.ItemCount, viaSet.ItemCount)
	checkInvariants(t, viaSet)
}

func TestGroceryCartScenario(t *testing.T) {
	// Tomato 40 + Potato 60, bump tomato to 2, then drop potato.
	s := Empty()
	s = s.Add(item(1, "Tomato", 40))
	s = s.Add(item(2, "Potato", 60))
	assert.InDelta(t, 100, s.Total, 1e-9)
	assert.Equal(t, 2, s.ItemCount)

	s = s.Add(item(1, "Tomato", 40))
	assert.InDelta(t, 140, s.Total, 1e-9)
	assert.Equal(t, 3, s.ItemCount)

	s, err := s.Remove(2)
	require.NoError(t, err)
	assert.InDelta(t, 80, s.Total, 1e-9)
	assert.Equal(t, 2, s.ItemCount)
	checkInvariants(t, s)
}

func TestToggleOpenLeavesItemsAlone(t *testing.T) {
	s := Empty().Add(item(1, "Tomato", 40))
	toggled := s.ToggleOpen()
	assert.True(t, toggled.IsOpen)
	assert.Equal(t, s.Items, toggled.Items)
	assert.InDelta(t, s.Total, toggled.Total, 1e-9)
	checkInvariants(t, toggled)

	assert.False(t, toggled.ToggleOpen().IsOpen)
}

func TestClear(t *testing.T) {
	s := Empty().Add(item(1, "Tomato", 40)).Add(item(2, "Potato", 60)).Clear()
	assert.Empty(t, s.Items)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.ItemCount)
}

// TestReducerDoesNotDrift drives the reducer through long random
// operation sequences and re-derives total/itemCount from scratch after
// every step.
func TestReducerDoesNotDrift(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	catalog := []Item{
		item(1, "Tomato", 40),
		item(2, "Potato", 60),
		item(3, "Milk", 28.50),
		item(4, "Bread", 35),
		item(5, "Eggs", 6.5),
	}

	for run := 0; run < 50; run++ {
		s := Empty()
		for step := 0; step < 200; step++ {
			p := catalog[rng.Intn(len(catalog))]
			switch rng.Intn(5) {
			case 0, 1: // bias toward adds so the cart stays populated
				s = s.Add(p)
			case 2:
				next, err := s.Remove(p.ProductID)
				if err == nil {
					s = next
				}
			case 3:
				next, err := s.SetQuantity(p.ProductID, rng.Intn(8))
				if err == nil {
					s = next
				}
			case 4:
				s = s.ToggleOpen()
			}
			checkInvariants(t, s)
		}
	}
}
