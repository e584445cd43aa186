package service

import (
	"testing"

	"localmart/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSortNearbyAscendingDistance(t *testing.T) {
	shops := []models.NearbyShop{
		{Shop: models.Shop{ID: 3}, DistanceMeters: 540},
		{Shop: models.Shop{ID: 1}, DistanceMeters: 0},
		{Shop: models.Shop{ID: 2}, DistanceMeters: 120},
	}

	sortNearby(shops)

	assert.Equal(t, int64(1), shops[0].ID)
	assert.Equal(t, int64(2), shops[1].ID)
	assert.Equal(t, int64(3), shops[2].ID)
}

func TestSortNearbyHandlesEmptyAndSingle(t *testing.T) {
	sortNearby(nil)

	one := []models.NearbyShop{{Shop: models.Shop{ID: 1}, DistanceMeters: 10}}
	sortNearby(one)
	assert.Equal(t, int64(1), one[0].ID)
}
