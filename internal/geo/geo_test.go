package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceZeroForSamePoint(t *testing.T) {
	d := DistanceMeters(12.9716, 77.5946, 12.9716, 77.5946)
	assert.Equal(t, 0.0, d)
}

func TestDistanceKnownPair(t *testing.T) {
	// Two points in central Bangalore, roughly 550m apart.
	d := DistanceMeters(12.9716, 77.5946, 12.9763, 77.5929)
	assert.InDelta(t, 550, d, 100)
}

func TestDistanceSymmetric(t *testing.T) {
	a := DistanceMeters(12.9716, 77.5946, 13.0827, 80.2707)
	b := DistanceMeters(13.0827, 80.2707, 12.9716, 77.5946)
	assert.InDelta(t, a, b, 0.001)
	assert.Greater(t, a, 250_000.0) // Bangalore to Chennai is ~290km
	assert.Less(t, a, 350_000.0)
}
