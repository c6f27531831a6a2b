package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineMilesZeroDistance(t *testing.T) {
	assert.Zero(t, HaversineMiles(33.9519, -83.3576, 33.9519, -83.3576))
}

func TestHaversineMilesKnownPairs(t *testing.T) {
	// Athens, GA to St. Simons Island, GA is roughly 220 miles direct.
	d := HaversineMiles(33.9519, -83.3576, 31.1351, -81.3885)
	assert.InDelta(t, 220, d, 15)

	// Athens, GA to Miami, FL is roughly 595 miles direct.
	d = HaversineMiles(33.9519, -83.3576, 25.7617, -80.1918)
	assert.InDelta(t, 595, d, 25)
}

func TestHaversineMilesSymmetric(t *testing.T) {
	a := HaversineMiles(33.9519, -83.3576, 30.3322, -81.6557)
	b := HaversineMiles(30.3322, -81.6557, 33.9519, -83.3576)
	assert.InDelta(t, a, b, 1e-9)
}
