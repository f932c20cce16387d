package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOccupancyRate(t *testing.T) {
	assert.Equal(t, 0.0, OccupancyRate(0, 0))
	assert.Equal(t, 0.0, OccupancyRate(5, 0))
	assert.Equal(t, 50.0, OccupancyRate(1, 2))
	assert.Equal(t, 100.0, OccupancyRate(3, 3))
	assert.Equal(t, 33.3, OccupancyRate(1, 3))
	assert.Equal(t, 66.7, OccupancyRate(2, 3))
}
