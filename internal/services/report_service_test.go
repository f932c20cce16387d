package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCollectionRate(t *testing.T) {
	assert.Equal(t, 0.0, collectionRate(decimal.NewFromInt(500), decimal.Zero))
	assert.Equal(t, 100.0, collectionRate(decimal.NewFromInt(80), decimal.NewFromInt(80)))
	assert.Equal(t, 50.0, collectionRate(decimal.NewFromInt(40), decimal.NewFromInt(80)))
	assert.Equal(t, 33.3, collectionRate(decimal.NewFromInt(1), decimal.NewFromInt(3)))
	// Overcollection (back rent paid this month) can exceed 100%.
	assert.Equal(t, 120.0, collectionRate(decimal.NewFromInt(120), decimal.NewFromInt(100)))
}
