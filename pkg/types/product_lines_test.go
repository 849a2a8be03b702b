package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductLinesValueNilWhenEmpty(t *testing.T) {
	v, err := ProductLines(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestProductLinesScan(t *testing.T) {
	var lines ProductLines
	require.NoError(t, lines.Scan([]byte(`[{"sku":"A-1","quantity":2}]`)))
	require.Len(t, lines, 1)
	assert.Equal(t, "A-1", lines[0].SKU)
	assert.Equal(t, 2, lines[0].Quantity)

	require.NoError(t, lines.Scan(nil))
	assert.Nil(t, lines)

	assert.Error(t, lines.Scan(42))
}

func TestProductLinesRestorable(t *testing.T) {
	lines := ProductLines{
		{SKU: "A-1", Quantity: 2},
		{SKU: " ", Quantity: 1},
		{SKU: "B-2", Quantity: 0},
	}
	got := lines.Restorable()
	require.Len(t, got, 1)
	assert.Equal(t, "A-1", got[0].SKU)
}
