package types

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestCartLineQtyDefaultsToOne(t *testing.T) {
	assert.Equal(t, 1, CartLine{}.Qty())
	assert.Equal(t, 3, CartLine{Quantity: 3}.Qty())
}

func TestCartLineSameItem(t *testing.T) {
	id := uuid.New()
	assert.True(t, CartLine{ProductID: id}.SameItem(CartLine{ProductID: id}))
	assert.True(t, CartLine{ProductID: id, VariantIndex: intPtr(1)}.SameItem(CartLine{ProductID: id, VariantIndex: intPtr(1)}))
	assert.False(t, CartLine{ProductID: id, VariantIndex: intPtr(0)}.SameItem(CartLine{ProductID: id}))
	assert.False(t, CartLine{ProductID: id}.SameItem(CartLine{ProductID: uuid.New()}))
}

func TestOrderLineEncodesPriceAsString(t *testing.T) {
	line := OrderLine{
		ProductID: uuid.New(),
		Title:     "Mug",
		Quantity:  2,
		Price:     decimal.RequireFromString("180"),
		LineTotal: decimal.RequireFromString("360"),
	}
	raw, err := json.Marshal(line)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "180", decoded["price"])
	assert.NotContains(t, decoded, "variantIndex")
}
