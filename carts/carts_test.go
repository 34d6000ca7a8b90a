package carts_test

import (
	"math"
	"testing"

	"github.com/RenanGalvao/pizza-ecommerce/carts"
	"github.com/stretchr/testify/require"
)

func TestAddMergesLines(t *testing.T) {
	c := carts.New()
	require.NoError(t, c.Add("margherita", 1))
	require.NoError(t, c.Add("cola", 2))
	require.NoError(t, c.Add("margherita", 3))

	require.Equal(t, []carts.Line{{ItemID: "margherita", Quantity: 4}, {ItemID: "cola", Quantity: 2}}, c.Items)
}

func TestAddRejectsQuantityOutOfRange(t *testing.T) {
	c := carts.New()
	require.NoError(t, c.Add("margherita", carts.MaxQuantity-1))

	require.ErrorIs(t, c.Add("margherita", 2), carts.ErrInvalidQuantity)
	require.ErrorIs(t, c.Add("margherita", math.MaxInt), carts.ErrInvalidQuantity)
	require.ErrorIs(t, c.Add("cola", 0), carts.ErrInvalidQuantity)
	require.ErrorIs(t, c.Add("cola", -1), carts.ErrInvalidQuantity)
	require.Equal(t, []carts.Line{{ItemID: "margherita", Quantity: carts.MaxQuantity - 1}}, c.Items)

	require.NoError(t, c.Add("margherita", 1))
	require.Equal(t, carts.MaxQuantity, c.Items[0].Quantity)
}

func TestSetQuantityAndRemove(t *testing.T) {
	c := carts.New()
	require.NoError(t, c.Add("margherita", 1))

	require.True(t, c.SetQuantity("margherita", 5))
	require.False(t, c.SetQuantity("calzone", 5))
	require.Equal(t, 5, c.Items[0].Quantity)

	require.False(t, c.Remove("calzone"))
	require.True(t, c.Remove("margherita"))
	require.True(t, c.IsEmpty())
}

func TestTotalCents(t *testing.T) {
	c := carts.New()
	require.NoError(t, c.Add("margherita", 3))
	require.NoError(t, c.Add("cola", 2))

	total, err := c.TotalCents(map[string]float64{"margherita": 9.99, "cola": 0.1})
	require.NoError(t, err)
	require.Equal(t, int64(2997+20), total)

	_, err = c.TotalCents(map[string]float64{"cola": 0.1})
	require.Error(t, err)
}

func TestTotalCentsRejectsStoredLinesOutOfRange(t *testing.T) {
	overflowing := carts.Cart{Items: []carts.Line{{ItemID: "margherita", Quantity: math.MaxInt}}}
	_, err := overflowing.TotalCents(map[string]float64{"margherita": 10})
	require.ErrorIs(t, err, carts.ErrInvalidQuantity)

	negative := carts.Cart{Items: []carts.Line{{ItemID: "margherita", Quantity: 1}}}
	_, err = negative.TotalCents(map[string]float64{"margherita": -5})
	require.Error(t, err)
}
