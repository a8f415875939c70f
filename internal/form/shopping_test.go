package form

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShoppingItemValid(t *testing.T) {
	it, errs := ParseShoppingItem(ShoppingItemInput{
		Name:     " Olive oil ",
		Quantity: intp(0),
		Suffix:   "lt",
		Link:     "shop.example.com/oil",
	})
	assert.Empty(t, errs)
	assert.Equal(t, "Olive oil", it.Name)
	assert.Equal(t, uint32(1), it.Quantity, "zero quantity is coerced like the product form")
	assert.Equal(t, "LT", it.Suffix)
	assert.Equal(t, "https://shop.example.com/oil", it.Link)
}

func TestParseShoppingItemMissingFields(t *testing.T) {
	_, errs := ParseShoppingItem(ShoppingItemInput{})
	assert.Equal(t, "is required.", errs["name"])
	assert.Equal(t, "is required.", errs["quantity"])
	assert.Equal(t, "is required.", errs["suffix"])
}

func TestParseShoppingItemOversizedQuantityRejected(t *testing.T) {
	tooBig := int(int64(math.MaxUint32) + 1)
	it, errs := ParseShoppingItem(ShoppingItemInput{Name: "Salt", Quantity: &tooBig, Suffix: "GR"})
	assert.Equal(t, "is too large.", errs["quantity"])
	assert.Zero(t, it.Quantity, "the oversized value must not wrap into range")
}

func TestParseFinishEmptyFormIsValid(t *testing.T) {
	f, errs := ParseFinish(FinishInput{})
	assert.Empty(t, errs)
	assert.Nil(t, f.PriceCents)
	assert.Empty(t, f.DeliveryForecast)
}

func TestParseFinishNormalizesFields(t *testing.T) {
	f, errs := ParseFinish(FinishInput{Price: "123,45", DeliveryForecast: "01/01/20"})
	require.Empty(t, errs)
	require.NotNil(t, f.PriceCents)
	assert.Equal(t, int64(12345), *f.PriceCents)
	// Deliveries may be dated in the past; only the mask rules apply.
	assert.Equal(t, "2020-01-01T09:00:00+00:00", f.DeliveryForecast)
}

func TestParseFinishRejectsBadValues(t *testing.T) {
	_, errs := ParseFinish(FinishInput{Price: "abc", DeliveryForecast: "40/01/25"})
	assert.Equal(t, "is an invalid price.", errs["price"])
	assert.Equal(t, "day is invalid", errs["delivery_forecast"])
}
