package form

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// anchor is a fixed "now" so date assertions never depend on the clock.
var anchor = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func intp(n int) *int { return &n }

func TestParseProductValid(t *testing.T) {
	in := ProductInput{
		Name:        "  Rice  ",
		Brand:       "Tio João",
		Link:        "example.com/rice",
		Quantity:    intp(2),
		Suffix:      "kg",
		Tags:        "food, pantry",
		Price:       "50,00",
		ExpiratedAt: "05/12/24",
		Fixed:       true,
	}
	p, errs := ParseProduct(in, anchor)
	require.Empty(t, errs.Blocking())
	assert.Empty(t, errs)

	assert.Equal(t, "Rice", p.Name)
	assert.Equal(t, "Tio João", p.Brand)
	assert.Equal(t, "https://example.com/rice", p.Link)
	assert.Equal(t, uint32(2), p.Quantity)
	assert.Equal(t, "KG", p.Suffix)
	assert.Equal(t, []string{"food", "pantry"}, p.Tags)
	require.NotNil(t, p.Price)
	assert.Equal(t, int64(5000), *p.Price)
	assert.Equal(t, "2024-12-05T09:00:00+00:00", p.ExpiratedAt)
	assert.True(t, p.Fixed)
}

func TestParseProductQuantityZeroCoercedToOne(t *testing.T) {
	p, errs := ParseProduct(ProductInput{Name: "Salt", Quantity: intp(0), Suffix: "GR"}, anchor)
	assert.Empty(t, errs)
	assert.Equal(t, uint32(1), p.Quantity)
}

func TestParseProductMissingFields(t *testing.T) {
	_, errs := ParseProduct(ProductInput{}, anchor)
	assert.Equal(t, "is required.", errs["name"])
	assert.Equal(t, "is required.", errs["quantity"])
	assert.Equal(t, "is required.", errs["suffix"])
}

func TestParseProductNegativeQuantity(t *testing.T) {
	_, errs := ParseProduct(ProductInput{Name: "Salt", Quantity: intp(-1), Suffix: "GR"}, anchor)
	assert.Equal(t, "must be a non-negative integer.", errs["quantity"])
}

func TestParseProductOversizedQuantityRejected(t *testing.T) {
	// A value past the uint32 range must error out, not wrap to zero and
	// produce a product that is born exhausted.
	tooBig := int(int64(math.MaxUint32) + 1)
	p, errs := ParseProduct(ProductInput{Name: "Salt", Quantity: intp(tooBig), Suffix: "GR"}, anchor)
	assert.Equal(t, "is too large.", errs["quantity"])
	assert.Zero(t, p.Quantity)
	assert.NotEmpty(t, errs.Blocking())
}

func TestParseProductUnknownSuffix(t *testing.T) {
	_, errs := ParseProduct(ProductInput{Name: "Salt", Quantity: intp(1), Suffix: "ML"}, anchor)
	assert.Equal(t, "must be one of KG, GR, PC, UN, LT.", errs["suffix"])
}

func TestParseProductFieldErrorsAreIndependent(t *testing.T) {
	// Errors on one field must not suppress validation of its siblings.
	_, errs := ParseProduct(ProductInput{
		Quantity:    intp(-3),
		Suffix:      "XX",
		Price:       "abc",
		ExpiratedAt: "32/01/25",
	}, anchor)
	assert.Len(t, errs, 5)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "quantity")
	assert.Contains(t, errs, "suffix")
	assert.Contains(t, errs, "price")
	assert.Contains(t, errs, "expirated_at")
}

func TestParseProductBadLinkIsNonBlocking(t *testing.T) {
	p, errs := ParseProduct(ProductInput{
		Name:     "Soap",
		Quantity: intp(1),
		Suffix:   "UN",
		Link:     "not a url at all",
	}, anchor)
	assert.Equal(t, "is an invalid URL.", errs["link"])
	assert.Empty(t, errs.Blocking(), "a bad link must never block the submission")
	assert.Empty(t, p.Link, "the invalid link is dropped, not stored")
}

func TestParseProductLinkSchemeNotDoubled(t *testing.T) {
	p, errs := ParseProduct(ProductInput{
		Name:     "Soap",
		Quantity: intp(1),
		Suffix:   "UN",
		Link:     "https://example.com/soap",
	}, anchor)
	assert.Empty(t, errs)
	assert.Equal(t, "https://example.com/soap", p.Link)
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"food", "Food", "snack"}, SplitTags(" food , Food,snack, "),
		"tags keep order and duplicates, empty tokens are dropped")
	assert.Nil(t, SplitTags(""))
}

func TestParsePrice(t *testing.T) {
	cents, ok := ParsePrice("50,00")
	require.True(t, ok)
	assert.Equal(t, int64(5000), cents)

	cents, ok = ParsePrice("1.234")
	assert.False(t, ok, "dot separators are not accepted")
	assert.Zero(t, cents)

	_, ok = ParsePrice("-500")
	assert.False(t, ok)

	_, ok = ParsePrice("R$ 50,00")
	assert.False(t, ok)
}

func TestNormalizeExpirationDate(t *testing.T) {
	iso, msg := NormalizeExpirationDate("05/12/24", anchor)
	require.Empty(t, msg)
	assert.Equal(t, "2024-12-05T09:00:00+00:00", iso)
}

func TestNormalizeExpirationDateFieldMessages(t *testing.T) {
	cases := []struct {
		raw string
		msg string
	}{
		{"32/01/25", "day is invalid"},
		{"01/13/25", "month is invalid"},
		{"01/01/20", "that date has already passed"},
		{"01-01-25", "is an invalid date"},
		{"aa/bb/cc", "is an invalid date"},
	}
	for _, tc := range cases {
		iso, msg := NormalizeExpirationDate(tc.raw, anchor)
		assert.Equal(t, tc.msg, msg, "input %q", tc.raw)
		assert.Empty(t, iso)
	}
}

func TestNormalizeExpirationDateRangeChecksOnly(t *testing.T) {
	// Day/month use simple range checks, not calendar validation: a day 30
	// in February is accepted and stamped verbatim.
	iso, msg := NormalizeExpirationDate("30/02/25", anchor)
	require.Empty(t, msg)
	assert.Equal(t, "2025-02-30T09:00:00+00:00", iso)
}

func TestDecomposeDateRoundTrip(t *testing.T) {
	iso, msg := NormalizeExpirationDate("05/12/24", anchor)
	require.Empty(t, msg)
	day, month, year, ok := DecomposeDate(iso)
	require.True(t, ok)
	assert.Equal(t, "05", day)
	assert.Equal(t, "12", month)
	assert.Equal(t, "24", year)

	_, _, _, ok = DecomposeDate("garbage")
	assert.False(t, ok)
}
