package stock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/luanafs/pantry-api/internal/repository"
)

var tagNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func TestAggregateTagsPartitionsExhaustively(t *testing.T) {
	products := []repository.Product{
		{Tags: []string{"Food", "snack"}},
		{Tags: []string{"cleaning"}},
		{Tags: []string{"OTHER"}},
		{Tags: []string{"garden"}},
		{Tags: nil},
	}
	c := AggregateTags(products, tagNow)
	assert.Equal(t, 1, c.Food)
	assert.Equal(t, 1, c.Cleaning)
	assert.Equal(t, 1, c.Other)
	assert.Equal(t, 2, c.Unmatched)
	assert.Equal(t, 5, c.Total)
	assert.Equal(t, c.Total, c.Food+c.Cleaning+c.Other+c.Unmatched,
		"the four buckets partition the collection")
}

func TestAggregateTagsFirstBucketWins(t *testing.T) {
	// A product tagged both food and cleaning counts once, toward food.
	c := AggregateTags([]repository.Product{{Tags: []string{"cleaning", "food"}}}, tagNow)
	assert.Equal(t, 1, c.Food)
	assert.Equal(t, 0, c.Cleaning)
	assert.Equal(t, 1, c.Total)
}

func TestAggregateTagsMatchingIsCaseInsensitive(t *testing.T) {
	c := AggregateTags([]repository.Product{
		{Tags: []string{"FOOD"}},
		{Tags: []string{"Cleaning "}},
	}, tagNow)
	assert.Equal(t, 1, c.Food)
	assert.Equal(t, 1, c.Cleaning)
}

func TestAggregateTagsCountsExpired(t *testing.T) {
	products := []repository.Product{
		{Tags: []string{"food"}, ExpiratedAt: "2025-01-01T09:00:00+00:00"},
		{Tags: []string{"food"}, ExpiratedAt: "2026-01-01T09:00:00+00:00"},
		{Tags: []string{"cleaning"}},
	}
	c := AggregateTags(products, tagNow)
	assert.Equal(t, 1, c.Expired)
	assert.Equal(t, 2, c.Food, "expiry does not move a product out of its bucket")
}

func TestIsExpired(t *testing.T) {
	assert.True(t, IsExpired(repository.Product{ExpiratedAt: "2025-03-10T09:00:00+00:00"}, tagNow))
	assert.False(t, IsExpired(repository.Product{ExpiratedAt: "2025-03-11T09:00:00+00:00"}, tagNow))
	assert.False(t, IsExpired(repository.Product{}, tagNow))
	assert.False(t, IsExpired(repository.Product{ExpiratedAt: "not a date"}, tagNow))
}

func TestEmptyCollectionSummary(t *testing.T) {
	c := AggregateTags(nil, tagNow)
	assert.Zero(t, c.Total)
	assert.Zero(t, c.Food+c.Cleaning+c.Other+c.Unmatched+c.Expired)
}
