package stock

import (
	"strings"
	"time"

	"github.com/luanafs/pantry-api/internal/repository"
)

// Category tag names recognised by the summary buckets.  Matching is
// case-insensitive everywhere.
const (
	TagFood     = "food"
	TagCleaning = "cleaning"
	TagOther    = "other"
)

// TagCounts are the pantry summary numbers shown on the home screen.
// Food, Cleaning, Other and Unmatched partition the collection exhaustively:
// each product lands in exactly one of the four, so their sum always equals
// Total.  Expired is an independent count across the whole collection.
type TagCounts struct {
	Food      int `json:"food"`
	Cleaning  int `json:"cleaning"`
	Other     int `json:"other"`
	Unmatched int `json:"unmatched"`
	Expired   int `json:"expired"`
	Total     int `json:"total"`
}

// AggregateTags buckets an already-fetched product collection by category
// tag.  A product counts toward the first named bucket any of its tags
// matches (food, then cleaning, then other); products matching none count
// as unmatched.  now anchors the expired count.
func AggregateTags(products []repository.Product, now time.Time) TagCounts {
	var c TagCounts
	c.Total = len(products)
	for _, p := range products {
		switch {
		case hasTag(p, TagFood):
			c.Food++
		case hasTag(p, TagCleaning):
			c.Cleaning++
		case hasTag(p, TagOther):
			c.Other++
		default:
			c.Unmatched++
		}
		if IsExpired(p, now) {
			c.Expired++
		}
	}
	return c
}

// IsExpired reports whether the product's expiration timestamp is at or
// before now.  Products without a date, or with one that does not parse,
// are never expired.
func IsExpired(p repository.Product, now time.Time) bool {
	if p.ExpiratedAt == "" {
		return false
	}
	ts, err := time.Parse(time.RFC3339, p.ExpiratedAt)
	if err != nil {
		return false
	}
	return !ts.After(now)
}

func hasTag(p repository.Product, name string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(strings.TrimSpace(t), name) {
			return true
		}
	}
	return false
}
