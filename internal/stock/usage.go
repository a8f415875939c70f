// Package stock holds the pure lifecycle logic for pantry products: the
// consumption state of a single item, the derived shopping-list projection
// and the tag summary buckets.  Nothing here touches storage; functions
// operate on already-fetched rows and callers persist the results.
package stock

import (
	"errors"

	"github.com/luanafs/pantry-api/internal/repository"
)

// ErrExhausted is returned when incrementing a product whose usage already
// equals its quantity.
var ErrExhausted = errors.New("product is exhausted")

// ErrUsageOutOfRange is returned when a direct usage set falls outside
// [0, quantity].
var ErrUsageOutOfRange = errors.New("usage out of range")

// Used returns how many units of the product have been consumed.
func Used(p repository.Product) uint32 { return p.Usage }

// Remaining returns how many units are left.
func Remaining(p repository.Product) uint32 { return p.Quantity - p.Usage }

// IsExhausted reports whether the product has been fully consumed.
func IsExhausted(p repository.Product) bool { return p.Usage == p.Quantity }

// IncrementUsage consumes one unit.  It is rejected once the product is
// exhausted, keeping 0 <= usage <= quantity intact.
func IncrementUsage(p *repository.Product) error {
	if p.Usage >= p.Quantity {
		return ErrExhausted
	}
	p.Usage++
	return nil
}

// SetUsage sets the consumption directly, as driven by the bounded slider.
// The widget clamps its own range; this validates against the stored
// quantity before the value is persisted.
func SetUsage(p *repository.Product, value int) error {
	// Compare in int64 space: a value past the uint32 range must fail the
	// bound check, not wrap around it.
	if value < 0 || int64(value) > int64(p.Quantity) {
		return ErrUsageOutOfRange
	}
	p.Usage = uint32(value)
	return nil
}
