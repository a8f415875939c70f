package form

import (
	"math"
	"strings"
	"time"
)

// ShoppingItemInput is the raw add-to-shopping-list form.  It is a cut-down
// product form: an entry needs a name, a quantity and a unit; no tag is
// required for replenishment items.
type ShoppingItemInput struct {
	Name     string `json:"name"`
	Quantity *int   `json:"quantity"`
	Suffix   string `json:"suffix"`
	Link     string `json:"link"`
}

// ShoppingItem is the normalized add-to-list record.
type ShoppingItem struct {
	Name     string
	Quantity uint32
	Suffix   string
	Link     string
}

// ParseShoppingItem validates an add-to-shopping-list submission with the
// same field rules the product form applies to the shared fields.
func ParseShoppingItem(in ShoppingItemInput) (ShoppingItem, FieldErrors) {
	errs := FieldErrors{}
	var s ShoppingItem

	s.Name = strings.TrimSpace(in.Name)
	switch {
	case s.Name == "":
		errs.add("name", "is required.")
	case len(s.Name) > 120:
		errs.add("name", "must be at most 120 characters.")
	}

	switch {
	case in.Quantity == nil:
		errs.add("quantity", "is required.")
	case *in.Quantity < 0:
		errs.add("quantity", "must be a non-negative integer.")
	case int64(*in.Quantity) > math.MaxUint32:
		errs.add("quantity", "is too large.")
	case *in.Quantity == 0:
		s.Quantity = 1
	default:
		s.Quantity = uint32(*in.Quantity)
	}

	suffix := strings.ToUpper(strings.TrimSpace(in.Suffix))
	switch {
	case suffix == "":
		errs.add("suffix", "is required.")
	case !validSuffix(suffix):
		errs.add("suffix", "must be one of KG, GR, PC, UN, LT.")
	default:
		s.Suffix = suffix
	}

	if raw := strings.TrimSpace(in.Link); raw != "" {
		link, ok := normalizeLink(raw)
		if !ok {
			errs.add("link", "is an invalid URL.")
		} else {
			s.Link = link
		}
	}

	return s, errs
}

// FinishInput is the finalize-purchase form: a total price and an expected
// delivery date, both optional.
type FinishInput struct {
	Price            string `json:"price"`
	DeliveryForecast string `json:"delivery_forecast"`
}

// Finish is the normalized finalize-purchase record.
type Finish struct {
	PriceCents       *int64
	DeliveryForecast string
}

// ParseFinish normalizes the finalize-purchase form.  The delivery forecast
// uses the same DD/MM/YY mask as expiration dates but skips the past check:
// a delivery can arrive the same day.
func ParseFinish(in FinishInput) (Finish, FieldErrors) {
	errs := FieldErrors{}
	var f Finish

	if raw := strings.TrimSpace(in.Price); raw != "" {
		cents, ok := ParsePrice(raw)
		if !ok {
			errs.add("price", "is an invalid price.")
		} else {
			f.PriceCents = &cents
		}
	}

	if raw := strings.TrimSpace(in.DeliveryForecast); raw != "" {
		iso, msg := normalizeDeliveryDate(raw)
		if msg != "" {
			errs.add("delivery_forecast", msg)
		} else {
			f.DeliveryForecast = iso
		}
	}

	return f, errs
}

// normalizeDeliveryDate applies the expiration-date mask rules without the
// strictly-in-the-future requirement.
func normalizeDeliveryDate(raw string) (string, string) {
	// Anchoring "now" far in the past disables the future check while
	// keeping the shared day/month range validation.
	return NormalizeExpirationDate(raw, time.Time{})
}
