// Package form normalizes raw, UI-sourced product input into typed records.
// Validation is field-scoped: every field is checked in one pass and errors
// on one field never abort validation of its siblings, which lets clients
// render partial-error forms.  The package is pure; persistence happens in
// the handler/repository layers.
package form

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Suffixes are the accepted units of measure for a product quantity.
var Suffixes = []string{"KG", "GR", "PC", "UN", "LT"}

// scheme prepended to bare link input before URL validation.  The UI renders
// the prefix outside the field, so the stored value carries it.
const linkScheme = "https://"

// expiresAtHour is the fixed time-of-day stamped onto expiration dates.
const expiresAtHour = 9

// ProductInput carries the raw form values as they come off the wire.
// Quantity is a pointer so that an absent field can be told apart from an
// explicit zero (zero is coerced, absent is an error).
type ProductInput struct {
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Link        string `json:"link"`
	Quantity    *int   `json:"quantity"`
	Suffix      string `json:"suffix"`
	Tags        string `json:"tags"`
	Price       string `json:"price"`
	ExpiratedAt string `json:"expirated_at"`
	Fixed       bool   `json:"fixed"`
}

// Product is the normalized result of a successful parse.
type Product struct {
	Name        string   // trimmed display name
	Brand       string   // optional brand, may be empty
	Link        string   // absolute URL with scheme, empty when absent or invalid
	Quantity    uint32   // always >= 1 after normalization
	Suffix      string   // one of Suffixes
	Tags        []string // ordered, trimmed, not de-duplicated
	Price       *int64   // integer cents, nil when absent
	ExpiratedAt string   // ISO-8601 timestamp string, empty when absent
	Fixed       bool     // recurring staple flag
}

// FieldErrors maps a field name to its validation message.
type FieldErrors map[string]string

func (e FieldErrors) add(field, msg string) { e[field] = msg }

// Blocking returns the subset of errors that must stop a submission.  A bad
// link is reported but never blocks: the field is dropped and the rest of
// the record is persisted.
func (e FieldErrors) Blocking() FieldErrors {
	out := FieldErrors{}
	for k, v := range e {
		if k == "link" {
			continue
		}
		out[k] = v
	}
	return out
}

// ParseProduct validates and normalizes a raw product form.  It always
// returns the partially-normalized record alongside whatever field errors
// were collected; callers decide via errs.Blocking() whether to persist.
// now anchors the expiration-date past check.
func ParseProduct(in ProductInput, now time.Time) (Product, FieldErrors) {
	errs := FieldErrors{}
	var p Product

	p.Name = strings.TrimSpace(in.Name)
	switch {
	case p.Name == "":
		errs.add("name", "is required.")
	case len(p.Name) > 120:
		errs.add("name", "must be at most 120 characters.")
	}

	p.Brand = strings.TrimSpace(in.Brand)
	if len(p.Brand) > 120 {
		errs.add("brand", "must be at most 120 characters.")
	}

	switch {
	case in.Quantity == nil:
		errs.add("quantity", "is required.")
	case *in.Quantity < 0:
		errs.add("quantity", "must be a non-negative integer.")
	case int64(*in.Quantity) > math.MaxUint32:
		// Bound before the uint32 conversion so an oversized value can
		// never wrap to zero and bypass the >= 1 guarantee.
		errs.add("quantity", "is too large.")
	case *in.Quantity == 0:
		// A product in the pantry exists, so it has at least one unit.
		p.Quantity = 1
	default:
		p.Quantity = uint32(*in.Quantity)
	}

	suffix := strings.ToUpper(strings.TrimSpace(in.Suffix))
	switch {
	case suffix == "":
		errs.add("suffix", "is required.")
	case !validSuffix(suffix):
		errs.add("suffix", "must be one of KG, GR, PC, UN, LT.")
	default:
		p.Suffix = suffix
	}

	p.Tags = SplitTags(in.Tags)

	if raw := strings.TrimSpace(in.Price); raw != "" {
		cents, ok := ParsePrice(raw)
		if !ok {
			errs.add("price", "is an invalid price.")
		} else {
			p.Price = &cents
		}
	}

	if raw := strings.TrimSpace(in.Link); raw != "" {
		link, ok := normalizeLink(raw)
		if !ok {
			// Reported but non-blocking: the link is dropped and the
			// submission continues.
			errs.add("link", "is an invalid URL.")
		} else {
			p.Link = link
		}
	}

	if raw := strings.TrimSpace(in.ExpiratedAt); raw != "" {
		iso, msg := NormalizeExpirationDate(raw, now)
		if msg != "" {
			errs.add("expirated_at", msg)
		} else {
			p.ExpiratedAt = iso
		}
	}

	p.Fixed = in.Fixed

	return p, errs
}

// SplitTags turns a comma-separated string into an ordered list of trimmed
// tokens.  Empty tokens are dropped; duplicates are kept.
func SplitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// ParsePrice converts a comma-decimal price string ("50,00") into integer
// cents by stripping the separator and parsing the remaining digits.
func ParsePrice(raw string) (int64, bool) {
	n, err := strconv.ParseInt(strings.ReplaceAll(raw, ",", ""), 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// NormalizeExpirationDate parses a DD/MM/YY date string and returns the
// normalized ISO-8601 timestamp ("20YY-MM-DDT09:00:00+00:00") or a field
// error message.  Day and month are bounded by simple range checks rather
// than full calendar validation (day 30 in February passes), matching the
// form's historical behavior.  The resolved timestamp must be strictly
// after now.
func NormalizeExpirationDate(raw string, now time.Time) (string, string) {
	parts := strings.Split(raw, "/")
	if len(parts) != 3 {
		return "", "is an invalid date"
	}
	day, errD := strconv.Atoi(parts[0])
	month, errM := strconv.Atoi(parts[1])
	year, errY := strconv.Atoi(parts[2])
	if errD != nil || errM != nil || errY != nil {
		return "", "is an invalid date"
	}
	if day > 31 {
		return "", "day is invalid"
	}
	if month > 12 {
		return "", "month is invalid"
	}

	// time.Date normalizes out-of-calendar days instead of failing, which
	// keeps the permissive range-check semantics intact for the past check.
	ts := time.Date(2000+year, time.Month(month), day, expiresAtHour, 0, 0, 0, time.UTC)
	if !ts.After(now) {
		return "", "that date has already passed"
	}

	return fmt.Sprintf("20%s-%s-%sT0%d:00:00+00:00", parts[2], parts[1], parts[0], expiresAtHour), ""
}

// DecomposeDate extracts the DD, MM and YY components back out of a
// normalized expiration timestamp.  It is the inverse of
// NormalizeExpirationDate for values that package produced.
func DecomposeDate(iso string) (day, month, year string, ok bool) {
	if len(iso) < 10 || iso[4] != '-' || iso[7] != '-' {
		return "", "", "", false
	}
	return iso[8:10], iso[5:7], iso[2:4], true
}

// normalizeLink prepends the fixed scheme to a bare link value and checks
// that the result parses as a URL with a host.
func normalizeLink(raw string) (string, bool) {
	candidate := linkScheme + strings.TrimPrefix(raw, linkScheme)
	u, err := url.Parse(candidate)
	if err != nil || u.Host == "" || strings.ContainsAny(u.Host, " ") {
		return "", false
	}
	return candidate, true
}

func validSuffix(s string) bool {
	for _, v := range Suffixes {
		if s == v {
			return true
		}
	}
	return false
}
