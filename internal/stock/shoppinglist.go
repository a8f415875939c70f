package stock

import "github.com/luanafs/pantry-api/internal/repository"

// Candidates returns the products that should surface on the shopping-list
// view: exhausted items, and only those.
func Candidates(products []repository.Product) []repository.Product {
	out := []repository.Product{}
	for _, p := range products {
		if IsExhausted(p) {
			out = append(out, p)
		}
	}
	return out
}

// ListItem wraps a persisted shopping-list row with the session's
// ephemeral purchased flag.  The flag is never written back to the store;
// it lives only for the duration of a shopping session.
type ListItem struct {
	repository.ShoppingItem
	IsPurchased bool `json:"is_purchased"`
}

// Session is the ephemeral state of one shopping run: which rows were
// ticked off and any in-flight quantity corrections ("I actually bought 3,
// not 2").  It is held per user in the session store and discarded when the
// purchase is finished.
type Session struct {
	Purchased  map[uint64]bool   `json:"purchased"`
	Quantities map[uint64]uint32 `json:"quantities"`
}

// NewSession returns an empty shopping session.
func NewSession() *Session {
	return &Session{
		Purchased:  map[uint64]bool{},
		Quantities: map[uint64]uint32{},
	}
}

// MarkPurchased moves one item from pending to purchased.  It reports
// whether the state changed; marking an already-purchased item is a no-op.
func (s *Session) MarkPurchased(id uint64) bool {
	if s.Purchased[id] {
		return false
	}
	s.Purchased[id] = true
	return true
}

// UpdateQuantity records a quantity correction for one pending item.  It
// reports false for items already marked purchased: their quantity is
// settled.
func (s *Session) UpdateQuantity(id uint64, quantity uint32) bool {
	if s.Purchased[id] {
		return false
	}
	s.Quantities[id] = quantity
	return true
}

// Apply layers the session state onto fetched rows, preserving store order.
func (s *Session) Apply(items []repository.ShoppingItem) []ListItem {
	out := make([]ListItem, 0, len(items))
	for _, it := range items {
		if q, ok := s.Quantities[it.ID]; ok {
			it.Quantity = q
		}
		out = append(out, ListItem{ShoppingItem: it, IsPurchased: s.Purchased[it.ID]})
	}
	return out
}

// Project splits the fetched rows into the pending and purchased views.
func (s *Session) Project(items []repository.ShoppingItem) (pending, purchased []ListItem) {
	pending, purchased = []ListItem{}, []ListItem{}
	for _, it := range s.Apply(items) {
		if it.IsPurchased {
			purchased = append(purchased, it)
		} else {
			pending = append(pending, it)
		}
	}
	return pending, purchased
}

// PendingIDs returns the ids still pending at call time.  This is the exact
// set a finished purchase deletes, regardless of any quantity edits made to
// those ids beforehand.
func (s *Session) PendingIDs(items []repository.ShoppingItem) []uint64 {
	ids := []uint64{}
	for _, it := range items {
		if !s.Purchased[it.ID] {
			ids = append(ids, it.ID)
		}
	}
	return ids
}
