package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luanafs/pantry-api/internal/repository"
)

func listFixture() []repository.ShoppingItem {
	return []repository.ShoppingItem{
		{ID: 1, Name: "Rice", Quantity: 2},
		{ID: 2, Name: "Beans", Quantity: 1},
		{ID: 3, Name: "Coffee", Quantity: 1},
	}
}

func TestCandidatesSelectsOnlyExhausted(t *testing.T) {
	products := []repository.Product{
		{ID: 1, Name: "Rice", Quantity: 2, Usage: 2},
		{ID: 2, Name: "Beans", Quantity: 3, Usage: 1},
		{ID: 3, Name: "Coffee", Quantity: 1, Usage: 1},
	}
	got := Candidates(products)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(1), got[0].ID)
	assert.Equal(t, uint64(3), got[1].ID)
}

func TestMarkPurchasedIsIdempotent(t *testing.T) {
	s := NewSession()
	assert.True(t, s.MarkPurchased(2))
	assert.False(t, s.MarkPurchased(2), "second mark is a no-op")

	pending, purchased := s.Project(listFixture())
	require.Len(t, purchased, 1)
	assert.Equal(t, uint64(2), purchased[0].ID)
	require.Len(t, pending, 2)
	assert.Equal(t, uint64(1), pending[0].ID)
	assert.Equal(t, uint64(3), pending[1].ID)
}

func TestUpdateQuantityOverlaysPendingItems(t *testing.T) {
	s := NewSession()
	require.True(t, s.UpdateQuantity(1, 5))

	items := s.Apply(listFixture())
	assert.Equal(t, uint32(5), items[0].Quantity, "session override wins over the stored row")
	assert.Equal(t, uint32(1), items[1].Quantity)
}

func TestUpdateQuantityRejectedOncePurchased(t *testing.T) {
	s := NewSession()
	s.MarkPurchased(1)
	assert.False(t, s.UpdateQuantity(1, 5), "a purchased item's quantity is settled")
}

func TestPendingIDsIgnoresQuantityEdits(t *testing.T) {
	s := NewSession()
	s.MarkPurchased(2)
	s.UpdateQuantity(1, 9)

	ids := s.PendingIDs(listFixture())
	assert.Equal(t, []uint64{1, 3}, ids,
		"finish deletes exactly the pending ids, quantity edits notwithstanding")
}

func TestProjectEmptyListIsValid(t *testing.T) {
	s := NewSession()
	pending, purchased := s.Project(nil)
	assert.Empty(t, pending)
	assert.Empty(t, purchased)
	assert.Empty(t, s.PendingIDs(nil))
}
