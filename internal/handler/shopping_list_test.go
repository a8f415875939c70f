package handler

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luanafs/pantry-api/internal/queue"
	"github.com/luanafs/pantry-api/internal/repository"
	"github.com/luanafs/pantry-api/internal/stock"
)

// stubSessionStore drives the finish flow without Redis.  Clear can be
// made to fail to exercise the post-commit error path.
type stubSessionStore struct {
	sess     *stock.Session
	clearErr error
	cleared  bool
}

func (s *stubSessionStore) Load(context.Context, uint64) (*stock.Session, error) {
	if s.sess == nil {
		return stock.NewSession(), nil
	}
	return s.sess, nil
}

func (s *stubSessionStore) Save(_ context.Context, _ uint64, sess *stock.Session) error {
	s.sess = sess
	return nil
}

func (s *stubSessionStore) Clear(context.Context, uint64) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	s.cleared = true
	return nil
}

const itemListQuery = "SELECT id, user_id, name, quantity, suffix, link, created_at FROM shopping_items WHERE user_id = ? ORDER BY created_at ASC, id ASC"

func expectTwoPendingRows(mock sqlmock.Sqlmock) {
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "quantity", "suffix", "link", "created_at"}).
		AddRow(1, 42, "Rice", 2, "KG", nil, now).
		AddRow(2, 42, "Beans", 1, "KG", nil, now)
	mock.ExpectQuery(regexp.QuoteMeta(itemListQuery)).WithArgs(uint64(42)).WillReturnRows(rows)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM shopping_items WHERE user_id = ? AND id IN (?,?)")).
		WithArgs(uint64(42), uint64(1), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))
}

func newFinishHandler(t *testing.T, store *stubSessionStore) (*ShoppingListHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	h := NewShoppingListHandler(repository.NewShoppingItemRepo(db), repository.NewProductRepo(db), store)
	return h, mock
}

func TestFinishDeletesPendingAndPublishes(t *testing.T) {
	store := &stubSessionStore{}
	h, mock := newFinishHandler(t, store)
	expectTwoPendingRows(mock)

	var published queue.PurchaseFinishedEvent
	h.Publish = func(_ context.Context, ev queue.PurchaseFinishedEvent) error {
		published = ev
		return nil
	}

	c, rec := newRequestContext(t, http.MethodPost, "/v1/shopping-list/finish", `{"price":"50,00"}`)
	require.NoError(t, h.Finish(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uint64{1, 2}, published.ItemIDs)
	assert.Equal(t, []string{"Rice", "Beans"}, published.ItemNames)
	assert.Equal(t, 2, published.ItemCount)
	require.NotNil(t, published.TotalPriceCents)
	assert.Equal(t, int64(5000), *published.TotalPriceCents)
	assert.True(t, store.cleared, "a finished run discards the session")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinishSucceedsWhenSessionClearFails(t *testing.T) {
	store := &stubSessionStore{clearErr: errors.New("store unavailable")}
	h, mock := newFinishHandler(t, store)
	expectTwoPendingRows(mock)
	h.Publish = func(context.Context, queue.PurchaseFinishedEvent) error { return nil }

	c, rec := newRequestContext(t, http.MethodPost, "/v1/shopping-list/finish", `{}`)
	require.NoError(t, h.Finish(c))

	// The batch delete already committed; a failed session clear must not
	// turn a finished purchase into an error response.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deleted":2`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinishSurvivesPublishFailure(t *testing.T) {
	store := &stubSessionStore{}
	h, mock := newFinishHandler(t, store)
	expectTwoPendingRows(mock)
	h.Publish = func(context.Context, queue.PurchaseFinishedEvent) error {
		return errors.New("broker down")
	}

	c, rec := newRequestContext(t, http.MethodPost, "/v1/shopping-list/finish", `{}`)
	require.NoError(t, h.Finish(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, store.cleared)
	assert.NoError(t, mock.ExpectationsWereMet())
}
