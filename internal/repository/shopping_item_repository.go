package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// ShoppingItem mirrors the 'shopping_items' table: the replenishment list
// kept separately from the pantry.  Rows live only until a purchase run is
// finished, at which point they are batch deleted.  The ephemeral purchased
// flag is never persisted here; it lives in the session store.
type ShoppingItem struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	Name      string    `json:"name"`
	Quantity  uint32    `json:"quantity"`
	Suffix    string    `json:"suffix"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrItemNotFound indicates a shopping-list row was not located in the DB.
var ErrItemNotFound = errors.New("shopping item not found")

// ShoppingItemRepo manages persistence for shopping-list rows.
type ShoppingItemRepo struct {
	db *sql.DB
}

// NewShoppingItemRepo constructs a ShoppingItemRepo with the given DB handle.
func NewShoppingItemRepo(db *sql.DB) *ShoppingItemRepo {
	return &ShoppingItemRepo{db: db}
}

const itemColumns = "id, user_id, name, quantity, suffix, link, created_at"

// Create inserts a new shopping-list row and reads it back for the
// generated ID and timestamp.
func (r *ShoppingItemRepo) Create(ctx context.Context, it *ShoppingItem) error {
	const q = "INSERT INTO shopping_items (user_id, name, quantity, suffix, link) VALUES (?, ?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, it.UserID, it.Name, it.Quantity, it.Suffix, nullStr(it.Link))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	const sel = "SELECT " + itemColumns + " FROM shopping_items WHERE id = ?"
	return scanItem(r.db.QueryRowContext(ctx, sel, it.ID).Scan, it)
}

// GetByIDAndOwner retrieves one row by id for the given owner.
func (r *ShoppingItemRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*ShoppingItem, error) {
	const q = "SELECT " + itemColumns + " FROM shopping_items WHERE id = ? AND user_id = ?"
	var it ShoppingItem
	if err := scanItem(r.db.QueryRowContext(ctx, q, id, ownerID).Scan, &it); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &it, nil
}

// ListByOwner returns the owner's shopping list in insertion order.  An
// empty list is a valid state and yields an empty slice.
func (r *ShoppingItemRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]ShoppingItem, error) {
	const q = "SELECT " + itemColumns + " FROM shopping_items WHERE user_id = ? ORDER BY created_at ASC, id ASC"
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []ShoppingItem{}
	for rows.Next() {
		var it ShoppingItem
		if err := scanItem(rows.Scan, &it); err != nil {
			return nil, err
		}
		result = append(result, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteByIDs removes the given set of rows for one owner in a single
// set-membership delete.  It returns the number of rows removed; ids not
// belonging to the owner are silently skipped.  An empty id set is a no-op.
func (r *ShoppingItemRepo) DeleteByIDs(ctx context.Context, ownerID uint64, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	q := "DELETE FROM shopping_items WHERE user_id = ? AND id IN (" + placeholders + ")"
	args := make([]any, 0, len(ids)+1)
	args = append(args, ownerID)
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func scanItem(scan func(dest ...any) error, it *ShoppingItem) error {
	var link sql.NullString
	if err := scan(&it.ID, &it.UserID, &it.Name, &it.Quantity, &it.Suffix, &link, &it.CreatedAt); err != nil {
		return err
	}
	it.Link = link.String
	return nil
}
