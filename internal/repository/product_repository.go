// Package repository contains the data access layer.  This file defines the
// Product model and repository methods for the pantry table.  A Product is a
// household item being tracked from purchase to exhaustion; every query is
// scoped by the owning user so one household member never sees another's
// pantry.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"       // errors for sentinel definitions
	"strings"      // strings for tag joining and search folding
	"time"         // time for DB timestamp columns

	"github.com/luanafs/pantry-api/internal/form" // form provides the shared tag splitter
)

// Product mirrors the 'products' table.  Tags are stored as a single
// comma-joined column and split on read.  ExpiratedAt holds the normalized
// ISO-8601 string produced by the form layer, stored verbatim so the value
// round-trips unchanged.  CreatedAt/UpdatedAt are DATETIME columns; the
// driver decodes them as UTC time.Time (parseTime=true).
type Product struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"user_id"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand,omitempty"`
	Link        string    `json:"link,omitempty"`
	Quantity    uint32    `json:"quantity"`
	Usage       uint32    `json:"usage"`
	Suffix      string    `json:"suffix"`
	Tags        []string  `json:"tags"`
	Price       *int64    `json:"price,omitempty"`
	Fixed       bool      `json:"fixed"`
	ExpiratedAt string    `json:"expirated_at,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ErrProductNotFound indicates that a product was not located in the DB.
var ErrProductNotFound = errors.New("product not found")

// ErrUsageOutOfRange indicates a usage patch violated 0 <= usage <= quantity.
var ErrUsageOutOfRange = errors.New("usage out of range")

// ProductRepo manages persistence for pantry products.
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepo constructs a ProductRepo with the given DB handle.
func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// productColumns is the shared SELECT column list.  `usage` is backticked
// because it is a reserved word in MySQL.
const productColumns = "id, user_id, name, brand, link, quantity, `usage`, suffix, tags, price, fixed, expirated_at, created_at, updated_at"

// Create inserts a new product and assigns the generated ID back to the
// struct.  Usage always starts at zero; the caller provides the normalized
// form output.  The freshly inserted row is read back to populate
// DB-default fields (created_at, updated_at).
func (r *ProductRepo) Create(ctx context.Context, p *Product) error {
	const q = "INSERT INTO products (user_id, name, brand, link, quantity, `usage`, suffix, tags, price, fixed, expirated_at) VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q,
		p.UserID, p.Name, nullStr(p.Brand), nullStr(p.Link), p.Quantity,
		p.Suffix, strings.Join(p.Tags, ","), nullInt(p.Price), p.Fixed, nullStr(p.ExpiratedAt))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	const sel = "SELECT " + productColumns + " FROM products WHERE id = ?"
	return r.scanOne(r.db.QueryRowContext(ctx, sel, p.ID), p)
}

// GetByIDAndOwner retrieves one product by id for the given owner.  It
// returns ErrProductNotFound when there is no matching row.
func (r *ProductRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*Product, error) {
	const q = "SELECT " + productColumns + " FROM products WHERE id = ? AND user_id = ?"
	var p Product
	if err := r.scanOne(r.db.QueryRowContext(ctx, q, id, ownerID), &p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListByOwner returns all products belonging to the given owner ordered by
// creation time.  An empty pantry yields an empty slice and nil error.
func (r *ProductRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]Product, error) {
	const q = "SELECT " + productColumns + " FROM products WHERE user_id = ? ORDER BY created_at ASC, id ASC"
	return r.list(ctx, q, ownerID)
}

// SearchByName performs a case-folded substring search over product names
// for the given owner.  No match is a valid empty result, not an error.
func (r *ProductRepo) SearchByName(ctx context.Context, ownerID uint64, text string) ([]Product, error) {
	const q = "SELECT " + productColumns + " FROM products WHERE user_id = ? AND LOWER(name) LIKE ? ORDER BY created_at ASC, id ASC"
	return r.list(ctx, q, ownerID, "%"+strings.ToLower(strings.TrimSpace(text))+"%")
}

// UpdateByIDAndOwner applies a full-form edit to a product.  Usage is not a
// form field, but it is clamped to the new quantity so the
// 0 <= usage <= quantity invariant survives a shrinking edit.  When the
// row/ownership doesn't match, ErrProductNotFound is returned.
func (r *ProductRepo) UpdateByIDAndOwner(ctx context.Context, p *Product) error {
	const q = "UPDATE products SET name = ?, brand = ?, link = ?, quantity = ?, `usage` = LEAST(`usage`, ?), suffix = ?, tags = ?, price = ?, fixed = ?, expirated_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?"
	res, err := r.db.ExecContext(ctx, q,
		p.Name, nullStr(p.Brand), nullStr(p.Link), p.Quantity, p.Quantity,
		p.Suffix, strings.Join(p.Tags, ","), nullInt(p.Price), p.Fixed, nullStr(p.ExpiratedAt),
		p.ID, p.UserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Zero rows can mean "missing" or "identical values"; an
		// existence probe tells the two apart.
		var one int
		err := r.db.QueryRowContext(ctx,
			"SELECT 1 FROM products WHERE id = ? AND user_id = ? LIMIT 1", p.ID, p.UserID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}
	}
	const sel = "SELECT " + productColumns + " FROM products WHERE id = ?"
	return r.scanOne(r.db.QueryRowContext(ctx, sel, p.ID), p)
}

// UpdateUsage persists a single-field usage patch.  The SQL predicate
// re-checks the stored quantity so a stale in-memory bound can never push
// usage past it; last write wins between concurrent sessions.
func (r *ProductRepo) UpdateUsage(ctx context.Context, id, ownerID uint64, usage uint32) error {
	const q = "UPDATE products SET `usage` = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ? AND quantity >= ?"
	res, err := r.db.ExecContext(ctx, q, usage, id, ownerID, usage)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var one int
	err = r.db.QueryRowContext(ctx,
		"SELECT 1 FROM products WHERE id = ? AND user_id = ? LIMIT 1", id, ownerID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}
	// Row exists: either the patch exceeded quantity or the value was
	// already set.  Probe the bound to tell the two apart.
	var quantity uint32
	if err := r.db.QueryRowContext(ctx,
		"SELECT quantity FROM products WHERE id = ?", id).Scan(&quantity); err != nil {
		return err
	}
	if usage > quantity {
		return ErrUsageOutOfRange
	}
	return nil
}

// DeleteByIDAndOwner removes one product.  ErrProductNotFound is returned
// when nothing was deleted.
func (r *ProductRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM products WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *ProductRepo) list(ctx context.Context, q string, args ...any) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []Product{}
	for rows.Next() {
		var p Product
		if err := scanProduct(rows.Scan, &p); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *ProductRepo) scanOne(row *sql.Row, p *Product) error {
	return scanProduct(row.Scan, p)
}

// scanProduct maps one row onto a Product, unpacking nullable columns and
// splitting the tags column back into its ordered list.
func scanProduct(scan func(dest ...any) error, p *Product) error {
	var (
		brand, link, expiratedAt sql.NullString
		price                    sql.NullInt64
		tagsCSV                  string
	)
	if err := scan(
		&p.ID, &p.UserID, &p.Name, &brand, &link, &p.Quantity, &p.Usage,
		&p.Suffix, &tagsCSV, &price, &p.Fixed, &expiratedAt, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return err
	}
	p.Brand = brand.String
	p.Link = link.String
	p.ExpiratedAt = expiratedAt.String
	if price.Valid {
		v := price.Int64
		p.Price = &v
	}
	p.Tags = form.SplitTags(tagsCSV)
	return nil
}

// nullStr maps an empty string onto SQL NULL.
func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullInt maps a nil pointer onto SQL NULL.
func nullInt(n *int64) any {
	if n == nil {
		return nil
	}
	return *n
}
