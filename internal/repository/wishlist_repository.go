package repository

import (
	"context"
	"database/sql"
	"strings"
)

// WishlistItem represents a row in the `wishlist_items` table joined with
// product details.
type WishlistItem struct {
	ID          uint64 // wishlist_items.id
	UserID      uint64 // wishlist_items.user_id
	ProductID   uint64 // wishlist_items.product_id
	ProductName string // products.name (join)
	PriceCents  uint64 // products.price_cents (join)
	InStock     uint32 // products.quantity (join)
}

// WishlistRepo encapsulates wishlist persistence. Like carts, wishlists are
// keyed by the user id from the session token.
type WishlistRepo struct {
	db *sql.DB
}

func NewWishlistRepo(db *sql.DB) *WishlistRepo { return &WishlistRepo{db: db} }

// Add inserts a wishlist entry; duplicates map to ErrDuplicate.
func (r *WishlistRepo) Add(ctx context.Context, userID, productID uint64) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO wishlist_items (user_id, product_id) VALUES (?,?)", userID, productID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListByUser returns the user's wishlist joined with product details.
func (r *WishlistRepo) ListByUser(ctx context.Context, userID uint64) ([]*WishlistItem, error) {
	const q = `SELECT wi.id, wi.user_id, wi.product_id, p.name, p.price_cents, p.quantity
	           FROM wishlist_items wi JOIN products p ON p.id = wi.product_id
	           WHERE wi.user_id = ? ORDER BY wi.id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*WishlistItem
	for rows.Next() {
		it := new(WishlistItem)
		if err := rows.Scan(&it.ID, &it.UserID, &it.ProductID,
			&it.ProductName, &it.PriceCents, &it.InStock); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Remove deletes one wishlist entry owned by the user.
func (r *WishlistRepo) Remove(ctx context.Context, itemID, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM wishlist_items WHERE id=? AND user_id=?", itemID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
