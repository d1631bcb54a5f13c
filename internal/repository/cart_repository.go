// Shopping carts are keyed by the owning user id taken from the session
// token, never from request bodies. One row per (user, product); adding a
// product twice is a conflict and quantity changes go through Update.
package repository

import (
	"context"
	"database/sql"
	"strings"
)

// CartItem represents a row in the `cart_items` table joined with the
// product columns the storefront needs to render a cart line.
type CartItem struct {
	ID           uint64 // cart_items.id
	UserID       uint64 // cart_items.user_id
	ProductID    uint64 // cart_items.product_id
	Quantity     uint32 // cart_items.quantity
	ProductName  string // products.name (join)
	PriceCents   uint64 // products.price_cents (join)
	InStock      uint32 // products.quantity (join)
}

// CartRepo encapsulates cart persistence.
type CartRepo struct {
	db *sql.DB
}

func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{db: db} }

// Add inserts a cart line. The unique (user_id, product_id) key makes a
// repeated add surface as ErrDuplicate.
func (r *CartRepo) Add(ctx context.Context, userID, productID uint64, quantity uint32) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO cart_items (user_id, product_id, quantity) VALUES (?,?,?)",
		userID, productID, quantity)
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

// ListByUser returns the user's cart joined with product details.
func (r *CartRepo) ListByUser(ctx context.Context, userID uint64) ([]*CartItem, error) {
	const q = `SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, p.name, p.price_cents, p.quantity
	           FROM cart_items ci JOIN products p ON p.id = ci.product_id
	           WHERE ci.user_id = ? ORDER BY ci.id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*CartItem
	for rows.Next() {
		it := new(CartItem)
		if err := rows.Scan(&it.ID, &it.UserID, &it.ProductID, &it.Quantity,
			&it.ProductName, &it.PriceCents, &it.InStock); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpdateQuantity changes the quantity of one cart line owned by the user.
func (r *CartRepo) UpdateQuantity(ctx context.Context, itemID, userID uint64, quantity uint32) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE cart_items SET quantity=? WHERE id=? AND user_id=?", quantity, itemID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Remove deletes one cart line owned by the user.
func (r *CartRepo) Remove(ctx context.Context, itemID, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE id=? AND user_id=?", itemID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear drops the user's whole cart.
func (r *CartRepo) Clear(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id=?", userID)
	return err
}
