// Lost-and-found reports are filed by signed-in visitors and browsable by
// everyone. A claim notification registers a finder's contact details
// against a report so the reporter can be put in touch.
package repository

import (
	"context"
	"database/sql"
	"time"
)

// LostItem represents a row in the `lost_items` table.
type LostItem struct {
	ID           uint64    // lost_items.id
	ReporterName string    // lost_items.reporter_name
	Phone        string    // lost_items.phone
	ReporterRole string    // lost_items.reporter_role ("lost" | "found")
	Email        string    // lost_items.email
	ItemName     string    // lost_items.item_name
	Description  string    // lost_items.description
	ImageURL     string    // lost_items.image_url
	CreatedAt    time.Time // lost_items.created_at
}

// LostItemNotify represents a row in the `lost_item_notifications` table.
type LostItemNotify struct {
	ID        uint64 // lost_item_notifications.id
	LostItemID uint64 // lost_item_notifications.lost_item_id
	Name      string // lost_item_notifications.name
	Email     string // lost_item_notifications.email
	Phone     string // lost_item_notifications.phone
	Message   string // lost_item_notifications.message
}

// LostFoundRepo encapsulates lost-and-found persistence.
type LostFoundRepo struct {
	db *sql.DB
}

func NewLostFoundRepo(db *sql.DB) *LostFoundRepo { return &LostFoundRepo{db: db} }

const lostItemCols = "id, reporter_name, phone, reporter_role, email, item_name, description, image_url, created_at"

// Create files a report.
func (r *LostFoundRepo) Create(ctx context.Context, it *LostItem) error {
	const q = `INSERT INTO lost_items (reporter_name, phone, reporter_role, email, item_name, description, image_url)
	           VALUES (?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q, it.ReporterName, it.Phone, it.ReporterRole,
		it.Email, it.ItemName, it.Description, it.ImageURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	return nil
}

// ListAll returns all reports, newest first. An optional keyword narrows by
// item name.
func (r *LostFoundRepo) ListAll(ctx context.Context, keyword string) ([]*LostItem, error) {
	q := "SELECT " + lostItemCols + " FROM lost_items"
	var args []any
	if keyword != "" {
		q += " WHERE item_name LIKE ?"
		args = append(args, "%"+keyword+"%")
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*LostItem
	for rows.Next() {
		it := new(LostItem)
		if err := rows.Scan(&it.ID, &it.ReporterName, &it.Phone, &it.ReporterRole,
			&it.Email, &it.ItemName, &it.Description, &it.ImageURL, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// GetByID fetches one report.
func (r *LostFoundRepo) GetByID(ctx context.Context, id uint64) (*LostItem, error) {
	it := new(LostItem)
	err := r.db.QueryRowContext(ctx,
		"SELECT "+lostItemCols+" FROM lost_items WHERE id=? LIMIT 1", id).
		Scan(&it.ID, &it.ReporterName, &it.Phone, &it.ReporterRole, &it.Email,
			&it.ItemName, &it.Description, &it.ImageURL, &it.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return it, nil
}

// Delete removes a report. Admin callers pass an empty reporterEmail and
// can delete anything; everyone else may only delete their own reports, so
// a mismatch maps to ErrForbidden.
func (r *LostFoundRepo) Delete(ctx context.Context, id uint64, reporterEmail string) error {
	if reporterEmail != "" {
		it, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if it.Email != reporterEmail {
			return ErrForbidden
		}
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM lost_item_notifications WHERE lost_item_id=?", id); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM lost_items WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddNotify registers a claim notification for a report.
func (r *LostFoundRepo) AddNotify(ctx context.Context, n *LostItemNotify) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO lost_item_notifications (lost_item_id, name, email, phone, message) VALUES (?,?,?,?,?)",
		n.LostItemID, n.Name, n.Email, n.Phone, n.Message)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// ListNotify returns all claim notifications for a report.
func (r *LostFoundRepo) ListNotify(ctx context.Context, lostItemID uint64) ([]*LostItemNotify, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, lost_item_id, name, email, phone, message FROM lost_item_notifications WHERE lost_item_id=? ORDER BY id",
		lostItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*LostItemNotify
	for rows.Next() {
		n := new(LostItemNotify)
		if err := rows.Scan(&n.ID, &n.LostItemID, &n.Name, &n.Email, &n.Phone, &n.Message); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// DeleteNotify removes one claim notification.
func (r *LostFoundRepo) DeleteNotify(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM lost_item_notifications WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
