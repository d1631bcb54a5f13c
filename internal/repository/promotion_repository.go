// This file defines the Promotion model and repository. Promotions belong
// to a shop, carry a discount definition and a validity window, and are
// browsable publicly while active.
package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// Promotion represents a row in the `promotions` table.
type Promotion struct {
	ID            uint64    // promotions.id
	ShopID        uint64    // promotions.shop_id
	Title         string    // promotions.title
	Slug          string    // promotions.slug
	Description   string    // promotions.description
	DiscountType  string    // promotions.discount_type ("percentage" | "fixed")
	DiscountValue uint32    // promotions.discount_value (percent or cents per type)
	StartDate     time.Time // promotions.start_date
	EndDate       time.Time // promotions.end_date
	Terms         string    // promotions.terms
	PromoCode     string    // promotions.promo_code
	ImageURL      string    // promotions.image_url
	IsActive      bool      // promotions.is_active
}

// PromotionRepo encapsulates all database queries related to promotions.
type PromotionRepo struct {
	db *sql.DB
}

func NewPromotionRepo(db *sql.DB) *PromotionRepo { return &PromotionRepo{db: db} }

const promoCols = "id, shop_id, title, slug, description, discount_type, discount_value, start_date, end_date, terms, promo_code, image_url, is_active"

func scanPromotion(scan func(dest ...any) error) (*Promotion, error) {
	p := new(Promotion)
	err := scan(&p.ID, &p.ShopID, &p.Title, &p.Slug, &p.Description, &p.DiscountType,
		&p.DiscountValue, &p.StartDate, &p.EndDate, &p.Terms, &p.PromoCode, &p.ImageURL, &p.IsActive)
	return p, err
}

// Create inserts a promotion for a shop with a slug derived from the title.
func (r *PromotionRepo) Create(ctx context.Context, p *Promotion) error {
	p.Slug = slug.Make(p.Title)
	const q = `INSERT INTO promotions
	           (shop_id, title, slug, description, discount_type, discount_value, start_date, end_date, terms, promo_code, image_url, is_active)
	           VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q, p.ShopID, p.Title, p.Slug, p.Description,
		p.DiscountType, p.DiscountValue, p.StartDate, p.EndDate, p.Terms, p.PromoCode,
		p.ImageURL, p.IsActive)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// Update rewrites a promotion if it belongs to the given shop.
func (r *PromotionRepo) Update(ctx context.Context, id, shopID uint64, p *Promotion) error {
	p.Slug = slug.Make(p.Title)
	const q = `UPDATE promotions
	           SET title=?, slug=?, description=?, discount_type=?, discount_value=?, start_date=?, end_date=?, terms=?, promo_code=?, image_url=?, is_active=?
	           WHERE id=? AND shop_id=?`
	res, err := r.db.ExecContext(ctx, q, p.Title, p.Slug, p.Description, p.DiscountType,
		p.DiscountValue, p.StartDate, p.EndDate, p.Terms, p.PromoCode, p.ImageURL,
		p.IsActive, id, shopID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a promotion owned by the shop.
func (r *PromotionRepo) Delete(ctx context.Context, id, shopID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM promotions WHERE id=? AND shop_id=?", id, shopID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActive returns promotions that are flagged active and inside their
// validity window, newest first.
func (r *PromotionRepo) ListActive(ctx context.Context) ([]*Promotion, error) {
	const q = "SELECT " + promoCols + " FROM promotions WHERE is_active=1 AND start_date<=UTC_TIMESTAMP() AND end_date>=UTC_TIMESTAMP() ORDER BY start_date DESC"
	return r.queryMany(ctx, q)
}

// ListByShop returns all promotions of one shop regardless of state.
func (r *PromotionRepo) ListByShop(ctx context.Context, shopID uint64) ([]*Promotion, error) {
	const q = "SELECT " + promoCols + " FROM promotions WHERE shop_id=? ORDER BY start_date DESC"
	return r.queryMany(ctx, q, shopID)
}

// GetBySlug fetches a promotion by slug.
func (r *PromotionRepo) GetBySlug(ctx context.Context, s string) (*Promotion, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+promoCols+" FROM promotions WHERE slug=? LIMIT 1", s)
	p, err := scanPromotion(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// Count returns the total number of promotions.
func (r *PromotionRepo) Count(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM promotions").Scan(&n)
	return n, err
}

func (r *PromotionRepo) queryMany(ctx context.Context, q string, args ...any) ([]*Promotion, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Promotion
	for rows.Next() {
		p, err := scanPromotion(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
