// This file defines the Product model and repository for the marketplace
// catalog. Write operations are always scoped by the owning shop so one
// storefront can never mutate another's inventory; public reads expose
// listing, slug lookup, filtering, keyword search and related-product
// queries with page-based pagination.
package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/gosimple/slug"
)

// Product represents a row in the `products` table. Prices are stored in
// cents to avoid floating point arithmetic on money.
type Product struct {
	ID           uint64 // products.id
	ShopID       uint64 // products.shop_id (owning storefront)
	Name         string // products.name
	Slug         string // products.slug
	Description  string // products.description
	PriceCents   uint64 // products.price_cents
	CategoryID   uint64 // products.category_id
	Quantity     uint32 // products.quantity (stock on hand)
	ReorderLevel uint32 // products.reorder_level
	PhotoURL     string // products.photo_url
	CreatedAt    string // products.created_at
	UpdatedAt    string // products.updated_at
}

// ProductPageSize is the page size of the public paginated listing.
const ProductPageSize = 6

// ProductRepo encapsulates all database queries related to products.
type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = "id, shop_id, name, slug, description, price_cents, category_id, quantity, reorder_level, photo_url, created_at, updated_at"

func scanProduct(scan func(dest ...any) error) (*Product, error) {
	p := new(Product)
	err := scan(&p.ID, &p.ShopID, &p.Name, &p.Slug, &p.Description, &p.PriceCents,
		&p.CategoryID, &p.Quantity, &p.ReorderLevel, &p.PhotoURL, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Create inserts a product for a shop. The slug is derived from the name;
// a duplicate slug within the shop maps to ErrDuplicate.
func (r *ProductRepo) Create(ctx context.Context, p *Product) error {
	p.Slug = slug.Make(p.Name)
	const q = `INSERT INTO products
	           (shop_id, name, slug, description, price_cents, category_id, quantity, reorder_level, photo_url)
	           VALUES (?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q, p.ShopID, p.Name, p.Slug, p.Description,
		p.PriceCents, p.CategoryID, p.Quantity, p.ReorderLevel, p.PhotoURL)
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

// Update rewrites the mutable fields of a product if it belongs to the
// given shop. ErrNotFound covers both a missing row and foreign ownership.
func (r *ProductRepo) Update(ctx context.Context, id, shopID uint64, p *Product) error {
	p.Slug = slug.Make(p.Name)
	const q = `UPDATE products
	           SET name=?, slug=?, description=?, price_cents=?, category_id=?, quantity=?, reorder_level=?, photo_url=?
	           WHERE id=? AND shop_id=?`
	res, err := r.db.ExecContext(ctx, q, p.Name, p.Slug, p.Description, p.PriceCents,
		p.CategoryID, p.Quantity, p.ReorderLevel, p.PhotoURL, id, shopID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateQuantity sets the stock quantity of a product owned by the shop.
func (r *ProductRepo) UpdateQuantity(ctx context.Context, id, shopID uint64, quantity uint32) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE products SET quantity=? WHERE id=? AND shop_id=?", quantity, id, shopID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a product owned by the shop.
func (r *ProductRepo) Delete(ctx context.Context, id, shopID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM products WHERE id=? AND shop_id=?", id, shopID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByShop returns all products of one shop, newest first.
func (r *ProductRepo) ListByShop(ctx context.Context, shopID uint64) ([]*Product, error) {
	const q = "SELECT " + productCols + " FROM products WHERE shop_id=? ORDER BY created_at DESC"
	return r.queryMany(ctx, q, shopID)
}

// ListPage returns one page of the public catalog, newest first.
func (r *ProductRepo) ListPage(ctx context.Context, page int) ([]*Product, error) {
	if page < 1 {
		page = 1
	}
	const q = "SELECT " + productCols + " FROM products ORDER BY created_at DESC LIMIT ? OFFSET ?"
	return r.queryMany(ctx, q, ProductPageSize, (page-1)*ProductPageSize)
}

// GetByID fetches a product by id.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (*Product, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+productCols+" FROM products WHERE id=? LIMIT 1", id)
	p, err := scanProduct(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetBySlug fetches a product by slug.
func (r *ProductRepo) GetBySlug(ctx context.Context, s string) (*Product, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+productCols+" FROM products WHERE slug=? LIMIT 1", s)
	p, err := scanProduct(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// Filter returns products constrained by category ids and an inclusive
// price range in cents. Either constraint may be absent.
func (r *ProductRepo) Filter(ctx context.Context, categoryIDs []uint64, minCents, maxCents uint64) ([]*Product, error) {
	q := "SELECT " + productCols + " FROM products WHERE 1=1"
	var args []any
	if len(categoryIDs) > 0 {
		q += " AND category_id IN (?" + strings.Repeat(",?", len(categoryIDs)-1) + ")"
		for _, id := range categoryIDs {
			args = append(args, id)
		}
	}
	if maxCents > 0 {
		q += " AND price_cents BETWEEN ? AND ?"
		args = append(args, minCents, maxCents)
	}
	q += " ORDER BY created_at DESC"
	return r.queryMany(ctx, q, args...)
}

// Search performs a keyword search over product names and descriptions.
func (r *ProductRepo) Search(ctx context.Context, keyword string) ([]*Product, error) {
	like := "%" + keyword + "%"
	const q = "SELECT " + productCols + " FROM products WHERE name LIKE ? OR description LIKE ? ORDER BY created_at DESC"
	return r.queryMany(ctx, q, like, like)
}

// Related returns up to limit products sharing a category, excluding the
// product itself.
func (r *ProductRepo) Related(ctx context.Context, productID, categoryID uint64, limit int) ([]*Product, error) {
	if limit <= 0 {
		limit = 3
	}
	const q = "SELECT " + productCols + " FROM products WHERE category_id=? AND id<>? ORDER BY created_at DESC LIMIT ?"
	return r.queryMany(ctx, q, categoryID, productID, limit)
}

// Count returns the total number of products in the catalog.
func (r *ProductRepo) Count(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n)
	return n, err
}

func (r *ProductRepo) queryMany(ctx context.Context, q string, args ...any) ([]*Product, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
