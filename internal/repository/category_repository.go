// This file defines the Category model and repository. Categories are a
// flat, admin-managed taxonomy that products reference by id. Slugs are
// derived from the name and used in public URLs.
package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/gosimple/slug"
)

// Category represents a row in the `categories` table.
type Category struct {
	ID   uint64 // categories.id
	Name string // categories.name (unique)
	Slug string // categories.slug (unique, derived from name)
}

// CategoryRepo encapsulates all database queries related to categories.
type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// Create inserts a category, deriving its slug from the name. Duplicate
// names surface as ErrDuplicate.
func (r *CategoryRepo) Create(ctx context.Context, name string) (*Category, error) {
	c := &Category{Name: name, Slug: slug.Make(name)}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (name, slug) VALUES (?, ?)", c.Name, c.Slug)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	c.ID = uint64(id)
	return c, nil
}

// Update renames a category and regenerates its slug.
func (r *CategoryRepo) Update(ctx context.Context, id uint64, name string) (*Category, error) {
	c := &Category{ID: id, Name: name, Slug: slug.Make(name)}
	res, err := r.db.ExecContext(ctx,
		"UPDATE categories SET name=?, slug=? WHERE id=?", c.Name, c.Slug, id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, gerr := r.GetByID(ctx, id); gerr != nil {
			return nil, gerr
		}
	}
	return c, nil
}

// Delete removes a category.
func (r *CategoryRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll returns all categories ordered by name.
func (r *CategoryRepo) ListAll(ctx context.Context) ([]*Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, slug FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Category
	for rows.Next() {
		c := new(Category)
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetBySlug fetches one category by its slug.
func (r *CategoryRepo) GetBySlug(ctx context.Context, s string) (*Category, error) {
	var c Category
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, slug FROM categories WHERE slug=? LIMIT 1", s).
		Scan(&c.ID, &c.Name, &c.Slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetByID fetches one category by id.
func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (*Category, error) {
	var c Category
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, slug FROM categories WHERE id=? LIMIT 1", id).
		Scan(&c.ID, &c.Name, &c.Slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
