package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/serandib/plaza/internal/model"
	"github.com/serandib/plaza/internal/utils"
)

// ShopRepo encapsulates database access for shop-owner principals and their
// storefront profiles. Shops share the login email namespace with users but
// live in their own table; account lookup always probes users first.
type ShopRepo struct{ DB *sql.DB }

func NewShopRepo(db *sql.DB) *ShopRepo { return &ShopRepo{DB: db} }

const shopCols = "id, owner_name, owner_email, owner_contact, password_hash, nic, business_reg_no, tax_id, shop_name, email, business_type, category, description, operating_hours_from, operating_hours_to, location, contact, logo_url, reset_token_hash, reset_token_expires_at, created_at, updated_at"

func scanShop(scan func(dest ...any) error) (model.Shop, error) {
	var s model.Shop
	err := scan(&s.ID, &s.OwnerName, &s.OwnerEmail, &s.OwnerContact, &s.PasswordHash,
		&s.NIC, &s.BusinessRegNo, &s.TaxID, &s.ShopName, &s.Email, &s.BusinessType,
		&s.Category, &s.Description, &s.OperatingHoursFrom, &s.OperatingHoursTo,
		&s.Location, &s.Contact, &s.LogoURL, &s.ResetTokenHash, &s.ResetTokenExpiresAt,
		&s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// Create inserts a shop and returns its ID.
func (r *ShopRepo) Create(ctx context.Context, s model.Shop, password string, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO shops (owner_name, owner_email, owner_contact, password_hash, nic,
		 business_reg_no, tax_id, shop_name, email, business_type, category, description,
		 operating_hours_from, operating_hours_to, location, contact, logo_url)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		s.OwnerName, s.OwnerEmail, s.OwnerContact, hash, s.NIC, s.BusinessRegNo, s.TaxID,
		s.ShopName, s.Email, s.BusinessType, s.Category, s.Description,
		s.OperatingHoursFrom, s.OperatingHoursTo, s.Location, s.Contact, s.LogoURL)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a shop by its login email.
func (r *ShopRepo) GetByEmail(ctx context.Context, email string) (model.Shop, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+shopCols+" FROM shops WHERE email=? LIMIT 1", email)
	s, err := scanShop(row.Scan)
	if err == sql.ErrNoRows {
		return s, ErrNotFound
	}
	return s, err
}

// GetByID fetches a shop by id.
func (r *ShopRepo) GetByID(ctx context.Context, id uint64) (model.Shop, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+shopCols+" FROM shops WHERE id=? LIMIT 1", id)
	s, err := scanShop(row.Scan)
	if err == sql.ErrNoRows {
		return s, ErrNotFound
	}
	return s, err
}

// ListAll returns every shop ordered by id. Callers are responsible for
// stripping credential and reset columns before responding.
func (r *ShopRepo) ListAll(ctx context.Context) ([]model.Shop, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+shopCols+" FROM shops ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Shop
	for rows.Next() {
		s, err := scanShop(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateProfile updates the storefront fields of a shop. An empty
// newPasswordHash leaves the stored credential untouched.
func (r *ShopRepo) UpdateProfile(ctx context.Context, id uint64, s model.Shop, newPasswordHash string) error {
	q := `UPDATE shops SET owner_name=?, owner_email=?, owner_contact=?, nic=?,
	      business_reg_no=?, tax_id=?, shop_name=?, email=?, business_type=?, category=?,
	      description=?, operating_hours_from=?, operating_hours_to=?, location=?, contact=?, logo_url=?`
	args := []any{s.OwnerName, s.OwnerEmail, s.OwnerContact, s.NIC, s.BusinessRegNo,
		s.TaxID, s.ShopName, s.Email, s.BusinessType, s.Category, s.Description,
		s.OperatingHoursFrom, s.OperatingHoursTo, s.Location, s.Contact, s.LogoURL}
	if newPasswordHash != "" {
		q += ", password_hash=?"
		args = append(args, newPasswordHash)
	}
	q += " WHERE id=?"
	args = append(args, id)

	_, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrEmailExists
	}
	return err
}

// Delete removes a shop row.
func (r *ShopRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM shops WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the total number of shops.
func (r *ShopRepo) Count(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM shops").Scan(&n)
	return n, err
}

// SetResetToken stores the digest and expiry of a newly issued reset token,
// replacing any previously pending one.
func (r *ShopRepo) SetResetToken(ctx context.Context, id uint64, tokenHash string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE shops SET reset_token_hash=?, reset_token_expires_at=? WHERE id=?",
		tokenHash, expiresAt, id)
	return err
}

// RedeemResetToken is the shop-side twin of UserRepo.RedeemResetToken: one
// conditional UPDATE that sets the new hash and clears the token only while
// digest and expiry still match.
func (r *ShopRepo) RedeemResetToken(ctx context.Context, email, tokenHash, newPasswordHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE shops SET password_hash=?, reset_token_hash=NULL, reset_token_expires_at=NULL WHERE email=? AND reset_token_hash=? AND reset_token_expires_at > UTC_TIMESTAMP()",
		newPasswordHash, email, tokenHash)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTokenInvalid
	}
	return nil
}
