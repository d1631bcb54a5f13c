package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/serandib/plaza/internal/model"
	"github.com/serandib/plaza/internal/utils"
)

// UserRepo encapsulates all database access for end-user principals,
// including the password reset token lifecycle.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id, fullname, email, password_hash, dob, phone, address, shopping_preference, photo_url, role, reset_token_hash, reset_token_expires_at, created_at, updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Fullname, &u.Email, &u.PasswordHash, &u.DOB, &u.Phone,
		&u.Address, &u.ShoppingPreference, &u.PhotoURL, &u.Role, &u.ResetTokenHash,
		&u.ResetTokenExpiresAt, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a user and returns its ID. The password is hashed here so
// a plaintext value never travels further than this call.
func (r *UserRepo) Create(ctx context.Context, u model.User, password string, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (fullname, email, password_hash, dob, phone, address, shopping_preference, photo_url, role) VALUES (?,?,?,?,?,?,?,?,?)",
		u.Fullname, u.Email, hash, u.DOB, u.Phone, u.Address, u.ShoppingPreference, u.PhotoURL, u.Role)
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

// CreateFederated inserts a user for a federated identity. The stored
// credential is a random throwaway value, so the row cannot be logged into
// with a password until the account holder sets one through reset.
func (r *UserRepo) CreateFederated(ctx context.Context, fullname, email, photoURL string, cost int) (uint64, error) {
	random, err := utils.NewResetToken(0)
	if err != nil {
		return 0, err
	}
	u := model.User{
		Fullname: fullname,
		Email:    email,
		PhotoURL: photoURL,
		Role:     model.RoleUser,
	}
	return r.Create(ctx, u, random.Raw, cost)
}

// GetByEmail fetches a user by email. Emails are stored as given at
// registration; lookup is exact.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

// UpdateProfile updates the mutable profile fields of a user. An empty
// newPasswordHash leaves the stored credential untouched.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, u model.User, newPasswordHash string) error {
	var res sql.Result
	var err error
	if newPasswordHash != "" {
		res, err = r.DB.ExecContext(ctx,
			"UPDATE users SET fullname=?, email=?, dob=?, phone=?, address=?, shopping_preference=?, password_hash=? WHERE id=?",
			u.Fullname, u.Email, u.DOB, u.Phone, u.Address, u.ShoppingPreference, newPasswordHash, id)
	} else {
		res, err = r.DB.ExecContext(ctx,
			"UPDATE users SET fullname=?, email=?, dob=?, phone=?, address=?, shopping_preference=? WHERE id=?",
			u.Fullname, u.Email, u.DOB, u.Phone, u.Address, u.ShoppingPreference, id)
	}
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is also zero when the update is a no-op, so confirm
		// the row exists before reporting not found.
		if _, gerr := r.GetByID(ctx, id); gerr != nil {
			return gerr
		}
	}
	return nil
}

// Delete removes a user row.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll returns every user. Admin use only; callers must not expose the
// credential or reset columns.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userCols+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Fullname, &u.Email, &u.PasswordHash, &u.DOB, &u.Phone,
			&u.Address, &u.ShoppingPreference, &u.PhotoURL, &u.Role, &u.ResetTokenHash,
			&u.ResetTokenExpiresAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Count returns the total number of users.
func (r *UserRepo) Count(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

// SetResetToken stores the digest and expiry of a newly issued reset token,
// overwriting any previously pending token so that at most one is
// outstanding per user.
func (r *UserRepo) SetResetToken(ctx context.Context, id uint64, tokenHash string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token_hash=?, reset_token_expires_at=? WHERE id=?",
		tokenHash, expiresAt, id)
	return err
}

// RedeemResetToken sets a new password hash and clears the pending token in
// one conditional UPDATE. The WHERE clause checks digest and expiry, so two
// concurrent redemptions of the same token cannot both succeed: the second
// one matches zero rows. Returns ErrTokenInvalid when nothing matched,
// without distinguishing wrong token, expired token or unknown email.
func (r *UserRepo) RedeemResetToken(ctx context.Context, email, tokenHash, newPasswordHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, reset_token_hash=NULL, reset_token_expires_at=NULL WHERE email=? AND reset_token_hash=? AND reset_token_expires_at > UTC_TIMESTAMP()",
		newPasswordHash, email, tokenHash)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTokenInvalid
	}
	return nil
}
