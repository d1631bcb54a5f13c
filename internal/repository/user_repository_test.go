package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/serandib/plaza/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func userRows(u model.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "fullname", "email", "password_hash", "dob", "phone", "address",
		"shopping_preference", "photo_url", "role", "reset_token_hash",
		"reset_token_expires_at", "created_at", "updated_at",
	}).AddRow(u.ID, u.Fullname, u.Email, u.PasswordHash, u.DOB, u.Phone, u.Address,
		u.ShoppingPreference, u.PhotoURL, u.Role, nil, nil, time.Now(), time.Now())
}

func TestUserRepoCreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry"))

	_, err := repo.Create(context.Background(), model.User{Email: "a@b.lk"}, "password1", 4)
	if err != ErrEmailExists {
		t.Errorf("err = %v, want ErrEmailExists", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUserRepoGetByEmailNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("ghost@plaza.lk").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByEmail(context.Background(), "ghost@plaza.lk"); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUserRepoGetByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	want := model.User{ID: 7, Fullname: "Nimal", Email: "nimal@plaza.lk", PasswordHash: "$2a$x", Role: model.RoleUser}
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=")).
		WithArgs("nimal@plaza.lk").
		WillReturnRows(userRows(want))

	got, err := repo.GetByEmail(context.Background(), "nimal@plaza.lk")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != want.ID || got.Email != want.Email || got.Role != want.Role {
		t.Errorf("got %+v, want id/email/role of %+v", got, want)
	}
}

func TestUserRepoSetResetToken(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	exp := time.Now().UTC().Add(30 * time.Minute)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET reset_token_hash=?, reset_token_expires_at=? WHERE id=?")).
		WithArgs("digest", exp, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetResetToken(context.Background(), 7, "digest", exp); err != nil {
		t.Fatalf("SetResetToken: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUserRepoRedeemResetToken(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	const q = "UPDATE users SET password_hash=?, reset_token_hash=NULL, reset_token_expires_at=NULL WHERE email=? AND reset_token_hash=? AND reset_token_expires_at > UTC_TIMESTAMP()"
	mock.ExpectExec(regexp.QuoteMeta(q)).
		WithArgs("$2a$new", "nimal@plaza.lk", "digest").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.RedeemResetToken(context.Background(), "nimal@plaza.lk", "digest", "$2a$new")
	if err != nil {
		t.Fatalf("RedeemResetToken: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// A redemption that matches no row (wrong digest, expired, already used or
// unknown email) must come back as ErrTokenInvalid with nothing changed.
func TestUserRepoRedeemResetTokenNoMatch(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash=")).
		WithArgs("$2a$new", "nimal@plaza.lk", "wrong-digest").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.RedeemResetToken(context.Background(), "nimal@plaza.lk", "wrong-digest", "$2a$new")
	if err != ErrTokenInvalid {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestUserRepoDeleteNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id=?")).
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 99); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
