package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/serandib/plaza/internal/model"
)

func TestShopRepoCreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewShopRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO shops")).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry"))

	_, err := repo.Create(context.Background(), model.Shop{Email: "shop@plaza.lk"}, "password1", 4)
	if err != ErrEmailExists {
		t.Errorf("err = %v, want ErrEmailExists", err)
	}
}

// Shops share the reset semantics of users: one conditional UPDATE, zero
// matched rows meaning an unusable token.
func TestShopRepoRedeemResetTokenNoMatch(t *testing.T) {
	db, mock := newMock(t)
	repo := NewShopRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE shops SET password_hash=")).
		WithArgs("$2a$new", "shop@plaza.lk", "digest").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.RedeemResetToken(context.Background(), "shop@plaza.lk", "digest", "$2a$new"); err != ErrTokenInvalid {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestShopRepoRedeemResetToken(t *testing.T) {
	db, mock := newMock(t)
	repo := NewShopRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE shops SET password_hash=")).
		WithArgs("$2a$new", "shop@plaza.lk", "digest").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.RedeemResetToken(context.Background(), "shop@plaza.lk", "digest", "$2a$new"); err != nil {
		t.Fatalf("RedeemResetToken: %v", err)
	}
}
