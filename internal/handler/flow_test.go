package handler

import (
	"database/sql/driver"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/serandib/plaza/internal/model"
	"github.com/serandib/plaza/internal/repository"
	"github.com/serandib/plaza/internal/utils"
)

// Walks the whole account lifecycle: register, log in, request a reset,
// redeem the mailed token, then log in with the new password. The digest
// stored at request time must be exactly the digest matched at perform
// time, proving only the digest of the mailed raw token ever reaches SQL.
func TestRegisterLoginResetScenario(t *testing.T) {
	db, mock := newMock(t)
	users := repository.NewUserRepo(db)
	shops := repository.NewShopRepo(db)
	mailer := &stubMailer{}
	auth := NewAuthHandler(testConfig(), users, shops)
	reset := NewResetHandler(testConfig(), users, shops, mailer)
	e := echo.New()

	const email = "kumar@plaza.lk"

	// 1. Register.
	var registeredHash string
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("Kumar", email, hashArg{&registeredHash}, "1992-03-04", "0712223344",
			"Kandy", "", "", model.RoleUser).
		WillReturnResult(sqlmock.NewResult(7, 1))

	c, rec := postJSON(e, "/api/v1/auth/register", `{
		"fullname":"Kumar","email":"`+email+`","dob":"1992-03-04",
		"phone":"0712223344","address":"Kandy","password":"original-pass1"}`)
	if err := auth.RegisterUser(c); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body.String())
	}
	if !utils.VerifyPassword(registeredHash, "original-pass1") {
		t.Fatal("stored hash does not verify the registered password")
	}

	// 2. Log in with the original password.
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=")).
		WithArgs(email).
		WillReturnRows(userRow(7, email, registeredHash, model.RoleUser))

	c, rec = postJSON(e, "/api/v1/auth/login", `{"email":"`+email+`","password":"original-pass1"}`)
	if err := auth.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}

	// 3. Request a reset and capture the stored digest and mailed token.
	var storedDigest string
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=")).
		WithArgs(email).
		WillReturnRows(userRow(7, email, registeredHash, model.RoleUser))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET reset_token_hash=")).
		WithArgs(stringArg{&storedDigest}, sqlmock.AnyArg(), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec = postJSON(e, "/api/v1/auth/reset/request", `{"email":"`+email+`"}`)
	if err := reset.Request(c); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("reset request status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(mailer.links) != 1 {
		t.Fatalf("mailer called %d times, want 1", len(mailer.links))
	}
	link, err := url.Parse(mailer.links[0])
	if err != nil {
		t.Fatalf("parse mailed link: %v", err)
	}
	raw := link.Query().Get("token")
	if len(raw) != 64 {
		t.Fatalf("mailed token length = %d, want 64", len(raw))
	}
	if utils.HashResetRaw(raw) != storedDigest {
		t.Fatal("stored digest is not the SHA-256 of the mailed token")
	}
	if strings.Contains(mailer.links[0], storedDigest) {
		t.Fatal("mailed link leaks the stored digest")
	}

	// 4. Redeem with the mailed token.
	var newHash string
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash=")).
		WithArgs(hashArg{&newHash}, email, storedDigest).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec = postJSON(e, "/api/v1/auth/reset/perform", `{
		"email":"`+email+`","token":"`+raw+`",
		"new_password":"rotated-pass1","confirm_password":"rotated-pass1"}`)
	if err := reset.Perform(c); err != nil {
		t.Fatalf("Perform: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("reset perform status = %d: %s", rec.Code, rec.Body.String())
	}
	if !utils.VerifyPassword(newHash, "rotated-pass1") {
		t.Fatal("redeemed hash does not verify the new password")
	}

	// 5. Log in with the rotated password.
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=")).
		WithArgs(email).
		WillReturnRows(userRow(7, email, newHash, model.RoleUser))

	c, rec = postJSON(e, "/api/v1/auth/login", `{"email":"`+email+`","password":"rotated-pass1"}`)
	if err := auth.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("login with new password status = %d: %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// hashArg matches any bcrypt-looking argument and records it.
type hashArg struct{ dst *string }

func (a hashArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, "$2") {
		return false
	}
	*a.dst = s
	return true
}

// stringArg matches any string argument and records it.
type stringArg struct{ dst *string }

func (a stringArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	*a.dst = s
	return true
}
