package handler

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/serandib/plaza/internal/model"
	"github.com/serandib/plaza/internal/repository"
	"github.com/serandib/plaza/internal/utils"
)

// stubMailer records the reset links handed to it instead of queuing mail.
type stubMailer struct {
	emails []string
	links  []string
}

func (m *stubMailer) SendPasswordReset(_ context.Context, email, resetURL string) error {
	m.emails = append(m.emails, email)
	m.links = append(m.links, resetURL)
	return nil
}

func TestResetRequestKnownUser(t *testing.T) {
	db, mock := newMock(t)
	mailer := &stubMailer{}
	h := NewResetHandler(testConfig(), repository.NewUserRepo(db), repository.NewShopRepo(db), mailer)
	e := echo.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=")).
		WithArgs("nimal@plaza.lk").
		WillReturnRows(userRow(7, "nimal@plaza.lk", "$2a$x", model.RoleUser))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET reset_token_hash=")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := postJSON(e, "/api/v1/auth/reset/request", `{"email":"nimal@plaza.lk"}`)
	if err := h.Request(c); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(mailer.links) != 1 {
		t.Fatalf("mailer called %d times, want 1", len(mailer.links))
	}
	if mailer.emails[0] != "nimal@plaza.lk" {
		t.Errorf("mailed %q, want nimal@plaza.lk", mailer.emails[0])
	}
	// The link carries the raw 64-hex-char token, not its digest.
	if !strings.Contains(mailer.links[0], "token=") {
		t.Errorf("link = %q, want embedded token", mailer.links[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// Requests for known and unknown emails must return identical responses.
// For an unknown email nothing is written and no mail is sent.
func TestResetRequestIndistinguishable(t *testing.T) {
	e := echo.New()

	db1, mock1 := newMock(t)
	known := &stubMailer{}
	h1 := NewResetHandler(testConfig(), repository.NewUserRepo(db1), repository.NewShopRepo(db1), known)
	mock1.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=")).
		WithArgs("nimal@plaza.lk").
		WillReturnRows(userRow(7, "nimal@plaza.lk", "$2a$x", model.RoleUser))
	mock1.ExpectExec(regexp.QuoteMeta("UPDATE users SET reset_token_hash=")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	c1, rec1 := postJSON(e, "/api/v1/auth/reset/request", `{"email":"nimal@plaza.lk"}`)
	if err := h1.Request(c1); err != nil {
		t.Fatalf("Request: %v", err)
	}

	db2, mock2 := newMock(t)
	unknown := &stubMailer{}
	h2 := NewResetHandler(testConfig(), repository.NewUserRepo(db2), repository.NewShopRepo(db2), unknown)
	expectNoUser(mock2, "ghost@plaza.lk")
	expectNoShop(mock2, "ghost@plaza.lk")
	c2, rec2 := postJSON(e, "/api/v1/auth/reset/request", `{"email":"ghost@plaza.lk"}`)
	if err := h2.Request(c2); err != nil {
		t.Fatalf("Request: %v", err)
	}

	if rec1.Code != rec2.Code {
		t.Errorf("status = (%d,%d), want equal", rec1.Code, rec2.Code)
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Errorf("bodies differ:\n  known: %s\n  unknown: %s", rec1.Body.String(), rec2.Body.String())
	}
	if len(unknown.links) != 0 {
		t.Errorf("mailer called for unknown email: %v", unknown.links)
	}
	if err := mock2.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// A shop email gets the same flow through the shops table.
func TestResetRequestShop(t *testing.T) {
	db, mock := newMock(t)
	mailer := &stubMailer{}
	h := NewResetHandler(testConfig(), repository.NewUserRepo(db), repository.NewShopRepo(db), mailer)
	e := echo.New()

	expectNoUser(mock, "shop@plaza.lk")
	mock.ExpectQuery(regexp.QuoteMeta("FROM shops WHERE email=")).
		WithArgs("shop@plaza.lk").
		WillReturnRows(shopRow(3, "shop@plaza.lk", "$2a$x"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE shops SET reset_token_hash=")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := postJSON(e, "/api/v1/auth/reset/request", `{"email":"shop@plaza.lk"}`)
	if err := h.Request(c); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(mailer.links) != 1 {
		t.Errorf("mailer called %d times, want 1", len(mailer.links))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestResetPerform(t *testing.T) {
	db, mock := newMock(t)
	h := NewResetHandler(testConfig(), repository.NewUserRepo(db), repository.NewShopRepo(db), &stubMailer{})
	e := echo.New()

	raw := strings.Repeat("ab", 32)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash=")).
		WithArgs(sqlmock.AnyArg(), "nimal@plaza.lk", utils.HashResetRaw(raw)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := postJSON(e, "/api/v1/auth/reset/perform", `{
		"email":"nimal@plaza.lk","token":"`+raw+`",
		"new_password":"newpassword1","confirm_password":"newpassword1"}`)
	if err := h.Perform(c); err != nil {
		t.Fatalf("Perform: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// A mismatched confirmation fails before anything touches the database.
func TestResetPerformPasswordMismatch(t *testing.T) {
	db, mock := newMock(t)
	h := NewResetHandler(testConfig(), repository.NewUserRepo(db), repository.NewShopRepo(db), &stubMailer{})
	e := echo.New()

	c, rec := postJSON(e, "/api/v1/auth/reset/perform", `{
		"email":"nimal@plaza.lk","token":"sometoken",
		"new_password":"newpassword1","confirm_password":"different1"}`)
	if err := h.Perform(c); err != nil {
		t.Fatalf("Perform: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	// no SQL expectations were registered: any query would fail here
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// A token that matches no row in either table is rejected, covering wrong
// tokens, expired tokens and second redemptions alike.
func TestResetPerformInvalidToken(t *testing.T) {
	db, mock := newMock(t)
	h := NewResetHandler(testConfig(), repository.NewUserRepo(db), repository.NewShopRepo(db), &stubMailer{})
	e := echo.New()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash=")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE shops SET password_hash=")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	c, rec := postJSON(e, "/api/v1/auth/reset/perform", `{
		"email":"nimal@plaza.lk","token":"stale-token",
		"new_password":"newpassword1","confirm_password":"newpassword1"}`)
	if err := h.Perform(c); err != nil {
		t.Fatalf("Perform: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "invalid or expired") {
		t.Errorf("body = %s, want invalid-token message", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestResetPerformShortPassword(t *testing.T) {
	db, _ := newMock(t)
	h := NewResetHandler(testConfig(), repository.NewUserRepo(db), repository.NewShopRepo(db), &stubMailer{})
	e := echo.New()

	c, rec := postJSON(e, "/api/v1/auth/reset/perform", `{
		"email":"nimal@plaza.lk","token":"sometoken",
		"new_password":"short","confirm_password":"short"}`)
	if err := h.Perform(c); err != nil {
		t.Fatalf("Perform: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
