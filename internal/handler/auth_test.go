package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/serandib/plaza/internal/config"
	"github.com/serandib/plaza/internal/model"
	"github.com/serandib/plaza/internal/repository"
	"github.com/serandib/plaza/internal/utils"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      "test-secret",
		SessionTTLDays: 7,
		ResetTTLMin:    30,
		BcryptCost:     4,
		ClientURL:      "http://localhost:3000",
	}
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newAuthHandler(db *sql.DB) *AuthHandler {
	return NewAuthHandler(testConfig(), repository.NewUserRepo(db), repository.NewShopRepo(db))
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := utils.HashPassword(plain, 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return h
}

func userRow(id uint64, email, passwordHash string, role int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "fullname", "email", "password_hash", "dob", "phone", "address",
		"shopping_preference", "photo_url", "role", "reset_token_hash",
		"reset_token_expires_at", "created_at", "updated_at",
	}).AddRow(id, "Test User", email, passwordHash, "1990-01-01", "0771234567",
		"Colombo", "", "", role, nil, nil, time.Now(), time.Now())
}

func shopRow(id uint64, email, passwordHash string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "owner_name", "owner_email", "owner_contact", "password_hash", "nic",
		"business_reg_no", "tax_id", "shop_name", "email", "business_type", "category",
		"description", "operating_hours_from", "operating_hours_to", "location",
		"contact", "logo_url", "reset_token_hash", "reset_token_expires_at",
		"created_at", "updated_at",
	}).AddRow(id, "Owner", "owner@plaza.lk", "0779876543", passwordHash, "NIC123",
		"BR123", "TAX123", "Test Shop", email, "retail", "clothing",
		"", "09:00", "21:00", "Level 2", "0112345678", "", nil, nil,
		time.Now(), time.Now())
}

func expectNoUser(mock sqlmock.Sqlmock, email string) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=")).
		WithArgs(email).WillReturnError(sql.ErrNoRows)
}

func expectNoShop(mock sqlmock.Sqlmock, email string) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM shops WHERE email=")).
		WithArgs(email).WillReturnError(sql.ErrNoRows)
}

func TestLoginUser(t *testing.T) {
	db, mock := newMock(t)
	h := newAuthHandler(db)
	e := echo.New()

	hash := mustHash(t, "password123")
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=")).
		WithArgs("nimal@plaza.lk").
		WillReturnRows(userRow(7, "nimal@plaza.lk", hash, model.RoleUser))

	c, rec := postJSON(e, "/api/v1/auth/login", `{"email":"nimal@plaza.lk","password":"password123"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Token string   `json:"token"`
		Role  int      `json:"role"`
		User  userPart `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Role != model.RoleUser {
		t.Errorf("role = %d, want %d", body.Role, model.RoleUser)
	}
	if body.User.ID != 7 {
		t.Errorf("user id = %d, want 7", body.User.ID)
	}

	id, role, err := utils.ParseSessionToken("test-secret", body.Token)
	if err != nil {
		t.Fatalf("ParseSessionToken: %v", err)
	}
	if id != 7 || role != model.RoleUser {
		t.Errorf("token claims = (%d,%d), want (7,%d)", id, role, model.RoleUser)
	}
}

// An email that exists only in the shops table authenticates as a shop
// owner; the users table is probed first and misses.
func TestLoginShopOwner(t *testing.T) {
	db, mock := newMock(t)
	h := newAuthHandler(db)
	e := echo.New()

	hash := mustHash(t, "shoppass1")
	expectNoUser(mock, "shop@plaza.lk")
	mock.ExpectQuery(regexp.QuoteMeta("FROM shops WHERE email=")).
		WithArgs("shop@plaza.lk").
		WillReturnRows(shopRow(3, "shop@plaza.lk", hash))

	c, rec := postJSON(e, "/api/v1/auth/login", `{"email":"shop@plaza.lk","password":"shoppass1"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Token string   `json:"token"`
		Role  int      `json:"role"`
		Shop  shopPart `json:"shop"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Role != model.RoleShopOwner {
		t.Errorf("role = %d, want %d", body.Role, model.RoleShopOwner)
	}
	if body.Shop.ID != 3 {
		t.Errorf("shop id = %d, want 3", body.Shop.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// When the same email exists in both tables and the password matches the
// user row, login resolves to the user and the shops table is never
// queried.
func TestLoginUserBranchWins(t *testing.T) {
	db, mock := newMock(t)
	h := newAuthHandler(db)
	e := echo.New()

	hash := mustHash(t, "sharedpass")
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=")).
		WithArgs("both@plaza.lk").
		WillReturnRows(userRow(11, "both@plaza.lk", hash, model.RoleUser))
	// no shops expectation: any shops query would fail ExpectationsWereMet

	c, rec := postJSON(e, "/api/v1/auth/login", `{"email":"both@plaza.lk","password":"sharedpass"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"user"`) {
		t.Errorf("body = %s, want user branch", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// A user whose password does not match falls through to the shop space
// before failing, so a shop owner sharing the email can still sign in.
func TestLoginFallsThroughToShop(t *testing.T) {
	db, mock := newMock(t)
	h := newAuthHandler(db)
	e := echo.New()

	userHash := mustHash(t, "user-password")
	shopHash := mustHash(t, "shop-password")
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=")).
		WithArgs("both@plaza.lk").
		WillReturnRows(userRow(11, "both@plaza.lk", userHash, model.RoleUser))
	mock.ExpectQuery(regexp.QuoteMeta("FROM shops WHERE email=")).
		WithArgs("both@plaza.lk").
		WillReturnRows(shopRow(3, "both@plaza.lk", shopHash))

	c, rec := postJSON(e, "/api/v1/auth/login", `{"email":"both@plaza.lk","password":"shop-password"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"shop"`) {
		t.Errorf("body = %s, want shop branch", rec.Body.String())
	}
}

// Unknown email and wrong password must produce byte-identical responses
// so login cannot be used to discover which emails are registered.
func TestLoginFailuresIndistinguishable(t *testing.T) {
	e := echo.New()

	// Case 1: the email exists in neither table.
	db1, mock1 := newMock(t)
	h1 := newAuthHandler(db1)
	expectNoUser(mock1, "ghost@plaza.lk")
	expectNoShop(mock1, "ghost@plaza.lk")
	c1, rec1 := postJSON(e, "/api/v1/auth/login", `{"email":"ghost@plaza.lk","password":"whatever1"}`)
	if err := h1.Login(c1); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Case 2: the email exists but the password is wrong.
	db2, mock2 := newMock(t)
	h2 := newAuthHandler(db2)
	hash := mustHash(t, "the-real-password")
	mock2.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=")).
		WithArgs("nimal@plaza.lk").
		WillReturnRows(userRow(7, "nimal@plaza.lk", hash, model.RoleUser))
	expectNoShop(mock2, "nimal@plaza.lk")
	c2, rec2 := postJSON(e, "/api/v1/auth/login", `{"email":"nimal@plaza.lk","password":"wrong-password"}`)
	if err := h2.Login(c2); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if rec1.Code != http.StatusBadRequest || rec2.Code != http.StatusBadRequest {
		t.Fatalf("status = (%d,%d), want (400,400)", rec1.Code, rec2.Code)
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Errorf("failure bodies differ:\n  unknown email: %s\n  wrong password: %s",
			rec1.Body.String(), rec2.Body.String())
	}
	if !strings.Contains(rec1.Body.String(), genericLoginError) {
		t.Errorf("body = %s, want generic message", rec1.Body.String())
	}
}

func TestRegisterUserDuplicate(t *testing.T) {
	db, mock := newMock(t)
	h := newAuthHandler(db)
	e := echo.New()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errDuplicate1062{})

	c, rec := postJSON(e, "/api/v1/auth/register", `{
		"fullname":"Nimal","email":"nimal@plaza.lk","dob":"1990-01-01",
		"phone":"0771234567","address":"Colombo","password":"password123"}`)
	if err := h.RegisterUser(c); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409: %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterUserMissingField(t *testing.T) {
	db, _ := newMock(t)
	h := newAuthHandler(db)
	e := echo.New()

	c, rec := postJSON(e, "/api/v1/auth/register", `{"fullname":"Nimal","password":"password123"}`)
	if err := h.RegisterUser(c); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "email is required") {
		t.Errorf("body = %s, want field-specific message", rec.Body.String())
	}
}

func TestRegisterUserShortPassword(t *testing.T) {
	db, _ := newMock(t)
	h := newAuthHandler(db)
	e := echo.New()

	c, rec := postJSON(e, "/api/v1/auth/register", `{
		"fullname":"Nimal","email":"nimal@plaza.lk","dob":"1990-01-01",
		"phone":"0771234567","address":"Colombo","password":"short"}`)
	if err := h.RegisterUser(c); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// errDuplicate1062 mimics the MySQL duplicate-key error text the repository
// matches on.
type errDuplicate1062 struct{}

func (errDuplicate1062) Error() string { return "Error 1062 (23000): Duplicate entry" }
