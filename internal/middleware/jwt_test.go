package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/serandib/plaza/internal/model"
	"github.com/serandib/plaza/internal/utils"
)

func runProtected(t *testing.T, authHeader string, mws ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	if err := h(c); err != nil {
		t.Fatalf("handler chain: %v", err)
	}
	return rec, c
}

func TestJWTAuthValidToken(t *testing.T) {
	tok, err := utils.NewSessionToken("secret", 42, model.RoleShopOwner, 7)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}

	rec, c := runProtected(t, "Bearer "+tok.Token, JWTAuth("secret"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if id, _ := c.Get("user_id").(uint64); id != 42 {
		t.Errorf("user_id = %v, want 42", c.Get("user_id"))
	}
	if role, _ := c.Get("role").(int); role != model.RoleShopOwner {
		t.Errorf("role = %v, want %d", c.Get("role"), model.RoleShopOwner)
	}
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, _ := runProtected(t, "", JWTAuth("secret"))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthWrongSecret(t *testing.T) {
	tok, err := utils.NewSessionToken("other-secret", 42, model.RoleUser, 7)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	rec, _ := runProtected(t, "Bearer "+tok.Token, JWTAuth("secret"))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireRoleAllows(t *testing.T) {
	tok, err := utils.NewSessionToken("secret", 1, model.RoleAdmin, 7)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	rec, _ := runProtected(t, "Bearer "+tok.Token, JWTAuth("secret"), RequireRole(model.RoleAdmin))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRequireRoleRejects(t *testing.T) {
	tok, err := utils.NewSessionToken("secret", 1, model.RoleUser, 7)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	rec, _ := runProtected(t, "Bearer "+tok.Token, JWTAuth("secret"), RequireRole(model.RoleAdmin))
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestRequireRoleMissingRole(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequireRole(model.RoleAdmin)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
