package handler

import (
    "context"   // provides context with cancellation for DB calls
    "net/http"  // HTTP status codes and primitives
    "time"      // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/serandib/plaza/internal/repository" // DB repositories
)

// AdminHandler exposes the administrative views: account listings and the
// dashboard counters. All routes behind it require the admin role.
type AdminHandler struct {
	Users    *repository.UserRepo
	Shops    *repository.ShopRepo
	Products *repository.ProductRepo
	Promos   *repository.PromotionRepo
}

func NewAdminHandler(u *repository.UserRepo, s *repository.ShopRepo, p *repository.ProductRepo, pr *repository.PromotionRepo) *AdminHandler {
	return &AdminHandler{Users: u, Shops: s, Products: p, Promos: pr}
}

// ListUsers returns every registered end user. Password hashes and reset
// columns stay server-side.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, toUserPart(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// ListShops returns every registered storefront.
func (h *AdminHandler) ListShops(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	shops, err := h.Shops.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]shopPart, 0, len(shops))
	for _, s := range shops {
		out = append(out, toShopPart(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"shops": out})
}

// Dashboard returns the headline counters for the admin landing page.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	shops, err := h.Shops.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	products, err := h.Products.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	promos, err := h.Promos.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user_count":      users,
		"shop_count":      shops,
		"product_count":   products,
		"promotion_count": promos,
	})
}

// DeleteUser removes an end-user account by id.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

// DeleteShop removes a storefront account by id.
func (h *AdminHandler) DeleteShop(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Shops.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "shop not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "shop deleted"})
}
