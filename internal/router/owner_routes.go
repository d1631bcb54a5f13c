package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/serandib/plaza/internal/handler"    // owner handlers
	"github.com/serandib/plaza/internal/middleware" // JWT + role middlewares
	"github.com/serandib/plaza/internal/model"      // role constants
)

// RegisterOwner registers shop-owner endpoints under /api/v1/my.
// All routes require a valid JWT with the shop-owner role; the shop id is
// always taken from the token, never from the path.
func RegisterOwner(e *echo.Echo, p *handler.OwnerProductHandler, pr *handler.OwnerPromotionHandler, jwtSecret string) {
	g := e.Group(
		"/api/v1/my",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleShopOwner),
	)

	// ---- Products ----
	g.POST("/products", p.Create)
	g.GET("/products", p.ListMine)
	g.PUT("/products/:id", p.Update)
	g.PATCH("/products/:id/quantity", p.UpdateQuantity)
	g.DELETE("/products/:id", p.Delete)

	// ---- Promotions ----
	g.POST("/promotions", pr.Create)
	g.GET("/promotions", pr.ListMine)
	g.PUT("/promotions/:id", pr.Update)
	g.DELETE("/promotions/:id", pr.Delete)
}
