package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/serandib/plaza/internal/handler"    // cart, wishlist and lost-and-found handlers
	"github.com/serandib/plaza/internal/middleware" // JWT + role middlewares
	"github.com/serandib/plaza/internal/model"      // role constants
)

// RegisterCustomer registers end-user shopping routes under /api/v1.
// All routes require a valid session with the end-user role.
func RegisterCustomer(e *echo.Echo, cart *handler.CartHandler, wl *handler.WishlistHandler, lf *handler.LostFoundHandler, jwtSecret string) {
	g := e.Group(
		"/api/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
	)

	// ---- Cart ----
	g.POST("/cart", cart.Add)
	g.GET("/cart", cart.List)
	g.PUT("/cart/:id", cart.UpdateQuantity)
	g.DELETE("/cart/:id", cart.Remove)
	g.DELETE("/cart", cart.Clear)

	// ---- Wishlist ----
	g.POST("/wishlist", wl.Add)
	g.GET("/wishlist", wl.List)
	g.DELETE("/wishlist/:id", wl.Remove)

	// ---- Lost and found ----
	// Filing and deleting reports needs a session; the board itself is
	// public (see RegisterPublic).
	g.POST("/lost-items", lf.Create)
	g.DELETE("/lost-items/:id", lf.Delete)
}
