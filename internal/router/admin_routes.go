package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/serandib/plaza/internal/handler"    // admin handlers
	"github.com/serandib/plaza/internal/middleware" // JWT + role middlewares
	"github.com/serandib/plaza/internal/model"      // role constants
)

// RegisterAdmin registers administrative endpoints under /api/v1/admin.
// Everything here requires the admin role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, cat *handler.CategoryHandler, ev *handler.EventHandler, lf *handler.LostFoundHandler, jwtSecret string) {
	g := e.Group(
		"/api/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Dashboard counters ----
	g.GET("/metrics/counts", a.Dashboard)

	// ---- Accounts ----
	g.GET("/users", a.ListUsers)
	g.DELETE("/users/:id", a.DeleteUser)
	g.GET("/shops", a.ListShops)
	g.DELETE("/shops/:id", a.DeleteShop)

	// ---- Categories ----
	g.POST("/categories", cat.Create)
	g.PUT("/categories/:id", cat.Update)
	g.DELETE("/categories/:id", cat.Delete)

	// ---- Events ----
	g.POST("/events", ev.Create)
	g.PUT("/events/:id", ev.Update)
	g.DELETE("/events/:id", ev.Delete)

	// ---- Lost and found moderation ----
	g.DELETE("/lost-items/notifications/:id", lf.DeleteNotify)
}
