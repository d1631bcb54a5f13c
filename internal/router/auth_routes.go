package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"  // Echo web framework
	"github.com/redis/go-redis/v9" // Redis client backing the rate limiter

	"github.com/serandib/plaza/internal/config"     // rate-limit profiles
	"github.com/serandib/plaza/internal/handler"    // auth, reset and oauth handlers
	"github.com/serandib/plaza/internal/middleware" // JWT + rate-limit middlewares
	"github.com/serandib/plaza/internal/model"      // role constants
)

// RegisterAuth registers registration, login and password-reset routes.
// Unauthenticated operations live under /api/v1/auth; the profile routes
// that need a session live under /api/v1 with the JWT middleware applied.
//
// Login and reset requests carry per-IP rate limits so credential
// guessing and mail flooding stay bounded. When rdb is nil (tests, or a
// deployment without Redis) the limiter middlewares fail open inside
// NewTokenBucket, so the routes still work.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, r *handler.ResetHandler, o *handler.OAuthHandler, rdb *redis.Client, jwtSecret string) {
	g := e.Group("/api/v1/auth")

	g.POST("/register", a.RegisterUser)
	g.POST("/register-shop", a.RegisterShop)
	g.POST("/login", a.Login, middleware.NewTokenBucket(config.LoginRateLimit(), rdb))

	// Password reset: the request endpoint always answers the same 200 and
	// is limited harder than login because every allowed call can queue a
	// mail.
	g.POST("/reset/request", r.Request, middleware.NewTokenBucket(config.ResetRateLimit(), rdb))
	g.POST("/reset/perform", r.Perform)

	// Federated login with Google. The routes are only mounted when
	// credentials are configured so a bare deployment does not expose
	// half-working redirects.
	if o.Enabled() {
		g.GET("/google", o.Redirect)
		g.GET("/google/callback", o.Callback)
	}

	// Session-scoped profile routes.
	auth := e.Group("/api/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)

	// Profile routes are split per principal space: the same numeric id can
	// exist in both tables, so the role from the token decides which one a
	// session may touch.
	userOnly := middleware.RequireRole(model.RoleUser, model.RoleAdmin)
	auth.PUT("/profile", a.UpdateUserProfile, userOnly)
	auth.DELETE("/profile", a.DeleteUserProfile, userOnly)

	shopOnly := middleware.RequireRole(model.RoleShopOwner)
	auth.PUT("/shop/profile", a.UpdateShopProfile, shopOnly)
	auth.DELETE("/shop/profile", a.DeleteShopProfile, shopOnly)
}
