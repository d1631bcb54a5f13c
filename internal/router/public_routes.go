package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"  // Echo web framework
	"github.com/redis/go-redis/v9" // Redis client backing the response cache

	"github.com/serandib/plaza/internal/config"     // cache configuration
	"github.com/serandib/plaza/internal/handler"    // public browse handlers
	"github.com/serandib/plaza/internal/middleware" // Redis response cache
)

// RegisterPublic registers the anonymous storefront routes: catalog
// browsing, shop directory, promotions, categories, events and the
// lost-and-found board. GET responses are served through the Redis
// response cache; when rdb is nil the middleware passes requests through.
func RegisterPublic(e *echo.Echo, b *handler.BrowseHandler, cat *handler.CategoryHandler, ev *handler.EventHandler, lf *handler.LostFoundHandler, rdb *redis.Client) {
	g := e.Group("/api/v1", middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	// ---- Catalog ----
	g.GET("/products", b.ListProducts)
	g.GET("/products/filter", b.FilterProducts)
	g.GET("/products/search", b.SearchProducts)
	g.GET("/products/:slug", b.GetProduct)

	// ---- Shops ----
	g.GET("/shops", b.ListShops)
	g.GET("/shops/:id", b.GetShop)

	// ---- Promotions ----
	g.GET("/promotions", b.ListPromotions)
	g.GET("/promotions/:slug", b.GetPromotion)

	// ---- Categories ----
	g.GET("/categories", cat.List)
	g.GET("/categories/:slug", cat.GetBySlug)

	// ---- Events ----
	g.GET("/events", ev.List)
	g.GET("/events/:id", ev.Get)
	// Notify-me registrations are writes; they bypass the cache group.
	e.POST("/api/v1/events/:id/notify", ev.Notify)

	// ---- Lost and found ----
	g.GET("/lost-items", lf.List)
	g.GET("/lost-items/:id", lf.Get)
	e.POST("/api/v1/lost-items/:id/notify", lf.Notify)
}
