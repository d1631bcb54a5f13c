package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/serandib/plaza/internal/config"   // Internal config loader
	"github.com/serandib/plaza/internal/database" // MySQL connection pool
	"github.com/serandib/plaza/internal/handler"    // HTTP handlers
	"github.com/serandib/plaza/internal/middleware" // rate limiting
	"github.com/serandib/plaza/internal/queue"      // mail consumer
	"github.com/serandib/plaza/internal/repository"
	"github.com/serandib/plaza/internal/router" // Internal router setup
	queue_publisher "github.com/serandib/plaza/internal/service"
)

func main() {
	// Load .env if present; a real deployment sets the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, reading environment directly")
	}

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the rate limiter and the public response cache. A nil
	// client is tolerated by both middlewares, so Redis being down only
	// costs the caching and limiting, not the API.
	rdb := config.NewRedisClient()

	// The mail consumer drains the reset queue in the background and
	// reconnects on its own; a missing broker is logged, not fatal.
	go func() {
		if err := queue.StartMailConsumer(); err != nil {
			log.Printf("mail consumer: %v", err)
		}
	}()

	// Repositories.
	users := repository.NewUserRepo(db)
	shops := repository.NewShopRepo(db)
	categories := repository.NewCategoryRepo(db)
	products := repository.NewProductRepo(db)
	promotions := repository.NewPromotionRepo(db)
	carts := repository.NewCartRepo(db)
	wishlists := repository.NewWishlistRepo(db)
	events := repository.NewEventRepo(db)
	lostFound := repository.NewLostFoundRepo(db)

	// Handlers.
	auth := handler.NewAuthHandler(cfg, users, shops)
	reset := handler.NewResetHandler(cfg, users, shops, queue_publisher.QueueMailer{TTLMin: cfg.ResetTTLMin})
	oauth := handler.NewOAuthHandler(cfg, users)
	browse := handler.NewBrowseHandler(products, shops, promotions)
	category := handler.NewCategoryHandler(categories)
	ownerProducts := handler.NewOwnerProductHandler(products)
	ownerPromos := handler.NewOwnerPromotionHandler(promotions)
	cart := handler.NewCartHandler(carts, products)
	wishlist := handler.NewWishlistHandler(wishlists, products)
	event := handler.NewEventHandler(events)
	lost := handler.NewLostFoundHandler(lostFound, users)
	admin := handler.NewAdminHandler(users, shops, products, promotions)

	e := echo.New() // Create Echo instance

	// General per-IP-per-route limiter across the whole API; the auth routes
	// add their own stricter profiles on top.
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, reset, oauth, rdb, cfg.JWTSecret)
	router.RegisterPublic(e, browse, category, event, lost, rdb)
	router.RegisterCustomer(e, cart, wishlist, lost, cfg.JWTSecret)
	router.RegisterOwner(e, ownerProducts, ownerPromos, cfg.JWTSecret)
	router.RegisterAdmin(e, admin, category, event, lost, cfg.JWTSecret)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
