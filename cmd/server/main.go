package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/luanafs/pantry-api/internal/config"     // Internal config loader
	"github.com/luanafs/pantry-api/internal/database"   // MySQL connection pool
	"github.com/luanafs/pantry-api/internal/handler"    // HTTP handlers
	"github.com/luanafs/pantry-api/internal/middleware" // Response cache and rate limiter
	"github.com/luanafs/pantry-api/internal/queue"      // Purchase event consumer
	"github.com/luanafs/pantry-api/internal/repository" // Data access layer
	"github.com/luanafs/pantry-api/internal/router"     // Internal router setup
	"github.com/luanafs/pantry-api/internal/session"    // Shopping-session store
)

func main() {
	// Load variables from a .env file if present; real deployments set them
	// in the environment and the file is simply absent.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	// Open the MySQL pool; the pantry cannot run without its database.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err) // Abort startup on connection failure
	}

	// Redis is optional: a nil client degrades the cache and rate limiter to
	// pass-throughs and the session store to its in-process fallback.
	rdb := config.NewRedisClient()

	// Start the purchase-event consumer in the background.  It reconnects on
	// its own; a broker outage never blocks the HTTP server.
	go func() {
		if err := queue.StartPurchaseConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	// Wire repositories over the shared pool.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	products := repository.NewProductRepo(db)
	items := repository.NewShoppingItemRepo(db)

	// Construct handlers with their dependencies.
	authH := handler.NewAuthHandler(cfg, users, tokens)
	productH := handler.NewProductHandler(products)
	shoppingH := handler.NewShoppingListHandler(items, products, session.New(rdb))

	// Ambient middleware: response cache for pantry reads, token-bucket rate
	// limiter for everything authenticated.
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()          // Create Echo instance
	router.RegisterRoutes(e) // Register application routes
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterProducts(e, productH, cfg.JWTSecret, cache, limit)
	router.RegisterShoppingList(e, shoppingH, cfg.JWTSecret, limit)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
