package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/booking"
	"github.com/iliyamo/restaurant-table-reservation/internal/config"
	"github.com/iliyamo/restaurant-table-reservation/internal/database"
	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/middleware"
	"github.com/iliyamo/restaurant-table-reservation/internal/queue"
	"github.com/iliyamo/restaurant-table-reservation/internal/rating"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
	"github.com/iliyamo/restaurant-table-reservation/internal/router"
)

func main() {
	// .env is optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := database.Migrate(ctx, db); err != nil {
			cancel()
			log.Fatalf("migrate: %v", err)
		}
		cancel()
		log.Println("schema migration applied")
	}

	// Redis backs the public response cache and the rate limiter; both
	// degrade to no-ops when it is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	restaurants := repository.NewRestaurantRepo(db)
	tables := repository.NewTableRepo(db)
	bookings := repository.NewBookingRepo(db)
	reviews := repository.NewReviewRepo(db)
	cuisines := repository.NewCuisineRepo(db)

	// Domain services
	engine := booking.NewEngine(db, bookings, restaurants, tables)
	aggregator := rating.NewAggregator(db)

	// Handlers
	authH := handler.NewAuthHandler(cfg, users, tokens)
	publicH := handler.NewPublicHandler(restaurants, tables, cuisines, reviews)
	bookingH := handler.NewBookingHandler(engine, restaurants, tables)
	reviewH := handler.NewReviewHandler(reviews, bookings, restaurants, aggregator)
	adminH := handler.NewAdminHandler(restaurants, tables, cuisines)

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH, reviewH,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	)
	router.RegisterBookings(e, bookingH, reviewH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	// Background consumer that appends confirmed bookings to logs/booking.log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
