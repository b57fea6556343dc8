package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/movieexplorer/movie-explorer-api/internal/config"
	"github.com/movieexplorer/movie-explorer-api/internal/database"
	"github.com/movieexplorer/movie-explorer-api/internal/handler"
	"github.com/movieexplorer/movie-explorer-api/internal/middleware"
	"github.com/movieexplorer/movie-explorer-api/internal/queue"
	"github.com/movieexplorer/movie-explorer-api/internal/repository"
	"github.com/movieexplorer/movie-explorer-api/internal/router"
	"github.com/movieexplorer/movie-explorer-api/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}

	// Redis backs the token denylist, the response cache and the rate
	// limiter. Cache and rate limiting degrade gracefully without it;
	// the denylist does not, since logout must be enforceable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal("redis connect failed: token revocation requires redis")
	}

	users := repository.NewUserRepo(db)
	subs := repository.NewSubscriptionRepo(db)
	movies := repository.NewMovieRepo(db)
	wishlists := repository.NewWishlistRepo(db)
	denylist := repository.NewDenylistRepo(rdb)

	var billing service.BillingClient
	if cfg.StripeAPIKey != "" {
		billing = service.NewStripeClient(cfg.StripeAPIKey, "")
	}
	var notifier *service.Notifier
	if cfg.FCMServerKey != "" {
		notifier = service.NewNotifier(users, service.NewFCMClient(cfg.FCMServerKey, cfg.FCMEndpoint))
	}

	auth := middleware.NewAuthenticator(cfg.JWTSecret, users, denylist)

	e := echo.New()
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.Register(e, router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, subs, denylist, billing),
		Movie:        handler.NewMovieHandler(movies, subs, notifier),
		Wishlist:     handler.NewWishlistHandler(wishlists, movies, subs),
		Subscription: handler.NewSubscriptionHandler(subs),
	}, auth)

	// Consume movie.created events in the background; the consumer
	// reconnects on broker failures and never takes the server down.
	go func() {
		if err := queue.StartMovieConsumer(); err != nil {
			log.Printf("movie consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
