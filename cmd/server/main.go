package main // Entry point package

import (
	"context"
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/kasraf/service-desk/internal/config"
	"github.com/kasraf/service-desk/internal/database"
	"github.com/kasraf/service-desk/internal/handler"
	"github.com/kasraf/service-desk/internal/mailer"
	"github.com/kasraf/service-desk/internal/middleware"
	"github.com/kasraf/service-desk/internal/queue"
	"github.com/kasraf/service-desk/internal/repository"
	"github.com/kasraf/service-desk/internal/router"
	"github.com/kasraf/service-desk/internal/service"
	"github.com/kasraf/service-desk/internal/validate"
)

func main() {
	// Load .env when present; real deployments set the environment
	// directly and the file is absent.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(database.Config{
		User:            cfg.DBUser,
		Pass:            cfg.DBPass,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		Name:            cfg.DBName,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs rate limiting and the response cache; nil disables both.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Print("redis unavailable: rate limiting and response cache disabled")
	}

	// Repositories, constructed once and passed by reference.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	onetime := repository.NewOneTimeRepo(db)
	requests := repository.NewRequestRepo(db)
	activity := repository.NewActivityRepo(db)
	notes := repository.NewNotificationRepo(db)

	mail := mailer.NewAMQPMailer()

	authSvc := service.NewAuthService(cfg, users, tokens, onetime, mail, activity, notes)
	reqSvc := service.NewRequestService(requests, users, activity, notes, queue.PublishRequestEvent)
	userSvc := service.NewUserService(users, tokens, activity)

	v := validate.New()

	authH := handler.NewAuthHandler(authSvc, v)
	reqH := handler.NewRequestHandler(reqSvc, v)
	userH := handler.NewUserHandler(userSvc, v)
	noteH := handler.NewNotificationHandler(notes)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = router.ErrorHandler()

	ratelimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, ratelimit)
	router.RegisterAPI(e, authH, reqH, userH, noteH, cfg.JWTSecret, cache)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Expired-token garbage collection.
	go repository.NewJanitor(db).Run(ctx)

	// Outbound mail consumer; runs a reconnect loop forever.
	go func() {
		if err := mailer.StartMailConsumer(); err != nil {
			log.Printf("mail consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
