package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/cors"

	"github.com/iliyamo/invoice-dashboard/internal/cache"
	"github.com/iliyamo/invoice-dashboard/internal/config"
	"github.com/iliyamo/invoice-dashboard/internal/database"
	"github.com/iliyamo/invoice-dashboard/internal/handler"
	"github.com/iliyamo/invoice-dashboard/internal/middleware"
	"github.com/iliyamo/invoice-dashboard/internal/queue"
	"github.com/iliyamo/invoice-dashboard/internal/repository"
	"github.com/iliyamo/invoice-dashboard/internal/router"
	"github.com/iliyamo/invoice-dashboard/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("config: .env not loaded: %v", err)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.Options{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DBURL,
		InsecureTLS:     cfg.DBTLSInsecure,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("database: open %s: %v", cfg.DBDriver, err)
	}
	defer db.Close()

	// Redis is optional: without it the cache and the login limiter are off.
	rdb := config.NewRedisClient()
	cacheCfg := config.LoadCacheConfig()
	var invalidator service.Invalidator = service.NopInvalidator{}
	if rdb != nil {
		defer rdb.Close()
		if cacheCfg.Enabled {
			invalidator = cache.NewRedisInvalidator(rdb, cacheCfg.Prefix)
		}
	}

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.Events.Enabled {
		events = service.NewQueuePublisher(cfg.Events.URL, cfg.Events.Queue)
		go func() {
			err := queue.StartInvoiceConsumer(ctx, queue.ConsumerConfig{
				URL:    cfg.Events.URL,
				Queue:  cfg.Events.Queue,
				LogDir: cfg.Events.LogDir,
			})
			log.Printf("invoice-consumer: stopped: %v", err)
		}()
	}

	users := repository.NewUserRepo(db)
	invoices := repository.NewInvoiceRepo(db)
	customers := repository.NewCustomerRepo(db)
	revenue := repository.NewRevenueRepo(db)

	actions := service.NewInvoiceActions(invoices, invalidator, events)
	auth := service.NewAuthService(users)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestID(), echomw.Logger(), echomw.Recover())
	if len(cfg.CORSOrigins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowCredentials: true,
		})
		e.Use(echo.WrapMiddleware(c.Handler))
	}

	router.Register(e, router.Deps{
		Secret:       cfg.AuthSecret,
		Health:       handler.Health(db),
		Seed:         handler.Seed(db, cfg.BcryptCost),
		Auth:         handler.NewAuthHandler(auth, cfg.AuthSecret, cfg.SessionTTL, cfg.Env == "prod"),
		Dashboard:    handler.NewDashboardHandler(revenue, invoices),
		Invoices:     handler.NewInvoiceHandler(invoices, customers, actions),
		Customers:    handler.NewCustomerHandler(customers),
		Cache:        middleware.NewRedisCache(cacheCfg, rdb),
		LoginLimiter: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	})

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s, db=%s)", addr, cfg.Env, db.Dialect().Name)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
		os.Exit(1)
	}
}
