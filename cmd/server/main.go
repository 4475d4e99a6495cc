package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"authsvc/internal/auth"
	"authsvc/internal/config"
	"authsvc/internal/database"
	"authsvc/internal/handler"
	"authsvc/internal/logging"
	"authsvc/internal/middleware"
	"authsvc/internal/queue"
	"authsvc/internal/repository"
	"authsvc/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()

	logger, err := logging.New()
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	users := repository.NewMySQLUserStore(db)
	hasher := auth.NewHasher(cfg.BcryptCost)
	tokens := auth.NewIssuer(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e)

	guard := middleware.SessionGuard(tokens)
	var extra []echo.MiddlewareFunc
	cacheCfg := config.LoadCacheConfig()
	if rdb := config.NewRedisClient(); rdb != nil && cacheCfg.Enabled {
		extra = append(extra, middleware.NewRedisCache(cacheCfg, rdb))
	} else {
		logger.Info("response cache disabled")
	}
	router.RegisterAuth(e, handler.NewAuthHandler(users, hasher, tokens, logger), guard, extra...)

	// Audit consumer reconnects on its own; it only logs if the broker is
	// unreachable and never blocks request handling.
	go func() {
		if err := queue.StartAuditConsumer(logger); err != nil {
			logger.Warn("audit consumer stopped", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
