package main

import (
	"net/http"
	"os"

	"behavior-call/internal/config"
	"behavior-call/internal/db"
	"behavior-call/internal/server"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := config.LoadDotEnv(".env"); err != nil {
		logger.Warn("failed to load .env", zap.Error(err))
	}
	cfg := config.Load()

	var conn *gorm.DB
	if os.Getenv("DATABASE_URL") != "" {
		conn, err = db.Open()
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		if err := db.Migrate(conn); err != nil {
			logger.Fatal("database migration failed", zap.Error(err))
		}
	} else {
		logger.Warn("DATABASE_URL not set, running in memory only")
	}

	srv := server.New(conn, cfg, logger)
	addr := ":" + cfg.Port
	logger.Info("behavior-call server listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
