package main

import (
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/catireiro/backend/internal/config"
	"github.com/catireiro/backend/internal/db"
	"github.com/catireiro/backend/internal/model"
	"github.com/catireiro/backend/internal/server"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config load error", zap.Error(err))
	}

	srv, err := server.New(nil, cfg, logger)
	if err != nil {
		logger.Fatal("server init error", zap.Error(err))
	}

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)

	go func() {
		logger.Info("starting server", zap.String("addr", addr))
		errCh <- srv.Start(addr)
	}()

	// Connect in the background so /healthz answers during DB cold starts.
	go func() {
		conn, err := db.Connect(cfg)
		if err != nil {
			logger.Error("db connect error", zap.Error(err))
			return
		}
		if err := conn.AutoMigrate(&model.Listing{}, &model.Bid{}, &model.Profile{}); err != nil {
			logger.Error("auto migrate error", zap.Error(err))
		}
		srv.SetDB(conn)
		logger.Info("database connected")
	}()

	if err := <-errCh; err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
