package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vasymarket/webfront/internal/config"
	"github.com/vasymarket/webfront/internal/events"
	"github.com/vasymarket/webfront/internal/gateway"
	"github.com/vasymarket/webfront/internal/httpserver"
	"github.com/vasymarket/webfront/internal/localstore"
	"github.com/vasymarket/webfront/internal/logging"
	"github.com/vasymarket/webfront/internal/session"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	state, err := localstore.Open(ctx, cfg.DatabaseURL, cfg.StatePath)
	cancel()
	if err != nil {
		log.Fatalf("open state store: %v", err)
	}

	api := gateway.NewClient(cfg.APIURL)
	producer := events.NewProducer(cfg.KafkaBrokers, logger)

	e := echo.New()
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	httpserver.Register(e, &httpserver.Handlers{
		API:      api,
		Gate:     session.NewGate(api),
		State:    state,
		Producer: producer,
		Log:      logger,
		Secure:   cfg.Production(),
	})

	go func() {
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("start: %v", err)
		}
	}()
	logger.Info("webfront started", "addr", cfg.ListenAddr, "api_url", cfg.APIURL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
	if err := producer.Close(); err != nil {
		logger.Error("close producer", "error", err)
	}
	if err := state.Close(); err != nil {
		logger.Error("close state store", "error", err)
	}
}
