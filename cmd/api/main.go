package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hello-firestore/backend/internal/config"
	"hello-firestore/backend/internal/domain/user"
	"hello-firestore/backend/internal/firebase"
	apihttp "hello-firestore/backend/internal/http"
	"hello-firestore/backend/internal/logging"
	"hello-firestore/backend/internal/page"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	fb := firebase.NewInitializer(cfg, logger)
	clients, err := fb.Clients(ctx)
	if err != nil {
		logger.Fatal("firebase init failed", zap.Error(err))
	}
	defer func() {
		if err := fb.Close(); err != nil {
			logger.Warn("firestore close", zap.Error(err))
		}
	}()

	users := user.NewRepo(clients.Firestore)

	loader := page.NewLoader(&http.Client{}, cfg.APIBaseURL+"/api/user", cfg.FetchTimeout)

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Cfg:    cfg,
		Logger: logger,
		Users:  users,
		Page:   page.NewHandler(loader, cfg.RenderTimeout, logger.Named("page")),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	go func() {
		logger.Info("API listening",
			zap.String("addr", srv.Addr),
			zap.String("project", cfg.ProjectID),
			zap.String("record", user.Key{Collection: cfg.UserCollection, ID: cfg.UserID}.String()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down...")
	_ = srv.Shutdown(ctxShutdown)
}
