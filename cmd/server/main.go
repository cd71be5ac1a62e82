package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hzlou/assistant-platform/internal/ai"
	"github.com/hzlou/assistant-platform/internal/auth"
	"github.com/hzlou/assistant-platform/internal/chat"
	"github.com/hzlou/assistant-platform/internal/config"
	"github.com/hzlou/assistant-platform/internal/feedback"
	"github.com/hzlou/assistant-platform/internal/httpapi"
	"github.com/hzlou/assistant-platform/internal/httpapi/handlers"
	"github.com/hzlou/assistant-platform/internal/speech"
	"github.com/hzlou/assistant-platform/internal/store"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	snap := store.NewSnapshot(cfg.DataDir, logger)

	authSvc := auth.NewService(snap, cfg.TokenTTL, logger)
	chatSvc := chat.NewService(snap, logger)
	fbSvc := feedback.NewService(snap, logger)
	fbSvc.SeedDefaultKnowledge()
	speechSvc := speech.NewService(snap, logger)

	registry := ai.NewRegistry()
	registry.Register("deepseek", ai.NewDeepSeekProvider(
		cfg.DeepSeek.APIKey, cfg.DeepSeek.BaseURL, cfg.DeepSeek.Model, cfg.SystemPrompt))

	h := handlers.NewHandler(cfg, authSvc, chatSvc, fbSvc, speechSvc, registry, logger)
	router := httpapi.NewRouter(h, logger)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
