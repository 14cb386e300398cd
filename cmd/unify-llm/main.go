// Command unify-llm serves the multi-provider chat gateway.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/TanyuSylvain/unify-llm/internal/config"
	"github.com/TanyuSylvain/unify-llm/internal/conversation"
	"github.com/TanyuSylvain/unify-llm/internal/debate"
	"github.com/TanyuSylvain/unify-llm/internal/handlers"
	"github.com/TanyuSylvain/unify-llm/internal/llm/providers"
	"github.com/TanyuSylvain/unify-llm/internal/middleware"
	"github.com/TanyuSylvain/unify-llm/internal/observability/metrics"
	"github.com/TanyuSylvain/unify-llm/internal/storage"
)

const (
	exitConfigOrStorage = 1
	exitPortBind        = 2
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	store, err := storage.Open(cfg.DatabasePath, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to open database")
		os.Exit(exitConfigOrStorage)
	}
	defer store.Close()

	registry := providers.BuildRegistry(cfg, logger)
	if registry.Len() == 0 {
		logger.Error("No providers configured, set at least one API key")
		os.Exit(exitConfigOrStorage)
	}

	collector := metrics.NewCollector()
	modes := conversation.NewManager(store, logger)
	orchestrator := debate.New(registry, store, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Metrics(collector))

	h := handlers.New(cfg, registry, store, modes, orchestrator, collector, logger)
	h.Register(router)

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		logger.WithError(err).WithField("addr", addr).Error("Failed to bind port")
		os.Exit(exitPortBind)
	}

	server := &http.Server{Handler: router}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithFields(logrus.Fields{
			"addr":      addr,
			"providers": registry.Names(),
		}).Info("Server listening")
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("Server error")
		os.Exit(exitConfigOrStorage)
	}
}
