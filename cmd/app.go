package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"workshop/api"
	"workshop/config"
	"workshop/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type App struct {
	config          *config.Config
	router          *api.Router
	server          *http.Server
	storage         *Storage
	shutdownTracing func(context.Context) error
}

// Run serves until SIGINT/SIGTERM or ctx is done, then drains in-flight
// requests within server.shutdown_timeout.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	if tErr := a.shutdownTracing(shutdownCtx); tErr != nil {
		logger.Warn("tracing shutdown failed", zap.Error(tErr))
	}
	if cErr := a.storage.Close(); cErr != nil {
		logger.Warn("closing database failed", zap.Error(cErr))
	}
	logger.Info("Server stopped")
	return err
}

// GetServer exposes the engine for tests.
func (a *App) GetServer() *gin.Engine {
	return a.router.GetEngine()
}
