// Package server exposes the control API over HTTP and streams lifecycle
// events over a websocket.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/sjroesink/whisper/internal/app"
	"github.com/sjroesink/whisper/internal/constme"
	"github.com/sjroesink/whisper/internal/errors"
	"github.com/sjroesink/whisper/internal/history"
	"github.com/sjroesink/whisper/internal/provider"
	"github.com/sjroesink/whisper/internal/settings"
)

type Service struct {
	app      *app.App
	settings *settings.Manager
	registry *provider.Registry
	history  *history.Store
	loader   *constme.Loader

	router   *gin.Engine
	server   *http.Server
	upgrader websocket.Upgrader
}

// NewService assembles the router. history and loader may be nil when the
// corresponding feature is disabled.
func NewService(a *app.App, sm *settings.Manager, reg *provider.Registry, hist *history.Store, loader *constme.Loader) *Service {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if err := router.SetTrustedProxies(nil); err != nil {
		log.Err(err).Msg("Failed to set trusted proxies")
	}

	router.Use(
		errors.RecoveryMiddleware(),
		errors.ErrorHandlerMiddleware(),
		gin.LoggerWithWriter(log.Logger, "/health"),
		corsMiddleware(),
	)

	s := &Service{
		app:      a,
		settings: sm,
		registry: reg,
		history:  hist,
		loader:   loader,
		router:   router,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	s.initRouter()
	return s
}

func (s *Service) ListenAndServe() error {
	s.server = &http.Server{
		Addr:    s.settings.Get().HTTPAddr,
		Handler: s.router,
	}
	log.Info().Msg("Starting HTTP server on " + s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *Service) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Debug().Err(err).Msg("Failed to shutdown HTTP server")
		return nil
	}
	log.Info().Msg("HTTP server stopped")
	return nil
}

func (s *Service) GetRouter() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
