package server

import (
	"context"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sjroesink/whisper/internal/app"
	"github.com/sjroesink/whisper/internal/constme"
	"github.com/sjroesink/whisper/internal/provider"
	"github.com/sjroesink/whisper/internal/settings"
)

// downloading guards against overlapping engine downloads.
var downloading atomic.Bool

func (s *Service) initRouter() {
	s.router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	s.router.GET("/events", s.handleEvents)

	api := s.router.Group("/api/v1")
	{
		api.GET("/status", s.handleStatus)
		api.GET("/devices", s.handleDevices)

		api.POST("/record/start", s.handleRecordStart)
		api.POST("/record/stop", s.handleRecordStop)
		api.POST("/record/cancel", s.handleRecordCancel)

		api.GET("/providers", s.handleProviders)
		api.POST("/providers/active", s.handleSetActiveProvider)

		api.GET("/settings", s.handleGetSettings)
		api.PUT("/settings", s.handleSaveSettings)

		api.GET("/history", s.handleHistory)
		api.DELETE("/history", s.handleClearHistory)

		api.GET("/engine/status", s.handleEngineStatus)
		api.POST("/engine/download", s.handleEngineDownload)
	}
}

func (s *Service) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state":    s.app.State().String(),
		"provider": s.registry.ActiveID(),
	})
}

func (s *Service) handleDevices(c *gin.Context) {
	devices, err := s.app.ListDevices()
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"devices": devices})
}

func (s *Service) handleRecordStart(c *gin.Context) {
	var req struct {
		Device string `json:"device"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if err := s.app.StartRecording(req.Device); err != nil {
		if err == app.ErrBusy {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "recording"})
}

func (s *Service) handleRecordStop(c *gin.Context) {
	res, err := s.app.StopAndTranscribe(c.Request.Context())
	if err != nil {
		if err == app.ErrNotRecording {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Service) handleRecordCancel(c *gin.Context) {
	s.app.CancelRecording()
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

func (s *Service) handleProviders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"providers": s.registry.List(),
		"active":    s.registry.ActiveID(),
	})
}

func (s *Service) handleSetActiveProvider(c *gin.Context) {
	var req struct {
		ID string `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.app.SetActiveProvider(provider.ID(req.ID)); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": req.ID})
}

func (s *Service) handleGetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.settings.Get())
}

func (s *Service) handleSaveSettings(c *gin.Context) {
	var req settings.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.settings.Save(req); err != nil {
		c.Error(err)
		return
	}
	s.applySettings(req)
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

// applySettings pushes a saved configuration into the running components.
func (s *Service) applySettings(cfg settings.Settings) {
	if cfg.ActiveProvider != "" {
		s.registry.SetActive(provider.ID(cfg.ActiveProvider))
	}
	if s.loader != nil {
		s.loader.UpdatePaths(cfg.ConstmeDLLPath, cfg.ConstmeModel)
	}
}

func (s *Service) handleHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history disabled"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := s.history.List(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (s *Service) handleClearHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history disabled"})
		return
	}
	if err := s.history.Clear(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func (s *Service) handleEngineStatus(c *gin.Context) {
	if s.loader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "engine unavailable"})
		return
	}
	dllPath, _ := constme.DLLPath()
	modelPath, _ := constme.ModelPath(constme.DefaultModelFile)
	c.JSON(http.StatusOK, gin.H{
		"ready":      s.loader.Available(),
		"dll_path":   dllPath,
		"model_path": modelPath,
		"models":     constme.AvailableModels,
	})
}

func (s *Service) handleEngineDownload(c *gin.Context) {
	if s.loader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "engine unavailable"})
		return
	}
	var req struct {
		Model string `json:"model"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Model == "" {
		req.Model = constme.DefaultModelFile
	}
	if !downloading.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, gin.H{"error": "download already in progress"})
		return
	}

	go func() {
		defer downloading.Store(false)

		d := constme.NewDownloader()
		d.OnProgress = func(p constme.Progress) {
			s.app.Bus().Publish(app.Event{Type: app.EventDownloadProgress, Payload: p})
		}

		ctx := context.Background()
		if _, err := d.EnsureDLL(ctx); err != nil {
			log.Err(err).Msg("library download failed")
			s.app.Bus().Publish(app.Event{Type: app.EventError, Payload: gin.H{"message": err.Error()}})
			return
		}
		if _, err := d.EnsureModel(ctx, req.Model); err != nil {
			log.Err(err).Msg("model download failed")
			s.app.Bus().Publish(app.Event{Type: app.EventError, Payload: gin.H{"message": err.Error()}})
			return
		}
		log.Info().Str("model", req.Model).Msg("engine download complete")
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "downloading"})
}
