package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/sjroesink/whisper/internal/app"
	"github.com/sjroesink/whisper/internal/audio"
	"github.com/sjroesink/whisper/internal/constme"
	"github.com/sjroesink/whisper/internal/history"
	"github.com/sjroesink/whisper/internal/provider"
	"github.com/sjroesink/whisper/internal/provider/localwhisper"
	"github.com/sjroesink/whisper/internal/provider/nativestt"
	"github.com/sjroesink/whisper/internal/server"
	"github.com/sjroesink/whisper/internal/settings"
	"github.com/sjroesink/whisper/internal/tray"
	"github.com/sjroesink/whisper/pkg/util"
)

func runDaemon() {
	hideConsole()

	configPath := flagConfig
	if configPath == "" {
		var err error
		configPath, err = settings.DefaultPath()
		if err != nil {
			log.Fatal().Err(err).Msg("resolve settings path")
		}
	}
	sm, err := settings.NewManager(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load settings")
	}
	cfg := sm.Get()

	if err := audio.Initialize(); err != nil {
		log.Fatal().Err(err).Msg("initialise audio subsystem")
	}
	defer audio.Terminate()

	gpu := constme.NewProvider(cfg.ConstmeDLLPath, cfg.ConstmeModel)
	registry := provider.NewRegistry(provider.ID(cfg.ActiveProvider),
		gpu,
		provider.OpenAI{},
		provider.Google{},
		localwhisper.New(cfg.LocalModelPath),
		nativestt.New(),
	)

	historyPath := cfg.HistoryPath
	if historyPath == "" {
		historyPath = filepath.Join(filepath.Dir(configPath), "history.db")
	}
	hist, err := history.Open(context.Background(), historyPath)
	if err != nil {
		log.Warn().Err(err).Msg("history disabled")
		hist = nil
	} else {
		defer hist.Close()
	}

	a := app.New(sm, registry, audio.NewRecorder(), hist, app.NewBus())
	svc := server.NewService(a, sm, registry, hist, gpu.Loader())

	sm.Watch(func(s settings.Settings) {
		if s.ActiveProvider != "" {
			registry.SetActive(provider.ID(s.ActiveProvider))
		}
		gpu.UpdatePaths(s.ConstmeDLLPath, s.ConstmeModel)
	})

	trayCtrl := startTray(a, sm)
	defer trayCtrl.Stop()

	go watchSessionState(a, trayCtrl)

	errCh := make(chan error, 1)
	go func() { errCh <- svc.ListenAndServe() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		log.Err(err).Msg("HTTP server exited")
	}

	a.CancelRecording()
	if err := svc.Stop(); err != nil {
		log.Warn().Err(err).Msg("stop HTTP server")
	}
}

func startTray(a *app.App, sm *settings.Manager) tray.Controller {
	ctrl, err := tray.Start(tray.Options{
		Tooltip: "Whisper",
		OnToggle: func() {
			go toggleDictation(a)
		},
		OnOpen: func() {
			addr := sm.Get().HTTPAddr
			if err := util.OpenBrowser("http://" + addr); err != nil {
				log.Warn().Err(err).Msg("open control panel")
			}
		},
		OnQuit: func() {
			p, _ := os.FindProcess(os.Getpid())
			p.Signal(syscall.SIGTERM)
		},
	})
	if err != nil {
		log.Warn().Err(err).Msg("tray unavailable")
		return noopTray{}
	}
	return ctrl
}

func toggleDictation(a *app.App) {
	switch a.State() {
	case app.StateIdle:
		if err := a.StartRecording(""); err != nil {
			log.Err(err).Msg("start dictation")
		}
	case app.StateRecording:
		if _, err := a.StopAndTranscribe(context.Background()); err != nil {
			log.Err(err).Msg("stop dictation")
		}
	default:
		// draining or transcribing, ignore the click
	}
}

// watchSessionState mirrors the recording state into the tray menu.
func watchSessionState(a *app.App, ctrl tray.Controller) {
	events, cancel := a.Bus().Subscribe()
	defer cancel()
	for evt := range events {
		switch evt.Type {
		case app.EventRecordingStarted:
			ctrl.SetRecording(true)
		case app.EventRecordingStopped, app.EventError:
			ctrl.SetRecording(false)
		}
	}
}

type noopTray struct{}

func (noopTray) SetRecording(bool) {}
func (noopTray) Stop()             {}
