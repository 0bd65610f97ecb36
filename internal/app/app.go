// Package app owns the recording state machine and drives a session from
// microphone capture through the active backend to delivery of the text.
package app

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog/log"

	"github.com/sjroesink/whisper/internal/audio"
	"github.com/sjroesink/whisper/internal/clipboard"
	"github.com/sjroesink/whisper/internal/errors"
	"github.com/sjroesink/whisper/internal/history"
	"github.com/sjroesink/whisper/internal/provider"
	"github.com/sjroesink/whisper/internal/settings"
)

// ErrBusy is returned when a session is started while one is active.
var ErrBusy = stderrors.New("a recording session is already active")

// ErrNotRecording is returned when stop is requested without a session.
var ErrNotRecording = stderrors.New("no recording session is active")

// capturer is the recorder surface the session logic needs.
type capturer interface {
	Start(deviceName string) error
	Stop() audio.Captured
}

// App wires the recorder, the settings store, the backend registry and the
// history log together behind the lifecycle event bus.
type App struct {
	settings *settings.Manager
	registry *provider.Registry
	recorder capturer
	history  *history.Store
	bus      *Bus

	// delivery and notification are swappable so the session logic can be
	// exercised without touching the desktop.
	deliver func(text string, paste bool) error
	notify  func(title, msg string)

	mu    sync.Mutex
	state State
}

// New builds an app. history may be nil to disable persistence.
func New(sm *settings.Manager, reg *provider.Registry, rec capturer, hist *history.Store, bus *Bus) *App {
	a := &App{
		settings: sm,
		registry: reg,
		recorder: rec,
		history:  hist,
		bus:      bus,
	}
	a.deliver = func(text string, paste bool) error {
		if paste {
			return clipboard.Paste(text)
		}
		return clipboard.Copy(text)
	}
	a.notify = func(title, msg string) {
		if err := beeep.Notify(title, msg, ""); err != nil {
			log.Debug().Err(err).Msg("desktop notification failed")
		}
	}
	return a
}

// Bus exposes the event bus for subscribers.
func (a *App) Bus() *Bus { return a.bus }

// State reports the current session state.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// ListDevices enumerates capture devices.
func (a *App) ListDevices() ([]audio.Device, error) {
	return audio.ListInputDevices()
}

// SetActiveProvider switches the backend and persists the choice.
func (a *App) SetActiveProvider(id provider.ID) error {
	if a.registry.Get(id) == nil {
		return errors.ConfigErr("unknown provider %q", id)
	}
	a.registry.SetActive(id)
	s := a.settings.Get()
	s.ActiveProvider = string(id)
	return a.settings.Save(s)
}

// StartRecording opens the input stream. An empty deviceName uses the
// configured device, falling back to the system default. The session is
// claimed under the mutex before the stream opens, so a concurrent start
// sees Recording and backs off instead of opening a second stream.
func (a *App) StartRecording(deviceName string) error {
	a.mu.Lock()
	if a.state != StateIdle {
		a.mu.Unlock()
		return ErrBusy
	}
	a.state = StateRecording
	a.mu.Unlock()

	if deviceName == "" {
		deviceName = a.settings.Get().InputDevice
	}
	if err := a.recorder.Start(deviceName); err != nil {
		return a.fail(err)
	}

	a.bus.Publish(Event{Type: EventRecordingStarted, Payload: map[string]any{"device": deviceName}})
	return nil
}

// CancelRecording tears down an active session and discards the audio.
func (a *App) CancelRecording() {
	a.mu.Lock()
	if a.state != StateRecording {
		a.mu.Unlock()
		return
	}
	a.state = StateIdle
	a.mu.Unlock()

	captured := a.recorder.Stop()
	a.bus.Publish(Event{Type: EventRecordingStopped, Payload: map[string]any{
		"samples":   len(captured.Samples),
		"discarded": true,
	}})
}

// StopAndTranscribe drains the session and runs the active backend. The
// settings and the backend are snapshotted before the call so no lock is
// held while inference runs.
func (a *App) StopAndTranscribe(ctx context.Context) (*provider.Result, error) {
	a.mu.Lock()
	if a.state != StateRecording {
		a.mu.Unlock()
		return nil, ErrNotRecording
	}
	a.state = StateDraining
	a.mu.Unlock()

	captured := a.recorder.Stop()
	a.bus.Publish(Event{Type: EventRecordingStopped, Payload: map[string]any{"samples": len(captured.Samples)}})

	samples := captured.Canonical()
	if len(samples) == 0 {
		return nil, a.fail(errors.TranscribeErr(nil, "no audio captured"))
	}

	s := a.settings.Get()
	prov := a.registry.Active()
	if prov == nil {
		return nil, a.fail(errors.ConfigErr("no transcription backend registered"))
	}
	cfg := s.ProviderCfg(prov.ID())

	a.setState(StateTranscribing)
	a.bus.Publish(Event{Type: EventTranscribing, Payload: map[string]any{"provider": prov.ID()}})

	res, err := prov.Transcribe(ctx, samples, cfg)
	if err != nil {
		return nil, a.fail(err)
	}

	a.finish(ctx, res, s)
	return res, nil
}

// Transcribe runs already-canonical samples through a specific backend,
// bypassing the recording state machine.
func (a *App) Transcribe(ctx context.Context, samples []float32, id provider.ID) (*provider.Result, error) {
	prov := a.registry.Get(id)
	if prov == nil {
		return nil, errors.ConfigErr("unknown provider %q", id)
	}
	if len(samples) == 0 {
		return nil, errors.TranscribeErr(nil, "no audio data to transcribe")
	}
	cfg := a.settings.Get().ProviderCfg(id)
	return prov.Transcribe(ctx, samples, cfg)
}

func (a *App) finish(ctx context.Context, res *provider.Result, s settings.Settings) {
	if a.history != nil && res.Text != "" {
		if _, err := a.history.Add(ctx, res); err != nil {
			log.Warn().Err(err).Msg("record transcription history")
		}
	}
	if res.Text != "" {
		if err := a.deliver(res.Text, s.AutoPaste); err != nil {
			log.Warn().Err(err).Msg("deliver transcription")
		}
	}
	if s.Notifications {
		a.notify("Transcription complete", res.Text)
	}

	a.setState(StateIdle)
	a.bus.Publish(Event{Type: EventTranscriptionComplete, Payload: res})
	log.Info().Str("provider", string(res.Provider)).Dur("took", res.Duration).Int("chars", len(res.Text)).Msg("transcription complete")
}

// fail emits a diagnostic event and returns the state machine to idle.
func (a *App) fail(err error) error {
	a.setState(StateIdle)
	a.bus.Publish(Event{Type: EventError, Payload: map[string]any{
		"kind":    errors.KindOf(err).String(),
		"message": err.Error(),
	}})
	log.Error().Err(err).Msg("session failed")
	return err
}

func (a *App) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}
